// Package notify pushes alerts to a Telegram chat.
package notify

import (
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/rileyhilliard/sysmon/internal/errors"
	"github.com/rileyhilliard/sysmon/internal/logger"
	"github.com/rileyhilliard/sysmon/internal/processor"
)

// DefaultQueueSize is how many alerts may wait for delivery before new ones
// are dropped.
const DefaultQueueSize = 32

// DefaultCooldown is how long a resource stays quiet after a message about
// it was queued.
const DefaultCooldown = 30 * time.Minute

// BotAPI is the part of the Telegram client the notifier uses.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram sends alerts from a background goroutine. Record never blocks:
// when the queue is full the alert is dropped and counted.
//
// A sustained breach raises one alert per tick, so each resource is held
// back for the cooldown after a message about it. Escalating from warning to
// critical is sent straight away.
type Telegram struct {
	bot      BotAPI
	chatID   int64
	minLevel processor.Level
	hostname string
	log      logger.Logger
	cooldown time.Duration
	now      func() time.Time
	lastSent map[processor.Resource]processor.Alert

	queue chan processor.Alert
	done  chan struct{}

	mu         sync.Mutex
	closed     bool
	dropped    int
	sent       int
	suppressed int
}

// Option configures a Telegram notifier.
type Option func(*Telegram)

// WithMinLevel sets the lowest level that is sent. Invalid levels are ignored.
func WithMinLevel(l processor.Level) Option {
	return func(t *Telegram) {
		if l.Valid() {
			t.minLevel = l
		}
	}
}

// WithHostname sets the host named in each message.
func WithHostname(name string) Option {
	return func(t *Telegram) { t.hostname = name }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(t *Telegram) {
		if l != nil {
			t.log = l
		}
	}
}

// WithCooldown sets the quiet period per resource. Zero sends every alert.
func WithCooldown(d time.Duration) Option {
	return func(t *Telegram) {
		if d >= 0 {
			t.cooldown = d
		}
	}
}

// WithQueueSize sets the delivery buffer size.
func WithQueueSize(n int) Option {
	return func(t *Telegram) {
		if n > 0 {
			t.queue = make(chan processor.Alert, n)
		}
	}
}

// Dial connects to the Telegram API with token and starts a notifier.
func Dial(token string, chatID int64, opts ...Option) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrNotify,
			"Can't connect to Telegram",
			"Check alerts.telegram.token, or clear it to disable notifications.")
	}
	return New(bot, chatID, opts...), nil
}

// New starts a notifier that sends through bot.
func New(bot BotAPI, chatID int64, opts ...Option) *Telegram {
	t := &Telegram{
		bot:      bot,
		chatID:   chatID,
		minLevel: processor.LevelCritical,
		log:      logger.Noop(),
		cooldown: DefaultCooldown,
		now:      time.Now,
		lastSent: make(map[processor.Resource]processor.Alert),
		queue:    make(chan processor.Alert, DefaultQueueSize),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	go t.run()
	return t
}

// Record queues a for delivery if it meets the minimum level.
func (t *Telegram) Record(a processor.Alert) error {
	if !meets(a.Level, t.minLevel) {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return errors.New(errors.ErrNotify, "Telegram notifier is closed", "")
	}

	at := a.RaisedAt
	if at.IsZero() {
		at = t.now()
	}
	if t.coolingDown(a, at) {
		t.suppressed++
		return nil
	}

	select {
	case t.queue <- a:
		a.RaisedAt = at
		t.lastSent[a.Resource] = a
	default:
		t.dropped++
		t.log.Debug("telegram queue full, dropping %s alert", a.Resource)
	}
	return nil
}

// coolingDown reports whether a repeats the last message about its resource
// within the cooldown. Callers hold t.mu.
func (t *Telegram) coolingDown(a processor.Alert, at time.Time) bool {
	if t.cooldown == 0 {
		return false
	}
	last, ok := t.lastSent[a.Resource]
	if !ok {
		return false
	}
	if a.Level == processor.LevelCritical && last.Level != processor.LevelCritical {
		return false
	}
	return at.Sub(last.RaisedAt) < t.cooldown
}

// Close stops accepting alerts and waits for queued ones to be sent.
func (t *Telegram) Close() error {
	t.mu.Lock()
	if !t.closed {
		t.closed = true
		close(t.queue)
	}
	t.mu.Unlock()

	<-t.done
	return nil
}

// Stats returns how many alerts were sent and dropped.
func (t *Telegram) Stats() (sent, dropped int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sent, t.dropped
}

// Suppressed returns how many alerts the cooldown held back.
func (t *Telegram) Suppressed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.suppressed
}

func (t *Telegram) run() {
	defer close(t.done)
	for a := range t.queue {
		msg := tgbotapi.NewMessage(t.chatID, FormatAlert(a, t.hostname))
		msg.ParseMode = tgbotapi.ModeMarkdown
		if _, err := t.bot.Send(msg); err != nil {
			t.log.Warn("telegram send failed: %v", err)
			continue
		}
		t.mu.Lock()
		t.sent++
		t.mu.Unlock()
	}
}

// FormatAlert renders a as a Markdown message.
func FormatAlert(a processor.Alert, hostname string) string {
	icon := "🟡"
	if a.Level == processor.LevelCritical {
		icon = "🔴"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s *%s*", icon, strings.ToUpper(string(a.Level)))
	if hostname != "" {
		fmt.Fprintf(&b, " on `%s`", hostname)
	}
	fmt.Fprintf(&b, "\n%s", a.Message)
	if !a.RaisedAt.IsZero() {
		fmt.Fprintf(&b, "\n_%s_", a.RaisedAt.Format("2006-01-02 15:04:05"))
	}
	return b.String()
}

// meets reports whether level is at least min.
func meets(level, min processor.Level) bool {
	switch min {
	case processor.LevelWarning:
		return level.Valid()
	default:
		return level == processor.LevelCritical
	}
}
