package dashboard

import (
	"time"

	"github.com/rileyhilliard/sysmon/internal/processor"
)

// AlertTTL is how long a ledger entry stays visible after it was recorded.
const AlertTTL = 60 * time.Second

// AlertSink receives every entry appended to the ledger, e.g. to persist or
// forward it. Record runs synchronously on the render loop, in ledger order.
// Sinks that talk to the network should hand the work off and return; a local
// write such as the journal's SQLite insert is done inline.
type AlertSink interface {
	Record(entry processor.Alert) error
}

// AlertLedger is the ordered list of recent alerts. Entries are appended
// every time a threshold breach is seen, so a sustained breach produces one
// entry per tick until the oldest ones expire.
type AlertLedger struct {
	ttl     time.Duration
	entries []processor.Alert
}

// NewAlertLedger creates an empty ledger. A non-positive ttl uses AlertTTL.
func NewAlertLedger(ttl time.Duration) *AlertLedger {
	if ttl <= 0 {
		ttl = AlertTTL
	}
	return &AlertLedger{ttl: ttl}
}

// TTL returns the entry lifetime.
func (l *AlertLedger) TTL() time.Duration {
	return l.ttl
}

// Purge drops every entry whose age at now is at least the TTL and returns
// how many were removed.
func (l *AlertLedger) Purge(now time.Time) int {
	kept := l.entries[:0]
	for _, e := range l.entries {
		if now.Sub(e.RaisedAt) < l.ttl {
			kept = append(kept, e)
		}
	}
	removed := len(l.entries) - len(kept)

	// zero the tail so dropped entries can be collected
	for i := len(kept); i < len(l.entries); i++ {
		l.entries[i] = processor.Alert{}
	}
	l.entries = kept
	return removed
}

// Append adds an entry at the end.
func (l *AlertLedger) Append(entry processor.Alert) {
	l.entries = append(l.entries, entry)
}

// Len returns the number of entries.
func (l *AlertLedger) Len() int {
	return len(l.entries)
}

// Entries returns a copy of all entries, oldest first.
func (l *AlertLedger) Entries() []processor.Alert {
	return append([]processor.Alert{}, l.entries...)
}

// Recent returns a copy of the n most recently added entries, oldest first.
func (l *AlertLedger) Recent(n int) []processor.Alert {
	if n <= 0 {
		return []processor.Alert{}
	}
	if n > len(l.entries) {
		n = len(l.entries)
	}
	return append([]processor.Alert{}, l.entries[len(l.entries)-n:]...)
}
