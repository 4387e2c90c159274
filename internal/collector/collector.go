// Package collector reads local system metrics with gopsutil and packs them
// into raw snapshots.
//
// Every section is collected independently. A section whose read fails is
// left nil in the snapshot and the failure is logged at debug level; the
// processor substitutes zero defaults for it.
package collector

import (
	"context"
	"sync"
	"time"

	"github.com/rileyhilliard/sysmon/internal/logger"
	"github.com/rileyhilliard/sysmon/internal/snapshot"
)

// DefaultProcessLimit caps how many processes a snapshot carries.
const DefaultProcessLimit = 50

// Source produces one raw snapshot per call.
type Source interface {
	Collect(ctx context.Context) snapshot.Raw
}

// Host collects metrics for the machine it runs on.
//
// Disk and network throughput are derived from counter deltas between
// consecutive Collect calls, so the first snapshot reports zero speeds.
type Host struct {
	diskPath     string
	processLimit int
	log          logger.Logger
	now          func() time.Time
	readers      readers

	mu       sync.Mutex
	prevDisk counterSample
	prevNet  map[string]counterSample
}

// counterSample is a pair of monotonically increasing byte counters taken at
// one instant.
type counterSample struct {
	in, out uint64
	at      time.Time
}

var _ Source = (*Host)(nil)

// Option configures a Host.
type Option func(*Host)

// WithDiskPath sets the filesystem whose usage is reported as disk usage.
func WithDiskPath(path string) Option {
	return func(h *Host) {
		if path != "" {
			h.diskPath = path
		}
	}
}

// WithProcessLimit caps how many processes are reported, busiest first.
func WithProcessLimit(n int) Option {
	return func(h *Host) {
		if n > 0 {
			h.processLimit = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(h *Host) {
		if l != nil {
			h.log = l
		}
	}
}

// WithClock sets the clock used for timestamps and rate calculations.
func WithClock(now func() time.Time) Option {
	return func(h *Host) {
		if now != nil {
			h.now = now
		}
	}
}

// withReaders swaps the metric sources; used by tests.
func withReaders(p readers) Option {
	return func(h *Host) { h.readers = p }
}

// NewHost creates a collector for the local machine.
func NewHost(opts ...Option) *Host {
	h := &Host{
		diskPath:     "/",
		processLimit: DefaultProcessLimit,
		log:          logger.Noop(),
		now:          time.Now,
		readers:      gopsutilReaders(),
		prevNet:      make(map[string]counterSample),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Collect gathers every section in parallel. Readers receive ctx; a reader
// that fails or is cancelled leaves its section missing.
func (h *Host) Collect(ctx context.Context) snapshot.Raw {
	h.mu.Lock()
	defer h.mu.Unlock()

	raw := snapshot.Raw{Timestamp: h.now()}

	type result struct {
		name    string
		section snapshot.Section
		procs   []snapshot.Section
		err     error
	}

	collectors := map[string]func(context.Context) (snapshot.Section, error){
		snapshot.CPU:     h.collectCPU,
		snapshot.Memory:  h.collectMemory,
		snapshot.Disk:    h.collectDisk,
		snapshot.Network: h.collectNetwork,
	}

	results := make(chan result, len(collectors)+1)
	var wg sync.WaitGroup

	for name, fn := range collectors {
		wg.Add(1)
		go func(name string, fn func(context.Context) (snapshot.Section, error)) {
			defer wg.Done()
			section, err := fn(ctx)
			results <- result{name: name, section: section, err: err}
		}(name, fn)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		procs, err := h.collectProcesses(ctx)
		results <- result{name: snapshot.Processes, procs: procs, err: err}
	}()

	wg.Wait()
	close(results)

	for r := range results {
		if r.err != nil {
			h.log.Debug("collecting %s failed: %v", r.name, r.err)
			continue
		}
		switch r.name {
		case snapshot.CPU:
			raw.CPU = r.section
		case snapshot.Memory:
			raw.Memory = r.section
		case snapshot.Disk:
			raw.Disk = r.section
		case snapshot.Network:
			raw.Network = r.section
		case snapshot.Processes:
			raw.Processes = r.procs
		}
	}

	return raw
}
