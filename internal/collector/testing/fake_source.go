// Package testing provides test doubles for the collector package.
package testing

import (
	"context"
	"sync"
	"time"

	"github.com/rileyhilliard/sysmon/internal/collector"
	"github.com/rileyhilliard/sysmon/internal/snapshot"
)

var _ collector.Source = (*FakeSource)(nil)

// FakeSource replays canned snapshots. Once the script is exhausted the last
// snapshot repeats.
type FakeSource struct {
	mu sync.Mutex

	snapshots []snapshot.Raw
	next      int

	// Call tracking
	Calls int
	// Cancelled counts calls whose context was already done.
	Cancelled int
}

// NewFakeSource creates a source that returns the given snapshots in order.
func NewFakeSource(snapshots ...snapshot.Raw) *FakeSource {
	return &FakeSource{snapshots: snapshots}
}

// Collect returns the next scripted snapshot, or an empty one if none were
// scripted.
func (f *FakeSource) Collect(ctx context.Context) snapshot.Raw {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls++
	if ctx.Err() != nil {
		f.Cancelled++
	}
	if len(f.snapshots) == 0 {
		return snapshot.Raw{}
	}

	raw := f.snapshots[f.next]
	if f.next < len(f.snapshots)-1 {
		f.next++
	}
	return raw
}

// Push appends snapshots to the script.
func (f *FakeSource) Push(snapshots ...snapshot.Raw) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshots = append(f.snapshots, snapshots...)
}

// CallCount returns how many times Collect was called.
func (f *FakeSource) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls
}

// FakeSystem is a fixed uptime and hostname source.
type FakeSystem struct {
	UptimeValue   time.Duration
	HostnameValue string
	UptimeErr     error
	HostnameErr   error
}

// Uptime returns UptimeValue or UptimeErr.
func (f FakeSystem) Uptime() (time.Duration, error) {
	return f.UptimeValue, f.UptimeErr
}

// Hostname returns HostnameValue or HostnameErr.
func (f FakeSystem) Hostname() (string, error) {
	return f.HostnameValue, f.HostnameErr
}
