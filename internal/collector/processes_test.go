package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProc struct {
	name    string
	cpu     float64 // user+system seconds so far
	mem     float32
	timeErr error
}

func (p *fakeProc) NameWithContext(context.Context) (string, error) { return p.name, nil }

func (p *fakeProc) TimesWithContext(context.Context) (*cpu.TimesStat, error) {
	if p.timeErr != nil {
		return nil, p.timeErr
	}
	return &cpu.TimesStat{User: p.cpu}, nil
}

func (p *fakeProc) MemoryPercentWithContext(context.Context) (float32, error) { return p.mem, nil }

// fakeProcTable is a process table the test mutates between samples.
type fakeProcTable struct {
	procs map[int32]*fakeProc
	opens int
}

func (f *fakeProcTable) tracker(now *time.Time) *processTracker {
	return &processTracker{
		pids: func(context.Context) ([]int32, error) {
			pids := make([]int32, 0, len(f.procs))
			for pid := range f.procs {
				pids = append(pids, pid)
			}
			return pids, nil
		},
		open: func(_ context.Context, pid int32) (procHandle, error) {
			f.opens++
			p, ok := f.procs[pid]
			if !ok {
				return nil, errors.New("no such process")
			}
			return p, nil
		},
		now:  func() time.Time { return *now },
		seen: make(map[int32]*trackedProcess),
	}
}

func byPID(samples []processSample) map[int32]processSample {
	out := make(map[int32]processSample, len(samples))
	for _, s := range samples {
		out[s.PID] = s
	}
	return out
}

func TestProcessTracker_ReportsRecentCPU(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	table := &fakeProcTable{procs: map[int32]*fakeProc{
		// long-lived daemon with a lot of CPU time but idle now
		1: {name: "daemon", cpu: 50000, mem: 1.5},
		// busy process that started recently
		2: {name: "worker", cpu: 3},
	}}
	tr := table.tracker(&now)

	first, err := tr.sample(context.Background())
	require.NoError(t, err)
	for _, s := range first {
		assert.Zero(t, s.CPUPercent, "%s has no baseline yet", s.Name)
	}

	now = now.Add(2 * time.Second)
	table.procs[1].cpu += 0.02
	table.procs[2].cpu += 1.9

	second, err := tr.sample(context.Background())
	require.NoError(t, err)
	got := byPID(second)

	assert.InDelta(t, 1.0, got[1].CPUPercent, 1e-6)
	assert.InDelta(t, 95.0, got[2].CPUPercent, 1e-6)
	assert.Greater(t, got[2].CPUPercent, got[1].CPUPercent)
	assert.Equal(t, "daemon", got[1].Name)
	assert.Equal(t, 1.5, got[1].MemoryPercent)
	assert.Equal(t, 2, table.opens, "handles are reused between samples")
}

func TestProcessTracker_ForgetsExitedProcesses(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	table := &fakeProcTable{procs: map[int32]*fakeProc{
		1: {name: "init", cpu: 10},
		7: {name: "short", cpu: 1},
	}}
	tr := table.tracker(&now)

	_, err := tr.sample(context.Background())
	require.NoError(t, err)
	require.Len(t, tr.seen, 2)

	delete(table.procs, 7)
	now = now.Add(time.Second)
	samples, err := tr.sample(context.Background())
	require.NoError(t, err)

	assert.Len(t, samples, 1)
	assert.NotContains(t, tr.seen, int32(7))

	// a new process reusing the pid starts without a baseline
	table.procs[7] = &fakeProc{name: "reused", cpu: 500}
	now = now.Add(time.Second)
	samples, err = tr.sample(context.Background())
	require.NoError(t, err)
	got := byPID(samples)
	assert.Equal(t, "reused", got[7].Name)
	assert.Zero(t, got[7].CPUPercent)
}

func TestProcessTracker_SkipsUnreadableProcesses(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	table := &fakeProcTable{procs: map[int32]*fakeProc{
		1: {name: "ok", cpu: 1},
		2: {name: "denied", timeErr: errors.New("permission denied")},
	}}
	tr := table.tracker(&now)

	samples, err := tr.sample(context.Background())
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, "ok", samples[0].Name)
	assert.NotContains(t, tr.seen, int32(2))
}

func TestProcessTracker_Cancelled(t *testing.T) {
	now := time.Now()
	table := &fakeProcTable{procs: map[int32]*fakeProc{1: {name: "x"}}}
	tr := table.tracker(&now)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tr.sample(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
