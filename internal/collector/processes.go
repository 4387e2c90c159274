package collector

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/process"
)

// procHandle is the part of a gopsutil process the tracker reads.
type procHandle interface {
	NameWithContext(ctx context.Context) (string, error)
	TimesWithContext(ctx context.Context) (*cpu.TimesStat, error)
	MemoryPercentWithContext(ctx context.Context) (float32, error)
}

// trackedProcess remembers a process between samples.
type trackedProcess struct {
	handle   procHandle
	name     string
	cpuTotal float64
	at       time.Time
}

// processTracker reports per-process CPU as the share of one core used since
// the previous sample, like top. A process seen for the first time reports
// zero. Processes that exit are forgotten on the next sample.
type processTracker struct {
	pids func(ctx context.Context) ([]int32, error)
	open func(ctx context.Context, pid int32) (procHandle, error)
	now  func() time.Time

	seen map[int32]*trackedProcess
}

func newProcessTracker() *processTracker {
	return &processTracker{
		pids: process.PidsWithContext,
		open: func(ctx context.Context, pid int32) (procHandle, error) {
			return process.NewProcessWithContext(ctx, pid)
		},
		now:  time.Now,
		seen: make(map[int32]*trackedProcess),
	}
}

// sample reads every visible process. Processes that exit or deny access
// mid-scan are skipped.
func (t *processTracker) sample(ctx context.Context) ([]processSample, error) {
	pids, err := t.pids(ctx)
	if err != nil {
		return nil, err
	}

	next := make(map[int32]*trackedProcess, len(pids))
	samples := make([]processSample, 0, len(pids))
	for _, pid := range pids {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		tp, ok := t.seen[pid]
		if !ok {
			h, err := t.open(ctx, pid)
			if err != nil {
				continue
			}
			name, err := h.NameWithContext(ctx)
			if err != nil {
				continue
			}
			tp = &trackedProcess{handle: h, name: name}
		}

		times, err := tp.handle.TimesWithContext(ctx)
		if err != nil {
			continue
		}
		now := t.now()
		total := times.Total()

		var cpuP float64
		if !tp.at.IsZero() {
			if elapsed := now.Sub(tp.at).Seconds(); elapsed > 0 && total >= tp.cpuTotal {
				cpuP = 100 * (total - tp.cpuTotal) / elapsed
			}
		}
		tp.cpuTotal, tp.at = total, now
		next[pid] = tp

		memP, _ := tp.handle.MemoryPercentWithContext(ctx)
		samples = append(samples, processSample{
			PID:           pid,
			Name:          tp.name,
			CPUPercent:    cpuP,
			MemoryPercent: float64(memP),
		})
	}

	t.seen = next
	return samples, nil
}
