package collector

import (
	"context"
	"os"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	gnet "github.com/shirou/gopsutil/v3/net"
)

// procStatPath is read for the interrupt counter, which gopsutil does not expose.
const procStatPath = "/proc/stat"

// processSample is one row of the process table.
type processSample struct {
	PID           int32
	Name          string
	CPUPercent    float64
	MemoryPercent float64
}

// readers are the raw metric sources a Host reads. Tests replace them with
// canned values.
type readers struct {
	cpuPercent      func(ctx context.Context, perCPU bool) ([]float64, error)
	cpuFrequency    func(ctx context.Context) (float64, error)
	loadAvg         func(ctx context.Context) (*load.AvgStat, error)
	contextSwitches func(ctx context.Context) (int64, error)
	interrupts      func(ctx context.Context) (int64, error)
	temperatures    func(ctx context.Context) ([]host.TemperatureStat, error)

	virtualMemory func(ctx context.Context) (*mem.VirtualMemoryStat, error)
	swapMemory    func(ctx context.Context) (*mem.SwapMemoryStat, error)

	diskUsage  func(ctx context.Context, path string) (*disk.UsageStat, error)
	partitions func(ctx context.Context) ([]disk.PartitionStat, error)
	diskIO     func(ctx context.Context) (map[string]disk.IOCountersStat, error)

	netIO func(ctx context.Context) ([]gnet.IOCountersStat, error)

	processes func(ctx context.Context) ([]processSample, error)
}

func gopsutilReaders() readers {
	return readers{
		cpuPercent: func(ctx context.Context, perCPU bool) ([]float64, error) {
			// interval 0 compares against the previous call
			return cpu.PercentWithContext(ctx, 0, perCPU)
		},
		cpuFrequency: func(ctx context.Context) (float64, error) {
			infos, err := cpu.InfoWithContext(ctx)
			if err != nil || len(infos) == 0 {
				return 0, err
			}
			return infos[0].Mhz, nil
		},
		loadAvg: load.AvgWithContext,
		contextSwitches: func(ctx context.Context) (int64, error) {
			misc, err := load.MiscWithContext(ctx)
			if err != nil {
				return 0, err
			}
			return int64(misc.Ctxt), nil
		},
		interrupts: func(_ context.Context) (int64, error) {
			data, err := os.ReadFile(procStatPath)
			if err != nil {
				return 0, err
			}
			stat, err := ParseProcStat(string(data))
			if err != nil {
				return 0, err
			}
			return stat.Interrupts, nil
		},
		temperatures:  host.SensorsTemperaturesWithContext,
		virtualMemory: mem.VirtualMemoryWithContext,
		swapMemory:    mem.SwapMemoryWithContext,
		diskUsage:     disk.UsageWithContext,
		partitions: func(ctx context.Context) ([]disk.PartitionStat, error) {
			return disk.PartitionsWithContext(ctx, false)
		},
		diskIO: func(ctx context.Context) (map[string]disk.IOCountersStat, error) {
			return disk.IOCountersWithContext(ctx)
		},
		netIO: func(ctx context.Context) ([]gnet.IOCountersStat, error) {
			return gnet.IOCountersWithContext(ctx, true)
		},
		processes: newProcessTracker().sample,
	}
}
