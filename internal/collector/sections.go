package collector

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rileyhilliard/sysmon/internal/snapshot"
)

const (
	bytesPerGB = 1024 * 1024 * 1024
	bytesPerMB = 1024 * 1024
)

// cpuSensorPrefixes are the hwmon drivers that report CPU package or die
// temperatures. The hottest matching sensor wins.
var cpuSensorPrefixes = []string{"coretemp", "k10temp", "zenpower", "acpitz", "cpu_thermal"}

func (h *Host) collectCPU(ctx context.Context) (snapshot.Section, error) {
	total, err := h.readers.cpuPercent(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("cpu usage: %w", err)
	}
	if len(total) == 0 {
		return nil, fmt.Errorf("cpu usage: no data")
	}

	section := snapshot.Section{"usage_percent": total[0]}

	perCore, err := h.readers.cpuPercent(ctx, true)
	if err != nil {
		perCore = []float64{}
	}
	section["per_core_percent"] = perCore

	if avg, err := h.readers.loadAvg(ctx); err == nil && avg != nil {
		loadAvg := map[string]any{
			"1min":  avg.Load1,
			"5min":  avg.Load5,
			"15min": avg.Load15,
		}
		if cores := float64(len(perCore)); cores > 0 {
			loadAvg["1min_normalized"] = avg.Load1 / cores
			loadAvg["5min_normalized"] = avg.Load5 / cores
			loadAvg["15min_normalized"] = avg.Load15 / cores
		}
		section["load_avg"] = loadAvg
	}

	if mhz, err := h.readers.cpuFrequency(ctx); err == nil && mhz > 0 {
		section["frequency"] = map[string]any{"current_mhz": mhz}
	}

	if temps, _ := h.readers.temperatures(ctx); len(temps) > 0 {
		// gopsutil returns partial readings alongside a warning error
		hottest, ok := 0.0, false
		for _, t := range temps {
			if !isCPUSensor(t.SensorKey) || t.Temperature <= 0 {
				continue
			}
			if !ok || t.Temperature > hottest {
				hottest, ok = t.Temperature, true
			}
		}
		if ok {
			section["temperature"] = map[string]any{
				"celsius":    hottest,
				"fahrenheit": hottest*9/5 + 32,
			}
		}
	}

	if n, err := h.readers.contextSwitches(ctx); err == nil {
		section["context_switches"] = n
	}
	if n, err := h.readers.interrupts(ctx); err == nil {
		section["interrupts"] = n
	}

	return section, nil
}

func isCPUSensor(key string) bool {
	key = strings.ToLower(key)
	for _, prefix := range cpuSensorPrefixes {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}

func (h *Host) collectMemory(ctx context.Context) (snapshot.Section, error) {
	vm, err := h.readers.virtualMemory(ctx)
	if err != nil {
		return nil, fmt.Errorf("virtual memory: %w", err)
	}

	section := snapshot.Section{
		"usage_percent": vm.UsedPercent,
		"used":          float64(vm.Used) / bytesPerGB,
		"total":         float64(vm.Total) / bytesPerGB,
		"free":          float64(vm.Free) / bytesPerGB,
		"available":     float64(vm.Available) / bytesPerGB,
	}

	if swap, err := h.readers.swapMemory(ctx); err == nil && swap != nil {
		section["swap_used"] = float64(swap.Used) / bytesPerGB
		section["swap_total"] = float64(swap.Total) / bytesPerGB
		section["swap_percent"] = swap.UsedPercent
	}

	return section, nil
}

func (h *Host) collectDisk(ctx context.Context) (snapshot.Section, error) {
	section := snapshot.Section{}

	usage, usageErr := h.readers.diskUsage(ctx, h.diskPath)
	if usageErr == nil {
		section["usage_percent"] = usage.UsedPercent
	}

	counters, ioErr := h.readers.diskIO(ctx)
	if ioErr == nil {
		var read, written uint64
		for _, c := range counters {
			read += c.ReadBytes
			written += c.WriteBytes
		}
		cur := counterSample{in: read, out: written, at: h.now()}
		readMBs, writeMBs := rates(h.prevDisk, cur)
		h.prevDisk = cur
		section["read_speed"] = readMBs
		section["write_speed"] = writeMBs
	}

	if usageErr != nil && ioErr != nil {
		return nil, fmt.Errorf("disk usage: %w; disk io: %v", usageErr, ioErr)
	}

	partitions := map[string]any{}
	if parts, err := h.readers.partitions(ctx); err == nil {
		for _, p := range parts {
			if _, seen := partitions[p.Mountpoint]; seen {
				continue
			}
			u, err := h.readers.diskUsage(ctx, p.Mountpoint)
			if err != nil || u.Total == 0 {
				continue
			}
			partitions[p.Mountpoint] = map[string]any{
				"usage_percent": u.UsedPercent,
				"used":          float64(u.Used) / bytesPerGB,
				"total":         float64(u.Total) / bytesPerGB,
			}
		}
	}
	section["partitions"] = partitions

	return section, nil
}

func (h *Host) collectNetwork(ctx context.Context) (snapshot.Section, error) {
	counters, err := h.readers.netIO(ctx)
	if err != nil {
		return nil, fmt.Errorf("network io: %w", err)
	}

	now := h.now()
	interfaces := map[string]any{}
	seen := make(map[string]bool, len(counters))
	var down, up float64

	for _, c := range counters {
		if c.Name == "lo" || strings.HasPrefix(c.Name, "lo0") {
			continue
		}
		seen[c.Name] = true

		cur := counterSample{in: c.BytesRecv, out: c.BytesSent, at: now}
		rx, tx := rates(h.prevNet[c.Name], cur)
		h.prevNet[c.Name] = cur

		down += rx
		up += tx
		interfaces[c.Name] = map[string]any{"download_speed": rx, "upload_speed": tx}
	}

	// forget interfaces that disappeared so a reappearing one starts fresh
	for name := range h.prevNet {
		if !seen[name] {
			delete(h.prevNet, name)
		}
	}

	return snapshot.Section{
		"download_speed": down,
		"upload_speed":   up,
		"interfaces":     interfaces,
	}, nil
}

// rates converts two counter samples into MB/s. A missing previous sample or
// a counter that went backwards yields zero.
func rates(prev, cur counterSample) (in, out float64) {
	if prev.at.IsZero() {
		return 0, 0
	}
	elapsed := cur.at.Sub(prev.at).Seconds()
	if elapsed <= 0 {
		return 0, 0
	}
	if cur.in >= prev.in {
		in = float64(cur.in-prev.in) / elapsed / bytesPerMB
	}
	if cur.out >= prev.out {
		out = float64(cur.out-prev.out) / elapsed / bytesPerMB
	}
	return in, out
}

func (h *Host) collectProcesses(ctx context.Context) ([]snapshot.Section, error) {
	samples, err := h.readers.processes(ctx)
	if err != nil {
		return nil, fmt.Errorf("process list: %w", err)
	}

	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].CPUPercent > samples[j].CPUPercent
	})
	if len(samples) > h.processLimit {
		samples = samples[:h.processLimit]
	}

	rows := make([]snapshot.Section, 0, len(samples))
	for _, s := range samples {
		rows = append(rows, snapshot.Section{
			"pid":            int64(s.PID),
			"name":           s.Name,
			"cpu_percent":    s.CPUPercent,
			"memory_percent": s.MemoryPercent,
		})
	}
	return rows, nil
}
