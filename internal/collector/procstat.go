package collector

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// ProcStat holds the kernel-wide counters from /proc/stat that the CPU
// section reports.
type ProcStat struct {
	Cores           int
	ContextSwitches int64
	Interrupts      int64
}

// ParseProcStat parses the contents of /proc/stat. Only the "intr", "ctxt"
// and per-core "cpuN" lines are read; everything else is ignored.
func ParseProcStat(procStat string) (*ProcStat, error) {
	stat := &ProcStat{}
	scanner := bufio.NewScanner(strings.NewReader(procStat))
	// the intr line lists every IRQ and easily exceeds the default buffer
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	found := false

	for scanner.Scan() {
		line := scanner.Text()

		// Count individual CPU cores (cpu0, cpu1, etc.)
		if strings.HasPrefix(line, "cpu") && len(line) > 3 && line[3] >= '0' && line[3] <= '9' {
			stat.Cores++
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		switch fields[0] {
		case "intr":
			// first value is the total; per-IRQ counts follow
			val, err := strconv.ParseInt(fields[1], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("failed to parse intr total: %w", err)
			}
			stat.Interrupts = val
			found = true
		case "ctxt":
			val, err := strconv.ParseInt(fields[1], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("failed to parse ctxt: %w", err)
			}
			stat.ContextSwitches = val
			found = true
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning /proc/stat: %w", err)
	}
	if !found {
		return nil, fmt.Errorf("no intr or ctxt line in /proc/stat")
	}

	return stat, nil
}
