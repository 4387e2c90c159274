package processor

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/rileyhilliard/sysmon/internal/logger"
	"github.com/rileyhilliard/sysmon/internal/snapshot"
)

// UnknownHostname is reported when the hostname cannot be read.
const UnknownHostname = "unknown"

// SystemInfo supplies host-level facts read on every Process call.
type SystemInfo interface {
	Uptime() (time.Duration, error)
	Hostname() (string, error)
}

// unavailableSystem is used when no SystemInfo is injected.
type unavailableSystem struct{}

func (unavailableSystem) Uptime() (time.Duration, error) {
	return 0, fmt.Errorf("system info not configured")
}

func (unavailableSystem) Hostname() (string, error) {
	return "", fmt.Errorf("system info not configured")
}

// Processor turns raw snapshots into processed ones. It owns the four
// history series for its whole lifetime.
type Processor struct {
	historySize int
	thresholds  Thresholds
	system      SystemInfo
	now         func() time.Time
	log         logger.Logger

	cpuHistory     *HistorySeries
	memoryHistory  *HistorySeries
	diskHistory    *HistorySeries
	networkHistory *HistorySeries
}

// Option configures a Processor.
type Option func(*Processor)

// WithHistorySize sets the capacity of each history series.
func WithHistorySize(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.historySize = n
		}
	}
}

// WithThresholds sets the alert thresholds.
func WithThresholds(t Thresholds) Option {
	return func(p *Processor) { p.thresholds = t }
}

// WithSystemInfo sets the source of uptime and hostname.
func WithSystemInfo(s SystemInfo) Option {
	return func(p *Processor) {
		if s != nil {
			p.system = s
		}
	}
}

// WithClock sets the clock used to stamp alerts and timestamp-less snapshots.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) {
		if now != nil {
			p.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.log = l
		}
	}
}

// New creates a Processor with default thresholds and history size unless
// overridden by options.
func New(opts ...Option) *Processor {
	p := &Processor{
		historySize: DefaultHistorySize,
		thresholds:  DefaultThresholds(),
		system:      unavailableSystem{},
		now:         time.Now,
		log:         logger.Noop(),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.cpuHistory = NewHistorySeries(p.historySize)
	p.memoryHistory = NewHistorySeries(p.historySize)
	p.diskHistory = NewHistorySeries(p.historySize)
	p.networkHistory = NewHistorySeries(p.historySize)
	return p
}

// HistorySize returns the capacity of each history series.
func (p *Processor) HistorySize() int {
	return p.historySize
}

// Thresholds returns the configured alert thresholds.
func (p *Processor) Thresholds() Thresholds {
	return p.thresholds
}

// History returns the current samples for r, oldest first. Resources without
// history return nil.
func (p *Processor) History(r Resource) []float64 {
	if s := p.series(r); s != nil {
		return s.Values()
	}
	return nil
}

// ResetHistory clears all four history series. Alerts and anything the
// dashboard has cached are not affected.
func (p *Processor) ResetHistory() {
	p.cpuHistory.Clear()
	p.memoryHistory.Clear()
	p.diskHistory.Clear()
	p.networkHistory.Clear()
}

// Process converts one raw snapshot. It never fails: missing sections become
// zeroed views, malformed numbers read as 0, and a panic anywhere in the
// pipeline yields a zeroed snapshot.
func (p *Processor) Process(raw snapshot.Raw) (out Snapshot) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Warn("processing snapshot failed, using defaults: %v", r)
			out = p.emptySnapshot(raw.Timestamp)
		}
	}()

	ts := raw.Timestamp
	if ts.IsZero() {
		ts = p.now()
	}

	return Snapshot{
		CPU:       p.processCPU(raw.CPU),
		Memory:    p.processMemory(raw.Memory),
		Disk:      p.processDisk(raw.Disk),
		Network:   p.processNetwork(raw.Network),
		Processes: processProcesses(raw.Processes),
		System:    p.systemView(ts),
		Alerts:    p.detectAlerts(raw),
	}
}

func (p *Processor) series(r Resource) *HistorySeries {
	switch r {
	case ResourceCPU:
		return p.cpuHistory
	case ResourceMemory:
		return p.memoryHistory
	case ResourceDisk:
		return p.diskHistory
	case ResourceNetwork:
		return p.networkHistory
	default:
		return nil
	}
}

func (p *Processor) emptySnapshot(ts time.Time) Snapshot {
	if ts.IsZero() {
		ts = p.now()
	}
	return Snapshot{
		CPU:       CPUView{PerCorePercent: []float64{}, UtilizationLevel: utilizationLevel(0), History: p.cpuHistory.Values()},
		Memory:    MemoryView{History: p.memoryHistory.Values()},
		Disk:      DiskView{Partitions: []Partition{}, History: p.diskHistory.Values()},
		Network:   NetworkView{Interfaces: []Interface{}, History: p.networkHistory.Values()},
		Processes: ProcessesView{Processes: []Process{}},
		System:    SystemView{Timestamp: ts, Hostname: UnknownHostname},
		Alerts:    map[Resource]Alert{},
	}
}

func (p *Processor) processCPU(s snapshot.Section) CPUView {
	if s.Empty() {
		return CPUView{
			PerCorePercent:   []float64{},
			UtilizationLevel: utilizationLevel(0),
			History:          p.cpuHistory.Values(),
		}
	}

	usage := s.Float("usage_percent")
	p.cpuHistory.Push(usage)

	perCore := s.Floats("per_core_percent")
	load := s.Map("load_avg")
	freq := s.Map("frequency")

	view := CPUView{
		UsagePercent:   usage,
		PerCorePercent: perCore,
		CoreCount:      len(perCore),
		LoadAvg: LoadAvg{
			One:               load.Float("1min"),
			Five:              load.Float("5min"),
			Fifteen:           load.Float("15min"),
			OneNormalized:     load.Float("1min_normalized"),
			FiveNormalized:    load.Float("5min_normalized"),
			FifteenNormalized: load.Float("15min_normalized"),
		},
		Frequency: Frequency{
			CurrentMHz: freq.Float("current_mhz"),
			MinMHz:     freq.Float("min_mhz"),
			MaxMHz:     freq.Float("max_mhz"),
		},
		ContextSwitches:  s.Int("context_switches"),
		Interrupts:       s.Int("interrupts"),
		UtilizationLevel: utilizationLevel(usage),
		History:          p.cpuHistory.Values(),
	}

	if temp := s.Map("temperature"); temp.Has("celsius") {
		c := temp.Float("celsius")
		f, ok := temp.FloatOK("fahrenheit")
		if !ok {
			f = c*9/5 + 32
		}
		view.Temperature = &Temperature{Celsius: c, Fahrenheit: f}
	}

	if len(perCore) > 1 {
		lo, hi := perCore[0], perCore[0]
		for _, v := range perCore[1:] {
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
		view.CoreImbalance = hi - lo
	}
	view.PotentialBottleneck = usage > 90 && view.LoadAvg.OneNormalized > 1.0

	return view
}

// utilizationLevel buckets overall CPU usage: low up to 30%, moderate up to 70%.
func utilizationLevel(usage float64) string {
	switch {
	case usage <= 30:
		return "low"
	case usage <= 70:
		return "moderate"
	default:
		return "high"
	}
}

func (p *Processor) processMemory(s snapshot.Section) MemoryView {
	if s.Empty() {
		return MemoryView{History: p.memoryHistory.Values()}
	}

	usage := s.Float("usage_percent")
	p.memoryHistory.Push(usage)

	return MemoryView{
		UsagePercent: usage,
		Used:         s.Float("used"),
		Total:        s.Float("total"),
		Free:         s.Float("free"),
		Available:    s.Float("available"),
		SwapUsed:     s.Float("swap_used"),
		SwapTotal:    s.Float("swap_total"),
		SwapPercent:  s.Float("swap_percent"),
		History:      p.memoryHistory.Values(),
	}
}

func (p *Processor) processDisk(s snapshot.Section) DiskView {
	if s.Empty() {
		return DiskView{Partitions: []Partition{}, History: p.diskHistory.Values()}
	}

	read := s.Float("read_speed")
	write := s.Float("write_speed")
	p.diskHistory.Push(read + write)

	parts := s.Map("partitions")
	partitions := make([]Partition, 0, len(parts))
	for _, mount := range sortedKeys(parts) {
		ps := parts.Map(mount)
		partitions = append(partitions, Partition{
			Mountpoint:   mount,
			UsagePercent: ps.Float("usage_percent"),
			Used:         ps.Float("used"),
			Total:        ps.Float("total"),
		})
	}

	return DiskView{
		UsagePercent: s.Float("usage_percent"),
		ReadSpeed:    read,
		WriteSpeed:   write,
		Partitions:   partitions,
		History:      p.diskHistory.Values(),
	}
}

func (p *Processor) processNetwork(s snapshot.Section) NetworkView {
	if s.Empty() {
		return NetworkView{Interfaces: []Interface{}, History: p.networkHistory.Values()}
	}

	down := s.Float("download_speed")
	up := s.Float("upload_speed")
	p.networkHistory.Push(down + up)

	ifaces := s.Map("interfaces")
	interfaces := make([]Interface, 0, len(ifaces))
	for _, name := range sortedKeys(ifaces) {
		is := ifaces.Map(name)
		interfaces = append(interfaces, Interface{
			Name:          name,
			DownloadSpeed: is.Float("download_speed"),
			UploadSpeed:   is.Float("upload_speed"),
		})
	}

	return NetworkView{
		DownloadSpeed: down,
		UploadSpeed:   up,
		Interfaces:    interfaces,
		History:       p.networkHistory.Values(),
	}
}

// processProcesses copies the process table and sorts it by CPU usage,
// highest first.
func processProcesses(rows []snapshot.Section) ProcessesView {
	procs := make([]Process, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		name := row.String("name")
		if name == "" {
			name = "unknown"
		}
		procs = append(procs, Process{
			PID:           row.Int("pid"),
			Name:          name,
			CPUPercent:    row.Float("cpu_percent"),
			MemoryPercent: row.Float("memory_percent"),
		})
	}

	sort.SliceStable(procs, func(i, j int) bool {
		return procs[i].CPUPercent > procs[j].CPUPercent
	})

	return ProcessesView{Processes: procs, Total: len(procs)}
}

// detectAlerts checks usage_percent of each alert resource against its
// thresholds. Critical wins over warning; unreadable readings raise nothing.
func (p *Processor) detectAlerts(raw snapshot.Raw) map[Resource]Alert {
	alerts := make(map[Resource]Alert)
	now := p.now()

	sections := map[Resource]snapshot.Section{
		ResourceCPU:    raw.CPU,
		ResourceMemory: raw.Memory,
		ResourceDisk:   raw.Disk,
	}

	for _, r := range AlertResources {
		usage, ok := sections[r].FloatOK("usage_percent")
		if !ok {
			continue
		}
		th, _ := p.thresholds.For(r)

		var level Level
		var limit float64
		switch {
		case usage > th.Critical:
			level, limit = LevelCritical, th.Critical
		case usage > th.Warning:
			level, limit = LevelWarning, th.Warning
		default:
			continue
		}

		alerts[r] = Alert{
			Resource: r,
			Level:    level,
			Message:  fmt.Sprintf("%s usage over %s%%", r.Label(), strconv.FormatFloat(limit, 'f', -1, 64)),
			RaisedAt: now,
		}
	}

	return alerts
}

func (p *Processor) systemView(ts time.Time) SystemView {
	view := SystemView{Timestamp: ts, Hostname: UnknownHostname}

	if up, err := p.system.Uptime(); err == nil && up > 0 {
		view.Uptime = up
	} else if err != nil {
		p.log.Debug("uptime unavailable: %v", err)
	}

	if name, err := p.system.Hostname(); err == nil && name != "" {
		view.Hostname = name
	} else if err != nil {
		p.log.Debug("hostname unavailable: %v", err)
	}

	return view
}

func sortedKeys(s snapshot.Section) []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
