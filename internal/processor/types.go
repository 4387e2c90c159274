package processor

import (
	"time"

	"github.com/rileyhilliard/sysmon/internal/snapshot"
)

// Resource names a tracked resource. Values match the snapshot section keys
// and the dashboard widget names.
type Resource string

const (
	ResourceCPU       Resource = snapshot.CPU
	ResourceMemory    Resource = snapshot.Memory
	ResourceDisk      Resource = snapshot.Disk
	ResourceNetwork   Resource = snapshot.Network
	ResourceProcesses Resource = snapshot.Processes
)

// Resources lists every resource in display order.
var Resources = []Resource{ResourceCPU, ResourceMemory, ResourceDisk, ResourceNetwork, ResourceProcesses}

// AlertResources lists the resources that are checked against thresholds,
// in the order alerts are reported.
var AlertResources = []Resource{ResourceCPU, ResourceMemory, ResourceDisk}

// Label returns the display label used in alert messages and widget titles.
func (r Resource) Label() string {
	switch r {
	case ResourceCPU:
		return "CPU"
	case ResourceMemory:
		return "Memory"
	case ResourceDisk:
		return "Disk"
	case ResourceNetwork:
		return "Network"
	case ResourceProcesses:
		return "Processes"
	default:
		return string(r)
	}
}

// Level is the severity of an alert.
type Level string

const (
	LevelWarning  Level = "warning"
	LevelCritical Level = "critical"
)

// Valid reports whether l is a level the dashboard keeps in its ledger.
func (l Level) Valid() bool {
	return l == LevelWarning || l == LevelCritical
}

// Alert is a threshold crossing detected during one Process call.
type Alert struct {
	Resource Resource  `json:"resource" yaml:"resource"`
	Level    Level     `json:"level" yaml:"level"`
	Message  string    `json:"message" yaml:"message"`
	RaisedAt time.Time `json:"raised_at" yaml:"raised_at"`
}

// View is the processed slice of a snapshot that one widget displays.
type View interface {
	Resource() Resource
}

// CPUView holds processed CPU readings.
type CPUView struct {
	UsagePercent        float64      `json:"usage_percent" yaml:"usage_percent"`
	PerCorePercent      []float64    `json:"per_core_percent" yaml:"per_core_percent"`
	CoreCount           int          `json:"core_count" yaml:"core_count"`
	LoadAvg             LoadAvg      `json:"load_avg" yaml:"load_avg"`
	Frequency           Frequency    `json:"frequency" yaml:"frequency"`
	Temperature         *Temperature `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	ContextSwitches     int64        `json:"context_switches" yaml:"context_switches"`
	Interrupts          int64        `json:"interrupts" yaml:"interrupts"`
	UtilizationLevel    string       `json:"utilization_level" yaml:"utilization_level"`
	CoreImbalance       float64      `json:"core_imbalance" yaml:"core_imbalance"`
	PotentialBottleneck bool         `json:"potential_bottleneck" yaml:"potential_bottleneck"`
	History             []float64    `json:"history" yaml:"history"`
}

// LoadAvg holds 1, 5 and 15 minute load averages, raw and divided by core count.
type LoadAvg struct {
	One               float64 `json:"1min" yaml:"1min"`
	Five              float64 `json:"5min" yaml:"5min"`
	Fifteen           float64 `json:"15min" yaml:"15min"`
	OneNormalized     float64 `json:"1min_normalized" yaml:"1min_normalized"`
	FiveNormalized    float64 `json:"5min_normalized" yaml:"5min_normalized"`
	FifteenNormalized float64 `json:"15min_normalized" yaml:"15min_normalized"`
}

// Frequency holds CPU clock speeds in MHz.
type Frequency struct {
	CurrentMHz float64 `json:"current_mhz" yaml:"current_mhz"`
	MinMHz     float64 `json:"min_mhz" yaml:"min_mhz"`
	MaxMHz     float64 `json:"max_mhz" yaml:"max_mhz"`
}

// Temperature holds the hottest CPU sensor reading.
type Temperature struct {
	Celsius    float64 `json:"celsius" yaml:"celsius"`
	Fahrenheit float64 `json:"fahrenheit" yaml:"fahrenheit"`
}

// MemoryView holds processed memory readings. Sizes are in GB.
type MemoryView struct {
	UsagePercent float64   `json:"usage_percent" yaml:"usage_percent"`
	Used         float64   `json:"used" yaml:"used"`
	Total        float64   `json:"total" yaml:"total"`
	Free         float64   `json:"free" yaml:"free"`
	Available    float64   `json:"available" yaml:"available"`
	SwapUsed     float64   `json:"swap_used" yaml:"swap_used"`
	SwapTotal    float64   `json:"swap_total" yaml:"swap_total"`
	SwapPercent  float64   `json:"swap_percent" yaml:"swap_percent"`
	History      []float64 `json:"history" yaml:"history"`
}

// DiskView holds processed disk readings. Speeds are in MB/s.
type DiskView struct {
	UsagePercent float64     `json:"usage_percent" yaml:"usage_percent"`
	ReadSpeed    float64     `json:"read_speed" yaml:"read_speed"`
	WriteSpeed   float64     `json:"write_speed" yaml:"write_speed"`
	Partitions   []Partition `json:"partitions" yaml:"partitions"`
	History      []float64   `json:"history" yaml:"history"`
}

// Partition is one mounted filesystem. Sizes are in GB.
type Partition struct {
	Mountpoint   string  `json:"mountpoint" yaml:"mountpoint"`
	UsagePercent float64 `json:"usage_percent" yaml:"usage_percent"`
	Used         float64 `json:"used" yaml:"used"`
	Total        float64 `json:"total" yaml:"total"`
}

// NetworkView holds processed network readings. Speeds are in MB/s.
type NetworkView struct {
	DownloadSpeed float64     `json:"download_speed" yaml:"download_speed"`
	UploadSpeed   float64     `json:"upload_speed" yaml:"upload_speed"`
	Interfaces    []Interface `json:"interfaces" yaml:"interfaces"`
	History       []float64   `json:"history" yaml:"history"`
}

// Interface is the throughput of one network interface in MB/s.
type Interface struct {
	Name          string  `json:"name" yaml:"name"`
	DownloadSpeed float64 `json:"download_speed" yaml:"download_speed"`
	UploadSpeed   float64 `json:"upload_speed" yaml:"upload_speed"`
}

// ProcessesView holds the process table sorted by CPU usage, highest first.
type ProcessesView struct {
	Processes []Process `json:"processes" yaml:"processes"`
	Total     int       `json:"total" yaml:"total"`
}

// Process is one row of the process table.
type Process struct {
	PID           int64   `json:"pid" yaml:"pid"`
	Name          string  `json:"name" yaml:"name"`
	CPUPercent    float64 `json:"cpu_percent" yaml:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent" yaml:"memory_percent"`
}

// SystemView holds host-level information gathered on each Process call.
type SystemView struct {
	Timestamp time.Time     `json:"timestamp" yaml:"timestamp"`
	Uptime    time.Duration `json:"uptime" yaml:"uptime"`
	Hostname  string        `json:"hostname" yaml:"hostname"`
}

func (CPUView) Resource() Resource       { return ResourceCPU }
func (MemoryView) Resource() Resource    { return ResourceMemory }
func (DiskView) Resource() Resource      { return ResourceDisk }
func (NetworkView) Resource() Resource   { return ResourceNetwork }
func (ProcessesView) Resource() Resource { return ResourceProcesses }

// Snapshot is the processed output of one tick.
type Snapshot struct {
	CPU       CPUView            `json:"cpu" yaml:"cpu"`
	Memory    MemoryView         `json:"memory" yaml:"memory"`
	Disk      DiskView           `json:"disk" yaml:"disk"`
	Network   NetworkView        `json:"network" yaml:"network"`
	Processes ProcessesView      `json:"processes" yaml:"processes"`
	System    SystemView         `json:"system" yaml:"system"`
	Alerts    map[Resource]Alert `json:"alerts" yaml:"alerts"`
}

// Views returns the per-widget slices of the snapshot in display order.
func (s Snapshot) Views() []View {
	return []View{s.CPU, s.Memory, s.Disk, s.Network, s.Processes}
}

// Threshold is a warning/critical pair in percent. A reading strictly above
// Critical is critical; strictly above Warning is a warning.
type Threshold struct {
	Warning  float64 `json:"warning" yaml:"warning"`
	Critical float64 `json:"critical" yaml:"critical"`
}

// Thresholds holds the alert thresholds for each checked resource.
type Thresholds struct {
	CPU    Threshold
	Memory Threshold
	Disk   Threshold
}

// DefaultThresholds returns the stock thresholds: cpu 75/90, memory 80/90,
// disk 80/90.
func DefaultThresholds() Thresholds {
	return Thresholds{
		CPU:    Threshold{Warning: 75, Critical: 90},
		Memory: Threshold{Warning: 80, Critical: 90},
		Disk:   Threshold{Warning: 80, Critical: 90},
	}
}

// For returns the threshold for r and whether r is checked at all.
func (t Thresholds) For(r Resource) (Threshold, bool) {
	switch r {
	case ResourceCPU:
		return t.CPU, true
	case ResourceMemory:
		return t.Memory, true
	case ResourceDisk:
		return t.Disk, true
	default:
		return Threshold{}, false
	}
}
