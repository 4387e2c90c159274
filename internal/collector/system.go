package collector

import (
	"context"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/host"
)

// System reports uptime and hostname for the header row.
type System struct {
	uptime   func(ctx context.Context) (uint64, error)
	hostname func() (string, error)
	timeout  time.Duration
}

// NewSystem returns a System backed by gopsutil and the OS.
func NewSystem() *System {
	return &System{
		uptime:   host.UptimeWithContext,
		hostname: os.Hostname,
		timeout:  time.Second,
	}
}

// Uptime returns how long the machine has been up.
func (s *System) Uptime() (time.Duration, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	secs, err := s.uptime(ctx)
	if err != nil {
		return 0, err
	}
	return time.Duration(secs) * time.Second, nil
}

// Hostname returns the machine's hostname.
func (s *System) Hostname() (string, error) {
	return s.hostname()
}
