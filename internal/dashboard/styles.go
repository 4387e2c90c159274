package dashboard

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/sysmon/internal/processor"
)

// Theme is the colour palette for one display theme.
type Theme struct {
	Name string

	Surface lipgloss.Color
	Border  lipgloss.Color
	Accent  lipgloss.Color
	Graph   lipgloss.Color

	Healthy  lipgloss.Color
	Warning  lipgloss.Color
	Critical lipgloss.Color

	TextPrimary   lipgloss.Color
	TextSecondary lipgloss.Color
	TextMuted     lipgloss.Color
}

// DarkTheme is the default neon-on-black palette.
var DarkTheme = Theme{
	Name:    "dark",
	Surface: lipgloss.Color("#12121A"), // Dark surface
	Border:  lipgloss.Color("#2A2A4A"), // Glass border (purple tint)
	Accent:  lipgloss.Color("#FF2E97"), // Neon pink
	Graph:   lipgloss.Color("#00FFFF"), // Neon cyan

	Healthy:  lipgloss.Color("#39FF14"), // Neon green
	Warning:  lipgloss.Color("#FFAA00"), // Electric amber
	Critical: lipgloss.Color("#FF0055"), // Hot red-pink

	TextPrimary:   lipgloss.Color("#FFFFFF"),
	TextSecondary: lipgloss.Color("#B4B4D0"), // Lavender gray
	TextMuted:     lipgloss.Color("#6B6B8D"), // Purple-gray
}

// LightTheme keeps the same hues, darkened for light terminal backgrounds.
var LightTheme = Theme{
	Name:    "light",
	Surface: lipgloss.Color("#ECECF4"),
	Border:  lipgloss.Color("#9A9AB8"),
	Accent:  lipgloss.Color("#C2006B"),
	Graph:   lipgloss.Color("#007A99"),

	Healthy:  lipgloss.Color("#1E8A00"),
	Warning:  lipgloss.Color("#A86400"),
	Critical: lipgloss.Color("#C8003C"),

	TextPrimary:   lipgloss.Color("#1A1A2E"),
	TextSecondary: lipgloss.Color("#44445E"),
	TextMuted:     lipgloss.Color("#75758F"),
}

// ThemeByName returns the theme called name, falling back to DarkTheme.
func ThemeByName(name string) Theme {
	if strings.EqualFold(name, LightTheme.Name) {
		return LightTheme
	}
	return DarkTheme
}

func (t Theme) text() Pen      { return Pen{Fg: t.TextPrimary} }
func (t Theme) label() Pen     { return Pen{Fg: t.TextSecondary} }
func (t Theme) muted() Pen     { return Pen{Fg: t.TextMuted} }
func (t Theme) graph() Pen     { return Pen{Fg: t.Graph} }
func (t Theme) header() Pen    { return Pen{Fg: t.TextPrimary, Bg: t.Surface, Bold: true} }
func (t Theme) headerDim() Pen { return Pen{Fg: t.TextMuted, Bg: t.Surface} }
func (t Theme) overlay() Pen   { return Pen{Fg: t.TextPrimary, Bg: t.Surface} }

func (t Theme) border(active bool) Pen {
	if active {
		return Pen{Fg: t.Accent}
	}
	return Pen{Fg: t.Border}
}

// levelColor maps an alert level to its colour.
func (t Theme) levelColor(l processor.Level) lipgloss.Color {
	if l == processor.LevelCritical {
		return t.Critical
	}
	return t.Warning
}

// MetricColor picks a colour for a percentage. Comparisons are strict,
// matching the processor's alert rules.
func (t Theme) MetricColor(percent float64, th processor.Threshold) lipgloss.Color {
	switch {
	case percent > th.Critical:
		return t.Critical
	case percent > th.Warning:
		return t.Warning
	default:
		return t.Healthy
	}
}

func (t Theme) metric(percent float64, th processor.Threshold) Pen {
	return Pen{Fg: t.MetricColor(percent, th)}
}

// ProgressBar returns a bar of width cells, filled in proportion to percent
// (clamped to 0-100).
func ProgressBar(width int, percent float64) string {
	if width < 1 {
		return ""
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	filled := int(percent / 100.0 * float64(width))
	if filled > width {
		filled = width
	}
	return strings.Repeat("▰", filled) + strings.Repeat("▱", width-filled)
}
