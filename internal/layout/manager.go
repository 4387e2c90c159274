package layout

// Manager holds the active layout mode. It is owned by the render loop and
// is not safe for concurrent use.
type Manager struct {
	mode Mode
}

// NewManager creates a manager starting in mode. An unknown mode starts in
// ModeDetailed.
func NewManager(mode Mode) *Manager {
	if !mode.Valid() {
		mode = ModeDetailed
	}
	return &Manager{mode: mode}
}

// Mode returns the active mode.
func (m *Manager) Mode() Mode {
	return m.mode
}

// SetMode switches to mode. Unknown modes are rejected and leave the active
// mode unchanged.
func (m *Manager) SetMode(mode Mode) bool {
	if !mode.Valid() {
		return false
	}
	m.mode = mode
	return true
}

// SetModeString parses s and switches to it, like SetMode.
func (m *Manager) SetModeString(s string) bool {
	mode, ok := ParseMode(s)
	if !ok {
		return false
	}
	return m.SetMode(mode)
}

// Next advances to the following mode (detailed, compact, minimal, then
// around again) and returns it.
func (m *Manager) Next() Mode {
	for i, mode := range Modes {
		if mode == m.mode {
			m.mode = Modes[(i+1)%len(Modes)]
			return m.mode
		}
	}
	m.mode = ModeDetailed
	return m.mode
}

// Plan lays out a terminal of the given size in the active mode.
func (m *Manager) Plan(width, height int) Plan {
	return Layout(width, height, m.mode)
}
