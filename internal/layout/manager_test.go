package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewManager(t *testing.T) {
	assert.Equal(t, ModeCompact, NewManager(ModeCompact).Mode())
	assert.Equal(t, ModeDetailed, NewManager(Mode("bogus")).Mode())
}

func TestManager_SetMode(t *testing.T) {
	m := NewManager(ModeDetailed)

	assert.True(t, m.SetMode(ModeMinimal))
	assert.Equal(t, ModeMinimal, m.Mode())

	assert.False(t, m.SetMode(Mode("bogus")))
	assert.Equal(t, ModeMinimal, m.Mode(), "invalid mode is a no-op")
}

func TestManager_SetModeString(t *testing.T) {
	m := NewManager(ModeDetailed)

	assert.True(t, m.SetModeString("compact"))
	assert.Equal(t, ModeCompact, m.Mode())

	assert.False(t, m.SetModeString("sideways"))
	assert.Equal(t, ModeCompact, m.Mode())
}

func TestManager_Next(t *testing.T) {
	m := NewManager(ModeDetailed)

	assert.Equal(t, ModeCompact, m.Next())
	assert.Equal(t, ModeMinimal, m.Next())
	assert.Equal(t, ModeDetailed, m.Next())
}

func TestManager_Plan(t *testing.T) {
	m := NewManager(ModeMinimal)
	assert.Equal(t, Layout(100, 40, ModeMinimal), m.Plan(100, 40))

	m.SetMode(ModeDetailed)
	assert.Equal(t, Layout(100, 40, ModeDetailed), m.Plan(100, 40))
}
