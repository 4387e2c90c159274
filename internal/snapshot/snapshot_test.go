package snapshot

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSection_Float(t *testing.T) {
	s := Section{
		"f64":    42.5,
		"f32":    float32(1.5),
		"int":    7,
		"int64":  int64(9),
		"uint64": uint64(11),
		"string": "95",
		"bool":   true,
		"nil":    nil,
		"nan":    math.NaN(),
		"inf":    math.Inf(1),
	}

	tests := []struct {
		key    string
		want   float64
		wantOK bool
	}{
		{"f64", 42.5, true},
		{"f32", 1.5, true},
		{"int", 7, true},
		{"int64", 9, true},
		{"uint64", 11, true},
		{"string", 0, false},
		{"bool", 0, false},
		{"nil", 0, false},
		{"nan", 0, false},
		{"inf", 0, false},
		{"missing", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := s.FloatOK(tt.key)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, s.Float(tt.key))
		})
	}
}

func TestSection_NilIsSafe(t *testing.T) {
	var s Section

	assert.True(t, s.Empty())
	assert.False(t, s.Has("usage_percent"))
	assert.Equal(t, 0.0, s.Float("usage_percent"))
	assert.Equal(t, int64(0), s.Int("context_switches"))
	assert.Equal(t, "", s.String("name"))
	assert.Equal(t, []float64{}, s.Floats("per_core_percent"))
	assert.Equal(t, Section{}, s.Map("load_avg"))
	assert.Nil(t, s.Clone())
}

func TestSection_Int(t *testing.T) {
	s := Section{"pid": 1234, "ctx": 9.9, "bad": "x"}

	assert.Equal(t, int64(1234), s.Int("pid"))
	assert.Equal(t, int64(9), s.Int("ctx"))
	assert.Equal(t, int64(0), s.Int("bad"))
}

func TestSection_Floats(t *testing.T) {
	s := Section{
		"f64":   []float64{1, 2},
		"any":   []any{1, "x", 2.5},
		"ints":  []int{3, 4},
		"wrong": 12.0,
	}

	assert.Equal(t, []float64{1, 2}, s.Floats("f64"))
	assert.Equal(t, []float64{1, 0, 2.5}, s.Floats("any"))
	assert.Equal(t, []float64{3, 4}, s.Floats("ints"))
	assert.Equal(t, []float64{}, s.Floats("wrong"))
}

func TestSection_FloatsCopies(t *testing.T) {
	src := []float64{1, 2}
	s := Section{"cores": src}

	got := s.Floats("cores")
	got[0] = 99

	assert.Equal(t, 1.0, src[0])
}

func TestSection_Map(t *testing.T) {
	s := Section{
		"load_avg":  map[string]any{"1min": 0.5},
		"freq":      map[string]float64{"current_mhz": 2400},
		"section":   Section{"celsius": 55.0},
		"not_a_map": 3,
	}

	assert.Equal(t, 0.5, s.Map("load_avg").Float("1min"))
	assert.Equal(t, 2400.0, s.Map("freq").Float("current_mhz"))
	assert.Equal(t, 55.0, s.Map("section").Float("celsius"))
	assert.True(t, s.Map("not_a_map").Empty())
}

func TestSection_Clone(t *testing.T) {
	s := Section{"usage_percent": 10.0}
	c := s.Clone()
	c["usage_percent"] = 20.0

	assert.Equal(t, 10.0, s.Float("usage_percent"))
	assert.True(t, c.Has("usage_percent"))
}
