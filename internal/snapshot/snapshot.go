// Package snapshot defines the raw per-tick readings handed from the collectors
// to the resource processor.
//
// Sections are loosely typed on purpose: collectors report whatever fields they
// can, and every accessor degrades a missing or malformed value to its zero
// value instead of failing.
package snapshot

import (
	"math"
	"time"
)

// Resource names used as section keys and widget names.
const (
	CPU       = "cpu"
	Memory    = "memory"
	Disk      = "disk"
	Network   = "network"
	Processes = "processes"
)

// Section is a flat mapping of named numeric or list fields for one resource.
type Section map[string]any

// Raw is one tick's worth of unprocessed readings. A nil section means the
// collector for that resource produced nothing.
type Raw struct {
	Timestamp time.Time
	CPU       Section
	Memory    Section
	Disk      Section
	Network   Section
	Processes []Section
}

// Empty reports whether the section carries no fields.
func (s Section) Empty() bool {
	return len(s) == 0
}

// Has reports whether key is present.
func (s Section) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Float returns key as a float64, or 0 when it is missing or not numeric.
func (s Section) Float(key string) float64 {
	v, _ := s.FloatOK(key)
	return v
}

// FloatOK returns key as a float64 and whether it was a usable number.
// NaN and infinities count as unusable.
func (s Section) FloatOK(key string) (float64, bool) {
	if s == nil {
		return 0, false
	}
	return toFloat(s[key])
}

// Int returns key as an int64, truncating floats. Non-numeric values read as 0.
func (s Section) Int(key string) int64 {
	v, ok := s.FloatOK(key)
	if !ok {
		return 0
	}
	return int64(v)
}

// String returns key as a string, or "" if it is not one.
func (s Section) String(key string) string {
	if s == nil {
		return ""
	}
	str, _ := s[key].(string)
	return str
}

// Floats returns key as a slice of float64. Non-numeric elements read as 0.
// Returns an empty, non-nil slice when the key is missing.
func (s Section) Floats(key string) []float64 {
	out := []float64{}
	if s == nil {
		return out
	}
	switch list := s[key].(type) {
	case []float64:
		out = append(out, list...)
	case []float32:
		for _, v := range list {
			f, _ := toFloat(v)
			out = append(out, f)
		}
	case []int:
		for _, v := range list {
			out = append(out, float64(v))
		}
	case []any:
		for _, v := range list {
			f, _ := toFloat(v)
			out = append(out, f)
		}
	}
	return out
}

// Map returns key as a nested section, or an empty section when missing.
func (s Section) Map(key string) Section {
	if s == nil {
		return Section{}
	}
	switch m := s[key].(type) {
	case Section:
		return m
	case map[string]any:
		return Section(m)
	case map[string]float64:
		out := make(Section, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out
	}
	return Section{}
}

// Clone returns a shallow copy of the section.
func (s Section) Clone() Section {
	if s == nil {
		return nil
	}
	out := make(Section, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
