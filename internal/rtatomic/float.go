// Package rtatomic provides lock-free float64 storage for values read on
// the render thread and written from the UI/script thread (or vice versa),
// such as the timer scheduler's tempo cell.
//
// Grounded on justyntemme-clapgo's pkg/util/atomic.go (float64<->bits
// conversion) and pkg/param/param.go (Parameter.Value/SetValue atomic
// storage pattern).
package rtatomic

import (
	"math"
	"sync/atomic"
)

// Float64 is an atomically-accessed float64.
type Float64 struct {
	bits atomic.Uint64
}

// NewFloat64 constructs a Float64 initialized to v.
func NewFloat64(v float64) *Float64 {
	f := &Float64{}
	f.Store(v)
	return f
}

// Load returns the current value.
func (f *Float64) Load() float64 {
	return math.Float64frombits(f.bits.Load())
}

// Store sets the current value.
func (f *Float64) Store(v float64) {
	f.bits.Store(math.Float64bits(v))
}
