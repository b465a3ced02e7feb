package status

import (
	"math"
	"sync/atomic"
)

// AtomicFloat is a float64 stored as bits; zero value reads 0.0
type AtomicFloat struct {
	bits atomic.Uint64
}

func (f *AtomicFloat) Store(v float64) {
	f.bits.Store(math.Float64bits(v))
}

func (f *AtomicFloat) Load() float64 {
	return math.Float64frombits(f.bits.Load())
}
