// Package status is a small metrics facade for effects and hosts.
// Effects cache metric pointers at construction and store into them every frame;
// hosts read them for the status line.
package status

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Well-known metric keys
const (
	KeyFrames         = "engine.frames"
	KeyFPS            = "engine.fps"
	KeyStars          = "starfield.stars"
	KeyStarfieldReset = "starfield.resets"
	KeyTrailParticles = "trail.particles"
	KeyTrailEmitted   = "trail.emitted"
	KeyTrailEnabled   = "trail.enabled"
)

// Registry groups metric maps by value type
type Registry struct {
	Bools  *MetricMap[atomic.Bool]
	Ints   *MetricMap[atomic.Int64]
	Floats *MetricMap[AtomicFloat]
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{
		Bools:  NewMetricMap[atomic.Bool](),
		Ints:   NewMetricMap[atomic.Int64](),
		Floats: NewMetricMap[AtomicFloat](),
	}
}

// Line renders every metric as "key=value" pairs in key order, ints then floats then bools
func (r *Registry) Line() string {
	var sb strings.Builder
	sep := func() {
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
	}
	r.Ints.Range(func(k string, v *atomic.Int64) {
		sep()
		fmt.Fprintf(&sb, "%s=%d", k, v.Load())
	})
	r.Floats.Range(func(k string, v *AtomicFloat) {
		sep()
		fmt.Fprintf(&sb, "%s=%.1f", k, v.Load())
	})
	r.Bools.Range(func(k string, v *atomic.Bool) {
		sep()
		fmt.Fprintf(&sb, "%s=%t", k, v.Load())
	})
	return sb.String()
}
