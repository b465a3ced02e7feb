// Package emitter decides when particles are created and with what initial state
package emitter

import (
	"github.com/lixenwraith/stardrift/parameter"
	"github.com/lixenwraith/stardrift/particle"
	"github.com/lixenwraith/stardrift/vmath"
)

// Direction is the vertical drift sense of ambient particles
type Direction int8

const (
	DriftUp   Direction = -1
	DriftDown Direction = 1
)

func (d Direction) String() string {
	if d == DriftDown {
		return "down"
	}
	return "up"
}

// ParseDirection maps "up"/"down" to a Direction
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "up", "":
		return DriftUp, true
	case "down":
		return DriftDown, true
	default:
		return DriftUp, false
	}
}

// AmbientConfig tunes the starfield population
type AmbientConfig struct {
	Count     int
	RadiusMin float64
	RadiusMax float64
	AlphaMin  float64
	AlphaMax  float64
	SpeedMin  float64
	SpeedMax  float64
	Direction Direction
}

// DefaultAmbientConfig returns the stock starfield tuning
func DefaultAmbientConfig() AmbientConfig {
	return AmbientConfig{
		Count:     parameter.StarCount,
		RadiusMin: parameter.StarRadiusMin,
		RadiusMax: parameter.StarRadiusMax,
		AlphaMin:  parameter.StarAlphaMin,
		AlphaMax:  parameter.StarAlphaMax,
		SpeedMin:  parameter.StarSpeedMin,
		SpeedMax:  parameter.StarSpeedMax,
		Direction: DriftUp,
	}
}

// Ambient regenerates a fixed-size particle set for given bounds
type Ambient struct {
	cfg AmbientConfig
	rng particle.Rand
}

// NewAmbient creates an ambient emitter
func NewAmbient(cfg AmbientConfig, rng particle.Rand) *Ambient {
	return &Ambient{cfg: cfg, rng: rng}
}

// Config returns the current tuning
func (a *Ambient) Config() AmbientConfig {
	return a.cfg
}

// SetConfig replaces the tuning; takes effect on the next Populate
func (a *Ambient) SetConfig(cfg AmbientConfig) {
	a.cfg = cfg
}

// Populate returns exactly Count particles placed uniformly within bounds
// Returns nil for empty bounds or non-positive count
func (a *Ambient) Populate(bounds vmath.Vec2) []particle.Particle {
	if bounds.Empty() || a.cfg.Count <= 0 {
		return nil
	}
	out := make([]particle.Particle, a.cfg.Count)
	dir := float64(a.cfg.Direction)
	if dir == 0 {
		dir = float64(DriftUp)
	}
	for i := range out {
		radius := uniform(a.rng, a.cfg.RadiusMin, a.cfg.RadiusMax)
		alpha := uniform(a.rng, a.cfg.AlphaMin, a.cfg.AlphaMax)
		speed := uniform(a.rng, a.cfg.SpeedMin, a.cfg.SpeedMax)
		out[i] = particle.Particle{
			Kind:     particle.KindAmbient,
			Pos:      vmath.V2(a.rng.Float64()*bounds.X, a.rng.Float64()*bounds.Y),
			Vel:      vmath.V2(0, dir*speed),
			Size:     radius,
			BaseSize: radius,
			Opacity:  alpha,
		}
	}
	return out
}

// uniform returns a value in [lo, hi)
func uniform(rng particle.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
