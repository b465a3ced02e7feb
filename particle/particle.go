// Package particle holds the particle entity and the two collections that own it:
// Store for short-lived particles that fade out, Field for long-lived particles
// that drift and wrap around the viewport.
package particle

import (
	"time"

	"github.com/lixenwraith/stardrift/vmath"
)

// Kind distinguishes long-lived drifting particles from fading ones
type Kind uint8

const (
	KindAmbient Kind = iota
	KindEphemeral
)

func (k Kind) String() string {
	switch k {
	case KindAmbient:
		return "ambient"
	case KindEphemeral:
		return "ephemeral"
	default:
		return "unknown"
	}
}

// Rand is the random source used by emitters and wraparound
// *rand.Rand from math/rand/v2 satisfies it
type Rand interface {
	Float64() float64
}

// Particle is a single animated point
type Particle struct {
	ID   uint64
	Kind Kind

	Pos vmath.Vec2
	Vel vmath.Vec2

	Size     float64 // Current radius
	BaseSize float64 // Radius at creation
	Opacity  float64 // [0, 1]

	CreatedAt time.Time
	Lifespan  time.Duration // Zero for ambient

	Wraps uint32 // Ambient only: number of edge re-entries
}

// Age returns normalized age (now-CreatedAt)/Lifespan, never negative
// Ambient particles and zero lifespans report 0
func (p *Particle) Age(now time.Time) float64 {
	if p.Lifespan <= 0 {
		return 0
	}
	age := float64(now.Sub(p.CreatedAt)) / float64(p.Lifespan)
	if age < 0 {
		return 0
	}
	return age
}

// Decay recomputes opacity and size from age at now
// size = BaseSize * (1 - age*shrink), floored at zero
func (p *Particle) Decay(now time.Time, shrink float64) {
	age := p.Age(now)
	p.Opacity = 1 - age
	if p.Opacity > 1 {
		p.Opacity = 1
	}
	size := p.BaseSize * (1 - age*shrink)
	if size < 0 {
		size = 0
	}
	p.Size = size
}

// Expired reports whether the particle must leave the live set
func (p *Particle) Expired() bool {
	return p.Kind == KindEphemeral && p.Opacity <= 0
}
