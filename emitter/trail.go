package emitter

import (
	"time"

	"github.com/lixenwraith/stardrift/parameter"
	"github.com/lixenwraith/stardrift/particle"
	"github.com/lixenwraith/stardrift/vmath"
)

// TrailConfig tunes pointer-triggered emission
type TrailConfig struct {
	SpawnDistance  float64
	SizeMin        float64
	SizeMax        float64
	VelocitySpread float64
	Lifespan       time.Duration
}

// DefaultTrailConfig returns the stock trail tuning
func DefaultTrailConfig() TrailConfig {
	return TrailConfig{
		SpawnDistance:  parameter.TrailSpawnDistance,
		SizeMin:        parameter.TrailSizeMin,
		SizeMax:        parameter.TrailSizeMax,
		VelocitySpread: parameter.TrailVelocitySpread,
		Lifespan:       parameter.TrailLifespan,
	}
}

// Trail emits one particle per pointer move that travels past the spawn distance
// The touch-only flag is resolved once at construction and never re-evaluated
type Trail struct {
	cfg      TrailConfig
	rng      particle.Rand
	last     vmath.Vec2
	disabled bool
}

// NewTrail creates a trail emitter; touchOnly disables it for the session
func NewTrail(cfg TrailConfig, rng particle.Rand, touchOnly bool) *Trail {
	return &Trail{cfg: cfg, rng: rng, disabled: touchOnly}
}

// Enabled reports whether the emitter can ever produce particles
func (t *Trail) Enabled() bool {
	return !t.disabled
}

// Config returns the current tuning
func (t *Trail) Config() TrailConfig {
	return t.cfg
}

// SetConfig replaces the tuning for subsequent emissions
func (t *Trail) SetConfig(cfg TrailConfig) {
	t.cfg = cfg
}

// Last returns the last emitted coordinate
func (t *Trail) Last() vmath.Vec2 {
	return t.last
}

// Offer considers a pointer position and returns a new particle if it lies
// strictly farther than SpawnDistance from the last emitted coordinate
func (t *Trail) Offer(pos vmath.Vec2, now time.Time) (particle.Particle, bool) {
	if t.disabled {
		return particle.Particle{}, false
	}
	if vmath.Dist(pos, t.last) <= t.cfg.SpawnDistance {
		return particle.Particle{}, false
	}
	t.last = pos

	size := uniform(t.rng, t.cfg.SizeMin, t.cfg.SizeMax)
	half := t.cfg.VelocitySpread / 2
	return particle.Particle{
		Kind:      particle.KindEphemeral,
		Pos:       pos,
		Vel:       vmath.V2(uniform(t.rng, -half, half), uniform(t.rng, -half, half)),
		Size:      size,
		BaseSize:  size,
		Opacity:   1,
		CreatedAt: now,
		Lifespan:  t.cfg.Lifespan,
	}, true
}
