package particle

import (
	"github.com/lixenwraith/stardrift/vmath"
)

// Field owns ambient particles that drift forever and wrap at the bounds
type Field struct {
	items  []Particle
	bounds vmath.Vec2
	rng    Rand
}

// NewField creates an empty field using rng for cross-axis re-entry
func NewField(rng Rand) *Field {
	return &Field{rng: rng}
}

// Reset replaces the whole set and the bounds, no diffing
func (f *Field) Reset(bounds vmath.Vec2, particles []Particle) {
	f.bounds = bounds
	f.items = f.items[:0]
	for i, p := range particles {
		p.ID = uint64(i + 1)
		p.Kind = KindAmbient
		p.Lifespan = 0
		p.BaseSize = p.Size
		f.items = append(f.items, p)
	}
}

// Update drifts each particle by its velocity and wraps exits
// A particle leaving one axis re-enters at the opposite edge with the other axis randomized
func (f *Field) Update() {
	w, h := f.bounds.X, f.bounds.Y
	if w <= 0 || h <= 0 {
		return
	}
	for i := range f.items {
		p := &f.items[i]
		p.Pos = p.Pos.Add(p.Vel)

		if p.Pos.Y < 0 || p.Pos.Y >= h {
			p.Pos.Y = vmath.Wrap(p.Pos.Y, h)
			p.Pos.X = f.rng.Float64() * w
			p.Wraps++
		}
		if p.Pos.X < 0 || p.Pos.X >= w {
			p.Pos.X = vmath.Wrap(p.Pos.X, w)
			p.Pos.Y = f.rng.Float64() * h
			p.Wraps++
		}
	}
}

// Bounds returns the extent the field wraps within
func (f *Field) Bounds() vmath.Vec2 {
	return f.bounds
}

// Len returns the particle count
func (f *Field) Len() int {
	return len(f.items)
}

// Each calls fn with a pointer to every particle
func (f *Field) Each(fn func(p *Particle)) {
	for i := range f.items {
		fn(&f.items[i])
	}
}

// Snapshot returns a copy of the field
func (f *Field) Snapshot() []Particle {
	out := make([]Particle, len(f.items))
	copy(out, f.items)
	return out
}
