package particle

import (
	"time"
)

// Store owns ephemeral particles and advances them once per tick
// Not safe for concurrent use; owned by one effect on the loop goroutine
type Store struct {
	items  []Particle
	nextID uint64
	shrink float64
}

// NewStore creates an empty store; shrink is the fraction of base size lost at full age
func NewStore(shrink float64) *Store {
	return &Store{
		items:  make([]Particle, 0, 64),
		nextID: 1,
		shrink: shrink,
	}
}

// SetShrink changes the size loss applied from the next Update
func (s *Store) SetShrink(shrink float64) {
	s.shrink = shrink
}

// Add inserts p as a fresh ephemeral particle and returns it with ID assigned
// Opacity starts at 1 and BaseSize is taken from Size
func (s *Store) Add(p Particle) Particle {
	p.ID = s.nextID
	s.nextID++
	p.Kind = KindEphemeral
	p.BaseSize = p.Size
	p.Opacity = 1
	p.Wraps = 0
	s.items = append(s.items, p)
	return p
}

// Update moves every particle by its velocity, recomputes decay at now,
// and filters out particles whose opacity reached zero
// removed is called once per dropped particle, in insertion order; may be nil
func (s *Store) Update(now time.Time, removed func(Particle)) int {
	kept := s.items[:0]
	dropped := 0
	for i := range s.items {
		p := s.items[i]
		p.Pos = p.Pos.Add(p.Vel)
		p.Decay(now, s.shrink)
		if p.Expired() {
			dropped++
			if removed != nil {
				removed(p)
			}
			continue
		}
		kept = append(kept, p)
	}
	// Zero the dropped tail so removed particles do not linger in the backing array
	for i := len(kept); i < len(s.items); i++ {
		s.items[i] = Particle{}
	}
	s.items = kept
	return dropped
}

// Clear drops every particle, calling removed for each
func (s *Store) Clear(removed func(Particle)) {
	if removed != nil {
		for _, p := range s.items {
			removed(p)
		}
	}
	clear(s.items)
	s.items = s.items[:0]
}

// Len returns the live particle count
func (s *Store) Len() int {
	return len(s.items)
}

// Each calls fn with a pointer to every live particle in insertion order
func (s *Store) Each(fn func(p *Particle)) {
	for i := range s.items {
		fn(&s.items[i])
	}
}

// Snapshot returns a copy of the live set
func (s *Store) Snapshot() []Particle {
	out := make([]Particle, len(s.items))
	copy(out, s.items)
	return out
}
