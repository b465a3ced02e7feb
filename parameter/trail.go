package parameter

import "time"

// Cursor trail (ephemeral) defaults
const (
	// TrailLifespan is the fade duration of one trail particle
	TrailLifespan = 600 * time.Millisecond

	// TrailSpawnDistance is the minimum pointer travel (logical pixels) before a new particle is emitted
	TrailSpawnDistance = 15.0

	// TrailSizeMin/Max bound initial particle size in logical pixels
	TrailSizeMin = 2.0
	TrailSizeMax = 6.0

	// TrailVelocitySpread is the full width of the per-axis velocity range, centered on zero
	TrailVelocitySpread = 0.5

	// TrailShrink is the fraction of base size lost at full age
	TrailShrink = 0.5

	// TrailColor is the particle fill color
	TrailColor = "#FF6B6B"
)
