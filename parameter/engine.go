package parameter

import "time"

// Engine and host defaults
const (
	// FrameInterval is the display refresh cadence of terminal hosts (~60 FPS)
	FrameInterval = 16 * time.Millisecond

	// CellWidth/CellHeight map one terminal cell to logical pixels
	CellWidth  = 8
	CellHeight = 16

	// BackgroundColor is the canvas clear color (Tokyo Night)
	BackgroundColor = "#1A1B26"

	// TaskQueueSize bounds pending cross-goroutine tasks posted to the loop
	TaskQueueSize = 256

	// ConfigDebounce collapses bursts of file writes into one reload
	ConfigDebounce = 200 * time.Millisecond
)

// Render z-order, lower draws first
const (
	ZBackground = -1
	ZOverlay    = 9999
)

// Validation ceilings for configured values
const (
	MaxStarCount     = 10000
	MaxParticleSize  = 1024 // Logical pixels
	MaxParticleSpeed = 1000 // Logical pixels per frame
)
