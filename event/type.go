package event

import (
	"time"

	"github.com/lixenwraith/stardrift/vmath"
)

// EventType represents the category of host input event
type EventType int

const (
	// EventResize reports new viewport dimensions
	// Trigger: terminal resize, tea.WindowSizeMsg | Payload: Size
	EventResize EventType = iota

	// EventPointerMove reports pointer motion in logical pixels
	// Trigger: mouse motion | Payload: Pos
	EventPointerMove

	// EventVisibility reports the view being shown or hidden
	// Trigger: focus gained/lost | Payload: Visible
	EventVisibility

	eventTypeCount
)

var typeNames = [eventTypeCount]string{
	EventResize:      "Resize",
	EventPointerMove: "PointerMove",
	EventVisibility:  "Visibility",
}

// String returns the event type name
func (t EventType) String() string {
	if t < 0 || t >= eventTypeCount {
		return "Unknown"
	}
	return typeNames[t]
}

// Event is a single input notification, fields populated per type
type Event struct {
	Type    EventType
	Time    time.Time
	Pos     vmath.Vec2 // EventPointerMove
	Size    vmath.Vec2 // EventResize
	Visible bool       // EventVisibility
}
