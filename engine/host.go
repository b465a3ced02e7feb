package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/lixenwraith/stardrift/event"
	"github.com/lixenwraith/stardrift/vmath"
)

// Capabilities are resolved once when the host is created
type Capabilities struct {
	// PointerMotion is false on hosts that cannot report hover motion,
	// the terminal analog of a touch-only device
	PointerMotion bool
}

// PointerMode overrides pointer-motion capability detection
type PointerMode uint8

const (
	PointerAuto PointerMode = iota // Trust what the host detects
	PointerOn
	PointerOff
)

// ParsePointerMode maps "auto"/"on"/"off"
func ParsePointerMode(s string) (PointerMode, error) {
	switch s {
	case "auto", "":
		return PointerAuto, nil
	case "on":
		return PointerOn, nil
	case "off":
		return PointerOff, nil
	default:
		return PointerAuto, fmt.Errorf("unknown pointer mode %q", s)
	}
}

// Resolve applies the override to a detected capability
func (m PointerMode) Resolve(detected bool) bool {
	switch m {
	case PointerOn:
		return true
	case PointerOff:
		return false
	default:
		return detected
	}
}

// Host is the mount target for effects: frame scheduling, input events,
// viewport size and capabilities
type Host struct {
	loop *Loop
	bus  *event.Bus
	caps Capabilities

	mu       sync.RWMutex
	viewport vmath.Vec2
}

// NewHost binds a loop and bus with the initial viewport in logical pixels
func NewHost(loop *Loop, bus *event.Bus, viewport vmath.Vec2, caps Capabilities) *Host {
	return &Host{
		loop:     loop,
		bus:      bus,
		caps:     caps,
		viewport: viewport,
	}
}

func (h *Host) Loop() *Loop {
	return h.loop
}

func (h *Host) Events() *event.Bus {
	return h.bus
}

func (h *Host) Capabilities() Capabilities {
	return h.caps
}

func (h *Host) RequestFrame(fn FrameFunc) FrameID {
	return h.loop.RequestFrame(fn)
}

func (h *Host) CancelFrame(id FrameID) {
	h.loop.CancelFrame(id)
}

func (h *Host) Now() time.Time {
	return h.loop.Now()
}

// Viewport returns the current size in logical pixels
func (h *Host) Viewport() vmath.Vec2 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.viewport
}

// Resize records the new viewport and notifies resize subscribers
// Call from the loop goroutine (directly or via Loop.Post)
func (h *Host) Resize(size vmath.Vec2) {
	h.mu.Lock()
	h.viewport = size
	h.mu.Unlock()
	h.bus.Publish(event.Event{Type: event.EventResize, Time: h.Now(), Size: size})
}

// PointerMove notifies pointer subscribers; pos is in logical pixels
func (h *Host) PointerMove(pos vmath.Vec2) {
	h.bus.Publish(event.Event{Type: event.EventPointerMove, Time: h.Now(), Pos: pos})
}

// SetVisible pauses or resumes frame delivery and notifies visibility subscribers
func (h *Host) SetVisible(visible bool) {
	h.loop.SetVisible(visible)
	h.bus.Publish(event.Event{Type: event.EventVisibility, Time: h.Now(), Visible: visible})
}
