package effect

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/lixenwraith/stardrift/emitter"
	"github.com/lixenwraith/stardrift/engine"
	"github.com/lixenwraith/stardrift/event"
	"github.com/lixenwraith/stardrift/parameter"
	"github.com/lixenwraith/stardrift/particle"
	"github.com/lixenwraith/stardrift/render"
	"github.com/lixenwraith/stardrift/status"
	"github.com/lixenwraith/stardrift/vmath"
)

// StarfieldConfig tunes the ambient background
type StarfieldConfig struct {
	Emitter emitter.AmbientConfig
	Color   render.RGB
}

// DefaultStarfieldConfig returns the stock starfield
func DefaultStarfieldConfig() StarfieldConfig {
	return StarfieldConfig{
		Emitter: emitter.DefaultAmbientConfig(),
		Color:   render.MustParseHex(parameter.StarColor),
	}
}

// Starfield draws a fixed set of drifting stars on a canvas
// The set is regenerated in full on start, on every resize and on reconfigure
type Starfield struct {
	host   Host
	canvas *render.Canvas
	color  render.RGB
	logger *zap.Logger

	emit  *emitter.Ambient
	field *particle.Field

	frameID   engine.FrameID
	resizeSub *event.Subscription
	running   bool

	statStars  *atomic.Int64
	statResets *atomic.Int64
}

// NewStarfield creates an unmounted starfield drawing onto canvas
func NewStarfield(host Host, canvas *render.Canvas, cfg StarfieldConfig, opts ...Option) *Starfield {
	o := buildOptions(opts)
	return &Starfield{
		host:       host,
		canvas:     canvas,
		color:      cfg.Color,
		logger:     o.logger.Named("starfield"),
		emit:       emitter.NewAmbient(cfg.Emitter, o.rng),
		field:      particle.NewField(o.rng),
		statStars:  o.int(status.KeyStars),
		statResets: o.int(status.KeyStarfieldReset),
	}
}

// Start populates the field for the current viewport and begins animating
// Without a canvas it does nothing and registers nothing
func (s *Starfield) Start() {
	if s.running {
		return
	}
	if s.canvas == nil {
		s.logger.Debug("no canvas, starfield not mounted")
		return
	}
	s.running = true
	s.regenerate(s.host.Viewport())
	s.resizeSub = s.host.Events().Subscribe(event.EventResize, s.onResize)
	s.frameID = s.host.RequestFrame(s.draw)
	s.logger.Debug("starfield started", zap.Int("stars", s.field.Len()))
}

// Stop cancels the pending frame and detaches listeners. Safe to call repeatedly
func (s *Starfield) Stop() {
	if s.frameID != 0 {
		s.host.CancelFrame(s.frameID)
		s.frameID = 0
	}
	s.resizeSub.Unsubscribe()
	s.resizeSub = nil
	if s.running {
		s.logger.Debug("starfield stopped")
	}
	s.running = false
}

// Running reports whether the animation loop is active
func (s *Starfield) Running() bool {
	return s.running
}

// Reconfigure applies new tuning; a running field is regenerated immediately
func (s *Starfield) Reconfigure(cfg StarfieldConfig) {
	s.emit.SetConfig(cfg.Emitter)
	s.color = cfg.Color
	if s.running {
		s.regenerate(s.host.Viewport())
	}
}

// Len returns the number of stars
func (s *Starfield) Len() int {
	return s.field.Len()
}

// Snapshot returns a copy of the stars
func (s *Starfield) Snapshot() []particle.Particle {
	return s.field.Snapshot()
}

func (s *Starfield) onResize(ev event.Event) {
	s.regenerate(ev.Size)
}

func (s *Starfield) regenerate(bounds vmath.Vec2) {
	s.field.Reset(bounds, s.emit.Populate(bounds))
	s.statStars.Store(int64(s.field.Len()))
	s.statResets.Add(1)
}

// draw is the per-frame callback: clear, drift, paint, re-request
func (s *Starfield) draw(_ time.Time) {
	s.frameID = 0
	ctx, ok := s.canvas.Context()
	if !ok {
		s.logger.Debug("canvas unavailable, stopping starfield")
		s.Stop()
		return
	}

	ctx.Clear()
	s.field.Update()
	color := s.color
	s.field.Each(func(p *particle.Particle) {
		ctx.FillCircle(p.Pos, p.Size, color, p.Opacity)
	})

	s.frameID = s.host.RequestFrame(s.draw)
}
