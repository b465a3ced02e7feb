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
)

// TrailConfig tunes the cursor trail
type TrailConfig struct {
	Emitter emitter.TrailConfig
	Color   render.RGB
	Shrink  float64
}

// DefaultTrailConfig returns the stock trail
func DefaultTrailConfig() TrailConfig {
	return TrailConfig{
		Emitter: emitter.DefaultTrailConfig(),
		Color:   render.MustParseHex(parameter.TrailColor),
		Shrink:  parameter.TrailShrink,
	}
}

// Trail spawns fading particles behind the pointer, one layer node per particle
// On hosts without pointer motion it stays disabled for its whole lifetime
type Trail struct {
	host   Host
	layer  *render.Layer
	color  render.RGB
	logger *zap.Logger

	emit  *emitter.Trail
	store *particle.Store
	nodes map[uint64]*render.Node

	frameID engine.FrameID
	moveSub *event.Subscription
	running bool

	statLive    *atomic.Int64
	statEmitted *atomic.Int64
}

// NewTrail creates an unmounted trail drawing onto layer
// Pointer capability is read from host once, here
func NewTrail(host Host, layer *render.Layer, cfg TrailConfig, opts ...Option) *Trail {
	o := buildOptions(opts)
	touchOnly := !host.Capabilities().PointerMotion
	o.reg.Bools.Get(status.KeyTrailEnabled).Store(!touchOnly)
	return &Trail{
		host:        host,
		layer:       layer,
		color:       cfg.Color,
		logger:      o.logger.Named("trail"),
		emit:        emitter.NewTrail(cfg.Emitter, o.rng, touchOnly),
		store:       particle.NewStore(cfg.Shrink),
		nodes:       make(map[uint64]*render.Node),
		statLive:    o.int(status.KeyTrailParticles),
		statEmitted: o.int(status.KeyTrailEmitted),
	}
}

// Enabled reports whether the host can drive the trail at all
func (t *Trail) Enabled() bool {
	return t.emit.Enabled()
}

// Start subscribes to pointer motion and begins animating
// Disabled trails and trails without a layer register nothing
func (t *Trail) Start() {
	if t.running {
		return
	}
	if !t.emit.Enabled() {
		t.logger.Debug("pointer motion unsupported, trail disabled")
		return
	}
	if t.layer == nil {
		t.logger.Debug("no layer, trail not mounted")
		return
	}
	t.running = true
	t.moveSub = t.host.Events().Subscribe(event.EventPointerMove, t.onMove)
	t.frameID = t.host.RequestFrame(t.update)
	t.logger.Debug("trail started")
}

// Stop cancels the pending frame, detaches listeners and removes every node
// Safe to call repeatedly
func (t *Trail) Stop() {
	if t.frameID != 0 {
		t.host.CancelFrame(t.frameID)
		t.frameID = 0
	}
	t.moveSub.Unsubscribe()
	t.moveSub = nil
	t.store.Clear(t.removeNode)
	t.statLive.Store(0)
	if t.running {
		t.logger.Debug("trail stopped")
	}
	t.running = false
}

// Running reports whether the animation loop is active
func (t *Trail) Running() bool {
	return t.running
}

// Reconfigure retunes emission, decay and color; live particles keep their position and age
func (t *Trail) Reconfigure(cfg TrailConfig) {
	t.emit.SetConfig(cfg.Emitter)
	t.store.SetShrink(cfg.Shrink)
	t.color = cfg.Color
}

// Len returns the live particle count
func (t *Trail) Len() int {
	return t.store.Len()
}

// Snapshot returns a copy of the live particles
func (t *Trail) Snapshot() []particle.Particle {
	return t.store.Snapshot()
}

func (t *Trail) onMove(ev event.Event) {
	// A listener snapshot can still deliver to a trail stopped earlier in the same publish
	if !t.running || !t.layer.Attached() {
		return
	}
	p, ok := t.emit.Offer(ev.Pos, t.host.Now())
	if !ok {
		return
	}
	p = t.store.Add(p)
	t.nodes[p.ID] = t.layer.Insert(t.style(&p))
	t.statEmitted.Add(1)
	t.statLive.Store(int64(t.store.Len()))
}

// update is the per-frame callback: age, filter, restyle, re-request
func (t *Trail) update(now time.Time) {
	t.frameID = 0
	if !t.layer.Attached() {
		t.logger.Debug("layer detached, stopping trail")
		t.Stop()
		return
	}

	t.store.Update(now, t.removeNode)
	t.store.Each(func(p *particle.Particle) {
		if n, ok := t.nodes[p.ID]; ok {
			n.SetStyle(t.style(p))
		}
	})
	t.statLive.Store(int64(t.store.Len()))

	t.frameID = t.host.RequestFrame(t.update)
}

func (t *Trail) removeNode(p particle.Particle) {
	if n, ok := t.nodes[p.ID]; ok {
		n.Remove()
		delete(t.nodes, p.ID)
	}
}

func (t *Trail) style(p *particle.Particle) render.NodeStyle {
	return render.NodeStyle{
		Pos:     p.Pos,
		Size:    p.Size,
		Opacity: p.Opacity,
		Color:   t.color,
	}
}
