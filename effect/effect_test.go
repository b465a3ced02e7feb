package effect

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/stardrift/engine"
	"github.com/lixenwraith/stardrift/event"
	"github.com/lixenwraith/stardrift/render"
	"github.com/lixenwraith/stardrift/status"
	"github.com/lixenwraith/stardrift/vmath"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

var testScale = render.Scale{CellW: 8, CellH: 16}

type harness struct {
	clock  *engine.ManualClock
	loop   *engine.Loop
	bus    *event.Bus
	host   *engine.Host
	comp   *render.Compositor
	canvas *render.Canvas
	layer  *render.Layer
	reg    *status.Registry
}

func newHarness(t *testing.T, pointer bool) *harness {
	t.Helper()
	const cols, rows = 80, 24
	h := &harness{
		clock: engine.NewManualClock(epoch),
		bus:   event.NewBus(),
		reg:   status.NewRegistry(),
	}
	h.loop = engine.NewLoop(h.clock, 16*time.Millisecond)
	h.host = engine.NewHost(h.loop, h.bus, testScale.Viewport(cols, rows), engine.Capabilities{PointerMotion: pointer})
	h.comp = render.NewCompositor(cols, rows, render.RGBBlack)
	h.canvas = render.NewCanvas(testScale, render.RGBBlack)
	h.layer = render.NewLayer(testScale)
	h.comp.Register(h.canvas, -1)
	h.comp.Register(h.layer, 9999)
	h.loop.SetPresenter(func(time.Time) { h.comp.Compose() })
	return h
}

func (h *harness) opts() []Option {
	return []Option{WithRand(rand.New(rand.NewPCG(5, 8))), WithStatus(h.reg)}
}

// step advances the clock by d then runs one frame
func (h *harness) step(d time.Duration) {
	h.clock.Advance(d)
	h.loop.Step()
}

func (h *harness) resize(cols, rows int) {
	h.comp.Resize(cols, rows)
	h.host.Resize(testScale.Viewport(cols, rows))
}

func TestStarfieldCountInvariantAndResize(t *testing.T) {
	h := newHarness(t, true)
	cfg := DefaultStarfieldConfig()
	sf := NewStarfield(h.host, h.canvas, cfg, h.opts()...)
	sf.Start()
	require.True(t, sf.Running())
	assert.Equal(t, cfg.Emitter.Count, sf.Len())

	for i := 0; i < 200; i++ {
		h.step(16 * time.Millisecond)
		require.Equal(t, cfg.Emitter.Count, sf.Len())
	}

	before := sf.Snapshot()
	h.resize(120, 40)
	assert.Equal(t, cfg.Emitter.Count, sf.Len())
	after := sf.Snapshot()
	assert.NotEqual(t, before[0].Pos, after[0].Pos, "resize regenerates the set")
	bounds := testScale.Viewport(120, 40)
	for _, p := range after {
		assert.Less(t, p.Pos.X, bounds.X)
		assert.Less(t, p.Pos.Y, bounds.Y)
	}
	assert.Equal(t, int64(cfg.Emitter.Count), h.reg.Ints.Get(status.KeyStars).Load())
	assert.Equal(t, int64(2), h.reg.Ints.Get(status.KeyStarfieldReset).Load())
}

func TestStarfieldPaintsCanvas(t *testing.T) {
	h := newHarness(t, true)
	cfg := DefaultStarfieldConfig()
	cfg.Color = render.RGBWhite
	sf := NewStarfield(h.host, h.canvas, cfg, h.opts()...)
	sf.Start()
	h.step(0)

	buf := h.comp.Buffer()
	painted := 0
	for _, c := range buf.Cells() {
		if c.Rune != 0 {
			painted++
			assert.Greater(t, c.Fg.R, uint8(0))
		}
	}
	assert.Positive(t, painted)
	assert.LessOrEqual(t, painted, cfg.Emitter.Count)
}

func TestStarfieldTeardownIdempotent(t *testing.T) {
	h := newHarness(t, true)
	sf := NewStarfield(h.host, h.canvas, DefaultStarfieldConfig(), h.opts()...)
	sf.Start()
	sf.Start()
	assert.Equal(t, 1, h.loop.Pending())
	assert.Equal(t, 1, h.bus.Listeners(event.EventResize))

	sf.Stop()
	sf.Stop()
	assert.False(t, sf.Running())
	assert.Zero(t, h.loop.Pending())
	assert.Zero(t, h.bus.Total())

	// No further drawing once stopped
	h.step(16 * time.Millisecond)
	assert.Zero(t, h.loop.Pending())
}

func TestStarfieldStopsWhenCanvasUnavailable(t *testing.T) {
	h := newHarness(t, true)
	sf := NewStarfield(h.host, h.canvas, DefaultStarfieldConfig(), h.opts()...)
	sf.Start()
	h.step(16 * time.Millisecond)
	require.Equal(t, 1, h.loop.Pending())

	h.comp.Unregister(h.canvas)
	h.step(16 * time.Millisecond)
	assert.False(t, sf.Running())
	assert.Zero(t, h.loop.Pending())
	assert.Zero(t, h.bus.Total())

	sf.Stop()
}

func TestStarfieldWithoutCanvasRegistersNothing(t *testing.T) {
	h := newHarness(t, true)
	sf := NewStarfield(h.host, nil, DefaultStarfieldConfig(), h.opts()...)
	sf.Start()
	assert.False(t, sf.Running())
	assert.Zero(t, h.loop.Pending())
	assert.Zero(t, h.bus.Total())
	sf.Stop()
	sf.Stop()
}

func TestStarfieldReconfigure(t *testing.T) {
	h := newHarness(t, true)
	cfg := DefaultStarfieldConfig()
	sf := NewStarfield(h.host, h.canvas, cfg, h.opts()...)

	cfg.Emitter.Count = 10
	sf.Reconfigure(cfg)
	assert.Zero(t, sf.Len(), "stopped field is not regenerated")

	sf.Start()
	assert.Equal(t, 10, sf.Len())
	cfg.Emitter.Count = 25
	sf.Reconfigure(cfg)
	assert.Equal(t, 25, sf.Len())
}

func TestTrailLifecycleScenario(t *testing.T) {
	h := newHarness(t, true)
	cfg := DefaultTrailConfig()
	tr := NewTrail(h.host, h.layer, cfg, h.opts()...)
	tr.Start()
	require.True(t, tr.Enabled())

	h.host.PointerMove(vmath.V2(200, 100))
	require.Equal(t, 1, tr.Len())
	assert.Equal(t, 1, h.layer.Len())

	h.step(0)
	p := tr.Snapshot()[0]
	assert.InDelta(t, 1.0, p.Opacity, 1e-9)

	h.step(300 * time.Millisecond)
	p = tr.Snapshot()[0]
	assert.InDelta(t, 0.5, p.Opacity, 1e-9)
	assert.InDelta(t, p.BaseSize*0.75, p.Size, 1e-9)

	h.step(300 * time.Millisecond)
	assert.Zero(t, tr.Len())
	assert.Zero(t, h.layer.Len(), "node removed with its particle")
	assert.Equal(t, int64(1), h.reg.Ints.Get(status.KeyTrailEmitted).Load())
	assert.Zero(t, h.reg.Ints.Get(status.KeyTrailParticles).Load())
}

func TestTrailSpawnSuppressionThroughBus(t *testing.T) {
	h := newHarness(t, true)
	tr := NewTrail(h.host, h.layer, DefaultTrailConfig(), h.opts()...)
	tr.Start()

	h.host.PointerMove(vmath.V2(300, 300))
	require.Equal(t, 1, tr.Len())

	for i := 1; i <= 14; i++ {
		h.host.PointerMove(vmath.V2(300+float64(i), 300))
	}
	assert.Equal(t, 1, tr.Len())

	h.host.PointerMove(vmath.V2(300, 320))
	assert.Equal(t, 2, tr.Len())
	assert.Equal(t, 2, h.layer.Len())
}

func TestTrailNodesTrackParticleStyle(t *testing.T) {
	h := newHarness(t, true)
	tr := NewTrail(h.host, h.layer, DefaultTrailConfig(), h.opts()...)
	tr.Start()
	h.host.PointerMove(vmath.V2(100, 100))
	h.step(150 * time.Millisecond)

	buf := h.comp.Buffer()
	col, row := testScale.ToCell(tr.Snapshot()[0].Pos)
	cell := buf.Get(col, row)
	assert.NotEqual(t, rune(0), cell.Rune)
	assert.Greater(t, cell.Fg.R, cell.Fg.B, "trail color is red-dominant")
}

func TestTrailTouchOnlyDisabled(t *testing.T) {
	h := newHarness(t, false)
	tr := NewTrail(h.host, h.layer, DefaultTrailConfig(), h.opts()...)
	tr.Start()
	assert.False(t, tr.Enabled())
	assert.False(t, tr.Running())
	assert.Zero(t, h.bus.Total())
	assert.Zero(t, h.loop.Pending())

	h.host.PointerMove(vmath.V2(500, 500))
	assert.Zero(t, tr.Len())
	assert.False(t, h.reg.Bools.Get(status.KeyTrailEnabled).Load())
	tr.Stop()
}

func TestTrailTeardownIdempotent(t *testing.T) {
	h := newHarness(t, true)
	tr := NewTrail(h.host, h.layer, DefaultTrailConfig(), h.opts()...)
	tr.Start()
	h.host.PointerMove(vmath.V2(100, 100))
	h.host.PointerMove(vmath.V2(200, 200))
	require.Equal(t, 2, h.layer.Len())

	tr.Stop()
	tr.Stop()
	assert.Zero(t, tr.Len())
	assert.Zero(t, h.layer.Len())
	assert.Zero(t, h.loop.Pending())
	assert.Zero(t, h.bus.Total())

	h.host.PointerMove(vmath.V2(400, 400))
	assert.Zero(t, tr.Len())
}

func TestTrailStoppedMidPublishIgnoresMove(t *testing.T) {
	h := newHarness(t, true)
	tr := NewTrail(h.host, h.layer, DefaultTrailConfig(), h.opts()...)
	stopper := h.bus.Subscribe(event.EventPointerMove, func(event.Event) { tr.Stop() })
	defer stopper.Unsubscribe()
	tr.Start()

	h.host.PointerMove(vmath.V2(300, 300))
	assert.False(t, tr.Running())
	assert.Zero(t, tr.Len())
	assert.Zero(t, h.layer.Len())
	assert.Zero(t, h.loop.Pending())
}

func TestTrailStopsWhenLayerDetached(t *testing.T) {
	h := newHarness(t, true)
	tr := NewTrail(h.host, h.layer, DefaultTrailConfig(), h.opts()...)
	tr.Start()
	h.host.PointerMove(vmath.V2(100, 100))

	h.comp.Unregister(h.layer)
	h.step(16 * time.Millisecond)
	assert.False(t, tr.Running())
	assert.Zero(t, h.layer.Len())
	assert.Zero(t, h.bus.Total())
	assert.Zero(t, h.loop.Pending())
}

func TestTrailExpiresWhileHidden(t *testing.T) {
	h := newHarness(t, true)
	tr := NewTrail(h.host, h.layer, DefaultTrailConfig(), h.opts()...)
	tr.Start()
	h.host.PointerMove(vmath.V2(100, 100))
	h.step(16 * time.Millisecond)

	h.host.SetVisible(false)
	h.step(5 * time.Second)
	assert.Equal(t, 1, tr.Len(), "no frames while hidden")

	h.host.SetVisible(true)
	h.step(16 * time.Millisecond)
	assert.Zero(t, tr.Len())
	assert.True(t, tr.Running())
	assert.Equal(t, 1, h.loop.Pending())
}

func TestEffectsShareOneLoop(t *testing.T) {
	h := newHarness(t, true)
	sf := NewStarfield(h.host, h.canvas, DefaultStarfieldConfig(), h.opts()...)
	tr := NewTrail(h.host, h.layer, DefaultTrailConfig(), h.opts()...)
	sf.Start()
	tr.Start()
	assert.Equal(t, 2, h.loop.Pending())

	for i := 0; i < 10; i++ {
		h.host.PointerMove(vmath.V2(float64(i*40), float64(i*20)))
		h.step(16 * time.Millisecond)
	}
	assert.Equal(t, 2, h.loop.Pending())

	tr.Stop()
	sf.Stop()
	assert.Zero(t, h.loop.Pending())
	assert.Zero(t, h.bus.Total())
}
