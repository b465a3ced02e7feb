package teahost

import (
	"bytes"
	"context"
	"io"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/stardrift/effect"
	"github.com/lixenwraith/stardrift/engine"
	"github.com/lixenwraith/stardrift/event"
	"github.com/lixenwraith/stardrift/render"
	"github.com/lixenwraith/stardrift/status"
)

var (
	epoch     = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	testScale = render.Scale{CellW: 8, CellH: 16}
)

func newModel(t *testing.T, opts Options) (*Model, *engine.ManualClock) {
	t.Helper()
	clock := engine.NewManualClock(epoch)
	loop := engine.NewLoop(clock, 16*time.Millisecond)
	if !opts.Scale.Valid() {
		opts.Scale = testScale
	}
	m, err := New(loop, event.NewBus(), opts)
	require.NoError(t, err)
	return m, clock
}

// frame advances the clock and delivers one tick, checking it re-arms
func frame(t *testing.T, m *Model, clock *engine.ManualClock) {
	t.Helper()
	clock.Advance(16 * time.Millisecond)
	_, cmd := m.Update(frameMsg(clock.Now()))
	require.NotNil(t, cmd)
}

func TestNewRejectsInvalidScale(t *testing.T) {
	loop := engine.NewLoop(engine.NewManualClock(epoch), time.Millisecond)
	_, err := New(loop, event.NewBus(), Options{Scale: render.Scale{CellW: 8}})
	assert.Error(t, err)
}

func TestPointerCapability(t *testing.T) {
	m, _ := newModel(t, Options{})
	assert.True(t, m.Engine().Capabilities().PointerMotion)

	m, _ = newModel(t, Options{Pointer: engine.PointerOff})
	assert.False(t, m.Engine().Capabilities().PointerMotion)
}

func TestInitReturnsTick(t *testing.T) {
	m, _ := newModel(t, Options{})
	assert.NotNil(t, m.Init())
}

func TestWindowSizeResizesViewport(t *testing.T) {
	m, _ := newModel(t, Options{})
	assert.Empty(t, m.View())

	m.Update(tea.WindowSizeMsg{Width: 40, Height: 10})
	vp := m.Engine().Viewport()
	assert.Equal(t, float64(320), vp.X)
	assert.Equal(t, float64(160), vp.Y)

	w, h := m.Compositor().Buffer().Bounds()
	assert.Equal(t, 40, w)
	assert.Equal(t, 10, h)
}

func TestViewShowsStars(t *testing.T) {
	m, clock := newModel(t, Options{Background: render.RGBBlack})
	m.Update(tea.WindowSizeMsg{Width: 40, Height: 10})

	canvas := render.NewCanvas(testScale, render.RGBBlack)
	m.Compositor().Register(canvas, -1)
	cfg := effect.DefaultStarfieldConfig()
	cfg.Emitter.Count = 30
	cfg.Emitter.AlphaMin, cfg.Emitter.AlphaMax = 1, 1
	sf := effect.NewStarfield(m.Engine(), canvas, cfg, effect.WithRand(rand.New(rand.NewPCG(9, 9))))
	sf.Start()
	defer sf.Stop()

	frame(t, m, clock)

	view := m.View()
	assert.Len(t, strings.Split(view, "\n"), 10)
	assert.True(t, strings.ContainsAny(view, "·•●█"), "no star glyph in view")
}

func TestMouseSpawnsTrail(t *testing.T) {
	m, clock := newModel(t, Options{})
	m.Update(tea.WindowSizeMsg{Width: 40, Height: 10})

	layer := render.NewLayer(testScale)
	m.Compositor().Register(layer, 9999)
	tr := effect.NewTrail(m.Engine(), layer, effect.DefaultTrailConfig(), effect.WithRand(rand.New(rand.NewPCG(1, 1))))
	tr.Start()
	defer tr.Stop()

	m.Update(tea.MouseMsg{X: 10, Y: 5, Action: tea.MouseActionMotion, Button: tea.MouseButtonNone})
	assert.Equal(t, 1, tr.Len())

	// Same cell again is below the spawn distance
	m.Update(tea.MouseMsg{X: 10, Y: 5, Action: tea.MouseActionMotion, Button: tea.MouseButtonNone})
	assert.Equal(t, 1, tr.Len())

	for i := 0; i < 40; i++ {
		frame(t, m, clock)
	}
	assert.Zero(t, tr.Len())
	assert.Zero(t, layer.Len())
}

func TestFocusGatesFrames(t *testing.T) {
	m, clock := newModel(t, Options{})
	m.Update(tea.WindowSizeMsg{Width: 10, Height: 5})

	m.Update(tea.BlurMsg{})
	assert.False(t, m.loop.Visible())
	before := m.loop.Frames()
	frame(t, m, clock)
	assert.Equal(t, before, m.loop.Frames())

	m.Update(tea.FocusMsg{})
	frame(t, m, clock)
	assert.Equal(t, before+1, m.loop.Frames())
}

func TestQuitKeys(t *testing.T) {
	m, _ := newModel(t, Options{})
	for _, k := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune{'q'}},
		{Type: tea.KeyEsc},
		{Type: tea.KeyCtrlC},
	} {
		_, cmd := m.Update(k)
		require.NotNil(t, cmd, k.String())
		assert.Equal(t, tea.QuitMsg{}, cmd(), k.String())
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	assert.Nil(t, cmd)
}

func TestStatusLineInView(t *testing.T) {
	reg := status.NewRegistry()
	reg.Ints.Get(status.KeyStars).Store(7)
	m, _ := newModel(t, Options{ShowStatus: true, Status: reg})
	m.Update(tea.WindowSizeMsg{Width: 60, Height: 3})
	m.Compositor().Compose()

	lines := strings.Split(m.View(), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[2], "starfield.stars=7")
}

func TestRunStopsOnCancel(t *testing.T) {
	m, _ := newModel(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, m, tea.WithInput(&bytes.Buffer{}), tea.WithOutput(io.Discard))
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("program did not stop on cancel")
	}
}

func TestOnReadyRunsOnceAfterFirstSize(t *testing.T) {
	calls := 0
	var m *Model
	m, _ = newModel(t, Options{OnReady: func() {
		calls++
		assert.NotZero(t, m.Engine().Viewport().X)
	}})

	m.Update(frameMsg(epoch))
	assert.Zero(t, calls)

	m.Update(tea.WindowSizeMsg{Width: 20, Height: 5})
	m.Update(tea.WindowSizeMsg{Width: 30, Height: 6})
	assert.Equal(t, 1, calls)
}
