// Package terminal hosts effects on a tcell screen.
// Input is read on the pump goroutine and posted to the engine loop; the loop
// presenter composes all surfaces and flushes them to the screen once per frame.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/lixenwraith/stardrift/engine"
	"github.com/lixenwraith/stardrift/event"
	"github.com/lixenwraith/stardrift/render"
	"github.com/lixenwraith/stardrift/status"
)

// ErrQuit is returned by Pump when the user asks to exit
var ErrQuit = errors.New("terminal: quit requested")

// Options configures a Host
type Options struct {
	Scale      render.Scale
	Background render.RGB
	Pointer    engine.PointerMode
	ShowStatus bool
	Status     *status.Registry
	Logger     *zap.Logger
}

// Host binds a tcell screen to an engine loop
type Host struct {
	screen tcell.Screen
	loop   *engine.Loop
	engine *engine.Host
	comp   *render.Compositor
	scale  render.Scale
	logger *zap.Logger

	statusReg  *status.Registry
	showStatus bool
	statusFg   render.RGB

	closeOnce sync.Once
}

// New initializes screen and wires it to loop and bus
// On error the screen is left finalized
func New(screen tcell.Screen, loop *engine.Loop, bus *event.Bus, opts Options) (*Host, error) {
	if !opts.Scale.Valid() {
		return nil, fmt.Errorf("terminal: invalid cell scale %+v", opts.Scale)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("terminal init: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	screen.EnableMouse(tcell.MouseMotionEvents)
	screen.EnableFocus()
	screen.HideCursor()

	caps := engine.Capabilities{PointerMotion: opts.Pointer.Resolve(screen.HasMouse())}

	cols, rows := screen.Size()
	h := &Host{
		screen:     screen,
		loop:       loop,
		comp:       render.NewCompositor(cols, rows, opts.Background),
		scale:      opts.Scale,
		logger:     logger.Named("terminal"),
		statusReg:  opts.Status,
		showStatus: opts.ShowStatus && opts.Status != nil,
		statusFg:   render.Blend(opts.Background, render.RGBWhite, 0.6),
	}
	h.engine = engine.NewHost(loop, bus, opts.Scale.Viewport(cols, rows), caps)
	loop.SetPresenter(h.present)

	h.logger.Debug("terminal ready",
		zap.Int("cols", cols),
		zap.Int("rows", rows),
		zap.Bool("pointer", caps.PointerMotion))
	return h, nil
}

// Engine returns the mount target for effects
func (h *Host) Engine() *engine.Host {
	return h.engine
}

// Compositor returns the surface compositor
func (h *Host) Compositor() *render.Compositor {
	return h.comp
}

// Pump reads screen events until ctx is done, the screen closes, or the user quits
// Translated events are posted to the loop, never handled on this goroutine
func (h *Host) Pump(ctx context.Context) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = h.screen.PostEvent(tcell.NewEventInterrupt(nil))
		case <-stop:
		}
	}()

	for {
		ev := h.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}

		switch ev := ev.(type) {
		case *tcell.EventKey:
			if isQuitKey(ev) {
				h.logger.Debug("quit key")
				return ErrQuit
			}

		case *tcell.EventMouse:
			col, row := ev.Position()
			pos := h.scale.CellCenter(col, row)
			h.loop.Post(func() { h.engine.PointerMove(pos) })

		case *tcell.EventResize:
			cols, rows := ev.Size()
			h.loop.Post(func() { h.resize(cols, rows) })

		case *tcell.EventFocus:
			focused := ev.Focused
			h.loop.Post(func() { h.engine.SetVisible(focused) })
		}
	}
}

func isQuitKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyRune:
		return ev.Rune() == 'q'
	}
	return false
}

// resize runs on the loop goroutine: surfaces first, then subscribers
func (h *Host) resize(cols, rows int) {
	h.comp.Resize(cols, rows)
	h.screen.Sync()
	h.engine.Resize(h.scale.Viewport(cols, rows))
	h.logger.Debug("resized", zap.Int("cols", cols), zap.Int("rows", rows))
}

// present is the loop presenter: compose, flush, show
func (h *Host) present(_ time.Time) {
	buf := h.comp.Compose()
	w, ht := buf.Bounds()
	cells := buf.Cells()
	for y := 0; y < ht; y++ {
		row := cells[y*w : (y+1)*w]
		for x, c := range row {
			r := c.Rune
			if r == 0 {
				r = ' '
			}
			style := tcell.StyleDefault.Foreground(c.Fg.Tcell()).Background(c.Bg.Tcell())
			h.screen.SetContent(x, y, r, nil, style)
		}
	}
	if h.showStatus && ht > 0 {
		h.drawStatus(cells[(ht-1)*w:], w, ht-1)
	}
	h.screen.Show()
}

func (h *Host) drawStatus(row []render.Cell, width, y int) {
	line := []rune(h.statusReg.Line())
	for x := 0; x < width && x < len(line); x++ {
		style := tcell.StyleDefault.Foreground(h.statusFg.Tcell()).Background(row[x].Bg.Tcell())
		h.screen.SetContent(x, y, line[x], nil, style)
	}
}

// Close detaches surfaces and restores the terminal. Safe to call multiple times
func (h *Host) Close() {
	h.closeOnce.Do(func() {
		h.comp.Close()
		h.screen.Fini()
	})
}
