// Package teahost runs effects inside a bubbletea program.
// Frames arrive as tick messages and step the engine loop on the program goroutine,
// so no cross-goroutine posting is needed.
package teahost

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/lixenwraith/stardrift/engine"
	"github.com/lixenwraith/stardrift/event"
	"github.com/lixenwraith/stardrift/render"
	"github.com/lixenwraith/stardrift/status"
)

// styleCacheLimit bounds the per-color style cache; blended colors are unbounded
const styleCacheLimit = 4096

type frameMsg time.Time

type styleKey struct{ fg, bg render.RGB }

// Options configures a Model
type Options struct {
	Scale      render.Scale
	Background render.RGB
	Pointer    engine.PointerMode
	ShowStatus bool
	Status     *status.Registry
	Logger     *zap.Logger

	// OnReady runs once, after the first window size is known
	// Effects should mount here so their surfaces start with a real size
	OnReady func()
}

// Model is a tea.Model that owns the compositor and drives the loop
type Model struct {
	loop     *engine.Loop
	engine   *engine.Host
	comp     *render.Compositor
	scale    render.Scale
	interval time.Duration
	logger   *zap.Logger

	statusReg  *status.Registry
	showStatus bool
	statusFg   render.RGB

	styles map[styleKey]lipgloss.Style

	onReady func()
	ready   bool
}

// New builds a Model. The viewport is empty until the first window size message
func New(loop *engine.Loop, bus *event.Bus, opts Options) (*Model, error) {
	if !opts.Scale.Valid() {
		return nil, fmt.Errorf("teahost: invalid cell scale %+v", opts.Scale)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	// Programs run with all-motion mouse reporting
	caps := engine.Capabilities{PointerMotion: opts.Pointer.Resolve(true)}

	m := &Model{
		loop:       loop,
		comp:       render.NewCompositor(0, 0, opts.Background),
		scale:      opts.Scale,
		interval:   loop.Interval(),
		logger:     logger.Named("teahost"),
		statusReg:  opts.Status,
		showStatus: opts.ShowStatus && opts.Status != nil,
		statusFg:   render.Blend(opts.Background, render.RGBWhite, 0.6),
		styles:     make(map[styleKey]lipgloss.Style),
		onReady:    opts.OnReady,
	}
	m.engine = engine.NewHost(loop, bus, opts.Scale.Viewport(0, 0), caps)
	loop.SetPresenter(func(time.Time) { m.comp.Compose() })
	return m, nil
}

// Engine returns the mount target for effects
func (m *Model) Engine() *engine.Host {
	return m.engine
}

// Compositor returns the surface compositor
func (m *Model) Compositor() *render.Compositor {
	return m.comp
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// Init starts the frame ticker
func (m *Model) Init() tea.Cmd {
	return m.tick()
}

// Update translates tea messages into engine input
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		m.loop.Step()
		return m, m.tick()

	case tea.WindowSizeMsg:
		m.comp.Resize(msg.Width, msg.Height)
		m.engine.Resize(m.scale.Viewport(msg.Width, msg.Height))
		m.logger.Debug("resized", zap.Int("cols", msg.Width), zap.Int("rows", msg.Height))
		if !m.ready {
			m.ready = true
			if m.onReady != nil {
				m.onReady()
			}
		}

	case tea.MouseMsg:
		m.engine.PointerMove(m.scale.CellCenter(msg.X, msg.Y))

	case tea.FocusMsg:
		m.engine.SetVisible(true)

	case tea.BlurMsg:
		m.engine.SetVisible(false)

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	}
	return m, nil
}

// View renders the last composed buffer, merging runs of equal colors
func (m *Model) View() string {
	buf := m.comp.Buffer()
	w, h := buf.Bounds()
	if w == 0 || h == 0 {
		return ""
	}
	cells := buf.Cells()

	var statusLine []rune
	if m.showStatus {
		statusLine = []rune(m.statusReg.Line())
	}

	var sb strings.Builder
	var run []rune
	for y := 0; y < h; y++ {
		if y > 0 {
			sb.WriteByte('\n')
		}
		row := cells[y*w : (y+1)*w]
		var cur styleKey
		run = run[:0]
		for x, c := range row {
			r, key := c.Rune, styleKey{fg: c.Fg, bg: c.Bg}
			if r == 0 {
				r = ' '
			}
			if y == h-1 && x < len(statusLine) {
				r, key.fg = statusLine[x], m.statusFg
			}
			if len(run) > 0 && key != cur {
				sb.WriteString(m.style(cur).Render(string(run)))
				run = run[:0]
			}
			cur = key
			run = append(run, r)
		}
		if len(run) > 0 {
			sb.WriteString(m.style(cur).Render(string(run)))
		}
	}
	return sb.String()
}

func (m *Model) style(k styleKey) lipgloss.Style {
	if s, ok := m.styles[k]; ok {
		return s
	}
	if len(m.styles) >= styleCacheLimit {
		clear(m.styles)
	}
	s := lipgloss.NewStyle().
		Foreground(lipgloss.Color(k.fg.Hex())).
		Background(lipgloss.Color(k.bg.Hex()))
	m.styles[k] = s
	return s
}

// Run executes the program until the user quits or ctx is done
func Run(ctx context.Context, m *Model, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithReportFocus(),
	}, opts...)
	defer m.comp.Close()

	_, err := tea.NewProgram(m, opts...).Run()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil:
		return nil
	default:
		return fmt.Errorf("tea program: %w", err)
	}
}
