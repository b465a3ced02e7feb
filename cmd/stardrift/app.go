package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"runtime/debug"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lixenwraith/stardrift/config"
	"github.com/lixenwraith/stardrift/effect"
	"github.com/lixenwraith/stardrift/engine"
	"github.com/lixenwraith/stardrift/event"
	"github.com/lixenwraith/stardrift/parameter"
	"github.com/lixenwraith/stardrift/render"
	"github.com/lixenwraith/stardrift/status"
	"github.com/lixenwraith/stardrift/teahost"
	"github.com/lixenwraith/stardrift/terminal"
)

// app owns the loop and the mounted effects for one run
type app struct {
	cfg    config.Config
	logger *zap.Logger
	reg    *status.Registry
	loop   *engine.Loop
	bus    *event.Bus
	rng    *rand.Rand

	// override reapplies command-line flags to reloaded files
	override func(*config.Config)

	starfield *effect.Starfield
	trail     *effect.Trail
}

func newApp(cfg config.Config, logger *zap.Logger, seed uint64) *app {
	if logger == nil {
		logger = zap.NewNop()
	}
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	reg := status.NewRegistry()
	logger.Info("starting", zap.Uint64("seed", seed))
	return &app{
		cfg:    cfg,
		logger: logger,
		reg:    reg,
		loop: engine.NewLoop(engine.SystemClock{}, cfg.Engine.FrameInterval.Duration,
			engine.WithLoopLogger(logger), engine.WithLoopStatus(reg)),
		bus: event.NewBus(),
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// mount creates the enabled effects on their own surfaces and starts them
func (a *app) mount(host *engine.Host, comp *render.Compositor) {
	scale := a.cfg.Engine.Scale()
	opts := []effect.Option{
		effect.WithLogger(a.logger),
		effect.WithStatus(a.reg),
		effect.WithRand(a.rng),
	}

	if a.cfg.Starfield.Enabled {
		canvas := render.NewCanvas(scale, a.cfg.Engine.BackgroundRGB())
		comp.Register(canvas, parameter.ZBackground)
		a.starfield = effect.NewStarfield(host, canvas, a.cfg.Starfield.Effect(), opts...)
		a.starfield.Start()
	}
	if a.cfg.Trail.Enabled {
		layer := render.NewLayer(scale)
		comp.Register(layer, parameter.ZOverlay)
		a.trail = effect.NewTrail(host, layer, a.cfg.Trail.Effect(), opts...)
		a.trail.Start()
	}
}

// unmount stops every effect. Call only once the loop is no longer running
func (a *app) unmount() {
	if a.starfield != nil {
		a.starfield.Stop()
	}
	if a.trail != nil {
		a.trail.Stop()
	}
}

// postReconfigure hands a reloaded config to the loop goroutine
func (a *app) postReconfigure(cfg config.Config) {
	if !a.loop.Post(func() { a.reconfigure(cfg) }) {
		a.logger.Debug("reload dropped, loop stopped")
	}
}

// reconfigure runs on the loop goroutine
// Engine settings and enabled flags need a restart; effect tuning applies live
func (a *app) reconfigure(cfg config.Config) {
	if a.override != nil {
		a.override(&cfg)
	}
	if cfg.Engine != a.cfg.Engine ||
		cfg.Starfield.Enabled != a.cfg.Starfield.Enabled ||
		cfg.Trail.Enabled != a.cfg.Trail.Enabled {
		a.logger.Info("engine settings and enabled flags apply on restart")
	}
	if a.starfield != nil {
		a.starfield.Reconfigure(cfg.Starfield.Effect())
	}
	if a.trail != nil {
		a.trail.Reconfigure(cfg.Trail.Effect())
	}
	a.cfg.Starfield, a.cfg.Trail = cfg.Starfield, cfg.Trail
	a.logger.Info("config reloaded")
}

// guard turns a panic on a host goroutine into an error after restoring the terminal
func guard(restore func(), fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				restore()
				fmt.Fprintf(os.Stderr, "\nstardrift crashed: %v\n%s\n", r, debug.Stack())
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return fn()
	}
}

// runTcell drives the effects on a tcell screen; screen may be nil for the real terminal
func (a *app) runTcell(ctx context.Context, pointer engine.PointerMode, screen tcell.Screen, reload func(context.Context) error) error {
	if screen == nil {
		var err error
		if screen, err = tcell.NewScreen(); err != nil {
			return fmt.Errorf("open terminal: %w", err)
		}
	}
	host, err := terminal.New(screen, a.loop, a.bus, terminal.Options{
		Scale:      a.cfg.Engine.Scale(),
		Background: a.cfg.Engine.BackgroundRGB(),
		Pointer:    pointer,
		ShowStatus: a.cfg.Engine.ShowStatus,
		Status:     a.reg,
		Logger:     a.logger,
	})
	if err != nil {
		return err
	}
	defer host.Close()

	a.mount(host.Engine(), host.Compositor())
	defer a.unmount()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(guard(host.Close, func() error { return a.loop.Run(gctx) }))
	g.Go(guard(host.Close, func() error { return host.Pump(gctx) }))
	if reload != nil {
		g.Go(func() error { return reload(gctx) })
	}

	err = g.Wait()
	if errors.Is(err, terminal.ErrQuit) {
		return nil
	}
	return err
}

// runTea drives the effects inside a bubbletea program
func (a *app) runTea(ctx context.Context, pointer engine.PointerMode, reload func(context.Context) error) error {
	var m *teahost.Model
	m, err := teahost.New(a.loop, a.bus, teahost.Options{
		Scale:      a.cfg.Engine.Scale(),
		Background: a.cfg.Engine.BackgroundRGB(),
		Pointer:    pointer,
		ShowStatus: a.cfg.Engine.ShowStatus,
		Status:     a.reg,
		Logger:     a.logger,
		OnReady:    func() { a.mount(m.Engine(), m.Compositor()) },
	})
	if err != nil {
		return err
	}
	defer a.unmount()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// Quitting the program ends the run
		defer cancel()
		return teahost.Run(gctx, m)
	})
	if reload != nil {
		g.Go(func() error { return reload(gctx) })
	}
	return g.Wait()
}
