package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/lixenwraith/stardrift/config"
	"github.com/lixenwraith/stardrift/engine"
	"github.com/lixenwraith/stardrift/status"
)

func resetFlags(t *testing.T) {
	t.Helper()
	configPath, logFile, verbose = "", "", false
	hostKind, pointerFlag, watch, seed = "tcell", "auto", false, 0
	noTrail, noStars, showStatus = false, false, false
	logger = zap.NewNop()
}

func TestBuildLogger(t *testing.T) {
	l, err := buildLogger("", false)
	require.NoError(t, err)
	assert.NotNil(t, l)

	path := filepath.Join(t.TempDir(), "run.log")
	l, err = buildLogger(path, true)
	require.NoError(t, err)
	l.Debug("hello")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}

func TestPrintConfigAppliesOverrides(t *testing.T) {
	resetFlags(t)
	path := filepath.Join(t.TempDir(), "stardrift.toml")
	require.NoError(t, os.WriteFile(path, []byte("[starfield]\ncount = 12\n"), 0o644))
	configPath = path
	noTrail = true

	cmd := &cobra.Command{}
	cmd.Flags().Bool("status", false, "")
	var out bytes.Buffer
	cmd.SetOut(&out)
	require.NoError(t, printConfig(cmd, nil))

	cfg, err := config.Parse(out.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Starfield.Count)
	assert.False(t, cfg.Trail.Enabled)
	assert.True(t, cfg.Starfield.Enabled)
}

func TestPrintConfigReportsBadFile(t *testing.T) {
	resetFlags(t)
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[starfield]\ncount = -3\n"), 0o644))
	configPath = path

	err := printConfig(&cobra.Command{}, nil)
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestRunEffectsRejectsBadFlags(t *testing.T) {
	resetFlags(t)
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	cmd.Flags().Bool("status", false, "")

	hostKind = "web"
	assert.ErrorContains(t, runEffects(cmd, nil), "unknown host")

	hostKind, pointerFlag = "tcell", "sideways"
	assert.Error(t, runEffects(cmd, nil))

	pointerFlag, watch = "auto", true
	assert.ErrorContains(t, runEffects(cmd, nil), "--watch")
}

func TestMountRespectsEnabledFlags(t *testing.T) {
	cfg := config.Default()
	cfg.Trail.Enabled = false
	a := newApp(cfg, nil, 7)

	screen := tcell.NewSimulationScreen("UTF-8")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, a.runTcell(ctx, engine.PointerOn, screen, nil))

	assert.NotNil(t, a.starfield)
	assert.Nil(t, a.trail)
	assert.False(t, a.starfield.Running())
}

func TestRunTcellQuitsOnKey(t *testing.T) {
	cfg := config.Default()
	a := newApp(cfg, nil, 42)
	screen := tcell.NewSimulationScreen("UTF-8")

	done := make(chan error, 1)
	go func() {
		done <- a.runTcell(context.Background(), engine.PointerOn, screen, nil)
	}()

	// Frames flow once the loop is up
	require.Eventually(t, func() bool {
		return a.reg.Ints.Get(status.KeyFrames).Load() > 2
	}, 2*time.Second, 10*time.Millisecond)

	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("run did not stop on quit key")
	}
	assert.False(t, a.starfield.Running())
	assert.False(t, a.trail.Running())
}

func TestReconfigureAppliesEffectTuning(t *testing.T) {
	cfg := config.Default()
	a := newApp(cfg, nil, 3)
	screen := tcell.NewSimulationScreen("UTF-8")

	done := make(chan error, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		done <- a.runTcell(ctx, engine.PointerOn, screen, nil)
	}()

	next := config.Default()
	next.Starfield.Count = 9
	require.Eventually(t, func() bool {
		return a.reg.Ints.Get(status.KeyFrames).Load() > 0
	}, 2*time.Second, 10*time.Millisecond)
	a.postReconfigure(next)

	require.Eventually(t, func() bool {
		return a.reg.Ints.Get(status.KeyStars).Load() == 9
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("run did not stop on cancel")
	}
	assert.Equal(t, 9, a.cfg.Starfield.Count)
}

func TestReconfigureReappliesFlagOverrides(t *testing.T) {
	resetFlags(t)
	noTrail = true
	cmd := &cobra.Command{}
	cmd.Flags().Bool("status", false, "")
	require.NoError(t, cmd.Flags().Set("status", "true"))

	cfg := config.Default()
	applyFlags(cmd, &cfg)

	core, logs := observer.New(zapcore.InfoLevel)
	a := newApp(cfg, zap.New(core), 1)
	a.override = func(c *config.Config) { applyFlags(cmd, c) }

	next := config.Default()
	next.Trail.Color = "#00ff00"
	a.reconfigure(next)

	assert.Zero(t, logs.FilterMessage("engine settings and enabled flags apply on restart").Len())
	assert.Equal(t, 1, logs.FilterMessage("config reloaded").Len())
	assert.False(t, a.cfg.Trail.Enabled)
	assert.True(t, a.cfg.Engine.ShowStatus)
	assert.Equal(t, "#00ff00", a.cfg.Trail.Color)

	// A real engine change is still reported
	next.Engine.CellWidth = 10
	a.reconfigure(next)
	assert.Equal(t, 1, logs.FilterMessage("engine settings and enabled flags apply on restart").Len())
}
