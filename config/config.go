// Package config loads stardrift tunables from TOML.
// Missing keys keep their defaults; unknown keys are rejected.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/lixenwraith/stardrift/effect"
	"github.com/lixenwraith/stardrift/emitter"
	"github.com/lixenwraith/stardrift/parameter"
	"github.com/lixenwraith/stardrift/render"
)

// ErrInvalid marks a configuration that parsed but failed validation
var ErrInvalid = errors.New("invalid config")

// Duration is a time.Duration encoded as a string like "600ms"
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Config is the whole file
type Config struct {
	Engine    Engine    `toml:"engine"`
	Starfield Starfield `toml:"starfield"`
	Trail     Trail     `toml:"trail"`
}

// Engine holds host and render settings
type Engine struct {
	FrameInterval Duration `toml:"frame_interval"`
	CellWidth     int      `toml:"cell_width"`
	CellHeight    int      `toml:"cell_height"`
	Background    string   `toml:"background"`
	ShowStatus    bool     `toml:"show_status"`
}

// Starfield holds ambient effect settings
type Starfield struct {
	Enabled   bool    `toml:"enabled"`
	Count     int     `toml:"count"`
	RadiusMin float64 `toml:"radius_min"`
	RadiusMax float64 `toml:"radius_max"`
	AlphaMin  float64 `toml:"alpha_min"`
	AlphaMax  float64 `toml:"alpha_max"`
	SpeedMin  float64 `toml:"speed_min"`
	SpeedMax  float64 `toml:"speed_max"`
	Drift     string  `toml:"drift"`
	Color     string  `toml:"color"`
}

// Trail holds cursor trail settings
type Trail struct {
	Enabled        bool     `toml:"enabled"`
	Lifespan       Duration `toml:"lifespan"`
	SpawnDistance  float64  `toml:"spawn_distance"`
	SizeMin        float64  `toml:"size_min"`
	SizeMax        float64  `toml:"size_max"`
	VelocitySpread float64  `toml:"velocity_spread"`
	Shrink         float64  `toml:"shrink"`
	Color          string   `toml:"color"`
}

// Default returns the stock configuration
func Default() Config {
	return Config{
		Engine: Engine{
			FrameInterval: Duration{parameter.FrameInterval},
			CellWidth:     parameter.CellWidth,
			CellHeight:    parameter.CellHeight,
			Background:    parameter.BackgroundColor,
		},
		Starfield: Starfield{
			Enabled:   true,
			Count:     parameter.StarCount,
			RadiusMin: parameter.StarRadiusMin,
			RadiusMax: parameter.StarRadiusMax,
			AlphaMin:  parameter.StarAlphaMin,
			AlphaMax:  parameter.StarAlphaMax,
			SpeedMin:  parameter.StarSpeedMin,
			SpeedMax:  parameter.StarSpeedMax,
			Drift:     emitter.DriftUp.String(),
			Color:     parameter.StarColor,
		},
		Trail: Trail{
			Enabled:        true,
			Lifespan:       Duration{parameter.TrailLifespan},
			SpawnDistance:  parameter.TrailSpawnDistance,
			SizeMin:        parameter.TrailSizeMin,
			SizeMax:        parameter.TrailSizeMax,
			VelocitySpread: parameter.TrailVelocitySpread,
			Shrink:         parameter.TrailShrink,
			Color:          parameter.TrailColor,
		},
	}
}

// Parse decodes data over the defaults and validates the result
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and parses the file at path
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Encode renders the configuration as TOML
func (c Config) Encode() ([]byte, error) {
	return toml.Marshal(c)
}

// Validate reports every problem at once, each wrapped with ErrInvalid
func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if c.Engine.FrameInterval.Duration <= 0 {
		bad("engine.frame_interval must be positive")
	}
	if c.Engine.CellWidth <= 0 || c.Engine.CellHeight <= 0 {
		bad("engine.cell_width and engine.cell_height must be positive")
	}
	if _, err := render.ParseHex(c.Engine.Background); err != nil {
		bad("engine.background: %v", err)
	}

	s := c.Starfield
	if s.Count < 0 || s.Count > parameter.MaxStarCount {
		bad("starfield.count must be within [0, %d]", parameter.MaxStarCount)
	}
	checkRange(bad, "starfield.radius", s.RadiusMin, s.RadiusMax, 0, parameter.MaxParticleSize)
	checkRange(bad, "starfield.alpha", s.AlphaMin, s.AlphaMax, 0, 1)
	checkRange(bad, "starfield.speed", s.SpeedMin, s.SpeedMax, 0, parameter.MaxParticleSpeed)
	if _, ok := emitter.ParseDirection(s.Drift); !ok {
		bad("starfield.drift %q must be up or down", s.Drift)
	}
	if _, err := render.ParseHex(s.Color); err != nil {
		bad("starfield.color: %v", err)
	}

	tr := c.Trail
	if tr.Lifespan.Duration <= 0 {
		bad("trail.lifespan must be positive")
	}
	checkScalar(bad, "trail.spawn_distance", tr.SpawnDistance, 0, parameter.MaxParticleSize)
	checkRange(bad, "trail.size", tr.SizeMin, tr.SizeMax, 0, parameter.MaxParticleSize)
	checkScalar(bad, "trail.velocity_spread", tr.VelocitySpread, 0, parameter.MaxParticleSpeed)
	checkScalar(bad, "trail.shrink", tr.Shrink, 0, 1)
	if _, err := render.ParseHex(tr.Color); err != nil {
		bad("trail.color: %v", err)
	}

	return errors.Join(errs...)
}

// checkScalar rejects v outside [floor, ceil], NaN included
func checkScalar(bad func(string, ...any), name string, v, floor, ceil float64) {
	if !(v >= floor && v <= ceil) {
		bad("%s must be within [%g, %g], got %g", name, floor, ceil, v)
	}
}

// checkRange validates a min/max pair: both within [floor, ceil] and ordered
func checkRange(bad func(string, ...any), name string, lo, hi, floor, ceil float64) {
	checkScalar(bad, name+"_min", lo, floor, ceil)
	checkScalar(bad, name+"_max", hi, floor, ceil)
	if hi < lo {
		bad("%s_max must not be below %s_min", name, name)
	}
}

// Scale returns the cell to logical pixel mapping
func (e Engine) Scale() render.Scale {
	return render.Scale{CellW: float64(e.CellWidth), CellH: float64(e.CellHeight)}
}

// BackgroundRGB returns the parsed background color; call after Validate
func (e Engine) BackgroundRGB() render.RGB {
	c, _ := render.ParseHex(e.Background)
	return c
}

// Effect converts to the starfield effect tuning; call after Validate
func (s Starfield) Effect() effect.StarfieldConfig {
	dir, _ := emitter.ParseDirection(s.Drift)
	color, _ := render.ParseHex(s.Color)
	return effect.StarfieldConfig{
		Emitter: emitter.AmbientConfig{
			Count:     s.Count,
			RadiusMin: s.RadiusMin,
			RadiusMax: s.RadiusMax,
			AlphaMin:  s.AlphaMin,
			AlphaMax:  s.AlphaMax,
			SpeedMin:  s.SpeedMin,
			SpeedMax:  s.SpeedMax,
			Direction: dir,
		},
		Color: color,
	}
}

// Effect converts to the trail effect tuning; call after Validate
func (t Trail) Effect() effect.TrailConfig {
	color, _ := render.ParseHex(t.Color)
	return effect.TrailConfig{
		Emitter: emitter.TrailConfig{
			SpawnDistance:  t.SpawnDistance,
			SizeMin:        t.SizeMin,
			SizeMax:        t.SizeMax,
			VelocitySpread: t.VelocitySpread,
			Lifespan:       t.Lifespan.Duration,
		},
		Color:  color,
		Shrink: t.Shrink,
	}
}
