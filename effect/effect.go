// Package effect mounts particle effects onto a host.
// Each effect is an owned object with Start/Stop; all methods must be called from
// the host loop goroutine (directly, from a frame or event callback, or via Loop.Post).
package effect

import (
	"math/rand/v2"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/lixenwraith/stardrift/engine"
	"github.com/lixenwraith/stardrift/event"
	"github.com/lixenwraith/stardrift/particle"
	"github.com/lixenwraith/stardrift/status"
	"github.com/lixenwraith/stardrift/vmath"
)

// Host is the mount contract effects depend on
// *engine.Host satisfies it
type Host interface {
	RequestFrame(fn engine.FrameFunc) engine.FrameID
	CancelFrame(id engine.FrameID)
	Now() time.Time
	Viewport() vmath.Vec2
	Capabilities() engine.Capabilities
	Events() *event.Bus
}

type options struct {
	logger *zap.Logger
	reg    *status.Registry
	rng    particle.Rand
}

// Option configures an effect
type Option func(*options)

// WithLogger sets the effect logger
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithStatus publishes effect metrics to reg
func WithStatus(reg *status.Registry) Option {
	return func(o *options) {
		o.reg = reg
	}
}

// WithRand sets the random source, for reproducible runs
func WithRand(rng particle.Rand) Option {
	return func(o *options) {
		if rng != nil {
			o.rng = rng
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		o.rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15))
	}
	if o.reg == nil {
		o.reg = status.NewRegistry()
	}
	return o
}

func (o options) int(key string) *atomic.Int64 {
	return o.reg.Ints.Get(key)
}
