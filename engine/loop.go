package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/lixenwraith/stardrift/parameter"
	"github.com/lixenwraith/stardrift/status"
)

// ErrLoopRunning is returned by Run when the loop is already running or has run
var ErrLoopRunning = errors.New("engine: loop already started")

// FrameID identifies a pending frame request; zero is never issued
type FrameID uint64

// FrameFunc receives the frame timestamp
type FrameFunc func(now time.Time)

type frameRequest struct {
	id FrameID
	fn FrameFunc
}

// Loop is a single-threaded frame scheduler with a task queue
// Frame callbacks are one-shot: a callback that wants the next frame requests it again,
// and requests made during a frame are delivered on the following frame.
// Posted tasks and frame callbacks never run concurrently with each other.
type Loop struct {
	clock    Clock
	interval time.Duration
	logger   *zap.Logger

	mu        sync.Mutex
	pending   []frameRequest
	live      map[FrameID]struct{}
	nextID    FrameID
	presenter FrameFunc

	visible atomic.Bool
	started atomic.Bool
	tasks   chan func()
	done    chan struct{}

	frames    atomic.Uint64
	lastFrame time.Time
	fps       float64

	statFrames *atomic.Int64
	statFPS    *status.AtomicFloat
}

// LoopOption configures a Loop
type LoopOption func(*Loop)

// WithLoopLogger sets the loop logger
func WithLoopLogger(l *zap.Logger) LoopOption {
	return func(lp *Loop) {
		if l != nil {
			lp.logger = l
		}
	}
}

// WithLoopStatus publishes frame count and FPS to reg
func WithLoopStatus(reg *status.Registry) LoopOption {
	return func(lp *Loop) {
		if reg != nil {
			lp.statFrames = reg.Ints.Get(status.KeyFrames)
			lp.statFPS = reg.Floats.Get(status.KeyFPS)
		}
	}
}

// NewLoop creates a visible loop that dispatches frames every interval when Run
func NewLoop(clock Clock, interval time.Duration, opts ...LoopOption) *Loop {
	if interval <= 0 {
		interval = parameter.FrameInterval
	}
	l := &Loop{
		clock:    clock,
		interval: interval,
		logger:   zap.NewNop(),
		live:     make(map[FrameID]struct{}),
		nextID:   1,
		tasks:    make(chan func(), parameter.TaskQueueSize),
		done:     make(chan struct{}),
	}
	l.visible.Store(true)
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Now returns the loop clock time
func (l *Loop) Now() time.Time {
	return l.clock.Now()
}

// Interval returns the frame cadence
func (l *Loop) Interval() time.Duration {
	return l.interval
}

// RequestFrame schedules fn for the next frame
func (l *Loop) RequestFrame(fn FrameFunc) FrameID {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.nextID
	l.nextID++
	l.pending = append(l.pending, frameRequest{id: id, fn: fn})
	l.live[id] = struct{}{}
	return id
}

// CancelFrame drops a pending request. Unknown, fired and already cancelled IDs are ignored
func (l *Loop) CancelFrame(id FrameID) {
	if id == 0 {
		return
	}
	l.mu.Lock()
	delete(l.live, id)
	l.mu.Unlock()
}

// Pending returns the number of live frame requests
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.live)
}

// SetPresenter sets the callback run after all frame callbacks of a frame
func (l *Loop) SetPresenter(fn FrameFunc) {
	l.mu.Lock()
	l.presenter = fn
	l.mu.Unlock()
}

// SetVisible pauses (false) or resumes (true) frame delivery
// Pending requests are kept while hidden and fire on the first visible frame
func (l *Loop) SetVisible(visible bool) {
	if l.visible.Swap(visible) != visible {
		l.logger.Debug("loop visibility changed", zap.Bool("visible", visible))
	}
}

// Visible reports whether frames are being delivered
func (l *Loop) Visible() bool {
	return l.visible.Load()
}

// Frames returns the number of frames dispatched
func (l *Loop) Frames() uint64 {
	return l.frames.Load()
}

// Post queues fn to run on the loop goroutine. Safe from any goroutine
// Returns false if the loop has stopped
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.tasks <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Step drains queued tasks and dispatches one frame at the current clock time
// Used by hosts that own their own tick source, and by tests
func (l *Loop) Step() {
	l.drainTasks()
	l.dispatch(l.clock.Now())
}

// Run dispatches frames on a ticker until ctx is done. Runs once per Loop
func (l *Loop) Run(ctx context.Context) error {
	if !l.started.CompareAndSwap(false, true) {
		return ErrLoopRunning
	}
	defer close(l.done)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.logger.Debug("loop started", zap.Duration("interval", l.interval))
	for {
		select {
		case <-ctx.Done():
			l.logger.Debug("loop stopped", zap.Uint64("frames", l.frames.Load()))
			return nil
		case fn := <-l.tasks:
			fn()
		case <-ticker.C:
			l.dispatch(l.clock.Now())
		}
	}
}

func (l *Loop) drainTasks() {
	for {
		select {
		case fn := <-l.tasks:
			fn()
		default:
			return
		}
	}
}

// dispatch runs the current batch of frame callbacks, then the presenter
func (l *Loop) dispatch(now time.Time) {
	if !l.visible.Load() {
		return
	}

	l.mu.Lock()
	batch := l.pending
	l.pending = nil
	presenter := l.presenter
	l.mu.Unlock()

	for _, req := range batch {
		// Callbacks earlier in the batch may cancel later ones
		l.mu.Lock()
		_, ok := l.live[req.id]
		delete(l.live, req.id)
		l.mu.Unlock()
		if ok {
			req.fn(now)
		}
	}

	if presenter != nil {
		presenter(now)
	}

	n := l.frames.Add(1)
	l.trackRate(now, n)
}

func (l *Loop) trackRate(now time.Time, n uint64) {
	if !l.lastFrame.IsZero() {
		if dt := now.Sub(l.lastFrame).Seconds(); dt > 0 {
			inst := 1 / dt
			if l.fps == 0 {
				l.fps = inst
			} else {
				l.fps = l.fps*0.9 + inst*0.1
			}
		}
	}
	l.lastFrame = now
	if l.statFrames != nil {
		l.statFrames.Store(int64(n))
		l.statFPS.Store(l.fps)
	}
}
