// Package playback runs a compiled timeline at its frame rate.
package playback

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/metric"

	"github.com/coreman2200/funtimes-marquee/internal/render"
	"github.com/coreman2200/funtimes-marquee/internal/timeline"
	"github.com/coreman2200/funtimes-marquee/internal/tracker"
)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the scheduler logger. The default discards.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Scheduler) { s.log = l }
}

// OnComplete sets the function called once the table is exhausted.
func OnComplete(fn func()) Option {
	return func(s *Scheduler) { s.onComplete = fn }
}

// CompleteOnce makes the completion function fire on the first finished
// Advance only. By default it fires on every Advance after the end.
func CompleteOnce() Option {
	return func(s *Scheduler) { s.once = true }
}

// WithFastForward starts the scheduler with fast-forward on.
func WithFastForward(on bool) Option {
	return func(s *Scheduler) { s.fastForward = on }
}

// Scheduler applies one frame bucket per frame interval and draws every call.
// It is not safe for concurrent use.
type Scheduler struct {
	prog       *timeline.Program
	surface    render.Surface
	tracker    *tracker.Tracker
	dispatcher *render.Dispatcher
	log        zerolog.Logger

	cursor      int
	last        float64
	advanced    bool
	fastForward bool

	onComplete func()
	once       bool
	completed  bool

	framesApplied metric.Int64Counter
	opsApplied    metric.Int64Counter
	draws         metric.Int64Counter
	itemsDrawn    metric.Int64Counter
}

// New builds a scheduler that draws prog onto surface.
func New(prog *timeline.Program, surface render.Surface, opts ...Option) (*Scheduler, error) {
	s := &Scheduler{
		prog:       prog,
		surface:    surface,
		tracker:    tracker.New(prog.Entities()),
		dispatcher: render.NewDispatcher(),
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	m := meter()
	var err error
	s.framesApplied, err = m.Int64Counter(
		"playback.frames.applied",
		metric.WithDescription("Frame buckets applied"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating frames counter: %w", err)
	}
	s.opsApplied, err = m.Int64Counter(
		"playback.ops.applied",
		metric.WithDescription("Resolved ops applied to the tracker"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ops counter: %w", err)
	}
	s.draws, err = m.Int64Counter(
		"playback.draws",
		metric.WithDescription("Draw passes issued"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating draws counter: %w", err)
	}
	s.itemsDrawn, err = m.Int64Counter(
		"playback.items.drawn",
		metric.WithDescription("Entities handed to a drawable"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating items counter: %w", err)
	}
	return s, nil
}

// Advance is called once per host frame with a monotonic clock in
// milliseconds. When a frame interval has passed since the last step (or on
// the first call) it applies the next bucket, two with fast-forward on. It
// then draws the current state. done reports that the table is exhausted.
func (s *Scheduler) Advance(nowMs float64) (done bool, err error) {
	stepped := !s.advanced || nowMs-s.last >= s.prog.Timing().FrameMillis()
	if stepped {
		s.step()
		if s.fastForward && s.cursor < s.prog.Frames() {
			s.step()
		}
		s.last = nowMs
		s.advanced = true
	}

	if err := s.dispatcher.Draw(s.surface, s.tracker.Snapshot()); err != nil {
		return false, err
	}
	s.draws.Add(context.Background(), 1)
	s.itemsDrawn.Add(context.Background(), int64(s.dispatcher.Last.Drawn))
	if stepped {
		s.log.Debug().
			Int("cursor", s.cursor).
			Int("visible", s.tracker.Visible()).
			Int("drawn", s.dispatcher.Last.Drawn).
			Int("rotated", s.dispatcher.Last.Rotated).
			Msg("frame applied")
	}

	if s.cursor < s.prog.Frames() {
		return false, nil
	}
	if s.onComplete != nil && !(s.once && s.completed) {
		s.onComplete()
	}
	if !s.completed {
		s.log.Debug().Int("frames", s.prog.Frames()).Int("visible", s.tracker.Visible()).Msg("timeline complete")
	}
	s.completed = true
	return true, nil
}

func (s *Scheduler) step() {
	if s.cursor >= s.prog.Frames() {
		return
	}
	ops := s.prog.Ops(s.cursor)
	for _, op := range ops {
		s.tracker.Apply(op)
	}
	s.cursor++
	s.framesApplied.Add(context.Background(), 1)
	s.opsApplied.Add(context.Background(), int64(len(ops)))
}

// SetFastForward toggles double-speed stepping.
func (s *Scheduler) SetFastForward(on bool) { s.fastForward = on }

// FastForward reports whether double-speed stepping is on.
func (s *Scheduler) FastForward() bool { return s.fastForward }

// Cursor is the index of the next bucket to apply.
func (s *Scheduler) Cursor() int { return s.cursor }

// Frames is the length of the table.
func (s *Scheduler) Frames() int { return s.prog.Frames() }

// Done reports whether every bucket has been applied.
func (s *Scheduler) Done() bool { return s.cursor >= s.prog.Frames() }

// Tracker exposes the entity state for inspection.
func (s *Scheduler) Tracker() *tracker.Tracker { return s.tracker }

// Reset rewinds to the first frame and hides every entity.
func (s *Scheduler) Reset() {
	s.cursor = 0
	s.last = 0
	s.advanced = false
	s.completed = false
	s.tracker.Reset()
	s.log.Debug().Msg("timeline rewound")
}
