package app

import (
	"context"
	"image/color"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/coreman2200/funtimes-marquee/internal/audio"
	"github.com/coreman2200/funtimes-marquee/internal/driver"
	"github.com/coreman2200/funtimes-marquee/internal/playback"
	"github.com/coreman2200/funtimes-marquee/internal/raster"
	"github.com/coreman2200/funtimes-marquee/internal/timeline"
	"github.com/coreman2200/funtimes-marquee/internal/ws"
)

// Options configures a Conductor.
type Options struct {
	Width, Height int
	Background    color.Color
	Deck          *audio.Deck
	Drivers       []driver.Driver
	FastForward   bool
	CompleteOnce  bool
	Logger        *zerolog.Logger // nil discards

	// Hold keeps Run drawing after the timeline completes, so it can be
	// restarted.
	Hold bool
}

// Conductor is the host loop: it owns the scheduler and canvas, and hands
// each composited frame to the drivers. Only Run/Simulate/Step touch the
// scheduler; SetFastForward, Restart and Status are safe from any goroutine.
type Conductor struct {
	sched   *playback.Scheduler
	canvas  *raster.Canvas
	deck    *audio.Deck
	drivers []driver.Driver
	bg      color.Color
	hold    bool
	log     zerolog.Logger

	ff      atomic.Bool
	restart atomic.Bool
	frameID uint64

	mu     sync.Mutex
	status ws.Status

	done     chan struct{}
	doneOnce sync.Once
}

// NewConductor builds a conductor playing prog.
func NewConductor(prog *timeline.Program, opts Options) (*Conductor, error) {
	c := &Conductor{
		canvas:  raster.NewCanvas(max(1, opts.Width), max(1, opts.Height)),
		deck:    opts.Deck,
		drivers: opts.Drivers,
		bg:      opts.Background,
		hold:    opts.Hold,
		log:     zerolog.Nop(),
		done:    make(chan struct{}),
	}
	if opts.Logger != nil {
		c.log = *opts.Logger
	}
	if c.bg == nil {
		c.bg = color.Black
	}
	c.ff.Store(opts.FastForward)

	popts := []playback.Option{
		playback.WithLogger(c.log),
		playback.OnComplete(c.finish),
	}
	if opts.CompleteOnce {
		popts = append(popts, playback.CompleteOnce())
	}
	sched, err := playback.New(prog, c.canvas, popts...)
	if err != nil {
		return nil, err
	}
	c.sched = sched
	c.status = ws.Status{Frames: prog.Frames(), FastForward: opts.FastForward}
	return c, nil
}

func (c *Conductor) finish() {
	c.doneOnce.Do(func() {
		c.log.Info().Uint64("host_frames", c.frameID).Msg("timeline finished")
		close(c.done)
	})
}

// Done is closed the first time the timeline completes.
func (c *Conductor) Done() <-chan struct{} { return c.done }

// SetFastForward requests double-speed stepping from the next Step.
func (c *Conductor) SetFastForward(on bool) { c.ff.Store(on) }

// Restart requests a rewind on the next Step.
func (c *Conductor) Restart() { c.restart.Store(true) }

// Status is the playback state as of the last Step.
func (c *Conductor) Status() ws.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Canvas is the surface frames are composited on.
func (c *Conductor) Canvas() *raster.Canvas { return c.canvas }

// Step runs one host frame at nowMs and writes it to every driver. Driver
// failures are logged, draw failures are returned.
func (c *Conductor) Step(nowMs float64) (bool, error) {
	if c.restart.Swap(false) {
		c.sched.Reset()
	}
	c.sched.SetFastForward(c.ff.Load())

	c.canvas.Clear(c.bg)
	done, err := c.sched.Advance(nowMs)
	if err != nil {
		return false, err
	}

	c.frameID++
	f := driver.Frame{ID: c.frameID, Cursor: c.sched.Cursor(), Image: c.canvas.Image()}
	for _, d := range c.drivers {
		if err := d.Write(f); err != nil {
			c.log.Warn().Err(err).Uint64("frame", f.ID).Msg("driver write failed")
		}
	}

	c.mu.Lock()
	c.status = ws.Status{Cursor: c.sched.Cursor(), Frames: c.sched.Frames(), FastForward: c.sched.FastForward(), Done: done}
	c.mu.Unlock()
	return done, nil
}

// Run drives Step from a wall-clock ticker at hostFPS until the timeline
// completes (unless holding) or ctx is cancelled.
func (c *Conductor) Run(ctx context.Context, hostFPS int) error {
	if hostFPS <= 0 {
		hostFPS = 60
	}
	dt := time.Second / time.Duration(hostFPS)
	ticker := time.NewTicker(dt)
	defer ticker.Stop()

	start := time.Now()
	prev := start
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			if c.deck != nil {
				c.deck.Drain(now.Sub(prev))
			}
			prev = now
			done, err := c.Step(float64(now.Sub(start)) / float64(time.Millisecond))
			if err != nil {
				return err
			}
			if done && !c.hold {
				return nil
			}
		}
	}
}

// Simulate runs Step against a synthetic clock advancing 1/hostFPS per host
// frame, as fast as possible, until the timeline completes. It returns the
// number of host frames run.
func (c *Conductor) Simulate(ctx context.Context, hostFPS int) (int, error) {
	if hostFPS <= 0 {
		hostFPS = 60
	}
	dt := time.Second / time.Duration(hostFPS)
	stepMs := 1000 / float64(hostFPS)
	for n := 0; ; n++ {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if c.deck != nil && n > 0 {
			c.deck.Drain(dt)
		}
		done, err := c.Step(float64(n) * stepMs)
		if err != nil {
			return n + 1, err
		}
		if done {
			return n + 1, nil
		}
	}
}

// Close closes every driver.
func (c *Conductor) Close() error {
	var first error
	for _, d := range c.drivers {
		if err := d.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
