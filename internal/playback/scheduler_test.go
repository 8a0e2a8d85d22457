package playback

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-marquee/internal/render"
	"github.com/coreman2200/funtimes-marquee/internal/timeline"
)

type nopSurface struct{ alpha float64 }

func (s *nopSurface) Save()                  {}
func (s *nopSurface) Restore()               {}
func (s *nopSurface) Translate(x, y float64) {}
func (s *nopSurface) Rotate(rad float64)     {}
func (s *nopSurface) SetAlpha(a float64)     { s.alpha = a }

type countingSprite struct {
	draws int
	err   error
}

func (c *countingSprite) Draw(s render.Surface, x, y, w, h float64, opts render.DrawOptions) error {
	c.draws++
	return c.err
}

var tenFrames = timeline.Timing{TotalTicks: 100, TickTime: 100, FPS: 10}

func compile(t *testing.T, actions ...timeline.Action) *timeline.Program {
	t.Helper()
	p, err := timeline.Compile(actions, tenFrames)
	require.NoError(t, err)
	return p
}

func TestAdvanceStepsOncePerInterval(t *testing.T) {
	p := compile(t, timeline.Initialize{Tick: 0, ID: "a"})
	s, err := New(p, &nopSurface{})
	require.NoError(t, err)

	done, err := s.Advance(1000)
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, 1, s.Cursor(), "first call always steps")

	_, _ = s.Advance(1050)
	assert.Equal(t, 1, s.Cursor())
	_, _ = s.Advance(1100)
	assert.Equal(t, 2, s.Cursor())
	_, _ = s.Advance(1199)
	assert.Equal(t, 2, s.Cursor(), "interval counts from the last step")
}

func TestFastForwardAppliesTwoBuckets(t *testing.T) {
	p := compile(t, timeline.Initialize{Tick: 0, ID: "a"})
	s, err := New(p, &nopSurface{}, WithFastForward(true))
	require.NoError(t, err)
	assert.True(t, s.FastForward())

	now := 0.0
	for i := 1; i <= 5; i++ {
		_, err := s.Advance(now)
		require.NoError(t, err)
		assert.Equal(t, 2*i, s.Cursor())
		now += 100
	}
	assert.True(t, s.Done())

	s.Reset()
	s.SetFastForward(false)
	_, _ = s.Advance(0)
	assert.Equal(t, 1, s.Cursor())
	s.SetFastForward(true)
	for now := 100.0; !s.Done(); now += 100 {
		_, _ = s.Advance(now)
	}
	assert.Equal(t, 10, s.Cursor(), "fast-forward stops at the last bucket")
}

func TestCompletionRepeatsByDefault(t *testing.T) {
	p := compile(t, timeline.Initialize{Tick: 0, ID: "a"})
	calls := 0
	s, err := New(p, &nopSurface{}, OnComplete(func() { calls++ }))
	require.NoError(t, err)

	now := 0.0
	for i := 0; i < 10; i++ {
		done, err := s.Advance(now)
		require.NoError(t, err)
		assert.Equal(t, i == 9, done)
		now += 100
	}
	assert.Equal(t, 1, calls)
	done, _ := s.Advance(now)
	assert.True(t, done)
	_, _ = s.Advance(now + 1)
	assert.Equal(t, 3, calls, "one call per finished Advance")
	assert.Equal(t, 10, s.Cursor())
}

func TestCompleteOnce(t *testing.T) {
	p := compile(t, timeline.Initialize{Tick: 0, ID: "a"})
	calls := 0
	s, err := New(p, &nopSurface{}, OnComplete(func() { calls++ }), CompleteOnce())
	require.NoError(t, err)

	for now := 0.0; now < 3000; now += 100 {
		_, err := s.Advance(now)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, calls)

	s.Reset()
	for now := 0.0; now < 2000; now += 100 {
		_, _ = s.Advance(now)
	}
	assert.Equal(t, 2, calls, "reset rearms completion")
}

func TestVisibilityFollowsInitializeAndRemove(t *testing.T) {
	sprite := &countingSprite{}
	p := compile(t,
		timeline.Initialize{Tick: 20, ID: "a", Sprite: sprite, Opacity: 1},
		timeline.Remove{Tick: 50, ID: "a"},
	)
	s, err := New(p, &nopSurface{})
	require.NoError(t, err)

	var visible []bool
	for now := 0.0; now < 1000; now += 100 {
		before := sprite.draws
		_, err := s.Advance(now)
		require.NoError(t, err)
		visible = append(visible, sprite.draws > before)
	}
	assert.Equal(t, []bool{false, false, true, true, true, false, false, false, false, false}, visible)
}

func TestDrawErrorReturned(t *testing.T) {
	boom := errors.New("boom")
	p := compile(t, timeline.Initialize{Tick: 0, ID: "a", Sprite: &countingSprite{err: boom}})
	s, err := New(p, &nopSurface{})
	require.NoError(t, err)

	_, err = s.Advance(0)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "draw a")
}

func TestResetRewinds(t *testing.T) {
	p := compile(t, timeline.Initialize{Tick: 0, ID: "a", PosX: 4})
	s, err := New(p, &nopSurface{})
	require.NoError(t, err)
	_, _ = s.Advance(0)
	e, _ := s.Tracker().Get("a")
	require.True(t, e.Display)

	s.Reset()
	assert.Equal(t, 0, s.Cursor())
	assert.Equal(t, 10, s.Frames())
	e, _ = s.Tracker().Get("a")
	assert.False(t, e.Display)
}

func TestFrameLogReportsDrawCounts(t *testing.T) {
	var buf bytes.Buffer
	p := compile(t,
		timeline.Initialize{Tick: 0, ID: "a", Sprite: &countingSprite{}, Opacity: 1},
		timeline.Initialize{Tick: 0, ID: "b", Sprite: &countingSprite{}, Opacity: 1, Rotation: 90},
		timeline.Initialize{Tick: 0, ID: "c", Opacity: 1},
		timeline.Remove{Tick: 10, ID: "a"},
	)
	s, err := New(p, &nopSurface{}, WithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel)))
	require.NoError(t, err)

	_, err = s.Advance(0)
	require.NoError(t, err)
	_, err = s.Advance(50)
	require.NoError(t, err)
	_, err = s.Advance(100)
	require.NoError(t, err)

	type frameLog struct {
		Cursor  int `json:"cursor"`
		Visible int `json:"visible"`
		Drawn   int `json:"drawn"`
		Rotated int `json:"rotated"`
	}
	var got []frameLog
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var l frameLog
		require.NoError(t, json.Unmarshal([]byte(line), &l))
		got = append(got, l)
	}
	assert.Equal(t, []frameLog{
		{Cursor: 1, Visible: 3, Drawn: 2, Rotated: 1},
		{Cursor: 2, Visible: 2, Drawn: 1, Rotated: 1},
	}, got, "one line per stepped frame; entities without a drawable are not drawn")
}
