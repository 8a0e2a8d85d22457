package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-marquee/internal/timeline"
)

type fakeSound struct {
	calls []string
	vol   float64
}

func (s *fakeSound) SetVolume(v float64) { s.calls = append(s.calls, "volume"); s.vol = v }
func (s *fakeSound) Play()               { s.calls = append(s.calls, "play") }

func snapshotIDs(tr *Tracker) []string {
	var out []string
	for _, it := range tr.Snapshot() {
		out = append(out, it.ID)
	}
	return out
}

func TestRegisteredHidden(t *testing.T) {
	tr := New([]string{"a", "b"})
	assert.Empty(t, tr.Snapshot())
	e, ok := tr.Get("a")
	require.True(t, ok)
	assert.False(t, e.Display)
	_, ok = tr.Get("zz")
	assert.False(t, ok)
}

func TestApplyMutatesNamedFields(t *testing.T) {
	tr := New([]string{"a"})
	tr.Apply(timeline.InitializeOp{ID: "a", Opacity: 1, X: 1, Y: 2, W: 3, H: 4, Rotation: 5, Z: 6, Frame: 7, Text: "hi"})
	tr.Apply(timeline.SetAttrOp{ID: "a", Attr: timeline.PosY, Value: 20})
	tr.Apply(timeline.SetFrameOp{ID: "a", Frame: 9})

	e, _ := tr.Get("a")
	assert.True(t, e.Display)
	assert.Equal(t, 1.0, e.X)
	assert.Equal(t, 20.0, e.Y)
	assert.Equal(t, 3.0, e.W)
	assert.Equal(t, 9, e.Frame)
	assert.Equal(t, "hi", e.Text)

	tr.Apply(timeline.SetSpriteOp{ID: "a", Frame: 2, Mirror: true, Playing: true})
	e, _ = tr.Get("a")
	assert.Equal(t, 2, e.Frame)
	assert.True(t, e.Mirror)
	assert.True(t, e.Playing)
	assert.Equal(t, "", e.Text)
	assert.Equal(t, 20.0, e.Y)
}

func TestRemoveKeepsRecord(t *testing.T) {
	tr := New([]string{"a"})
	tr.Apply(timeline.InitializeOp{ID: "a", X: 5, Opacity: 1})
	tr.Apply(timeline.RemoveOp{ID: "a"})

	assert.Empty(t, tr.Snapshot())
	e, ok := tr.Get("a")
	require.True(t, ok)
	assert.False(t, e.Display)
	assert.Equal(t, 5.0, e.X)

	tr.Apply(timeline.InitializeOp{ID: "a", X: 1})
	assert.Equal(t, []string{"a"}, snapshotIDs(tr))
	assert.Equal(t, 1, tr.Visible())
}

func TestSnapshotStableZOrder(t *testing.T) {
	tr := New([]string{"a", "b", "c", "d"})
	tr.Apply(timeline.InitializeOp{ID: "d", Z: 1})
	tr.Apply(timeline.InitializeOp{ID: "c", Z: 0})
	tr.Apply(timeline.InitializeOp{ID: "b", Z: 1})
	tr.Apply(timeline.InitializeOp{ID: "a", Z: 2})
	assert.Equal(t, []string{"c", "b", "d", "a"}, snapshotIDs(tr))
}

func TestPlaySoundSetsVolumeThenPlays(t *testing.T) {
	tr := New(nil)
	s := &fakeSound{}
	tr.Apply(timeline.PlaySoundOp{Sound: s, Volume: 0.3})
	assert.Equal(t, []string{"volume", "play"}, s.calls)
	assert.Equal(t, 0.3, s.vol)

	tr.Apply(timeline.PlaySoundOp{})
}

func TestUnknownIDIgnored(t *testing.T) {
	tr := New([]string{"a"})
	tr.Apply(timeline.InitializeOp{ID: "ghost"})
	tr.Apply(timeline.SetAttrOp{ID: "ghost", Attr: timeline.PosX, Value: 1})
	assert.Empty(t, tr.Snapshot())
}

func TestReset(t *testing.T) {
	tr := New([]string{"a"})
	tr.Apply(timeline.InitializeOp{ID: "a", X: 3})
	tr.Reset()
	e, ok := tr.Get("a")
	require.True(t, ok)
	assert.Equal(t, Entity{ID: "a"}, e)
}
