package audio

import (
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constantBuffer(f beep.Format, n int, v float64) *beep.Buffer {
	buf := beep.NewBuffer(f)
	buf.Append(beep.Take(n, beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			samples[i] = [2]float64{v, v}
		}
		return len(samples), true
	})))
	return buf
}

func TestClipVolume(t *testing.T) {
	tests := []struct {
		volume float64
		want   float64
	}{
		{1, 0.5},
		{0.5, 0.25},
		{0, 0},
		{3, 0.5},
	}
	for _, tt := range tests {
		deck := NewDeck(beep.SampleRate(8000))
		clip := NewClip(deck, constantBuffer(deck.Format(), 100, 0.5))
		var _ Sound = clip

		clip.SetVolume(tt.volume)
		clip.Play()
		require.Equal(t, 1, deck.Playing())

		out := make([][2]float64, 10)
		n, ok := deck.Stream(out)
		assert.Equal(t, 10, n)
		assert.True(t, ok)
		assert.InDelta(t, tt.want, out[3][0], 1e-9, "volume %g", tt.volume)
	}
}

func TestDeckStreamsSilenceWhenIdle(t *testing.T) {
	deck := NewDeck(beep.SampleRate(8000))
	out := [][2]float64{{1, 1}, {1, 1}}
	n, ok := deck.Stream(out)
	assert.Equal(t, 2, n)
	assert.True(t, ok)
	assert.Equal(t, [][2]float64{{0, 0}, {0, 0}}, out)
	assert.NoError(t, deck.Err())
}

func TestDrainFinishesClips(t *testing.T) {
	deck := NewDeck(beep.SampleRate(1000))
	clip := NewClip(deck, constantBuffer(deck.Format(), 100, 0.1))
	assert.Equal(t, 100*time.Millisecond, clip.Duration())

	clip.Play()
	clip.Play()
	assert.Equal(t, 2, deck.Playing())
	deck.Drain(time.Second)
	assert.Equal(t, 0, deck.Playing())
}

func TestLoadWAVMissingFile(t *testing.T) {
	_, err := LoadWAV(NewDeck(beep.SampleRate(8000)), "does-not-exist.wav")
	assert.Error(t, err)
}
