// Package audio holds the sound capability used by timelines and a beep-backed
// mixer that implements it.
package audio

import (
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/wav"
)

// Sound is a fire-and-forget playable handle.
type Sound interface {
	SetVolume(v float64)
	Play()
}

// Deck mixes every playing clip into one stream. It implements beep.Streamer
// so a host can hand it to an output device.
type Deck struct {
	mu     sync.Mutex
	mixer  beep.Mixer
	format beep.Format
}

// NewDeck returns a stereo deck at rate.
func NewDeck(rate beep.SampleRate) *Deck {
	return &Deck{format: beep.Format{SampleRate: rate, NumChannels: 2, Precision: 2}}
}

// Format is the sample format clips must be decoded to.
func (d *Deck) Format() beep.Format { return d.format }

// Add starts s on the deck.
func (d *Deck) Add(s beep.Streamer) {
	d.mu.Lock()
	d.mixer.Add(s)
	d.mu.Unlock()
}

// Playing is the number of streams still on the deck.
func (d *Deck) Playing() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mixer.Len()
}

// Stream fills samples with the mix. Silence is streamed while nothing plays.
func (d *Deck) Stream(samples [][2]float64) (int, bool) {
	clear(samples)
	d.mu.Lock()
	d.mixer.Stream(samples)
	d.mu.Unlock()
	return len(samples), true
}

// Err always returns nil.
func (d *Deck) Err() error { return nil }

// Drain pulls and discards dur worth of samples. Headless hosts use it to
// keep clips finishing in step with the clock.
func (d *Deck) Drain(dur time.Duration) {
	n := d.format.SampleRate.N(dur)
	buf := make([][2]float64, 512)
	for n > 0 {
		k := min(n, len(buf))
		d.Stream(buf[:k])
		n -= k
	}
}

// Clip is a decoded sound that plays on a deck.
type Clip struct {
	deck *Deck
	buf  *beep.Buffer

	mu     sync.Mutex
	volume float64
}

// NewClip wraps buf. Volume starts at 1.
func NewClip(deck *Deck, buf *beep.Buffer) *Clip {
	return &Clip{deck: deck, buf: buf, volume: 1}
}

// SetVolume sets the linear volume, clamped to [0,1].
func (c *Clip) SetVolume(v float64) {
	c.mu.Lock()
	c.volume = math.Max(0, math.Min(1, v))
	c.mu.Unlock()
}

// Play starts a new voice of the clip. Voices overlap.
func (c *Clip) Play() {
	c.mu.Lock()
	v := c.volume
	c.mu.Unlock()
	c.deck.Add(&effects.Volume{
		Streamer: c.buf.Streamer(0, c.buf.Len()),
		Base:     2,
		Volume:   math.Log2(v),
		Silent:   v <= 0,
	})
}

// Duration is the clip length at the deck's rate.
func (c *Clip) Duration() time.Duration {
	return c.buf.Format().SampleRate.D(c.buf.Len())
}

// LoadWAV decodes a WAV file into a clip, resampling to the deck's rate.
func LoadWAV(deck *Deck, path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sound: %w", err)
	}
	defer f.Close()

	s, format, err := wav.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	defer s.Close()

	var src beep.Streamer = s
	if format.SampleRate != deck.format.SampleRate {
		src = beep.Resample(4, format.SampleRate, deck.format.SampleRate, s)
	}
	buf := beep.NewBuffer(deck.format)
	buf.Append(src)
	return NewClip(deck, buf), nil
}
