package timeline

import (
	"fmt"
	"io"
	"strings"

	"github.com/coreman2200/funtimes-marquee/internal/audio"
	"github.com/coreman2200/funtimes-marquee/internal/render"
)

// Op is a resolved per-frame primitive. The set of variants is closed.
type Op interface {
	isOp()
}

// InitializeOp makes an entity visible and overwrites every field.
type InitializeOp struct {
	ID       string
	Sprite   render.Drawable
	Opacity  float64
	X, Y     float64
	W, H     float64
	Rotation float64
	Z        int
	Frame    int
	Playing  bool
	Text     string
	Mirror   bool
}

// RemoveOp hides an entity.
type RemoveOp struct {
	ID string
}

// SetAttrOp assigns one numeric attribute.
type SetAttrOp struct {
	ID    string
	Attr  Attr
	Value float64
}

// SetSpriteOp swaps the drawable and its frame state.
type SetSpriteOp struct {
	ID      string
	Sprite  render.Drawable
	Frame   int
	Playing bool
	Text    string
	Mirror  bool
}

// SetFrameOp selects a sprite frame.
type SetFrameOp struct {
	ID    string
	Frame int
}

// PlaySoundOp triggers a sound at the given volume.
type PlaySoundOp struct {
	Sound  audio.Sound
	Volume float64
}

func (InitializeOp) isOp() {}
func (RemoveOp) isOp()     {}
func (SetAttrOp) isOp()    {}
func (SetSpriteOp) isOp()  {}
func (SetFrameOp) isOp()   {}
func (PlaySoundOp) isOp()  {}

// Describe renders op as a single line.
func Describe(op Op) string {
	switch v := op.(type) {
	case InitializeOp:
		return fmt.Sprintf("init %s pos=(%g,%g) size=(%g,%g) rot=%g alpha=%g z=%d frame=%d play=%t",
			v.ID, v.X, v.Y, v.W, v.H, v.Rotation, v.Opacity, v.Z, v.Frame, v.Playing)
	case RemoveOp:
		return "remove " + v.ID
	case SetAttrOp:
		return fmt.Sprintf("set %s %s=%g", v.ID, v.Attr, v.Value)
	case SetSpriteOp:
		return fmt.Sprintf("sprite %s frame=%d play=%t mirror=%t", v.ID, v.Frame, v.Playing, v.Mirror)
	case SetFrameOp:
		return fmt.Sprintf("frame %s %d", v.ID, v.Frame)
	case PlaySoundOp:
		return fmt.Sprintf("sound volume=%g", v.Volume)
	}
	return fmt.Sprintf("unknown %T", op)
}

// Dump writes the op table, one frame per block, skipping empty frames.
func Dump(w io.Writer, p *Program) error {
	for f := 0; f < p.Frames(); f++ {
		ops := p.Ops(f)
		if len(ops) == 0 {
			continue
		}
		var b strings.Builder
		fmt.Fprintf(&b, "frame %d\n", f)
		for _, op := range ops {
			b.WriteString("  ")
			b.WriteString(Describe(op))
			b.WriteByte('\n')
		}
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
	}
	return nil
}
