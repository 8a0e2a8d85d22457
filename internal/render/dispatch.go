package render

import (
	"fmt"
	"math"
)

// Dispatcher issues draw calls for an ordered list of items.
type Dispatcher struct {
	// Last holds counters from the most recent Draw.
	Last struct {
		Drawn   int
		Rotated int
	}
}

// NewDispatcher returns a Dispatcher.
func NewDispatcher() *Dispatcher { return &Dispatcher{} }

// Draw renders items in order. Rotated items are drawn in a frame translated to
// their centre, so rotation pivots on the item itself. Items without a drawable
// are skipped. The first drawable error aborts the pass.
func (d *Dispatcher) Draw(s Surface, items []Item) error {
	d.Last.Drawn, d.Last.Rotated = 0, 0
	for _, it := range items {
		if it.Drawable == nil {
			continue
		}
		s.SetAlpha(it.Opacity)
		opts := DrawOptions{
			Mirror: it.Mirror,
			Frame:  WrapFrame(it.Drawable, it.Frame),
			Text:   it.Text,
		}
		if it.Rotation != 0 {
			s.Save()
			s.Translate(it.X+it.W/2, it.Y+it.H/2)
			s.Rotate(it.Rotation * math.Pi / 180)
			err := it.Drawable.Draw(s, -it.W/2, -it.H/2, it.W, it.H, opts)
			s.Restore()
			if err != nil {
				return fmt.Errorf("draw %s: %w", it.ID, err)
			}
			d.Last.Rotated++
		} else if err := it.Drawable.Draw(s, it.X, it.Y, it.W, it.H, opts); err != nil {
			return fmt.Errorf("draw %s: %w", it.ID, err)
		}
		d.Last.Drawn++
	}
	return nil
}

// WrapFrame reduces frame modulo the drawable's frame count when known.
func WrapFrame(dr Drawable, frame int) int {
	fc, ok := dr.(FrameCounter)
	if !ok {
		return frame
	}
	n := fc.Frames()
	if n <= 0 {
		return frame
	}
	frame %= n
	if frame < 0 {
		frame += n
	}
	return frame
}
