package fake

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-marquee/internal/driver"
)

// Driver logs a compact summary of each frame (first pixel and average),
// useful for headless runs and tests.
type Driver struct {
	Count  int
	Last   driver.Frame
	Logger *zerolog.Logger
}

func (d *Driver) Write(f driver.Frame) error {
	d.Count++
	d.Last = f
	if f.Image == nil {
		return nil
	}
	var r, g, b float64
	pix := f.Image.Pix
	n := float64(len(pix) / 4)
	if n == 0 {
		n = 1
	}
	for i := 0; i+3 < len(pix); i += 4 {
		r += float64(pix[i])
		g += float64(pix[i+1])
		b += float64(pix[i+2])
	}
	first := f.Image.RGBAAt(f.Image.Rect.Min.X, f.Image.Rect.Min.Y)

	l := d.Logger
	if l == nil {
		l = &log.Logger
	}
	l.Debug().
		Uint64("frame", f.ID).
		Int("cursor", f.Cursor).
		Str("avg", fmtRGB(r/n, g/n, b/n)).
		Str("first", fmtRGB(float64(first.R), float64(first.G), float64(first.B))).
		Msg("frame")
	return nil
}

func (d *Driver) Close() error { return nil }

func fmtRGB(r, g, b float64) string {
	return fmt.Sprintf("(%.1f,%.1f,%.1f)", r, g, b)
}
