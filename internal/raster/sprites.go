package raster

import (
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"os"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/coreman2200/funtimes-marquee/internal/render"
)

// ErrSurface is returned when a raster drawable is handed a non-raster surface.
var ErrSurface = errors.New("raster: surface is not a *raster.Canvas")

func canvasOf(s render.Surface) (*Canvas, error) {
	c, ok := s.(*Canvas)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrSurface, s)
	}
	return c, nil
}

// Sheet is a sprite sheet with equally sized frames stacked top to bottom.
type Sheet struct {
	img    image.Image
	fw, fh int
	frames int
}

// NewSheet cuts img into frames of fw×fh. The frame count is the number of
// whole frames that fit vertically.
func NewSheet(img image.Image, fw, fh int) (*Sheet, error) {
	b := img.Bounds()
	if fw <= 0 || fh <= 0 || fw > b.Dx() || fh > b.Dy() {
		return nil, fmt.Errorf("raster: frame %dx%d does not fit %dx%d sheet", fw, fh, b.Dx(), b.Dy())
	}
	return &Sheet{img: img, fw: fw, fh: fh, frames: b.Dy() / fh}, nil
}

// LoadSheet decodes an image file into a Sheet.
func LoadSheet(path string, fw, fh int) (*Sheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sheet: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return NewSheet(img, fw, fh)
}

func (s *Sheet) Frames() int { return s.frames }

// Rect is the source rectangle of frame f.
func (s *Sheet) Rect(f int) image.Rectangle {
	o := s.img.Bounds().Min
	f = render.WrapFrame(s, f)
	return image.Rect(o.X, o.Y+f*s.fh, o.X+s.fw, o.Y+(f+1)*s.fh)
}

func (s *Sheet) Draw(surf render.Surface, x, y, w, h float64, opts render.DrawOptions) error {
	c, err := canvasOf(surf)
	if err != nil {
		return err
	}
	c.DrawImage(s.img, s.Rect(opts.Frame), x, y, w, h, opts.Mirror)
	return nil
}

// Box is a solid rectangle. With HueStep set, each frame rotates the hue.
type Box struct {
	Color   colorful.Color
	HueStep float64
	N       int // frame count, 0 for unbounded
}

func (b Box) Frames() int { return b.N }

// ColorAt returns the box colour for frame f.
func (b Box) ColorAt(f int) colorful.Color {
	if b.HueStep == 0 || f == 0 {
		return b.Color
	}
	h, c, l := b.Color.Hcl()
	return colorful.Hcl(h+b.HueStep*float64(f), c, l).Clamped()
}

func (b Box) Draw(surf render.Surface, x, y, w, h float64, opts render.DrawOptions) error {
	c, err := canvasOf(surf)
	if err != nil {
		return err
	}
	c.FillRect(x, y, w, h, b.ColorAt(opts.Frame))
	return nil
}

// Label renders the entity text in a fixed bitmap face scaled to its box.
type Label struct {
	Color colorful.Color
}

func (l Label) Draw(surf render.Surface, x, y, w, h float64, opts render.DrawOptions) error {
	if opts.Text == "" {
		return nil
	}
	c, err := canvasOf(surf)
	if err != nil {
		return err
	}
	face := basicfont.Face7x13
	adv := font.MeasureString(face, opts.Text).Ceil()
	m := face.Metrics()
	img := image.NewRGBA(image.Rect(0, 0, adv, m.Height.Ceil()))
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(l.Color),
		Face: face,
		Dot:  fixed.Point26_6{Y: m.Ascent},
	}
	d.DrawString(opts.Text)
	c.DrawImage(img, img.Bounds(), x, y, w, h, opts.Mirror)
	return nil
}

// Composite draws its children in order into the same box.
type Composite struct {
	Children []render.Drawable
	N        int
}

func (cp Composite) Frames() int { return cp.N }

func (cp Composite) Draw(surf render.Surface, x, y, w, h float64, opts render.DrawOptions) error {
	for i, ch := range cp.Children {
		if err := ch.Draw(surf, x, y, w, h, opts); err != nil {
			return fmt.Errorf("child %d: %w", i, err)
		}
	}
	return nil
}
