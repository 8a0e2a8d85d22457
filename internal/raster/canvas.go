// Package raster draws timelines onto in-memory RGBA images.
package raster

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

var identity = f64.Aff3{1, 0, 0, 0, 1, 0}

type state struct {
	m     f64.Aff3
	alpha float64
}

// Canvas is a render.Surface backed by an *image.RGBA. Drawing composites
// with draw.Over under the current transform and global alpha.
type Canvas struct {
	img   *image.RGBA
	cur   state
	stack []state
}

// NewCanvas allocates a transparent w×h canvas.
func NewCanvas(w, h int) *Canvas {
	return &Canvas{
		img: image.NewRGBA(image.Rect(0, 0, w, h)),
		cur: state{m: identity, alpha: 1},
	}
}

// Image returns the backing image. It is reused across frames.
func (c *Canvas) Image() *image.RGBA { return c.img }

// Clear fills the canvas with col and drops any saved state.
func (c *Canvas) Clear(col color.Color) {
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(col), image.Point{}, draw.Src)
	c.cur = state{m: identity, alpha: 1}
	c.stack = c.stack[:0]
}

func (c *Canvas) Save() { c.stack = append(c.stack, c.cur) }

func (c *Canvas) Restore() {
	if n := len(c.stack); n > 0 {
		c.cur = c.stack[n-1]
		c.stack = c.stack[:n-1]
	}
}

func (c *Canvas) Translate(x, y float64) {
	c.cur.m = mul(c.cur.m, f64.Aff3{1, 0, x, 0, 1, y})
}

// Rotate turns the user space clockwise by rad, y pointing down.
func (c *Canvas) Rotate(rad float64) {
	sin, cos := math.Sincos(rad)
	c.cur.m = mul(c.cur.m, f64.Aff3{cos, -sin, 0, sin, cos, 0})
}

// SetAlpha sets the global alpha, clamped to [0,1].
func (c *Canvas) SetAlpha(a float64) {
	c.cur.alpha = math.Max(0, math.Min(1, a))
}

// DrawImage maps sr of src onto the box (x,y,w,h) in user space, flipping
// horizontally when mirror is set.
func (c *Canvas) DrawImage(src image.Image, sr image.Rectangle, x, y, w, h float64, mirror bool) {
	c.transform(draw.ApproxBiLinear, src, sr, x, y, w, h, mirror)
}

// FillRect fills the box (x,y,w,h) with col.
func (c *Canvas) FillRect(x, y, w, h float64, col color.Color) {
	px := image.NewRGBA(image.Rect(0, 0, 1, 1))
	px.Set(0, 0, col)
	c.transform(draw.NearestNeighbor, px, px.Bounds(), x, y, w, h, false)
}

func (c *Canvas) transform(t draw.Transformer, src image.Image, sr image.Rectangle, x, y, w, h float64, mirror bool) {
	if sr.Empty() || w <= 0 || h <= 0 || c.cur.alpha == 0 {
		return
	}
	sx := w / float64(sr.Dx())
	sy := h / float64(sr.Dy())
	minX, minY := float64(sr.Min.X), float64(sr.Min.Y)
	local := f64.Aff3{sx, 0, x - sx*minX, 0, sy, y - sy*minY}
	if mirror {
		local = f64.Aff3{-sx, 0, x + w + sx*minX, 0, sy, y - sy*minY}
	}

	var opts *draw.Options
	if c.cur.alpha < 1 {
		opts = &draw.Options{SrcMask: image.NewUniform(color.Alpha{A: uint8(c.cur.alpha*255 + 0.5)})}
	}
	t.Transform(c.img, mul(c.cur.m, local), src, sr, draw.Over, opts)
}

// mul returns m·n, applying n first.
func mul(m, n f64.Aff3) f64.Aff3 {
	return f64.Aff3{
		m[0]*n[0] + m[1]*n[3], m[0]*n[1] + m[1]*n[4], m[0]*n[2] + m[1]*n[5] + m[2],
		m[3]*n[0] + m[4]*n[3], m[3]*n[1] + m[4]*n[4], m[3]*n[2] + m[4]*n[5] + m[5],
	}
}
