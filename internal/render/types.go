package render

// Surface is the 2D drawing context handed to drawables. Transforms and alpha
// apply to every draw issued until the matching Restore.
type Surface interface {
	Save()
	Restore()
	Translate(x, y float64)
	// Rotate by rad radians, clockwise in screen space.
	Rotate(rad float64)
	SetAlpha(a float64)
}

// DrawOptions are the per-call options passed to a Drawable.
type DrawOptions struct {
	Mirror bool
	Frame  int
	Text   string
}

// Drawable renders one visual unit at (x,y) sized (w,h).
type Drawable interface {
	Draw(s Surface, x, y, w, h float64, opts DrawOptions) error
}

// FrameCounter is implemented by drawables that know how many frames they hold.
type FrameCounter interface {
	Frames() int
}

// Item is one entity as seen by a draw pass.
type Item struct {
	ID       string
	Drawable Drawable
	Opacity  float64
	X, Y     float64
	W, H     float64
	Rotation float64 // degrees
	Frame    int
	Text     string
	Mirror   bool
}
