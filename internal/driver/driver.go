// Package driver defines the sinks rendered frames are written to.
package driver

import "image"

// Frame is one composited host frame.
type Frame struct {
	ID     uint64
	Cursor int // next timeline bucket
	Image  *image.RGBA
}

// Driver receives frames. Write must not retain f.Image after returning.
type Driver interface {
	Write(f Frame) error
	Close() error
}
