package fake

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-marquee/internal/driver"
)

func TestDriverLogsSummary(t *testing.T) {
	var buf bytes.Buffer
	l := zerolog.New(&buf)
	d := &Driver{Logger: &l}
	var _ driver.Driver = d

	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.SetRGBA(0, 0, color.RGBA{R: 200, A: 255})
	require.NoError(t, d.Write(driver.Frame{ID: 7, Cursor: 3, Image: img}))

	assert.Equal(t, 1, d.Count)
	assert.Equal(t, 3, d.Last.Cursor)
	assert.Contains(t, buf.String(), `"frame":7`)
	assert.Contains(t, buf.String(), `"avg":"(100.0,0.0,0.0)"`)
	assert.Contains(t, buf.String(), `"first":"(200.0,0.0,0.0)"`)
	assert.NoError(t, d.Close())
}
