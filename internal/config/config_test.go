package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_WithValidConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "marquee.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
fps: 30
log_level: debug
canvas:
  width: 320
mqtt:
  enabled: true
  topic: sign/frame
`), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 30, c.FPS)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, 320, c.Canvas.Width)
	assert.Equal(t, 360, c.Canvas.Height, "unset keys keep defaults")
	assert.True(t, c.MQTT.Enabled)
	assert.Equal(t, "sign/frame", c.MQTT.Topic)
	assert.Equal(t, "marquee", c.MQTT.ClientID)
}

func TestLoad_DefaultValues(t *testing.T) {
	c := Default()
	assert.Equal(t, 60, c.FPS)
	assert.Equal(t, ":8080", c.Addr)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, 44100, c.SampleRate)
	assert.Equal(t, 640, c.Canvas.Width)
	assert.Equal(t, "#000000", c.Canvas.Background)
	assert.Equal(t, 50, c.Preview.ThrottleMs)
	assert.False(t, c.MQTT.Enabled)
	assert.Equal(t, 1, c.MQTT.Every)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("MARQUEE_CANVAS_WIDTH", "128")
	t.Setenv("MARQUEE_FAST_FORWARD", "true")
	c := Default()
	assert.Equal(t, 128, c.Canvas.Width)
	assert.True(t, c.FastForward)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	c := Default()
	c.FastForward = true
	c.Canvas.Width = 99
	require.NoError(t, Save(path, c))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}
