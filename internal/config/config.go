package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type Canvas struct {
	Width      int    `yaml:"width" mapstructure:"width"`
	Height     int    `yaml:"height" mapstructure:"height"`
	Background string `yaml:"background" mapstructure:"background"` // hex colour
}

type Preview struct {
	ThrottleMs int `yaml:"throttle_ms" mapstructure:"throttle_ms"`
}

type MQTT struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	URL      string `yaml:"url" mapstructure:"url"`
	ClientID string `yaml:"client_id" mapstructure:"client_id"`
	Username string `yaml:"username,omitempty" mapstructure:"username"`
	Password string `yaml:"password,omitempty" mapstructure:"password"`
	Topic    string `yaml:"topic" mapstructure:"topic"`
	QoS      int    `yaml:"qos" mapstructure:"qos"`
	Retained bool   `yaml:"retained" mapstructure:"retained"`
	Every    int    `yaml:"every" mapstructure:"every"` // publish every Nth frame
}

type Config struct {
	Script       string `yaml:"script" mapstructure:"script"` // timeline document
	FPS          int    `yaml:"fps" mapstructure:"fps"`       // host loop rate
	Addr         string `yaml:"addr" mapstructure:"addr"`
	LogLevel     string `yaml:"log_level" mapstructure:"log_level"`
	SampleRate   int    `yaml:"sample_rate" mapstructure:"sample_rate"`
	FastForward  bool   `yaml:"fast_forward" mapstructure:"fast_forward"`
	CompleteOnce bool   `yaml:"complete_once" mapstructure:"complete_once"`

	Canvas  Canvas  `yaml:"canvas" mapstructure:"canvas"`
	Preview Preview `yaml:"preview" mapstructure:"preview"`
	MQTT    MQTT    `yaml:"mqtt" mapstructure:"mqtt"`
}

// EnvPrefix prefixes environment overrides, e.g. MARQUEE_CANVAS_WIDTH.
const EnvPrefix = "MARQUEE"

func setDefaults(v *viper.Viper) {
	v.SetDefault("script", "timeline.yaml")
	v.SetDefault("fps", 60)
	v.SetDefault("addr", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("sample_rate", 44100)
	v.SetDefault("fast_forward", false)
	v.SetDefault("complete_once", false)

	v.SetDefault("canvas.width", 640)
	v.SetDefault("canvas.height", 360)
	v.SetDefault("canvas.background", "#000000")

	v.SetDefault("preview.throttle_ms", 50)

	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.url", "tcp://localhost:1883")
	v.SetDefault("mqtt.client_id", "marquee")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("mqtt.topic", "marquee/frame")
	v.SetDefault("mqtt.qos", 0)
	v.SetDefault("mqtt.retained", false)
	v.SetDefault("mqtt.every", 1)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Default returns the built-in configuration with environment overrides.
func Default() *Config {
	var c Config
	_ = newViper().Unmarshal(&c)
	return &c
}

// Load reads a YAML config file over the defaults. A missing file is an
// error wrapping os.ErrNotExist; callers may fall back to Default.
func Load(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			return nil, fmt.Errorf("config %s: %w", path, os.ErrNotExist)
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}
