package app

import (
	"fmt"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rs/zerolog"

	"github.com/coreman2200/funtimes-marquee/internal/audio"
	"github.com/coreman2200/funtimes-marquee/internal/config"
	"github.com/coreman2200/funtimes-marquee/internal/driver"
	"github.com/coreman2200/funtimes-marquee/internal/driver/mqtt"
	"github.com/coreman2200/funtimes-marquee/internal/script"
	"github.com/coreman2200/funtimes-marquee/internal/timeline"
	"github.com/coreman2200/funtimes-marquee/internal/ws"
)

// Core is everything a live session needs, wired from config.
type Core struct {
	Conductor *Conductor
	Hub       *ws.Hub
	Program   *timeline.Program
	Deck      *audio.Deck
}

// InitCore loads and compiles the configured script, then wires the preview
// hub, the optional MQTT sink and the conductor. Compile failures are
// returned as is so callers can map them to diagnostics.
func InitCore(cfg *config.Config, configPath string, log zerolog.Logger) (*Core, error) {
	// 1) Audio deck and script
	deck := audio.NewDeck(beep.SampleRate(cfg.SampleRate))
	s, err := script.Load(cfg.Script, deck)
	if err != nil {
		return nil, err
	}
	prog, err := s.Compile()
	if err != nil {
		return nil, err
	}
	st := prog.Stats()
	log.Info().Int("frames", st.Frames).Int("ops", st.Ops).Int("entities", st.Entities).Msg("timeline compiled")

	// 2) Sinks
	hub := ws.NewHub(nil, time.Duration(cfg.Preview.ThrottleMs)*time.Millisecond)
	hub.Config = cfg
	hub.ConfigPath = configPath
	drivers := []driver.Driver{hub}
	if cfg.MQTT.Enabled {
		client, err := mqtt.Connect(cfg.MQTT.URL, cfg.MQTT.ClientID, cfg.MQTT.Username, cfg.MQTT.Password, 5*time.Second)
		if err != nil {
			log.Warn().Err(err).Str("url", cfg.MQTT.URL).Msg("mqtt unavailable; continuing without it")
		} else {
			drivers = append(drivers, mqtt.New(client, mqtt.Options{
				Topic:    cfg.MQTT.Topic,
				QoS:      byte(cfg.MQTT.QoS),
				Retained: cfg.MQTT.Retained,
				Timeout:  time.Second,
				Every:    cfg.MQTT.Every,
			}))
		}
	}

	// 3) Conductor
	bg, err := colorful.Hex(cfg.Canvas.Background)
	if err != nil {
		return nil, fmt.Errorf("canvas background: %w", err)
	}
	cond, err := NewConductor(prog, Options{
		Width:        cfg.Canvas.Width,
		Height:       cfg.Canvas.Height,
		Background:   bg,
		Deck:         deck,
		Drivers:      drivers,
		FastForward:  cfg.FastForward,
		CompleteOnce: cfg.CompleteOnce,
		Hold:         true,
		Logger:       &log,
	})
	if err != nil {
		return nil, err
	}
	hub.SetControl(cond)

	return &Core{Conductor: cond, Hub: hub, Program: prog, Deck: deck}, nil
}
