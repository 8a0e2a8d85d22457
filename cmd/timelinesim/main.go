package main

import (
	"context"
	"flag"
	"image/png"
	"os"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-marquee/internal/app"
	"github.com/coreman2200/funtimes-marquee/internal/audio"
	"github.com/coreman2200/funtimes-marquee/internal/diagnostics"
	"github.com/coreman2200/funtimes-marquee/internal/driver"
	"github.com/coreman2200/funtimes-marquee/internal/driver/fake"
	"github.com/coreman2200/funtimes-marquee/internal/script"
	"github.com/coreman2200/funtimes-marquee/internal/timeline"
)

func main() {
	var (
		scriptPath  string
		fps         int
		width       int
		height      int
		fastForward bool
		dump        bool
		outPath     string
		verbose     bool
	)
	flag.StringVar(&scriptPath, "script", "", "Path to a timeline document (YAML)")
	flag.IntVar(&fps, "fps", 60, "Simulated host frames per second")
	flag.IntVar(&width, "width", 640, "Canvas width")
	flag.IntVar(&height, "height", 360, "Canvas height")
	flag.BoolVar(&fastForward, "ff", false, "Fast-forward (two frames per step)")
	flag.BoolVar(&dump, "dump", false, "Print the resolved op table")
	flag.StringVar(&outPath, "out", "", "Write the last frame as PNG")
	flag.BoolVar(&verbose, "v", false, "Log every host frame")
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if scriptPath == "" {
		log.Fatal().Msg("provide -script path to a timeline document")
	}

	deck := audio.NewDeck(beep.SampleRate(44100))
	s, err := script.Load(scriptPath, deck)
	if err != nil {
		log.Fatal().Err(err).Msg("load script")
	}
	prog, err := s.Compile()
	if err != nil {
		d := diagnostics.FromCompileError(err)
		log.Fatal().Err(err).Str("code", d.Code).Interface("evidence", d.Evidence).Msg(d.Summary)
	}
	st := prog.Stats()
	log.Info().Int("frames", st.Frames).Int("ops", st.Ops).Int("entities", st.Entities).Int("busiest", st.Busiest).Msg("compiled")

	if dump {
		if err := timeline.Dump(os.Stdout, prog); err != nil {
			log.Fatal().Err(err).Msg("dump")
		}
	}

	cond, err := app.NewConductor(prog, app.Options{
		Width:       width,
		Height:      height,
		Deck:        deck,
		Drivers:     []driver.Driver{&fake.Driver{}},
		FastForward: fastForward,
		Logger:      &log.Logger,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("conductor")
	}

	start := time.Now()
	n, err := cond.Simulate(context.Background(), fps)
	if err != nil {
		log.Fatal().Err(err).Int("host_frames", n).Msg("simulate")
	}
	log.Info().Int("host_frames", n).Dur("wall", time.Since(start)).
		Float64("timeline_s", float64(n)/float64(fps)).Msg("simulation complete")

	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			log.Fatal().Err(err).Msg("create png")
		}
		defer f.Close()
		if err := png.Encode(f, cond.Canvas().Image()); err != nil {
			log.Fatal().Err(err).Msg("encode png")
		}
		log.Info().Str("path", outPath).Msg("wrote last frame")
	}
}
