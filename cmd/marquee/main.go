package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-marquee/internal/app"
	"github.com/coreman2200/funtimes-marquee/internal/config"
	"github.com/coreman2200/funtimes-marquee/internal/diagnostics"
)

func main() {
	// ---- Flags (config.yaml and MARQUEE_* env fill the rest) ----
	var (
		configPath  = flag.String("config", "config.yaml", "path to config.yaml")
		scriptPath  = flag.String("script", "", "timeline document (overrides config)")
		addr        = flag.String("addr", "", "HTTP listen address (overrides config)")
		fastForward = flag.Bool("ff", false, "start with fast-forward on")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	// ---- Config ----
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; using defaults")
		cfg = config.Default()
	}
	if *scriptPath != "" {
		cfg.Script = *scriptPath
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *fastForward {
		cfg.FastForward = true
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	// ---- Core ----
	core, err := app.InitCore(cfg, *configPath, log.Logger)
	if err != nil {
		d := diagnostics.FromCompileError(err)
		log.Fatal().Err(err).Str("code", d.Code).Interface("evidence", d.Evidence).Msg(d.Summary)
	}

	// ---- HTTP routes ----
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", core.Hub.HandleFramesWS)
	mux.HandleFunc("/diag", core.Hub.HandleDiagWS)
	mux.HandleFunc("/control", core.Hub.HandleControlWS)
	mux.HandleFunc("/health", core.Hub.HandleHealth)

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      withCORS(mux),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ---- Run playback & server ----
	go func() {
		log.Info().Str("addr", cfg.Addr).Str("script", cfg.Script).Msg("HTTP server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server crashed")
		}
	}()
	go func() {
		<-core.Conductor.Done()
		log.Info().Msg("timeline complete; send restart on /control to replay")
	}()

	if err := core.Conductor.Run(ctx, cfg.FPS); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("playback stopped")
	}

	// ---- Graceful shutdown ----
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	_ = core.Conductor.Close()
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(200)
			return
		}
		h.ServeHTTP(w, r)
	})
}
