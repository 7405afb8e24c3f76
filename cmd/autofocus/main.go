// Package main provides the autofocus backend entry point.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/thebtf/autofocus/internal/classifier"
	"github.com/thebtf/autofocus/internal/config"
	"github.com/thebtf/autofocus/internal/db/sqlite"
	"github.com/thebtf/autofocus/internal/openai"
	"github.com/thebtf/autofocus/internal/policy"
	"github.com/thebtf/autofocus/internal/watcher"
	"github.com/thebtf/autofocus/internal/worker"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	port := flag.Int("port", 0, "HTTP port (default: from settings)")
	dataDir := flag.String("data-dir", "", "Data directory (default: ~/.autofocus)")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true})

	// Relocates the whole data directory: database, settings.json,
	// credentials, and modes.yaml all resolve under it
	if *dataDir != "" {
		config.SetDataDir(*dataDir)
	}

	// Ensure data directory and default settings exist
	if err := config.EnsureAll(); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure data directories")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load config, using defaults")
		cfg = config.Default()
	}
	if *port > 0 {
		cfg.Port = *port
	}

	// Missing credential is not fatal: classification calls will fail
	// at call time and resolve to the permissive default
	apiKey := config.ResolveAPIKey()
	if apiKey == "" {
		log.Warn().Msg("No OPENAI_API_KEY found; page classification will fail open")
	}

	store, err := sqlite.NewStore(sqlite.StoreConfig{
		Path:     cfg.DBPath,
		MaxConns: cfg.MaxConns,
		WALMode:  true,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize SQLite store")
	}
	defer store.Close()

	sessionStore := sqlite.NewSessionStore(store)
	analysisStore := sqlite.NewAnalysisStore(store)

	llm := openai.New(apiKey,
		openai.WithBaseURL(cfg.OpenAIBaseURL),
		openai.WithModel(cfg.Model),
		openai.WithTimeout(time.Duration(cfg.TimeoutSeconds)*time.Second),
	)
	cls := classifier.New(llm, analysisStore)

	modes, err := policy.Load(config.ModesPath())
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load mode policies, using defaults")
		modes = policy.Defaults()
	}

	svc := worker.New(worker.Deps{
		Version:       Version,
		Config:        cfg,
		Store:         store,
		SessionStore:  sessionStore,
		AnalysisStore: analysisStore,
		Classifier:    cls,
		Modes:         modes,
	})

	// Settings edits reload config, rebuild the reasoning-service
	// client, and reload mode policies; a policy change invalidates
	// every memoized assessment, so the cache is cleared. The listen
	// port stays fixed until restart.
	settingsWatch, err := watcher.New(config.SettingsPath(), func() {
		reloaded, err := config.Load()
		if err != nil {
			log.Warn().Err(err).Msg("Settings reload failed, keeping previous config")
			return
		}
		cls.SetCompleter(openai.New(config.ResolveAPIKey(),
			openai.WithBaseURL(reloaded.OpenAIBaseURL),
			openai.WithModel(reloaded.Model),
			openai.WithTimeout(time.Duration(reloaded.TimeoutSeconds)*time.Second),
		))
		if modes, err := policy.Load(config.ModesPath()); err == nil {
			svc.SetModes(modes)
		}
		cls.ClearCache()
	})
	if err != nil {
		log.Warn().Err(err).Msg("Settings watcher unavailable")
	} else {
		if err := settingsWatch.Start(); err != nil {
			log.Warn().Err(err).Msg("Failed to start settings watcher")
		}
		defer settingsWatch.Stop()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(svc.Start)
	g.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return svc.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("Worker exited with error")
	}
}
