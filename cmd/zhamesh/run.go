package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"zhamesh/internal/codec"
	"zhamesh/internal/config"
	"zhamesh/internal/console"
	"zhamesh/internal/handler"
	"zhamesh/internal/hub"
	"zhamesh/internal/logging"
	"zhamesh/internal/metrics"
	"zhamesh/internal/repository/sqlite"
	"zhamesh/internal/service"
	"zhamesh/internal/session"
	"zhamesh/internal/topology"
	"zhamesh/internal/watcher"
)

func loadConfig() (*config.Config, string, error) {
	var (
		cfg  *config.Config
		path string
		err  error
	)
	if configPath != "" {
		cfg, path, err = config.LoadFromPath(configPath)
	} else {
		cfg, path, err = config.Load()
	}
	if err != nil {
		return nil, path, err
	}

	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	if httpAddr != "" {
		cfg.HTTP.Addr = httpAddr
	}
	return cfg, path, cfg.Validate()
}

func runMonitor(cmd *cobra.Command, args []string) error {
	cfg, path, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logging.Init(logging.Config{Level: cfg.DebugLevel, Syslog: cfg.Rsyslog}); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer logging.Close()

	logger := logging.WithComponent("main")
	if path != "" {
		logger.Info().Str("path", path).Msg("Loaded config")
	}
	logger.Info().Str("version", version).Msg(cfg.Summary())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer repo.Close()
	logger.Info().Str("path", cfg.Database.Path).Str("run_id", repo.RunID()).Msg("Database opened")

	m := metrics.New()
	eventBus := service.NewEventBus()

	sseHub := hub.New(logging.WithComponent("hub"))
	go sseHub.Run(ctx)

	eventChan := make(chan service.Event, 100)
	eventBus.Subscribe(eventChan)
	go forwardEvents(ctx, eventChan, sseHub)

	reconciler := topology.NewReconciler(
		topology.NewRegistry(time.Local),
		topology.NewEdgeTable(),
		topology.Policy{SweepAbsent: cfg.SweepAbsent},
	)
	monitor := service.NewMonitor(reconciler, eventBus, m, logging.WithComponent("monitor"))
	monitor.AddSink("sqlite", repo)
	if cfg.Console.IsEnabled() {
		monitor.AddSink("console", console.New(os.Stdout))
	}

	var archive *codec.Archive
	if cfg.RawJSONKeep {
		archive, err = codec.OpenArchive(cfg.RawJSONPath)
		if err != nil {
			return fmt.Errorf("open raw archive: %w", err)
		}
		defer func() {
			if err := archive.Close(); err != nil {
				logger.Error().Err(err).Msg("Failed to close raw archive")
			}
		}()
	}

	var server *http.Server
	if cfg.HTTP.IsEnabled() {
		api := handler.NewAPIHandler(monitor, repo, logging.WithComponent("http"))
		server = &http.Server{
			Addr:         cfg.HTTP.Addr,
			Handler:      handler.Routes(api, sseHub, m.Handler(), logging.WithComponent("http")),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 0, // SSE streams stay open
			IdleTimeout:  60 * time.Second,
		}
		go func() {
			logger.Info().Str("addr", cfg.HTTP.Addr).Msg("HTTP server listening")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error().Err(err).Msg("HTTP server failed")
				stop()
			}
		}()
	}

	if path != "" {
		w := watcher.New(path, reloadLevel(path, logger), logging.WithComponent("watcher"))
		go func() {
			if err := w.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn().Err(err).Msg("Config watcher stopped")
			}
		}()
	}

	client := session.NewClient(cfg.WebsocketURL(), cfg.AccessToken, logging.WithComponent("session"))
	loop := session.NewLoop(client, monitor, session.LoopConfig{
		Interval:   cfg.CheckInterval.Duration(),
		RetryDelay: cfg.RetryDelay(),
		Archive:    archive,
	}, m, logging.WithComponent("session"))

	err = loop.Run(ctx)
	logger.Info().Msg("Shutting down")

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("HTTP server shutdown error")
		}
	}

	return err
}

func forwardEvents(ctx context.Context, events <-chan service.Event, h *hub.Hub) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			h.Broadcast(string(ev.Type), ev.Payload)
		}
	}
}

// reloadLevel re-reads the config file and applies a changed debug_level.
// Other settings need a restart.
func reloadLevel(path string, logger zerolog.Logger) func() {
	return func() {
		cfg, _, err := config.LoadFromPath(path)
		if err != nil {
			logger.Warn().Err(err).Msg("Ignoring invalid config change")
			return
		}

		level, err := logging.ParseLevel(cfg.DebugLevel)
		if err != nil {
			logger.Warn().Err(err).Msg("Ignoring invalid debug_level")
			return
		}
		if level != logging.Level() {
			logging.SetLevel(level)
			logger.Info().Str("level", level.String()).Msg("Log level changed")
		}
	}
}
