package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"codeberg.org/mutker/dashmon/internal/alert"
	"codeberg.org/mutker/dashmon/internal/app"
	"codeberg.org/mutker/dashmon/internal/config"
	"codeberg.org/mutker/dashmon/internal/errors"
	"codeberg.org/mutker/dashmon/internal/logger"
	"codeberg.org/mutker/dashmon/internal/pid"
	"codeberg.org/mutker/dashmon/internal/render"
	"codeberg.org/mutker/dashmon/internal/source"
	"codeberg.org/mutker/dashmon/internal/telemetry"
	"codeberg.org/mutker/dashmon/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Level(), logger.IsService())
	logger.Debug().Msg("Config loaded")

	pidFile := pid.New("")
	if err := pidFile.Write(); err != nil {
		if errors.HasCode(err, errors.ErrAlreadyRunning) {
			logger.Fatal().Err(err).Msg("dashmon is already running")
		}
		logger.Fatal().Err(err).Msg("failed to write PID file")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	if err := run(ctx, cfg); err != nil {
		logger.ErrorWithCode(errors.New().Wrap(errors.ErrMainLoop, err)).Msg("Dashboard stopped with an error")
	}
	cleanup(pidFile)
}

func run(ctx context.Context, cfg *config.Config) error {
	src, err := source.New(cfg.SourceConfig())
	if err != nil {
		return err
	}

	recorder, err := telemetry.NewService(cfg.TelemetryConfig())
	if err != nil {
		logger.Error().Err(err).Msg("Telemetry unavailable, snapshots will not be recorded")
		recorder = telemetry.NewNoop()
	}
	defer func() {
		if err := recorder.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close telemetry")
		}
	}()

	alerts := alert.NewCenter(cfg.AlertDuration())
	defer alerts.Close()

	html, err := render.NewHTML()
	if err != nil {
		return err
	}

	if cfg.Logs.EnableVirtualScroll {
		logger.Debug().Int("page_size", cfg.Logs.PageSize).Msg("Virtual scrolling is not available, logs are paginated")
	}

	dash, err := app.New(cfg.AppConfig(), src, alerts, recorder, render.NewLog(cfg.Verbose), html)
	if err != nil {
		return err
	}
	defer dash.Teardown()

	var serveErr chan error
	if cfg.Server.Enabled {
		server, err := web.New(cfg.ServerConfig(), dash, html, recorder, source.NewSample())
		if err != nil {
			return err
		}
		// Bind before the first load so a local sample backend is reachable.
		if err := server.Listen(); err != nil {
			return err
		}
		serveErr = make(chan error, 1)
		go func() {
			serveErr <- server.Serve(ctx)
		}()
	}

	logger.Info().
		Str("source", cfg.Source.Mode).
		Str("api_base_url", cfg.APIBaseURL).
		Int("interval_ms", cfg.Polling.IntervalMs).
		Int("max_errors", cfg.Polling.MaxErrors).
		Bool("server", cfg.Server.Enabled).
		Bool("telemetry", cfg.Telemetry.Enabled).
		Msg("Starting dashmon")

	if err := dash.Init(ctx); err != nil {
		logger.Warn().Err(err).Msg("Dashboard started without data, waiting for manual refresh")
	}

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		return err
	}

	dash.Teardown()
	dash.Wait()

	if serveErr != nil {
		return <-serveErr
	}
	return nil
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

func cleanup(pidFile *pid.File) {
	if err := pidFile.Remove(); err != nil {
		logger.Error().Err(err).Msg("failed to remove PID file")
	}
	logger.Info().Msg("Exiting...")
}
