package commands

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/klabast/wb-services/event-timeline/internal/app"
	"github.com/klabast/wb-services/event-timeline/internal/config"
	"github.com/klabast/wb-services/event-timeline/internal/locale"
	"github.com/klabast/wb-services/event-timeline/internal/logger"
	"github.com/klabast/wb-services/event-timeline/internal/store"
	"github.com/klabast/wb-services/event-timeline/internal/telemetry"
)

// loadConfig layers file, environment and explicitly set flags.
func loadConfig(cmd *cobra.Command, configPath string) (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}
	if err := cfg.ApplyFlags(cmd.Flags()); err != nil {
		return cfg, fmt.Errorf("apply flags: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, configPath string, static fs.FS) error {
	cfg, err := loadConfig(cmd, configPath)
	if err != nil {
		return err
	}
	logger.SetDefault(logger.New(logger.ParseLevel(cfg.LogLevel), os.Stderr, logger.Format(cfg.LogFormat)))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.ServiceName, cfg.OTelEndpoint)
	if err != nil {
		logger.Warn("Tracing disabled", logger.Fields{"endpoint": cfg.OTelEndpoint}, err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn("Error flushing traces", nil, err)
		}
	}()

	st := openStore(cfg)
	if cfg.WatchDefault && cfg.DefaultFile != "" {
		go func() {
			if err := st.Watch(ctx, cfg.DefaultFile); err != nil {
				logger.Error("Default file watcher stopped", logger.Fields{"path": cfg.DefaultFile}, err)
			}
		}()
	}

	srv, err := app.NewServer(cfg, st, static)
	if err != nil {
		return err
	}
	return srv.ListenAndServe(ctx)
}

// openStore builds the store and loads the default file. Load failures fall
// back to the built-in events of the configured locale.
func openStore(cfg config.Config) *store.Store {
	st := store.New(locale.Lookup(cfg.Locale).Template)
	err := st.LoadDefault(cfg.DefaultFile)
	fields := logger.Fields{"path": cfg.DefaultFile}

	var loadErr *store.StartupLoadError
	switch {
	case err == nil:
		fields["events"] = len(st.GetCurrent())
		logger.Info("Loaded default events", fields)
	case errors.As(err, &loadErr) && loadErr.Missing():
		logger.Info("Default file not found, using built-in events", fields)
	default:
		logger.Warn("Default file unreadable, using built-in events", fields, err)
	}
	return st
}
