package cmd

import (
	"context"
	"net/http"
	"time"

	"github.com/fulmenhq/gofulmen/signals"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kamiza/kamiza/internal/backend"
	"github.com/kamiza/kamiza/internal/catalog"
	"github.com/kamiza/kamiza/internal/config"
	errwrap "github.com/kamiza/kamiza/internal/errors"
	"github.com/kamiza/kamiza/internal/loans"
	"github.com/kamiza/kamiza/internal/mailer"
	"github.com/kamiza/kamiza/internal/observability"
	"github.com/kamiza/kamiza/internal/server"
	"github.com/kamiza/kamiza/internal/server/handlers"
	"github.com/kamiza/kamiza/internal/throttle"
)

var (
	serverPort int
	serverHost string
)

// telemetryHealthChecker ensures telemetry system and exporter are available
type telemetryHealthChecker struct{}

func (telemetryHealthChecker) CheckHealth(ctx context.Context) error {
	if observability.TelemetrySystem == nil || observability.PrometheusExporter == nil {
		return errwrap.NewInternalError("telemetry system not initialized")
	}
	return nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the HTTP server with graceful shutdown support.

Signal Handling:
  • Ctrl+C (SIGINT) or SIGTERM: Graceful shutdown
  • Ctrl+C twice within 2s: Force quit
  • SIGHUP: Config reload (throttle, backend and mail settings need a restart)

The server will cleanly shut down the HTTP server and flush logs on shutdown.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := *currentConfig()
		if cmd.Flags().Changed("host") {
			cfg.Server.Host = serverHost
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port = serverPort
		}

		observability.InitServerLogger(observability.ServerLoggerOptions{
			Service:     config.AppName,
			Level:       cfg.Logging.Level,
			Environment: cfg.Logging.Environment,
			Namespace:   config.AppName,
		})
		logger := observability.ServerLogger

		if cfg.Metrics.Enabled {
			if err := observability.InitMetrics(config.AppName, cfg.Metrics.Port); err != nil {
				logger.Error("Failed to initialize metrics", zap.Error(err))
				return errwrap.WrapInternal(cmd.Context(), err, "metrics initialization failed")
			}
		}

		deps, err := buildAPI(cfg)
		if err != nil {
			return err
		}

		logger.Info("Initializing server",
			zap.String("service", config.AppName),
			zap.String("version", versionInfo.Version),
			zap.String("host", cfg.Server.Host),
			zap.Int("port", cfg.Server.Port),
			zap.Bool("metrics_enabled", cfg.Metrics.Enabled),
			zap.Int("metrics_port", observability.GetMetricsPort()),
			zap.Bool("backend_configured", deps.backend.Configured()),
			zap.Bool("smtp_configured", cfg.Mail.Host != ""),
			zap.Duration("throttle_window", cfg.Throttle.Window),
			zap.Int("throttle_max_requests", cfg.Throttle.MaxRequests))

		hm := handlers.NewHealthManager(versionInfo.Version)
		if cfg.Metrics.Enabled {
			hm.RegisterChecker("telemetry", telemetryHealthChecker{})
		}
		hm.RegisterChecker("catalog", handlers.CheckerFunc(func(ctx context.Context) error {
			_, err := deps.api.Catalog.Load(ctx)
			return err
		}))

		srv := server.New(server.Options{
			Host:             cfg.Server.Host,
			Port:             cfg.Server.Port,
			ReadTimeout:      cfg.Server.ReadTimeout,
			WriteTimeout:     cfg.Server.WriteTimeout,
			IdleTimeout:      cfg.Server.IdleTimeout,
			API:              deps.api,
			Health:           hm,
			RegisterThrottle: deps.registerThrottle,
			OrderThrottle:    deps.orderThrottle,
			AdminToken:       cfg.Server.AdminToken,
		})

		shutdownTimeout := cfg.Server.ShutdownTimeout
		if shutdownTimeout == 0 {
			shutdownTimeout = 10 * time.Second
		}

		// Shutdown handlers run LIFO: HTTP server first, then metrics, then logger.
		signals.OnShutdown(func(ctx context.Context) error {
			logger.Info("Flushing logger...")
			if err := logger.Sync(); err != nil {
				// Sync errors are often benign (stdout/stderr already closed)
				logger.Warn("Logger sync returned error (may be benign)", zap.Error(err))
			}
			return nil
		})

		signals.OnShutdown(func(ctx context.Context) error {
			if err := observability.ShutdownMetrics(); err != nil {
				logger.Warn("Metrics exporter did not stop cleanly", zap.Error(err))
			}
			return nil
		})

		signals.OnShutdown(func(ctx context.Context) error {
			logger.Info("Shutting down HTTP server...")
			shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				return errwrap.WrapInternal(ctx, err, "server shutdown failed")
			}

			logger.Info("HTTP server stopped gracefully",
				zap.Int("register_clients_tracked", deps.registerThrottle.Len()),
				zap.Int("order_clients_tracked", deps.orderThrottle.Len()))
			return nil
		})

		signals.OnReload(func(ctx context.Context) error {
			logger.Info("Received SIGHUP: attempting config reload")

			reloaded, err := config.Load(config.Options{ConfigFile: cfgFile, EnvFiles: envFiles})
			if err != nil {
				logger.Error("Failed to reload config", zap.Error(err))
				return errwrap.WrapConfigInvalid(ctx, err, "config reload failed")
			}
			if reloaded.Throttle != cfg.Throttle {
				logger.Warn("Throttle settings changed; restart to apply",
					zap.Duration("window", reloaded.Throttle.Window),
					zap.Int("max_requests", reloaded.Throttle.MaxRequests))
			}
			logger.Info("Configuration reloaded successfully", zap.String("file", configSource()))
			return nil
		})

		if err := signals.EnableDoubleTap(signals.DoubleTapConfig{
			Window:  2 * time.Second,
			Message: "Press Ctrl+C again within 2 seconds to force quit",
		}); err != nil {
			logger.Warn("Failed to enable double-tap force quit", zap.Error(err))
		}

		errChan := make(chan error, 1)
		go func() {
			if err := srv.Start(); err != nil && err != http.ErrServerClosed {
				errChan <- err
			}
		}()

		go func() {
			if err := signals.Listen(cmd.Context()); err != nil {
				logger.Error("Signal handler error", zap.Error(err))
				errChan <- err
			}
		}()

		if err := <-errChan; err != nil {
			return errwrap.WrapInternal(cmd.Context(), err, "server error")
		}

		return nil
	},
}

type apiDeps struct {
	api              *handlers.API
	backend          *backend.Client
	registerThrottle *throttle.Throttle
	orderThrottle    *throttle.Throttle
}

// buildAPI wires the handler dependencies from cfg. Registration and order
// each get their own throttle.
func buildAPI(cfg config.Config) (*apiDeps, error) {
	client := backend.NewFromConfig(cfg.Backend)

	m, err := mailer.New(cfg.Mail)
	if err != nil {
		return nil, errwrap.WrapConfigInvalid(context.Background(), err, "mail configuration invalid")
	}

	throttleCfg := throttle.Config{
		Window:            cfg.Throttle.Window,
		MaxRequests:       cfg.Throttle.MaxRequests,
		EvictAfterWindows: cfg.Throttle.EvictAfterWindows,
		SweepInterval:     cfg.Throttle.SweepInterval,
	}

	return &apiDeps{
		api: &handlers.API{
			Backend: client,
			APIKey:  cfg.Backend.APIKey,
			Mailer:  m,
			Mail:    cfg.Mail,
			Auth:    cfg.Auth,
			Catalog: &catalog.FileStore{Path: cfg.Catalog.Path},
			Loans:   loans.NewStore(),
		},
		backend:          client,
		registerThrottle: throttle.New(throttleCfg),
		orderThrottle:    throttle.New(throttleCfg),
	}, nil
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverHost, "host", "localhost", "server host (overrides server.host)")
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "server port (overrides server.port)")
}
