package cmd

import (
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kamiza/kamiza/internal/catalog"
	errwrap "github.com/kamiza/kamiza/internal/errors"
	"github.com/kamiza/kamiza/internal/observability"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Run self-health check",
	Long:  "Run a self-health check to verify the service can start with the current configuration.",
	Run: func(cmd *cobra.Command, args []string) {
		logger := observability.CLILogger
		logger.Info("Running health check...")

		if versionInfo.Version == "" {
			ExitWithCode(logger, foundry.ExitConfigInvalid, "Version information missing", errwrap.NewConfigInvalidError("Version information missing"))
			return
		}
		logger.Info("✅ Version information available")

		cfg := currentConfig()
		if err := cfg.Validate(); err != nil {
			ExitWithCode(logger, foundry.ExitConfigInvalid, "Configuration invalid", err)
			return
		}
		logger.Info("✅ Configuration valid")

		store := &catalog.FileStore{Path: cfg.Catalog.Path}
		if _, err := store.Load(cmd.Context()); err != nil {
			ExitWithCode(logger, foundry.ExitFileNotFound, "Product catalog unreadable", err)
			return
		}
		logger.Info("✅ Product catalog readable", zap.String("path", cfg.Catalog.Path))

		if cfg.Backend.BaseURL == "" {
			logger.Warn("⚠️  backend.base_url not set: events, login and rentals will be unavailable")
		} else {
			logger.Info("✅ Backend configured", zap.String("base_url", cfg.Backend.BaseURL))
		}
		if cfg.Mail.Host == "" {
			logger.Warn("⚠️  mail.host not set: mails will only be logged")
		}

		logger.Info("")
		logger.Info("✅ All health checks passed")
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
