package cmd

import (
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/fulmenhq/gofulmen/telemetry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kamiza/kamiza/internal/config"
	"github.com/kamiza/kamiza/internal/observability"
)

var (
	cfgFile  string
	envFiles []string
	verbose  bool

	// appConfig is loaded once by initConfig.
	appConfig *config.Config

	// Version info set by main package
	versionInfo struct {
		Version   string
		Commit    string
		BuildDate string
	}
)

// SetVersionInfo is called by main package to set version information
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   config.AppName,
	Short: "Kamiza dojo service: event registration, orders and library",
	Long: `kamiza serves the club website API: event registrations and merchandise
orders (both throttled per client), events from the booking backend, staff
login, book rentals and the product catalog.

Use the subcommands to perform specific operations.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Disable global telemetry early so config loading does not emit metrics to
	// stdout. Server mode initializes the Prometheus exporter later.
	disabledConfig := &telemetry.Config{Enabled: false}
	if sys, err := telemetry.NewSystem(disabledConfig); err == nil {
		telemetry.SetGlobalSystem(sys)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/kamiza/config.yaml)")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", []string{".env"}, "dotenv files loaded before reading the environment")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (sets log level to debug)")
}

// initConfig sets up the CLI logger and loads configuration.
func initConfig() {
	observability.InitCLILogger(config.AppName, verbose)

	cfg, err := config.Load(config.Options{
		ConfigFile: cfgFile,
		EnvFiles:   envFiles,
	})
	if err != nil {
		ExitWithCode(observability.CLILogger, foundry.ExitConfigInvalid, "Failed to load configuration", err)
		return
	}
	appConfig = cfg

	if verbose {
		observability.CLILogger.Debug("Configuration loaded",
			zap.String("config_file", configSource()),
			zap.Int("throttle_max_requests", cfg.Throttle.MaxRequests),
			zap.Duration("throttle_window", cfg.Throttle.Window))
	}
}

func configSource() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultConfigPath()
}

// currentConfig returns the loaded configuration, falling back to defaults
// for helpers called outside cobra.
func currentConfig() *config.Config {
	if appConfig != nil {
		return appConfig
	}
	if cfg := config.GetConfig(); cfg != nil {
		return cfg
	}
	cfg, err := config.Load(config.Options{})
	if err != nil {
		return &config.Config{}
	}
	return cfg
}
