// Package config provides centralized configuration management for kamiza.
// Load layers built-in defaults, an optional YAML file, .env files and
// KAMIZA_-prefixed environment variables, then decodes the result into Config.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// AppName is used for the config directory and file names.
const AppName = "kamiza"

// EnvPrefix is prepended to every environment variable key.
const EnvPrefix = "KAMIZA"

var (
	appConfig *Config
	configMu  sync.RWMutex
)

// Options controls where Load looks for configuration.
type Options struct {
	// ConfigFile is an explicit YAML file. When empty the XDG config dir and
	// ./config are searched for config.yaml.
	ConfigFile string

	// EnvFiles are loaded into the process environment before reading
	// variables. Missing files are ignored; existing variables are not
	// overwritten.
	EnvFiles []string

	// Overrides are applied last, keyed by dotted config path.
	Overrides map[string]any
}

// legacyEnv maps config keys to the unprefixed variable names used by earlier
// deployments of the club site.
var legacyEnv = map[string][]string{
	"backend.base_url":                {"API_BASE_URL", "NEXT_PUBLIC_API_BASE_URL"},
	"backend.api_key":                 {"API_KEY", "NEXT_PUBLIC_API_KEY"},
	"backend.service_nickname":        {"API_USER_NICKNAME", "NEXT_PUBLIC_API_USER_NICKNAME"},
	"backend.service_password":        {"API_USER_PASSWORD", "NEXT_PUBLIC_API_USER_PASSWORD"},
	"mail.host":                       {"SMTP_HOST", "NEXT_PUBLIC_SMTP_HOST"},
	"mail.username":                   {"SMTP_USER", "NEXT_PUBLIC_SMTP_USER"},
	"mail.password":                   {"SMTP_PW", "NEXT_PUBLIC_SMTP_PW"},
	"mail.register_to":                {"REGISTER_EMAIL_TO", "NEXT_PUBLIC_REGISTER_EMAIL_TO"},
	"events.registration_period_days": {"REGISTRATION_PERIOD_DAYS", "NEXT_PUBLIC_REGISTRATION_PERIOD_DAYS"},
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.admin_token", "")

	v.SetDefault("throttle.window", "60s")
	v.SetDefault("throttle.max_requests", 10)
	v.SetDefault("throttle.evict_after_windows", 0)
	v.SetDefault("throttle.sweep_interval", "5m")

	v.SetDefault("backend.base_url", "")
	v.SetDefault("backend.api_key", "")
	v.SetDefault("backend.service_nickname", "")
	v.SetDefault("backend.service_password", "")
	v.SetDefault("backend.timeout", "10s")
	v.SetDefault("backend.breaker_timeout", "30s")
	v.SetDefault("backend.breaker_max_failures", 5)
	v.SetDefault("backend.timezone", "Europe/Berlin")

	v.SetDefault("auth.cookie_name", "auth_token")
	v.SetDefault("auth.cookie_max_age", "24h")
	v.SetDefault("auth.secure_cookie", true)

	v.SetDefault("mail.host", "")
	v.SetDefault("mail.port", 465)
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.from", "")
	v.SetDefault("mail.register_to", []string{})
	v.SetDefault("mail.order_to", []string{})
	v.SetDefault("mail.logo_url", "")

	v.SetDefault("catalog.path", "./products.json")

	v.SetDefault("events.registration_period_days", 21)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.environment", "production")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)

	v.SetDefault("health.enabled", true)
}

// Load reads configuration according to opts, validates it and stores it as
// the current configuration.
func Load(opts Options) (*Config, error) {
	for _, file := range opts.EnvFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", file, err)
		}
	}

	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range legacyEnv {
		args := append([]string{key, envName(key)}, names...)
		if err := v.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		if dir := DefaultConfigDir(); dir != "" {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath("./config")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	for key, value := range opts.Overrides {
		v.Set(key, value)
	}

	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Mail.RegisterTo = trimList(cfg.Mail.RegisterTo)
	cfg.Mail.OrderTo = trimList(cfg.Mail.OrderTo)
	if len(cfg.Mail.OrderTo) == 0 {
		cfg.Mail.OrderTo = cfg.Mail.RegisterTo
	}
	if cfg.Mail.From == "" {
		cfg.Mail.From = cfg.Mail.Username
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	setConfig(cfg)
	return cfg, nil
}

// Validate rejects settings the service cannot run with.
func (c *Config) Validate() error {
	var problems []string

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		problems = append(problems, fmt.Sprintf("server.port out of range: %d", c.Server.Port))
	}
	if c.Throttle.Window <= 0 {
		problems = append(problems, "throttle.window must be positive")
	}
	if c.Throttle.MaxRequests <= 0 {
		problems = append(problems, "throttle.max_requests must be positive")
	}
	if c.Throttle.EvictAfterWindows < 0 {
		problems = append(problems, "throttle.evict_after_windows must not be negative")
	}
	if c.Mail.Host != "" && (c.Mail.Port <= 0 || c.Mail.Port > 65535) {
		problems = append(problems, fmt.Sprintf("mail.port out of range: %d", c.Mail.Port))
	}
	if c.Backend.Timezone != "" {
		if _, err := time.LoadLocation(c.Backend.Timezone); err != nil {
			problems = append(problems, fmt.Sprintf("backend.timezone unknown: %s", c.Backend.Timezone))
		}
	}
	if c.Events.RegistrationPeriodDays < 0 {
		problems = append(problems, "events.registration_period_days must not be negative")
	}
	if strings.TrimSpace(c.Auth.CookieName) == "" {
		problems = append(problems, "auth.cookie_name must not be empty")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// GetConfig returns the current application configuration (thread-safe)
func GetConfig() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConfig
}

func setConfig(cfg *Config) {
	configMu.Lock()
	defer configMu.Unlock()
	appConfig = cfg
}

// DefaultConfigDir returns $XDG_CONFIG_HOME/kamiza (or the platform equivalent).
func DefaultConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return ""
	}
	return filepath.Join(dir, AppName)
}

// DefaultConfigPath returns the default config file location.
func DefaultConfigPath() string {
	dir := DefaultConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

func trimList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
