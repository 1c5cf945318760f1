package config

import "time"

// Config represents the complete application configuration. Values are
// layered: built-in defaults, then the YAML config file, then .env files and
// environment variables (KAMIZA_ prefix), then runtime overrides.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Throttle ThrottleConfig `mapstructure:"throttle" yaml:"throttle"`
	Backend  BackendConfig  `mapstructure:"backend" yaml:"backend"`
	Auth     AuthConfig     `mapstructure:"auth" yaml:"auth"`
	Mail     MailConfig     `mapstructure:"mail" yaml:"mail"`
	Catalog  CatalogConfig  `mapstructure:"catalog" yaml:"catalog"`
	Events   EventsConfig   `mapstructure:"events" yaml:"events"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics" yaml:"metrics"`
	Health   HealthConfig   `mapstructure:"health" yaml:"health"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            int           `mapstructure:"port" yaml:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	// AdminToken enables the POST /admin/signal endpoint.
	AdminToken string `mapstructure:"admin_token" yaml:"admin_token"`
}

// ThrottleConfig sizes the fixed-window throttles in front of the submission
// endpoints. Registration and order each get their own instance.
type ThrottleConfig struct {
	Window      time.Duration `mapstructure:"window" yaml:"window"`
	MaxRequests int           `mapstructure:"max_requests" yaml:"max_requests"`

	// EvictAfterWindows enables lazy eviction of idle clients; 0 disables it.
	EvictAfterWindows int           `mapstructure:"evict_after_windows" yaml:"evict_after_windows"`
	SweepInterval     time.Duration `mapstructure:"sweep_interval" yaml:"sweep_interval"`
}

// BackendConfig points at the external booking API.
type BackendConfig struct {
	BaseURL            string        `mapstructure:"base_url" yaml:"base_url"`
	APIKey             string        `mapstructure:"api_key" yaml:"api_key"`
	ServiceNickname    string        `mapstructure:"service_nickname" yaml:"service_nickname"`
	ServicePassword    string        `mapstructure:"service_password" yaml:"service_password"`
	Timeout            time.Duration `mapstructure:"timeout" yaml:"timeout"`
	BreakerTimeout     time.Duration `mapstructure:"breaker_timeout" yaml:"breaker_timeout"`
	BreakerMaxFailures uint32        `mapstructure:"breaker_max_failures" yaml:"breaker_max_failures"`
	// Timezone reads backend date-times that carry no offset.
	Timezone string `mapstructure:"timezone" yaml:"timezone"`
}

// AuthConfig controls the staff session cookie.
type AuthConfig struct {
	CookieName   string        `mapstructure:"cookie_name" yaml:"cookie_name"`
	CookieMaxAge time.Duration `mapstructure:"cookie_max_age" yaml:"cookie_max_age"`
	SecureCookie bool          `mapstructure:"secure_cookie" yaml:"secure_cookie"`
}

// MailConfig contains SMTP settings. An empty Host logs mails instead of
// sending them.
type MailConfig struct {
	Host       string   `mapstructure:"host" yaml:"host"`
	Port       int      `mapstructure:"port" yaml:"port"`
	Username   string   `mapstructure:"username" yaml:"username"`
	Password   string   `mapstructure:"password" yaml:"password"`
	From       string   `mapstructure:"from" yaml:"from"`
	RegisterTo []string `mapstructure:"register_to" yaml:"register_to"`
	OrderTo    []string `mapstructure:"order_to" yaml:"order_to"`
	LogoURL    string   `mapstructure:"logo_url" yaml:"logo_url"`
}

// CatalogConfig locates the product catalog file.
type CatalogConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// EventsConfig controls how event registration status is derived.
type EventsConfig struct {
	// RegistrationPeriodDays opens registration this many days before the
	// deadline.
	RegistrationPeriodDays int `mapstructure:"registration_period_days" yaml:"registration_period_days"`
}

// RegistrationPeriod returns the period as a duration.
func (c EventsConfig) RegistrationPeriod() time.Duration {
	return time.Duration(c.RegistrationPeriodDays) * 24 * time.Hour
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	// Level controls the minimum log level
	// Valid values: trace, debug, info, warn, error
	Level       string `mapstructure:"level" yaml:"level"`
	Environment string `mapstructure:"environment" yaml:"environment"`
}

// MetricsConfig contains Prometheus metrics configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	Port    int  `mapstructure:"port" yaml:"port"`
}

// HealthConfig contains health check configuration
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
}

const redacted = "********"

// Redacted returns a copy with secrets masked, for display.
func (c Config) Redacted() Config {
	out := c
	if out.Backend.APIKey != "" {
		out.Backend.APIKey = redacted
	}
	if out.Backend.ServicePassword != "" {
		out.Backend.ServicePassword = redacted
	}
	if out.Server.AdminToken != "" {
		out.Server.AdminToken = redacted
	}
	if out.Mail.Password != "" {
		out.Mail.Password = redacted
	}
	return out
}
