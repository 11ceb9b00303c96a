package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Cache     CacheConfig     `yaml:"cache"`
	Remote    RemoteConfig    `yaml:"remote"`
	Mail      MailConfig      `yaml:"mail"`
	JWT       JWTConfig       `yaml:"jwt"`
	Log       LogConfig       `yaml:"log"`
	Rental    RentalConfig    `yaml:"rental"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// CacheConfig contains PostgreSQL settings for the durable local cache
type CacheConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`
}

// RemoteConfig contains settings for the upstream rental API
type RemoteConfig struct {
	BaseURL        string `yaml:"base_url"`
	BearerToken    string `yaml:"bearer_token"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	SyncRetries    int    `yaml:"sync_retries"`
}

// MailConfig contains SendGrid settings for back-office email
type MailConfig struct {
	SendGridAPIKey string `yaml:"sendgrid_api_key"`
	FromEmail      string `yaml:"from_email"`
	FromName       string `yaml:"from_name"`
	AdminEmail     string `yaml:"admin_email"`
}

// JWTConfig contains session token settings
type JWTConfig struct {
	Secret            string `yaml:"secret"`
	AccessTokenExpiry int    `yaml:"access_token_expiry_minutes"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// RentalConfig contains pricing and lifecycle settings
type RentalConfig struct {
	OverdueHourlyFee int `yaml:"overdue_hourly_fee"`
	SecurityDeposit  int `yaml:"security_deposit"`
	HoldWindowHours  int `yaml:"hold_window_hours"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	ExpireStaleReservations string `yaml:"expire_stale_reservations"`
	FlushAvailabilitySync   string `yaml:"flush_availability_sync"`
	SendOverdueReminders    string `yaml:"send_overdue_reminders"`
}

// Load reads configuration from a YAML file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Cache database
	if val := os.Getenv("CACHE_DB_HOST"); val != "" {
		c.Cache.Host = val
	}
	if val := os.Getenv("CACHE_DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Cache.Port)
	}
	if val := os.Getenv("CACHE_DB_USER"); val != "" {
		c.Cache.User = val
	}
	if val := os.Getenv("CACHE_DB_PASSWORD"); val != "" {
		c.Cache.Password = val
	}
	if val := os.Getenv("CACHE_DB_NAME"); val != "" {
		c.Cache.Database = val
	}
	if val := os.Getenv("CACHE_DB_SSL_MODE"); val != "" {
		c.Cache.SSLMode = val
	}

	// Remote API
	if val := os.Getenv("REMOTE_BASE_URL"); val != "" {
		c.Remote.BaseURL = val
	}
	if val := os.Getenv("REMOTE_BEARER_TOKEN"); val != "" {
		c.Remote.BearerToken = val
	}

	// Mail
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.Mail.SendGridAPIKey = val
	}
	if val := os.Getenv("SENDGRID_FROM_EMAIL"); val != "" {
		c.Mail.FromEmail = val
	}
	if val := os.Getenv("ADMIN_EMAIL"); val != "" {
		c.Mail.AdminEmail = val
	}

	// JWT
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.JWT.Secret = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Set defaults for log if not configured
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	// Cache database validation
	if c.Cache.Host == "" {
		return fmt.Errorf("cache database host is required")
	}
	if c.Cache.User == "" {
		return fmt.Errorf("cache database user is required")
	}
	if c.Cache.Database == "" {
		return fmt.Errorf("cache database name is required")
	}

	// Remote API validation
	if c.Remote.BaseURL == "" {
		return fmt.Errorf("remote base URL is required")
	}
	if c.Remote.TimeoutSeconds <= 0 {
		c.Remote.TimeoutSeconds = 15
	}
	if c.Remote.SyncRetries <= 0 {
		c.Remote.SyncRetries = 5
	}

	// JWT validation
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.JWT.AccessTokenExpiry <= 0 {
		c.JWT.AccessTokenExpiry = 60
	}

	// Rental defaults
	if c.Rental.OverdueHourlyFee == 0 {
		c.Rental.OverdueHourlyFee = 300
	}
	if c.Rental.SecurityDeposit == 0 {
		c.Rental.SecurityDeposit = 5000
	}
	if c.Rental.HoldWindowHours == 0 {
		c.Rental.HoldWindowHours = 48
	}

	// Scheduler defaults
	if c.Scheduler.ExpireStaleReservations == "" {
		c.Scheduler.ExpireStaleReservations = "0 0 * * * *" // hourly
	}
	if c.Scheduler.FlushAvailabilitySync == "" {
		c.Scheduler.FlushAvailabilitySync = "0 */5 * * * *" // every 5 minutes
	}
	if c.Scheduler.SendOverdueReminders == "" {
		c.Scheduler.SendOverdueReminders = "0 0 3 * * *" // 3 AM UTC
	}

	return nil
}

// GetCacheConnectionString returns a PostgreSQL connection string
func (c *Config) GetCacheConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Cache.User,
		c.Cache.Password,
		c.Cache.Host,
		c.Cache.Port,
		c.Cache.Database,
		c.Cache.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
