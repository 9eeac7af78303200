// Package config provides configuration management for the trio calculator.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Calculator CalculatorConfig `mapstructure:"calculator" validate:"required"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Client     ClientConfig     `mapstructure:"client"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host                   string `mapstructure:"host"`
	Port                   int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	ReadTimeoutSeconds     int    `mapstructure:"read_timeout_seconds" validate:"required,gt=0"`
	WriteTimeoutSeconds    int    `mapstructure:"write_timeout_seconds" validate:"required,gt=0"`
	IdleTimeoutSeconds     int    `mapstructure:"idle_timeout_seconds" validate:"required,gt=0"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"required,gt=0"`
}

// RateLimitConfig represents per-client request rate limiting
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"gte=0"`
	Burst             int     `mapstructure:"burst" validate:"gte=0"`
}

// CalculatorConfig represents the expected value formula configuration
type CalculatorConfig struct {
	PayoutRate float64 `mapstructure:"payout_rate" validate:"required,gt=0,lte=1"`
	MaxRunners int     `mapstructure:"max_runners" validate:"required,gte=3"`
}

// CacheConfig represents evaluation cache configuration
type CacheConfig struct {
	Enabled              bool   `mapstructure:"enabled"`
	TTLSeconds           int    `mapstructure:"ttl_seconds" validate:"gte=0"`
	MaxSize              int    `mapstructure:"max_size" validate:"gte=0"`
	StatsIntervalSeconds int    `mapstructure:"stats_interval_seconds" validate:"gte=0"`
	FlushSchedule        string `mapstructure:"flush_schedule"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"omitempty,startswith=/"`
}

// ClientConfig represents the status client configuration
type ClientConfig struct {
	URL            string `mapstructure:"url" validate:"omitempty,url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"gte=0"`
	RetryAttempts  int    `mapstructure:"retry_attempts" validate:"gte=0"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetServerAddress returns the listen address for the HTTP server
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetCacheTTL returns the evaluation cache TTL
func (c *Config) GetCacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// GetShutdownTimeout returns how long the server waits for in-flight requests
func (c *Config) GetShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeoutSeconds) * time.Second
}

// GetClientTimeout returns the status client request timeout
func (c *Config) GetClientTimeout() time.Duration {
	return time.Duration(c.Client.TimeoutSeconds) * time.Second
}
