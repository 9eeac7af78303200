package config

import (
	"strings"
	"testing"
	"time"
)

const (
	validConfigPath              = "testdata/valid_config.yaml"
	expansionConfigPath          = "testdata/expansion_config.yaml"
	partialConfigPath            = "testdata/partial_config.yaml"
	nonexistentConfigPath        = "testdata/nonexistent_config.yaml"
	expectedNoErrorLoadingConfig = "expected no error loading config, got %v"
	expectedNoErrorMsg           = "expected no error, got %v"
	expectedNonNilConfig         = "expected non-nil config"
	trioEVName                   = "trio-ev"
	developmentEnv               = "development"
	invalidEnv                   = "invalid"
	defaultPort                  = 8080
	testAppName                  = "test-app"
)

// TestLoadConfigSuccess tests loading a valid configuration file
func TestLoadConfigSuccess(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg == nil {
		t.Fatal(expectedNonNilConfig)
	}

	if cfg.App.Name != trioEVName {
		t.Errorf("expected app name '%s', got '%s'", trioEVName, cfg.App.Name)
	}

	if cfg.App.Environment != developmentEnv {
		t.Errorf("expected environment '%s', got '%s'", developmentEnv, cfg.App.Environment)
	}

	if cfg.Server.Port != defaultPort {
		t.Errorf("expected server port %d, got %d", defaultPort, cfg.Server.Port)
	}

	if cfg.Calculator.PayoutRate != 0.75 {
		t.Errorf("expected payout rate 0.75, got %v", cfg.Calculator.PayoutRate)
	}

	if cfg.Cache.FlushSchedule != "0 4 * * *" {
		t.Errorf("expected flush schedule '0 4 * * *', got '%s'", cfg.Cache.FlushSchedule)
	}
}

// TestLoadConfigFileNotFound tests handling of missing configuration file
func TestLoadConfigFileNotFound(t *testing.T) {
	_, err := Load(nonexistentConfigPath)
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
}

// TestLoadConfigEnvironmentVariables tests environment variable override
func TestLoadConfigEnvironmentVariables(t *testing.T) {
	t.Setenv("TRIO_EV_APP_NAME", testAppName)

	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg.App.Name != testAppName {
		t.Errorf("expected app name '%s' from environment, got '%s'", testAppName, cfg.App.Name)
	}
}

// TestLoadConfigExpansion tests ${VAR} placeholders in the YAML file
func TestLoadConfigExpansion(t *testing.T) {
	t.Setenv("TEST_APP_NAME", "expanded-name")
	t.Setenv("TEST_SERVER_PORT", "9090")

	cfg, err := Load(expansionConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg.App.Name != "expanded-name" {
		t.Errorf("expected expanded app name, got '%s'", cfg.App.Name)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected expanded port 9090, got %d", cfg.Server.Port)
	}

	if err := Validate(cfg); err != nil {
		t.Errorf("expected expanded config to validate, got %v", err)
	}
}

// TestLoadWithDefaultsMissingFile tests that defaults fill in a missing file
func TestLoadWithDefaultsMissingFile(t *testing.T) {
	cfg, err := LoadWithDefaults(nonexistentConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if cfg.App.Name != trioEVName {
		t.Errorf("expected default app name '%s', got '%s'", trioEVName, cfg.App.Name)
	}

	if cfg.Server.Port != defaultPort {
		t.Errorf("expected default port %d, got %d", defaultPort, cfg.Server.Port)
	}

	if cfg.Calculator.MaxRunners != 28 {
		t.Errorf("expected default max runners 28, got %d", cfg.Calculator.MaxRunners)
	}

	if err := Validate(cfg); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}

// TestLoadWithDefaultsPartialFile tests that file values win over defaults
func TestLoadWithDefaultsPartialFile(t *testing.T) {
	cfg, err := LoadWithDefaults(partialConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorMsg, err)
	}

	if !cfg.IsStaging() {
		t.Errorf("expected staging environment, got '%s'", cfg.App.Environment)
	}

	if cfg.Calculator.PayoutRate != 0.725 {
		t.Errorf("expected payout rate 0.725, got %v", cfg.Calculator.PayoutRate)
	}

	if cfg.Metrics.Path != "/metrics" {
		t.Errorf("expected default metrics path, got '%s'", cfg.Metrics.Path)
	}
}

// TestValidateSuccess tests validation of a valid configuration
func TestValidateSuccess(t *testing.T) {
	cfg, err := Load(validConfigPath)
	if err != nil {
		t.Fatalf(expectedNoErrorLoadingConfig, err)
	}

	if err := Validate(cfg); err != nil {
		t.Fatalf("expected no validation error, got %v", err)
	}
}

// TestValidateFailures tests rejected configurations
func TestValidateFailures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{
			name:    "invalid environment",
			mutate:  func(cfg *Config) { cfg.App.Environment = invalidEnv },
			wantErr: "development, staging, production",
		},
		{
			name:    "invalid log level",
			mutate:  func(cfg *Config) { cfg.App.LogLevel = "trace" },
			wantErr: "debug, info, warn, error",
		},
		{
			name:    "port out of range",
			mutate:  func(cfg *Config) { cfg.Server.Port = 70000 },
			wantErr: "Port",
		},
		{
			name:    "payout rate above one",
			mutate:  func(cfg *Config) { cfg.Calculator.PayoutRate = 1.5 },
			wantErr: "PayoutRate",
		},
		{
			name:    "too few runners",
			mutate:  func(cfg *Config) { cfg.Calculator.MaxRunners = 2 },
			wantErr: "MaxRunners",
		},
		{
			name:    "zero burst with rate limiting",
			mutate:  func(cfg *Config) { cfg.RateLimit.Burst = 0 },
			wantErr: "rate_limit.burst",
		},
		{
			name:    "zero ttl with cache",
			mutate:  func(cfg *Config) { cfg.Cache.TTLSeconds = 0 },
			wantErr: "cache.ttl_seconds",
		},
		{
			name:    "bad flush schedule",
			mutate:  func(cfg *Config) { cfg.Cache.FlushSchedule = "every tuesday" },
			wantErr: "cache.flush_schedule",
		},
		{
			name:    "metrics without path",
			mutate:  func(cfg *Config) { cfg.Metrics.Path = "" },
			wantErr: "metrics.path",
		},
		{
			name: "production without rate limit",
			mutate: func(cfg *Config) {
				cfg.App.Environment = "production"
				cfg.RateLimit.Enabled = false
			},
			wantErr: "rate limiting",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(validConfigPath)
			if err != nil {
				t.Fatalf(expectedNoErrorLoadingConfig, err)
			}

			tt.mutate(cfg)
			err = Validate(cfg)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing '%s', got: %v", tt.wantErr, err)
			}
		})
	}
}

// TestGetServerAddress tests listen address formatting
func TestGetServerAddress(t *testing.T) {
	cfg := &Config{Server: ServerConfig{Host: "127.0.0.1", Port: 8081}}

	if addr := cfg.GetServerAddress(); addr != "127.0.0.1:8081" {
		t.Errorf("expected '127.0.0.1:8081', got '%s'", addr)
	}

	cfg.Server.Host = ""
	if addr := cfg.GetServerAddress(); addr != ":8081" {
		t.Errorf("expected ':8081', got '%s'", addr)
	}
}

// TestDurations tests the second-based duration helpers
func TestDurations(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{ShutdownTimeoutSeconds: 7},
		Cache:  CacheConfig{TTLSeconds: 600},
		Client: ClientConfig{TimeoutSeconds: 3},
	}

	if got := cfg.GetShutdownTimeout(); got != 7*time.Second {
		t.Errorf("expected 7s shutdown timeout, got %v", got)
	}
	if got := cfg.GetCacheTTL(); got != 10*time.Minute {
		t.Errorf("expected 10m cache ttl, got %v", got)
	}
	if got := cfg.GetClientTimeout(); got != 3*time.Second {
		t.Errorf("expected 3s client timeout, got %v", got)
	}
}

// TestEnvironmentChecks tests environment check functions
func TestEnvironmentChecks(t *testing.T) {
	cfg := &Config{App: AppConfig{Environment: developmentEnv}}
	if !cfg.IsDevelopment() || cfg.IsProduction() || cfg.IsStaging() {
		t.Error("expected only IsDevelopment() to return true")
	}

	cfg.App.Environment = "production"
	if !cfg.IsProduction() || cfg.IsDevelopment() {
		t.Error("expected only IsProduction() to return true")
	}

	cfg.App.Environment = "staging"
	if !cfg.IsStaging() || cfg.IsDevelopment() {
		t.Error("expected only IsStaging() to return true")
	}
}
