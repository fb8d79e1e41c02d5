// Copyright 2024 AI SA Assistant Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the research agent settings from defaults, an optional
// YAML file, a .env file and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	// ErrMissingRequiredField is returned when a required configuration field is missing
	ErrMissingRequiredField = errors.New("missing required configuration field")
	// ErrInvalidConfigValue is returned when a configuration value is invalid
	ErrInvalidConfigValue = errors.New("invalid configuration value")
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Reasoning ReasoningConfig `mapstructure:"reasoning"`
	Search    SearchConfig    `mapstructure:"search"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// AppConfig describes the running application
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Description string `mapstructure:"description"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig contains HTTP listener settings
type ServerConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	CORSOrigins string `mapstructure:"cors_origins"`
}

// ReasoningConfig contains the OpenAI-compatible text generation settings
type ReasoningConfig struct {
	APIKey                string        `mapstructure:"apikey"`
	Endpoint              string        `mapstructure:"endpoint"`
	Model                 string        `mapstructure:"model"`
	MaxTokens             int           `mapstructure:"max_tokens"`
	Temperature           float64       `mapstructure:"temperature"`
	AnalysisTemperature   float64       `mapstructure:"analysis_temperature"`
	ExtractionTemperature float64       `mapstructure:"extraction_temperature"`
	InsightTemperature    float64       `mapstructure:"insight_temperature"`
	Timeout               time.Duration `mapstructure:"timeout"`
}

// SearchConfig contains retrieval provider settings
type SearchConfig struct {
	MaxResults     int            `mapstructure:"max_results"`
	PerProviderCap int            `mapstructure:"per_provider_cap"`
	DigestCap      int            `mapstructure:"digest_cap"`
	Serper         ProviderConfig `mapstructure:"serper"`
	Tavily         ProviderConfig `mapstructure:"tavily"`
}

// ProviderConfig contains settings for a single search provider
type ProviderConfig struct {
	APIKey   string        `mapstructure:"apikey"`
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Depth    string        `mapstructure:"depth"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("configuration validation failed for field '%s': %s", e.Field, e.Message)
}

// LoadOptions contains options for configuration loading
type LoadOptions struct {
	ConfigPath       string
	EnvFile          string
	ValidateRequired bool
}

// Load loads configuration from file and environment variables.
// Environment variables take precedence over config file values.
func Load(configPath string) (*Config, error) {
	return LoadWithOptions(LoadOptions{
		ConfigPath:       configPath,
		EnvFile:          ".env",
		ValidateRequired: true,
	})
}

// LoadWithOptions loads configuration with additional options
func LoadWithOptions(opts LoadOptions) (*Config, error) {
	if opts.EnvFile != "" {
		// A missing .env is normal outside local development.
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", opts.EnvFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)

	hasFile, err := setConfigFile(v, opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to set config file: %w", err)
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("RESEARCH_AGENT")

	if hasFile {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	setEnvironmentMappings(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if opts.ValidateRequired {
		if err := validateConfig(&config); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "Research Agent Pro")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.description", "AI research agent with automatic visualizations")
	v.SetDefault("app.environment", "development")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.cors_origins", "http://localhost:3000,http://localhost:3001,http://127.0.0.1:3000,null")

	v.SetDefault("reasoning.endpoint", "https://api.groq.com/openai/v1")
	v.SetDefault("reasoning.model", "llama-3.3-70b-versatile")
	v.SetDefault("reasoning.max_tokens", 4096)
	v.SetDefault("reasoning.temperature", 0.3)
	v.SetDefault("reasoning.analysis_temperature", 0.2)
	v.SetDefault("reasoning.extraction_temperature", 0.3)
	v.SetDefault("reasoning.insight_temperature", 0.5)
	v.SetDefault("reasoning.timeout", 30*time.Second)

	v.SetDefault("search.max_results", 10)
	v.SetDefault("search.per_provider_cap", 5)
	v.SetDefault("search.digest_cap", 10)
	v.SetDefault("search.serper.endpoint", "https://google.serper.dev/search")
	v.SetDefault("search.serper.timeout", 10*time.Second)
	v.SetDefault("search.tavily.endpoint", "https://api.tavily.com/search")
	v.SetDefault("search.tavily.timeout", 15*time.Second)
	v.SetDefault("search.tavily.depth", "advanced")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
}

// setConfigFile resolves the configuration file. A missing file in the default
// locations is not an error: the agent runs on defaults and environment.
func setConfigFile(v *viper.Viper, configPath string) (bool, error) {
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return false, fmt.Errorf("config file specified by CONFIG_PATH does not exist: %s", envPath)
		}
		v.SetConfigFile(envPath)
		return true, nil
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return false, fmt.Errorf("config file does not exist: %s", configPath)
		}
		v.SetConfigFile(configPath)
		return true, nil
	}

	for _, path := range []string{"./configs/config.yaml", "./config.yaml"} {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			return true, nil
		}
	}

	return false, nil
}

// setEnvironmentMappings maps the flat environment names used by deployments
func setEnvironmentMappings(v *viper.Viper) {
	envMappings := map[string]string{
		"GROQ_API_KEY":       "reasoning.apikey",
		"LLM_ENDPOINT":       "reasoning.endpoint",
		"DEFAULT_LLM_MODEL":  "reasoning.model",
		"LLM_TEMPERATURE":    "reasoning.temperature",
		"LLM_MAX_TOKENS":     "reasoning.max_tokens",
		"SERPER_API_KEY":     "search.serper.apikey",
		"TAVILY_API_KEY":     "search.tavily.apikey",
		"MAX_SEARCH_RESULTS": "search.max_results",
		"ENVIRONMENT":        "app.environment",
		"API_HOST":           "server.host",
		"API_PORT":           "server.port",
		"CORS_ORIGINS":       "server.cors_origins",
		"LOG_LEVEL":          "logging.level",
		"LOG_FORMAT":         "logging.format",
		"LOG_OUTPUT":         "logging.output",
	}

	for envVar, configKey := range envMappings {
		if value := os.Getenv(envVar); value != "" {
			v.Set(configKey, value)
		}
	}
}

// validateConfig validates the configuration for valid values. Credentials are
// optional here; their absence is reported by the health endpoint instead.
func validateConfig(config *Config) error {
	var errors []ValidationError

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		errors = append(errors, ValidationError{
			Field:   "server.port",
			Message: "port must be between 1 and 65535",
		})
	}

	if strings.TrimSpace(config.Reasoning.Endpoint) == "" {
		errors = append(errors, ValidationError{
			Field:   "reasoning.endpoint",
			Message: "reasoning endpoint is required",
		})
	}

	if strings.TrimSpace(config.Reasoning.Model) == "" {
		errors = append(errors, ValidationError{
			Field:   "reasoning.model",
			Message: "reasoning model is required",
		})
	}

	if config.Reasoning.MaxTokens <= 0 {
		errors = append(errors, ValidationError{
			Field:   "reasoning.max_tokens",
			Message: "max_tokens must be greater than 0",
		})
	}

	temperatures := map[string]float64{
		"reasoning.temperature":            config.Reasoning.Temperature,
		"reasoning.analysis_temperature":   config.Reasoning.AnalysisTemperature,
		"reasoning.extraction_temperature": config.Reasoning.ExtractionTemperature,
		"reasoning.insight_temperature":    config.Reasoning.InsightTemperature,
	}
	for _, field := range []string{
		"reasoning.temperature",
		"reasoning.analysis_temperature",
		"reasoning.extraction_temperature",
		"reasoning.insight_temperature",
	} {
		if t := temperatures[field]; t < 0 || t > 2 {
			errors = append(errors, ValidationError{
				Field:   field,
				Message: "temperature must be between 0 and 2",
			})
		}
	}

	if config.Reasoning.Timeout <= 0 {
		errors = append(errors, ValidationError{
			Field:   "reasoning.timeout",
			Message: "timeout must be greater than 0",
		})
	}

	if config.Search.MaxResults <= 0 {
		errors = append(errors, ValidationError{
			Field:   "search.max_results",
			Message: "max_results must be greater than 0",
		})
	}

	if config.Search.PerProviderCap <= 0 {
		errors = append(errors, ValidationError{
			Field:   "search.per_provider_cap",
			Message: "per_provider_cap must be greater than 0",
		})
	}

	if config.Search.DigestCap <= 0 {
		errors = append(errors, ValidationError{
			Field:   "search.digest_cap",
			Message: "digest_cap must be greater than 0",
		})
	}

	if config.Search.Serper.Timeout <= 0 || config.Search.Tavily.Timeout <= 0 {
		errors = append(errors, ValidationError{
			Field:   "search.*.timeout",
			Message: "provider timeouts must be greater than 0",
		})
	}

	validDepths := []string{"basic", "advanced"}
	if !contains(validDepths, config.Search.Tavily.Depth) {
		errors = append(errors, ValidationError{
			Field:   "search.tavily.depth",
			Message: fmt.Sprintf("depth must be one of: %s", strings.Join(validDepths, ", ")),
		})
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, config.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("log level must be one of: %s", strings.Join(validLogLevels, ", ")),
		})
	}

	validLogFormats := []string{"json", "text"}
	if !contains(validLogFormats, config.Logging.Format) {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("log format must be one of: %s", strings.Join(validLogFormats, ", ")),
		})
	}

	if len(errors) > 0 {
		var errorMessages []string
		for _, err := range errors {
			errorMessages = append(errorMessages, err.Error())
		}
		return fmt.Errorf("%w:\n%s", ErrInvalidConfigValue, strings.Join(errorMessages, "\n"))
	}

	return nil
}

// CORSOriginList parses the comma separated origin list. Development
// environments allow every origin.
func (c *Config) CORSOriginList() []string {
	if c.App.Environment == "development" {
		return []string{"*"}
	}

	var origins []string
	for _, origin := range strings.Split(c.Server.CORSOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// Address returns the host:port the HTTP server listens on
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// MaskSensitiveValues returns a copy of the config with sensitive values masked
func (c *Config) MaskSensitiveValues() *Config {
	masked := *c

	if masked.Reasoning.APIKey != "" {
		masked.Reasoning.APIKey = maskValue(masked.Reasoning.APIKey)
	}
	if masked.Search.Serper.APIKey != "" {
		masked.Search.Serper.APIKey = maskValue(masked.Search.Serper.APIKey)
	}
	if masked.Search.Tavily.APIKey != "" {
		masked.Search.Tavily.APIKey = maskValue(masked.Search.Tavily.APIKey)
	}

	return &masked
}

// maskValue masks sensitive values, showing only the first 8 characters
func maskValue(value string) string {
	if len(value) <= 8 {
		return strings.Repeat("*", len(value))
	}
	return value[:8] + strings.Repeat("*", len(value)-8)
}

// contains checks if a slice contains a specific string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

// WatchConfig enables configuration hot-reloading for development. The
// callback receives every successfully reloaded configuration; reload
// failures are passed to onError and the previous configuration stays live.
func WatchConfig(configPath string, callback func(*Config), onError func(error)) error {
	v := viper.New()

	hasFile, err := setConfigFile(v, configPath)
	if err != nil {
		return err
	}
	if !hasFile {
		return fmt.Errorf("%w: no config file to watch", ErrMissingRequiredField)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		config, err := LoadWithOptions(LoadOptions{
			ConfigPath:       v.ConfigFileUsed(),
			ValidateRequired: true,
		})
		if err != nil {
			if onError != nil {
				onError(fmt.Errorf("failed to reload config after %s: %w", e.Name, err))
			}
			return
		}
		callback(config)
	})
	v.WatchConfig()

	return nil
}
