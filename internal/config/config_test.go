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

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test config file: %v", err)
	}
	return configPath
}

func loadForTest(t *testing.T, configPath string) (*Config, error) {
	t.Helper()
	return LoadWithOptions(LoadOptions{ConfigPath: configPath, ValidateRequired: true})
}

func TestLoadConfig(t *testing.T) {
	configPath := writeConfig(t, `
app:
  environment: "production"
server:
  port: 9000
  cors_origins: "https://a.example.com, https://b.example.com"
reasoning:
  apikey: "gsk-test-key"  # pragma: allowlist secret
  model: "llama-3.1-8b-instant"
  max_tokens: 1024
  timeout: 12s
search:
  per_provider_cap: 3
  serper:
    apikey: "serper-key"
    timeout: 4s
  tavily:
    apikey: "tavily-key"
    depth: "basic"
logging:
  level: "debug"
  format: "text"
`)

	config, err := loadForTest(t, configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.Reasoning.APIKey != "gsk-test-key" {
		t.Errorf("Expected reasoning API key 'gsk-test-key', got '%s'", config.Reasoning.APIKey)
	}
	if config.Reasoning.Model != "llama-3.1-8b-instant" {
		t.Errorf("Expected model override, got '%s'", config.Reasoning.Model)
	}
	if config.Reasoning.Timeout != 12*time.Second {
		t.Errorf("Expected reasoning timeout 12s, got %s", config.Reasoning.Timeout)
	}
	if config.Search.PerProviderCap != 3 {
		t.Errorf("Expected per_provider_cap 3, got %d", config.Search.PerProviderCap)
	}
	if config.Search.Serper.Timeout != 4*time.Second {
		t.Errorf("Expected serper timeout 4s, got %s", config.Search.Serper.Timeout)
	}
	if config.Search.Tavily.Timeout != 15*time.Second {
		t.Errorf("Expected default tavily timeout 15s, got %s", config.Search.Tavily.Timeout)
	}
	if config.Search.Tavily.Depth != "basic" {
		t.Errorf("Expected tavily depth 'basic', got '%s'", config.Search.Tavily.Depth)
	}
	if config.Address() != "0.0.0.0:9000" {
		t.Errorf("Expected address 0.0.0.0:9000, got %s", config.Address())
	}

	origins := config.CORSOriginList()
	if len(origins) != 2 || origins[0] != "https://a.example.com" || origins[1] != "https://b.example.com" {
		t.Errorf("Unexpected CORS origins: %v", origins)
	}
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	config, err := LoadWithOptions(LoadOptions{ValidateRequired: true})
	if err != nil {
		t.Fatalf("Expected defaults to load without a config file, got: %v", err)
	}

	if config.App.Name != "Research Agent Pro" {
		t.Errorf("Expected default app name, got '%s'", config.App.Name)
	}
	if config.Reasoning.Endpoint != "https://api.groq.com/openai/v1" {
		t.Errorf("Expected Groq endpoint, got '%s'", config.Reasoning.Endpoint)
	}
	if config.Search.PerProviderCap != 5 || config.Search.DigestCap != 10 {
		t.Errorf("Expected caps 5/10, got %d/%d", config.Search.PerProviderCap, config.Search.DigestCap)
	}
	if config.Search.Serper.Timeout >= config.Search.Tavily.Timeout {
		t.Errorf("Expected the deeper Tavily search to get the longer budget")
	}
	if got := config.CORSOriginList(); len(got) != 1 || got[0] != "*" {
		t.Errorf("Expected development to allow all origins, got %v", got)
	}
}

func TestEnvironmentVariableOverrides(t *testing.T) {
	configPath := writeConfig(t, `
reasoning:
  apikey: "file-key"
logging:
  level: "info"
`)

	t.Setenv("GROQ_API_KEY", "env-groq-key")
	t.Setenv("SERPER_API_KEY", "env-serper-key")
	t.Setenv("TAVILY_API_KEY", "env-tavily-key")
	t.Setenv("API_PORT", "8123")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("RESEARCH_AGENT_SEARCH_DIGEST_CAP", "7")

	config, err := loadForTest(t, configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.Reasoning.APIKey != "env-groq-key" {
		t.Errorf("Expected env override for reasoning key, got '%s'", config.Reasoning.APIKey)
	}
	if config.Search.Serper.APIKey != "env-serper-key" || config.Search.Tavily.APIKey != "env-tavily-key" {
		t.Errorf("Expected env overrides for search keys")
	}
	if config.Server.Port != 8123 {
		t.Errorf("Expected port 8123, got %d", config.Server.Port)
	}
	if config.Logging.Level != "warn" {
		t.Errorf("Expected log level 'warn', got '%s'", config.Logging.Level)
	}
	if config.Search.DigestCap != 7 {
		t.Errorf("Expected digest cap 7, got %d", config.Search.DigestCap)
	}
}

func TestDotEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	if err := os.WriteFile(envPath, []byte("TAVILY_API_KEY=dotenv-tavily\n"), 0644); err != nil {
		t.Fatalf("Failed to write env file: %v", err)
	}
	t.Setenv("TAVILY_API_KEY", "")
	_ = os.Unsetenv("TAVILY_API_KEY")

	config, err := LoadWithOptions(LoadOptions{EnvFile: envPath, ValidateRequired: true})
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if config.Search.Tavily.APIKey != "dotenv-tavily" {
		t.Errorf("Expected .env value, got '%s'", config.Search.Tavily.APIKey)
	}
}

func TestValidationErrors(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		expectField string
	}{
		{
			name:        "invalid port",
			content:     "server:\n  port: 0\n",
			expectField: "server.port",
		},
		{
			name:        "invalid temperature",
			content:     "reasoning:\n  insight_temperature: 3.5\n",
			expectField: "reasoning.insight_temperature",
		},
		{
			name:        "invalid depth",
			content:     "search:\n  tavily:\n    depth: \"deep\"\n",
			expectField: "search.tavily.depth",
		},
		{
			name:        "invalid cap",
			content:     "search:\n  per_provider_cap: -1\n",
			expectField: "search.per_provider_cap",
		},
		{
			name:        "invalid log level",
			content:     "logging:\n  level: \"verbose\"\n",
			expectField: "logging.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadForTest(t, writeConfig(t, tt.content))
			if err == nil {
				t.Fatalf("Expected validation error for %s", tt.expectField)
			}
			if !errors.Is(err, ErrInvalidConfigValue) {
				t.Errorf("Expected ErrInvalidConfigValue, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.expectField) {
				t.Errorf("Expected error to mention %s, got %v", tt.expectField, err)
			}
		})
	}
}

func TestMissingCredentialsAreNotFatal(t *testing.T) {
	config, err := loadForTest(t, writeConfig(t, "app:\n  name: \"x\"\n"))
	if err != nil {
		t.Fatalf("Expected missing credentials to load, got %v", err)
	}
	if config.App.Name != "x" {
		t.Errorf("Expected app name 'x', got '%s'", config.App.Name)
	}
}

func TestMissingExplicitConfigFile(t *testing.T) {
	_, err := loadForTest(t, filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("Expected error for missing explicit config file")
	}
}

func TestMaskSensitiveValues(t *testing.T) {
	config := &Config{}
	config.Reasoning.APIKey = "gsk-1234567890abcdef"
	config.Search.Serper.APIKey = "short"
	config.Search.Tavily.APIKey = "tvly-abcdefghijkl"

	masked := config.MaskSensitiveValues()

	if masked.Reasoning.APIKey != "gsk-1234************" {
		t.Errorf("Unexpected masked reasoning key: %s", masked.Reasoning.APIKey)
	}
	if masked.Search.Serper.APIKey != "*****" {
		t.Errorf("Unexpected masked serper key: %s", masked.Search.Serper.APIKey)
	}
	if masked.Search.Tavily.APIKey != "tvly-abc*********" {
		t.Errorf("Unexpected masked tavily key: %s", masked.Search.Tavily.APIKey)
	}
	if config.Reasoning.APIKey != "gsk-1234567890abcdef" {
		t.Error("Masking must not modify the original config")
	}
}

func TestWatchConfigRequiresFile(t *testing.T) {
	err := WatchConfig("", func(*Config) {}, nil)
	if !errors.Is(err, ErrMissingRequiredField) {
		t.Errorf("Expected ErrMissingRequiredField, got %v", err)
	}
}
