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

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/your-org/research-agent/internal/api"
	"github.com/your-org/research-agent/internal/config"
	"github.com/your-org/research-agent/internal/health"
	"github.com/your-org/research-agent/internal/research"
)

const (
	// ShutdownTimeout bounds graceful shutdown of in-flight requests
	ShutdownTimeout = 30 * time.Second
	// ReadHeaderTimeout guards against slow clients
	ReadHeaderTimeout = 10 * time.Second
)

var watchConfig bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the research HTTP API",
	RunE: func(_ *cobra.Command, _ []string) error {
		return runServe()
	},
}

func init() {
	serveCmd.Flags().BoolVarP(&watchConfig, "watch", "w", false, "Reload configuration when the config file changes")
	rootCmd.AddCommand(serveCmd)
}

// reloadableResearcher swaps its pipeline when the configuration changes
type reloadableResearcher struct {
	mu       sync.RWMutex
	pipeline *research.Pipeline
}

func (r *reloadableResearcher) Run(ctx context.Context, query string) (*research.Result, error) {
	r.mu.RLock()
	pipeline := r.pipeline
	r.mu.RUnlock()
	return pipeline.Run(ctx, query)
}

func (r *reloadableResearcher) set(pipeline *research.Pipeline) {
	r.mu.Lock()
	r.pipeline = pipeline
	r.mu.Unlock()
}

func runServe() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, level, err := initializeLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logStartup(cfg, logger)

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	healthManager := health.NewManager("research-agent", cfg.App.Version, cfg.App.Environment, logger)
	setCredentials(healthManager, cfg)

	researcher := &reloadableResearcher{pipeline: research.NewPipelineFromConfig(cfg, logger)}

	if watchConfig {
		err := config.WatchConfig(configPath, func(updated *config.Config) {
			level.SetLevel(parseLevel(updated.Logging.Level))
			setCredentials(healthManager, updated)
			researcher.set(research.NewPipelineFromConfig(updated, logger))
			logger.Info("Configuration reloaded",
				zap.String("model", updated.Reasoning.Model),
				zap.String("log_level", updated.Logging.Level),
			)
		}, func(err error) {
			logger.Warn("Configuration reload failed, keeping previous configuration", zap.Error(err))
		})
		if err != nil {
			logger.Warn("Config watching disabled", zap.Error(err))
		}
	}

	server := api.NewServer(cfg, researcher, healthManager, logger)
	httpServer := &http.Server{
		Addr:              cfg.Address(),
		Handler:           server.Router(),
		ReadHeaderTimeout: ReadHeaderTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting research service", zap.String("address", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case sig := <-quit:
		logger.Info("Shutting down", zap.String("app", cfg.App.Name), zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// setCredentials reports provider key presence to the health endpoint
func setCredentials(manager *health.Manager, cfg *config.Config) {
	manager.SetCredential("groq", cfg.Reasoning.APIKey)
	manager.SetCredential("serper", cfg.Search.Serper.APIKey)
	manager.SetCredential("tavily", cfg.Search.Tavily.APIKey)
}

// logStartup logs the service banner with masked configuration
func logStartup(cfg *config.Config, logger *zap.Logger) {
	masked := cfg.MaskSensitiveValues()
	logger.Info("Starting "+cfg.App.Name,
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
		zap.String("reasoning_endpoint", masked.Reasoning.Endpoint),
		zap.String("reasoning_model", masked.Reasoning.Model),
		zap.String("groq", presence(cfg.Reasoning.APIKey)),
		zap.String("serper", presence(cfg.Search.Serper.APIKey)),
		zap.String("tavily", presence(cfg.Search.Tavily.APIKey)),
	)
}
