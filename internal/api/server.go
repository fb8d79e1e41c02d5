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

// Package api exposes the research pipeline over HTTP with gin.
package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/your-org/research-agent/internal/config"
	"github.com/your-org/research-agent/internal/health"
	"github.com/your-org/research-agent/internal/research"
	"github.com/your-org/research-agent/internal/resilience"
)

// TestQuery is the canned query run by GET /research/test
const TestQuery = "AI market trends 2024"

// Researcher runs one research query
type Researcher interface {
	Run(ctx context.Context, query string) (*research.Result, error)
}

// Server holds the HTTP handlers and their dependencies
type Server struct {
	config        *config.Config
	researcher    Researcher
	healthManager *health.Manager
	errorHandler  *resilience.ErrorHandler
	logger        *zap.Logger
}

// NewServer creates an API server
func NewServer(cfg *config.Config, researcher Researcher, healthManager *health.Manager, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		config:        cfg,
		researcher:    researcher,
		healthManager: healthManager,
		errorHandler:  resilience.NewErrorHandler(logger),
		logger:        logger,
	}
}

// Router builds the gin engine. Every route is served both at the root and
// under /api/v1.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(RequestIDMiddleware())
	router.Use(LoggingMiddleware(s.logger))
	router.Use(s.errorHandler.Recovery())
	router.Use(CORSMiddleware(s.config.CORSOriginList()))

	router.GET("/", s.handleRoot)
	s.registerRoutes(&router.RouterGroup)
	s.registerRoutes(router.Group("/api/v1"))

	router.NoRoute(func(c *gin.Context) {
		s.errorHandler.Abort(c, resilience.NewNotFoundError("Route not found", nil), "routing request")
	})

	return router
}

func (s *Server) registerRoutes(group *gin.RouterGroup) {
	group.GET("/health", gin.WrapH(s.healthManager.HTTPHandler()))
	group.POST("/research", s.handleResearch)
	group.GET("/research/test", s.handleResearchTest)
}

// handleRoot returns API information
func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"app":         s.config.App.Name,
		"version":     s.config.App.Version,
		"description": s.config.App.Description,
		"status":      "running",
	})
}

// handleResearch runs the pipeline for the posted query
func (s *Server) handleResearch(c *gin.Context) {
	var req ResearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorHandler.Abort(c, resilience.NewBadRequestError("Invalid request format", err).WithDetail(err.Error()), "decoding request")
		return
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		s.errorHandler.Abort(c, resilience.NewBadRequestError("Query cannot be empty", nil), "validating request")
		return
	}

	response, err := s.research(c.Request.Context(), query)
	if err != nil {
		s.errorHandler.Abort(c, err, "running research")
		return
	}

	c.JSON(http.StatusOK, response)
}

// handleResearchTest runs the canned query and reports what was produced
func (s *Server) handleResearchTest(c *gin.Context) {
	response, err := s.research(c.Request.Context(), TestQuery)
	if err != nil {
		var serviceErr *resilience.ServiceError
		if errors.As(err, &serviceErr) {
			serviceErr.Detail = "Test failed: " + serviceErr.Detail
		}
		s.errorHandler.Abort(c, err, "running research test")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":                 "success",
		"message":                "Research system is working!",
		"test_query":             TestQuery,
		"charts_generated":       len(response.Charts),
		"infographics_generated": len(response.Infographics),
	})
}

// research runs the pipeline and renders the response
func (s *Server) research(ctx context.Context, query string) (*ResearchResponse, error) {
	s.logger.Info("New research request", zap.String("query", query))

	result, err := s.researcher.Run(ctx, query)
	if err != nil {
		var unrecoverable *research.UnrecoverableError
		if errors.As(err, &unrecoverable) {
			return nil, resilience.NewInternalError("Internal server error", err)
		}
		return nil, err
	}

	response := BuildResponse(result)
	s.logger.Info("Research complete",
		zap.String("query", query),
		zap.Int("charts", len(response.Charts)),
		zap.Int("infographics", len(response.Infographics)),
		zap.Int("sources", len(response.Sources)),
	)
	return &response, nil
}
