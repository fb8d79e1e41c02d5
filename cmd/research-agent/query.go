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
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/your-org/research-agent/internal/api"
	"github.com/your-org/research-agent/internal/research"
)

// QueryTimeout bounds a single command line research run
const QueryTimeout = 3 * time.Minute

var queryCmd = &cobra.Command{
	Use:   "query <question>",
	Short: "Run one research query and print the response as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, _, err := initializeLogger(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer func() { _ = logger.Sync() }()

		ctx, cancel := context.WithTimeout(cmd.Context(), QueryTimeout)
		defer cancel()

		pipeline := research.NewPipelineFromConfig(cfg, logger)
		return runQuery(ctx, pipeline, strings.Join(args, " "), cmd.OutOrStdout(), logger)
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
}

// runQuery researches query and writes the rendered response to w
func runQuery(ctx context.Context, researcher api.Researcher, query string, w io.Writer, logger *zap.Logger) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return fmt.Errorf("query cannot be empty")
	}

	result, err := researcher.Run(ctx, query)
	if err != nil {
		return fmt.Errorf("research failed: %w", err)
	}

	response := api.BuildResponse(result)
	logger.Debug("Research complete",
		zap.Int("charts", len(response.Charts)),
		zap.Int("sources", len(response.Sources)),
	)

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}
