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

package search

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/your-org/research-agent/internal/config"
)

const (
	// SerperName identifies the Serper provider in results and logs
	SerperName = "serper"

	defaultSerperEndpoint = "https://google.serper.dev/search"
	defaultSerperTimeout  = 10 * time.Second
	defaultMaxResults     = 10
)

// Serper queries the Google Search API at serper.dev
type Serper struct {
	apiKey     string
	endpoint   string
	maxResults int
	timeout    time.Duration
	client     *http.Client
	logger     *zap.Logger
}

type serperRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num"`
}

type serperResponse struct {
	Organic []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"organic"`
}

// NewSerper creates a Serper provider
func NewSerper(cfg config.ProviderConfig, maxResults int, logger *zap.Logger) *Serper {
	if logger == nil {
		logger = zap.NewNop()
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultSerperEndpoint
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultSerperTimeout
	}
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	return &Serper{
		apiKey:     cfg.APIKey,
		endpoint:   endpoint,
		maxResults: maxResults,
		timeout:    timeout,
		client:     &http.Client{},
		logger:     logger.With(zap.String("provider", SerperName)),
	}
}

// Name returns the provider name
func (s *Serper) Name() string {
	return SerperName
}

// Search runs one query against Serper
func (s *Serper) Search(ctx context.Context, query string) ([]Record, error) {
	if strings.TrimSpace(s.apiKey) == "" {
		return nil, &ProviderError{Provider: SerperName, Kind: KindCredentials, Err: errors.New("API key is missing")}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var response serperResponse
	err := postJSON(ctx, s.client, SerperName, s.endpoint,
		map[string]string{"X-API-KEY": s.apiKey},
		serperRequest{Q: query, Num: s.maxResults},
		&response,
	)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(response.Organic))
	for _, r := range response.Organic {
		records = append(records, Record{Title: r.Title, URL: r.Link, Snippet: r.Snippet})
	}

	s.logger.Debug("Serper search completed", zap.Int("results", len(records)))
	return records, nil
}
