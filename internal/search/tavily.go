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
	// TavilyName identifies the Tavily provider in results and logs
	TavilyName = "tavily"

	defaultTavilyEndpoint = "https://api.tavily.com/search"
	defaultTavilyTimeout  = 15 * time.Second
	defaultTavilyDepth    = "advanced"
)

// Tavily queries the Tavily research search API
type Tavily struct {
	apiKey     string
	endpoint   string
	depth      string
	maxResults int
	timeout    time.Duration
	client     *http.Client
	logger     *zap.Logger
}

type tavilyRequest struct {
	APIKey      string `json:"api_key"`
	Query       string `json:"query"`
	SearchDepth string `json:"search_depth"`
	MaxResults  int    `json:"max_results"`
}

type tavilyResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// NewTavily creates a Tavily provider
func NewTavily(cfg config.ProviderConfig, maxResults int, logger *zap.Logger) *Tavily {
	if logger == nil {
		logger = zap.NewNop()
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultTavilyEndpoint
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTavilyTimeout
	}
	depth := cfg.Depth
	if depth == "" {
		depth = defaultTavilyDepth
	}
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	return &Tavily{
		apiKey:     cfg.APIKey,
		endpoint:   endpoint,
		depth:      depth,
		maxResults: maxResults,
		timeout:    timeout,
		client:     &http.Client{},
		logger:     logger.With(zap.String("provider", TavilyName)),
	}
}

// Name returns the provider name
func (t *Tavily) Name() string {
	return TavilyName
}

// Search runs one query against Tavily
func (t *Tavily) Search(ctx context.Context, query string) ([]Record, error) {
	if strings.TrimSpace(t.apiKey) == "" {
		return nil, &ProviderError{Provider: TavilyName, Kind: KindCredentials, Err: errors.New("API key is missing")}
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	var response tavilyResponse
	err := postJSON(ctx, t.client, TavilyName, t.endpoint, nil,
		tavilyRequest{
			APIKey:      t.apiKey,
			Query:       query,
			SearchDepth: t.depth,
			MaxResults:  t.maxResults,
		},
		&response,
	)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(response.Results))
	for _, r := range response.Results {
		records = append(records, Record{Title: r.Title, URL: r.URL, Snippet: r.Content})
	}

	t.logger.Debug("Tavily search completed", zap.Int("results", len(records)))
	return records, nil
}
