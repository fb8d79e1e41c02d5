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

// Package search queries the web search providers concurrently and merges
// their heterogeneous responses into a single ordered corpus.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/your-org/research-agent/internal/config"
)

// ErrorKind classifies why a provider contributed no records
type ErrorKind string

const (
	// KindNone marks a successful call
	KindNone ErrorKind = ""
	// KindTimeout means the provider did not answer within its budget
	KindTimeout ErrorKind = "timeout"
	// KindTransport covers connection level failures
	KindTransport ErrorKind = "transport"
	// KindStatus means the provider answered with a non-2xx status
	KindStatus ErrorKind = "status"
	// KindDecode means the body could not be decoded
	KindDecode ErrorKind = "decode"
	// KindCredentials means no API key is configured for the provider
	KindCredentials ErrorKind = "credentials"
)

// maxErrorBody limits how much of a failed response body is kept for logs
const maxErrorBody = 512

// Record is a single normalized search hit
type Record struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Result is the settled outcome of one provider call. Items is never nil;
// a failed call has an empty list and a non-empty Err.
type Result struct {
	Provider string        `json:"provider"`
	Items    []Record      `json:"items"`
	Err      ErrorKind     `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Provider is a web search backend
type Provider interface {
	Name() string
	Search(ctx context.Context, query string) ([]Record, error)
}

// ProviderError describes a failed provider call
type ProviderError struct {
	Provider   string
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s search failed (%s, HTTP %d): %v", e.Provider, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s search failed (%s): %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// KindOf extracts the ErrorKind of a provider failure
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	return KindTransport
}

// NewProviders builds the configured providers in priority order
func NewProviders(cfg config.SearchConfig, logger *zap.Logger) []Provider {
	return []Provider{
		NewSerper(cfg.Serper, cfg.MaxResults, logger),
		NewTavily(cfg.Tavily, cfg.MaxResults, logger),
	}
}

// postJSON sends body to endpoint and decodes a 2xx response into out
func postJSON(ctx context.Context, client *http.Client, provider, endpoint string,
	headers map[string]string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return &ProviderError{Provider: provider, Kind: KindTransport, Err: fmt.Errorf("failed to encode request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return &ProviderError{Provider: provider, Kind: KindTransport, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		kind := KindTransport
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			kind = KindTimeout
		}
		return &ProviderError{Provider: provider, Kind: kind, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &ProviderError{
			Provider:   provider,
			Kind:       KindStatus,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected response: %s", bytes.TrimSpace(snippet)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		kind := KindDecode
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			kind = KindTimeout
		}
		return &ProviderError{Provider: provider, Kind: kind, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	return nil
}
