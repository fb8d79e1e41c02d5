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

// Package reasoning wraps an OpenAI-compatible chat completion endpoint and
// exposes it as a structured JSON generator.
package reasoning

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/your-org/research-agent/internal/config"
)

const (
	// DefaultTimeout bounds a single completion call
	DefaultTimeout = 30 * time.Second
	// DefaultMaxTokens is used when the configuration leaves it unset
	DefaultMaxTokens = 4096
)

// Request describes a single structured completion
type Request struct {
	Prompt      string
	Temperature float64
}

// Completer produces a JSON object for a prompt. Implementations return a
// *GenerationError on every failure.
type Completer interface {
	Complete(ctx context.Context, req Request) (json.RawMessage, error)
}

// Client is the go-openai backed Completer. It makes exactly one attempt per
// call; retries are left to the caller.
type Client struct {
	client    *openai.Client
	logger    *zap.Logger
	model     string
	maxTokens int
	timeout   time.Duration
	hasKey    bool
}

// NewClient creates a reasoning client from configuration. A missing API key
// is not an error here: calls fail with a transport GenerationError instead
// so the pipeline can fall back.
func NewClient(cfg config.ReasoningConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.Endpoint, "/")
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		client:    openai.NewClientWithConfig(clientConfig),
		logger:    logger,
		model:     cfg.Model,
		maxTokens: maxTokens,
		timeout:   timeout,
		hasKey:    strings.TrimSpace(cfg.APIKey) != "",
	}
}

// Complete sends the prompt in JSON-object mode and returns the parsed object
func (c *Client) Complete(ctx context.Context, req Request) (json.RawMessage, error) {
	if !c.hasKey {
		return nil, &GenerationError{Kind: KindTransport, Err: errors.New("reasoning API key is not configured")}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	c.logger.Debug("Creating chat completion",
		zap.String("model", c.model),
		zap.Float64("temperature", req.Temperature),
		zap.Int("prompt_length", len(req.Prompt)),
	)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: req.Prompt,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: float32(req.Temperature),
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		genErr := classifyAPIError(err)
		c.logger.Warn("Chat completion failed",
			zap.String("error_kind", string(genErr.Kind)),
			zap.Int("status_code", genErr.StatusCode),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return nil, genErr
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return nil, &GenerationError{Kind: KindEmpty, Err: errors.New("no completion content returned")}
	}

	object, err := ParseObject(resp.Choices[0].Message.Content)
	if err != nil {
		c.logger.Warn("Completion is not a JSON object",
			zap.String("content_preview", truncateText(resp.Choices[0].Message.Content, 200)),
			zap.Error(err),
		)
		return nil, err
	}

	c.logger.Debug("Chat completion successful",
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("duration", time.Since(start)),
	)

	return object, nil
}

// ParseObject extracts a JSON object from completion text. Markdown code
// fences around the object are tolerated.
func ParseObject(content string) (json.RawMessage, error) {
	text := strings.TrimSpace(content)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}

	raw := []byte(text)
	if !json.Valid(raw) {
		return nil, &GenerationError{Kind: KindParse, Err: errors.New("completion is not valid JSON")}
	}
	if !bytes.HasPrefix(raw, []byte("{")) {
		return nil, &GenerationError{Kind: KindParse, Err: errors.New("completion is not a JSON object")}
	}

	return json.RawMessage(raw), nil
}

// classifyAPIError maps go-openai errors onto generation error kinds
func classifyAPIError(err error) *GenerationError {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &GenerationError{
			Kind:       KindStatus,
			StatusCode: apiErr.HTTPStatusCode,
			Err:        fmt.Errorf("provider API error: %s", apiErr.Message),
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &GenerationError{
			Kind:       KindStatus,
			StatusCode: reqErr.HTTPStatusCode,
			Err:        err,
		}
	}

	return &GenerationError{Kind: KindTransport, Err: err}
}

// truncateText truncates text to a maximum length for logging
func truncateText(text string, maxLength int) string {
	if len(text) <= maxLength {
		return text
	}
	return text[:maxLength] + "..."
}
