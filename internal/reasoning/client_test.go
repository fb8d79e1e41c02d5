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

package reasoning

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/your-org/research-agent/internal/config"
)

// createMockChatResponse wraps content in a chat completion envelope
func createMockChatResponse(content string) string {
	encoded, _ := json.Marshal(content)
	return fmt.Sprintf(`{
		"id": "chatcmpl-test",
		"object": "chat.completion",
		"created": 1234567890,
		"model": "llama-3.3-70b-versatile",
		"choices": [
			{
				"index": 0,
				"message": {"role": "assistant", "content": %s},
				"finish_reason": "stop"
			}
		],
		"usage": {"prompt_tokens": 100, "completion_tokens": 50, "total_tokens": 150}
	}`, encoded)
}

// mockChatServer serves a fixed status and body for chat completions
func mockChatServer(t testing.TB, status int, body string, captured *map[string]interface{}) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if captured != nil {
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, captured)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestClient(t *testing.T, endpoint string) *Client {
	return NewClient(config.ReasoningConfig{
		APIKey:    "gsk-test",
		Endpoint:  endpoint + "/v1",
		Model:     "llama-3.3-70b-versatile",
		MaxTokens: 512,
		Timeout:   2 * time.Second,
	}, zaptest.NewLogger(t))
}

func TestComplete_Success(t *testing.T) {
	var captured map[string]interface{}
	server := mockChatServer(t, http.StatusOK, createMockChatResponse(`{"intent": "comparison"}`), &captured)
	client := newTestClient(t, server.URL)

	raw, err := client.Complete(context.Background(), Request{Prompt: "classify", Temperature: 0.2})
	require.NoError(t, err)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "comparison", decoded["intent"])

	assert.Equal(t, "llama-3.3-70b-versatile", captured["model"])
	format, ok := captured["response_format"].(map[string]interface{})
	require.True(t, ok, "response_format must be sent")
	assert.Equal(t, "json_object", format["type"])
	assert.InDelta(t, 0.2, captured["temperature"], 0.0001)
}

func TestComplete_FencedJSON(t *testing.T) {
	server := mockChatServer(t, http.StatusOK, createMockChatResponse("```json\n{\"summary\": \"ok\"}\n```"), nil)
	client := newTestClient(t, server.URL)

	raw, err := client.Complete(context.Background(), Request{Prompt: "p"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"summary": "ok"}`, string(raw))
}

func TestComplete_Failures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		expectKind ErrorKind
		expectCode int
	}{
		{
			name:       "server error",
			status:     http.StatusInternalServerError,
			body:       `{"error": {"message": "boom", "type": "server_error"}}`,
			expectKind: KindStatus,
			expectCode: http.StatusInternalServerError,
		},
		{
			name:       "unauthorized",
			status:     http.StatusUnauthorized,
			body:       `{"error": {"message": "bad key", "type": "invalid_request_error"}}`,
			expectKind: KindStatus,
			expectCode: http.StatusUnauthorized,
		},
		{
			name:       "not json",
			status:     http.StatusOK,
			body:       createMockChatResponse("Here is your analysis: intent is comparison"),
			expectKind: KindParse,
		},
		{
			name:       "json array",
			status:     http.StatusOK,
			body:       createMockChatResponse(`[1, 2, 3]`),
			expectKind: KindParse,
		},
		{
			name:       "empty content",
			status:     http.StatusOK,
			body:       createMockChatResponse("   "),
			expectKind: KindEmpty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := mockChatServer(t, tt.status, tt.body, nil)
			client := newTestClient(t, server.URL)

			raw, err := client.Complete(context.Background(), Request{Prompt: "p"})
			assert.Nil(t, raw)
			require.Error(t, err)

			var genErr *GenerationError
			require.True(t, errors.As(err, &genErr), "expected GenerationError, got %T", err)
			assert.Equal(t, tt.expectKind, genErr.Kind)
			if tt.expectCode != 0 {
				assert.Equal(t, tt.expectCode, genErr.StatusCode)
			}
		})
	}
}

func TestComplete_Transport(t *testing.T) {
	server := mockChatServer(t, http.StatusOK, createMockChatResponse(`{}`), nil)
	endpoint := server.URL
	server.Close()

	client := newTestClient(t, endpoint)
	_, err := client.Complete(context.Background(), Request{Prompt: "p"})

	var genErr *GenerationError
	require.True(t, errors.As(err, &genErr))
	assert.Equal(t, KindTransport, genErr.Kind)
	assert.False(t, IsSchemaError(err))
}

func TestComplete_MissingKey(t *testing.T) {
	client := NewClient(config.ReasoningConfig{Endpoint: "http://127.0.0.1:1"}, nil)

	_, err := client.Complete(context.Background(), Request{Prompt: "p"})

	var genErr *GenerationError
	require.True(t, errors.As(err, &genErr))
	assert.Equal(t, KindTransport, genErr.Kind)
}

func TestParseObject(t *testing.T) {
	raw, err := ParseObject("```\n{\"a\": 1}\n```")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 1}`, string(raw))

	_, err = ParseObject(`{"a": `)
	assert.True(t, IsSchemaError(err))

	_, err = ParseObject(`"just a string"`)
	assert.True(t, IsSchemaError(err))
}

func TestErrorClass(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "parse", err: &GenerationError{Kind: KindParse}, expected: ClassSchemaCoercion},
		{name: "empty", err: &GenerationError{Kind: KindEmpty}, expected: ClassSchemaCoercion},
		{name: "status", err: &GenerationError{Kind: KindStatus, StatusCode: 500}, expected: ClassProviderTransport},
		{name: "transport", err: &GenerationError{Kind: KindTransport}, expected: ClassProviderTransport},
		{name: "wrapped parse", err: fmt.Errorf("analysis: %w", &GenerationError{Kind: KindParse}), expected: ClassSchemaCoercion},
		{name: "foreign", err: errors.New("boom"), expected: ClassProviderTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ErrorClass(tt.err))
		})
	}
}
