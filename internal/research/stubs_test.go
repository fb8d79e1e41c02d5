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

package research

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/your-org/research-agent/internal/reasoning"
	"github.com/your-org/research-agent/internal/search"
)

// promptKind tells the stub which stage is calling
type promptKind int

const (
	analysisPrompt promptKind = iota
	extractionPrompt
	insightsPrompt
)

func classifyPrompt(prompt string) promptKind {
	switch {
	case strings.HasPrefix(prompt, "Analyze this research query"):
		return analysisPrompt
	case strings.Contains(prompt, "extract structured data"):
		return extractionPrompt
	default:
		return insightsPrompt
	}
}

// stubReply produces a completion for a prompt
type stubReply func(prompt string) (json.RawMessage, error)

func replyJSON(body string) stubReply {
	return func(string) (json.RawMessage, error) {
		return json.RawMessage(body), nil
	}
}

func replyError(kind reasoning.ErrorKind) stubReply {
	return func(string) (json.RawMessage, error) {
		return nil, &reasoning.GenerationError{Kind: kind, Err: errors.New("stubbed failure")}
	}
}

func replyPanic(message string) stubReply {
	return func(string) (json.RawMessage, error) {
		panic(message)
	}
}

// stubCompleter answers each stage with a scripted reply and records prompts
type stubCompleter struct {
	mu       sync.Mutex
	replies  map[promptKind]stubReply
	requests []reasoning.Request
}

func newStubCompleter(analysis, extraction, insights stubReply) *stubCompleter {
	return &stubCompleter{replies: map[promptKind]stubReply{
		analysisPrompt:   analysis,
		extractionPrompt: extraction,
		insightsPrompt:   insights,
	}}
}

func failingCompleter() *stubCompleter {
	return newStubCompleter(
		replyError(reasoning.KindTransport),
		replyError(reasoning.KindTransport),
		replyError(reasoning.KindTransport),
	)
}

func (s *stubCompleter) Complete(ctx context.Context, req reasoning.Request) (json.RawMessage, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	reply := s.replies[classifyPrompt(req.Prompt)]
	s.mu.Unlock()
	return reply(req.Prompt)
}

func (s *stubCompleter) promptFor(kind promptKind) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, req := range s.requests {
		if classifyPrompt(req.Prompt) == kind {
			return req.Prompt
		}
	}
	return ""
}

// mockCompleter is a testify mock of reasoning.Completer
type mockCompleter struct {
	mock.Mock
}

func (m *mockCompleter) Complete(ctx context.Context, req reasoning.Request) (json.RawMessage, error) {
	args := m.Called(ctx, req)
	raw, _ := args.Get(0).(json.RawMessage)
	return raw, args.Error(1)
}

// stubProvider returns fixed records or a fixed error
type stubProvider struct {
	name    string
	records []search.Record
	err     error
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Search(ctx context.Context, query string) ([]search.Record, error) {
	if p.err != nil {
		return nil, p.err
	}
	out := make([]search.Record, len(p.records))
	copy(out, p.records)
	return out, nil
}

func failingProvider(name string) *stubProvider {
	return &stubProvider{name: name, err: &search.ProviderError{Provider: name, Kind: search.KindTimeout, Err: context.DeadlineExceeded}}
}
