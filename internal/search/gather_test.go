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
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// stubProvider is a scripted Provider for fan-out tests
type stubProvider struct {
	name  string
	delay time.Duration
	items []Record
	err   error
	panic bool
	calls int32
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Search(ctx context.Context, query string) ([]Record, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.panic {
		panic("provider exploded")
	}
	return s.items, s.err
}

func makeRecords(prefix string, n int) []Record {
	records := make([]Record, n)
	for i := range records {
		records[i] = Record{
			Title:   fmt.Sprintf("%s title %d", prefix, i+1),
			URL:     fmt.Sprintf("https://%s.example.com/%d", prefix, i+1),
			Snippet: fmt.Sprintf("%s snippet %d", prefix, i+1),
		}
	}
	return records
}

func TestGatherPreservesProviderOrder(t *testing.T) {
	slow := &stubProvider{name: SerperName, delay: 40 * time.Millisecond, items: makeRecords("serper", 2)}
	fast := &stubProvider{name: TavilyName, items: makeRecords("tavily", 3)}

	results := Gather(context.Background(), "q", []Provider{slow, fast}, zaptest.NewLogger(t))

	require.Len(t, results, 2)
	assert.Equal(t, SerperName, results[0].Provider)
	assert.Equal(t, TavilyName, results[1].Provider)
	assert.Len(t, results[0].Items, 2)
	assert.Len(t, results[1].Items, 3)
	assert.EqualValues(t, 1, atomic.LoadInt32(&slow.calls))
	assert.EqualValues(t, 1, atomic.LoadInt32(&fast.calls))
}

func TestGatherIsolatesFailures(t *testing.T) {
	failing := &stubProvider{name: SerperName, err: &ProviderError{Provider: SerperName, Kind: KindStatus, StatusCode: 500}}
	panicking := &stubProvider{name: "broken", panic: true}
	healthy := &stubProvider{name: TavilyName, delay: 20 * time.Millisecond, items: makeRecords("tavily", 1)}

	results := Gather(context.Background(), "q", []Provider{failing, panicking, healthy}, zaptest.NewLogger(t))

	require.Len(t, results, 3)
	assert.Equal(t, KindStatus, results[0].Err)
	assert.NotNil(t, results[0].Items)
	assert.Empty(t, results[0].Items)
	assert.Equal(t, KindTransport, results[1].Err)
	assert.Empty(t, results[1].Items)
	assert.Equal(t, KindNone, results[2].Err)
	assert.Len(t, results[2].Items, 1)
}

func TestGatherRunsConcurrently(t *testing.T) {
	a := &stubProvider{name: "a", delay: 100 * time.Millisecond}
	b := &stubProvider{name: "b", delay: 100 * time.Millisecond}

	start := time.Now()
	results := Gather(context.Background(), "q", []Provider{a, b}, nil)

	assert.Less(t, time.Since(start), 190*time.Millisecond)
	for _, r := range results {
		assert.NotNil(t, r.Items)
	}
}

func TestGatherNoProviders(t *testing.T) {
	assert.Empty(t, Gather(context.Background(), "q", nil, nil))
}
