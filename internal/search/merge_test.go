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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeSourceCount(t *testing.T) {
	tests := []struct {
		name    string
		results []Result
		expect  int
	}{
		{
			name: "no provider succeeded",
			results: []Result{
				{Provider: SerperName, Items: []Record{}, Err: KindTimeout},
				{Provider: TavilyName, Items: []Record{}, Err: KindStatus},
			},
			expect: 0,
		},
		{
			name: "one provider succeeded",
			results: []Result{
				{Provider: SerperName, Items: makeRecords("serper", 3)},
				{Provider: TavilyName, Items: []Record{}, Err: KindTransport},
			},
			expect: 3,
		},
		{
			name: "both providers over cap",
			results: []Result{
				{Provider: SerperName, Items: makeRecords("serper", 10)},
				{Provider: TavilyName, Items: makeRecords("tavily", 7)},
			},
			expect: 10,
		},
		{
			name: "mixed sizes",
			results: []Result{
				{Provider: SerperName, Items: makeRecords("serper", 2)},
				{Provider: TavilyName, Items: makeRecords("tavily", 8)},
			},
			expect: 7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			corpus := Merge(tt.results, 5)
			assert.Len(t, corpus.Sources, tt.expect)
			assert.Len(t, corpus.Records, tt.expect)
			assert.NotNil(t, corpus.Sources)
		})
	}
}

func TestMergeOrderAndNormalization(t *testing.T) {
	corpus := Merge([]Result{
		{Provider: SerperName, Items: makeRecords("serper", 6)},
		{Provider: TavilyName, Items: makeRecords("tavily", 2)},
	}, 5)

	require.Len(t, corpus.Sources, 7)
	assert.Equal(t, Source{Title: "serper title 1", URL: "https://serper.example.com/1"}, corpus.Sources[0])
	assert.Equal(t, "serper title 5", corpus.Sources[4].Title)
	assert.Equal(t, "tavily title 1", corpus.Sources[5].Title)
	for i := range corpus.Records {
		assert.Equal(t, corpus.Records[i].URL, corpus.Sources[i].URL)
	}
}

func TestMergeDefaultCap(t *testing.T) {
	corpus := Merge([]Result{{Provider: SerperName, Items: makeRecords("serper", 9)}}, 0)
	assert.Equal(t, DefaultPerProviderCap, corpus.Len())
}

func TestDigest(t *testing.T) {
	corpus := Merge([]Result{
		{Provider: SerperName, Items: makeRecords("serper", 5)},
		{Provider: TavilyName, Items: makeRecords("tavily", 5)},
		{Provider: "extra", Items: makeRecords("extra", 5)},
	}, 5)
	require.Equal(t, 15, corpus.Len())

	digest := corpus.Digest(DefaultDigestCap)
	blocks := strings.Split(digest, "\n\n")

	require.Len(t, blocks, 10)
	assert.Equal(t, "Source 1: serper title 1 - serper snippet 1", blocks[0])
	assert.Equal(t, "Source 10: tavily title 5 - tavily snippet 5", blocks[9])
	assert.NotContains(t, digest, "extra")
}

func TestDigestEmptyCorpus(t *testing.T) {
	assert.Equal(t, "", Merge(nil, 5).Digest(10))
}
