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
	"fmt"
	"strings"
)

const (
	// DefaultPerProviderCap is how many records each provider may contribute
	DefaultPerProviderCap = 5
	// DefaultDigestCap is how many corpus records feed the extraction digest
	DefaultDigestCap = 10
)

// Source is the attribution entry returned to callers
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Corpus is the merged, ordered record set with a parallel source list.
// Records[i] and Sources[i] always describe the same hit.
type Corpus struct {
	Records []Record `json:"results"`
	Sources []Source `json:"sources"`
}

// Merge combines settled provider results in the order given, capping each
// provider independently. Arrival order never matters.
func Merge(results []Result, perProviderCap int) Corpus {
	if perProviderCap <= 0 {
		perProviderCap = DefaultPerProviderCap
	}

	corpus := Corpus{Records: []Record{}, Sources: []Source{}}
	for _, result := range results {
		items := result.Items
		if len(items) > perProviderCap {
			items = items[:perProviderCap]
		}
		for _, item := range items {
			corpus.Records = append(corpus.Records, item)
			corpus.Sources = append(corpus.Sources, Source{Title: item.Title, URL: item.URL})
		}
	}
	return corpus
}

// Digest renders the first limit records as "Source i: title - snippet"
// lines separated by blank lines.
func (c Corpus) Digest(limit int) string {
	if limit <= 0 {
		limit = DefaultDigestCap
	}
	records := c.Records
	if len(records) > limit {
		records = records[:limit]
	}

	lines := make([]string, 0, len(records))
	for i, r := range records {
		lines = append(lines, fmt.Sprintf("Source %d: %s - %s", i+1, r.Title, r.Snippet))
	}
	return strings.Join(lines, "\n\n")
}

// Len returns the number of records in the corpus
func (c Corpus) Len() int {
	return len(c.Records)
}
