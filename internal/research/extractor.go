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

	"go.uber.org/zap"

	"github.com/your-org/research-agent/internal/reasoning"
	"github.com/your-org/research-agent/internal/search"
)

// DefaultExtractionTemperature is used when none is configured
const DefaultExtractionTemperature = 0.3

// Extractor derives chart-ready datasets from a search corpus
type Extractor struct {
	completer   reasoning.Completer
	temperature float64
	digestCap   int
	logger      *zap.Logger
}

// NewExtractor creates a structured data extractor. digestCap bounds how
// many corpus records are shown to the model.
func NewExtractor(completer reasoning.Completer, temperature float64, digestCap int, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if temperature <= 0 {
		temperature = DefaultExtractionTemperature
	}
	if digestCap <= 0 {
		digestCap = search.DefaultDigestCap
	}
	return &Extractor{completer: completer, temperature: temperature, digestCap: digestCap, logger: logger}
}

// Extract returns the datasets for a query. When generation fails outright
// the sample dataset is returned; otherwise each dataset is decoded on its
// own and a missing or malformed one is simply empty.
func (e *Extractor) Extract(ctx context.Context, query string, corpus search.Corpus, analysis QueryAnalysis) StructuredData {
	raw, err := e.completer.Complete(ctx, reasoning.Request{
		Prompt:      BuildExtractionPrompt(query, corpus.Digest(e.digestCap), analysis.Visualizations),
		Temperature: e.temperature,
	})
	if err != nil {
		e.logger.Warn("Data extraction failed, using sample data",
			zap.String("query", query),
			zap.String("error_class", reasoning.ErrorClass(err)),
			zap.Error(err),
		)
		return SampleData()
	}

	fields, ok := objectFields(raw)
	if !ok {
		e.logger.Warn("Extracted data is not an object, using sample data", zap.String("query", query))
		return SampleData()
	}

	data := decodeStructuredData(fields)
	e.logger.Info("Structured data extracted",
		zap.String("query", query),
		zap.Int("trend_points", len(data.TrendData)),
		zap.Int("comparison_items", len(data.ComparisonData)),
		zap.Int("distribution_segments", len(data.DistributionData)),
		zap.Int("key_statistics", len(data.KeyStatistics)),
	)
	return data
}

// decodeStructuredData decodes each dataset independently
func decodeStructuredData(fields map[string]json.RawMessage) StructuredData {
	return StructuredData{
		TrendData:        decodeSeries(fields["trend_data"], coerceTrendPoint),
		ComparisonData:   decodeSeries(fields["comparison_data"], coerceComparisonItem),
		DistributionData: decodeSeries(fields["distribution_data"], coerceDistributionSegment),
		KeyStatistics:    decodeSeries(fields["key_statistics"], coerceKeyStatistic),
	}
}
