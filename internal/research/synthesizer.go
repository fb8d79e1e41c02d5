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

	"go.uber.org/zap"

	"github.com/your-org/research-agent/internal/reasoning"
)

// DefaultInsightTemperature is used when none is configured
const DefaultInsightTemperature = 0.5

// Synthesizer writes the narrative summary of a research run
type Synthesizer struct {
	completer   reasoning.Completer
	temperature float64
	logger      *zap.Logger
}

// NewSynthesizer creates an insight synthesizer
func NewSynthesizer(completer reasoning.Completer, temperature float64, logger *zap.Logger) *Synthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if temperature <= 0 {
		temperature = DefaultInsightTemperature
	}
	return &Synthesizer{completer: completer, temperature: temperature, logger: logger}
}

// Synthesize returns insights for the extracted data. Missing parts of the
// generated narrative are filled from DefaultInsights.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, data StructuredData) Insights {
	defaults := DefaultInsights(query)

	raw, err := s.completer.Complete(ctx, reasoning.Request{
		Prompt:      BuildInsightsPrompt(query, data),
		Temperature: s.temperature,
	})
	if err != nil {
		s.logger.Warn("Insight generation failed, using default insights",
			zap.String("query", query),
			zap.String("error_class", reasoning.ErrorClass(err)),
			zap.Error(err),
		)
		return defaults
	}

	fields, ok := objectFields(raw)
	if !ok {
		s.logger.Warn("Insights are not an object, using default insights", zap.String("query", query))
		return defaults
	}

	insights := defaults
	if summary, ok := decodeString(fields["summary"]); ok && summary != "" {
		insights.Summary = summary
	}
	if keyInsights, ok := decodeStrings(fields["key_insights"]); ok && len(keyInsights) > 0 {
		insights.KeyInsights = keyInsights
	}
	if recommendations, ok := decodeStrings(fields["recommendations"]); ok && len(recommendations) > 0 {
		insights.Recommendations = recommendations
	}

	s.logger.Info("Insights generated",
		zap.String("query", query),
		zap.Int("key_insights", len(insights.KeyInsights)),
	)
	return insights
}
