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
	"strings"

	"go.uber.org/zap"

	"github.com/your-org/research-agent/internal/reasoning"
)

// DefaultAnalysisTemperature keeps classification close to deterministic
const DefaultAnalysisTemperature = 0.2

// chartAliases maps the short and long chart names onto the canonical kinds
var chartAliases = map[string]string{
	"line":          ChartLine,
	"bar":           ChartBar,
	"pie":           ChartPie,
	"scatter_plot":  ChartScatter,
	"scatter_chart": ChartScatter,
	"heatmap_chart": ChartHeatmap,
}

// Analyzer classifies research queries
type Analyzer struct {
	completer   reasoning.Completer
	temperature float64
	logger      *zap.Logger
}

// NewAnalyzer creates a query analyzer
func NewAnalyzer(completer reasoning.Completer, temperature float64, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	if temperature <= 0 {
		temperature = DefaultAnalysisTemperature
	}
	return &Analyzer{completer: completer, temperature: temperature, logger: logger}
}

// Analyze returns a fully populated analysis. Any generation failure yields
// DefaultAnalysis; individual out-of-range fields take the default's value.
func (a *Analyzer) Analyze(ctx context.Context, query string) QueryAnalysis {
	raw, err := a.completer.Complete(ctx, reasoning.Request{
		Prompt:      BuildAnalysisPrompt(query),
		Temperature: a.temperature,
	})
	if err != nil {
		a.logger.Warn("Query analysis failed, using default analysis",
			zap.String("query", query),
			zap.String("error_class", reasoning.ErrorClass(err)),
			zap.Error(err),
		)
		return DefaultAnalysis()
	}

	fields, ok := objectFields(raw)
	if !ok {
		a.logger.Warn("Query analysis is not an object, using default analysis", zap.String("query", query))
		return DefaultAnalysis()
	}

	analysis := normalizeAnalysis(fields)
	a.logger.Info("Query analyzed",
		zap.String("query", query),
		zap.String("intent", analysis.Intent),
		zap.String("primary_chart", analysis.Visualizations.Primary),
		zap.String("infographic_type", analysis.Visualizations.InfographicType),
	)
	return analysis
}

// normalizeAnalysis builds a valid analysis from loosely typed fields
func normalizeAnalysis(fields map[string]json.RawMessage) QueryAnalysis {
	defaults := DefaultAnalysis()
	analysis := defaults

	if intent, ok := decodeString(fields["intent"]); ok && validIntents[strings.ToLower(intent)] {
		analysis.Intent = strings.ToLower(intent)
	}

	if needed, ok := decodeStrings(fields["data_needed"]); ok && len(needed) > 0 {
		analysis.DataNeeded = needed
	}

	if metrics, ok := decodeStrings(fields["key_metrics"]); ok && len(metrics) > 0 {
		if len(metrics) > MaxKeyMetrics {
			metrics = metrics[:MaxKeyMetrics]
		}
		analysis.KeyMetrics = metrics
	}

	visualizations, ok := objectFields(fields["visualizations"])
	if !ok {
		return analysis
	}

	if primary, ok := decodeString(visualizations["primary"]); ok {
		if kind, valid := NormalizeChartKind(primary); valid {
			analysis.Visualizations.Primary = kind
		}
	}

	if secondary, ok := decodeStrings(visualizations["secondary"]); ok {
		kinds := make([]string, 0, len(secondary))
		for _, name := range secondary {
			if kind, valid := NormalizeChartKind(name); valid {
				kinds = append(kinds, kind)
			}
		}
		analysis.Visualizations.Secondary = kinds
	}

	if infographic, ok := decodeString(visualizations["infographic_type"]); ok {
		infographic = strings.ToLower(infographic)
		if validInfographics[infographic] {
			analysis.Visualizations.InfographicType = infographic
		}
	}

	return analysis
}

// NormalizeChartKind maps a chart name onto a canonical chart kind
func NormalizeChartKind(name string) (string, bool) {
	kind := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := chartAliases[kind]; ok {
		kind = alias
	}
	return kind, validCharts[kind]
}

// objectFields decodes a JSON object, or JSON text holding one, into fields
func objectFields(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	value, ok := decodeValue(raw)
	if !ok {
		return nil, false
	}
	if _, isObject := value.(map[string]interface{}); !isObject {
		return nil, false
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(encoded, &fields); err != nil {
		return nil, false
	}
	return fields, true
}
