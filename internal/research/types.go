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

// Package research runs the research pipeline: it classifies a query, gathers
// web search results, extracts chart-ready datasets and writes a narrative.
package research

import (
	"github.com/your-org/research-agent/internal/search"
)

// StatusCompleted is the only status a finished pipeline reports
const StatusCompleted = "completed"

// Intent values
const (
	IntentTrendAnalysis   = "trend_analysis"
	IntentComparison      = "comparison"
	IntentDistribution    = "distribution"
	IntentStatistics      = "statistics"
	IntentGeneralResearch = "general_research"
)

// Chart kinds
const (
	ChartLine    = "line_chart"
	ChartBar     = "bar_chart"
	ChartPie     = "pie_chart"
	ChartScatter = "scatter"
	ChartHeatmap = "heatmap"
)

// Infographic kinds
const (
	InfographicStatistics = "statistics"
	InfographicTimeline   = "timeline"
	InfographicComparison = "comparison"
	InfographicGeographic = "geographic"
)

// MaxKeyMetrics bounds QueryAnalysis.KeyMetrics
const MaxKeyMetrics = 5

var (
	validIntents = map[string]bool{
		IntentTrendAnalysis:   true,
		IntentComparison:      true,
		IntentDistribution:    true,
		IntentStatistics:      true,
		IntentGeneralResearch: true,
	}
	validCharts = map[string]bool{
		ChartLine:    true,
		ChartBar:     true,
		ChartPie:     true,
		ChartScatter: true,
		ChartHeatmap: true,
	}
	validInfographics = map[string]bool{
		InfographicStatistics: true,
		InfographicTimeline:   true,
		InfographicComparison: true,
		InfographicGeographic: true,
	}
)

// IsValidChartKind reports whether kind is one of the chart kinds
func IsValidChartKind(kind string) bool {
	return validCharts[kind]
}

// Visualizations lists the chart shapes wanted for a query
type Visualizations struct {
	Primary         string   `json:"primary"`
	Secondary       []string `json:"secondary"`
	InfographicType string   `json:"infographic_type"`
}

// QueryAnalysis is the intent classification of a query
type QueryAnalysis struct {
	Intent         string         `json:"intent"`
	DataNeeded     []string       `json:"data_needed"`
	Visualizations Visualizations `json:"visualizations"`
	KeyMetrics     []string       `json:"key_metrics"`
}

// TrendPoint is one point of a time series. Year is a display label.
type TrendPoint struct {
	Year  string  `json:"year"`
	Value float64 `json:"value"`
}

// ComparisonItem is one category of a comparison
type ComparisonItem struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
}

// DistributionSegment is one slice of a distribution
type DistributionSegment struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Color string  `json:"color,omitempty"`
}

// KeyStatistic is a headline figure. Value is free-form display text.
type KeyStatistic struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Icon  string `json:"icon,omitempty"`
}

// StructuredData holds the chart-ready datasets. Every slice is non-nil.
type StructuredData struct {
	TrendData        []TrendPoint          `json:"trend_data"`
	ComparisonData   []ComparisonItem      `json:"comparison_data"`
	DistributionData []DistributionSegment `json:"distribution_data"`
	KeyStatistics    []KeyStatistic        `json:"key_statistics"`
}

// IsEmpty reports whether no dataset has any entry
func (d StructuredData) IsEmpty() bool {
	return len(d.TrendData) == 0 && len(d.ComparisonData) == 0 &&
		len(d.DistributionData) == 0 && len(d.KeyStatistics) == 0
}

// Insights is the narrative part of a result
type Insights struct {
	Summary         string   `json:"summary"`
	KeyInsights     []string `json:"key_insights"`
	Recommendations []string `json:"recommendations"`
}

// Result is the complete outcome of a research run
type Result struct {
	Query          string          `json:"query"`
	QueryAnalysis  QueryAnalysis   `json:"query_analysis"`
	StructuredData StructuredData  `json:"structured_data"`
	Insights       Insights        `json:"insights"`
	Sources        []search.Source `json:"sources"`
	Status         string          `json:"status"`
}
