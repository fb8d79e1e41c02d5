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

package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/your-org/research-agent/internal/research"
)

// Infographic kinds accepted by BuildInfographic
const (
	InfographicStatistics = "statistics"
	InfographicTimeline   = "timeline"
	InfographicComparison = "comparison"
	InfographicGeographic = "geographic"
)

// Infographic is a layout description consumed by the frontend
type Infographic struct {
	Type    string                  `json:"type"`
	Title   string                  `json:"title"`
	Layout  string                  `json:"layout"`
	Stats   []research.KeyStatistic `json:"stats,omitempty"`
	Events  []TimelineEvent         `json:"events,omitempty"`
	Items   []ComparisonEntry       `json:"items,omitempty"`
	Regions []Region                `json:"regions,omitempty"`
	Style   map[string]interface{}  `json:"style"`
}

// TimelineEvent is one milestone of a timeline infographic
type TimelineEvent struct {
	Date        string `json:"date"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ComparisonEntry is one side of a comparison infographic
type ComparisonEntry struct {
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
}

// Region is one area of a geographic infographic
type Region struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// placeholderStats fill a statistics card when no key statistics exist
func placeholderStats() []research.KeyStatistic {
	return []research.KeyStatistic{
		{Label: "Key Metric 1", Value: "100", Icon: "trending_up"},
		{Label: "Key Metric 2", Value: "50%", Icon: "percent"},
		{Label: "Key Metric 3", Value: "1,000", Icon: "users"},
	}
}

// BuildInfographic builds an infographic of the given kind. Unknown kinds
// render as statistics cards.
func BuildInfographic(kind string, data research.StructuredData, title string) Infographic {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case InfographicTimeline:
		return timelineInfographic(data, title)
	case InfographicComparison:
		return comparisonInfographic(data, title)
	case InfographicGeographic:
		return geographicInfographic(data, title)
	default:
		return statisticsInfographic(data, title)
	}
}

// HasData reports whether data can feed an infographic of the given kind
func HasData(kind string, data research.StructuredData) bool {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case InfographicTimeline:
		return len(data.TrendData) > 0
	case InfographicComparison, InfographicGeographic:
		return len(data.ComparisonData) > 0
	default:
		return len(data.KeyStatistics) > 0
	}
}

func statisticsInfographic(data research.StructuredData, title string) Infographic {
	stats := data.KeyStatistics
	if len(stats) == 0 {
		stats = placeholderStats()
	}
	return Infographic{
		Type:   InfographicStatistics,
		Title:  title,
		Layout: "grid",
		Stats:  stats,
		Style: map[string]interface{}{
			"background":    "gradient",
			"gradient_from": colorPrimary,
			"gradient_to":   colorSecondary,
			"text_color":    "white",
			"card_style":    "glassmorphism",
		},
	}
}

func timelineInfographic(data research.StructuredData, title string) Infographic {
	events := make([]TimelineEvent, 0, len(data.TrendData))
	for i, point := range data.TrendData {
		date := point.Year
		if date == "" {
			date = fmt.Sprintf("Event %d", i+1)
		}
		value := FormatNumber(point.Value)
		events = append(events, TimelineEvent{
			Date:        date,
			Title:       "Milestone: " + value,
			Description: "Value reached: " + value,
		})
	}
	return Infographic{
		Type:   InfographicTimeline,
		Title:  title,
		Layout: "vertical",
		Events: events,
		Style: map[string]interface{}{
			"line_color":   colorPrimary,
			"marker_color": colorSecondary,
			"text_color":   colorTitle,
		},
	}
}

// comparisonInfographic adds each item's share of the total, to one decimal
func comparisonInfographic(data research.StructuredData, title string) Infographic {
	total := 0.0
	for _, item := range data.ComparisonData {
		total += item.Value
	}

	items := make([]ComparisonEntry, 0, len(data.ComparisonData))
	for i, item := range data.ComparisonData {
		name := item.Category
		if name == "" {
			name = fmt.Sprintf("Item %d", i+1)
		}
		percentage := 0.0
		if total != 0 {
			percentage = math.Round(item.Value/total*1000) / 10
		}
		items = append(items, ComparisonEntry{Name: name, Value: item.Value, Percentage: percentage})
	}
	return Infographic{
		Type:   InfographicComparison,
		Title:  title,
		Layout: "side_by_side",
		Items:  items,
		Style: map[string]interface{}{
			"primary_color":   colorPrimary,
			"secondary_color": colorSecondary,
			"text_color":      colorTitle,
		},
	}
}

func geographicInfographic(data research.StructuredData, title string) Infographic {
	regions := make([]Region, 0, len(data.ComparisonData))
	for i, item := range data.ComparisonData {
		name := item.Category
		if name == "" {
			name = fmt.Sprintf("Region %d", i+1)
		}
		regions = append(regions, Region{Name: name, Value: item.Value})
	}
	return Infographic{
		Type:    InfographicGeographic,
		Title:   title,
		Layout:  "map",
		Regions: regions,
		Style: map[string]interface{}{
			"map_type":    "world",
			"color_scale": []string{"#E0F2FE", colorPrimary},
			"text_color":  colorTitle,
		},
	}
}

// TrendRecords converts trend points into chart records
func TrendRecords(points []research.TrendPoint) []Record {
	records := make([]Record, len(points))
	for i, p := range points {
		records[i] = Record{"year": p.Year, "value": p.Value}
	}
	return records
}

// ComparisonRecords converts comparison items into chart records
func ComparisonRecords(items []research.ComparisonItem) []Record {
	records := make([]Record, len(items))
	for i, item := range items {
		records[i] = Record{"category": item.Category, "value": item.Value}
	}
	return records
}

// DistributionRecords converts distribution segments into chart records
func DistributionRecords(segments []research.DistributionSegment) []Record {
	records := make([]Record, len(segments))
	for i, s := range segments {
		record := Record{"name": s.Name, "value": s.Value}
		if s.Color != "" {
			record["color"] = s.Color
		}
		records[i] = record
	}
	return records
}
