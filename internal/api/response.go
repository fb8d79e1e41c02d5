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

package api

import (
	"fmt"

	"github.com/your-org/research-agent/internal/render"
	"github.com/your-org/research-agent/internal/research"
	"github.com/your-org/research-agent/internal/search"
)

// ResearchRequest is the body of POST /research
type ResearchRequest struct {
	Query string `json:"query"`
}

// ChartPayload is one rendered chart
type ChartPayload struct {
	Type  string        `json:"type"`
	Title string        `json:"title"`
	Data  render.Figure `json:"data"`
}

// ResearchResponse is the body returned by POST /research
type ResearchResponse struct {
	Query        string                 `json:"query"`
	Status       string                 `json:"status"`
	Charts       []ChartPayload         `json:"charts"`
	Infographics []render.Infographic   `json:"infographics"`
	Insights     research.Insights      `json:"insights"`
	Sources      []search.Source        `json:"sources"`
	Analysis     research.QueryAnalysis `json:"query_analysis"`
}

var infographicTitles = map[string]string{
	render.InfographicTimeline:   "Timeline",
	render.InfographicComparison: "Comparison Overview",
	render.InfographicGeographic: "Regional Breakdown",
}

// BuildResponse renders charts and infographics for a research result
func BuildResponse(result *research.Result) ResearchResponse {
	query := result.Query
	data := result.StructuredData

	charts := []ChartPayload{}
	if len(data.TrendData) > 0 {
		title := fmt.Sprintf("%s - Trend Over Time", query)
		charts = append(charts, ChartPayload{
			Type:  render.KindLine,
			Title: title,
			Data:  render.Chart(render.KindLine, render.TrendRecords(data.TrendData), title),
		})
	}
	if len(data.ComparisonData) > 0 {
		title := fmt.Sprintf("%s - Comparison", query)
		charts = append(charts, ChartPayload{
			Type:  render.KindBar,
			Title: title,
			Data:  render.Chart(render.KindBar, render.ComparisonRecords(data.ComparisonData), title),
		})
	}
	if len(data.DistributionData) > 0 {
		title := fmt.Sprintf("%s - Distribution", query)
		charts = append(charts, ChartPayload{
			Type:  render.KindPie,
			Title: title,
			Data:  render.Chart(render.KindPie, render.DistributionRecords(data.DistributionData), title),
		})
	}

	infographics := []render.Infographic{}
	if len(data.KeyStatistics) > 0 {
		infographics = append(infographics, render.BuildInfographic(
			render.InfographicStatistics, data, fmt.Sprintf("%s - Key Insights", query)))
	}
	kind := result.QueryAnalysis.Visualizations.InfographicType
	if kind != render.InfographicStatistics && render.HasData(kind, data) {
		if suffix, ok := infographicTitles[kind]; ok {
			infographics = append(infographics, render.BuildInfographic(kind, data, fmt.Sprintf("%s - %s", query, suffix)))
		}
	}

	sources := result.Sources
	if sources == nil {
		sources = []search.Source{}
	}

	return ResearchResponse{
		Query:        query,
		Status:       result.Status,
		Charts:       charts,
		Infographics: infographics,
		Insights:     result.Insights,
		Sources:      sources,
		Analysis:     result.QueryAnalysis,
	}
}
