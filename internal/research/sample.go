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

// SampleData returns the illustrative dataset used when extraction fails
// completely. Every call returns a fresh value.
func SampleData() StructuredData {
	return StructuredData{
		TrendData: []TrendPoint{
			{Year: "2020", Value: 25},
			{Year: "2021", Value: 42},
			{Year: "2022", Value: 68},
			{Year: "2023", Value: 95},
			{Year: "2024", Value: 127},
		},
		ComparisonData: []ComparisonItem{
			{Category: "Category A", Value: 45},
			{Category: "Category B", Value: 28},
			{Category: "Category C", Value: 18},
			{Category: "Category D", Value: 15},
		},
		DistributionData: []DistributionSegment{
			{Name: "Segment 1", Value: 35, Color: "#3B82F6"},
			{Name: "Segment 2", Value: 28, Color: "#8B5CF6"},
			{Name: "Segment 3", Value: 22, Color: "#10B981"},
			{Name: "Segment 4", Value: 15, Color: "#F59E0B"},
		},
		KeyStatistics: []KeyStatistic{
			{Label: "Total Value", Value: "$127B", Icon: "dollar"},
			{Label: "Growth Rate", Value: "+43%", Icon: "trending_up"},
			{Label: "Market Size", Value: "2,847", Icon: "users"},
		},
	}
}

// DefaultAnalysis is substituted when the query cannot be classified
func DefaultAnalysis() QueryAnalysis {
	return QueryAnalysis{
		Intent:     IntentGeneralResearch,
		DataNeeded: []string{"statistics", "trends", "key facts"},
		Visualizations: Visualizations{
			Primary:         ChartBar,
			Secondary:       []string{ChartLine},
			InfographicType: InfographicStatistics,
		},
		KeyMetrics: []string{"key statistics"},
	}
}

// DefaultInsights is substituted when no narrative can be generated
func DefaultInsights(query string) Insights {
	return Insights{
		Summary:         "Analysis of " + query + " based on available research data.",
		KeyInsights:     []string{"Data gathered from multiple sources", "Analysis in progress"},
		Recommendations: []string{"Further research recommended"},
	}
}
