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
	"encoding/json"
	"fmt"
	"strings"
)

const analysisSchema = `{
    "intent": "trend_analysis|comparison|distribution|statistics",
    "data_needed": ["specific data points to look for"],
    "visualizations": {
        "primary": "line_chart|bar_chart|pie_chart|scatter|heatmap",
        "secondary": ["additional chart types"],
        "infographic_type": "statistics|timeline|comparison|geographic"
    },
    "key_metrics": ["metric1", "metric2", "metric3"]
}`

const extractionSchema = `{
    "trend_data": [
        {"year": "2020", "value": 100},
        {"year": "2021", "value": 150}
    ],
    "comparison_data": [
        {"category": "Item1", "value": 50},
        {"category": "Item2", "value": 75}
    ],
    "distribution_data": [
        {"name": "Segment1", "value": 35, "color": "#3B82F6"},
        {"name": "Segment2", "value": 45, "color": "#8B5CF6"}
    ],
    "key_statistics": [
        {"label": "Total Value", "value": "$127B", "icon": "dollar"},
        {"label": "Growth Rate", "value": "+43%", "icon": "trending_up"},
        {"label": "Market Size", "value": "2,847", "icon": "users"}
    ]
}`

const insightsSchema = `{
    "summary": "2-3 paragraph summary of key findings",
    "key_insights": [
        "Insight 1 with specific numbers",
        "Insight 2 with trends",
        "Insight 3 with implications"
    ],
    "recommendations": ["Recommendation 1", "Recommendation 2"]
}`

// BuildAnalysisPrompt asks for the intent and visualization classification
func BuildAnalysisPrompt(query string) string {
	var prompt strings.Builder

	prompt.WriteString("Analyze this research query and determine:\n")
	prompt.WriteString("1. What type of data is needed (trends, comparisons, distributions, etc.)\n")
	prompt.WriteString("2. What visualizations would be most appropriate\n")
	prompt.WriteString("3. What specific data points to extract\n\n")
	prompt.WriteString(fmt.Sprintf("Query: %s\n\n", query))
	prompt.WriteString("Respond in JSON format:\n")
	prompt.WriteString(analysisSchema)
	prompt.WriteString("\n")

	return prompt.String()
}

// BuildExtractionPrompt asks for chart-ready datasets derived from the digest
func BuildExtractionPrompt(query, digest string, visualizations Visualizations) string {
	var prompt strings.Builder

	prompt.WriteString("Based on this research query and search results, extract structured data for visualizations.\n\n")
	prompt.WriteString(fmt.Sprintf("Query: %s\n\n", query))
	prompt.WriteString("Search Results:\n")
	if digest == "" {
		prompt.WriteString("(no search results available)")
	} else {
		prompt.WriteString(digest)
	}
	prompt.WriteString("\n\n")

	wanted, _ := json.Marshal(visualizations)
	prompt.WriteString(fmt.Sprintf("Extract data for these visualization types: %s\n\n", wanted))
	prompt.WriteString("Provide structured data in JSON format:\n")
	prompt.WriteString(extractionSchema)
	prompt.WriteString("\n\n")
	prompt.WriteString("IMPORTANT: Use real numbers from the search results. ")
	prompt.WriteString("If exact numbers aren't available, provide reasonable estimates based on the context.\n")

	return prompt.String()
}

// BuildInsightsPrompt asks for a narrative over the extracted datasets
func BuildInsightsPrompt(query string, data StructuredData) string {
	var prompt strings.Builder

	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		encoded = []byte("{}")
	}

	prompt.WriteString("Based on this research query and extracted data, provide insightful analysis.\n\n")
	prompt.WriteString(fmt.Sprintf("Query: %s\n\n", query))
	prompt.WriteString(fmt.Sprintf("Data: %s\n\n", encoded))
	prompt.WriteString("Provide analysis in JSON format:\n")
	prompt.WriteString(insightsSchema)
	prompt.WriteString("\n")

	return prompt.String()
}
