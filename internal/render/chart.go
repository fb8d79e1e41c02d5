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

// Package render turns research datasets into Plotly figure descriptions and
// infographic layouts. All functions are pure.
package render

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Record is one loosely typed data point, keyed like the research datasets
type Record map[string]interface{}

// Figure is a Plotly-compatible figure description
type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

// Trace is a single Plotly trace
type Trace map[string]interface{}

// Layout is the Plotly layout object
type Layout map[string]interface{}

// Chart kinds accepted by Chart
const (
	KindLine    = "line"
	KindBar     = "bar"
	KindPie     = "pie"
	KindScatter = "scatter"
	KindHeatmap = "heatmap"
)

const (
	colorPrimary   = "#3B82F6"
	colorSecondary = "#8B5CF6"
	colorTitle     = "#1F2937"
	colorText      = "#374151"
	colorGrid      = "#E5E7EB"
	colorAxis      = "#9CA3AF"
	fontFamily     = "Inter, sans-serif"
)

// ColorScale is the categorical palette used when a point has no color
var ColorScale = []string{
	"#3B82F6", "#8B5CF6", "#10B981",
	"#F59E0B", "#EF4444", "#06B6D4",
	"#EC4899", "#14B8A6", "#F97316",
}

var kindAliases = map[string]string{
	"line":         KindLine,
	"line_chart":   KindLine,
	"bar":          KindBar,
	"bar_chart":    KindBar,
	"pie":          KindPie,
	"pie_chart":    KindPie,
	"scatter":      KindScatter,
	"scatter_plot": KindScatter,
	"heatmap":      KindHeatmap,
}

// NormalizeKind resolves chart aliases; unknown kinds render as bars
func NormalizeKind(kind string) string {
	if normalized, ok := kindAliases[strings.ToLower(strings.TrimSpace(kind))]; ok {
		return normalized
	}
	return KindBar
}

// Chart builds a figure of the given kind
func Chart(kind string, data []Record, title string) Figure {
	switch NormalizeKind(kind) {
	case KindLine:
		return lineChart(data, title)
	case KindPie:
		return pieChart(data, title)
	case KindScatter:
		return scatterPlot(data, title)
	case KindHeatmap:
		return heatmap(data, title)
	default:
		return barChart(data, title)
	}
}

func lineChart(data []Record, title string) Figure {
	x := make([]interface{}, len(data))
	y := make([]interface{}, len(data))
	for i, item := range data {
		x[i] = item.first(i, "year", "date", "x")
		y[i] = item.first(0, "value", "y")
	}

	layout := baseLayout(title)
	layout["xaxis"] = axis("", true)
	layout["yaxis"] = axis("Value", true)
	layout["hovermode"] = "x unified"

	return Figure{
		Data: []Trace{{
			"type":          "scatter",
			"x":             x,
			"y":             y,
			"mode":          "lines+markers",
			"name":          "Trend",
			"line":          map[string]interface{}{"color": colorPrimary, "width": 3},
			"marker":        map[string]interface{}{"size": 10, "color": colorPrimary},
			"hovertemplate": "<b>%{x}</b><br>Value: %{y}<extra></extra>",
		}},
		Layout: layout,
	}
}

func barChart(data []Record, title string) Figure {
	categories := make([]interface{}, len(data))
	values := make([]interface{}, len(data))
	for i, item := range data {
		categories[i] = item.first(fmt.Sprintf("Item %d", i+1), "category", "country", "name")
		values[i] = item.first(0, "value", "funding")
	}

	layout := baseLayout(title)
	layout["xaxis"] = axis("", false)
	layout["yaxis"] = axis("Value", true)
	layout["showlegend"] = false

	return Figure{
		Data: []Trace{{
			"type": "bar",
			"x":    categories,
			"y":    values,
			"marker": map[string]interface{}{
				"color":      values,
				"colorscale": [][]interface{}{{0, colorPrimary}, {1, colorSecondary}},
				"line":       map[string]interface{}{"width": 0},
			},
			"hovertemplate": "<b>%{x}</b><br>Value: %{y}<extra></extra>",
		}},
		Layout: layout,
	}
}

func pieChart(data []Record, title string) Figure {
	labels := make([]interface{}, len(data))
	values := make([]interface{}, len(data))
	colors := make([]interface{}, len(data))
	for i, item := range data {
		labels[i] = item.first(fmt.Sprintf("Segment %d", i+1), "name", "label")
		values[i] = item.first(0, "value")
		colors[i] = item.first(ColorScale[i%len(ColorScale)], "color")
	}

	layout := baseLayout(title)
	layout["showlegend"] = true
	layout["legend"] = map[string]interface{}{
		"orientation": "v",
		"yanchor":     "middle",
		"y":           0.5,
		"xanchor":     "left",
		"x":           1.05,
	}

	return Figure{
		Data: []Trace{{
			"type":   "pie",
			"labels": labels,
			"values": values,
			"marker": map[string]interface{}{
				"colors": colors,
				"line":   map[string]interface{}{"color": "white", "width": 2},
			},
			"hovertemplate": "<b>%{label}</b><br>Value: %{value}<br>Percentage: %{percent}<extra></extra>",
			"textposition":  "auto",
			"textinfo":      "label+percent",
		}},
		Layout: layout,
	}
}

func scatterPlot(data []Record, title string) Figure {
	x := make([]interface{}, len(data))
	y := make([]interface{}, len(data))
	for i, item := range data {
		x[i] = item.first(i, "x")
		y[i] = item.first(0, "y", "value")
	}

	layout := baseLayout(title)
	layout["xaxis"] = axis("X Axis", true)
	layout["yaxis"] = axis("Y Axis", true)

	return Figure{
		Data: []Trace{{
			"type": "scatter",
			"x":    x,
			"y":    y,
			"mode": "markers",
			"marker": map[string]interface{}{
				"size":    12,
				"color":   colorPrimary,
				"opacity": 0.7,
				"line":    map[string]interface{}{"width": 2, "color": "white"},
			},
			"hovertemplate": "<b>X: %{x}</b><br>Y: %{y}<extra></extra>",
		}},
		Layout: layout,
	}
}

// heatmap arranges {x, y, value} points into a matrix over sorted axes
func heatmap(data []Record, title string) Figure {
	xs := uniqueLabels(data, "x")
	ys := uniqueLabels(data, "y")
	xIndex := indexOf(xs)
	yIndex := indexOf(ys)

	z := make([][]interface{}, len(ys))
	for row := range z {
		z[row] = make([]interface{}, len(xs))
		for col := range z[row] {
			z[row][col] = 0
		}
	}
	for _, item := range data {
		col := xIndex[label(item.first(0, "x"))]
		row := yIndex[label(item.first(0, "y"))]
		z[row][col] = item.first(0, "value")
	}

	layout := baseLayout(title)
	layout["xaxis"] = map[string]interface{}{"title": "X Axis"}
	layout["yaxis"] = map[string]interface{}{"title": "Y Axis"}

	return Figure{
		Data: []Trace{{
			"type":          "heatmap",
			"z":             z,
			"x":             xs,
			"y":             ys,
			"colorscale":    "Blues",
			"hovertemplate": "X: %{x}<br>Y: %{y}<br>Value: %{z}<extra></extra>",
		}},
		Layout: layout,
	}
}

func baseLayout(title string) Layout {
	return Layout{
		"title": map[string]interface{}{
			"text": title,
			"font": map[string]interface{}{"size": 20, "color": colorTitle},
		},
		"plot_bgcolor":  "white",
		"paper_bgcolor": "white",
		"font":          map[string]interface{}{"family": fontFamily, "size": 12, "color": colorText},
	}
}

func axis(title string, grid bool) map[string]interface{} {
	a := map[string]interface{}{
		"title":     title,
		"showgrid":  grid,
		"linecolor": colorAxis,
	}
	if grid {
		a["gridcolor"] = colorGrid
	}
	return a
}

// first returns the first non-nil value among keys, or fallback
func (r Record) first(fallback interface{}, keys ...string) interface{} {
	for _, key := range keys {
		if value, ok := r[key]; ok && value != nil {
			return value
		}
	}
	return fallback
}

func uniqueLabels(data []Record, key string) []string {
	seen := map[string]bool{}
	labels := []string{}
	for _, item := range data {
		l := label(item.first(0, key))
		if !seen[l] {
			seen[l] = true
			labels = append(labels, l)
		}
	}
	sort.Strings(labels)
	return labels
}

func indexOf(labels []string) map[string]int {
	index := make(map[string]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}
	return index
}

func label(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return FormatNumber(v)
	case int:
		return strconv.Itoa(v)
	default:
		return fmt.Sprint(v)
	}
}

// FormatNumber prints a number without trailing zeros
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
