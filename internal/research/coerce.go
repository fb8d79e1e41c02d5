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
	"math"
	"strings"

	"github.com/spf13/cast"
)

// coerceFunc converts one decoded JSON object into T
type coerceFunc[T any] func(map[string]interface{}) (T, bool)

// decodeValue decodes raw JSON. A JSON string whose content is itself JSON
// is decoded a second time, so `"[{...}]"` and `[{...}]` are equivalent.
func decodeValue(raw json.RawMessage) (interface{}, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, false
	}
	if text, ok := value.(string); ok {
		var inner interface{}
		if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &inner); err != nil {
			return nil, false
		}
		return inner, true
	}
	return value, value != nil
}

// decodeSeries turns a field into a list of T. Anything other than an array
// (native or JSON text) yields an empty list; elements that cannot be
// coerced are dropped. The result is never nil.
func decodeSeries[T any](raw json.RawMessage, coerce coerceFunc[T]) []T {
	out := []T{}
	value, ok := decodeValue(raw)
	if !ok {
		return out
	}
	items, ok := value.([]interface{})
	if !ok {
		return out
	}
	for _, item := range items {
		object, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		if converted, ok := coerce(object); ok {
			out = append(out, converted)
		}
	}
	return out
}

// decodeStrings decodes a list of non-empty strings, dropping anything else
func decodeStrings(raw json.RawMessage) ([]string, bool) {
	value, ok := decodeValue(raw)
	if !ok {
		return nil, false
	}
	items, ok := value.([]interface{})
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if text, ok := item.(string); ok && strings.TrimSpace(text) != "" {
			out = append(out, strings.TrimSpace(text))
		}
	}
	return out, true
}

// decodeString decodes a plain JSON string field
func decodeString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return "", false
	}
	return strings.TrimSpace(text), true
}

// firstPresent returns the first non-null value among keys
func firstPresent(object map[string]interface{}, keys ...string) (interface{}, bool) {
	for _, key := range keys {
		if value, ok := object[key]; ok && value != nil {
			return value, true
		}
	}
	return nil, false
}

// toNumber coerces numbers and numeric strings such as "1,200" or "43%".
// NaN and infinities are rejected since they cannot be encoded as JSON.
func toNumber(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case nil, bool, map[string]interface{}, []interface{}:
		return 0, false
	case string:
		cleaned := strings.TrimSpace(v)
		cleaned = strings.NewReplacer(",", "", "%", "", "$", "").Replace(cleaned)
		if cleaned == "" {
			return 0, false
		}
		value = cleaned
	}
	number, err := cast.ToFloat64E(value)
	if err != nil || math.IsNaN(number) || math.IsInf(number, 0) {
		return 0, false
	}
	return number, true
}

// toLabel coerces strings and numbers into a display label
func toLabel(value interface{}) (string, bool) {
	switch value.(type) {
	case nil, bool, map[string]interface{}, []interface{}:
		return "", false
	}
	label, err := cast.ToStringE(value)
	if err != nil {
		return "", false
	}
	label = strings.TrimSpace(label)
	return label, label != ""
}

func coerceTrendPoint(object map[string]interface{}) (TrendPoint, bool) {
	rawLabel, ok := firstPresent(object, "year", "date", "x")
	if !ok {
		return TrendPoint{}, false
	}
	label, ok := toLabel(rawLabel)
	if !ok {
		return TrendPoint{}, false
	}
	rawValue, ok := firstPresent(object, "value", "y")
	if !ok {
		return TrendPoint{}, false
	}
	value, ok := toNumber(rawValue)
	if !ok {
		return TrendPoint{}, false
	}
	return TrendPoint{Year: label, Value: value}, true
}

func coerceComparisonItem(object map[string]interface{}) (ComparisonItem, bool) {
	rawCategory, ok := firstPresent(object, "category", "name", "country")
	if !ok {
		return ComparisonItem{}, false
	}
	category, ok := toLabel(rawCategory)
	if !ok {
		return ComparisonItem{}, false
	}
	rawValue, ok := firstPresent(object, "value", "funding")
	if !ok {
		return ComparisonItem{}, false
	}
	value, ok := toNumber(rawValue)
	if !ok {
		return ComparisonItem{}, false
	}
	return ComparisonItem{Category: category, Value: value}, true
}

func coerceDistributionSegment(object map[string]interface{}) (DistributionSegment, bool) {
	rawName, ok := firstPresent(object, "name", "label")
	if !ok {
		return DistributionSegment{}, false
	}
	name, ok := toLabel(rawName)
	if !ok {
		return DistributionSegment{}, false
	}
	rawValue, ok := firstPresent(object, "value")
	if !ok {
		return DistributionSegment{}, false
	}
	value, ok := toNumber(rawValue)
	if !ok {
		return DistributionSegment{}, false
	}
	segment := DistributionSegment{Name: name, Value: value}
	if color, ok := object["color"].(string); ok {
		segment.Color = strings.TrimSpace(color)
	}
	return segment, true
}

func coerceKeyStatistic(object map[string]interface{}) (KeyStatistic, bool) {
	rawLabel, ok := firstPresent(object, "label", "name")
	if !ok {
		return KeyStatistic{}, false
	}
	label, ok := toLabel(rawLabel)
	if !ok {
		return KeyStatistic{}, false
	}
	rawValue, ok := firstPresent(object, "value")
	if !ok {
		return KeyStatistic{}, false
	}
	value, ok := toLabel(rawValue)
	if !ok {
		return KeyStatistic{}, false
	}
	stat := KeyStatistic{Label: label, Value: value}
	if icon, ok := object["icon"].(string); ok {
		stat.Icon = strings.TrimSpace(icon)
	}
	return stat, true
}
