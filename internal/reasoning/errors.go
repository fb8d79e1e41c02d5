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

package reasoning

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a completion could not be produced
type ErrorKind string

const (
	// KindTransport covers network failures, timeouts and missing credentials
	KindTransport ErrorKind = "transport"
	// KindStatus covers non-2xx responses from the provider
	KindStatus ErrorKind = "status"
	// KindEmpty covers responses without any completion content
	KindEmpty ErrorKind = "empty"
	// KindParse covers completions that are not a JSON object
	KindParse ErrorKind = "parse"
)

// Error classes separate unusable completions from failed calls
const (
	ClassSchemaCoercion    = "schema_coercion"
	ClassProviderTransport = "provider_transport"
)

// GenerationError is returned by Complete for every failure. Callers are
// expected to recover from it with a fully specified default value.
type GenerationError struct {
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *GenerationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("generation failed (%s, status %d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("generation failed (%s): %v", e.Kind, e.Err)
}

// Unwrap returns the underlying error
func (e *GenerationError) Unwrap() error {
	return e.Err
}

// IsSchemaError reports whether err is a completion that arrived but could
// not be used as JSON.
func IsSchemaError(err error) bool {
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		return false
	}
	return genErr.Kind == KindParse || genErr.Kind == KindEmpty
}

// ErrorClass maps a completion failure onto its error class
func ErrorClass(err error) string {
	if IsSchemaError(err) {
		return ClassSchemaCoercion
	}
	return ClassProviderTransport
}
