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

package search

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Gather issues exactly one call per provider concurrently and waits for all
// of them to settle. Results are returned in provider order regardless of
// arrival order. A failing provider never cancels its siblings and never
// produces an error here; its slot holds an empty list and an ErrorKind.
func Gather(ctx context.Context, query string, providers []Provider, logger *zap.Logger) []Result {
	if logger == nil {
		logger = zap.NewNop()
	}

	results := make([]Result, len(providers))
	var g errgroup.Group

	for i, provider := range providers {
		i, provider := i, provider
		g.Go(func() error {
			results[i] = searchOne(ctx, query, provider, logger)
			return nil
		})
	}

	_ = g.Wait()
	return results
}

// searchOne settles a single provider call into a Result
func searchOne(ctx context.Context, query string, provider Provider, logger *zap.Logger) (result Result) {
	start := time.Now()
	result = Result{Provider: provider.Name(), Items: []Record{}}

	defer func() {
		if r := recover(); r != nil {
			result.Items = []Record{}
			result.Err = KindTransport
			result.Duration = time.Since(start)
			logger.Error("Search provider panicked",
				zap.String("provider", result.Provider),
				zap.String("panic", fmt.Sprint(r)),
			)
		}
	}()

	items, err := provider.Search(ctx, query)
	result.Duration = time.Since(start)

	if err != nil {
		result.Err = KindOf(err)
		logger.Warn("Search provider failed",
			zap.String("provider", result.Provider),
			zap.String("error_kind", string(result.Err)),
			zap.Duration("duration", result.Duration),
			zap.Error(err),
		)
		return result
	}

	if items != nil {
		result.Items = items
	}
	logger.Info("Search provider completed",
		zap.String("provider", result.Provider),
		zap.Int("results", len(result.Items)),
		zap.Duration("duration", result.Duration),
	)
	return result
}
