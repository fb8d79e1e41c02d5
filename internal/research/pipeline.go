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
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/your-org/research-agent/internal/config"
	"github.com/your-org/research-agent/internal/reasoning"
	"github.com/your-org/research-agent/internal/search"
)

// Stage names a step of a research run
type Stage string

// Pipeline stages, in order
const (
	StageStart       Stage = "start"
	StageAnalyzed    Stage = "analyzed"
	StageGathered    Stage = "gathered"
	StageExtracted   Stage = "extracted"
	StageSynthesized Stage = "synthesized"
	StageDone        Stage = "done"
)

// UnrecoverableError is the only error a research run returns. It wraps a
// panic raised inside a stage or a broken pipeline invariant.
type UnrecoverableError struct {
	Stage Stage
	Err   error
}

func (e *UnrecoverableError) Error() string {
	return fmt.Sprintf("research pipeline failed after stage %s: %v", e.Stage, e.Err)
}

func (e *UnrecoverableError) Unwrap() error {
	return e.Err
}

// Options tunes a pipeline
type Options struct {
	AnalysisTemperature   float64
	ExtractionTemperature float64
	InsightTemperature    float64
	PerProviderCap        int
	DigestCap             int
}

// RunMetrics records stage timings of a run
type RunMetrics struct {
	AnalysisTime   time.Duration
	GatherTime     time.Duration
	ExtractionTime time.Duration
	InsightTime    time.Duration
	Total          time.Duration
}

// Pipeline runs analysis, retrieval, extraction and synthesis in order
type Pipeline struct {
	analyzer       *Analyzer
	extractor      *Extractor
	synthesizer    *Synthesizer
	providers      []search.Provider
	perProviderCap int
	logger         *zap.Logger
}

// NewPipeline wires a pipeline from its collaborators
func NewPipeline(completer reasoning.Completer, providers []search.Provider, opts Options, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	perProviderCap := opts.PerProviderCap
	if perProviderCap <= 0 {
		perProviderCap = search.DefaultPerProviderCap
	}

	return &Pipeline{
		analyzer:       NewAnalyzer(completer, opts.AnalysisTemperature, logger.Named("analyzer")),
		extractor:      NewExtractor(completer, opts.ExtractionTemperature, opts.DigestCap, logger.Named("extractor")),
		synthesizer:    NewSynthesizer(completer, opts.InsightTemperature, logger.Named("synthesizer")),
		providers:      providers,
		perProviderCap: perProviderCap,
		logger:         logger,
	}
}

// NewPipelineFromConfig builds the production pipeline: the go-openai
// reasoning client and the Serper and Tavily providers.
func NewPipelineFromConfig(cfg *config.Config, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	completer := reasoning.NewClient(cfg.Reasoning, logger.Named("reasoning"))
	providers := search.NewProviders(cfg.Search, logger.Named("search"))

	return NewPipeline(completer, providers, Options{
		AnalysisTemperature:   cfg.Reasoning.AnalysisTemperature,
		ExtractionTemperature: cfg.Reasoning.ExtractionTemperature,
		InsightTemperature:    cfg.Reasoning.InsightTemperature,
		PerProviderCap:        cfg.Search.PerProviderCap,
		DigestCap:             cfg.Search.DigestCap,
	}, logger)
}

// Run executes one research run. Provider and generation failures are
// absorbed by the stages; the only error is *UnrecoverableError.
func (p *Pipeline) Run(ctx context.Context, query string) (result *Result, err error) {
	stage := StageStart
	start := time.Now()
	var metrics RunMetrics

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Research stage panicked",
				zap.String("query", query),
				zap.String("stage", string(stage)),
				zap.Any("panic", r),
			)
			result = nil
			err = &UnrecoverableError{Stage: stage, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	p.logger.Info("Starting research", zap.String("query", query))

	stepStart := time.Now()
	analysis := p.analyzer.Analyze(ctx, query)
	metrics.AnalysisTime = time.Since(stepStart)
	stage = p.transition(query, StageAnalyzed, metrics.AnalysisTime)

	stepStart = time.Now()
	results := search.Gather(ctx, query, p.providers, p.logger.Named("search"))
	corpus := search.Merge(results, p.perProviderCap)
	metrics.GatherTime = time.Since(stepStart)
	stage = p.transition(query, StageGathered, metrics.GatherTime,
		zap.Int("records", corpus.Len()),
		zap.Int("sources", len(corpus.Sources)),
	)

	stepStart = time.Now()
	data := p.extractor.Extract(ctx, query, corpus, analysis)
	metrics.ExtractionTime = time.Since(stepStart)
	stage = p.transition(query, StageExtracted, metrics.ExtractionTime)

	stepStart = time.Now()
	insights := p.synthesizer.Synthesize(ctx, query, data)
	metrics.InsightTime = time.Since(stepStart)
	stage = p.transition(query, StageSynthesized, metrics.InsightTime)

	result = &Result{
		Query:          query,
		QueryAnalysis:  analysis,
		StructuredData: data,
		Insights:       insights,
		Sources:        corpus.Sources,
		Status:         StatusCompleted,
	}

	if err := p.checkInvariants(result); err != nil {
		p.logger.Error("Research result violates an invariant",
			zap.String("query", query),
			zap.Error(err),
		)
		return nil, &UnrecoverableError{Stage: stage, Err: err}
	}

	metrics.Total = time.Since(start)
	p.transition(query, StageDone, metrics.Total,
		zap.Duration("analysis_time", metrics.AnalysisTime),
		zap.Duration("gather_time", metrics.GatherTime),
		zap.Duration("extraction_time", metrics.ExtractionTime),
		zap.Duration("insight_time", metrics.InsightTime),
	)
	return result, nil
}

// transition logs a stage change and returns the new stage
func (p *Pipeline) transition(query string, stage Stage, elapsed time.Duration, fields ...zap.Field) Stage {
	fields = append([]zap.Field{
		zap.String("query", query),
		zap.String("stage", string(stage)),
		zap.Duration("duration", elapsed),
	}, fields...)
	p.logger.Debug("Research stage completed", fields...)
	return stage
}

// checkInvariants verifies the shape guarantees of a finished result
func (p *Pipeline) checkInvariants(result *Result) error {
	if !IsValidChartKind(result.QueryAnalysis.Visualizations.Primary) {
		return fmt.Errorf("primary chart kind %q is not a known chart kind", result.QueryAnalysis.Visualizations.Primary)
	}
	if maxSources := p.perProviderCap * len(p.providers); len(result.Sources) > maxSources {
		return fmt.Errorf("source list has %d entries, limit is %d", len(result.Sources), maxSources)
	}
	if result.Status != StatusCompleted {
		return errors.New("result status is not completed")
	}
	return nil
}
