package main

import (
	"context"
	"log"

	"github.com/umputun/ideascope/pkg/categorizer"
	"github.com/umputun/ideascope/pkg/config"
	"github.com/umputun/ideascope/pkg/content"
	"github.com/umputun/ideascope/pkg/export"
	"github.com/umputun/ideascope/pkg/filter"
	"github.com/umputun/ideascope/pkg/llm"
	"github.com/umputun/ideascope/pkg/metrics"
	"github.com/umputun/ideascope/pkg/pipeline"
	"github.com/umputun/ideascope/pkg/scorer"
	"github.com/umputun/ideascope/pkg/source"
)

// runner wires configured components into the pipeline and writes metrics after every run
type runner struct {
	orchestrator *pipeline.Orchestrator
	metricsFile  string
}

func newRunner(cfg *config.Config, provider llm.Provider, metricsFile string) *runner {
	redditParams := source.RedditParams{
		BaseURL:          cfg.Source.BaseURL,
		UserAgent:        cfg.Source.UserAgent,
		Timeout:          cfg.Source.Timeout,
		RequestInterval:  cfg.Source.RequestInterval,
		RateLimitBackoff: cfg.Source.RateLimitBackoff,
	}
	if cfg.Source.ExtractLinks {
		redditParams.Extractor = content.NewHTTPExtractor(cfg.Source.Timeout, cfg.Source.UserAgent)
	}
	src := &source.Router{
		Reddit: source.NewReddit(redditParams),
		Feed: source.NewFeed(source.FeedParams{UserAgent: cfg.Source.UserAgent, Timeout: cfg.Source.Timeout,
			RateLimitBackoff: cfg.Source.RateLimitBackoff}),
	}

	var cat pipeline.Categorizer
	if cfg.Categorizer.Enabled {
		cat = categorizer.New(cfg.Categorizer.Buckets)
	}

	orch := pipeline.New(pipeline.Params{
		Config: pipeline.Config{
			Communities:   cfg.Communities,
			PostLimit:     cfg.Source.PostLimit,
			MinConfidence: cfg.Scorer.MinConfidence,
			MaxInFlight:   cfg.Generation.MaxInFlight,
			SystemPrompt:  cfg.Generation.SystemPrompt,
		},
		Source:      src,
		Filter:      filter.New(cfg.Filter),
		Scorer:      scorer.New(cfg.Scorer),
		Categorizer: cat,
		Provider:    provider,
		Exporter:    export.New(cfg.Export.OutputDir, cfg.Export.Formats),
	})
	return &runner{orchestrator: orch, metricsFile: metricsFile}
}

// Run makes a single pipeline run
func (r *runner) Run(ctx context.Context) (pipeline.Result, error) {
	res, err := r.orchestrator.Run(ctx)
	if r.metricsFile != "" {
		if mErr := metrics.WriteTextfile(r.metricsFile, res.Summary); mErr != nil {
			log.Printf("[WARN] can't write metrics: %v", mErr)
		}
	}
	return res, err
}
