package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"SponsorFinder/internal/config"
	"SponsorFinder/internal/conflict"
	"SponsorFinder/internal/discovery"
	"SponsorFinder/internal/infrastructure/directory"
	"SponsorFinder/internal/infrastructure/feed"
	"SponsorFinder/internal/infrastructure/llm"
	"SponsorFinder/internal/infrastructure/storage"
	"SponsorFinder/internal/logging"
	"SponsorFinder/internal/outreach"
	"SponsorFinder/internal/ports"
	"SponsorFinder/internal/report"
	"SponsorFinder/internal/understanding"
	"SponsorFinder/internal/usecase"
)

// Application wires configs to use cases.
type Application struct {
	cfg      config.Config
	pipeline *usecase.Pipeline
	outDir   string
	closer   io.Closer
	logger   *slog.Logger
}

// Summary describes what a run produced.
type Summary struct {
	Episodes   int
	OutputDir  string
	Reports    []string
	WeeklyPath string
	Fallbacks  int
	Candidates int
}

// New builds a runnable application instance. It fails only when the sponsor
// directory cannot be opened.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	clock := time.Now

	tracker := outreach.NewTracker(clock, baseLogger.With("component", "tracker"))
	for _, rule := range cfg.Conflicts {
		tracker.AddConflictRule(rule.Domain, rule.Reason, rule.ExpiryDays)
	}
	for sponsor, podcasts := range cfg.Adjacency {
		tracker.UpdateSponsorAdjacency(sponsor, podcasts)
	}

	dir, closer, err := directory.DefaultRegistry().Open(ctx, cfg.Directory)
	if err != nil {
		return nil, fmt.Errorf("sponsor directory: %w", err)
	}

	var reasoning ports.ReasoningClient
	if cfg.Reasoning.APIKey != "" {
		reasoning = llm.NewOpenRouterClient(cfg.Reasoning, nil, baseLogger.With("component", "llm"))
	} else {
		baseLogger.Warn("no OpenRouter API key configured, using heuristic understanding")
	}

	understandingEngine := understanding.NewEngine(reasoning, understanding.Options{
		ShowName:      cfg.Show.Name,
		Timeout:       cfg.Reasoning.Timeout,
		ContentBudget: cfg.Reasoning.ContentBudget,
		MaxTokens:     cfg.Reasoning.MaxTokens,
		Temperature:   cfg.Reasoning.Temperature,
	}, baseLogger.With("component", "understanding"))

	discoveryEngine := discovery.NewEngine(discovery.Deps{
		Directory: dir,
		Filter:    conflict.NewFilter(tracker, clock),
		Adjacency: tracker,
		Logger:    baseLogger.With("component", "discovery"),
	}, discovery.Options{
		ShowName:          cfg.Show.Name,
		MaxResults:        cfg.Discovery.MaxResults,
		ProofSnippets:     cfg.Discovery.ProofSnippets,
		PricingGuidance:   cfg.Discovery.PricingGuidance,
		Objections:        cfg.Discovery.Objections,
		FallbackAdjacency: cfg.Discovery.AdjacentPodcasts,
	})

	writer := storage.NewFileReportWriter(cfg.Report.OutputDir)
	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Source:        feed.NewSource(cfg.Feed, nil, baseLogger.With("component", "feed")),
		Understanding: understandingEngine,
		Discovery:     discoveryEngine,
		Tracker:       tracker,
		Fatigue: conflict.NewFatigueDetector(tracker, conflict.FatiguePolicy{
			WindowDays: cfg.Fatigue.WindowDays,
			Threshold:  cfg.Fatigue.Threshold,
		}, clock),
		Synthesizer:        report.NewSynthesizer(cfg.Show.Name),
		Writer:             writer,
		MaxResults:         cfg.Discovery.MaxResults,
		OutreachWindowDays: cfg.Report.OutreachWindowDays,
		Logger:             baseLogger.With("component", "pipeline"),
	})

	return &Application{
		cfg:      cfg,
		pipeline: pipeline,
		outDir:   writer.Dir(),
		closer:   closer,
		logger:   baseLogger,
	}, nil
}

// Run analyzes up to episodes recent episodes and optionally writes the weekly roll-up.
func (a *Application) Run(ctx context.Context, episodes int, weekly bool) (Summary, error) {
	outcomes, err := a.pipeline.Run(ctx, episodes)
	summary := Summary{Episodes: len(outcomes), OutputDir: a.outDir}
	for _, o := range outcomes {
		summary.Reports = append(summary.Reports, o.ReportPath)
		summary.Candidates += len(o.Discovery.Candidates)
		if o.Understanding.Path == understanding.PathFallback {
			summary.Fallbacks++
		}
	}
	if err != nil {
		return summary, err
	}

	if weekly && len(outcomes) > 0 {
		path, err := a.pipeline.WriteWeekly(ctx, outcomes)
		if err != nil {
			return summary, err
		}
		summary.WeeklyPath = path
	}

	return summary, nil
}

// Close releases the sponsor directory.
func (a *Application) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}
