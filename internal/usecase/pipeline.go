package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"SponsorFinder/internal/conflict"
	"SponsorFinder/internal/discovery"
	"SponsorFinder/internal/domain"
	"SponsorFinder/internal/outreach"
	"SponsorFinder/internal/ports"
	"SponsorFinder/internal/ranking"
	"SponsorFinder/internal/report"
	"SponsorFinder/internal/understanding"
)

const (
	weeklyTopSponsors     = 10
	defaultOutreachWindow = 7
	weeklyReportName      = "weekly_report.md"
)

// PipelineDeps wires the engines and driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source             ports.EpisodeSource
	Understanding      *understanding.Engine
	Discovery          *discovery.Engine
	Tracker            *outreach.Tracker
	Fatigue            *conflict.FatigueDetector
	Synthesizer        *report.Synthesizer
	Writer             ports.ReportWriter
	MaxResults         int
	OutreachWindowDays int
	Logger             *slog.Logger
}

// Pipeline implements the per-episode understanding, discovery and report workflow.
type Pipeline struct {
	source        ports.EpisodeSource
	understanding *understanding.Engine
	discovery     *discovery.Engine
	tracker       *outreach.Tracker
	fatigue       *conflict.FatigueDetector
	synthesizer   *report.Synthesizer
	writer        ports.ReportWriter
	ranker        *ranking.Ranker
	maxResults    int
	outreachDays  int
	logger        *slog.Logger
}

// EpisodeOutcome is everything produced for one episode.
type EpisodeOutcome struct {
	Episode       domain.Episode
	Understanding understanding.Result
	Discovery     discovery.Result
	Document      string
	ReportPath    string
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	tracker := deps.Tracker
	if tracker == nil {
		tracker = outreach.NewTracker(nil, deps.Logger)
	}
	synthesizer := deps.Synthesizer
	if synthesizer == nil {
		synthesizer = report.NewSynthesizer("")
	}
	outreachDays := deps.OutreachWindowDays
	if outreachDays <= 0 {
		outreachDays = defaultOutreachWindow
	}
	return &Pipeline{
		source:        deps.Source,
		understanding: deps.Understanding,
		discovery:     deps.Discovery,
		tracker:       tracker,
		fatigue:       deps.Fatigue,
		synthesizer:   synthesizer,
		writer:        deps.Writer,
		ranker:        ranking.NewRanker(),
		maxResults:    deps.MaxResults,
		outreachDays:  outreachDays,
		logger:        deps.Logger,
	}
}

// AnalyzeEpisode runs understanding, discovery and rendering for one episode.
// It never fails: provider and directory problems degrade into the outcome.
func (p *Pipeline) AnalyzeEpisode(ctx context.Context, episode domain.Episode) EpisodeOutcome {
	outcome := EpisodeOutcome{Episode: episode}

	if p.understanding != nil {
		outcome.Understanding = p.understanding.Understand(ctx, episode)
	} else {
		outcome.Understanding = understanding.Result{
			Understanding: understanding.Heuristic(episode, ""),
			Path:          understanding.PathFallback,
			Err:           understanding.ErrProviderDisabled,
		}
	}
	u := outcome.Understanding.Understanding

	if p.discovery != nil {
		outcome.Discovery = p.discovery.Discover(ctx, u, p.maxResults)
	} else {
		outcome.Discovery = discovery.Result{Candidates: []domain.SponsorCandidate{}}
	}

	p.recordExposure(episode, outcome.Discovery.Candidates)

	var warnings []string
	if p.fatigue != nil {
		warnings = p.fatigue.Detect()
	}

	outcome.Document = p.synthesizer.Render(report.EpisodeReport{
		Episode:         episode,
		Understanding:   u,
		Candidates:      outcome.Discovery.Candidates,
		DoNotContact:    p.tracker.ActiveConflicts(),
		FatigueWarnings: warnings,
		GeneratedAt:     p.tracker.Now(),
	})

	p.info("episode analyzed",
		"episode", episode.GUID,
		"understanding", outcome.Understanding.Path,
		"candidates", len(outcome.Discovery.Candidates),
		"skipped", len(outcome.Discovery.Skipped))
	return outcome
}

// Run fetches up to limit episodes and analyzes them in order. A feed failure
// yields zero outcomes; only report persistence errors are returned.
func (p *Pipeline) Run(ctx context.Context, limit int) ([]EpisodeOutcome, error) {
	if p.source == nil {
		return nil, nil
	}

	episodes, err := p.source.FetchEpisodes(ctx, limit)
	if err != nil {
		p.logError("fetch episodes failed", "error", err)
		return nil, nil
	}
	p.info("episodes fetched", "count", len(episodes))

	outcomes := make([]EpisodeOutcome, 0, len(episodes))
	for i, episode := range episodes {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}

		outcome := p.AnalyzeEpisode(ctx, episode)
		if p.writer != nil {
			path, err := p.writer.WriteReport(ctx, fmt.Sprintf("episode_analysis_%d.md", i+1), outcome.Document)
			if err != nil {
				return outcomes, fmt.Errorf("write report for %s: %w", episode.GUID, err)
			}
			outcome.ReportPath = path
			p.info("report written", "episode", episode.GUID, "path", path)
		}
		outcomes = append(outcomes, outcome)
	}

	return outcomes, nil
}

// WeeklyReport aggregates analyzed episodes into a roll-up snapshot.
func (p *Pipeline) WeeklyReport(outcomes []EpisodeOutcome) domain.WeeklyReport {
	episodes := make([]string, 0, len(outcomes))
	var all []domain.SponsorCandidate
	for _, o := range outcomes {
		episodes = append(episodes, o.Episode.GUID)
		all = append(all, o.Discovery.Candidates...)
	}

	warnings := []string{}
	if p.fatigue != nil {
		warnings = p.fatigue.Detect()
	}

	return domain.WeeklyReport{
		ReportDate:              p.tracker.Now(),
		EpisodesAnalyzed:        episodes,
		TopSponsors:             ranking.Top(p.ranker.Rank(all), weeklyTopSponsors),
		DoNotContact:            p.tracker.ActiveConflicts(),
		RecentOutreach:          p.tracker.RecentOutreach(p.outreachDays),
		RecentOutreachDays:      p.outreachDays,
		SponsorAdjacencyMap:     p.tracker.AdjacencyMap(),
		CategoryFatigueWarnings: warnings,
	}
}

// WriteWeekly renders the roll-up and persists it as weekly_report.md.
func (p *Pipeline) WriteWeekly(ctx context.Context, outcomes []EpisodeOutcome) (string, error) {
	doc := p.synthesizer.RenderWeekly(p.WeeklyReport(outcomes))
	if p.writer == nil {
		return "", nil
	}
	path, err := p.writer.WriteReport(ctx, weeklyReportName, doc)
	if err != nil {
		return "", fmt.Errorf("write weekly report: %w", err)
	}
	return path, nil
}

func (p *Pipeline) recordExposure(episode domain.Episode, candidates []domain.SponsorCandidate) {
	categories := make([]string, 0, len(candidates))
	for _, c := range candidates {
		p.tracker.RegisterSponsorCategory(c.Domain, c.Category)
		if strings.TrimSpace(c.Category) != "" {
			categories = append(categories, c.Category)
		}
	}
	if len(categories) > 0 {
		p.tracker.RecordExposure(episode.GUID, categories, episode.PublishedAt)
	}
}

func (p *Pipeline) info(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) logError(msg string, args ...interface{}) {
	if p.logger != nil {
		p.logger.Error(msg, args...)
	}
}
