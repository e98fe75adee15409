package ports

import (
	"context"
	"time"

	"SponsorFinder/internal/domain"
)

// EpisodeSource pulls recent episodes from the podcast feed.
type EpisodeSource interface {
	FetchEpisodes(ctx context.Context, limit int) ([]domain.Episode, error)
}

// ReasoningRequest carries a single structured-output completion request.
type ReasoningRequest struct {
	SystemPrompt string
	UserPrompt   string
	SchemaName   string
	Schema       any
	MaxTokens    int
	Temperature  float64
}

// ReasoningClient sends prompts to an LLM provider and returns the raw completion text.
type ReasoningClient interface {
	Complete(ctx context.Context, req ReasoningRequest) (string, error)
	Model() string
}

// SponsorDirectory returns raw sponsor records for a category.
type SponsorDirectory interface {
	Lookup(ctx context.Context, category string) ([]domain.RawSponsorRecord, error)
}

// ConflictRules exposes do-not-contact rules by domain.
type ConflictRules interface {
	ConflictRule(domain string) (domain.ConflictRule, bool)
}

// SponsorAdjacency exposes which other podcasts a sponsor appears on.
type SponsorAdjacency interface {
	Adjacency(domain string) []string
}

// OutreachHistory exposes what the fatigue detector needs from the tracker.
type OutreachHistory interface {
	OutreachSince(since time.Time) []domain.OutreachAttempt
	Exposures(since time.Time) []domain.CategoryExposure
	SponsorCategory(domain string) (string, bool)
}

// ReportWriter persists rendered documents.
type ReportWriter interface {
	WriteReport(ctx context.Context, name, body string) (string, error)
}
