package discovery

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"SponsorFinder/internal/conflict"
	"SponsorFinder/internal/domain"
	"SponsorFinder/internal/ports"
	"SponsorFinder/internal/ranking"
)

// SkipReason explains why a directory record did not become a candidate.
type SkipReason string

const (
	SkipMalformed    SkipReason = "malformed_record"
	SkipNoEvidence   SkipReason = "no_evidence"
	SkipBlocked      SkipReason = "blocked"
	SkipLookupFailed SkipReason = "lookup_failed"
)

// Skip records one dropped record or failed category lookup.
type Skip struct {
	Category string
	Name     string
	Domain   string
	Reason   SkipReason
	Err      error
}

// Result is the tagged outcome of Discover.
type Result struct {
	Candidates []domain.SponsorCandidate
	Skipped    []Skip
}

// Options carries the defaults applied to records that omit optional fields.
type Options struct {
	ShowName          string
	MaxResults        int
	ProofSnippets     []string
	PricingGuidance   string
	Objections        []string
	FallbackAdjacency []string
}

// DefaultOptions mirrors the guidance the outreach team uses when a record has none.
func DefaultOptions() Options {
	return Options{
		ShowName:   "LINUX Unplugged",
		MaxResults: 10,
		ProofSnippets: []string{
			"We're running this in production and it works great",
			"The community really loves this solution",
		},
		PricingGuidance: "$5,000-15,000 per episode based on similar tech podcasts",
		Objections: []string{
			"Budget constraints - Frame as long-term partnership investment",
			"Already working with competitors - Highlight unique value proposition",
		},
		FallbackAdjacency: []string{"Coder Radio", "Self-Hosted", "LINUX Unplugged"},
	}
}

// Deps wires the collaborators of the engine.
type Deps struct {
	Directory ports.SponsorDirectory
	Filter    *conflict.Filter
	Ranker    *ranking.Ranker
	Adjacency ports.SponsorAdjacency
	Logger    *slog.Logger
}

// Engine turns an understanding into ranked, evidence-backed sponsor candidates.
// It reads shared state but never writes it.
type Engine struct {
	directory ports.SponsorDirectory
	filter    *conflict.Filter
	ranker    *ranking.Ranker
	adjacency ports.SponsorAdjacency
	opts      Options
	logger    *slog.Logger
}

// NewEngine constructs the discovery engine.
func NewEngine(deps Deps, opts Options) *Engine {
	if opts.ShowName == "" {
		opts.ShowName = DefaultOptions().ShowName
	}
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultOptions().MaxResults
	}
	ranker := deps.Ranker
	if ranker == nil {
		ranker = ranking.NewRanker()
	}
	return &Engine{
		directory: deps.Directory,
		filter:    deps.Filter,
		ranker:    ranker,
		adjacency: deps.Adjacency,
		opts:      opts,
		logger:    deps.Logger,
	}
}

// Discover looks up every sponsor category once, builds candidates, drops records
// without evidence, removes blocked domains, ranks and truncates to maxResults.
// A non-positive maxResults uses the configured default.
func (e *Engine) Discover(ctx context.Context, u domain.EpisodeUnderstanding, maxResults int) Result {
	if maxResults <= 0 {
		maxResults = e.opts.MaxResults
	}

	result := Result{Candidates: []domain.SponsorCandidate{}}
	if e.directory == nil {
		return result
	}

	var built []domain.SponsorCandidate
	for _, category := range uniqueCategories(u.SponsorCategories) {
		records, err := e.directory.Lookup(ctx, category)
		if err != nil {
			e.warn("sponsor lookup failed", "category", category, "error", err)
			result.Skipped = append(result.Skipped, Skip{Category: category, Reason: SkipLookupFailed, Err: err})
			continue
		}

		for _, record := range records {
			if strings.TrimSpace(record.Category) == "" {
				record.Category = category
			}
			candidate, err := e.build(record, u)
			if err != nil {
				skip := Skip{Category: category, Name: record.Name, Domain: record.Domain, Err: err, Reason: SkipMalformed}
				if errors.Is(err, domain.ErrNoEvidence) {
					skip.Reason = SkipNoEvidence
				}
				e.warn("sponsor record skipped", "category", category, "name", record.Name, "domain", record.Domain, "reason", skip.Reason)
				result.Skipped = append(result.Skipped, skip)
				continue
			}
			built = append(built, candidate)
		}
	}

	kept := built
	if e.filter != nil {
		var blocked []domain.SponsorCandidate
		kept, blocked = e.filter.Apply(built)
		for _, c := range blocked {
			e.debug("sponsor blocked by conflict rule", "domain", c.Domain)
			result.Skipped = append(result.Skipped, Skip{Category: c.Category, Name: c.Name, Domain: c.Domain, Reason: SkipBlocked})
		}
	}

	result.Candidates = ranking.Top(e.ranker.Rank(kept), maxResults)
	e.debug("discovery done", "episode", u.EpisodeGUID, "candidates", len(result.Candidates), "skipped", len(result.Skipped))
	return result
}

func (e *Engine) build(record domain.RawSponsorRecord, u domain.EpisodeUnderstanding) (domain.SponsorCandidate, error) {
	if strings.TrimSpace(record.Name) == "" || strings.TrimSpace(record.Domain) == "" {
		return domain.SponsorCandidate{}, domain.ErrMalformedRecord
	}

	proof := record.ProofSnippets
	if len(proof) == 0 {
		proof = e.opts.ProofSnippets
	}
	adjacent := record.AdjacentPodcasts
	if len(adjacent) == 0 && e.adjacency != nil {
		adjacent = e.adjacency.Adjacency(record.Domain)
	}
	if len(adjacent) == 0 {
		adjacent = e.opts.FallbackAdjacency
	}
	objections := record.PotentialObjections
	if len(objections) == 0 {
		objections = e.opts.Objections
	}

	var pricing *string
	switch {
	case strings.TrimSpace(record.PricingGuidance) != "":
		p := record.PricingGuidance
		pricing = &p
	case e.opts.PricingGuidance != "":
		p := e.opts.PricingGuidance
		pricing = &p
	}

	return domain.NewSponsorCandidate(domain.SponsorCandidate{
		Name:                record.Name,
		Domain:              record.Domain,
		Category:            record.Category,
		EvidenceLinks:       record.EvidenceLinks,
		ContactInfo:         record.ContactInfo,
		WhyFit:              whyFit(e.opts.ShowName, record, u),
		SuggestedCTA:        suggestedCTA(u),
		OutreachEmail:       outreachEmail(e.opts.ShowName, record, u),
		ProofSnippets:       proof,
		AdjacentPodcasts:    adjacent,
		PricingGuidance:     pricing,
		PotentialObjections: objections,
	})
}

// uniqueCategories keeps the first occurrence of each category, compared case-insensitively.
func uniqueCategories(categories []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(categories))
	for _, c := range categories {
		c = strings.TrimSpace(c)
		key := strings.ToLower(c)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

func (e *Engine) warn(msg string, args ...interface{}) {
	if e.logger != nil {
		e.logger.Warn(msg, args...)
	}
}

func (e *Engine) debug(msg string, args ...interface{}) {
	if e.logger != nil {
		e.logger.Debug(msg, args...)
	}
}
