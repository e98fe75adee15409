package ranking

import (
	"sort"

	"SponsorFinder/internal/domain"
)

// Score is the evidence strength of a candidate: its number of evidence links.
func Score(c domain.SponsorCandidate) int {
	return len(c.EvidenceLinks)
}

// Ranker orders candidates by evidence strength.
type Ranker struct{}

// NewRanker returns the evidence-count ranker.
func NewRanker() *Ranker {
	return &Ranker{}
}

// Rank drops invalid candidates, sorts stably by descending score and keeps the
// best-ranked entry per domain. Ties keep their input order.
func (r *Ranker) Rank(candidates []domain.SponsorCandidate) []domain.SponsorCandidate {
	valid := make([]domain.SponsorCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.IsValid() {
			valid = append(valid, c)
		}
	}

	sort.SliceStable(valid, func(i, j int) bool {
		return Score(valid[i]) > Score(valid[j])
	})

	seen := make(map[string]struct{}, len(valid))
	ranked := make([]domain.SponsorCandidate, 0, len(valid))
	for _, c := range valid {
		key := domain.NormalizeDomain(c.Domain)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		ranked = append(ranked, c)
	}
	return ranked
}

// Top returns at most n entries of an already ranked slice.
func Top(ranked []domain.SponsorCandidate, n int) []domain.SponsorCandidate {
	if n < 0 || n >= len(ranked) {
		return ranked
	}
	return ranked[:n]
}
