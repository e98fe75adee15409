package conflict

import (
	"time"

	"SponsorFinder/internal/domain"
	"SponsorFinder/internal/ports"
)

// Filter removes candidates blocked by an active do-not-contact rule.
type Filter struct {
	rules ports.ConflictRules
	now   func() time.Time
}

// NewFilter wires the rule source; now defaults to time.Now.
func NewFilter(rules ports.ConflictRules, now func() time.Time) *Filter {
	if now == nil {
		now = time.Now
	}
	return &Filter{rules: rules, now: now}
}

// IsBlocked reports whether a rule exists for the domain and is active now.
func (f *Filter) IsBlocked(sponsorDomain string) bool {
	if f == nil || f.rules == nil {
		return false
	}
	rule, ok := f.rules.ConflictRule(domain.NormalizeDomain(sponsorDomain))
	if !ok {
		return false
	}
	return rule.ActiveAt(f.now())
}

// Apply splits candidates into kept and blocked, preserving order.
func (f *Filter) Apply(candidates []domain.SponsorCandidate) (kept, blocked []domain.SponsorCandidate) {
	kept = make([]domain.SponsorCandidate, 0, len(candidates))
	for _, c := range candidates {
		if f.IsBlocked(c.Domain) {
			blocked = append(blocked, c)
			continue
		}
		kept = append(kept, c)
	}
	return kept, blocked
}
