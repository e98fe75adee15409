package conflict

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"SponsorFinder/internal/ports"
)

// FatiguePolicy flags a category seen more than Threshold times within WindowDays.
type FatiguePolicy struct {
	WindowDays int
	Threshold  int
}

// DefaultFatiguePolicy looks back four weeks and tolerates two appearances.
var DefaultFatiguePolicy = FatiguePolicy{WindowDays: 28, Threshold: 2}

// FatigueDetector computes advisory category-saturation warnings. It never filters candidates.
type FatigueDetector struct {
	history ports.OutreachHistory
	policy  FatiguePolicy
	now     func() time.Time
}

// NewFatigueDetector wires the outreach history with a policy.
func NewFatigueDetector(history ports.OutreachHistory, policy FatiguePolicy, now func() time.Time) *FatigueDetector {
	if policy.WindowDays <= 0 {
		policy.WindowDays = DefaultFatiguePolicy.WindowDays
	}
	if policy.Threshold < 0 {
		policy.Threshold = DefaultFatiguePolicy.Threshold
	}
	if now == nil {
		now = time.Now
	}
	return &FatigueDetector{history: history, policy: policy, now: now}
}

type categoryCount struct {
	name     string
	episodes map[string]struct{}
	outreach int
}

func (c categoryCount) total() int {
	return len(c.episodes) + c.outreach
}

// Detect counts, per category, the distinct recent episodes that featured it plus
// outreach attempts to sponsors in it, and warns for every category over the threshold.
func (d *FatigueDetector) Detect() []string {
	warnings := make([]string, 0)
	if d == nil || d.history == nil {
		return warnings
	}

	since := d.now().AddDate(0, 0, -d.policy.WindowDays)
	counts := map[string]*categoryCount{}
	bucket := func(category string) *categoryCount {
		key := strings.ToLower(strings.TrimSpace(category))
		c, ok := counts[key]
		if !ok {
			c = &categoryCount{name: category, episodes: map[string]struct{}{}}
			counts[key] = c
		}
		return c
	}

	for _, exposure := range d.history.Exposures(since) {
		bucket(exposure.Category).episodes[exposure.EpisodeGUID] = struct{}{}
	}
	for _, attempt := range d.history.OutreachSince(since) {
		category, ok := d.history.SponsorCategory(attempt.SponsorDomain)
		if !ok {
			continue
		}
		bucket(category).outreach++
	}

	flagged := make([]categoryCount, 0)
	for _, c := range counts {
		if c.total() > d.policy.Threshold {
			flagged = append(flagged, *c)
		}
	}
	sort.Slice(flagged, func(i, j int) bool {
		if flagged[i].total() != flagged[j].total() {
			return flagged[i].total() > flagged[j].total()
		}
		return strings.ToLower(flagged[i].name) < strings.ToLower(flagged[j].name)
	})

	for _, c := range flagged {
		warnings = append(warnings, fmt.Sprintf("%s: %d appearances in last %d days (%d episodes, %d outreach) - consider spacing out",
			c.name, c.total(), d.policy.WindowDays, len(c.episodes), c.outreach))
	}
	return warnings
}
