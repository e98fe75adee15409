package outreach

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"SponsorFinder/internal/domain"
	"SponsorFinder/internal/ports"
)

// Tracker is the process-lifetime registry of conflict rules, outreach attempts,
// sponsor adjacency and category exposures. It is safe for concurrent use.
type Tracker struct {
	mu         sync.RWMutex
	rules      map[string]domain.ConflictRule
	attempts   []domain.OutreachAttempt
	adjacency  map[string][]string
	categories map[string]string
	exposures  []domain.CategoryExposure
	now        func() time.Time
	logger     *slog.Logger
}

var (
	_ ports.ConflictRules    = (*Tracker)(nil)
	_ ports.SponsorAdjacency = (*Tracker)(nil)
	_ ports.OutreachHistory  = (*Tracker)(nil)
)

// NewTracker builds an empty tracker; now defaults to time.Now.
func NewTracker(now func() time.Time, log *slog.Logger) *Tracker {
	if now == nil {
		now = time.Now
	}
	return &Tracker{
		rules:      map[string]domain.ConflictRule{},
		adjacency:  map[string][]string{},
		categories: map[string]string{},
		now:        now,
		logger:     log,
	}
}

// Now returns the tracker clock reading.
func (t *Tracker) Now() time.Time {
	return t.now().UTC()
}

// AddConflictRule stores a do-not-contact rule, replacing any earlier rule for the domain.
// expiryDays of zero means the rule never expires; a negative value yields an already expired rule.
func (t *Tracker) AddConflictRule(sponsorDomain, reason string, expiryDays int) domain.ConflictRule {
	now := t.Now()
	rule := domain.ConflictRule{
		Domain:  domain.NormalizeDomain(sponsorDomain),
		Reason:  reason,
		AddedAt: now,
	}
	if expiryDays != 0 {
		expires := now.AddDate(0, 0, expiryDays)
		rule.ExpiresAt = &expires
	}

	t.mu.Lock()
	t.rules[rule.Domain] = rule
	t.mu.Unlock()

	t.info("conflict rule added", "domain", rule.Domain, "reason", reason, "expiry_days", expiryDays)
	return rule
}

// RemoveConflictRule drops the rule for a domain and reports whether one existed.
func (t *Tracker) RemoveConflictRule(sponsorDomain string) bool {
	key := domain.NormalizeDomain(sponsorDomain)

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.rules[key]; !ok {
		return false
	}
	delete(t.rules, key)
	return true
}

// ConflictRule returns the stored rule for a domain regardless of expiry.
func (t *Tracker) ConflictRule(sponsorDomain string) (domain.ConflictRule, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	rule, ok := t.rules[domain.NormalizeDomain(sponsorDomain)]
	return rule, ok
}

// ActiveConflicts lists rules active now, sorted by domain.
func (t *Tracker) ActiveConflicts() []domain.ConflictRule {
	now := t.Now()

	t.mu.RLock()
	active := make([]domain.ConflictRule, 0, len(t.rules))
	for _, rule := range t.rules {
		if rule.ActiveAt(now) {
			active = append(active, rule)
		}
	}
	t.mu.RUnlock()

	sort.Slice(active, func(i, j int) bool { return active[i].Domain < active[j].Domain })
	return active
}

// LogOutreach appends an outreach attempt stamped with the tracker clock.
func (t *Tracker) LogOutreach(sponsorDomain, episodeGUID string, kind domain.OutreachType, template domain.TemplateSize, status domain.OutreachStatus, notes string) (domain.OutreachAttempt, error) {
	if !kind.Valid() {
		return domain.OutreachAttempt{}, fmt.Errorf("unknown outreach type %q", kind)
	}
	if !template.Valid() {
		return domain.OutreachAttempt{}, fmt.Errorf("unknown template %q", template)
	}
	if !status.Valid() {
		return domain.OutreachAttempt{}, fmt.Errorf("unknown outreach status %q", status)
	}

	attempt := domain.OutreachAttempt{
		SponsorDomain: domain.NormalizeDomain(sponsorDomain),
		EpisodeGUID:   episodeGUID,
		Type:          kind,
		Template:      template,
		SentAt:        t.Now(),
		Status:        status,
		Notes:         notes,
	}

	t.mu.Lock()
	t.attempts = append(t.attempts, attempt)
	t.mu.Unlock()

	t.info("outreach logged", "domain", attempt.SponsorDomain, "status", status)
	return attempt, nil
}

// SetFollowUp schedules a follow-up on the most recent attempt for the sponsor
// and episode. It reports whether such an attempt exists.
func (t *Tracker) SetFollowUp(sponsorDomain, episodeGUID string, at time.Time) bool {
	sponsor := domain.NormalizeDomain(sponsorDomain)

	t.mu.Lock()
	defer t.mu.Unlock()
	for i := len(t.attempts) - 1; i >= 0; i-- {
		if t.attempts[i].SponsorDomain == sponsor && t.attempts[i].EpisodeGUID == episodeGUID {
			followUp := at
			t.attempts[i].FollowUpAt = &followUp
			return true
		}
	}
	return false
}

// RecentOutreach returns attempts sent within the last days days, oldest first.
func (t *Tracker) RecentOutreach(days int) []domain.OutreachAttempt {
	return t.OutreachSince(t.Now().AddDate(0, 0, -days))
}

// OutreachSince returns attempts with a send time strictly after since.
func (t *Tracker) OutreachSince(since time.Time) []domain.OutreachAttempt {
	t.mu.RLock()
	defer t.mu.RUnlock()

	recent := make([]domain.OutreachAttempt, 0)
	for _, attempt := range t.attempts {
		if attempt.SentAt.After(since) {
			recent = append(recent, attempt)
		}
	}
	return recent
}

// UpdateSponsorAdjacency replaces the list of other podcasts a sponsor appears on.
func (t *Tracker) UpdateSponsorAdjacency(sponsorDomain string, podcasts []string) {
	list := make([]string, len(podcasts))
	copy(list, podcasts)

	t.mu.Lock()
	t.adjacency[domain.NormalizeDomain(sponsorDomain)] = list
	t.mu.Unlock()
}

// Adjacency returns a copy of the podcasts recorded for a domain.
func (t *Tracker) Adjacency(sponsorDomain string) []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	list := t.adjacency[domain.NormalizeDomain(sponsorDomain)]
	out := make([]string, len(list))
	copy(out, list)
	return out
}

// AdjacencyMap returns a deep copy of the whole adjacency map.
func (t *Tracker) AdjacencyMap() map[string][]string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[string][]string, len(t.adjacency))
	for k, v := range t.adjacency {
		list := make([]string, len(v))
		copy(list, v)
		out[k] = list
	}
	return out
}

// RegisterSponsorCategory remembers a sponsor's category so outreach can be
// attributed to categories for fatigue detection.
func (t *Tracker) RegisterSponsorCategory(sponsorDomain, category string) {
	category = strings.TrimSpace(category)
	if category == "" {
		return
	}

	t.mu.Lock()
	t.categories[domain.NormalizeDomain(sponsorDomain)] = category
	t.mu.Unlock()
}

// SponsorCategory returns the category registered for a domain.
func (t *Tracker) SponsorCategory(sponsorDomain string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	category, ok := t.categories[domain.NormalizeDomain(sponsorDomain)]
	return category, ok
}

// RecordExposure notes that an episode report featured the given categories.
func (t *Tracker) RecordExposure(episodeGUID string, categories []string, at time.Time) {
	if at.IsZero() {
		at = t.Now()
	}

	seen := map[string]struct{}{}
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, category := range categories {
		key := strings.ToLower(strings.TrimSpace(category))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		t.exposures = append(t.exposures, domain.CategoryExposure{
			EpisodeGUID: episodeGUID,
			Category:    category,
			At:          at,
		})
	}
}

// Exposures returns category exposures recorded strictly after since.
func (t *Tracker) Exposures(since time.Time) []domain.CategoryExposure {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]domain.CategoryExposure, 0)
	for _, exposure := range t.exposures {
		if exposure.At.After(since) {
			out = append(out, exposure)
		}
	}
	return out
}

func (t *Tracker) info(msg string, args ...interface{}) {
	if t.logger != nil {
		t.logger.Info(msg, args...)
	}
}
