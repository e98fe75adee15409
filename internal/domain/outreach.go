package domain

import "time"

// ConflictRule is a per-domain do-not-contact directive.
type ConflictRule struct {
	Domain    string
	Reason    string
	AddedAt   time.Time
	ExpiresAt *time.Time
}

// ActiveAt reports whether the rule still blocks outreach at t.
func (r ConflictRule) ActiveAt(t time.Time) bool {
	return r.ExpiresAt == nil || r.ExpiresAt.After(t)
}

// OutreachType enumerates why a sponsor was contacted.
type OutreachType string

const (
	OutreachCold     OutreachType = "cold"
	OutreachRenewal  OutreachType = "renewal"
	OutreachFollowup OutreachType = "followup"
)

// Valid reports whether t is a known outreach type.
func (t OutreachType) Valid() bool {
	switch t {
	case OutreachCold, OutreachRenewal, OutreachFollowup:
		return true
	}
	return false
}

// TemplateSize enumerates the outreach email variants.
type TemplateSize string

const (
	TemplateShort  TemplateSize = "short"
	TemplateMedium TemplateSize = "medium"
	TemplateLong   TemplateSize = "long"
)

// Valid reports whether s is a known template size.
func (s TemplateSize) Valid() bool {
	switch s {
	case TemplateShort, TemplateMedium, TemplateLong:
		return true
	}
	return false
}

// OutreachStatus enumerates outreach milestones.
type OutreachStatus string

const (
	StatusSent       OutreachStatus = "sent"
	StatusResponded  OutreachStatus = "responded"
	StatusDeclined   OutreachStatus = "declined"
	StatusInterested OutreachStatus = "interested"
	StatusNoResponse OutreachStatus = "no_response"
)

// Valid reports whether s is a known outreach status.
func (s OutreachStatus) Valid() bool {
	switch s {
	case StatusSent, StatusResponded, StatusDeclined, StatusInterested, StatusNoResponse:
		return true
	}
	return false
}

// OutreachAttempt is an append-only log entry.
type OutreachAttempt struct {
	SponsorDomain string
	EpisodeGUID   string
	Type          OutreachType
	Template      TemplateSize
	SentAt        time.Time
	Status        OutreachStatus
	Notes         string
	FollowUpAt    *time.Time
}

// CategoryExposure records that an episode report featured a sponsor category.
type CategoryExposure struct {
	EpisodeGUID string
	Category    string
	At          time.Time
}

// WeeklyReport is the roll-up snapshot across analyzed episodes.
type WeeklyReport struct {
	ReportDate              time.Time
	EpisodesAnalyzed        []string
	TopSponsors             []SponsorCandidate
	DoNotContact            []ConflictRule
	RecentOutreach          []OutreachAttempt
	RecentOutreachDays      int
	SponsorAdjacencyMap     map[string][]string
	CategoryFatigueWarnings []string
}
