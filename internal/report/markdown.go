package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"SponsorFinder/internal/domain"
)

const (
	dateLayout        = "2006-01-02"
	defaultShowName   = "LINUX Unplugged"
	noPricingGuidance = "Not provided"
)

// EpisodeReport carries everything rendered into one episode document.
// GeneratedAt only affects the "Report Date" line.
type EpisodeReport struct {
	Episode         domain.Episode
	Understanding   domain.EpisodeUnderstanding
	Candidates      []domain.SponsorCandidate
	DoNotContact    []domain.ConflictRule
	FatigueWarnings []string
	GeneratedAt     time.Time
}

// Synthesizer renders reports as Markdown.
type Synthesizer struct {
	showName string
}

// NewSynthesizer builds a renderer for the named show.
func NewSynthesizer(showName string) *Synthesizer {
	if strings.TrimSpace(showName) == "" {
		showName = defaultShowName
	}
	return &Synthesizer{showName: showName}
}

// ReportDateLine returns the only line of a rendered report that depends on GeneratedAt.
func ReportDateLine(generatedAt time.Time) string {
	return fmt.Sprintf("**Report Date:** %s", generatedAt.UTC().Format(dateLayout))
}

// Render produces the episode document. It never fails; empty inputs render as empty sections.
func (s *Synthesizer) Render(r EpisodeReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s Weekly Sponsor Report\n\n", s.showName)
	b.WriteString(ReportDateLine(r.GeneratedAt) + "\n")
	fmt.Fprintf(&b, "**Episode Analyzed:** %s\n", r.Episode.Title)
	fmt.Fprintf(&b, "**Published:** %s\n", formatDate(r.Episode.PublishedAt))
	if r.Episode.IsLive {
		b.WriteString("**Status:** Live / scheduled\n")
	}
	b.WriteString("\n")

	b.WriteString("## Episode Deep Analysis\n\n")
	b.WriteString("### What This Episode Is Really About\n")
	b.WriteString(r.Understanding.EpisodeSummary + "\n\n")
	b.WriteString("### Core Technical Domains\n")
	writeList(&b, r.Understanding.CoreThemes, plainItem)
	b.WriteString("\n")
	b.WriteString("### Audience Buying Rationale\n")
	b.WriteString(r.Understanding.AudienceBuyingRationale + "\n\n")

	fmt.Fprintf(&b, "## Top %d Sponsor Candidates\n\n", len(r.Candidates))
	for i, c := range r.Candidates {
		writeCandidate(&b, i+1, c)
	}

	b.WriteString("## Do-Not-Contact List\n\n")
	writeConflicts(&b, r.DoNotContact)
	b.WriteString("\n")

	b.WriteString("## Category Fatigue Warnings\n\n")
	writeList(&b, r.FatigueWarnings, plainItem)
	b.WriteString("\n")

	fmt.Fprintf(&b, "---\n*Report generated by %s Sponsor Finder*\n", s.showName)
	b.WriteString("*Phase 1: Ground Truth Extraction + Phase 2: Evidence-Based Discovery*\n")

	return b.String()
}

func writeCandidate(b *strings.Builder, index int, c domain.SponsorCandidate) {
	fmt.Fprintf(b, "### %d. **%s** (%s)\n", index, c.Name, c.Category)
	fmt.Fprintf(b, "**Domain:** %s\n\n", c.Domain)

	b.WriteString("#### Sponsorship Evidence (Last 90 Days)\n")
	writeList(b, c.EvidenceLinks, plainItem)
	b.WriteString("\n")

	b.WriteString("#### Contact Information\n")
	writeContacts(b, c.ContactInfo)
	b.WriteString("\n")

	b.WriteString("#### Why This Sponsor Fits\n")
	b.WriteString(c.WhyFit + "\n\n")

	b.WriteString("#### Suggested Approach\n")
	b.WriteString(c.SuggestedCTA + "\n\n")

	b.WriteString("#### Audience Alignment Proof\n")
	writeList(b, c.ProofSnippets, quotedItem)
	b.WriteString("\n")

	b.WriteString("#### Adjacent Podcasts\n")
	writeList(b, c.AdjacentPodcasts, plainItem)
	b.WriteString("\n")

	b.WriteString("#### Pricing Guidance\n")
	pricing := noPricingGuidance
	if c.PricingGuidance != nil && strings.TrimSpace(*c.PricingGuidance) != "" {
		pricing = *c.PricingGuidance
	}
	b.WriteString(pricing + "\n\n")

	b.WriteString("#### Potential Objections & Framing\n")
	writeList(b, c.PotentialObjections, plainItem)
	b.WriteString("\n")

	b.WriteString("#### Outreach Email Template\n")
	b.WriteString("```\n" + c.OutreachEmail + "\n```\n\n")
	b.WriteString("---\n\n")
}

func writeContacts(b *strings.Builder, contacts map[string]string) {
	keys := make([]string, 0, len(contacts))
	for k := range contacts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	caser := cases.Title(language.English)
	for _, k := range keys {
		fmt.Fprintf(b, "- **%s:** %s\n", caser.String(k), contacts[k])
	}
}

func writeConflicts(b *strings.Builder, rules []domain.ConflictRule) {
	for _, rule := range rules {
		expiry := "no expiry"
		if rule.ExpiresAt != nil {
			expiry = "until " + formatDate(*rule.ExpiresAt)
		}
		fmt.Fprintf(b, "- %s (%s, added %s, %s)\n", rule.Domain, rule.Reason, formatDate(rule.AddedAt), expiry)
	}
}

func plainItem(s string) string  { return s }
func quotedItem(s string) string { return fmt.Sprintf("*\"%s\"*", s) }

func writeList(b *strings.Builder, items []string, format func(string) string) {
	for _, item := range items {
		b.WriteString("- " + format(item) + "\n")
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "unknown"
	}
	return t.UTC().Format(dateLayout)
}
