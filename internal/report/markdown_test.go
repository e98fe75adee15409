package report

import (
	"strings"
	"testing"
	"time"

	"SponsorFinder/internal/domain"
)

var published = time.Date(2026, time.March, 8, 18, 0, 0, 0, time.UTC)

func sampleEpisode() domain.Episode {
	return domain.NewEpisode(domain.Episode{GUID: "lup-600", Title: "Homelab Storage Deep Dive", PublishedAt: published})
}

func sampleUnderstanding() domain.EpisodeUnderstanding {
	return domain.NewEpisodeUnderstanding(domain.EpisodeUnderstanding{
		EpisodeGUID:             "lup-600",
		EpisodeSummary:          "ZFS, NAS boxes and Nix flakes.",
		CoreThemes:              []string{"homelab", "Nix"},
		AudienceBuyingRationale: "They buy hardware they can own.",
	})
}

func sampleCandidate(t *testing.T) domain.SponsorCandidate {
	t.Helper()
	c, err := domain.NewSponsorCandidate(domain.SponsorCandidate{
		Name:          "Linode",
		Domain:        "linode.com",
		Category:      "hosting",
		EvidenceLinks: []string{"https://linuxunplugged.com/640", "https://www.jupiterbroadcasting.com/sponsors/linode/"},
		ContactInfo:   map[string]string{"form": "https://linode.com/partners", "email": "advertising@linode.com"},
		WhyFit:        "Great fit.",
		SuggestedCTA:  "Pilot buy.",
		OutreachEmail: "Subject: Hello\n\nDear Linode",
	})
	if err != nil {
		t.Fatalf("build candidate: %v", err)
	}
	return c
}

func withoutDateLine(doc string) string {
	lines := strings.Split(doc, "\n")
	out := lines[:0]
	for _, line := range lines {
		if strings.HasPrefix(line, "**Report Date:**") {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func TestRenderZeroCandidates(t *testing.T) {
	t.Parallel()

	doc := NewSynthesizer("").Render(EpisodeReport{
		Episode:       sampleEpisode(),
		Understanding: domain.NewEpisodeUnderstanding(domain.EpisodeUnderstanding{}),
		GeneratedAt:   published,
	})

	if !strings.Contains(doc, "## Top 0 Sponsor Candidates\n") {
		t.Fatalf("missing zero-candidate header:\n%s", doc)
	}
	if strings.Contains(doc, "### 1.") {
		t.Fatalf("no numbered entries expected:\n%s", doc)
	}
	for _, heading := range []string{"### Core Technical Domains\n", "## Do-Not-Contact List\n", "## Category Fatigue Warnings\n"} {
		if !strings.Contains(doc, heading) {
			t.Fatalf("empty section %q must keep its heading", heading)
		}
	}
}

func TestRenderSectionOrder(t *testing.T) {
	t.Parallel()

	doc := NewSynthesizer("LINUX Unplugged").Render(EpisodeReport{
		Episode:         sampleEpisode(),
		Understanding:   sampleUnderstanding(),
		Candidates:      []domain.SponsorCandidate{sampleCandidate(t)},
		FatigueWarnings: []string{"hosting: 3 appearances in last 28 days"},
		GeneratedAt:     published,
	})

	order := []string{
		"# LINUX Unplugged Weekly Sponsor Report",
		"**Report Date:** 2026-03-08",
		"**Episode Analyzed:** Homelab Storage Deep Dive",
		"**Published:** 2026-03-08",
		"## Episode Deep Analysis",
		"### What This Episode Is Really About",
		"### Core Technical Domains",
		"- homelab",
		"### Audience Buying Rationale",
		"## Top 1 Sponsor Candidates",
		"### 1. **Linode** (hosting)",
		"#### Sponsorship Evidence",
		"- https://linuxunplugged.com/640",
		"#### Contact Information",
		"- **Email:** advertising@linode.com",
		"- **Form:** https://linode.com/partners",
		"#### Why This Sponsor Fits",
		"#### Suggested Approach",
		"#### Audience Alignment Proof",
		"#### Adjacent Podcasts",
		"#### Pricing Guidance",
		"Not provided",
		"#### Potential Objections & Framing",
		"#### Outreach Email Template",
		"```\nSubject: Hello\n\nDear Linode\n```",
		"## Do-Not-Contact List",
		"## Category Fatigue Warnings",
		"- hosting: 3 appearances in last 28 days",
	}

	pos := 0
	for _, want := range order {
		idx := strings.Index(doc[pos:], want)
		if idx < 0 {
			t.Fatalf("expected %q after offset %d in:\n%s", want, pos, doc)
		}
		pos += idx + len(want)
	}
}

func TestRenderIsDeterministicApartFromDate(t *testing.T) {
	t.Parallel()

	s := NewSynthesizer("LINUX Unplugged")
	expires := published.AddDate(0, 0, 30)
	input := EpisodeReport{
		Episode:       sampleEpisode(),
		Understanding: sampleUnderstanding(),
		Candidates:    []domain.SponsorCandidate{sampleCandidate(t)},
		DoNotContact: []domain.ConflictRule{
			{Domain: "protonvpn.com", Reason: "contacted", AddedAt: published, ExpiresAt: &expires},
			{Domain: "gitlab.com", Reason: "existing_sponsor", AddedAt: published},
		},
	}

	input.GeneratedAt = published
	first := s.Render(input)
	input.GeneratedAt = published.Add(72 * time.Hour)
	second := s.Render(input)

	if first == second {
		t.Fatalf("report date line should differ")
	}
	if withoutDateLine(first) != withoutDateLine(second) {
		t.Fatalf("content must be identical apart from the report date")
	}
	if !strings.Contains(first, "- protonvpn.com (contacted, added 2026-03-08, until 2026-04-07)") {
		t.Fatalf("unexpected conflict rendering:\n%s", first)
	}
	if !strings.Contains(first, "- gitlab.com (existing_sponsor, added 2026-03-08, no expiry)") {
		t.Fatalf("unexpected permanent conflict rendering:\n%s", first)
	}
}

func TestRenderWeekly(t *testing.T) {
	t.Parallel()

	followUp := published.AddDate(0, 0, 14)
	doc := NewSynthesizer("LINUX Unplugged").RenderWeekly(domain.WeeklyReport{
		ReportDate:         published,
		EpisodesAnalyzed:   []string{"lup-600", "lup-601"},
		TopSponsors:        []domain.SponsorCandidate{sampleCandidate(t)},
		RecentOutreachDays: 7,
		RecentOutreach: []domain.OutreachAttempt{{
			SponsorDomain: "linode.com", Type: domain.OutreachRenewal, Template: domain.TemplateShort,
			SentAt: published, Status: domain.StatusInterested, Notes: "wants Q3",
		}, {
			SponsorDomain: "frame.work", Type: domain.OutreachCold, Template: domain.TemplateMedium,
			SentAt: published, Status: domain.StatusSent, FollowUpAt: &followUp,
		}},
		SponsorAdjacencyMap: map[string][]string{"linode.com": {"Coder Radio", "Self-Hosted"}},
	})

	for _, want := range []string{
		"**Episodes Analyzed:** 2",
		"## Top 1 Sponsors",
		"1. **Linode** (hosting) - linode.com - 2 evidence links",
		"## Recent Outreach (Last 7 Days)",
		"- 2026-03-08: linode.com renewal via short template (interested) - wants Q3",
		"- 2026-03-08: frame.work cold via medium template (sent, follow up 2026-03-22)",
		"- linode.com: Coder Radio, Self-Hosted",
		"## Category Fatigue Warnings",
	} {
		if !strings.Contains(doc, want) {
			t.Fatalf("weekly report missing %q:\n%s", want, doc)
		}
	}
}
