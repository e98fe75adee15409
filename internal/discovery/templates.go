package discovery

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"SponsorFinder/internal/domain"
)

const summaryExcerptRunes = 200

func whyFit(showName string, record domain.RawSponsorRecord, u domain.EpisodeUnderstanding) string {
	return fmt.Sprintf("%s is an excellent fit for this episode because the discussion heavily featured %s topics like %s. The %s audience consists of technical practitioners who value %s. %s serves exactly this audience with their %s solutions.",
		record.Name,
		record.Category,
		joinOr(firstN(u.CoreThemes, 3), "open source technology"),
		showName,
		rationaleClause(u.AudienceBuyingRationale),
		record.Name,
		record.Category,
	)
}

func suggestedCTA(u domain.EpisodeUnderstanding) string {
	return fmt.Sprintf("Reach out for an introductory sponsorship discussion. Given the episode's focus on %s, this would be a natural fit for a pilot sponsorship.",
		joinOr(firstN(u.CoreThemes, 2), "open source technology"))
}

func outreachEmail(showName string, record domain.RawSponsorRecord, u domain.EpisodeUnderstanding) string {
	focus := "Technology"
	if len(u.CoreThemes) > 0 && strings.TrimSpace(u.CoreThemes[0]) != "" {
		focus = cases.Title(language.English).String(u.CoreThemes[0])
	}

	return fmt.Sprintf(`Subject: %[1]s Sponsorship Opportunity - %[2]s Focus

Dear %[3]s Partnership Team,

I hope this email finds you well. I'm reaching out regarding a potential sponsorship opportunity with %[1]s, a weekly Linux and open source technology podcast with [X] active listeners.

Our most recent episode focused on %[4]s...

Given %[3]s's position as a leader in %[5]s, I believe there would be strong alignment with our audience of technical practitioners who regularly work with these technologies.

Would you be open to discussing sponsorship opportunities for upcoming episodes?

Best regards,
[Your Name]
%[1]s Partnership Outreach`,
		showName,
		focus,
		record.Name,
		truncateRunes(u.EpisodeSummary, summaryExcerptRunes),
		record.Category,
	)
}

// rationaleClause returns the first sentence of the rationale, lower-cased.
func rationaleClause(rationale string) string {
	rationale = strings.TrimSpace(rationale)
	if i := strings.IndexByte(rationale, '.'); i >= 0 {
		rationale = rationale[:i]
	}
	if rationale == "" {
		return "practical, well-supported tools"
	}
	return strings.ToLower(rationale)
}

func firstN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}

func joinOr(items []string, fallback string) string {
	if len(items) == 0 {
		return fallback
	}
	return strings.Join(items, ", ")
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
