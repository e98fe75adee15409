package report

import (
	"fmt"
	"sort"
	"strings"

	"SponsorFinder/internal/domain"
)

// RenderWeekly produces the roll-up document for a WeeklyReport.
func (s *Synthesizer) RenderWeekly(w domain.WeeklyReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s Weekly Sponsor Roll-up\n\n", s.showName)
	b.WriteString(ReportDateLine(w.ReportDate) + "\n")
	fmt.Fprintf(&b, "**Episodes Analyzed:** %d\n\n", len(w.EpisodesAnalyzed))

	b.WriteString("## Episodes\n\n")
	writeList(&b, w.EpisodesAnalyzed, plainItem)
	b.WriteString("\n")

	fmt.Fprintf(&b, "## Top %d Sponsors\n\n", len(w.TopSponsors))
	for i, c := range w.TopSponsors {
		fmt.Fprintf(&b, "%d. **%s** (%s) - %s - %d evidence links\n", i+1, c.Name, c.Category, c.Domain, len(c.EvidenceLinks))
	}
	b.WriteString("\n")

	b.WriteString("## Do-Not-Contact List\n\n")
	writeConflicts(&b, w.DoNotContact)
	b.WriteString("\n")

	fmt.Fprintf(&b, "## Recent Outreach (Last %d Days)\n\n", w.RecentOutreachDays)
	for _, a := range w.RecentOutreach {
		status := string(a.Status)
		if a.FollowUpAt != nil {
			status += ", follow up " + formatDate(*a.FollowUpAt)
		}
		line := fmt.Sprintf("- %s: %s %s via %s template (%s)", formatDate(a.SentAt), a.SponsorDomain, a.Type, a.Template, status)
		if a.Notes != "" {
			line += " - " + a.Notes
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")

	b.WriteString("## Sponsor Adjacency\n\n")
	domains := make([]string, 0, len(w.SponsorAdjacencyMap))
	for d := range w.SponsorAdjacencyMap {
		domains = append(domains, d)
	}
	sort.Strings(domains)
	for _, d := range domains {
		fmt.Fprintf(&b, "- %s: %s\n", d, strings.Join(w.SponsorAdjacencyMap[d], ", "))
	}
	b.WriteString("\n")

	b.WriteString("## Category Fatigue Warnings\n\n")
	writeList(&b, w.CategoryFatigueWarnings, plainItem)

	return b.String()
}
