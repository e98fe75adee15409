package directory

import (
	"context"
	"strings"

	"SponsorFinder/internal/domain"
	"SponsorFinder/internal/ports"
)

// StaticDirectory serves the built-in sponsor table known to have run ads on the show.
type StaticDirectory struct {
	records map[string][]domain.RawSponsorRecord
}

var _ ports.SponsorDirectory = (*StaticDirectory)(nil)

// NewStaticDirectory returns the built-in table.
func NewStaticDirectory() *StaticDirectory {
	return NewMemoryDirectory(builtinSponsors())
}

// NewMemoryDirectory serves the given records; categories are matched case-insensitively.
func NewMemoryDirectory(records map[string][]domain.RawSponsorRecord) *StaticDirectory {
	return &StaticDirectory{records: byLowerCategory(records)}
}

// Lookup returns copies of the records for category, or none.
func (s *StaticDirectory) Lookup(_ context.Context, category string) ([]domain.RawSponsorRecord, error) {
	found := s.records[strings.ToLower(strings.TrimSpace(category))]
	out := make([]domain.RawSponsorRecord, 0, len(found))
	for _, r := range found {
		out = append(out, cloneRecord(r))
	}
	return out, nil
}

// Records returns every record, for seeding other backends.
func (s *StaticDirectory) Records() []domain.RawSponsorRecord {
	var out []domain.RawSponsorRecord
	for category, records := range s.records {
		for _, r := range records {
			r = cloneRecord(r)
			if r.Category == "" {
				r.Category = category
			}
			out = append(out, r)
		}
	}
	return out
}

func byLowerCategory(in map[string][]domain.RawSponsorRecord) map[string][]domain.RawSponsorRecord {
	out := make(map[string][]domain.RawSponsorRecord, len(in))
	for category, records := range in {
		key := strings.ToLower(strings.TrimSpace(category))
		out[key] = append(out[key], records...)
	}
	return out
}

func cloneRecord(r domain.RawSponsorRecord) domain.RawSponsorRecord {
	r.EvidenceLinks = append([]string(nil), r.EvidenceLinks...)
	r.ProofSnippets = append([]string(nil), r.ProofSnippets...)
	r.AdjacentPodcasts = append([]string(nil), r.AdjacentPodcasts...)
	r.PotentialObjections = append([]string(nil), r.PotentialObjections...)
	if r.ContactInfo != nil {
		contacts := make(map[string]string, len(r.ContactInfo))
		for k, v := range r.ContactInfo {
			contacts[k] = v
		}
		r.ContactInfo = contacts
	}
	return r
}

func builtinSponsors() map[string][]domain.RawSponsorRecord {
	return map[string][]domain.RawSponsorRecord{
		"developer tools": {
			{
				Name:     "GitLab",
				Domain:   "gitlab.com",
				Category: "developer tools",
				EvidenceLinks: []string{
					"https://linuxunplugged.com/645#gitlab-sponsor",
					"https://www.jupiterbroadcasting.com/sponsors/",
				},
				ContactInfo: map[string]string{
					"email": "partnerships@gitlab.com",
					"form":  "https://about.gitlab.com/partners/sponsorship/",
				},
			},
			{
				Name:          "JetBrains",
				Domain:        "jetbrains.com",
				Category:      "developer tools",
				EvidenceLinks: []string{"https://www.jetbrains.com/company/partners/podcast/"},
				ContactInfo: map[string]string{
					"email":    "sponsorship@jetbrains.com",
					"linkedin": "https://linkedin.com/company/jetbrains",
				},
			},
		},
		"hosting": {
			{
				Name:     "Linode",
				Domain:   "linode.com",
				Category: "hosting",
				EvidenceLinks: []string{
					"https://linuxunplugged.com/640#linode-sponsor",
					"https://www.jupiterbroadcasting.com/sponsors/linode/",
				},
				ContactInfo: map[string]string{"email": "advertising@linode.com"},
			},
		},
		"security software": {
			{
				Name:          "ProtonVPN",
				Domain:        "protonvpn.com",
				Category:      "security software",
				EvidenceLinks: []string{"https://linuxunplugged.com/635#protonvpn-sponsor"},
				ContactInfo:   map[string]string{"email": "partnerships@proton.me"},
			},
		},
		"hardware": {
			{
				Name:          "Framework",
				Domain:        "frame.work",
				Category:      "hardware",
				EvidenceLinks: []string{"https://www.jupiterbroadcasting.com/sponsors/framework/"},
				ContactInfo:   map[string]string{"email": "partnerships@frame.work"},
			},
		},
	}
}
