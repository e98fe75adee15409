package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoEvidence marks a sponsor without a single sponsorship citation.
	ErrNoEvidence = errors.New("sponsor has no evidence links")
	// ErrMalformedRecord marks a directory record missing its name or domain.
	ErrMalformedRecord = errors.New("sponsor record is missing name or domain")
)

// RawSponsorRecord is what a sponsor directory returns for a category.
type RawSponsorRecord struct {
	Name                string            `yaml:"name" json:"name"`
	Domain              string            `yaml:"domain" json:"domain"`
	Category            string            `yaml:"category" json:"category"`
	EvidenceLinks       []string          `yaml:"evidence_links" json:"evidence_links"`
	ContactInfo         map[string]string `yaml:"contact_info" json:"contact_info"`
	ProofSnippets       []string          `yaml:"proof_snippets,omitempty" json:"proof_snippets,omitempty"`
	AdjacentPodcasts    []string          `yaml:"adjacent_podcasts,omitempty" json:"adjacent_podcasts,omitempty"`
	PricingGuidance     string            `yaml:"pricing_guidance,omitempty" json:"pricing_guidance,omitempty"`
	PotentialObjections []string          `yaml:"potential_objections,omitempty" json:"potential_objections,omitempty"`
}

// SponsorCandidate is one actionable sponsor lead. Build it with NewSponsorCandidate.
type SponsorCandidate struct {
	Name                string
	Domain              string
	Category            string
	EvidenceLinks       []string
	ContactInfo         map[string]string
	WhyFit              string
	SuggestedCTA        string
	OutreachEmail       string
	ProofSnippets       []string
	AdjacentPodcasts    []string
	PricingGuidance     *string
	PotentialObjections []string
}

// IsValid reports whether the candidate carries at least one evidence link.
func (c SponsorCandidate) IsValid() bool {
	return len(c.EvidenceLinks) > 0
}

// NewSponsorCandidate validates and copies c. A candidate without evidence is never returned.
func NewSponsorCandidate(c SponsorCandidate) (SponsorCandidate, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Domain = NormalizeDomain(c.Domain)
	if c.Name == "" || c.Domain == "" {
		return SponsorCandidate{}, ErrMalformedRecord
	}

	links := make([]string, 0, len(c.EvidenceLinks))
	for _, link := range c.EvidenceLinks {
		if link = strings.TrimSpace(link); link != "" {
			links = append(links, link)
		}
	}
	if len(links) == 0 {
		return SponsorCandidate{}, fmt.Errorf("%s: %w", c.Domain, ErrNoEvidence)
	}

	c.EvidenceLinks = links
	c.ContactInfo = cloneMap(c.ContactInfo)
	c.ProofSnippets = cloneStrings(c.ProofSnippets)
	c.AdjacentPodcasts = cloneStrings(c.AdjacentPodcasts)
	c.PotentialObjections = cloneStrings(c.PotentialObjections)
	if c.PricingGuidance != nil {
		pricing := *c.PricingGuidance
		c.PricingGuidance = &pricing
	}
	return c, nil
}

// NormalizeDomain lower-cases a domain and strips scheme, "www." and any path.
func NormalizeDomain(d string) string {
	d = strings.ToLower(strings.TrimSpace(d))
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	d = strings.TrimPrefix(d, "www.")
	if i := strings.IndexByte(d, '/'); i >= 0 {
		d = d[:i]
	}
	return d
}
