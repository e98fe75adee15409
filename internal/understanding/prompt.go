package understanding

import (
	"encoding/json"
	"fmt"
	"strings"

	"SponsorFinder/internal/domain"
)

const systemPrompt = `You analyze podcast episodes for sponsor development. You answer with a single JSON object and nothing else.`

const instructionTemplate = `Analyze this %s podcast episode and extract ground truth understanding.

EPISODE CONTENT:
%s

Produce a JSON object with exactly these keys:

{
  "episode_summary": "1-2 paragraph plain-English summary of what the episode is actually about",
  "core_themes": ["primary technical domains like Linux desktop", "Nix", "security", "AI", "hardware", "homelab", "privacy"],
  "sponsor_categories": ["hosting", "password managers", "VPNs", "developer tools", "storage", "hardware"],
  "keywords": ["positive keywords for sponsor discovery"],
  "negative_keywords": ["terms/categories to explicitly avoid"],
  "audience_buying_rationale": "short reusable paragraph explaining why this audience buys products/services in these categories"
}

Focus on what the episode is REALLY about, not just the title. Infer audience intent and purchasing mindset.`

// payload is the JSON object the provider must return.
type payload struct {
	EpisodeSummary          string   `json:"episode_summary" jsonschema:"description=Plain-English summary of the episode"`
	CoreThemes              []string `json:"core_themes" jsonschema:"description=Primary technical domains"`
	SponsorCategories       []string `json:"sponsor_categories" jsonschema:"description=Sponsor categories that fit the audience"`
	Keywords                []string `json:"keywords" jsonschema:"description=Positive keywords for sponsor discovery"`
	NegativeKeywords        []string `json:"negative_keywords" jsonschema:"description=Terms or categories to avoid"`
	AudienceBuyingRationale string   `json:"audience_buying_rationale" jsonschema:"description=Why this audience buys in these categories"`
}

// episodeContent joins the episode fields into the prompt body, truncated to budget runes.
func episodeContent(episode domain.Episode, budget int) string {
	parts := []string{
		"Title: " + episode.Title,
		"Description: " + episode.Description,
	}
	if strings.TrimSpace(episode.ContentEncoded) != "" {
		parts = append(parts, "Show Notes: "+episode.ContentEncoded)
	}
	if len(episode.Tags) > 0 {
		parts = append(parts, "Tags: "+strings.Join(episode.Tags, ", "))
	}

	content := strings.Join(parts, "\n\n")
	if budget > 0 {
		runes := []rune(content)
		if len(runes) > budget {
			content = string(runes[:budget])
		}
	}
	return content
}

func buildPrompt(showName string, episode domain.Episode, budget int) string {
	return fmt.Sprintf(instructionTemplate, showName, episodeContent(episode, budget))
}

// parsePayload decodes the completion text. A surrounding Markdown code fence is tolerated.
func parsePayload(guid, content string) (domain.EpisodeUnderstanding, error) {
	content = stripCodeFence(content)
	if content == "" {
		return domain.EpisodeUnderstanding{}, fmt.Errorf("empty completion")
	}
	if !strings.HasPrefix(content, "{") {
		return domain.EpisodeUnderstanding{}, fmt.Errorf("completion is not a JSON object")
	}

	var p payload
	if err := json.Unmarshal([]byte(content), &p); err != nil {
		return domain.EpisodeUnderstanding{}, fmt.Errorf("decode understanding: %w", err)
	}

	return domain.NewEpisodeUnderstanding(domain.EpisodeUnderstanding{
		EpisodeGUID:             guid,
		EpisodeSummary:          p.EpisodeSummary,
		CoreThemes:              p.CoreThemes,
		SponsorCategories:       p.SponsorCategories,
		Keywords:                p.Keywords,
		NegativeKeywords:        p.NegativeKeywords,
		AudienceBuyingRationale: p.AudienceBuyingRationale,
	}), nil
}

func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```")
	if nl := strings.IndexByte(content, '\n'); nl >= 0 {
		content = content[nl+1:]
	}
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}
