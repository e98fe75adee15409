package understanding

import (
	"fmt"
	"regexp"
	"strings"

	"SponsorFinder/internal/domain"
)

type themeRule struct {
	theme    string
	keywords []string
}

// themeTable is iterated in order; matched themes keep this order.
var themeTable = []themeRule{
	{"Linux desktop", []string{"linux", "desktop", "gui", "wayland", "xorg", "kde", "gnome"}},
	{"containers", []string{"docker", "kubernetes", "container", "podman", "containerd"}},
	{"homelab", []string{"homelab", "self-hosted", "server", "nas", "storage"}},
	{"security", []string{"security", "privacy", "vpn", "encryption", "password"}},
	{"cloud", []string{"cloud", "aws", "azure", "gcp", "hosting"}},
	{"AI", []string{"ai", "machine learning", "llm", "chatgpt", "anthropic"}},
	{"hardware", []string{"hardware", "laptop", "server", "raspberry pi", "nvidia"}},
	{"Nix", []string{"nix", "nixos", "flakes", "declarative"}},
	{"privacy", []string{"privacy", "surveillance", "tracking", "anonymous"}},
}

var themeCategories = map[string][]string{
	"Linux desktop": {"developer tools", "hardware"},
	"containers":    {"developer tools", "hosting"},
	"homelab":       {"hardware", "storage", "hosting"},
	"security":      {"security software", "vpn services"},
	"cloud":         {"hosting", "cloud services"},
	"AI":            {"developer tools", "cloud services"},
	"hardware":      {"hardware", "laptops", "servers"},
	"Nix":           {"developer tools", "hosting"},
	"privacy":       {"security software", "vpn services"},
}

// NegativeKeywords is the fixed avoid-list used by the heuristic.
var NegativeKeywords = []string{"windows", "macos", "iphone", "android app"}

var keywordPatterns = compileKeywordPatterns()

func compileKeywordPatterns() map[string]*regexp.Regexp {
	patterns := map[string]*regexp.Regexp{}
	for _, rule := range themeTable {
		for _, kw := range rule.keywords {
			if _, ok := patterns[kw]; ok {
				continue
			}
			patterns[kw] = regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `(?:s|es)?\b`)
		}
	}
	return patterns
}

// Heuristic derives an understanding from title and description alone. It is
// deterministic: identical episodes always yield identical results.
func Heuristic(episode domain.Episode, showName string) domain.EpisodeUnderstanding {
	text := strings.ToLower(episode.Title + " " + episode.Description)

	var (
		themes     []string
		categories []string
		keywords   []string
	)
	seenCategory := map[string]struct{}{}
	seenKeyword := map[string]struct{}{}

	for _, rule := range themeTable {
		var hits []string
		for _, kw := range rule.keywords {
			if keywordPatterns[kw].MatchString(text) {
				hits = append(hits, kw)
			}
		}
		if len(hits) == 0 {
			continue
		}

		themes = append(themes, rule.theme)
		for _, category := range themeCategories[rule.theme] {
			if _, ok := seenCategory[category]; ok {
				continue
			}
			seenCategory[category] = struct{}{}
			categories = append(categories, category)
		}
		for _, kw := range hits {
			if _, ok := seenKeyword[kw]; ok {
				continue
			}
			seenKeyword[kw] = struct{}{}
			keywords = append(keywords, kw)
		}
	}

	return domain.NewEpisodeUnderstanding(domain.EpisodeUnderstanding{
		EpisodeGUID:             episode.GUID,
		EpisodeSummary:          heuristicSummary(themes),
		CoreThemes:              themes,
		SponsorCategories:       categories,
		Keywords:                keywords,
		NegativeKeywords:        NegativeKeywords,
		AudienceBuyingRationale: heuristicRationale(showName, themes),
	})
}

func heuristicSummary(themes []string) string {
	topics := "various Linux and open source topics"
	if len(themes) > 0 {
		topics = strings.Join(themes, ", ")
	}
	return fmt.Sprintf("This episode explores %s. The discussion covers practical implementation, community insights, and technical deep dives that would interest both newcomers and experienced practitioners.", topics)
}

func heuristicRationale(showName string, themes []string) string {
	if strings.TrimSpace(showName) == "" {
		showName = defaultShowName
	}
	focus := "open source tooling"
	if len(themes) > 0 {
		focus = strings.Join(themes, ", ")
	}
	return fmt.Sprintf("%s listeners are technical practitioners who value reliability, open source ethos, and practical solutions. They make purchasing decisions based on community validation, technical merit, and alignment with their self-hosted, privacy-conscious lifestyle. Recent interest centres on %s, and they prefer vendors who understand developer needs and support open source communities.", showName, focus)
}
