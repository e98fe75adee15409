package domain

import "time"

// Episode is a core entity describing one podcast item fetched from the feed.
type Episode struct {
	GUID           string
	Title          string
	Description    string
	ContentEncoded string
	PublishedAt    time.Time
	Link           string
	IsLive         bool
	TranscriptURL  string
	Tags           []string
}

// NewEpisode copies tags so the episode never shares or exposes a nil slice.
func NewEpisode(e Episode) Episode {
	e.Tags = cloneStrings(e.Tags)
	return e
}

// EpisodeUnderstanding is the structured extraction downstream discovery consumes.
type EpisodeUnderstanding struct {
	EpisodeGUID             string
	EpisodeSummary          string
	CoreThemes              []string
	SponsorCategories       []string
	Keywords                []string
	NegativeKeywords        []string
	AudienceBuyingRationale string
}

// NewEpisodeUnderstanding normalizes sequence fields to non-nil copies.
func NewEpisodeUnderstanding(u EpisodeUnderstanding) EpisodeUnderstanding {
	u.CoreThemes = cloneStrings(u.CoreThemes)
	u.SponsorCategories = cloneStrings(u.SponsorCategories)
	u.Keywords = cloneStrings(u.Keywords)
	u.NegativeKeywords = cloneStrings(u.NegativeKeywords)
	return u
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
