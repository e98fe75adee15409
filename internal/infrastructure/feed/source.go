package feed

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"

	"SponsorFinder/internal/config"
	"SponsorFinder/internal/domain"
	"SponsorFinder/internal/ports"
)

const podcastNS = "podcast"

// Source implements ports.EpisodeSource over a podcast RSS feed, including
// podcast:liveItem entries for scheduled live shows.
type Source struct {
	client    *http.Client
	parser    *gofeed.Parser
	url       string
	userAgent string
	now       func() time.Time
	logger    *slog.Logger
}

var _ ports.EpisodeSource = (*Source)(nil)

// NewSource wires an HTTP client; a nil client gets the configured timeout.
func NewSource(cfg config.FeedConfig, client *http.Client, log *slog.Logger) *Source {
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Source{
		client:    client,
		parser:    gofeed.NewParser(),
		url:       cfg.URL,
		userAgent: cmp.Or(cfg.UserAgent, "SponsorFinder/1.0"),
		now:       time.Now,
		logger:    log,
	}
}

// FetchEpisodes returns up to limit regular items followed by up to limit live items.
// Items without a guid or link are dropped.
func (s *Source) FetchEpisodes(ctx context.Context, limit int) ([]domain.Episode, error) {
	feed, err := s.fetchFeed(ctx)
	if err != nil {
		return nil, err
	}

	episodes := make([]domain.Episode, 0, len(feed.Items))
	for _, item := range firstN(feed.Items, limit) {
		ep, ok := s.fromItem(item)
		if !ok {
			s.debug("skip feed item without guid", "title", item.Title)
			continue
		}
		episodes = append(episodes, ep)
	}

	for _, live := range firstN(liveItems(feed), limit) {
		ep, ok := s.fromLiveItem(live)
		if !ok {
			continue
		}
		episodes = append(episodes, ep)
	}

	s.debug("feed parsed", "title", feed.Title, "episodes", len(episodes))
	return episodes, nil
}

func (s *Source) fetchFeed(ctx context.Context) (*gofeed.Feed, error) {
	if s.url == "" {
		return nil, fmt.Errorf("feed url is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned %s", resp.Status)
	}

	feed, err := s.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed, nil
}

func (s *Source) fromItem(item *gofeed.Item) (domain.Episode, bool) {
	guid := cmp.Or(strings.TrimSpace(item.GUID), strings.TrimSpace(item.Link))
	if guid == "" {
		return domain.Episode{}, false
	}

	published := s.now().UTC()
	if item.PublishedParsed != nil {
		published = item.PublishedParsed.UTC()
	}

	return domain.NewEpisode(domain.Episode{
		GUID:           guid,
		Title:          cmp.Or(item.Title, "Unknown Title"),
		Description:    FlattenHTML(item.Description),
		ContentEncoded: FlattenHTML(item.Content),
		PublishedAt:    published,
		Link:           item.Link,
		TranscriptURL:  transcriptURL(item.Extensions),
		Tags:           itemTags(item),
	}), true
}

func (s *Source) fromLiveItem(live ext.Extension) (domain.Episode, bool) {
	guid := cmp.Or(childValue(live, "guid"), childValue(live, "link"))
	if guid == "" {
		return domain.Episode{}, false
	}

	published := s.now().UTC()
	if start, err := time.Parse(time.RFC3339, live.Attrs["start"]); err == nil {
		published = start.UTC()
	}

	return domain.NewEpisode(domain.Episode{
		GUID:        guid,
		Title:       cmp.Or(childValue(live, "title"), "Unknown Title"),
		Description: FlattenHTML(childValue(live, "description")),
		PublishedAt: published,
		Link:        childValue(live, "link"),
		IsLive:      true,
	}), true
}

// FlattenHTML reduces show-note markup to whitespace-normalized text.
func FlattenHTML(markup string) string {
	if strings.TrimSpace(markup) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return strings.Join(strings.Fields(markup), " ")
	}
	doc.Find("script, style").Remove()
	// Block elements would otherwise glue adjacent words together.
	doc.Find("p, li, br, div, h1, h2, h3, h4").Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml(" ")
	})
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func itemTags(item *gofeed.Item) []string {
	if item.ITunesExt != nil && strings.TrimSpace(item.ITunesExt.Keywords) != "" {
		var tags []string
		for _, k := range strings.Split(item.ITunesExt.Keywords, ",") {
			if k = strings.TrimSpace(k); k != "" {
				tags = append(tags, k)
			}
		}
		return tags
	}
	return item.Categories
}

func liveItems(feed *gofeed.Feed) []ext.Extension {
	if feed.Extensions == nil {
		return nil
	}
	return feed.Extensions[podcastNS]["liveItem"]
}

func transcriptURL(exts ext.Extensions) string {
	if exts == nil {
		return ""
	}
	for _, t := range exts[podcastNS]["transcript"] {
		if u := strings.TrimSpace(t.Attrs["url"]); u != "" {
			return u
		}
	}
	return ""
}

func childValue(e ext.Extension, name string) string {
	for _, child := range e.Children[name] {
		if v := strings.TrimSpace(child.Value); v != "" {
			return v
		}
	}
	return ""
}

func firstN[T any](items []T, n int) []T {
	if n >= 0 && len(items) > n {
		return items[:n]
	}
	return items
}

func (s *Source) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
