package feed_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"SponsorFinder/internal/config"
	"SponsorFinder/internal/infrastructure/feed"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"
     xmlns:itunes="http://www.itunes.com/dtds/podcast-1.0.dtd"
     xmlns:content="http://purl.org/rss/1.0/modules/content/"
     xmlns:podcast="https://podcastindex.org/namespace/1.0">
  <channel>
    <title>LINUX Unplugged</title>
    <link>https://linuxunplugged.com</link>
    <description>Weekly Linux talk show.</description>
    <podcast:liveItem status="pending" start="2026-03-15T19:00:00Z" end="2026-03-15T21:00:00Z">
      <title>LINUX Unplugged Live</title>
      <guid>live-601</guid>
      <link>https://jblive.tv</link>
      <description>Join us live.</description>
    </podcast:liveItem>
    <item>
      <title>Homelab Storage Deep Dive</title>
      <guid isPermaLink="false">lup-600</guid>
      <link>https://linuxunplugged.com/600</link>
      <pubDate>Sun, 08 Mar 2026 18:00:00 +0000</pubDate>
      <description><![CDATA[<p>ZFS pools</p><p>and NAS boxes</p>]]></description>
      <content:encoded><![CDATA[<ul><li>Nix flakes</li><li>Framework laptop</li></ul><script>x()</script>]]></content:encoded>
      <itunes:keywords>homelab, zfs , nix</itunes:keywords>
      <podcast:transcript url="https://linuxunplugged.com/600/transcript.vtt" type="text/vtt"/>
    </item>
    <item>
      <title>Older Episode</title>
      <link>https://linuxunplugged.com/599</link>
      <pubDate>Sun, 01 Mar 2026 18:00:00 +0000</pubDate>
      <description>Plain text.</description>
      <category>Technology</category>
    </item>
    <item>
      <title>No identity</title>
      <description>Dropped.</description>
    </item>
  </channel>
</rss>`

var _ = Describe("Source", func() {
	var (
		server *httptest.Server
		body   string
		status int
		agent  string
	)

	BeforeEach(func() {
		body = sampleFeed
		status = http.StatusOK
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			agent = r.UserAgent()
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	newSource := func() *feed.Source {
		return feed.NewSource(config.FeedConfig{URL: server.URL, UserAgent: "SponsorFinderTest"}, server.Client(), nil)
	}

	It("parses regular items followed by live items", func() {
		episodes, err := newSource().FetchEpisodes(context.Background(), 10)

		Expect(err).NotTo(HaveOccurred())
		Expect(agent).To(Equal("SponsorFinderTest"))
		Expect(episodes).To(HaveLen(3))

		first := episodes[0]
		Expect(first.GUID).To(Equal("lup-600"))
		Expect(first.Title).To(Equal("Homelab Storage Deep Dive"))
		Expect(first.Description).To(Equal("ZFS pools and NAS boxes"))
		Expect(first.ContentEncoded).To(Equal("Nix flakes Framework laptop"))
		Expect(first.PublishedAt).To(BeTemporally("==", time.Date(2026, time.March, 8, 18, 0, 0, 0, time.UTC)))
		Expect(first.Tags).To(Equal([]string{"homelab", "zfs", "nix"}))
		Expect(first.TranscriptURL).To(Equal("https://linuxunplugged.com/600/transcript.vtt"))
		Expect(first.IsLive).To(BeFalse())

		second := episodes[1]
		Expect(second.GUID).To(Equal("https://linuxunplugged.com/599"))
		Expect(second.Tags).To(Equal([]string{"Technology"}))

		live := episodes[2]
		Expect(live.IsLive).To(BeTrue())
		Expect(live.GUID).To(Equal("live-601"))
		Expect(live.Title).To(Equal("LINUX Unplugged Live"))
		Expect(live.PublishedAt).To(BeTemporally("==", time.Date(2026, time.March, 15, 19, 0, 0, 0, time.UTC)))
	})

	It("applies the limit to regular and live items separately", func() {
		episodes, err := newSource().FetchEpisodes(context.Background(), 1)

		Expect(err).NotTo(HaveOccurred())
		Expect(episodes).To(HaveLen(2))
		Expect(episodes[0].GUID).To(Equal("lup-600"))
		Expect(episodes[1].IsLive).To(BeTrue())
	})

	It("reports non-200 responses", func() {
		status = http.StatusBadGateway

		_, err := newSource().FetchEpisodes(context.Background(), 3)

		Expect(err).To(MatchError(ContainSubstring("502")))
	})

	It("reports unparseable bodies", func() {
		body = "definitely not xml"

		_, err := newSource().FetchEpisodes(context.Background(), 3)

		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("FlattenHTML", func() {
	It("drops markup and collapses whitespace", func() {
		Expect(feed.FlattenHTML("<p>Hello<br>world</p>\n\n<style>p{}</style>")).To(Equal("Hello world"))
		Expect(feed.FlattenHTML("   ")).To(BeEmpty())
	})
})
