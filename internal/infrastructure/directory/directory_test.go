package directory_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"SponsorFinder/internal/config"
	"SponsorFinder/internal/domain"
	"SponsorFinder/internal/infrastructure/directory"
)

const sampleYAML = `
Hosting:
  - name: Linode
    domain: linode.com
    evidence_links:
      - https://linuxunplugged.com/640
    contact_info:
      email: advertising@linode.com
    pricing_guidance: "$3,000 per episode"
storage:
  - name: Backblaze
    domain: backblaze.com
    category: storage
    evidence_links: []
`

var _ = Describe("StaticDirectory", func() {
	It("serves the built-in table case-insensitively", func() {
		dir := directory.NewStaticDirectory()

		records, err := dir.Lookup(context.Background(), "Developer Tools")
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(2))
		Expect(records[0].Domain).To(Equal("gitlab.com"))
		Expect(records[1].ContactInfo).To(HaveKeyWithValue("linkedin", "https://linkedin.com/company/jetbrains"))
	})

	It("returns an empty result for unknown categories", func() {
		records, err := directory.NewStaticDirectory().Lookup(context.Background(), "kitchenware")
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(BeEmpty())
	})

	It("hands out copies", func() {
		dir := directory.NewStaticDirectory()
		first, _ := dir.Lookup(context.Background(), "hosting")
		first[0].EvidenceLinks[0] = "mutated"
		first[0].ContactInfo["email"] = "mutated"

		again, _ := dir.Lookup(context.Background(), "hosting")
		Expect(again[0].EvidenceLinks[0]).To(Equal("https://linuxunplugged.com/640#linode-sponsor"))
		Expect(again[0].ContactInfo["email"]).To(Equal("advertising@linode.com"))
	})
})

var _ = Describe("YAMLDirectory", func() {
	It("parses records keyed by category", func() {
		dir, err := directory.ParseYAMLDirectory("inline", []byte(sampleYAML))
		Expect(err).NotTo(HaveOccurred())

		hosting, err := dir.Lookup(context.Background(), "hosting")
		Expect(err).NotTo(HaveOccurred())
		Expect(hosting).To(HaveLen(1))
		Expect(hosting[0].PricingGuidance).To(Equal("$3,000 per episode"))
		Expect(hosting[0].ContactInfo).To(HaveKeyWithValue("email", "advertising@linode.com"))

		storage, _ := dir.Lookup(context.Background(), "STORAGE")
		Expect(storage).To(HaveLen(1))
		Expect(storage[0].EvidenceLinks).To(BeEmpty())
	})

	It("rejects malformed files", func() {
		_, err := directory.ParseYAMLDirectory("broken", []byte("hosting: [unterminated"))
		Expect(err).To(MatchError(ContainSubstring("parse sponsor directory broken")))
	})

	It("reports missing files", func() {
		_, err := directory.LoadYAMLDirectory(filepath.Join(GinkgoT().TempDir(), "absent.yaml"))
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("SQLiteDirectory", func() {
	var (
		ctx context.Context
		dir *directory.SQLiteDirectory
	)

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		dir, err = directory.OpenSQLiteDirectory(ctx, ":memory:")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(dir.Close)
	})

	It("round-trips records and matches categories case-insensitively", func() {
		pricing := "$4,000 per episode"
		Expect(dir.Upsert(ctx,
			domain.RawSponsorRecord{
				Name: "Tailscale", Domain: "https://www.Tailscale.com/", Category: "Networking",
				EvidenceLinks:    []string{"https://linuxunplugged.com/610"},
				ContactInfo:      map[string]string{"email": "sponsors@tailscale.com"},
				AdjacentPodcasts: []string{"Self-Hosted"},
				PricingGuidance:  pricing,
			},
			domain.RawSponsorRecord{Name: "Cloudflare", Domain: "cloudflare.com", Category: "networking"},
		)).To(Succeed())

		records, err := dir.Lookup(ctx, "NETWORKING")
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(2))
		Expect(records[0].Name).To(Equal("Cloudflare"))
		Expect(records[0].EvidenceLinks).To(BeEmpty())
		Expect(records[1].Domain).To(Equal("tailscale.com"))
		Expect(records[1].Category).To(Equal("Networking"))
		Expect(records[1].EvidenceLinks).To(Equal([]string{"https://linuxunplugged.com/610"}))
		Expect(records[1].ContactInfo).To(HaveKeyWithValue("email", "sponsors@tailscale.com"))
		Expect(records[1].AdjacentPodcasts).To(Equal([]string{"Self-Hosted"}))
		Expect(records[1].PricingGuidance).To(Equal(pricing))
	})

	It("replaces an existing record on upsert", func() {
		record := domain.RawSponsorRecord{Name: "Linode", Domain: "linode.com", Category: "hosting"}
		Expect(dir.Upsert(ctx, record)).To(Succeed())

		record.Name = "Akamai Linode"
		record.EvidenceLinks = []string{"https://linuxunplugged.com/640"}
		Expect(dir.Upsert(ctx, record)).To(Succeed())

		records, err := dir.Lookup(ctx, "hosting")
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(1))
		Expect(records[0].Name).To(Equal("Akamai Linode"))
		Expect(records[0].EvidenceLinks).To(HaveLen(1))
	})

	It("treats categories differing only in case as the same key", func() {
		Expect(dir.Upsert(ctx, domain.RawSponsorRecord{Name: "Linode", Domain: "linode.com", Category: "hosting"})).To(Succeed())
		Expect(dir.Upsert(ctx, domain.RawSponsorRecord{Name: "Linode", Domain: "linode.com", Category: "Hosting"})).To(Succeed())

		records, err := dir.Lookup(ctx, "hosting")
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(1))
		Expect(records[0].Category).To(Equal("Hosting"))
	})

	It("can be seeded from the built-in table", func() {
		seeded, err := dir.SeedIfEmpty(ctx, directory.NewStaticDirectory().Records()...)
		Expect(err).NotTo(HaveOccurred())
		Expect(seeded).To(BeTrue())

		records, err := dir.Lookup(ctx, "hardware")
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(1))
		Expect(records[0].Domain).To(Equal("frame.work"))

		n, err := dir.Count(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(5))
	})

	It("leaves a populated table alone when seeding", func() {
		Expect(dir.Upsert(ctx, domain.RawSponsorRecord{Name: "Tailscale", Domain: "tailscale.com", Category: "Networking"})).To(Succeed())

		seeded, err := dir.SeedIfEmpty(ctx, directory.NewStaticDirectory().Records()...)
		Expect(err).NotTo(HaveOccurred())
		Expect(seeded).To(BeFalse())

		records, err := dir.Lookup(ctx, "hardware")
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(BeEmpty())
	})
})

var _ = Describe("Registry", func() {
	It("opens the configured kind", func() {
		path := filepath.Join(GinkgoT().TempDir(), "sponsors.yaml")
		Expect(os.WriteFile(path, []byte(sampleYAML), 0o600)).To(Succeed())

		dir, closer, err := directory.DefaultRegistry().Open(context.Background(), config.DirectoryConfig{Kind: config.DirectoryYAML, Path: path})
		Expect(err).NotTo(HaveOccurred())
		Expect(closer.Close()).To(Succeed())

		records, err := dir.Lookup(context.Background(), "hosting")
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(1))
	})

	It("seeds a fresh sqlite database with the built-in records", func() {
		dir, closer, err := directory.DefaultRegistry().Open(context.Background(), config.DirectoryConfig{Kind: config.DirectorySQLite, DSN: ":memory:"})
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(closer.Close)

		records, err := dir.Lookup(context.Background(), "Hardware")
		Expect(err).NotTo(HaveOccurred())
		Expect(records).To(HaveLen(1))
		Expect(records[0].Name).To(Equal("Framework"))
		Expect(records[0].Category).To(Equal("hardware"))
	})

	It("rejects unknown kinds", func() {
		_, closer, err := directory.DefaultRegistry().Open(context.Background(), config.DirectoryConfig{Kind: "ldap"})
		Expect(err).To(MatchError(directory.ErrUnknownDirectory))
		Expect(closer).NotTo(BeNil())
	})

	It("lists registered kinds", func() {
		Expect(directory.DefaultRegistry().Kinds()).To(Equal([]string{"sqlite", "static", "yaml"}))
	})
})
