package directory

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"SponsorFinder/internal/domain"
	"SponsorFinder/internal/ports"
)

const sponsorsTable = "sponsors"

const schema = `CREATE TABLE IF NOT EXISTS sponsors (
    domain               TEXT NOT NULL,
    category             TEXT NOT NULL COLLATE NOCASE,
    name                 TEXT NOT NULL,
    evidence_links       TEXT NOT NULL DEFAULT '[]',
    contact_info         TEXT NOT NULL DEFAULT '{}',
    proof_snippets       TEXT NOT NULL DEFAULT '[]',
    adjacent_podcasts    TEXT NOT NULL DEFAULT '[]',
    pricing_guidance     TEXT NOT NULL DEFAULT '',
    potential_objections TEXT NOT NULL DEFAULT '[]',
    PRIMARY KEY (domain, category)
)`

var sponsorColumns = []string{
	"name", "domain", "category", "evidence_links", "contact_info",
	"proof_snippets", "adjacent_podcasts", "pricing_guidance", "potential_objections",
}

// SQLiteDirectory serves sponsor records from a SQLite table.
type SQLiteDirectory struct {
	db *sql.DB
}

var _ ports.SponsorDirectory = (*SQLiteDirectory)(nil)

// OpenSQLiteDirectory opens dsn and ensures the sponsors table exists.
func OpenSQLiteDirectory(ctx context.Context, dsn string) (*SQLiteDirectory, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if strings.Contains(dsn, ":memory:") {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}

	d := &SQLiteDirectory{db: db}
	if err := d.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return d, nil
}

// Close closes the underlying database connection.
func (d *SQLiteDirectory) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

// EnsureSchema creates the sponsors table if needed.
func (d *SQLiteDirectory) EnsureSchema(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create sponsors table: %w", err)
	}
	return nil
}

// Lookup returns records whose category matches case-insensitively, ordered by name.
func (d *SQLiteDirectory) Lookup(ctx context.Context, category string) ([]domain.RawSponsorRecord, error) {
	query, args, err := sq.Select(sponsorColumns...).
		From(sponsorsTable).
		Where(sq.Eq{"lower(category)": strings.ToLower(strings.TrimSpace(category))}).
		OrderBy("name", "domain").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build lookup query: %w", err)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sponsors: %w", err)
	}
	defer rows.Close()

	var records []domain.RawSponsorRecord
	for rows.Next() {
		var (
			r                                               domain.RawSponsorRecord
			evidence, contacts, proof, adjacent, objections string
		)
		if err := rows.Scan(&r.Name, &r.Domain, &r.Category, &evidence, &contacts,
			&proof, &adjacent, &r.PricingGuidance, &objections); err != nil {
			return nil, fmt.Errorf("scan sponsor: %w", err)
		}
		if err := decodeColumns(&r, evidence, contacts, proof, adjacent, objections); err != nil {
			return nil, fmt.Errorf("decode sponsor %s: %w", r.Domain, err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return records, nil
}

// Count returns the number of stored records.
func (d *SQLiteDirectory) Count(ctx context.Context) (int, error) {
	query, args, err := sq.Select("COUNT(*)").From(sponsorsTable).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}
	var n int
	if err := d.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count sponsors: %w", err)
	}
	return n, nil
}

// SeedIfEmpty stores records only when the table holds none, so a fresh
// database starts with a usable directory and curated data is never touched.
func (d *SQLiteDirectory) SeedIfEmpty(ctx context.Context, records ...domain.RawSponsorRecord) (bool, error) {
	n, err := d.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 || len(records) == 0 {
		return false, nil
	}
	if err := d.Upsert(ctx, records...); err != nil {
		return false, err
	}
	return true, nil
}

// Upsert inserts or replaces records keyed by (domain, category).
func (d *SQLiteDirectory) Upsert(ctx context.Context, records ...domain.RawSponsorRecord) error {
	if len(records) == 0 {
		return nil
	}

	insert := sq.Insert(sponsorsTable).Columns(sponsorColumns...)
	for _, r := range records {
		values, err := encodeColumns(r)
		if err != nil {
			return fmt.Errorf("encode sponsor %s: %w", r.Domain, err)
		}
		insert = insert.Values(values...)
	}
	insert = insert.Suffix(`ON CONFLICT (domain, category) DO UPDATE SET
        category = excluded.category,
        name = excluded.name,
        evidence_links = excluded.evidence_links,
        contact_info = excluded.contact_info,
        proof_snippets = excluded.proof_snippets,
        adjacent_podcasts = excluded.adjacent_podcasts,
        pricing_guidance = excluded.pricing_guidance,
        potential_objections = excluded.potential_objections`)

	query, args, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}
	if _, err := d.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert sponsors: %w", err)
	}
	return nil
}

func encodeColumns(r domain.RawSponsorRecord) ([]interface{}, error) {
	encoded := make([]interface{}, 0, 5)
	for _, v := range []interface{}{r.EvidenceLinks, r.ContactInfo, r.ProofSnippets, r.AdjacentPodcasts, r.PotentialObjections} {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		encoded = append(encoded, string(raw))
	}
	return []interface{}{
		r.Name, domain.NormalizeDomain(r.Domain), strings.TrimSpace(r.Category),
		encoded[0], encoded[1], encoded[2], encoded[3], r.PricingGuidance, encoded[4],
	}, nil
}

func decodeColumns(r *domain.RawSponsorRecord, evidence, contacts, proof, adjacent, objections string) error {
	targets := []struct {
		raw string
		dst interface{}
	}{
		{evidence, &r.EvidenceLinks},
		{contacts, &r.ContactInfo},
		{proof, &r.ProofSnippets},
		{adjacent, &r.AdjacentPodcasts},
		{objections, &r.PotentialObjections},
	}
	for _, t := range targets {
		if t.raw == "" || t.raw == "null" {
			continue
		}
		if err := json.Unmarshal([]byte(t.raw), t.dst); err != nil {
			return err
		}
	}
	return nil
}
