package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/capitalstack/directory/internal/domain"
	"github.com/capitalstack/directory/internal/metrics"
	"github.com/capitalstack/directory/internal/repository"
	"github.com/sirupsen/logrus"
)

const (
	slugMaxLen   = 50
	previewLimit = 5
)

// ImportOptions controls a bulk import run.
type ImportOptions struct {
	// Clear deletes existing rows and their bookmarks before importing.
	Clear bool
	// DryRun parses and previews without touching the store.
	DryRun bool
}

// ImportSummary reports what an import run did.
type ImportSummary struct {
	Found    int
	Imported int
	Linked   int
	Skipped  int
	Preview  []string
}

// Row is one parsed data row keyed by camelCased header name.
type Row map[string]string

// Get returns the value for key, falling back to a case-insensitive match.
func (r Row) Get(key string) string {
	if v, ok := r[key]; ok {
		return v
	}
	for k, v := range r {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

// Importer loads buyer and contact reference data from CSV files.
type Importer struct {
	buyers   BuyerStore
	contacts ContactStore
	saved    SavedStore
	metrics  *metrics.Metrics
	log      logrus.FieldLogger
}

// NewImporter creates a new Importer.
func NewImporter(buyers BuyerStore, contacts ContactStore, saved SavedStore, m *metrics.Metrics, log logrus.FieldLogger) *Importer {
	return &Importer{buyers: buyers, contacts: contacts, saved: saved, metrics: m, log: log}
}

// headerKey turns "Buy Box" into "buyBox".
func headerKey(h string) string {
	key := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, strings.TrimSpace(h))
	if key == "" {
		return ""
	}
	return strings.ToLower(key[:1]) + key[1:]
}

// ParseTable reads a CSV document with a header row. Blank lines are skipped
// and every value is trimmed.
func ParseTable(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	keys := make([]string, len(header))
	for i, h := range header {
		keys[i] = headerKey(strings.TrimPrefix(h, "\ufeff"))
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		row := make(Row, len(keys))
		for i, key := range keys {
			if key == "" || i >= len(record) {
				continue
			}
			row[key] = strings.TrimSpace(record[i])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Slug derives a stable buyer id from a company name.
func Slug(company string) string {
	slug := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return '-'
	}, strings.ToLower(company))
	if len(slug) > slugMaxLen {
		slug = slug[:slugMaxLen]
	}
	return slug
}

// matchBuyer returns the first buyer whose company name contains, or is
// contained in, company. Matching is case-insensitive and heuristic.
func matchBuyer(company string, buyers []repository.BuyerCompany) *string {
	needle := strings.ToLower(strings.TrimSpace(company))
	if needle == "" {
		return nil
	}
	for _, b := range buyers {
		name := strings.ToLower(b.Company)
		if name == "" {
			continue
		}
		if strings.Contains(needle, name) || strings.Contains(name, needle) {
			id := b.ID
			return &id
		}
	}
	return nil
}

// ImportBuyers upserts buyer rows keyed by the slug of the company name.
func (im *Importer) ImportBuyers(ctx context.Context, r io.Reader, opts ImportOptions) (*ImportSummary, error) {
	rows, err := ParseTable(r)
	if err != nil {
		return nil, err
	}
	summary := &ImportSummary{Found: len(rows)}

	if opts.DryRun {
		for i, row := range rows {
			if i >= previewLimit {
				break
			}
			category := row.Get("category")
			if category == "" {
				category = "No category"
			}
			summary.Preview = append(summary.Preview, fmt.Sprintf("%s (%s)", row.Get("company"), category))
		}
		return summary, nil
	}

	if opts.Clear {
		if _, err := im.saved.DeleteAllBuyers(ctx); err != nil {
			return nil, err
		}
		if _, err := im.buyers.DeleteAll(ctx); err != nil {
			return nil, err
		}
		im.log.Info("cleared existing buyers")
	}

	for _, row := range rows {
		company := row.Get("company")
		if company == "" {
			summary.Skipped++
			continue
		}
		b := &domain.Buyer{
			ID:         Slug(company),
			Company:    company,
			Category:   optional(row.Get("category")),
			BuyBox:     optional(row.Get("buyBox")),
			Markets:    optional(row.Get("markets")),
			DealSize:   optional(row.Get("dealSize")),
			SubmitDeal: optional(row.Get("submitDeal")),
			Email:      optional(row.Get("email")),
			Phone:      optional(row.Get("phone")),
			HQ:         optional(row.Get("hq")),
			SourceURL:  optional(row.Get("sourceUrl")),
			Verified:   true,
		}
		if err := im.buyers.Upsert(ctx, b); err != nil {
			im.log.WithError(err).WithField("company", company).Warn("failed to import buyer")
			summary.Skipped++
			continue
		}
		summary.Imported++
	}

	im.count("buyers", summary)
	return summary, nil
}

// ImportContacts creates contact rows and links each to a buyer by company name.
func (im *Importer) ImportContacts(ctx context.Context, r io.Reader, opts ImportOptions) (*ImportSummary, error) {
	rows, err := ParseTable(r)
	if err != nil {
		return nil, err
	}
	summary := &ImportSummary{Found: len(rows)}

	if opts.DryRun {
		for i, row := range rows {
			if i >= previewLimit {
				break
			}
			name := strings.TrimSpace(row.Get("firstName") + " " + row.Get("lastName"))
			if name == "" {
				name = "Unknown"
			}
			company := row.Get("company")
			if company == "" {
				company = "Unknown company"
			}
			summary.Preview = append(summary.Preview, fmt.Sprintf("%s at %s", name, company))
		}
		return summary, nil
	}

	if opts.Clear {
		if _, err := im.saved.DeleteAllContacts(ctx); err != nil {
			return nil, err
		}
		if _, err := im.contacts.DeleteAll(ctx); err != nil {
			return nil, err
		}
		im.log.Info("cleared existing contacts")
	}

	buyers, err := im.buyers.Companies(ctx)
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		first, last, email := row.Get("firstName"), row.Get("lastName"), row.Get("email")
		if first == "" && last == "" && email == "" {
			summary.Skipped++
			continue
		}

		buyerID := matchBuyer(row.Get("company"), buyers)
		c := &domain.Contact{
			ID:        domain.NewID(),
			FirstName: optional(first),
			LastName:  optional(last),
			FullName:  optional(strings.TrimSpace(first + " " + last)),
			Email:     optional(email),
			Phone:     optional(row.Get("phone")),
			Title:     optional(row.Get("title")),
			LinkedIn:  optional(row.Get("linkedin")),
			Company:   optional(row.Get("company")),
			BuyerID:   buyerID,
			Verified:  true,
		}
		if err := im.contacts.Create(ctx, c); err != nil {
			im.log.WithError(err).WithField("contact", strings.TrimSpace(first+" "+last)).Warn("failed to import contact")
			summary.Skipped++
			continue
		}
		if buyerID != nil {
			summary.Linked++
		}
		summary.Imported++
	}

	im.count("contacts", summary)
	return summary, nil
}

func (im *Importer) count(dataset string, s *ImportSummary) {
	if im.metrics == nil {
		return
	}
	im.metrics.ImportedRowsTotal.WithLabelValues(dataset, "imported").Add(float64(s.Imported))
	im.metrics.ImportedRowsTotal.WithLabelValues(dataset, "skipped").Add(float64(s.Skipped))
}
