package service

import (
	"context"
	"fmt"
	"time"

	"github.com/capitalstack/directory/internal/domain"
	"github.com/capitalstack/directory/internal/metrics"
	"github.com/capitalstack/directory/pkg/csvutil"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Page size rules.
const (
	DefaultPageSize     = 100
	freeBuyerCeiling    = 10
	limitedContactLimit = 50
)

var (
	buyerExportHeaders   = []string{"Company", "Category", "Buy Box", "Markets", "Deal Size", "Email", "Phone", "HQ", "Website"}
	contactExportHeaders = []string{"First Name", "Last Name", "Email", "Phone", "Title", "Company", "LinkedIn"}
)

// DirectoryService serves the buyer and contact datasets under plan entitlements.
type DirectoryService struct {
	buyers   BuyerStore
	contacts ContactStore
	audit    AuditStore
	metrics  *metrics.Metrics
	log      logrus.FieldLogger
	now      func() time.Time
}

// NewDirectoryService creates a new DirectoryService.
func NewDirectoryService(buyers BuyerStore, contacts ContactStore, audit AuditStore, m *metrics.Metrics, log logrus.FieldLogger) *DirectoryService {
	return &DirectoryService{
		buyers:   buyers,
		contacts: contacts,
		audit:    audit,
		metrics:  m,
		log:      log,
		now:      time.Now,
	}
}

// pageFor applies the plan ceiling to the requested window.
// PROFESSIONAL and above get the requested size.
func pageFor(caller domain.Caller, requested domain.Page, ceiling int) domain.Page {
	p := requested
	if p.Limit <= 0 {
		p.Limit = DefaultPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	if !caller.Can(domain.PlanProfessional) && p.Limit > ceiling {
		p.Limit = ceiling
	}
	return p
}

func (s *DirectoryService) authorize(caller domain.Caller, required domain.PlanID, operation, msg string) error {
	if !caller.Authenticated() {
		return domain.ErrAuthenticationRequired("unauthorized")
	}
	if !caller.Can(required) {
		if s.metrics != nil {
			s.metrics.EntitlementDenialsTotal.WithLabelValues(operation).Inc()
		}
		return domain.ErrEntitlementDenied(required, msg)
	}
	return nil
}

// AuthorizeBuyers checks buyer listing access. Any authenticated caller may
// list; the plan only narrows the page and the projection.
func (s *DirectoryService) AuthorizeBuyers(caller domain.Caller) error {
	if !caller.Authenticated() {
		return domain.ErrAuthenticationRequired("unauthorized")
	}
	return nil
}

// AuthorizeContacts checks contact listing access. Requires STARTER.
func (s *DirectoryService) AuthorizeContacts(caller domain.Caller) error {
	return s.authorize(caller, domain.PlanStarter, "list_contacts", "Upgrade to Starter to access contacts")
}

// ListBuyers returns one page of buyers. Contact fields are only projected
// for STARTER and above.
func (s *DirectoryService) ListBuyers(ctx context.Context, caller domain.Caller, f domain.BuyerFilter, requested domain.Page) (*domain.BuyerPage, error) {
	if err := s.AuthorizeBuyers(caller); err != nil {
		return nil, err
	}

	ctx, span := otel.Tracer("DirectoryService").Start(ctx, "ListBuyers", trace.WithAttributes(
		attribute.String("caller.plan", string(caller.Plan)),
	))
	defer span.End()

	page := pageFor(caller, requested, freeBuyerCeiling)
	withContact := caller.Can(domain.PlanStarter)

	var (
		buyers []domain.Buyer
		total  int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		buyers, err = s.buyers.List(gctx, f, page, withContact)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.buyers.Count(gctx, f)
		return err
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, domain.ErrInternal("failed to fetch buyers", err)
	}

	if !f.IsEmpty() {
		s.recordSearch(ctx, domain.SearchRecord{
			UserID:  caller.UserID,
			Query:   f.Search,
			Filters: map[string]string{"category": f.Category, "market": f.Market},
			Results: total,
		})
	}

	return &domain.BuyerPage{
		Buyers:  buyers,
		Total:   total,
		HasMore: page.Offset+len(buyers) < total,
	}, nil
}

// ListContacts returns one page of contacts. Requires STARTER.
func (s *DirectoryService) ListContacts(ctx context.Context, caller domain.Caller, f domain.ContactFilter, requested domain.Page) (*domain.ContactPage, error) {
	if err := s.AuthorizeContacts(caller); err != nil {
		return nil, err
	}

	ctx, span := otel.Tracer("DirectoryService").Start(ctx, "ListContacts", trace.WithAttributes(
		attribute.String("caller.plan", string(caller.Plan)),
	))
	defer span.End()

	page := pageFor(caller, requested, limitedContactLimit)

	var (
		contacts []domain.Contact
		total    int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		contacts, err = s.contacts.List(gctx, f, page)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.contacts.Count(gctx, f)
		return err
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, domain.ErrInternal("failed to fetch contacts", err)
	}

	if !f.IsEmpty() {
		s.recordSearch(ctx, domain.SearchRecord{
			UserID:  caller.UserID,
			Query:   f.Search,
			Filters: map[string]string{"title": f.Title, "company": f.Company},
			Results: total,
		})
	}

	return &domain.ContactPage{
		Contacts: contacts,
		Total:    total,
		HasMore:  page.Offset+len(contacts) < total,
	}, nil
}

// ExportBuyers renders every matching buyer as CSV. Requires PROFESSIONAL.
func (s *DirectoryService) ExportBuyers(ctx context.Context, caller domain.Caller, f domain.BuyerFilter) (*domain.Export, error) {
	if err := s.authorize(caller, domain.PlanProfessional, "export_buyers", "Upgrade to Professional to export data"); err != nil {
		return nil, err
	}

	ctx, span := otel.Tracer("DirectoryService").Start(ctx, "ExportBuyers")
	defer span.End()

	buyers, err := s.buyers.ListAll(ctx, f)
	if err != nil {
		span.RecordError(err)
		return nil, domain.ErrInternal("failed to export buyers", err)
	}

	s.recordExport(ctx, domain.ExportRecord{
		UserID:  caller.UserID,
		Kind:    domain.ExportBuyers,
		Count:   len(buyers),
		Filters: map[string]string{"search": f.Search, "category": f.Category, "market": f.Market},
	})

	rows := make([][]string, len(buyers))
	for i, b := range buyers {
		rows[i] = []string{
			b.Company,
			csvutil.Deref(b.Category),
			csvutil.Deref(b.BuyBox),
			csvutil.Deref(b.Markets),
			csvutil.Deref(b.DealSize),
			csvutil.Deref(b.Email),
			csvutil.Deref(b.Phone),
			csvutil.Deref(b.HQ),
			csvutil.Deref(b.SourceURL),
		}
	}
	return s.export("buyers", buyerExportHeaders, rows), nil
}

// ExportContacts renders every matching contact as CSV. Requires PROFESSIONAL.
func (s *DirectoryService) ExportContacts(ctx context.Context, caller domain.Caller, f domain.ContactFilter) (*domain.Export, error) {
	if err := s.authorize(caller, domain.PlanProfessional, "export_contacts", "Upgrade to Professional to export data"); err != nil {
		return nil, err
	}

	ctx, span := otel.Tracer("DirectoryService").Start(ctx, "ExportContacts")
	defer span.End()

	contacts, err := s.contacts.ListAll(ctx, f)
	if err != nil {
		span.RecordError(err)
		return nil, domain.ErrInternal("failed to export contacts", err)
	}

	s.recordExport(ctx, domain.ExportRecord{
		UserID:  caller.UserID,
		Kind:    domain.ExportContacts,
		Count:   len(contacts),
		Filters: map[string]string{"search": f.Search, "title": f.Title, "company": f.Company},
	})

	rows := make([][]string, len(contacts))
	for i, c := range contacts {
		rows[i] = []string{
			csvutil.Deref(c.FirstName),
			csvutil.Deref(c.LastName),
			csvutil.Deref(c.Email),
			csvutil.Deref(c.Phone),
			csvutil.Deref(c.Title),
			csvutil.Deref(c.Company),
			csvutil.Deref(c.LinkedIn),
		}
	}
	return s.export("contacts", contactExportHeaders, rows), nil
}

func (s *DirectoryService) export(dataset string, headers []string, rows [][]string) *domain.Export {
	if s.metrics != nil {
		s.metrics.ExportRowsTotal.WithLabelValues(dataset).Add(float64(len(rows)))
	}
	return &domain.Export{
		Filename: fmt.Sprintf("capitalstack-%s-%s.csv", dataset, s.now().UTC().Format("2006-01-02")),
		Body:     csvutil.Render(headers, rows),
		Rows:     len(rows),
	}
}

// recordSearch and recordExport never fail the caller.
func (s *DirectoryService) recordSearch(ctx context.Context, rec domain.SearchRecord) {
	if err := s.audit.RecordSearch(ctx, rec); err != nil {
		s.auditFailed("search", rec.UserID, err)
	}
}

func (s *DirectoryService) recordExport(ctx context.Context, rec domain.ExportRecord) {
	if err := s.audit.RecordExport(ctx, rec); err != nil {
		s.auditFailed("export", rec.UserID, err)
	}
}

func (s *DirectoryService) auditFailed(kind, userID string, err error) {
	if s.metrics != nil {
		s.metrics.AuditWriteFailuresTotal.WithLabelValues(kind).Inc()
	}
	s.log.WithError(err).WithFields(logrus.Fields{
		"userId": userID,
		"kind":   kind,
	}).Warn("audit write failed")
}
