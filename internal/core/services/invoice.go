package services

import (
	"context"
	"fmt"
	"time"

	"github.com/drewfsc/saturday-night/internal/core/domain"
	"github.com/drewfsc/saturday-night/internal/core/ports/driven"
	"github.com/drewfsc/saturday-night/internal/core/ports/driving"
	"github.com/drewfsc/saturday-night/internal/logger"
)

// Ensure InvoiceService implements the interface.
var _ driving.InvoiceService = (*InvoiceService)(nil)

// InvoiceService searches ledger invoices.
type InvoiceService struct {
	backend driven.LedgerBackend
	now     func() time.Time
}

// NewInvoiceService creates a new invoice service.
func NewInvoiceService(backend driven.LedgerBackend) *InvoiceService {
	return &InvoiceService{
		backend: backend,
		now:     time.Now,
	}
}

// Search returns the invoices matching both the date and the amount filter,
// in backend order, truncated to the intent's limit. It never reports an
// empty result in place of a missing credential.
func (s *InvoiceService) Search(ctx context.Context, intent domain.QueryIntent) (*domain.NormalizedDataset, error) {
	logger.Section("Invoice Search")

	if err := intent.Validate(); err != nil {
		return nil, err
	}
	if s.backend == nil || !s.backend.IsAuthenticated() {
		return nil, fmt.Errorf("%w: connect the ledger before searching invoices", domain.ErrAuthRequired)
	}

	candidates, err := s.backend.QueryInvoices(ctx, domain.LedgerQuery{
		LedgerID:    intent.SourceID,
		DateRange:   intent.DateRange,
		AmountRange: intent.AmountRange,
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("ledger %s returned %d candidates", intent.SourceID, len(candidates))

	matches := make([]domain.Invoice, 0, len(candidates))
	for _, inv := range candidates {
		if matchesInvoice(inv, intent.DateRange, intent.AmountRange) {
			matches = append(matches, inv)
		}
	}

	ds := &domain.NormalizedDataset{
		Kind:         domain.DatasetInvoices,
		SourceID:     intent.SourceID,
		TotalMatched: len(matches),
		ExecutedAt:   s.now().UTC(),
		Filters:      intent.Filters(),
	}
	if intent.Limit < len(matches) {
		matches = matches[:intent.Limit]
	}

	fields := ResolveFields(intent.RequestedFields, domain.InvoiceFields)
	if len(fields) == 0 {
		fields = domain.InvoiceFields
	}
	ds.Fields = append([]string(nil), fields...)
	ds.Records = make([]domain.Record, 0, len(matches))
	for _, inv := range matches {
		full := inv.Record()
		rec := make(domain.Record, len(fields))
		for _, f := range fields {
			rec[f] = full[f]
		}
		ds.Records = append(ds.Records, rec)
	}

	logger.Debug("matched %d invoices, returning %d", ds.TotalMatched, len(ds.Records))
	return ds, nil
}

// matchesInvoice ANDs the inclusive calendar-day and amount predicates.
func matchesInvoice(inv domain.Invoice, dates *domain.DateRange, amounts *domain.AmountRange) bool {
	if dates != nil && !dates.Contains(inv.TxnDate) {
		return false
	}
	if amounts != nil && !amounts.Contains(inv.Total) {
		return false
	}
	return true
}
