package driven

import (
	"context"

	"github.com/drewfsc/saturday-night/internal/core/domain"
)

// LedgerBackend supplies candidate invoices ordered by transaction date, newest first.
// Filters in the query are hints: backends may apply them upstream, and
// callers re-apply them to whatever is returned.
type LedgerBackend interface {
	// QueryInvoices returns candidate invoices for the query.
	QueryInvoices(ctx context.Context, q domain.LedgerQuery) ([]domain.Invoice, error)

	// IsAuthenticated returns true if a usable credential is configured.
	IsAuthenticated() bool
}
