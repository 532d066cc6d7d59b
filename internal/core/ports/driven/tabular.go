package driven

import (
	"context"

	"github.com/drewfsc/saturday-night/internal/core/domain"
)

// TabularBackend reads spreadsheets.
// Implementations wrap failures with domain errors: ErrNotFound for a missing
// spreadsheet, the auth family for credential problems, ErrRateLimited and
// ErrUpstream for everything else.
type TabularBackend interface {
	// GetSpreadsheet returns the spreadsheet title and its sheets in display order.
	GetSpreadsheet(ctx context.Context, spreadsheetID string) (*domain.SpreadsheetInfo, error)

	// ReadRange returns the formatted cell values of an A1 range.
	// Rows may be ragged; trailing empty cells are omitted.
	ReadRange(ctx context.Context, spreadsheetID, a1Range string) ([][]string, error)
}
