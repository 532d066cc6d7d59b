package driving

import (
	"context"

	"github.com/drewfsc/saturday-night/internal/core/domain"
)

// Interpreter turns free text into a structured intent.
type Interpreter interface {
	// Interpret parses text. Overrides take precedence over configured
	// defaults but not over identifiers written in the text.
	// Returns domain.ErrParse when no source identifier resolves.
	Interpret(text string, overrides domain.Overrides) (domain.QueryIntent, error)

	// InterpretAs parses text with the action family fixed by the caller.
	InterpretAs(text string, action domain.Action, overrides domain.Overrides) (domain.QueryIntent, error)
}

// TabularService executes tabular intents.
type TabularService interface {
	// Fetch reads rows (fetch_rows) or an explicit range (fetch_range).
	Fetch(ctx context.Context, intent domain.QueryIntent) (*domain.NormalizedDataset, error)

	// Info lists the sheets of the spreadsheet (fetch_info).
	Info(ctx context.Context, intent domain.QueryIntent) (*domain.NormalizedDataset, error)
}

// InvoiceService executes invoice searches.
type InvoiceService interface {
	// Search returns the invoices matching every active filter.
	// Returns domain.ErrAuthRequired when no credential is configured.
	Search(ctx context.Context, intent domain.QueryIntent) (*domain.NormalizedDataset, error)
}

// Formatter renders datasets for a response.
type Formatter interface {
	// Format renders ds according to format.
	Format(ds *domain.NormalizedDataset, format domain.ResponseFormat) *domain.FormattedResult
}
