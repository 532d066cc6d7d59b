package google

import (
	"context"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsReadonlyScope is the only scope the spreadsheet backend needs.
const SheetsReadonlyScope = sheets.SpreadsheetsReadonlyScope

// NewSheetsService creates a Google Sheets API service using the provided
// TokenSource. Extra options (endpoint, HTTP client) are applied after it.
func NewSheetsService(ctx context.Context, ts oauth2.TokenSource, opts ...option.ClientOption) (*sheets.Service, error) {
	all := append([]option.ClientOption{option.WithTokenSource(ts)}, opts...)
	return sheets.NewService(ctx, all...)
}
