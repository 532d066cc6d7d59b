package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/drewfsc/saturday-night/internal/adapters/driven/fixture"
	"github.com/drewfsc/saturday-night/internal/adapters/driven/storage/memory"
	"github.com/drewfsc/saturday-night/internal/core/domain"
	"github.com/drewfsc/saturday-night/internal/core/services"
)

const testSpreadsheet = "sheet-1"

// fakeSheets serves one spreadsheet with a Sales sheet.
type fakeSheets struct{}

func (fakeSheets) GetSpreadsheet(_ context.Context, id string) (*domain.SpreadsheetInfo, error) {
	if id != testSpreadsheet {
		return nil, domain.ErrNotFound
	}
	return &domain.SpreadsheetInfo{
		ID:    id,
		Title: "Q1 Report",
		Sheets: []domain.SheetInfo{
			{Title: "Sales", Index: 0, RowCount: 3, ColumnCount: 2},
		},
	}, nil
}

func (fakeSheets) ReadRange(context.Context, string, string) ([][]string, error) {
	return [][]string{
		{"Customer", "Amount"},
		{"Acme", "1200"},
		{"Globex", "340"},
	}, nil
}

const ledgerYAML = `
ledger_id: "9130"
invoices:
  - id: "1"
    customer: Acme
    date: 2025-01-10
    total: 1500
    balance: 0
  - id: "2"
    customer: Globex
    date: 2025-01-20
    total: 200
    balance: 200
`

type nullSettings struct{ id string }

func (n nullSettings) Get() (*domain.AppSettings, error) {
	s := domain.DefaultAppSettings()
	s.Sources.DefaultSpreadsheetID = n.id
	return &s, nil
}
func (nullSettings) Save(*domain.AppSettings) error                { return nil }
func (nullSettings) SetCacheBackend(domain.CacheBackendKind) error { return nil }
func (nullSettings) SetDefaultSpreadsheet(string) error            { return nil }
func (nullSettings) SetDefaultLedger(string) error                 { return nil }
func (nullSettings) Validate() error                               { return nil }
func (nullSettings) GetDefaults() domain.AppSettings               { return domain.DefaultAppSettings() }

func newTestDispatcher(t *testing.T) *services.DispatcherService {
	t.Helper()
	ledger, err := fixture.Parse([]byte(ledgerYAML))
	require.NoError(t, err)

	interpreter := services.NewInterpreterService(domain.SourceSettings{
		DefaultSpreadsheetID: testSpreadsheet,
		DefaultLedgerID:      "9130",
	})
	tools := services.NewToolServices(
		interpreter,
		services.NewTabularService(fakeSheets{}),
		services.NewInvoiceService(ledger),
		services.NewFormatterService(),
		memory.NewCache(),
		time.Minute,
	)
	registry, err := services.NewRegistry(services.DefaultTools()...)
	require.NoError(t, err)
	return services.NewDispatcherService(registry, tools, services.WithServerInfo("saturday-night", "test"))
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := NewServer(&Ports{
		Dispatcher: newTestDispatcher(t),
		Settings:   nullSettings{id: testSpreadsheet},
	})
	require.NoError(t, err)
	return s
}
