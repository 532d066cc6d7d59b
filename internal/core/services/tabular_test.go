package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drewfsc/saturday-night/internal/core/domain"
)

func rowsIntent(scope string, limit int) domain.QueryIntent {
	return domain.QueryIntent{
		Action:   domain.ActionFetchRows,
		SourceID: "sheet-1",
		Scope:    scope,
		Limit:    limit,
	}
}

func TestTabularService_Fetch_FirstRows(t *testing.T) {
	backend := newSalesBackend()
	service := NewTabularService(backend)

	ds, err := service.Fetch(context.Background(), rowsIntent("Sales", 5))

	require.NoError(t, err)
	require.NoError(t, ds.Validate())
	assert.Equal(t, domain.DatasetRows, ds.Kind)
	assert.Equal(t, "Sales", ds.Scope)
	assert.Equal(t, []string{"Date", "Customer", "Amount", "Region"}, ds.Fields)
	assert.Len(t, ds.Records, 5)
	assert.Equal(t, 7, ds.TotalMatched)
	assert.True(t, ds.Truncated())
	assert.Equal(t, "Acme", ds.Records[0]["Customer"])
	assert.Equal(t, []string{"'Sales'!1:6"}, backend.spans)
}

func TestTabularService_Fetch_ScopeIsCaseInsensitive(t *testing.T) {
	service := NewTabularService(newSalesBackend())

	ds, err := service.Fetch(context.Background(), rowsIntent("team", 5))

	require.NoError(t, err)
	assert.Equal(t, "Team", ds.Scope)
	assert.Equal(t, 2, ds.TotalMatched)
}

func TestTabularService_Fetch_UnknownScopeFallsBackToFirstSheet(t *testing.T) {
	service := NewTabularService(newSalesBackend())

	ds, err := service.Fetch(context.Background(), rowsIntent("Inventory", 5))

	require.NoError(t, err)
	assert.Equal(t, "Sales", ds.Scope)
}

func TestTabularService_Fetch_NoSheets(t *testing.T) {
	service := NewTabularService(newFakeTabular("Empty"))

	_, err := service.Fetch(context.Background(), rowsIntent("", 5))

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTabularService_Fetch_Offset(t *testing.T) {
	backend := newSalesBackend()
	service := NewTabularService(backend)
	intent := rowsIntent("Sales", 2)
	intent.Offset = 3

	ds, err := service.Fetch(context.Background(), intent)

	require.NoError(t, err)
	require.Len(t, ds.Records, 2)
	assert.Equal(t, "Umbrella", ds.Records[0]["Customer"])
	assert.Equal(t, "Hooli", ds.Records[1]["Customer"])
	assert.Equal(t, 4, ds.TotalMatched)
	assert.Equal(t, []string{"'Sales'!1:6"}, backend.spans)
}

func TestTabularService_Fetch_OffsetPastEnd(t *testing.T) {
	service := NewTabularService(newSalesBackend())
	intent := rowsIntent("Sales", 5)
	intent.Offset = 50

	ds, err := service.Fetch(context.Background(), intent)

	require.NoError(t, err)
	assert.Empty(t, ds.Records)
	assert.Equal(t, 0, ds.TotalMatched)
}

func TestTabularService_Fetch_ProjectsFieldsInRequestOrder(t *testing.T) {
	service := NewTabularService(newSalesBackend())
	intent := rowsIntent("Sales", 2)
	intent.RequestedFields = []string{"amount", "customer", "missing"}

	ds, err := service.Fetch(context.Background(), intent)

	require.NoError(t, err)
	require.NoError(t, ds.Validate())
	assert.Equal(t, []string{"Amount", "Customer"}, ds.Fields)
	assert.Equal(t, domain.Record{"Amount": "1200", "Customer": "Acme"}, ds.Records[0])
}

func TestTabularService_Fetch_UnmatchedFieldsKeepEverything(t *testing.T) {
	service := NewTabularService(newSalesBackend())
	intent := rowsIntent("Sales", 1)
	intent.RequestedFields = []string{"nothing"}

	ds, err := service.Fetch(context.Background(), intent)

	require.NoError(t, err)
	assert.Len(t, ds.Fields, 4)
}

func TestTabularService_Fetch_Range(t *testing.T) {
	backend := newSalesBackend()
	service := NewTabularService(backend)
	intent := domain.QueryIntent{
		Action:   domain.ActionFetchRange,
		SourceID: "sheet-1",
		Scope:    "Team",
		Range:    "A1:B3",
		Limit:    5,
	}

	ds, err := service.Fetch(context.Background(), intent)

	require.NoError(t, err)
	assert.Equal(t, domain.DatasetRange, ds.Kind)
	assert.Equal(t, "'Team'!A1:B3", ds.Range)
	assert.Equal(t, []string{"'Team'!A1:B3"}, backend.spans)
	assert.Len(t, ds.Records, 2)
}

func TestTabularService_Fetch_RangeWithSheetPrefix(t *testing.T) {
	backend := newSalesBackend()
	service := NewTabularService(backend)
	intent := domain.QueryIntent{
		Action:   domain.ActionFetchRange,
		SourceID: "sheet-1",
		Scope:    "Sales",
		Range:    "'Team'!A1:B2",
		Limit:    5,
	}

	ds, err := service.Fetch(context.Background(), intent)

	require.NoError(t, err)
	assert.Equal(t, "Team", ds.Scope)
	assert.Equal(t, []string{"'Team'!A1:B2"}, backend.spans)
}

func TestTabularService_Fetch_NormalizesHeader(t *testing.T) {
	backend := newFakeTabular("Messy", fakeSheet{title: "Raw", rows: [][]string{
		{"Name", "", "Name"},
		{"a", "b", "c", "d"},
		{"e"},
	}})
	service := NewTabularService(backend)

	ds, err := service.Fetch(context.Background(), rowsIntent("", 5))

	require.NoError(t, err)
	require.NoError(t, ds.Validate())
	assert.Equal(t, []string{"Name", "B", "Name (2)", "D"}, ds.Fields)
	assert.Equal(t, domain.Record{"Name": "e", "B": "", "Name (2)": "", "D": ""}, ds.Records[1])
}

func TestTabularService_Fetch_EmptySheet(t *testing.T) {
	service := NewTabularService(newFakeTabular("Blank", fakeSheet{title: "Sheet1"}))

	ds, err := service.Fetch(context.Background(), rowsIntent("", 5))

	require.NoError(t, err)
	assert.Empty(t, ds.Records)
	assert.Empty(t, ds.Fields)
	assert.Equal(t, "Sheet1", ds.Scope)
}

func TestTabularService_Fetch_CarriesFilters(t *testing.T) {
	service := NewTabularService(newSalesBackend())
	intent := rowsIntent("Sales", 5)
	dr := domain.NewDateRange(day("2025-01-01"), day("2025-01-31"))
	intent.DateRange = &dr

	ds, err := service.Fetch(context.Background(), intent)

	require.NoError(t, err)
	require.NotNil(t, ds.Filters)
	assert.Equal(t, &dr, ds.Filters.DateRange)
}

func TestTabularService_Fetch_InvalidIntent(t *testing.T) {
	service := NewTabularService(newSalesBackend())

	_, err := service.Fetch(context.Background(), domain.QueryIntent{Action: domain.ActionFetchRows, Limit: 5})

	assert.ErrorIs(t, err, domain.ErrParse)
}

func TestTabularService_Fetch_BackendError(t *testing.T) {
	backend := newSalesBackend()
	backend.err = errors.Join(domain.ErrUpstream, errors.New("deadline exceeded"))
	service := NewTabularService(backend)

	_, err := service.Fetch(context.Background(), rowsIntent("Sales", 5))

	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestTabularService_Info(t *testing.T) {
	service := NewTabularService(newSalesBackend())

	ds, err := service.Info(context.Background(), domain.QueryIntent{
		Action:   domain.ActionFetchInfo,
		SourceID: "sheet-1",
	})

	require.NoError(t, err)
	require.NoError(t, ds.Validate())
	assert.Equal(t, domain.DatasetSheets, ds.Kind)
	assert.Equal(t, "Q1 Report", ds.Scope)
	assert.Equal(t, []string{"sheet", "index", "rows", "columns"}, ds.Fields)
	require.Len(t, ds.Records, 2)
	assert.Equal(t, domain.Record{"sheet": "Team", "index": 1, "rows": 3, "columns": 2}, ds.Records[1])
}

func TestTabularService_Info_RequiresSource(t *testing.T) {
	service := NewTabularService(newSalesBackend())

	_, err := service.Info(context.Background(), domain.QueryIntent{Action: domain.ActionFetchInfo})

	assert.ErrorIs(t, err, domain.ErrParse)
}

func TestQuoteSheet(t *testing.T) {
	assert.Equal(t, "'Sales'", quoteSheet("Sales"))
	assert.Equal(t, "'Q1 Sales'", quoteSheet("Q1 Sales"))
	assert.Equal(t, "'Bob''s'", quoteSheet("Bob's"))
}

func TestColumnLetter(t *testing.T) {
	tests := map[int]string{0: "A", 1: "B", 25: "Z", 26: "AA", 27: "AB", 51: "AZ", 52: "BA", 701: "ZZ", 702: "AAA"}
	for index, want := range tests {
		assert.Equal(t, want, columnLetter(index), "index %d", index)
	}
}
