package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/drewfsc/saturday-night/internal/core/domain"
	"github.com/drewfsc/saturday-night/internal/core/ports/driven"
)

var (
	_ driven.TabularBackend = (*fakeTabular)(nil)
	_ driven.LedgerBackend  = (*fakeLedger)(nil)
	_ driven.CacheBackend   = (*fakeCache)(nil)
)

// fakeTabular serves in-memory sheets keyed by title.
type fakeTabular struct {
	mu     sync.Mutex
	info   *domain.SpreadsheetInfo
	sheets map[string][][]string
	err    error
	spans  []string
	gets   int
}

func newFakeTabular(title string, sheets ...fakeSheet) *fakeTabular {
	f := &fakeTabular{
		info:   &domain.SpreadsheetInfo{ID: "sheet-1", Title: title},
		sheets: make(map[string][][]string),
	}
	for i, sh := range sheets {
		f.info.Sheets = append(f.info.Sheets, domain.SheetInfo{
			Title:       sh.title,
			Index:       i,
			RowCount:    len(sh.rows),
			ColumnCount: widest(sh.rows),
		})
		f.sheets[sh.title] = sh.rows
	}
	return f
}

type fakeSheet struct {
	title string
	rows  [][]string
}

func widest(rows [][]string) int {
	n := 0
	for _, r := range rows {
		n = max(n, len(r))
	}
	return n
}

func (f *fakeTabular) GetSpreadsheet(_ context.Context, id string) (*domain.SpreadsheetInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.err != nil {
		return nil, f.err
	}
	info := *f.info
	info.ID = id
	return &info, nil
}

// ReadRange returns the whole sheet named by the span prefix.
func (f *fakeTabular) ReadRange(_ context.Context, _ string, span string) ([][]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.spans = append(f.spans, span)
	if f.err != nil {
		return nil, f.err
	}
	for title, rows := range f.sheets {
		if len(span) > len(title)+2 && span[:len(title)+2] == quoteSheet(title) {
			return rows, nil
		}
	}
	return nil, fmt.Errorf("%w: no sheet for %s", domain.ErrNotFound, span)
}

// fakeLedger returns fixed invoices and counts queries.
type fakeLedger struct {
	mu            sync.Mutex
	invoices      []domain.Invoice
	authenticated bool
	err           error
	queries       []domain.LedgerQuery
}

func (f *fakeLedger) QueryInvoices(_ context.Context, q domain.LedgerQuery) ([]domain.Invoice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	return append([]domain.Invoice(nil), f.invoices...), nil
}

func (f *fakeLedger) IsAuthenticated() bool {
	return f.authenticated
}

func (f *fakeLedger) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

// fakeCache is a map-backed cache with a controllable clock and failure modes.
type fakeCache struct {
	mu       sync.Mutex
	entries  map[string]domain.CacheEntry
	now      time.Time
	getErr   error
	setErr   error
	sets     int
	lastTTL  time.Duration
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]domain.CacheEntry), now: fixedNow}
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	e, ok := c.entries[key]
	if !ok || !e.Live(c.now) {
		return nil, false, nil
	}
	return e.Value, true, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sets++
	c.lastTTL = ttl
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[key] = domain.CacheEntry{Key: key, Value: value, ExpiresAt: c.now.Add(ttl)}
	return nil
}

func (c *fakeCache) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Shared fixtures.

var salesRows = [][]string{
	{"Date", "Customer", "Amount", "Region"},
	{"2025-01-03", "Acme", "1200", "West"},
	{"2025-01-04", "Globex", "340", "East"},
	{"2025-01-09", "Initech", "980", "West"},
	{"2025-01-12", "Umbrella", "45", "North"},
	{"2025-01-15", "Hooli", "2300", "East"},
	{"2025-01-20", "Stark", "760", "South"},
	{"2025-01-28", "Wayne", "5100", "West"},
}

var teamRows = [][]string{
	{"Name", "Role"},
	{"Ana", "Lead"},
	{"Ben", "Analyst"},
}

func newSalesBackend() *fakeTabular {
	return newFakeTabular("Q1 Report",
		fakeSheet{title: "Sales", rows: salesRows},
		fakeSheet{title: "Team", rows: teamRows},
	)
}

func invoice(id string, date string, total, balance float64) domain.Invoice {
	return domain.Invoice{
		ID:       id,
		Number:   "INV-" + id,
		Customer: "Customer " + id,
		TxnDate:  day(date),
		Total:    total,
		Balance:  balance,
	}
}

func januaryLedger() *fakeLedger {
	return &fakeLedger{
		authenticated: true,
		invoices: []domain.Invoice{
			invoice("1", "2025-01-02", 450, 0),
			invoice("2", "2025-01-05", 500, 500),
			invoice("3", "2025-01-14", 1250.5, 0),
			invoice("4", "2025-01-21", 2000, 100),
			invoice("5", "2025-01-31", 2001, 2001),
			invoice("6", "2025-02-01", 900, 0),
			invoice("7", "2024-12-31", 700, 0),
		},
	}
}
