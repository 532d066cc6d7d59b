// Package fixture serves ledger invoices from a local YAML file.
// It stands in for the remote ledger in demos and offline runs.
package fixture

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/drewfsc/saturday-night/internal/core/domain"
	"github.com/drewfsc/saturday-night/internal/core/ports/driven"
)

// Ensure Ledger implements the LedgerBackend interface.
var _ driven.LedgerBackend = (*Ledger)(nil)

// file is the on-disk layout.
type file struct {
	LedgerID string        `yaml:"ledger_id"`
	Invoices []invoiceYAML `yaml:"invoices"`
}

type invoiceYAML struct {
	ID       string  `yaml:"id"`
	Number   string  `yaml:"number"`
	Customer string  `yaml:"customer"`
	Date     string  `yaml:"date"`
	DueDate  string  `yaml:"due_date"`
	Total    float64 `yaml:"total"`
	Balance  float64 `yaml:"balance"`
	Status   string  `yaml:"status"`
}

// Ledger is an in-memory ledger loaded from YAML.
type Ledger struct {
	ledgerID string
	invoices []domain.Invoice
}

// Load reads a fixture file.
func Load(path string) (*Ledger, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ledger fixture: %w", err)
	}
	ledger, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ledger, nil
}

// Parse decodes fixture YAML. Invoices are kept newest first.
func Parse(data []byte) (*Ledger, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse ledger fixture: %w", err)
	}

	invoices := make([]domain.Invoice, 0, len(f.Invoices))
	for i, raw := range f.Invoices {
		inv, err := raw.toDomain()
		if err != nil {
			return nil, fmt.Errorf("invoice %d: %w", i+1, err)
		}
		invoices = append(invoices, inv)
	}
	sort.SliceStable(invoices, func(i, j int) bool {
		return invoices[i].TxnDate.After(invoices[j].TxnDate)
	})

	return &Ledger{ledgerID: f.LedgerID, invoices: invoices}, nil
}

func (r invoiceYAML) toDomain() (domain.Invoice, error) {
	if strings.TrimSpace(r.ID) == "" {
		return domain.Invoice{}, fmt.Errorf("missing id")
	}
	date, err := time.Parse(domain.DateLayout, r.Date)
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("invalid date %q", r.Date)
	}
	inv := domain.Invoice{
		ID:       r.ID,
		Number:   r.Number,
		Customer: r.Customer,
		TxnDate:  date,
		Total:    r.Total,
		Balance:  r.Balance,
		Status:   r.Status,
	}
	if r.DueDate != "" {
		due, err := time.Parse(domain.DateLayout, r.DueDate)
		if err != nil {
			return domain.Invoice{}, fmt.Errorf("invalid due_date %q", r.DueDate)
		}
		inv.DueDate = due
	}
	return inv, nil
}

// QueryInvoices returns the fixture invoices inside the date range, newest
// first. A fixture with a ledger_id only answers for that ledger.
func (l *Ledger) QueryInvoices(ctx context.Context, q domain.LedgerQuery) ([]domain.Invoice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l.ledgerID != "" && q.LedgerID != "" && q.LedgerID != l.ledgerID {
		return nil, fmt.Errorf("%w: ledger %s", domain.ErrNotFound, q.LedgerID)
	}

	out := make([]domain.Invoice, 0, len(l.invoices))
	for _, inv := range l.invoices {
		if q.DateRange != nil && !q.DateRange.Contains(inv.TxnDate) {
			continue
		}
		out = append(out, inv)
		if q.MaxResults > 0 && len(out) == q.MaxResults {
			break
		}
	}
	return out, nil
}

// IsAuthenticated always returns true; a local file needs no credential.
func (l *Ledger) IsAuthenticated() bool {
	return true
}

// LedgerID returns the ledger the fixture belongs to, possibly empty.
func (l *Ledger) LedgerID() string {
	return l.ledgerID
}

// Len returns the number of invoices loaded.
func (l *Ledger) Len() int {
	return len(l.invoices)
}
