package domain

import "time"

// Invoice statuses.
const (
	InvoiceStatusPaid = "paid"
	InvoiceStatusOpen = "open"
)

// InvoiceFields lists the dataset fields of an invoice record, in display order.
var InvoiceFields = []string{"id", "number", "customer", "date", "due_date", "total", "balance", "status"}

// Invoice is a ledger invoice as returned by a ledger backend.
type Invoice struct {
	ID       string    `json:"id" yaml:"id"`
	Number   string    `json:"number" yaml:"number"`
	Customer string    `json:"customer" yaml:"customer"`
	TxnDate  time.Time `json:"date" yaml:"date"`
	DueDate  time.Time `json:"due_date" yaml:"due_date"`
	Total    float64   `json:"total" yaml:"total"`
	Balance  float64   `json:"balance" yaml:"balance"`
	Status   string    `json:"status" yaml:"status"`
}

// EffectiveStatus returns the stored status, or derives one from the balance.
func (inv Invoice) EffectiveStatus() string {
	if inv.Status != "" {
		return inv.Status
	}
	if inv.Balance == 0 {
		return InvoiceStatusPaid
	}
	return InvoiceStatusOpen
}

// Record converts the invoice into a dataset record keyed by InvoiceFields.
func (inv Invoice) Record() Record {
	rec := Record{
		"id":       inv.ID,
		"number":   inv.Number,
		"customer": inv.Customer,
		"date":     inv.TxnDate.Format(DateLayout),
		"due_date": "",
		"total":    inv.Total,
		"balance":  inv.Balance,
		"status":   inv.EffectiveStatus(),
	}
	if !inv.DueDate.IsZero() {
		rec["due_date"] = inv.DueDate.Format(DateLayout)
	}
	return rec
}

// LedgerQuery narrows the candidate invoices a ledger backend returns.
// Backends may apply the filters server-side; callers re-apply them.
type LedgerQuery struct {
	LedgerID    string
	DateRange   *DateRange
	AmountRange *AmountRange
	MaxResults  int
}
