package quickbooks

import (
	"fmt"
	"time"

	"github.com/drewfsc/saturday-night/internal/core/domain"
)

type queryResponse struct {
	QueryResponse struct {
		Invoice       []invoiceJSON `json:"Invoice"`
		StartPosition int           `json:"startPosition"`
		MaxResults    int           `json:"maxResults"`
	} `json:"QueryResponse"`
	Fault *fault `json:"Fault"`
}

type invoiceJSON struct {
	ID          string  `json:"Id"`
	DocNumber   string  `json:"DocNumber"`
	TxnDate     string  `json:"TxnDate"`
	DueDate     string  `json:"DueDate"`
	TotalAmt    float64 `json:"TotalAmt"`
	Balance     float64 `json:"Balance"`
	CustomerRef struct {
		Value string `json:"value"`
		Name  string `json:"name"`
	} `json:"CustomerRef"`
}

func (r invoiceJSON) toDomain() (domain.Invoice, error) {
	date, err := time.Parse(domain.DateLayout, r.TxnDate)
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("invalid TxnDate %q", r.TxnDate)
	}
	inv := domain.Invoice{
		ID:       r.ID,
		Number:   r.DocNumber,
		Customer: r.CustomerRef.Name,
		TxnDate:  date,
		Total:    r.TotalAmt,
		Balance:  r.Balance,
	}
	if inv.Customer == "" {
		inv.Customer = r.CustomerRef.Value
	}
	if r.DueDate != "" {
		if due, err := time.Parse(domain.DateLayout, r.DueDate); err == nil {
			inv.DueDate = due
		}
	}
	return inv, nil
}
