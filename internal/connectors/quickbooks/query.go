package quickbooks

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/drewfsc/saturday-night/internal/core/domain"
)

// MaxPageSize is the largest page the query endpoint returns.
const MaxPageSize = 1000

// BuildInvoiceQuery renders the invoice query for one page.
// startPosition is 1-based.
func BuildInvoiceQuery(q domain.LedgerQuery, startPosition, pageSize int) string {
	var where []string
	if q.DateRange != nil {
		where = append(where,
			fmt.Sprintf("TxnDate >= '%s'", q.DateRange.Start.Format(domain.DateLayout)),
			fmt.Sprintf("TxnDate <= '%s'", q.DateRange.End.Format(domain.DateLayout)))
	}
	if q.AmountRange != nil {
		if q.AmountRange.Min > 0 {
			where = append(where, fmt.Sprintf("TotalAmt >= '%s'", formatAmount(q.AmountRange.Min)))
		}
		if !q.AmountRange.IsOpenEnded() {
			where = append(where, fmt.Sprintf("TotalAmt <= '%s'", formatAmount(q.AmountRange.Max)))
		}
	}

	var b strings.Builder
	b.WriteString("SELECT * FROM Invoice")
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	b.WriteString(" ORDERBY TxnDate DESC")
	fmt.Fprintf(&b, " STARTPOSITION %d MAXRESULTS %d", startPosition, pageSize)
	return b.String()
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
