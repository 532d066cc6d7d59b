package domain

import (
	"fmt"
	"time"
)

// DatasetKind describes what the records of a dataset represent.
type DatasetKind string

// Available dataset kinds.
const (
	// DatasetRows holds header-keyed sheet rows.
	DatasetRows DatasetKind = "rows"
	// DatasetSheets holds one record per sheet of a spreadsheet.
	DatasetSheets DatasetKind = "sheets"
	// DatasetRange holds the cells of an explicit A1 range.
	DatasetRange DatasetKind = "range"
	// DatasetInvoices holds ledger invoices.
	DatasetInvoices DatasetKind = "invoices"
)

// Noun returns the plural noun used when speaking about the records.
func (k DatasetKind) Noun() string {
	switch k {
	case DatasetSheets:
		return "sheets"
	case DatasetInvoices:
		return "invoices"
	default:
		return "rows"
	}
}

// Record maps field names to values.
type Record map[string]any

// Filters are the record filters that were active when a dataset was built.
type Filters struct {
	DateRange   *DateRange   `json:"dateRange,omitempty"`
	AmountRange *AmountRange `json:"amountRange,omitempty"`
}

// NormalizedDataset is the uniform result shape of every source adapter.
type NormalizedDataset struct {
	Kind         DatasetKind `json:"kind"`
	SourceID     string      `json:"sourceId"`
	Scope        string      `json:"scope,omitempty"`
	Range        string      `json:"range,omitempty"`
	Fields       []string    `json:"fields"`
	Records      []Record    `json:"records"`
	TotalMatched int         `json:"totalMatched"`
	ExecutedAt   time.Time   `json:"executedAt"`
	Filters      *Filters    `json:"filters,omitempty"`
}

// Validate checks the dataset's invariants: fields are unique, every record's
// keys are declared fields and TotalMatched covers the returned records.
func (d *NormalizedDataset) Validate() error {
	declared := make(map[string]struct{}, len(d.Fields))
	for _, f := range d.Fields {
		if _, dup := declared[f]; dup {
			return fmt.Errorf("duplicate field %q", f)
		}
		declared[f] = struct{}{}
	}
	for i, rec := range d.Records {
		for key := range rec {
			if _, ok := declared[key]; !ok {
				return fmt.Errorf("record %d has undeclared field %q", i, key)
			}
		}
	}
	if d.TotalMatched < len(d.Records) {
		return fmt.Errorf("total matched %d is below record count %d", d.TotalMatched, len(d.Records))
	}
	return nil
}

// Truncated returns true if more records matched than were returned.
func (d *NormalizedDataset) Truncated() bool {
	return d.TotalMatched > len(d.Records)
}

// SheetInfo describes one sheet (tab) of a spreadsheet.
type SheetInfo struct {
	Title       string `json:"title"`
	Index       int    `json:"index"`
	RowCount    int    `json:"rowCount"`
	ColumnCount int    `json:"columnCount"`
}

// SpreadsheetInfo describes a spreadsheet and its sheets in display order.
type SpreadsheetInfo struct {
	ID     string      `json:"id"`
	Title  string      `json:"title"`
	Sheets []SheetInfo `json:"sheets"`
}
