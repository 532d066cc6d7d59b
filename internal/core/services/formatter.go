package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/drewfsc/saturday-night/internal/core/domain"
	"github.com/drewfsc/saturday-night/internal/core/ports/driving"
)

// Ensure FormatterService implements the interface.
var _ driving.Formatter = (*FormatterService)(nil)

// VerbalRecordCap bounds how many records are spoken, independently of the
// intent's limit.
const VerbalRecordCap = 10

// FormatterService renders datasets as verbal summaries and structured payloads.
type FormatterService struct{}

// NewFormatterService creates a new formatter.
func NewFormatterService() *FormatterService {
	return &FormatterService{}
}

// Format populates only the outputs format asks for.
func (f *FormatterService) Format(ds *domain.NormalizedDataset, format domain.ResponseFormat) *domain.FormattedResult {
	if format == "" {
		format = domain.ResponseBoth
	}
	result := &domain.FormattedResult{}
	if format.IncludesVerbal() {
		result.Verbal = Verbal(ds)
	}
	if format.IncludesStructured() {
		result.Data = ds
	}
	return result
}

// Verbal renders ds for conversational output.
func Verbal(ds *domain.NormalizedDataset) string {
	if ds == nil {
		return "No data."
	}
	if len(ds.Records) == 0 {
		return nothingFound(ds)
	}

	var b strings.Builder
	b.WriteString(header(ds))

	shown := min(len(ds.Records), VerbalRecordCap)
	for i, rec := range ds.Records[:shown] {
		parts := make([]string, 0, len(ds.Fields))
		for _, field := range ds.Fields {
			parts = append(parts, field+": "+formatValue(rec[field]))
		}
		fmt.Fprintf(&b, "\n%d. %s", i+1, strings.Join(parts, ", "))
	}
	if rest := len(ds.Records) - shown; rest > 0 {
		fmt.Fprintf(&b, "\n...and %d more.", rest)
	}
	return b.String()
}

func header(ds *domain.NormalizedDataset) string {
	n, total := len(ds.Records), ds.TotalMatched
	var b strings.Builder
	if total > n {
		fmt.Fprintf(&b, "Showing %d of %d %s", n, total, ds.Kind.Noun())
	} else {
		fmt.Fprintf(&b, "Found %d %s", n, noun(ds.Kind, n))
	}
	b.WriteString(location(ds))
	b.WriteString(filterPhrase(ds.Filters))
	if len(ds.Fields) > 0 {
		fmt.Fprintf(&b, " (fields: %s)", strings.Join(ds.Fields, ", "))
	}
	b.WriteString(":")
	return b.String()
}

// nothingFound names the scope and every active filter.
func nothingFound(ds *domain.NormalizedDataset) string {
	return "No " + ds.Kind.Noun() + " found" + location(ds) + filterPhrase(ds.Filters) + "."
}

func location(ds *domain.NormalizedDataset) string {
	if ds.Scope == "" {
		return ""
	}
	switch ds.Kind {
	case domain.DatasetSheets:
		return " in " + strconv.Quote(ds.Scope)
	case domain.DatasetInvoices:
		return ""
	default:
		return " in " + ds.Scope
	}
}

func filterPhrase(f *domain.Filters) string {
	if f == nil {
		return ""
	}
	var parts []string
	if f.AmountRange != nil {
		parts = append(parts, f.AmountRange.String())
	}
	if f.DateRange != nil {
		parts = append(parts, f.DateRange.String())
	}
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, " ")
}

func noun(kind domain.DatasetKind, n int) string {
	plural := kind.Noun()
	if n == 1 {
		return strings.TrimSuffix(plural, "s")
	}
	return plural
}

func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "(blank)"
	case string:
		if val == "" {
			return "(blank)"
		}
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	default:
		return fmt.Sprint(val)
	}
}
