package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
)

// DateLayout is the ISO calendar date layout used in intents and datasets.
const DateLayout = "2006-01-02"

// Default result limits per action family.
const (
	// DefaultRowLimit bounds tabular fetches when the request names no limit.
	DefaultRowLimit = 5
	// DefaultRecordLimit bounds invoice searches when the request names no limit.
	DefaultRecordLimit = 10
)

// AmountUnbounded is the sentinel upper bound for open-ended amount ranges
// such as "over $1000".
const AmountUnbounded = math.MaxFloat64

// Action identifies which adapter operation an intent resolves to.
type Action string

// Available actions.
const (
	// ActionFetchRows reads header-keyed rows from a sheet.
	ActionFetchRows Action = "fetch_rows"

	// ActionFetchInfo reads spreadsheet metadata (sheet names and sizes).
	ActionFetchInfo Action = "fetch_info"

	// ActionFetchRange reads an explicit A1 range.
	ActionFetchRange Action = "fetch_range"

	// ActionSearchRecords searches invoices in the ledger.
	ActionSearchRecords Action = "search_records"
)

// IsValid returns true if the action is recognised.
func (a Action) IsValid() bool {
	switch a {
	case ActionFetchRows, ActionFetchInfo, ActionFetchRange, ActionSearchRecords:
		return true
	default:
		return false
	}
}

// IsTabular returns true if the action is served by the tabular adapter.
func (a Action) IsTabular() bool {
	return a == ActionFetchRows || a == ActionFetchInfo || a == ActionFetchRange
}

// DefaultLimit returns the limit used when the request names none.
func (a Action) DefaultLimit() int {
	if a == ActionSearchRecords {
		return DefaultRecordLimit
	}
	return DefaultRowLimit
}

// String returns the string representation.
func (a Action) String() string {
	return string(a)
}

// DateRange is an inclusive range of calendar days.
// Start and End carry no time-of-day component and Start <= End.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange builds a range from two instants, truncating both to their
// calendar day and ordering them so that Start <= End.
func NewDateRange(start, end time.Time) DateRange {
	s, e := CalendarDay(start), CalendarDay(end)
	if e.Before(s) {
		s, e = e, s
	}
	return DateRange{Start: s, End: e}
}

// ParseDateRange parses two ISO dates into a range.
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: start date %q is not YYYY-MM-DD", ErrValidation, start)
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return DateRange{}, fmt.Errorf("%w: end date %q is not YYYY-MM-DD", ErrValidation, end)
	}
	return NewDateRange(s, e), nil
}

// CalendarDay returns midnight UTC of the calendar day t falls on in its own location.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Contains reports whether t falls on a day inside the range (inclusive).
func (r DateRange) Contains(t time.Time) bool {
	day := CalendarDay(t)
	return !day.Before(r.Start) && !day.After(r.End)
}

// String renders the range the way it is spoken in responses.
func (r DateRange) String() string {
	if r.Start.Equal(r.End) {
		return "on " + r.Start.Format(DateLayout)
	}
	return "from " + r.Start.Format(DateLayout) + " to " + r.End.Format(DateLayout)
}

type dateRangeJSON struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// MarshalJSON encodes the range as ISO dates.
func (r DateRange) MarshalJSON() ([]byte, error) {
	return json.Marshal(dateRangeJSON{
		Start: r.Start.Format(DateLayout),
		End:   r.End.Format(DateLayout),
	})
}

// UnmarshalJSON decodes a range from ISO dates.
func (r *DateRange) UnmarshalJSON(data []byte) error {
	var raw dateRangeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseDateRange(raw.Start, raw.End)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// AmountRange is an inclusive, currency-agnostic range of decimal amounts.
type AmountRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`

	// Between records that both bounds were given, so a zero minimum is
	// still spoken as a range.
	Between bool `json:"-"`
}

// Contains reports whether v lies inside the range (inclusive).
func (r AmountRange) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// IsOpenEnded returns true if the range has no upper bound.
func (r AmountRange) IsOpenEnded() bool {
	return r.Max == AmountUnbounded
}

// String renders the range the way it is spoken in responses.
func (r AmountRange) String() string {
	switch {
	case r.IsOpenEnded():
		return "over " + FormatAmount(r.Min)
	case r.Min == r.Max:
		return "of exactly " + FormatAmount(r.Min)
	case r.Min == 0 && !r.Between:
		return "under " + FormatAmount(r.Max)
	default:
		return "between " + FormatAmount(r.Min) + " and " + FormatAmount(r.Max)
	}
}

// FormatAmount renders an amount with a dollar sign and no thousand separators.
func FormatAmount(v float64) string {
	return "$" + strconv.FormatFloat(v, 'f', -1, 64)
}

// Overrides are caller-supplied values that take precedence over defaults
// but not over identifiers written inline in the request text.
type Overrides struct {
	SourceID string `json:"sourceId,omitempty"`
	Scope    string `json:"scope,omitempty"`
}

// QueryIntent is the structured form of a free-text request.
type QueryIntent struct {
	Action          Action       `json:"action"`
	SourceID        string       `json:"sourceId"`
	Scope           string       `json:"scope,omitempty"`
	Range           string       `json:"range,omitempty"`
	Limit           int          `json:"limit"`
	Offset          int          `json:"offset,omitempty"`
	DateRange       *DateRange   `json:"dateRange,omitempty"`
	AmountRange     *AmountRange `json:"amountRange,omitempty"`
	RequestedFields []string     `json:"requestedFields,omitempty"`
	Confidence      float64      `json:"confidence"`
}

// Validate checks the intent's invariants.
func (q QueryIntent) Validate() error {
	if !q.Action.IsValid() {
		return fmt.Errorf("%w: unknown action %q", ErrValidation, q.Action)
	}
	if q.SourceID == "" {
		return fmt.Errorf("%w: no source identifier", ErrParse)
	}
	if q.Limit < 0 {
		return fmt.Errorf("%w: limit must not be negative", ErrValidation)
	}
	if q.Offset < 0 {
		return fmt.Errorf("%w: offset must not be negative", ErrValidation)
	}
	if q.DateRange != nil && q.DateRange.End.Before(q.DateRange.Start) {
		return fmt.Errorf("%w: date range ends before it starts", ErrValidation)
	}
	if q.AmountRange != nil && q.AmountRange.Max < q.AmountRange.Min {
		return fmt.Errorf("%w: amount range maximum is below its minimum", ErrValidation)
	}
	if q.Confidence < 0 || q.Confidence > 1 {
		return fmt.Errorf("%w: confidence must be within [0,1]", ErrValidation)
	}
	return nil
}

// Filters returns the record filters carried by the intent, or nil if none.
func (q QueryIntent) Filters() *Filters {
	if q.DateRange == nil && q.AmountRange == nil {
		return nil
	}
	return &Filters{DateRange: q.DateRange, AmountRange: q.AmountRange}
}
