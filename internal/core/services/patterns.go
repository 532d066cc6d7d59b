package services

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"github.com/drewfsc/saturday-night/internal/core/domain"
)

// Matchers are pure functions evaluated in list order; the first match wins.
// None of them merges results with another.

// DateMatcher resolves a date range from text relative to now.
type DateMatcher func(text string, now time.Time) (domain.DateRange, bool)

// AmountMatcher resolves an amount range from text.
type AmountMatcher func(text string) (domain.AmountRange, bool)

// DateMatchers is the date resolution order: relative keywords,
// then month names, then ISO dates.
var DateMatchers = []DateMatcher{
	matchRelativeDate,
	matchMonthName,
	matchISODates,
}

// AmountMatchers is the amount resolution order.
var AmountMatchers = []AmountMatcher{
	matchAmountBetween,
	matchAmountOver,
	matchAmountUnder,
	matchAmountExact,
}

// MatchDateRange returns the first date range resolved by DateMatchers.
func MatchDateRange(text string, now time.Time) (domain.DateRange, bool) {
	for _, m := range DateMatchers {
		if r, ok := m(text, now); ok {
			return r, true
		}
	}
	return domain.DateRange{}, false
}

// MatchAmountRange returns the first amount range resolved by AmountMatchers.
func MatchAmountRange(text string) (domain.AmountRange, bool) {
	for _, m := range AmountMatchers {
		if r, ok := m(text); ok {
			return r, true
		}
	}
	return domain.AmountRange{}, false
}

// Relative date keywords.

type relativeDate struct {
	pattern *regexp.Regexp
	resolve func(today time.Time) domain.DateRange
}

var relativeDates = []relativeDate{
	{regexp.MustCompile(`(?i)\btoday\b`), func(today time.Time) domain.DateRange {
		return domain.NewDateRange(today, today)
	}},
	{regexp.MustCompile(`(?i)\byesterday\b`), func(today time.Time) domain.DateRange {
		y := today.AddDate(0, 0, -1)
		return domain.NewDateRange(y, y)
	}},
	{regexp.MustCompile(`(?i)\bthis\s+week\b`), func(today time.Time) domain.DateRange {
		return domain.NewDateRange(startOfWeek(today), today)
	}},
	{regexp.MustCompile(`(?i)\blast\s+week\b`), func(today time.Time) domain.DateRange {
		monday := startOfWeek(today).AddDate(0, 0, -7)
		return domain.NewDateRange(monday, monday.AddDate(0, 0, 6))
	}},
	{regexp.MustCompile(`(?i)\bthis\s+month\b`), func(today time.Time) domain.DateRange {
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		return domain.NewDateRange(first, today)
	}},
	{regexp.MustCompile(`(?i)\blast\s+month\b`), func(today time.Time) domain.DateRange {
		first := time.Date(today.Year(), today.Month()-1, 1, 0, 0, 0, 0, time.UTC)
		return domain.NewDateRange(first, first.AddDate(0, 1, -1))
	}},
	{regexp.MustCompile(`(?i)\bthis\s+year\b`), func(today time.Time) domain.DateRange {
		first := time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		return domain.NewDateRange(first, today)
	}},
}

// startOfWeek returns the Monday of the week containing day.
func startOfWeek(day time.Time) time.Time {
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func matchRelativeDate(text string, now time.Time) (domain.DateRange, bool) {
	today := domain.CalendarDay(now)
	for _, rd := range relativeDates {
		if rd.pattern.MatchString(text) {
			return rd.resolve(today), true
		}
	}
	return domain.DateRange{}, false
}

// Month names.

var months = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

var (
	monthPattern = regexp.MustCompile(`(?i)\b(january|february|march|april|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sept|sep|oct|nov|dec)\b(?:\s+(\d{4})\b)?`)
	// "may" is only a month when a year follows it.
	mayPattern = regexp.MustCompile(`(?i)\bmay\s+(\d{4})\b`)
)

func matchMonthName(text string, now time.Time) (domain.DateRange, bool) {
	var name, year string
	if m := monthPattern.FindStringSubmatch(text); m != nil {
		name, year = m[1], m[2]
	} else if m := mayPattern.FindStringSubmatch(text); m != nil {
		name, year = "may", m[1]
	} else {
		return domain.DateRange{}, false
	}

	y := now.Year()
	if year != "" {
		if parsed, err := strconv.Atoi(year); err == nil {
			y = parsed
		}
	}
	first := time.Date(y, months[strings.ToLower(name)], 1, 0, 0, 0, 0, time.UTC)
	return domain.NewDateRange(first, first.AddDate(0, 1, -1)), true
}

// ISO dates.

var (
	isoPairPattern   = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})\s*(?:to|through|until|and|-)\s*(\d{4}-\d{2}-\d{2})`)
	isoSinglePattern = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})\b`)
)

func matchISODates(text string, _ time.Time) (domain.DateRange, bool) {
	if m := isoPairPattern.FindStringSubmatch(text); m != nil {
		if r, err := domain.ParseDateRange(m[1], m[2]); err == nil {
			return r, true
		}
	}
	if m := isoSinglePattern.FindStringSubmatch(text); m != nil {
		if r, err := domain.ParseDateRange(m[1], m[1]); err == nil {
			return r, true
		}
	}
	return domain.DateRange{}, false
}

// Amounts.

const amountExpr = `[$€£]?\s*(\d[\d,]*(?:\.\d+)?)`

var (
	amountBetweenPattern = regexp.MustCompile(`(?i)\b(?:between|from)\s+` + amountExpr + `\s+(?:and|to)\s+` + amountExpr)
	amountOverPattern    = regexp.MustCompile(`(?i)\b(?:over|above|greater\s+than|more\s+than)\s+` + amountExpr)
	amountUnderPattern   = regexp.MustCompile(`(?i)\b(?:under|below|less\s+than)\s+` + amountExpr)
	amountExactPattern   = regexp.MustCompile(`(?i)\b(?:exactly|equals?|equal\s+to)\s+` + amountExpr)
)

// ParseAmount parses a decimal amount after stripping currency symbols and
// thousand separators.
func ParseAmount(s string) (float64, bool) {
	cleaned := strings.NewReplacer("$", "", "€", "", "£", "", ",", "", " ", "").Replace(s)
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func matchAmountBetween(text string) (domain.AmountRange, bool) {
	m := amountBetweenPattern.FindStringSubmatch(text)
	if m == nil {
		return domain.AmountRange{}, false
	}
	lo, ok1 := ParseAmount(m[1])
	hi, ok2 := ParseAmount(m[2])
	if !ok1 || !ok2 {
		return domain.AmountRange{}, false
	}
	if hi < lo {
		lo, hi = hi, lo
	}
	return domain.AmountRange{Min: lo, Max: hi, Between: true}, true
}

func matchAmountOver(text string) (domain.AmountRange, bool) {
	m := amountOverPattern.FindStringSubmatch(text)
	if m == nil {
		return domain.AmountRange{}, false
	}
	v, ok := ParseAmount(m[1])
	if !ok {
		return domain.AmountRange{}, false
	}
	return domain.AmountRange{Min: v, Max: domain.AmountUnbounded}, true
}

func matchAmountUnder(text string) (domain.AmountRange, bool) {
	m := amountUnderPattern.FindStringSubmatch(text)
	if m == nil {
		return domain.AmountRange{}, false
	}
	v, ok := ParseAmount(m[1])
	if !ok {
		return domain.AmountRange{}, false
	}
	return domain.AmountRange{Min: 0, Max: v}, true
}

func matchAmountExact(text string) (domain.AmountRange, bool) {
	m := amountExactPattern.FindStringSubmatch(text)
	if m == nil {
		return domain.AmountRange{}, false
	}
	v, ok := ParseAmount(m[1])
	if !ok {
		return domain.AmountRange{}, false
	}
	return domain.AmountRange{Min: v, Max: v}, true
}

// Source identifiers.

var (
	spreadsheetIDPattern  = regexp.MustCompile(`(?i)\b(?:spreadsheet|sheet)[\s_-]*id\b(\s*[:=]|\s+is\b)?\s*(["']?)([A-Za-z0-9_-]{2,})`)
	spreadsheetURLPattern = regexp.MustCompile(`/spreadsheets/d/([A-Za-z0-9_-]+)`)
	ledgerIDPattern       = regexp.MustCompile(`(?i)\b(?:company|realm)[\s_-]*id\b(\s*[:=]|\s+is\b)?\s*(["']?)([A-Za-z0-9_-]+)`)
)

// MatchSpreadsheetID returns a spreadsheet identifier written in text,
// either as "spreadsheet id: X" or inside a spreadsheet URL.
func MatchSpreadsheetID(text string) (string, bool) {
	if m := spreadsheetURLPattern.FindStringSubmatch(text); m != nil {
		return m[1], true
	}
	return matchLabelledID(spreadsheetIDPattern, text)
}

// MatchLedgerID returns a ledger identifier written as "company id: X" or "realm id: X".
func MatchLedgerID(text string) (string, bool) {
	return matchLabelledID(ledgerIDPattern, text)
}

// matchLabelledID accepts the word after a label only when a separator or
// quote sets it off, or when it looks like an identifier, so that
// "the sheet id for Sales" yields nothing.
func matchLabelledID(pattern *regexp.Regexp, text string) (string, bool) {
	for _, m := range pattern.FindAllStringSubmatch(text, -1) {
		if m[1] != "" || m[2] != "" || looksLikeID(m[3]) {
			return m[3], true
		}
	}
	return "", false
}

// looksLikeID reports whether a bare token is shaped like an identifier
// rather than an English word.
func looksLikeID(token string) bool {
	if len(token) >= 10 {
		return true
	}
	return strings.ContainsAny(token, "0123456789_-")
}

// Scope.

var (
	namedScopePattern = regexp.MustCompile(`(?i)\b(?:sheet|tab)\s+(?:named|called)\s+(?:"([^"]+)"|'([^']+)'|([^\s,.;!?]+))`)
	theScopePattern   = regexp.MustCompile(`(?i)\bthe\s+(?:"([^"]+)"|'([^']+)'|([A-Za-z0-9_][\w-]*))\s+(?:sheet|tab)\b`)
)

// scopeExclusions are determiners that read like a scope in "the X sheet".
var scopeExclusions = map[string]struct{}{
	"first": {}, "this": {}, "that": {}, "same": {},
	"whole": {}, "entire": {}, "google": {}, "default": {},
}

// MatchScope returns a sheet name written as "sheet named X", "tab called 'X'"
// or "the X sheet".
func MatchScope(text string) (string, bool) {
	if m := namedScopePattern.FindStringSubmatch(text); m != nil {
		return firstNonEmpty(m[1:]...), true
	}
	for _, m := range theScopePattern.FindAllStringSubmatch(text, -1) {
		name := firstNonEmpty(m[1:]...)
		if _, skip := scopeExclusions[strings.ToLower(name)]; skip {
			continue
		}
		return name, true
	}
	return "", false
}

// A1 ranges.

var a1RangePattern = regexp.MustCompile(`(?:(?:'([^']+)'|([A-Za-z0-9_]+))!)?\b([A-Z]{1,3}[0-9]{1,7}:[A-Z]{1,3}[0-9]{1,7})\b`)

// MatchA1Range returns an A1 range such as "A1:C10" and the sheet name that
// prefixes it, if any.
func MatchA1Range(text string) (rng, sheet string, ok bool) {
	m := a1RangePattern.FindStringSubmatch(text)
	if m == nil {
		return "", "", false
	}
	return m[3], firstNonEmpty(m[1], m[2]), true
}

// Limits and offsets.

var (
	limitPattern  = regexp.MustCompile(`(?i)\b(?:first|top|limit|show)\s+(?:to\s+)?(\d+)\b`)
	offsetPattern = regexp.MustCompile(`(?i)\b(?:skip|offset)\s+(?:by\s+)?(\d+)\b`)
)

// MatchLimit returns the N of "first/top/limit/show N".
func MatchLimit(text string) (int, bool) {
	return matchCount(limitPattern, text)
}

// MatchOffset returns the N of "skip/offset N".
func MatchOffset(text string) (int, bool) {
	return matchCount(offsetPattern, text)
}

func matchCount(p *regexp.Regexp, text string) (int, bool) {
	m := p.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Requested fields.

var (
	fieldsPattern   = regexp.MustCompile(`(?i)\b(?:fields|columns|only|just)\b\s*:?\s*([^.;!?]+?)(?:\s+(?:from|in|of|on|for|where|with|sorted|ordered)\b|[.;!?]|$)`)
	fieldSeparators = regexp.MustCompile(`(?i)\s*(?:,|&|\band\b|\s)\s*`)
)

var fieldStopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "me": {}, "show": {}, "get": {},
}

// MatchFieldTokens returns the ordered, unique tokens of a
// "fields/columns/only/just: a, b" clause.
func MatchFieldTokens(text string) []string {
	m := fieldsPattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var tokens []string
	for _, tok := range fieldSeparators.Split(m[1], -1) {
		tok = strings.Trim(tok, `"'`)
		if tok == "" {
			continue
		}
		key := strings.ToLower(tok)
		if _, stop := fieldStopwords[key]; stop {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		tokens = append(tokens, tok)
	}
	return tokens
}

// ResolveFields matches requested tokens against actual field names by
// case-insensitive containment in either direction. It returns the matched
// field names in token order without duplicates. Unmatched tokens are
// dropped; a nil result means no projection applies.
func ResolveFields(tokens, fields []string) []string {
	if len(tokens) == 0 {
		return nil
	}
	fold := cases.Fold()
	folded := make([]string, len(fields))
	for i, f := range fields {
		folded[i] = fold.String(strings.TrimSpace(f))
	}

	seen := make(map[string]struct{})
	var resolved []string
	for _, tok := range tokens {
		t := fold.String(strings.TrimSpace(tok))
		if t == "" {
			continue
		}
		for i, f := range folded {
			if f == "" || !(strings.Contains(f, t) || containsField(t, f)) {
				continue
			}
			if _, dup := seen[fields[i]]; dup {
				continue
			}
			seen[fields[i]] = struct{}{}
			resolved = append(resolved, fields[i])
		}
	}
	return resolved
}

// minReverseField is the shortest field name matched inside a longer
// token. Shorter names, such as the column letters given to blank header
// cells, would match almost any word.
const minReverseField = 3

func containsField(token, field string) bool {
	return utf8.RuneCountInString(field) >= minReverseField && strings.Contains(token, field)
}

// Actions.

var (
	invoicePattern = regexp.MustCompile(`(?i)invoice`)
	infoPattern    = regexp.MustCompile(`(?i)\b(?:info|information|details|metadata)\b`)
	rangePattern   = regexp.MustCompile(`(?i)\b(?:range|cell\s+coordinates|cells?)\b`)
)

// MatchAction resolves the action from keywords. An invoice mention anywhere
// wins; the boolean reports whether any keyword was present.
func MatchAction(text string) (domain.Action, bool) {
	switch {
	case invoicePattern.MatchString(text):
		return domain.ActionSearchRecords, true
	case infoPattern.MatchString(text):
		return domain.ActionFetchInfo, true
	case rangePattern.MatchString(text) || a1RangePattern.MatchString(text):
		return domain.ActionFetchRange, true
	default:
		return domain.ActionFetchRows, false
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
