package services

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/drewfsc/saturday-night/internal/core/domain"
	"github.com/drewfsc/saturday-night/internal/core/ports/driving"
	"github.com/drewfsc/saturday-night/internal/logger"
)

// Ensure InterpreterService implements the interface.
var _ driving.Interpreter = (*InterpreterService)(nil)

const (
	baseConfidence   = 0.5
	signalConfidence = 0.1
)

// InterpreterService turns free text into a QueryIntent with the pattern library.
type InterpreterService struct {
	defaultSpreadsheet string
	defaultLedger      string
	now                func() time.Time
}

// InterpreterOption configures an InterpreterService.
type InterpreterOption func(*InterpreterService)

// WithClock sets the clock used to resolve relative dates.
func WithClock(now func() time.Time) InterpreterOption {
	return func(s *InterpreterService) {
		s.now = now
	}
}

// NewInterpreterService creates an interpreter with the configured default
// spreadsheet and ledger identifiers. Either may be empty.
func NewInterpreterService(sources domain.SourceSettings, opts ...InterpreterOption) *InterpreterService {
	s := &InterpreterService{
		defaultSpreadsheet: sources.DefaultSpreadsheetID,
		defaultLedger:      sources.DefaultLedgerID,
		now:                time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Interpret parses text into an intent. Evaluation order is fixed: source,
// scope, dates, amounts, limit, fields, action. Each step takes the first
// match of its own pattern list.
func (s *InterpreterService) Interpret(text string, overrides domain.Overrides) (domain.QueryIntent, error) {
	text = strings.TrimSpace(text)
	// The action decides which default source applies, so resolve it up front.
	action, explicitAction := MatchAction(text)
	return s.interpret(text, action, explicitAction, overrides)
}

// InterpretAs parses text with the action family fixed by the caller. A
// tabular family still narrows to fetch_range when the text names a range.
func (s *InterpreterService) InterpretAs(text string, action domain.Action, overrides domain.Overrides) (domain.QueryIntent, error) {
	if !action.IsValid() {
		return domain.QueryIntent{}, fmt.Errorf("%w: unknown action %q", domain.ErrValidation, action)
	}
	text = strings.TrimSpace(text)
	matched, explicit := MatchAction(text)
	if matched != action {
		explicit = false
	}
	return s.interpret(text, action, explicit, overrides)
}

func (s *InterpreterService) interpret(text string, action domain.Action, explicitAction bool, overrides domain.Overrides) (domain.QueryIntent, error) {
	signals := 0
	intent := domain.QueryIntent{Action: action}

	// 1. Source identifier.
	intent.SourceID = s.resolveSource(text, action, overrides)
	if intent.SourceID == "" {
		if action == domain.ActionSearchRecords {
			return domain.QueryIntent{}, fmt.Errorf("%w: no ledger id in the request and no default ledger configured", domain.ErrParse)
		}
		return domain.QueryIntent{}, fmt.Errorf("%w: no spreadsheet id in the request and no default spreadsheet configured", domain.ErrParse)
	}

	// 2. Scope, with A1 range extraction.
	if action.IsTabular() {
		if scope, ok := MatchScope(text); ok {
			intent.Scope = scope
			signals++
		}
		if rng, sheet, ok := MatchA1Range(text); ok {
			intent.Range = rng
			if intent.Scope == "" && sheet != "" {
				intent.Scope = sheet
			}
			if intent.Action == domain.ActionFetchRows {
				intent.Action = domain.ActionFetchRange
			}
			signals++
		}
		if intent.Scope == "" {
			intent.Scope = overrides.Scope
		}
	}

	// 3. Date range.
	if dr, ok := MatchDateRange(text, s.now()); ok {
		intent.DateRange = &dr
		signals++
	}

	// 4. Amount range.
	if ar, ok := MatchAmountRange(text); ok {
		intent.AmountRange = &ar
		signals++
	}

	// 5. Limit and offset.
	intent.Limit = action.DefaultLimit()
	if n, ok := MatchLimit(text); ok {
		intent.Limit = n
		signals++
	}
	if n, ok := MatchOffset(text); ok {
		intent.Offset = n
	}

	// 6. Requested fields, matched against real field names by the adapter.
	if tokens := MatchFieldTokens(text); len(tokens) > 0 {
		intent.RequestedFields = tokens
		signals++
	}

	// 7. Action keyword.
	if explicitAction {
		signals++
	}

	intent.Confidence = confidence(signals)

	logger.Debug("interpreted %q as %s on %s (confidence %.1f)", text, intent.Action, intent.SourceID, intent.Confidence)

	return intent, nil
}

func (s *InterpreterService) resolveSource(text string, action domain.Action, overrides domain.Overrides) string {
	if action == domain.ActionSearchRecords {
		if id, ok := MatchLedgerID(text); ok {
			return id
		}
		if overrides.SourceID != "" {
			return overrides.SourceID
		}
		return s.defaultLedger
	}
	if id, ok := MatchSpreadsheetID(text); ok {
		return id
	}
	if overrides.SourceID != "" {
		return overrides.SourceID
	}
	return s.defaultSpreadsheet
}

func confidence(signals int) float64 {
	c := baseConfidence + signalConfidence*float64(signals)
	return math.Min(1, math.Round(c*10)/10)
}
