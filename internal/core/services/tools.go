package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/drewfsc/saturday-night/internal/core/domain"
	"github.com/drewfsc/saturday-night/internal/core/ports/driven"
	"github.com/drewfsc/saturday-night/internal/core/ports/driving"
)

// Tool names.
const (
	ToolQueryData      = "query_data"
	ToolReadSheet      = "read_sheet"
	ToolSheetInfo      = "sheet_info"
	ToolSearchInvoices = "search_invoices"
)

// Memoized function names; they prefix cache keys.
const (
	cacheFetchRows      = "tabular.fetch"
	cacheFetchInfo      = "tabular.info"
	cacheSearchInvoices = "invoice.search"
)

// DatasetFunc executes an intent against one adapter operation.
type DatasetFunc func(context.Context, domain.QueryIntent) (*domain.NormalizedDataset, error)

// ToolServices is what tool handlers are given. Adapter operations are held
// as function values so that caching is applied by composition.
type ToolServices struct {
	Interpreter    driving.Interpreter
	Formatter      driving.Formatter
	FetchRows      DatasetFunc
	FetchInfo      DatasetFunc
	SearchInvoices DatasetFunc
}

// NewToolServices wires the adapters, memoizing each operation with backend.
// A nil backend or non-positive ttl disables memoization.
func NewToolServices(
	interpreter driving.Interpreter,
	tabular driving.TabularService,
	invoices driving.InvoiceService,
	formatter driving.Formatter,
	backend driven.CacheBackend,
	ttl time.Duration,
	opts ...MemoizeOption,
) *ToolServices {
	return &ToolServices{
		Interpreter:    interpreter,
		Formatter:      formatter,
		FetchRows:      Memoize(cacheFetchRows, tabular.Fetch, ttl, backend, opts...),
		FetchInfo:      Memoize(cacheFetchInfo, tabular.Info, ttl, backend, opts...),
		SearchInvoices: Memoize(cacheSearchInvoices, invoices.Search, ttl, backend, opts...),
	}
}

// Execute routes an intent to the adapter operation its action names.
func (s *ToolServices) Execute(ctx context.Context, intent domain.QueryIntent) (*domain.NormalizedDataset, error) {
	switch intent.Action {
	case domain.ActionSearchRecords:
		return s.SearchInvoices(ctx, intent)
	case domain.ActionFetchInfo:
		return s.FetchInfo(ctx, intent)
	case domain.ActionFetchRows, domain.ActionFetchRange:
		return s.FetchRows(ctx, intent)
	default:
		return nil, fmt.Errorf("%w: unknown action %q", domain.ErrValidation, intent.Action)
	}
}

// DefaultTools returns the tool registry contents in publication order.
func DefaultTools() []Tool {
	return []Tool{
		{
			Descriptor: domain.ToolDescriptor{
				Name: ToolQueryData,
				Description: "Answer a natural-language question about a spreadsheet or the invoice ledger. " +
					"Mention invoices to search the ledger; otherwise rows, ranges or sheet info are read.",
				InputSchema: objectSchema(map[string]any{
					"query":         map[string]any{"type": "string", "minLength": 1, "description": "The request in plain language"},
					"spreadsheetId": map[string]any{"type": "string", "description": "Spreadsheet to read when the query names none"},
					"sheetName":     map[string]any{"type": "string", "description": "Sheet to read when the query names none"},
				}, "query"),
			},
			Handler: handleQueryData,
		},
		{
			Descriptor: domain.ToolDescriptor{
				Name:        ToolReadSheet,
				Description: "Read header-keyed rows or an A1 range from a spreadsheet. Explicit arguments override the query.",
				InputSchema: objectSchema(map[string]any{
					"query":         map[string]any{"type": "string"},
					"spreadsheetId": map[string]any{"type": "string"},
					"sheetName":     map[string]any{"type": "string"},
					"range":         map[string]any{"type": "string", "description": "A1 range such as A1:C10 or Sales!A1:C10"},
					"limit":         map[string]any{"type": "integer", "minimum": 0},
					"offset":        map[string]any{"type": "integer", "minimum": 0},
					"fields": map[string]any{
						"description": "Field names to keep, as a list or a comma-separated string",
						"oneOf": []any{
							map[string]any{"type": "string"},
							map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
						},
					},
				}),
			},
			Handler: handleReadSheet,
		},
		{
			Descriptor: domain.ToolDescriptor{
				Name:        ToolSheetInfo,
				Description: "List the sheets of a spreadsheet with their sizes.",
				InputSchema: objectSchema(map[string]any{
					"spreadsheetId": map[string]any{"type": "string"},
				}),
			},
			Handler: handleSheetInfo,
		},
		{
			Descriptor: domain.ToolDescriptor{
				Name:        ToolSearchInvoices,
				Description: "Search ledger invoices by date and amount. Explicit arguments override the query.",
				InputSchema: withDependencies(objectSchema(map[string]any{
					"query":     map[string]any{"type": "string"},
					"startDate": map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
					"endDate":   map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
					"minAmount": map[string]any{"type": "number", "minimum": 0},
					"maxAmount": map[string]any{"type": "number", "minimum": 0},
					"limit":     map[string]any{"type": "integer", "minimum": 0},
				}), map[string]any{
					"startDate": []any{"endDate"},
					"endDate":   []any{"startDate"},
				}),
			},
			Handler: handleSearchInvoices,
		},
	}
}

// objectSchema builds an input schema that also accepts responseFormat.
func objectSchema(properties map[string]any, required ...string) map[string]any {
	properties["responseFormat"] = map[string]any{
		"type":        "string",
		"enum":        toAnySlice(domain.ResponseFormats),
		"default":     string(domain.ResponseBoth),
		"description": "Which outputs to return",
	}
	schema := map[string]any{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		schema["required"] = toAnySlice(required)
	}
	return schema
}

func withDependencies(schema map[string]any, deps map[string]any) map[string]any {
	schema["dependencies"] = deps
	return schema
}

func toAnySlice(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// Handlers.

func handleQueryData(ctx context.Context, args map[string]any, svc *ToolServices) (*domain.FormattedResult, error) {
	format, err := responseFormat(args)
	if err != nil {
		return nil, err
	}
	query := argString(args, "query")

	overrides := domain.Overrides{Scope: argString(args, "sheetName")}
	// spreadsheetId only stands in for a spreadsheet, never for a ledger.
	if action, _ := MatchAction(query); action.IsTabular() {
		overrides.SourceID = argString(args, "spreadsheetId")
	}

	intent, err := svc.Interpreter.Interpret(query, overrides)
	if err != nil {
		return nil, err
	}
	ds, err := svc.Execute(ctx, intent)
	if err != nil {
		return nil, err
	}
	return svc.Formatter.Format(ds, format), nil
}

func handleReadSheet(ctx context.Context, args map[string]any, svc *ToolServices) (*domain.FormattedResult, error) {
	format, err := responseFormat(args)
	if err != nil {
		return nil, err
	}

	overrides := domain.Overrides{
		SourceID: argString(args, "spreadsheetId"),
		Scope:    argString(args, "sheetName"),
	}
	intent, err := svc.Interpreter.InterpretAs(argString(args, "query"), domain.ActionFetchRows, overrides)
	if err != nil {
		return nil, err
	}

	if v := argString(args, "sheetName"); v != "" {
		intent.Scope = v
	}
	if v := argString(args, "range"); v != "" {
		intent.Range = v
	}
	if intent.Range != "" {
		intent.Action = domain.ActionFetchRange
	}
	if v, ok := argInt(args, "limit"); ok {
		intent.Limit = v
	}
	if v, ok := argInt(args, "offset"); ok {
		intent.Offset = v
	}
	if fields := argStrings(args, "fields"); len(fields) > 0 {
		intent.RequestedFields = fields
	}

	ds, err := svc.FetchRows(ctx, intent)
	if err != nil {
		return nil, err
	}
	return svc.Formatter.Format(ds, format), nil
}

func handleSheetInfo(ctx context.Context, args map[string]any, svc *ToolServices) (*domain.FormattedResult, error) {
	format, err := responseFormat(args)
	if err != nil {
		return nil, err
	}

	intent, err := svc.Interpreter.InterpretAs("", domain.ActionFetchInfo, domain.Overrides{
		SourceID: argString(args, "spreadsheetId"),
	})
	if err != nil {
		return nil, err
	}

	ds, err := svc.FetchInfo(ctx, intent)
	if err != nil {
		return nil, err
	}
	return svc.Formatter.Format(ds, format), nil
}

func handleSearchInvoices(ctx context.Context, args map[string]any, svc *ToolServices) (*domain.FormattedResult, error) {
	format, err := responseFormat(args)
	if err != nil {
		return nil, err
	}

	intent, err := svc.Interpreter.InterpretAs(argString(args, "query"), domain.ActionSearchRecords, domain.Overrides{})
	if err != nil {
		return nil, err
	}

	start, end := argString(args, "startDate"), argString(args, "endDate")
	if start != "" || end != "" {
		dr, err := domain.ParseDateRange(start, end)
		if err != nil {
			return nil, err
		}
		intent.DateRange = &dr
	}

	minAmount, hasMin := argFloat(args, "minAmount")
	maxAmount, hasMax := argFloat(args, "maxAmount")
	switch {
	case hasMin && hasMax:
		if maxAmount < minAmount {
			return nil, fmt.Errorf("%w: maxAmount is below minAmount", domain.ErrValidation)
		}
		intent.AmountRange = &domain.AmountRange{Min: minAmount, Max: maxAmount, Between: true}
	case hasMin:
		intent.AmountRange = &domain.AmountRange{Min: minAmount, Max: domain.AmountUnbounded}
	case hasMax:
		intent.AmountRange = &domain.AmountRange{Min: 0, Max: maxAmount}
	}

	if v, ok := argInt(args, "limit"); ok {
		intent.Limit = v
	}

	ds, err := svc.SearchInvoices(ctx, intent)
	if err != nil {
		return nil, err
	}
	return svc.Formatter.Format(ds, format), nil
}

// Argument helpers. Arguments arrive either decoded from JSON (float64
// numbers) or built in Go.

func responseFormat(args map[string]any) (domain.ResponseFormat, error) {
	return domain.ParseResponseFormat(argString(args, "responseFormat"))
}

func argString(args map[string]any, key string) string {
	if s, ok := args[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func argFloat(args map[string]any, key string) (float64, bool) {
	switch v := args[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func argInt(args map[string]any, key string) (int, bool) {
	f, ok := argFloat(args, key)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

func argStrings(args map[string]any, key string) []string {
	var raw []string
	switch v := args[key].(type) {
	case string:
		raw = strings.Split(v, ",")
	case []string:
		raw = v
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			}
		}
	}
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
