package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/drewfsc/saturday-night/internal/core/domain"
	"github.com/drewfsc/saturday-night/internal/core/ports/driven"
	"github.com/drewfsc/saturday-night/internal/core/ports/driving"
	"github.com/drewfsc/saturday-night/internal/logger"
)

// Ensure TabularService implements the interface.
var _ driving.TabularService = (*TabularService)(nil)

// Field names of a fetch_info dataset.
var sheetInfoFields = []string{"sheet", "index", "rows", "columns"}

// TabularService executes tabular intents against a spreadsheet backend.
type TabularService struct {
	backend driven.TabularBackend
	now     func() time.Time
}

// NewTabularService creates a new tabular service.
func NewTabularService(backend driven.TabularBackend) *TabularService {
	return &TabularService{
		backend: backend,
		now:     time.Now,
	}
}

// Fetch reads header-keyed rows. A named scope that does not exist falls
// back to the first sheet; only a spreadsheet without sheets is ErrNotFound.
func (s *TabularService) Fetch(ctx context.Context, intent domain.QueryIntent) (*domain.NormalizedDataset, error) {
	logger.Section("Tabular Fetch")

	if err := intent.Validate(); err != nil {
		return nil, err
	}

	scopeName, rng := intent.Scope, intent.Range
	if sheet, cells, ok := strings.Cut(rng, "!"); ok {
		scopeName, rng = strings.Trim(sheet, "'"), cells
	}

	info, err := s.backend.GetSpreadsheet(ctx, intent.SourceID)
	if err != nil {
		return nil, err
	}
	scope, err := resolveScope(info, scopeName)
	if err != nil {
		return nil, err
	}
	if scopeName != "" && !strings.EqualFold(scopeName, scope) {
		logger.Debug("sheet %q not found, using %q", scopeName, scope)
	}

	// Without an explicit range, read the header plus offset+limit rows.
	kind := domain.DatasetRange
	span := quoteSheet(scope) + "!" + rng
	if rng == "" {
		kind = domain.DatasetRows
		span = fmt.Sprintf("%s!1:%d", quoteSheet(scope), intent.Offset+intent.Limit+1)
	}
	logger.Debug("reading %s from %s", span, intent.SourceID)

	rows, err := s.backend.ReadRange(ctx, intent.SourceID, span)
	if err != nil {
		return nil, err
	}

	ds := &domain.NormalizedDataset{
		Kind:       kind,
		SourceID:   intent.SourceID,
		Scope:      scope,
		Range:      span,
		Fields:     []string{},
		Records:    []domain.Record{},
		ExecutedAt: s.now().UTC(),
		Filters:    intent.Filters(),
	}
	if len(rows) == 0 {
		return ds, nil
	}

	header := normalizeHeader(rows)
	data := rows[1:]

	if intent.Offset >= len(data) {
		data = nil
	} else {
		data = data[intent.Offset:]
	}
	ds.TotalMatched = len(data)
	if intent.Limit < len(data) {
		data = data[:intent.Limit]
	}

	indices := projectionIndices(header, ResolveFields(intent.RequestedFields, header))
	for _, i := range indices {
		ds.Fields = append(ds.Fields, header[i])
	}
	for _, row := range data {
		rec := make(domain.Record, len(indices))
		for _, i := range indices {
			rec[header[i]] = cell(row, i)
		}
		ds.Records = append(ds.Records, rec)
	}

	logger.Debug("fetched %d of %d rows from %q", len(ds.Records), ds.TotalMatched, scope)
	return ds, nil
}

// Info lists the sheets of the spreadsheet in display order.
func (s *TabularService) Info(ctx context.Context, intent domain.QueryIntent) (*domain.NormalizedDataset, error) {
	logger.Section("Tabular Info")

	if intent.SourceID == "" {
		return nil, fmt.Errorf("%w: no spreadsheet id", domain.ErrParse)
	}

	info, err := s.backend.GetSpreadsheet(ctx, intent.SourceID)
	if err != nil {
		return nil, err
	}

	ds := &domain.NormalizedDataset{
		Kind:         domain.DatasetSheets,
		SourceID:     intent.SourceID,
		Scope:        info.Title,
		Fields:       append([]string(nil), sheetInfoFields...),
		Records:      make([]domain.Record, 0, len(info.Sheets)),
		TotalMatched: len(info.Sheets),
		ExecutedAt:   s.now().UTC(),
	}
	for _, sh := range info.Sheets {
		ds.Records = append(ds.Records, domain.Record{
			"sheet":   sh.Title,
			"index":   sh.Index,
			"rows":    sh.RowCount,
			"columns": sh.ColumnCount,
		})
	}
	return ds, nil
}

// resolveScope matches name case-insensitively against the sheet titles,
// falling back to the first sheet.
func resolveScope(info *domain.SpreadsheetInfo, name string) (string, error) {
	if info == nil || len(info.Sheets) == 0 {
		return "", fmt.Errorf("%w: spreadsheet has no sheets", domain.ErrNotFound)
	}
	if name != "" {
		for _, sh := range info.Sheets {
			if strings.EqualFold(sh.Title, name) {
				return sh.Title, nil
			}
		}
	}
	return info.Sheets[0].Title, nil
}

// quoteSheet quotes a sheet title for use in A1 notation.
func quoteSheet(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

// normalizeHeader builds unique field names from the first row, widened to
// the widest row. Blank cells take their column letter; duplicates get a
// " (n)" suffix.
func normalizeHeader(rows [][]string) []string {
	width := 0
	for _, r := range rows {
		width = max(width, len(r))
	}

	header := make([]string, width)
	seen := make(map[string]struct{}, width)
	for i := range header {
		name := strings.TrimSpace(cell(rows[0], i))
		if name == "" {
			name = columnLetter(i)
		}
		unique := name
		for n := 2; ; n++ {
			if _, dup := seen[unique]; !dup {
				break
			}
			unique = name + " (" + strconv.Itoa(n) + ")"
		}
		seen[unique] = struct{}{}
		header[i] = unique
	}
	return header
}

// projectionIndices returns the header indices of the selected fields in
// selection order, or every index when nothing is selected.
func projectionIndices(header, selected []string) []int {
	indices := make([]int, 0, len(header))
	if len(selected) == 0 {
		for i := range header {
			indices = append(indices, i)
		}
		return indices
	}
	position := make(map[string]int, len(header))
	for i, h := range header {
		position[h] = i
	}
	for _, f := range selected {
		if i, ok := position[f]; ok {
			indices = append(indices, i)
		}
	}
	return indices
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// columnLetter converts a zero-based column index to A1 letters.
func columnLetter(i int) string {
	var b []byte
	for i++; i > 0; i = (i - 1) / 26 {
		b = append([]byte{byte('A' + (i-1)%26)}, b...)
	}
	return string(b)
}
