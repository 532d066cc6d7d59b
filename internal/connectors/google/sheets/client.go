// Package sheets implements the spreadsheet backend on the Google Sheets API.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/drewfsc/saturday-night/internal/adapters/driven/auth"
	"github.com/drewfsc/saturday-night/internal/connectors/google"
	"github.com/drewfsc/saturday-night/internal/core/domain"
	"github.com/drewfsc/saturday-night/internal/core/ports/driven"
	"github.com/drewfsc/saturday-night/internal/logger"
	"github.com/drewfsc/saturday-night/internal/metrics"
)

// Ensure Client implements the TabularBackend interface.
var _ driven.TabularBackend = (*Client)(nil)

// spreadsheetFields limits Spreadsheets.Get to what SpreadsheetInfo needs.
const spreadsheetFields = "spreadsheetId,properties.title,sheets.properties(sheetId,title,index,gridProperties)"

// Client reads spreadsheets through the Sheets API.
type Client struct {
	svc     *sheets.Service
	limiter *google.RateLimiter
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithRateLimiter replaces the default Sheets rate limiter.
func WithRateLimiter(l *google.RateLimiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// NewClient wraps an existing Sheets service. Each call is bounded by timeout.
func NewClient(svc *sheets.Service, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = domain.DefaultUpstreamTimeout
	}
	c := &Client{
		svc:     svc,
		limiter: google.NewRateLimiter(google.ServiceSheets),
		timeout: timeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// New creates a Client authenticated by provider.
func New(
	ctx context.Context,
	provider driven.TokenProvider,
	timeout time.Duration,
	clientOpts ...option.ClientOption,
) (*Client, error) {
	svc, err := google.NewSheetsService(ctx, auth.TokenSource(ctx, "google", provider), clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return NewClient(svc, timeout), nil
}

// GetSpreadsheet returns the spreadsheet title and its sheets in display order.
func (c *Client) GetSpreadsheet(ctx context.Context, spreadsheetID string) (*domain.SpreadsheetInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, c.wrap(err, "spreadsheet "+spreadsheetID)
	}

	start := time.Now()
	resp, err := c.svc.Spreadsheets.Get(spreadsheetID).
		Fields(googleapi.Field(spreadsheetFields)).
		Context(ctx).
		Do()
	metrics.ObserveUpstream("sheets", start, err)
	if err != nil {
		return nil, c.wrap(err, "spreadsheet "+spreadsheetID)
	}

	info := &domain.SpreadsheetInfo{ID: spreadsheetID}
	if resp.Properties != nil {
		info.Title = resp.Properties.Title
	}
	for _, sh := range resp.Sheets {
		if sh.Properties == nil {
			continue
		}
		si := domain.SheetInfo{
			Title: sh.Properties.Title,
			Index: int(sh.Properties.Index),
		}
		if g := sh.Properties.GridProperties; g != nil {
			si.RowCount = int(g.RowCount)
			si.ColumnCount = int(g.ColumnCount)
		}
		info.Sheets = append(info.Sheets, si)
	}
	logger.Debug("spreadsheet %s has %d sheets", spreadsheetID, len(info.Sheets))
	return info, nil
}

// ReadRange returns the formatted cell values of an A1 range.
func (c *Client) ReadRange(ctx context.Context, spreadsheetID, a1Range string) ([][]string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	what := fmt.Sprintf("range %s of spreadsheet %s", a1Range, spreadsheetID)
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, c.wrap(err, what)
	}

	start := time.Now()
	resp, err := c.svc.Spreadsheets.Values.Get(spreadsheetID, a1Range).
		ValueRenderOption("FORMATTED_VALUE").
		MajorDimension("ROWS").
		Context(ctx).
		Do()
	metrics.ObserveUpstream("sheets", start, err)
	if err != nil {
		return nil, c.wrap(err, what)
	}

	rows := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		rows[i] = make([]string, len(row))
		for j, cell := range row {
			rows[i][j] = cellString(cell)
		}
	}
	logger.Debug("read %d rows from %s", len(rows), a1Range)
	return rows, nil
}

// wrap maps err to a domain error and starts a backoff on 429.
func (c *Client) wrap(err error, what string) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusTooManyRequests {
		c.limiter.RecordRateLimitError(retryAfter(gerr.Header))
	}
	return google.WrapError(err, what)
}

func retryAfter(h http.Header) time.Duration {
	if h == nil {
		return 0
	}
	secs, err := strconv.Atoi(h.Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func cellString(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case float64:
		return strconv.FormatFloat(c, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(c)
	default:
		return fmt.Sprint(c)
	}
}
