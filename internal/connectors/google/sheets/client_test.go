package sheets

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/drewfsc/saturday-night/internal/connectors/google"
	"github.com/drewfsc/saturday-night/internal/core/domain"
)

const testSpreadsheet = "sheet-123"

func fastLimiter() *google.RateLimiter {
	return google.NewRateLimiterWithConfig(google.RateLimitConfig{RequestsPerSecond: 1000, BurstSize: 100})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func apiError(code int, message string) map[string]any {
	return map[string]any{"error": map[string]any{"code": code, "message": message}}
}

// newTestClient points a Client at handler.
func newTestClient(t *testing.T, handler http.HandlerFunc, timeout time.Duration) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := sheets.NewService(context.Background(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)
	return NewClient(svc, timeout, WithRateLimiter(fastLimiter()))
}

func spreadsheetHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/v4/spreadsheets/"+testSpreadsheet {
		writeJSON(w, http.StatusNotFound, apiError(404, "Requested entity was not found."))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"spreadsheetId": testSpreadsheet,
		"properties":    map[string]any{"title": "Q1 Report"},
		"sheets": []any{
			map[string]any{"properties": map[string]any{
				"sheetId": 0, "title": "Sales", "index": 0,
				"gridProperties": map[string]any{"rowCount": 1000, "columnCount": 26},
			}},
			map[string]any{"properties": map[string]any{
				"sheetId": 7, "title": "Team", "index": 1,
				"gridProperties": map[string]any{"rowCount": 50, "columnCount": 4},
			}},
		},
	})
}

func TestClient_GetSpreadsheet(t *testing.T) {
	c := newTestClient(t, spreadsheetHandler, time.Second)

	info, err := c.GetSpreadsheet(context.Background(), testSpreadsheet)

	require.NoError(t, err)
	assert.Equal(t, testSpreadsheet, info.ID)
	assert.Equal(t, "Q1 Report", info.Title)
	assert.Equal(t, []domain.SheetInfo{
		{Title: "Sales", Index: 0, RowCount: 1000, ColumnCount: 26},
		{Title: "Team", Index: 1, RowCount: 50, ColumnCount: 4},
	}, info.Sheets)
}

func TestClient_GetSpreadsheet_RequestsOnlyNeededFields(t *testing.T) {
	var fields string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fields = r.URL.Query().Get("fields")
		spreadsheetHandler(w, r)
	}, time.Second)

	_, err := c.GetSpreadsheet(context.Background(), testSpreadsheet)

	require.NoError(t, err)
	assert.Equal(t, spreadsheetFields, fields)
}

func TestClient_ReadRange(t *testing.T) {
	var gotPath, gotRender string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRender = r.URL.Query().Get("valueRenderOption")
		writeJSON(w, http.StatusOK, map[string]any{
			"range":          "'Sales'!A1:D3",
			"majorDimension": "ROWS",
			"values": []any{
				[]any{"Date", "Customer", "Amount"},
				[]any{"2025-01-03", "Acme", 1200},
				[]any{"2025-01-04", true},
			},
		})
	}, time.Second)

	rows, err := c.ReadRange(context.Background(), testSpreadsheet, "'Sales'!1:6")

	require.NoError(t, err)
	assert.Equal(t, "/v4/spreadsheets/"+testSpreadsheet+"/values/'Sales'!1:6", gotPath)
	assert.Equal(t, "FORMATTED_VALUE", gotRender)
	assert.Equal(t, [][]string{
		{"Date", "Customer", "Amount"},
		{"2025-01-03", "Acme", "1200"},
		{"2025-01-04", "true"},
	}, rows)
}

func TestClient_ReadRange_Empty(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"range": "Sales!A1:Z6"})
	}, time.Second)

	rows, err := c.ReadRange(context.Background(), testSpreadsheet, "Sales!1:6")

	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, domain.ErrAuthExpired},
		{http.StatusForbidden, domain.ErrAuthInvalid},
		{http.StatusNotFound, domain.ErrNotFound},
		{http.StatusTooManyRequests, domain.ErrRateLimited},
		{http.StatusInternalServerError, domain.ErrUpstream},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, tt.status, apiError(tt.status, "nope"))
			}, time.Second)

			_, err := c.GetSpreadsheet(context.Background(), testSpreadsheet)

			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestClient_RateLimitStartsBackoff(t *testing.T) {
	limiter := fastLimiter()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "30")
		writeJSON(w, http.StatusTooManyRequests, apiError(429, "slow down"))
	}))
	t.Cleanup(srv.Close)
	svc, err := sheets.NewService(context.Background(),
		option.WithHTTPClient(srv.Client()), option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)
	c := NewClient(svc, time.Second, WithRateLimiter(limiter))

	_, err = c.ReadRange(context.Background(), testSpreadsheet, "A1:B2")

	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.False(t, limiter.Allow())
}

func TestClient_BackoffKeepsRateLimitKind(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusTooManyRequests, apiError(429, "slow down"))
	}))
	t.Cleanup(srv.Close)
	svc, err := sheets.NewService(context.Background(),
		option.WithHTTPClient(srv.Client()), option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)
	c := NewClient(svc, 300*time.Millisecond, WithRateLimiter(fastLimiter()))

	_, err = c.ReadRange(context.Background(), testSpreadsheet, "A1:B2")
	require.ErrorIs(t, err, domain.ErrRateLimited)

	start := time.Now()
	_, err = c.GetSpreadsheet(context.Background(), testSpreadsheet)

	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.Equal(t, "rate_limit", domain.ErrorKind(err))
	assert.Less(t, time.Since(start), 200*time.Millisecond)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_TimeoutIsUpstream(t *testing.T) {
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, 50*time.Millisecond)

	_, err := c.ReadRange(context.Background(), testSpreadsheet, "A1:B2")

	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.ErrorContains(t, err, "timed out")
}

type staticProvider struct{ token string }

func (p staticProvider) GetToken(context.Context) (string, error) { return p.token, nil }
func (p staticProvider) IsAuthenticated() bool                     { return true }

type failingProvider struct{}

func (failingProvider) GetToken(context.Context) (string, error) {
	return "", domain.ErrAuthRequired
}
func (failingProvider) IsAuthenticated() bool { return false }

func TestNew_SendsBearerToken(t *testing.T) {
	var auth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth.Store(r.Header.Get("Authorization"))
		spreadsheetHandler(w, r)
	}))
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), staticProvider{token: "tok-1"}, time.Second,
		option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)

	_, err = c.GetSpreadsheet(context.Background(), testSpreadsheet)

	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-1", auth.Load())
}

func TestNew_MissingCredential(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(spreadsheetHandler))
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), failingProvider{}, time.Second,
		option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)

	_, err = c.GetSpreadsheet(context.Background(), testSpreadsheet)

	assert.ErrorIs(t, err, domain.ErrAuthRequired)
}

func TestCellString(t *testing.T) {
	assert.Equal(t, "", cellString(nil))
	assert.Equal(t, "x", cellString("x"))
	assert.Equal(t, "12.5", cellString(12.5))
	assert.Equal(t, "false", cellString(false))
	assert.True(t, strings.HasPrefix(cellString([]int{1}), "["))
}
