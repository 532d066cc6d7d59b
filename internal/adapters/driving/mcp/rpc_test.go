package mcp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drewfsc/saturday-night/internal/core/domain"
)

func postRPC(t *testing.T, h http.Handler, body string) domain.RPCResponse {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, PathRPC, strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp domain.RPCResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestRPCHandler_ToolsCall(t *testing.T) {
	h := NewRPCHandler(newTestDispatcher(t))

	resp := postRPC(t, h, `{"jsonrpc":"2.0","id":7,"method":"tools/call",
		"params":{"name":"read_sheet","arguments":{"limit":1,"responseFormat":"verbal"}}}`)

	require.Nil(t, resp.Error)
	assert.JSONEq(t, `7`, string(resp.ID))
	result := resp.Result.(map[string]any)
	assert.Contains(t, result["verbalResponse"], "Acme")
	assert.NotContains(t, result, "data")
}

func TestRPCHandler_UnknownTool(t *testing.T) {
	h := NewRPCHandler(newTestDispatcher(t))

	resp := postRPC(t, h, `{"jsonrpc":"2.0","id":"req-9","method":"tools/call","params":{"name":"nope"}}`)

	require.NotNil(t, resp.Error)
	assert.Equal(t, domain.CodeMethodNotFound, resp.Error.Code)
	assert.JSONEq(t, `"req-9"`, string(resp.ID))
}

func TestRPCHandler_ParseError(t *testing.T) {
	h := NewRPCHandler(newTestDispatcher(t))

	resp := postRPC(t, h, `{"method":`)

	require.NotNil(t, resp.Error)
	assert.Equal(t, domain.CodeParseError, resp.Error.Code)
}

func TestRPCHandler_RejectsGet(t *testing.T) {
	h := NewRPCHandler(newTestDispatcher(t))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, PathRPC, nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
}

func TestServer_HandlerRoutes(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t).Handler())
	t.Cleanup(srv.Close)

	resp, err := http.Post(srv.URL+PathRPC, "application/json",
		strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"initialize"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	var env domain.RPCResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	assert.Equal(t, "saturday-night", env.Result.(map[string]any)["serverInfo"].(map[string]any)["name"])

	metrics, err := http.Get(srv.URL + PathMetrics)
	require.NoError(t, err)
	defer metrics.Body.Close()
	assert.Equal(t, http.StatusOK, metrics.StatusCode)
}
