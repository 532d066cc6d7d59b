package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil dispatcher returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{})
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingDispatcher)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		assert.NotNil(t, newTestServer(t))
	})
}

// connect runs s over in-memory transports and returns a client session.
func connect(t *testing.T, s *Server) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	ss, err := s.server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "content is %T", res.Content[0])
	return text.Text
}

func TestServer_ListTools(t *testing.T) {
	cs := connect(t, newTestServer(t))

	res, err := cs.ListTools(context.Background(), nil)

	require.NoError(t, err)
	names := make([]string, 0, len(res.Tools))
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"query_data", "read_sheet", "sheet_info", "search_invoices"}, names)
}

func TestServer_CallTool_Rows(t *testing.T) {
	cs := connect(t, newTestServer(t))

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "query_data",
		Arguments: map[string]any{"query": "show me the first 2 rows"},
	})

	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Contains(t, textOf(t, res), "Acme")

	data, ok := res.StructuredContent.(map[string]any)
	require.True(t, ok, "structured content is %T", res.StructuredContent)
	assert.Equal(t, "Sales", data["scope"])
}

func TestServer_CallTool_StructuredOnlyFallsBackToJSON(t *testing.T) {
	cs := connect(t, newTestServer(t))

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "sheet_info",
		Arguments: map[string]any{"responseFormat": "structured"},
	})

	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(textOf(t, res)), &decoded))
	assert.Equal(t, "Q1 Report", decoded["scope"])
}

func TestServer_CallTool_VerbalOnly(t *testing.T) {
	cs := connect(t, newTestServer(t))

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name: "search_invoices",
		Arguments: map[string]any{
			"minAmount":      1000,
			"responseFormat": "verbal",
		},
	})

	require.NoError(t, err)
	assert.Nil(t, res.StructuredContent)
	assert.Contains(t, textOf(t, res), "id: 1")
}

func TestServer_CallTool_ValidationError(t *testing.T) {
	cs := connect(t, newTestServer(t))

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "query_data",
		Arguments: map[string]any{},
	})

	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, textOf(t, res), "query")

	payload, ok := res.StructuredContent.(map[string]any)
	require.True(t, ok)
	errInfo := payload["error"].(map[string]any)
	assert.Equal(t, float64(-32602), errInfo["code"])
	assert.Equal(t, "validation", errInfo["kind"])
}

func TestServer_CallTool_UpstreamError(t *testing.T) {
	cs := connect(t, newTestServer(t))

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "sheet_info",
		Arguments: map[string]any{"spreadsheetId": "missing"},
	})

	require.NoError(t, err)
	assert.True(t, res.IsError)
	errInfo := res.StructuredContent.(map[string]any)["error"].(map[string]any)
	assert.Equal(t, float64(-32603), errInfo["code"])
	assert.Equal(t, "not_found", errInfo["kind"])
}

func TestServer_ReadResources(t *testing.T) {
	cs := connect(t, newTestServer(t))
	ctx := context.Background()

	tools, err := cs.ReadResource(ctx, &mcp.ReadResourceParams{URI: "saturday-night://tools"})
	require.NoError(t, err)
	require.Len(t, tools.Contents, 1)
	assert.Contains(t, tools.Contents[0].Text, "search_invoices")

	sheet, err := cs.ReadResource(ctx, &mcp.ReadResourceParams{URI: "saturday-night://spreadsheets/default"})
	require.NoError(t, err)
	require.Len(t, sheet.Contents, 1)
	assert.Contains(t, sheet.Contents[0].Text, "Q1 Report")
}
