package mcp

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/drewfsc/saturday-night/internal/core/services"
)

// uriScheme is the URI scheme of saturday-night resources.
const uriScheme = "saturday-night://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "tools",
		Name:        "tools",
		Description: "Descriptors of the available tools",
		MIMEType:    "application/json",
	}, s.handleToolsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "spreadsheets/{spreadsheetId}",
		Name:        "spreadsheet",
		Description: "Sheets of a spreadsheet with their sizes; use 'default' for the configured spreadsheet",
		MIMEType:    "application/json",
	}, s.handleSpreadsheetResource)
}

func (s *Server) handleToolsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	data, err := json.Marshal(s.ports.Dispatcher.Tools())
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, data), nil
}

func (s *Server) handleSpreadsheetResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id := strings.TrimPrefix(req.Params.URI, uriScheme+"spreadsheets/")
	if id == "" || strings.Contains(id, "/") {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if id == "default" {
		id = s.defaultSpreadsheet()
		if id == "" {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
	}

	result, err := s.ports.Dispatcher.Call(ctx, services.ToolSheetInfo, map[string]any{
		"spreadsheetId":  id,
		"responseFormat": "structured",
	})
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(result.Data)
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, data), nil
}

func (s *Server) defaultSpreadsheet() string {
	if s.ports.Settings == nil {
		return ""
	}
	settings, err := s.ports.Settings.Get()
	if err != nil {
		return ""
	}
	return settings.Sources.DefaultSpreadsheetID
}

func jsonResource(uri string, data []byte) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}
}
