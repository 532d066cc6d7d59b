package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/drewfsc/saturday-night/internal/core/domain"
	"github.com/drewfsc/saturday-night/internal/core/services"
)

// registerTools registers every dispatcher tool with the MCP server.
// Arguments are validated by the dispatcher against the same schema.
func (s *Server) registerTools() {
	for _, desc := range s.ports.Dispatcher.Tools() {
		s.server.AddTool(&mcp.Tool{
			Name:        desc.Name,
			Description: desc.Description,
			InputSchema: desc.InputSchema,
		}, s.toolHandler(desc.Name))
	}
}

func (s *Server) toolHandler(name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := map[string]any{}
		if req != nil && req.Params != nil && len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
				return errorResult(fmt.Errorf("%w: arguments must be a JSON object", domain.ErrValidation)), nil
			}
		}

		result, err := s.ports.Dispatcher.Call(ctx, name, args)
		if err != nil {
			return errorResult(err), nil
		}
		return toolResult(result)
	}
}

// toolResult carries the verbal response as text content, or the JSON of
// the data when no verbal response was requested.
func toolResult(res *domain.FormattedResult) (*mcp.CallToolResult, error) {
	text := res.Verbal
	if text == "" && res.Data != nil {
		data, err := json.Marshal(res.Data)
		if err != nil {
			return nil, fmt.Errorf("encode result: %w", err)
		}
		text = string(data)
	}

	out := &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
	if res.Data != nil {
		out.StructuredContent = res.Data
	}
	return out, nil
}

// errorResult reports a failed call inside the result so the model sees it.
func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
		StructuredContent: map[string]any{
			"error": map[string]any{
				"code":    services.ErrorCode(err),
				"message": err.Error(),
				"kind":    domain.ErrorKind(err),
			},
		},
	}
}
