package domain

import (
	"encoding/json"
	"fmt"
)

// ResponseFormat selects which formatter outputs a tool returns.
type ResponseFormat string

// Available response formats.
const (
	ResponseVerbal     ResponseFormat = "verbal"
	ResponseStructured ResponseFormat = "structured"
	ResponseBoth       ResponseFormat = "both"
)

// ResponseFormats lists the accepted values in schema order.
var ResponseFormats = []string{string(ResponseVerbal), string(ResponseStructured), string(ResponseBoth)}

// ParseResponseFormat parses a response format, defaulting to both.
func ParseResponseFormat(s string) (ResponseFormat, error) {
	switch ResponseFormat(s) {
	case "":
		return ResponseBoth, nil
	case ResponseVerbal, ResponseStructured, ResponseBoth:
		return ResponseFormat(s), nil
	default:
		return "", fmt.Errorf("%w: responseFormat must be one of verbal, structured, both", ErrValidation)
	}
}

// IncludesVerbal returns true if the verbal rendering is requested.
func (f ResponseFormat) IncludesVerbal() bool {
	return f == ResponseVerbal || f == ResponseBoth
}

// IncludesStructured returns true if the structured payload is requested.
func (f ResponseFormat) IncludesStructured() bool {
	return f == ResponseStructured || f == ResponseBoth
}

// FormattedResult is what the formatter produces and tools return.
// Verbal is empty unless the verbal rendering was requested; Data is nil
// unless the structured payload was requested.
type FormattedResult struct {
	Verbal string             `json:"verbalResponse,omitempty"`
	Data   *NormalizedDataset `json:"data,omitempty"`
}

// ToolDescriptor is the published description of a tool.
type ToolDescriptor struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// JSON-RPC 2.0 error codes used in response envelopes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Envelope methods understood by the dispatcher.
const (
	MethodInitialize = "initialize"
	MethodToolsList  = "tools/list"
	MethodToolsCall  = "tools/call"
)

// RPCRequest is the tool-call request envelope.
type RPCRequest struct {
	JSONRPC string          `json:"jsonrpc,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
}

// ToolCallParams are the params of a tools/call request.
type ToolCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// RPCError is the error member of a response envelope.
type RPCError struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// RPCResponse is the response envelope. Exactly one of Result and Error is set.
type RPCResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  any             `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
}
