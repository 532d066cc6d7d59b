// Package mcp serves the tool registry over the Model Context Protocol
// (stdio or streamable HTTP) and as a plain JSON-RPC endpoint.
package mcp

import "errors"

// ErrMissingDispatcher is returned when the dispatcher is not provided.
var ErrMissingDispatcher = errors.New("mcp: dispatcher is required")
