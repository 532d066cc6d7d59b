package mcp

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/drewfsc/saturday-night/internal/core/domain"
	"github.com/drewfsc/saturday-night/internal/core/ports/driving"
	"github.com/drewfsc/saturday-night/internal/logger"
)

// maxRequestBody bounds a JSON-RPC request.
const maxRequestBody = 1 << 20

// RPCHandler serves single JSON-RPC envelopes over HTTP POST.
type RPCHandler struct {
	dispatcher driving.Dispatcher
}

// NewRPCHandler creates a handler dispatching to d.
func NewRPCHandler(d driving.Dispatcher) *RPCHandler {
	return &RPCHandler{dispatcher: d}
}

// ServeHTTP decodes the envelope, dispatches it and writes the response.
// Protocol errors are reported in the envelope with status 200.
func (h *RPCHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		http.Error(w, "read request", http.StatusBadRequest)
		return
	}

	var req domain.RPCRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeEnvelope(w, domain.RPCResponse{
			JSONRPC: "2.0",
			Error:   &domain.RPCError{Code: domain.CodeParseError, Message: "request is not valid JSON"},
		})
		return
	}

	writeEnvelope(w, h.dispatcher.Dispatch(r.Context(), req))
}

func writeEnvelope(w http.ResponseWriter, resp domain.RPCResponse) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Warn("writing rpc response: %v", err)
	}
}
