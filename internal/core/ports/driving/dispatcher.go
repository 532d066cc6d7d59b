package driving

import (
	"context"

	"github.com/drewfsc/saturday-night/internal/core/domain"
)

// Dispatcher routes tool-invocation envelopes to registered tools.
type Dispatcher interface {
	// Dispatch handles one request envelope. It never returns a Go error;
	// failures are carried in the response's error member.
	Dispatch(ctx context.Context, req domain.RPCRequest) domain.RPCResponse

	// Tools returns the tool descriptors in registration order.
	Tools() []domain.ToolDescriptor

	// Call validates args against the named tool's schema and runs it.
	Call(ctx context.Context, name string, args map[string]any) (*domain.FormattedResult, error)

	// ServerInfo returns the name and version announced on initialize.
	ServerInfo() (name, version string)
}
