package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"github.com/drewfsc/saturday-night/internal/core/domain"
	"github.com/drewfsc/saturday-night/internal/core/ports/driving"
	"github.com/drewfsc/saturday-night/internal/logger"
)

// Ensure DispatcherService implements the interface.
var _ driving.Dispatcher = (*DispatcherService)(nil)

// ProtocolVersion is announced in the initialize result.
const ProtocolVersion = "2024-11-05"

// Call outcomes reported to a CallObserver.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// ToolHandler executes a tool whose arguments already passed schema validation.
type ToolHandler func(ctx context.Context, args map[string]any, svc *ToolServices) (*domain.FormattedResult, error)

// Tool is one registry record.
type Tool struct {
	Descriptor domain.ToolDescriptor
	Handler    ToolHandler
}

type registeredTool struct {
	Tool
	schema *gojsonschema.Schema
}

// Registry is an immutable, ordered set of tools with compiled schemas.
type Registry struct {
	tools map[string]registeredTool
	order []string
}

// NewRegistry compiles every tool's input schema. Names must be unique.
func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{
		tools: make(map[string]registeredTool, len(tools)),
		order: make([]string, 0, len(tools)),
	}
	for _, t := range tools {
		name := t.Descriptor.Name
		if name == "" {
			return nil, errors.New("tool without a name")
		}
		if _, dup := r.tools[name]; dup {
			return nil, fmt.Errorf("tool %q registered twice", name)
		}
		if t.Handler == nil {
			return nil, fmt.Errorf("tool %q has no handler", name)
		}
		schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(t.Descriptor.InputSchema))
		if err != nil {
			return nil, fmt.Errorf("compile schema for %q: %w", name, err)
		}
		r.tools[name] = registeredTool{Tool: t, schema: schema}
		r.order = append(r.order, name)
	}
	return r, nil
}

// Descriptors returns the tool descriptors in registration order.
func (r *Registry) Descriptors() []domain.ToolDescriptor {
	out := make([]domain.ToolDescriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name].Descriptor)
	}
	return out
}

func (r *Registry) lookup(name string) (registeredTool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// CallObserver is told the outcome and duration of every tool call.
type CallObserver func(tool, outcome string, elapsed time.Duration)

// DispatcherOption configures a DispatcherService.
type DispatcherOption func(*DispatcherService)

// WithCallObserver reports tool calls to observe.
func WithCallObserver(observe CallObserver) DispatcherOption {
	return func(d *DispatcherService) {
		d.observe = observe
	}
}

// WithServerInfo sets the name and version announced on initialize.
func WithServerInfo(name, version string) DispatcherOption {
	return func(d *DispatcherService) {
		d.name = name
		d.version = version
	}
}

// DispatcherService serves initialize, tools/list and tools/call envelopes.
type DispatcherService struct {
	registry *Registry
	services *ToolServices
	name     string
	version  string
	observe  CallObserver
}

// NewDispatcherService creates a dispatcher over registry.
func NewDispatcherService(registry *Registry, services *ToolServices, opts ...DispatcherOption) *DispatcherService {
	d := &DispatcherService{
		registry: registry,
		services: services,
		name:     "saturday-night",
		version:  "dev",
		observe:  func(string, string, time.Duration) {},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ServerInfo returns the announced name and version.
func (d *DispatcherService) ServerInfo() (string, string) {
	return d.name, d.version
}

// Tools returns the tool descriptors in registration order.
func (d *DispatcherService) Tools() []domain.ToolDescriptor {
	return d.registry.Descriptors()
}

// Dispatch handles one envelope. The request id is echoed on every path.
func (d *DispatcherService) Dispatch(ctx context.Context, req domain.RPCRequest) domain.RPCResponse {
	resp := domain.RPCResponse{JSONRPC: "2.0", ID: req.ID}

	switch req.Method {
	case domain.MethodInitialize:
		resp.Result = map[string]any{
			"protocolVersion": ProtocolVersion,
			"capabilities":    map[string]any{"tools": map[string]any{}},
			"serverInfo":      map[string]any{"name": d.name, "version": d.version},
		}

	case domain.MethodToolsList:
		resp.Result = map[string]any{"tools": d.Tools()}

	case domain.MethodToolsCall:
		var params domain.ToolCallParams
		if len(req.Params) > 0 {
			if err := json.Unmarshal(req.Params, &params); err != nil {
				resp.Error = &domain.RPCError{
					Code:    domain.CodeInvalidParams,
					Message: "params must be an object with a name and arguments",
					Data:    map[string]any{"kind": "validation"},
				}
				return resp
			}
		}
		result, err := d.Call(ctx, params.Name, params.Arguments)
		if err != nil {
			resp.Error = rpcError(err)
			return resp
		}
		resp.Result = result

	case "":
		resp.Error = &domain.RPCError{Code: domain.CodeInvalidRequest, Message: "method is required"}

	default:
		resp.Error = rpcError(fmt.Errorf("%w: %s", domain.ErrUnknownMethod, req.Method))
	}
	return resp
}

// Call validates args against the named tool's schema and runs its handler.
func (d *DispatcherService) Call(ctx context.Context, name string, args map[string]any) (*domain.FormattedResult, error) {
	tool, ok := d.registry.lookup(name)
	if !ok {
		d.observe(name, OutcomeError, 0)
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownTool, name)
	}
	if args == nil {
		args = map[string]any{}
	}

	start := time.Now()
	result, err := d.call(ctx, tool, args)
	elapsed := time.Since(start)

	if err != nil {
		d.observe(name, OutcomeError, elapsed)
		logger.Warn("tool %s failed: %v", name, err)
		return nil, err
	}
	d.observe(name, OutcomeSuccess, elapsed)
	logger.Debug("tool %s completed in %s", name, elapsed)
	return result, nil
}

// call runs the handler. A panicking handler becomes an internal error.
func (d *DispatcherService) call(ctx context.Context, tool registeredTool, args map[string]any) (result *domain.FormattedResult, err error) {
	if err := validateArgs(tool.schema, args); err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Error("tool %s panicked: %v", tool.Descriptor.Name, r)
			result, err = nil, fmt.Errorf("tool %s failed unexpectedly", tool.Descriptor.Name)
		}
	}()
	return tool.Handler(ctx, args, d.services)
}

func validateArgs(schema *gojsonschema.Schema, args map[string]any) error {
	result, err := schema.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(msgs, "; "))
}

// rpcError maps the error taxonomy onto JSON-RPC codes.
func rpcError(err error) *domain.RPCError {
	code := domain.CodeInternalError
	switch {
	case errors.Is(err, domain.ErrUnknownTool), errors.Is(err, domain.ErrUnknownMethod):
		code = domain.CodeMethodNotFound
	case errors.Is(err, domain.ErrParse), errors.Is(err, domain.ErrValidation):
		code = domain.CodeInvalidParams
	}
	return &domain.RPCError{
		Code:    code,
		Message: err.Error(),
		Data:    map[string]any{"kind": domain.ErrorKind(err)},
	}
}

// ErrorCode returns the JSON-RPC code err maps to.
func ErrorCode(err error) int {
	return rpcError(err).Code
}
