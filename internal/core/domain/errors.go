package domain

import "errors"

// Domain errors represent business logic failures.
// Adapters wrap them with context using fmt.Errorf("%w: ...") and the
// dispatcher maps them onto JSON-RPC error codes with errors.Is.
var (
	// ErrParse indicates the intent could not be resolved from the request,
	// typically because no source identifier is available.
	ErrParse = errors.New("could not interpret request")

	// ErrValidation indicates tool arguments do not satisfy the tool's schema.
	ErrValidation = errors.New("invalid arguments")

	// ErrNotFound indicates a requested scope or record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnknownTool indicates the dispatcher has no tool with the requested name.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrUnknownMethod indicates the envelope carries an unsupported method.
	ErrUnknownMethod = errors.New("method not found")

	// Authentication Errors.

	// ErrAuthRequired indicates the upstream requires authentication but none is configured.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAuthExpired indicates the authentication has expired and refresh failed.
	ErrAuthExpired = errors.New("authentication expired")

	// ErrAuthInvalid indicates the authentication credentials are invalid.
	ErrAuthInvalid = errors.New("authentication invalid")

	// Upstream Errors.

	// ErrRateLimited indicates the upstream quota was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrUpstream indicates a network or backend failure, including timeouts.
	ErrUpstream = errors.New("upstream unavailable")
)

// IsAuthError reports whether err belongs to the authentication family.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrAuthRequired) ||
		errors.Is(err, ErrAuthExpired) ||
		errors.Is(err, ErrAuthInvalid)
}

// ErrorKind names the taxonomy bucket of err for error envelopes and metrics.
// Unknown errors are reported as "internal".
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrParse):
		return "parse"
	case errors.Is(err, ErrValidation):
		return "validation"
	case IsAuthError(err):
		return "auth"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrRateLimited):
		return "rate_limit"
	case errors.Is(err, ErrUpstream):
		return "upstream"
	case errors.Is(err, ErrUnknownTool):
		return "unknown_tool"
	case errors.Is(err, ErrUnknownMethod):
		return "unknown_method"
	default:
		return "internal"
	}
}
