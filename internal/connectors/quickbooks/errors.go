package quickbooks

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/drewfsc/saturday-night/internal/core/domain"
)

// APIError represents a non-200 response from the accounting API.
type APIError struct {
	StatusCode int
	Message    string
	RetryAfter int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("quickbooks: API error %d: %s", e.StatusCode, e.Message)
}

type fault struct {
	Errors []faultError `json:"Error"`
	Type   string       `json:"type"`
}

type faultError struct {
	Message string `json:"Message"`
	Detail  string `json:"Detail"`
	Code    string `json:"code"`
}

func (f faultError) String() string {
	if f.Detail != "" {
		return f.Message + ": " + f.Detail
	}
	return f.Message
}

func newAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil {
		apiErr.RetryAfter = secs
	}

	var body struct {
		Fault *fault `json:"Fault"`
	}
	if err := json.Unmarshal(readLimited(resp.Body), &body); err == nil &&
		body.Fault != nil && len(body.Fault.Errors) > 0 {
		apiErr.Message = body.Fault.Errors[0].String()
	}
	return apiErr
}

// domainError maps the status to the domain taxonomy.
func (e *APIError) domainError(realm string) error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: quickbooks rejected the access token: %w", domain.ErrAuthExpired, e)
	case http.StatusForbidden:
		return fmt.Errorf("%w: no access to company %s: %w", domain.ErrAuthInvalid, realm, e)
	case http.StatusNotFound:
		return fmt.Errorf("%w: company %s: %w", domain.ErrNotFound, realm, e)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: quickbooks throttled the request: %w", domain.ErrRateLimited, e)
	default:
		return fmt.Errorf("%w: %w", domain.ErrUpstream, e)
	}
}
