package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"

	"github.com/drewfsc/saturday-night/internal/core/domain"
)

// IsUnauthorized returns true if the error indicates invalid credentials.
func IsUnauthorized(err error) bool {
	return hasCode(err, http.StatusUnauthorized)
}

// IsForbidden returns true if the error indicates insufficient permissions.
func IsForbidden(err error) bool {
	return hasCode(err, http.StatusForbidden)
}

// IsNotFound returns true if the error indicates a missing resource.
func IsNotFound(err error) bool {
	return hasCode(err, http.StatusNotFound)
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	return hasCode(err, http.StatusTooManyRequests)
}

func hasCode(err error, code int) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == code
	}
	return false
}

// WrapError converts a Google API error into a domain error.
// Errors already carrying a domain sentinel pass through unchanged;
// deadline and transport failures become ErrUpstream.
func WrapError(err error, what string) error {
	if err == nil {
		return nil
	}
	if domain.ErrorKind(err) != "internal" {
		return err
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusUnauthorized:
			return fmt.Errorf("%w: google rejected the access token", domain.ErrAuthExpired)
		case http.StatusForbidden:
			return fmt.Errorf("%w: no permission to read %s", domain.ErrAuthInvalid, what)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %s", domain.ErrNotFound, what)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: google sheets quota exceeded", domain.ErrRateLimited)
		default:
			return fmt.Errorf("%w: google sheets returned %d: %s", domain.ErrUpstream, gerr.Code, gerr.Message)
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: google sheets timed out reading %s", domain.ErrUpstream, what)
	}
	return fmt.Errorf("%w: reading %s: %v", domain.ErrUpstream, what, err)
}
