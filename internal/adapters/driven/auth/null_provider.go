package auth

import (
	"context"
	"fmt"

	"github.com/drewfsc/saturday-night/internal/core/domain"
	"github.com/drewfsc/saturday-night/internal/core/ports/driven"
)

// Ensure NullTokenProvider implements the TokenProvider interface.
var _ driven.TokenProvider = (*NullTokenProvider)(nil)

// NullTokenProvider stands in for a backend with no credential configured.
// It never yields a token, so callers surface ErrAuthRequired instead of
// silently returning empty results.
type NullTokenProvider struct {
	backend string
}

// NewNullTokenProvider creates a token provider for an unconfigured backend.
func NewNullTokenProvider(backend string) *NullTokenProvider {
	return &NullTokenProvider{backend: backend}
}

// GetToken always fails with ErrAuthRequired.
func (p *NullTokenProvider) GetToken(_ context.Context) (string, error) {
	return "", fmt.Errorf("%w: no %s credential configured", domain.ErrAuthRequired, p.backend)
}

// IsAuthenticated always returns false.
func (p *NullTokenProvider) IsAuthenticated() bool {
	return false
}
