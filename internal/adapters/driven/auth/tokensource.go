package auth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/drewfsc/saturday-night/internal/core/domain"
	"github.com/drewfsc/saturday-night/internal/core/ports/driven"
)

// TokenSource exposes a TokenProvider as an oauth2.TokenSource, for API
// clients and oauth2.Transport. ctx is used for every token lookup since
// oauth2 does not pass the request context through.
func TokenSource(ctx context.Context, backend string, provider driven.TokenProvider) oauth2.TokenSource {
	return providerSource{ctx: ctx, backend: backend, provider: provider}
}

type providerSource struct {
	ctx      context.Context
	backend  string
	provider driven.TokenProvider
}

// Token implements oauth2.TokenSource.
func (s providerSource) Token() (*oauth2.Token, error) {
	if s.provider == nil {
		return nil, fmt.Errorf("%w: no %s credential configured", domain.ErrAuthRequired, s.backend)
	}
	token, err := s.provider.GetToken(s.ctx)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, fmt.Errorf("%w: %s access token is empty", domain.ErrAuthRequired, s.backend)
	}
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}
