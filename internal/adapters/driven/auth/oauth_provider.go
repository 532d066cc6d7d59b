package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/drewfsc/saturday-night/internal/core/domain"
	"github.com/drewfsc/saturday-night/internal/core/ports/driven"
	"github.com/drewfsc/saturday-night/internal/logger"
)

// Ensure OAuthTokenProvider implements the TokenProvider interface.
var _ driven.TokenProvider = (*OAuthTokenProvider)(nil)

// DefaultRefreshTimeout bounds a refresh when no timeout is configured.
const DefaultRefreshTimeout = domain.DefaultUpstreamTimeout

// PersistFunc stores a refreshed token so later runs start from it.
type PersistFunc func(domain.OAuthToken) error

// OAuthTokenProvider provides OAuth access tokens with automatic refresh
// through golang.org/x/oauth2.
type OAuthTokenProvider struct {
	backend    string
	config     *oauth2.Config
	httpClient *http.Client
	timeout    time.Duration
	persist    PersistFunc

	mu   sync.Mutex
	last domain.OAuthToken
}

// NewOAuthTokenProvider creates a refreshing provider. httpClient is used
// for the refresh request and may be nil. persist may be nil. Each refresh
// is bounded by timeout.
//
// A token with a refresh token but no known expiry is treated as expired,
// so the first call refreshes it.
func NewOAuthTokenProvider(
	backend string,
	token domain.OAuthToken,
	client domain.OAuthClient,
	httpClient *http.Client,
	timeout time.Duration,
	persist PersistFunc,
) *OAuthTokenProvider {
	if timeout <= 0 {
		timeout = DefaultRefreshTimeout
	}
	if token.CanRefresh() && token.Expiry.IsZero() {
		token.Expiry = time.Unix(1, 0)
	}
	return &OAuthTokenProvider{
		backend: backend,
		config: &oauth2.Config{
			ClientID:     client.ClientID,
			ClientSecret: client.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL:  client.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: httpClient,
		timeout:    timeout,
		persist:    persist,
		last:       token,
	}
}

// GetToken returns a valid access token, refreshing if necessary.
// The refresh runs on ctx bounded by the provider timeout. A refused
// refresh maps to ErrAuthExpired, a slow one to ErrUpstream.
func (p *OAuthTokenProvider) GetToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	current := toOAuth2(p.last)
	if current.Valid() {
		return current.AccessToken, nil
	}
	if !p.last.CanRefresh() {
		return "", fmt.Errorf("%w: %s access token expired and no refresh token is configured", domain.ErrAuthExpired, p.backend)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if p.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	}

	tok, err := p.config.TokenSource(ctx, current).Token()
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %s token refresh timed out", domain.ErrUpstream, p.backend)
		}
		return "", mapRefreshError(p.backend, err)
	}

	refreshed := fromOAuth2(tok, p.last.RefreshToken)
	p.last = refreshed
	logger.Debug("refreshed %s access token", p.backend)
	if p.persist != nil {
		if err := p.persist(refreshed); err != nil {
			logger.Warn("saving refreshed %s token: %v", p.backend, err)
		}
	}
	return tok.AccessToken, nil
}

// IsAuthenticated returns true if an access or refresh token is held.
func (p *OAuthTokenProvider) IsAuthenticated() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last.AccessToken != "" || p.last.CanRefresh()
}

func mapRefreshError(backend string, err error) error {
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) && rerr.Response != nil {
		switch rerr.Response.StatusCode {
		case http.StatusBadRequest, http.StatusUnauthorized:
			return fmt.Errorf("%w: %s refresh refused: %s", domain.ErrAuthExpired, backend, rerr.ErrorCode)
		case http.StatusForbidden:
			return fmt.Errorf("%w: %s refresh forbidden", domain.ErrAuthInvalid, backend)
		}
	}
	return fmt.Errorf("%w: %s token refresh: %v", domain.ErrUpstream, backend, err)
}

func toOAuth2(t domain.OAuthToken) *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
		Expiry:       t.Expiry,
	}
}

func fromOAuth2(t *oauth2.Token, previousRefresh string) domain.OAuthToken {
	refresh := t.RefreshToken
	if refresh == "" {
		refresh = previousRefresh
	}
	return domain.OAuthToken{
		AccessToken:  t.AccessToken,
		RefreshToken: refresh,
		TokenType:    t.TokenType,
		Expiry:       t.Expiry,
	}
}
