package auth

import (
	"net/http"
	"time"

	"github.com/drewfsc/saturday-night/internal/core/domain"
	"github.com/drewfsc/saturday-night/internal/core/ports/driven"
)

// Token endpoints of the supported backends.
const (
	GoogleTokenURL     = "https://oauth2.googleapis.com/token"
	QuickBooksTokenURL = "https://oauth.platform.intuit.com/oauth2/v1/tokens/bearer"
)

// Factory creates TokenProviders from configured credentials.
type Factory struct {
	httpClient *http.Client
	timeout    time.Duration
}

// NewFactory creates a token provider factory. httpClient may be nil.
// timeout bounds every token refresh.
func NewFactory(httpClient *http.Client, timeout time.Duration) *Factory {
	return &Factory{httpClient: httpClient, timeout: timeout}
}

// CreateTokenProvider picks the provider for the credentials at hand:
// nothing configured yields a NullTokenProvider, a refresh token plus a
// complete OAuth client yields a refreshing provider, and a bare access
// token is used as is.
func (f *Factory) CreateTokenProvider(
	backend string,
	token domain.OAuthToken,
	client domain.OAuthClient,
	persist PersistFunc,
) driven.TokenProvider {
	switch {
	case token.AccessToken == "" && !token.CanRefresh():
		return NewNullTokenProvider(backend)
	case token.CanRefresh() && client.IsConfigured():
		return NewOAuthTokenProvider(backend, token, client, f.httpClient, f.timeout, persist)
	case token.AccessToken != "":
		return NewStaticTokenProvider(token.AccessToken)
	default:
		// A refresh token without a client to redeem it is unusable.
		return NewNullTokenProvider(backend)
	}
}

// GoogleProvider builds the provider for the spreadsheet backend.
func (f *Factory) GoogleProvider(settings domain.GoogleSettings, persist PersistFunc) driven.TokenProvider {
	return f.CreateTokenProvider("google",
		domain.OAuthToken{AccessToken: settings.AccessToken, RefreshToken: settings.RefreshToken, TokenType: "Bearer", Expiry: settings.TokenExpiry},
		domain.OAuthClient{ClientID: settings.ClientID, ClientSecret: settings.ClientSecret, TokenURL: GoogleTokenURL},
		persist)
}

// QuickBooksProvider builds the provider for the ledger backend.
func (f *Factory) QuickBooksProvider(settings domain.QuickBooksSettings, persist PersistFunc) driven.TokenProvider {
	return f.CreateTokenProvider("quickbooks",
		domain.OAuthToken{AccessToken: settings.AccessToken, RefreshToken: settings.RefreshToken, TokenType: "Bearer", Expiry: settings.TokenExpiry},
		domain.OAuthClient{ClientID: settings.ClientID, ClientSecret: settings.ClientSecret, TokenURL: QuickBooksTokenURL},
		persist)
}
