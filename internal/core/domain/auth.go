package domain

import "time"

// OAuthToken represents stored OAuth credentials.
type OAuthToken struct {
	// AccessToken is the bearer token for API access.
	AccessToken string `json:"access_token"`
	// RefreshToken is used to obtain new access tokens.
	RefreshToken string `json:"refresh_token,omitempty"`
	// TokenType is typically "Bearer".
	TokenType string `json:"token_type"`
	// Expiry is when the access token expires.
	Expiry time.Time `json:"expiry,omitempty"`
}

// IsExpired returns true if the token has expired.
func (t *OAuthToken) IsExpired() bool {
	if t.Expiry.IsZero() {
		return false
	}
	return time.Now().After(t.Expiry)
}

// CanRefresh returns true if the token carries a refresh token.
func (t *OAuthToken) CanRefresh() bool {
	return t.RefreshToken != ""
}

// OAuthClient identifies the OAuth application used to refresh tokens.
type OAuthClient struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
}

// IsConfigured returns true if a refresh can be attempted.
func (c OAuthClient) IsConfigured() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.TokenURL != ""
}
