package graph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// defaultAuthority is the Azure AD token authority. Tests override it
// via AppCredentials.AuthorityURL.
const defaultAuthority = "https://login.microsoftonline.com"

// defaultScope requests whatever application permissions have been
// granted to the client registration (client-credentials flow).
const defaultScope = "https://graph.microsoft.com/.default"

// ErrMissingCredentials is returned when tenant, client ID, or client
// secret is empty.
var ErrMissingCredentials = errors.New("graph: tenant ID, client ID, and client secret are all required")

// AppCredentials holds the inputs for the client-credentials flow.
type AppCredentials struct {
	TenantID     string
	ClientID     string
	ClientSecret string

	// AuthorityURL overrides the token authority. Empty means the
	// public Azure AD endpoint.
	AuthorityURL string
}

// AppTokenSource yields app-only bearer tokens via the OAuth2
// client-credentials grant. Tokens are cached and refreshed
// transparently by the underlying oauth2 token source, so a
// long-running enumeration never outlives token validity.
type AppTokenSource struct {
	ts     oauth2.TokenSource
	logger *slog.Logger
}

// NewAppTokenSource builds a token source for the given credentials.
// No network call is made until Token or Verify is invoked. ctx must
// outlive the token source — it is bound to future refresh requests.
func NewAppTokenSource(ctx context.Context, creds AppCredentials, logger *slog.Logger) (*AppTokenSource, error) {
	if creds.TenantID == "" || creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, ErrMissingCredentials
	}

	if logger == nil {
		logger = slog.Default()
	}

	authority := creds.AuthorityURL
	if authority == "" {
		authority = defaultAuthority
	}

	cfg := &clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     fmt.Sprintf("%s/%s/oauth2/v2.0/token", authority, creds.TenantID),
		Scopes:       []string{defaultScope},
	}

	return &AppTokenSource{
		ts:     cfg.TokenSource(ctx),
		logger: logger,
	}, nil
}

// Token returns a valid bearer token, fetching or refreshing as needed.
func (a *AppTokenSource) Token() (string, error) {
	tok, err := a.ts.Token()
	if err != nil {
		return "", fmt.Errorf("graph: acquiring app token: %w", err)
	}

	return tok.AccessToken, nil
}

// Verify forces an initial token fetch and returns its expiry.
// Callers treat a Verify failure as fatal — nothing else can succeed
// without a token.
func (a *AppTokenSource) Verify() (time.Time, error) {
	tok, err := a.ts.Token()
	if err != nil {
		return time.Time{}, fmt.Errorf("graph: authentication failed: %w", err)
	}

	a.logger.Info("authenticated",
		slog.Time("token_expires", tok.Expiry),
	)

	return tok.Expiry, nil
}
