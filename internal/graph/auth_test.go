package graph

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewAppTokenSource_RequiresAllCredentials(t *testing.T) {
	_, err := NewAppTokenSource(context.Background(), AppCredentials{
		TenantID: "tenant", ClientID: "client",
	}, discardLogger())

	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestAppTokenSource_FetchesAndCaches(t *testing.T) {
	var tokenCalls int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenCalls++

		assert.Equal(t, "/tenant-1/oauth2/v2.0/token", r.URL.Path)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Equal(t, defaultScope, r.PostForm.Get("scope"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"tok-abc","token_type":"Bearer","expires_in":3600}`)
	}))
	defer srv.Close()

	ts, err := NewAppTokenSource(context.Background(), AppCredentials{
		TenantID:     "tenant-1",
		ClientID:     "client-1",
		ClientSecret: "secret",
		AuthorityURL: srv.URL,
	}, discardLogger())
	require.NoError(t, err)

	expiry, err := ts.Verify()
	require.NoError(t, err)
	assert.False(t, expiry.IsZero())

	tok, err := ts.Token()
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", tok)

	// The cached token serves the second call.
	assert.Equal(t, 1, tokenCalls)
}

func TestAppTokenSource_VerifyFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":"invalid_client"}`)
	}))
	defer srv.Close()

	ts, err := NewAppTokenSource(context.Background(), AppCredentials{
		TenantID:     "tenant-1",
		ClientID:     "client-1",
		ClientSecret: "wrong",
		AuthorityURL: srv.URL,
	}, discardLogger())
	require.NoError(t, err)

	_, err = ts.Verify()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "authentication failed")
}
