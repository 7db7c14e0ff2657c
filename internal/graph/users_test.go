package graph

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListUsers_FallsBackToUPN(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users", r.URL.Path)
		fmt.Fprint(w, `{"value":[
			{"id":"u1","displayName":"Jane Doe","mail":"jane@contoso.com","userPrincipalName":"jane@contoso.onmicrosoft.com"},
			{"id":"u2","displayName":"Svc Account","mail":"","userPrincipalName":"svc@contoso.com"}
		]}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	users, err := client.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)

	assert.Equal(t, "jane@contoso.com", users[0].Email)
	assert.Equal(t, "svc@contoso.com", users[1].Email)
}

func TestFindUsersByEmail_EscapesFilter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		filter := r.URL.Query().Get("$filter")
		assert.Equal(t, "mail eq 'jane.doe@contoso.com' or userPrincipalName eq 'jane.doe@contoso.com'", filter)
		fmt.Fprint(w, `{"value":[{"id":"u1","displayName":"Jane Doe","mail":"jane.doe@contoso.com"}]}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	users, err := client.FindUsersByEmail(context.Background(), "jane.doe@contoso.com")
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "u1", users[0].ID)
}

func TestFindUsersByEmail_NoMatchIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"value":[]}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	users, err := client.FindUsersByEmail(context.Background(), "gone@contoso.com")
	require.NoError(t, err)
	assert.Empty(t, users)
}
