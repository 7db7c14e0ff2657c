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

func TestListSites_NameFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sites", r.URL.Path)
		fmt.Fprint(w, `{"value":[
			{"id":"s1","displayName":"Engineering","name":"eng","webUrl":"https://contoso.sharepoint.com/sites/eng"},
			{"id":"s2","displayName":"","name":"legacy-team","webUrl":"https://contoso.sharepoint.com/sites/legacy"}
		]}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	sites, err := client.ListSites(context.Background())
	require.NoError(t, err)
	require.Len(t, sites, 2)

	assert.Equal(t, "Engineering", sites[0].DisplayName)
	assert.Equal(t, "legacy-team", sites[1].DisplayName)
}

func TestSearchSites_QuotesQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, `"jane doe"`, r.URL.Query().Get("$search"))
		fmt.Fprint(w, `{"value":[{"id":"s1","displayName":"Jane Doe","webUrl":"https://contoso-my.sharepoint.com/personal/jane_doe_contoso_com"}]}`)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	sites, err := client.SearchSites(context.Background(), "jane doe")
	require.NoError(t, err)
	require.Len(t, sites, 1)
	assert.Equal(t, "s1", sites[0].ID)
}
