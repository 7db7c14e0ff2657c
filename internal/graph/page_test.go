package graph

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pagedServer serves a fixed sequence of pages keyed by path, chaining
// them with @odata.nextLink.
func pagedServer(t *testing.T, pages []string) *httptest.Server {
	t.Helper()

	var srv *httptest.Server

	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for i, body := range pages {
			if r.URL.Path == fmt.Sprintf("/page%d", i) {
				next := ""
				if i+1 < len(pages) {
					next = fmt.Sprintf(`,"@odata.nextLink":"%s/page%d"`, srv.URL, i+1)
				}

				fmt.Fprintf(w, `{"value":%s%s}`, body, next)

				return
			}
		}

		http.NotFound(w, r)
	}))

	return srv
}

func TestCollectPages_FollowsEveryLink(t *testing.T) {
	srv := pagedServer(t, []string{
		`[{"id":"a"},{"id":"b"}]`,
		`[{"id":"c"}]`,
		`[{"id":"d"},{"id":"e"}]`,
	})
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	type row struct {
		ID string `json:"id"`
	}

	items, err := collectPages[row](context.Background(), client, "/page0")
	require.NoError(t, err)
	require.Len(t, items, 5)
	assert.Equal(t, "a", items[0].ID)
	assert.Equal(t, "e", items[4].ID)
}

func TestCollectPages_PartialResultOnFailure(t *testing.T) {
	var srv *httptest.Server

	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/page0":
			fmt.Fprintf(w, `{"value":[{"id":"a"},{"id":"b"}],"@odata.nextLink":"%s/page1"}`, srv.URL)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	type row struct {
		ID string `json:"id"`
	}

	items, err := collectPages[row](context.Background(), client, "/page0")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrServerError)

	// The first page survives the second page's failure.
	require.Len(t, items, 2)
	assert.Equal(t, "b", items[1].ID)
}

func TestForEachPage_StopsOnCallbackError(t *testing.T) {
	srv := pagedServer(t, []string{
		`[{"id":"a"}]`,
		`[{"id":"b"}]`,
	})
	defer srv.Close()

	client := newTestClient(t, srv.URL)

	errStop := errors.New("stop")
	calls := 0

	type row struct {
		ID string `json:"id"`
	}

	err := forEachPage(context.Background(), client, "/page0", func(_ []row) error {
		calls++
		return errStop
	})

	assert.ErrorIs(t, err, errStop)
	assert.Equal(t, 1, calls)
}

func TestStripBaseURL(t *testing.T) {
	client := newTestClient(t, "https://example.test/v1.0")

	path, err := client.stripBaseURL("https://example.test/v1.0/users?$skiptoken=x")
	require.NoError(t, err)
	assert.Equal(t, "/users?$skiptoken=x", path)

	_, err = client.stripBaseURL("https://elsewhere.test/users")
	assert.Error(t, err)
}
