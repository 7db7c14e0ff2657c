package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// pageSize is the $top value for collection requests.
// 200 is the maximum the Graph API allows for most collections.
const pageSize = 200

// listResponse is the common envelope for paginated Graph collections:
// a value array plus an opaque continuation link when more pages exist.
type listResponse[T any] struct {
	Value    []T    `json:"value"`
	NextLink string `json:"@odata.nextLink"` //nolint:tagliatelle // OData annotation key
}

// forEachPage walks a paginated collection starting at apiPath, invoking
// fn once per page until the response carries no continuation link. Each
// continuation link is followed exactly once. A request or decode failure
// stops pagination and is returned; pages already delivered to fn stand.
func forEachPage[T any](ctx context.Context, c *Client, apiPath string, fn func([]T) error) error {
	page := 1

	for apiPath != "" {
		resp, err := c.Do(ctx, http.MethodGet, apiPath, nil)
		if err != nil {
			return err
		}

		var lr listResponse[T]

		err = json.NewDecoder(resp.Body).Decode(&lr)
		resp.Body.Close()

		if err != nil {
			return fmt.Errorf("graph: decoding page %d of %s: %w", page, apiPath, err)
		}

		c.logger.Debug("fetched collection page",
			"page", page,
			"count", len(lr.Value),
		)

		if err := fn(lr.Value); err != nil {
			return err
		}

		apiPath = ""
		if lr.NextLink != "" {
			apiPath, err = c.stripBaseURL(lr.NextLink)
			if err != nil {
				return err
			}
		}

		page++
	}

	return nil
}

// collectPages accumulates every item of a paginated collection. On a
// mid-sequence failure it returns the items collected so far together
// with the error, so callers can distinguish a partial result from a
// legitimately exhausted collection.
func collectPages[T any](ctx context.Context, c *Client, apiPath string) ([]T, error) {
	var items []T

	err := forEachPage(ctx, c, apiPath, func(page []T) error {
		items = append(items, page...)
		return nil
	})

	return items, err
}

// stripBaseURL removes the client's base URL prefix from a full URL,
// returning the path + query string for use with Do().
// Returns an error if the URL doesn't start with the expected base.
func (c *Client) stripBaseURL(fullURL string) (string, error) {
	if !strings.HasPrefix(fullURL, c.baseURL) {
		return "", fmt.Errorf("graph: nextLink URL %q does not match base URL %q", fullURL, c.baseURL)
	}

	return fullURL[len(c.baseURL):], nil
}
