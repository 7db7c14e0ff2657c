package graph

import (
	"context"
	"fmt"
	"net/url"
)

// siteResponse mirrors the Graph API site JSON.
type siteResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Name        string `json:"name"`
	WebURL      string `json:"webUrl"`
}

// toSite normalizes a Graph API site response into our Site type.
// displayName is empty on some site collections; name fills in.
func (s *siteResponse) toSite() Site {
	display := s.DisplayName
	if display == "" {
		display = s.Name
	}

	return Site{
		ID:          s.ID,
		DisplayName: display,
		WebURL:      s.WebURL,
	}
}

// ListSites returns every SharePoint site in the tenant, following
// pagination. On a mid-sequence failure the sites fetched so far are
// returned together with the error (partial result).
func (c *Client) ListSites(ctx context.Context) ([]Site, error) {
	c.logger.Info("listing tenant sites")

	raw, err := collectPages[siteResponse](ctx, c, fmt.Sprintf("/sites?$top=%d", pageSize))

	sites := make([]Site, 0, len(raw))
	for i := range raw {
		sites = append(sites, raw[i].toSite())
	}

	if err != nil {
		return sites, fmt.Errorf("graph: listing sites: %w", err)
	}

	c.logger.Info("listed tenant sites",
		"count", len(sites),
	)

	return sites, nil
}

// SearchSites performs a tenant-wide site search. Graph requires the
// query wrapped in double quotes inside the $search parameter.
func (c *Client) SearchSites(ctx context.Context, query string) ([]Site, error) {
	c.logger.Info("searching sites",
		"query", query,
	)

	path := "/sites?$search=" + url.QueryEscape(`"`+query+`"`)

	raw, err := collectPages[siteResponse](ctx, c, path)
	if err != nil {
		return nil, fmt.Errorf("graph: searching sites for %q: %w", query, err)
	}

	sites := make([]Site, 0, len(raw))
	for i := range raw {
		sites = append(sites, raw[i].toSite())
	}

	return sites, nil
}
