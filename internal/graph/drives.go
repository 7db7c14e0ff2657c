package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// driveResponse mirrors the Graph API drive JSON.
// Unexported — callers use Drive via toDrive() normalization.
type driveResponse struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	DriveType string      `json:"driveType"`
	WebURL    string      `json:"webUrl"`
	Quota     *quotaFacet `json:"quota"`
}

// quotaFacet represents the quota block in a Graph API drive response.
type quotaFacet struct {
	Used  int64 `json:"used"`
	Total int64 `json:"total"`
}

// toDrive normalizes a Graph API drive response into our Drive type.
// Nil-safe for the optional quota facet.
func (d *driveResponse) toDrive() Drive {
	drive := Drive{
		ID:        d.ID,
		Name:      d.Name,
		DriveType: d.DriveType,
		WebURL:    d.WebURL,
	}

	if d.Quota != nil {
		drive.QuotaUsed = d.Quota.Used
		drive.QuotaTotal = d.Quota.Total
	}

	return drive
}

// UserDefaultDrive returns a user's default (personal) drive.
// Users without a provisioned OneDrive return ErrNotFound.
func (c *Client) UserDefaultDrive(ctx context.Context, userID string) (*Drive, error) {
	resp, err := c.Do(ctx, http.MethodGet, fmt.Sprintf("/users/%s/drive", userID), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var dr driveResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return nil, fmt.Errorf("graph: decoding drive response: %w", err)
	}

	drive := dr.toDrive()

	return &drive, nil
}

// UserDrives returns all drives associated with a user, following
// pagination.
func (c *Client) UserDrives(ctx context.Context, userID string) ([]Drive, error) {
	return c.listDrives(ctx, fmt.Sprintf("/users/%s/drives?$top=%d", userID, pageSize))
}

// SiteDrives returns all document libraries of a site, following
// pagination.
func (c *Client) SiteDrives(ctx context.Context, siteID string) ([]Drive, error) {
	return c.listDrives(ctx, fmt.Sprintf("/sites/%s/drives?$top=%d", siteID, pageSize))
}

// listDrives collects a paginated drive collection and normalizes it.
// Partial results are returned alongside the pagination error.
func (c *Client) listDrives(ctx context.Context, apiPath string) ([]Drive, error) {
	raw, err := collectPages[driveResponse](ctx, c, apiPath)

	drives := make([]Drive, 0, len(raw))
	for i := range raw {
		drives = append(drives, raw[i].toDrive())
	}

	if err != nil {
		return drives, fmt.Errorf("graph: listing drives: %w", err)
	}

	return drives, nil
}
