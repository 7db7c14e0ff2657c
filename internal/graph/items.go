package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// driveItemResponse mirrors the Graph API driveItem JSON.
// Unexported — callers use Item via toItem() normalization.
type driveItemResponse struct {
	ID                   string           `json:"id"`
	Name                 string           `json:"name"`
	Size                 int64            `json:"size"`
	WebURL               string           `json:"webUrl"`
	CreatedDateTime      string           `json:"createdDateTime"`
	LastModifiedDateTime string           `json:"lastModifiedDateTime"`
	Folder               *json.RawMessage `json:"folder"`
}

// toItem normalizes a Graph API driveItem response into our Item type.
func (d *driveItemResponse) toItem(logger *slog.Logger) Item {
	return Item{
		ID:         d.ID,
		Name:       d.Name,
		Size:       d.Size,
		IsFolder:   d.Folder != nil,
		WebURL:     d.WebURL,
		CreatedAt:  parseTimestamp(d.CreatedDateTime, "createdDateTime", d.ID, logger),
		ModifiedAt: parseTimestamp(d.LastModifiedDateTime, "lastModifiedDateTime", d.ID, logger),
	}
}

// parseTimestamp parses an RFC3339 timestamp. Missing or malformed
// timestamps yield the zero time — inventory output must not invent
// dates the API never reported.
func parseTimestamp(raw, field, itemID string, logger *slog.Logger) time.Time {
	if raw == "" {
		return time.Time{}
	}

	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		logger.Warn("invalid timestamp",
			slog.String("field", field),
			slog.String("item_id", itemID),
			slog.String("raw", raw),
		)

		return time.Time{}
	}

	return t
}

// childrenPath builds the children-listing path for a parent item.
// An empty itemID addresses the drive root.
func childrenPath(driveID, itemID string) string {
	if itemID == "" {
		return fmt.Sprintf("/drives/%s/root/children?$top=%d", driveID, pageSize)
	}

	return fmt.Sprintf("/drives/%s/items/%s/children?$top=%d", driveID, itemID, pageSize)
}

// ForEachChildPage streams the children of a folder one page at a time,
// invoking fn per page. Items are never buffered beyond the current
// page. itemID "" means the drive root. Pages already delivered stand
// if a later page fails.
func (c *Client) ForEachChildPage(ctx context.Context, driveID, itemID string, fn func([]Item) error) error {
	return forEachPage(ctx, c, childrenPath(driveID, itemID), func(page []driveItemResponse) error {
		items := make([]Item, 0, len(page))
		for i := range page {
			items = append(items, page[i].toItem(c.logger))
		}

		return fn(items)
	})
}

// ListChildren returns all children of a folder, handling pagination.
// itemID "" means the drive root. On a mid-sequence failure the items
// collected so far are returned together with the error.
func (c *Client) ListChildren(ctx context.Context, driveID, itemID string) ([]Item, error) {
	var items []Item

	err := c.ForEachChildPage(ctx, driveID, itemID, func(page []Item) error {
		items = append(items, page...)
		return nil
	})

	if err != nil {
		return items, fmt.Errorf("graph: listing children: %w", err)
	}

	return items, nil
}

// DownloadItem streams a file's content into w and returns the number
// of bytes written.
func (c *Client) DownloadItem(ctx context.Context, driveID, itemID string, w io.Writer) (int64, error) {
	c.logger.Info("downloading item",
		slog.String("drive_id", driveID),
		slog.String("item_id", itemID),
	)

	path := fmt.Sprintf("/drives/%s/items/%s/content", driveID, itemID)

	resp, err := c.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("graph: downloading item %s: %w", itemID, err)
	}

	return n, nil
}
