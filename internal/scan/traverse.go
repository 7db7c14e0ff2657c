package scan

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/driftsec/tenantscan/internal/graph"
)

// childLister is the slice of the Graph client the traverser needs.
type childLister interface {
	ForEachChildPage(ctx context.Context, driveID, itemID string, fn func([]graph.Item) error) error
}

// Traverser walks a drive's item hierarchy in pre-order, bounded by a
// maximum depth. Traversal within one drive is strictly sequential;
// concurrency lives one level up, across principals.
type Traverser struct {
	api      childLister
	maxDepth int
	logger   *slog.Logger
	nowFunc  func() time.Time // injectable for deterministic tests
}

// NewTraverser creates a traverser with the given depth bound. Depth 0
// still records the root's direct children — the bound limits recursion
// into folders, not the initial listing.
func NewTraverser(api childLister, maxDepth int, logger *slog.Logger) *Traverser {
	if logger == nil {
		logger = slog.Default()
	}

	return &Traverser{
		api:      api,
		maxDepth: maxDepth,
		logger:   logger,
		nowFunc:  time.Now,
	}
}

// Walk traverses the drive starting at startItemID ("" for the drive
// root), emitting one FileRecord per visited node. Children are emitted
// at the depth of the listing call; folders are recursed into only
// while depth < maxDepth, so nodes at maxDepth are recorded but their
// contents are not. A listing failure truncates only that subtree —
// records emitted before the failure stand, and siblings in already
// delivered pages are unaffected.
func (t *Traverser) Walk(ctx context.Context, driveID, startItemID, startPath string, startDepth int, emit func(FileRecord)) {
	t.walk(ctx, driveID, startItemID, startPath, startDepth, emit)
}

func (t *Traverser) walk(ctx context.Context, driveID, itemID, path string, depth int, emit func(FileRecord)) {
	if depth > t.maxDepth {
		return
	}

	err := t.api.ForEachChildPage(ctx, driveID, itemID, func(page []graph.Item) error {
		for _, item := range page {
			childPath := joinPath(path, item.Name)

			emit(FileRecord{
				DriveID:    driveID,
				Path:       childPath,
				Name:       item.Name,
				IsFolder:   item.IsFolder,
				Size:       item.Size,
				Created:    item.CreatedAt,
				Modified:   item.ModifiedAt,
				URL:        item.WebURL,
				Depth:      depth,
				CapturedAt: t.nowFunc(),
			})

			if item.IsFolder && depth < t.maxDepth {
				t.walk(ctx, driveID, item.ID, childPath, depth+1, emit)
			}
		}

		return nil
	})
	if err != nil {
		t.logger.Warn("subtree truncated, listing failed",
			slog.String("drive_id", driveID),
			slog.String("path", path),
			slog.Int("depth", depth),
			slog.String("error", err.Error()),
		)
	}
}

// joinPath appends a name to a slash-separated path without doubling
// separators.
func joinPath(parent, name string) string {
	return strings.TrimRight(parent, "/") + "/" + name
}
