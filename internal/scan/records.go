// Package scan implements full-tenant drive enumeration: container
// resolution per principal, depth-bounded file-tree traversal, and
// concurrent per-principal jobs writing to shared CSV sinks.
package scan

import (
	"fmt"
	"strconv"
	"time"

	"github.com/driftsec/tenantscan/internal/graph"
)

// Kind classifies how a container was discovered.
type Kind string

// Container kinds. Orphaned marks drives reached only through the
// tenant-wide site search after the owning identity failed to resolve.
const (
	KindPersonal Kind = "personal"
	KindShared   Kind = "shared"
	KindOrphaned Kind = "orphaned"
	KindSite     Kind = "site"
)

// Container pairs a discovered drive with its discovery kind.
type Container struct {
	Drive graph.Drive
	Kind  Kind
}

// CSV headers, written before any job starts.
var (
	userDriveHeader = []string{
		"user_id", "name", "email", "drive_id", "drive_name", "drive_type",
		"drive_url", "quota_used_gb", "quota_total_gb", "quota_pct", "captured_at",
	}
	siteDriveHeader = []string{
		"site_id", "name", "url", "drive_id", "drive_name", "drive_type",
		"quota_used_gb", "quota_total_gb", "quota_pct", "captured_at",
	}
	fileHeader = []string{
		"drive_id", "path", "name", "kind", "size_bytes", "created",
		"modified", "url", "depth", "captured_at",
	}
)

// UserDriveRecord is one row of the users table: a drive in the
// context of its owning user. Write-once; never mutated after
// construction.
type UserDriveRecord struct {
	UserID     string
	UserName   string
	Email      string
	DriveID    string
	DriveName  string
	Kind       Kind
	DriveURL   string
	QuotaUsed  int64
	QuotaTotal int64
	CapturedAt time.Time
}

func (r *UserDriveRecord) row() []string {
	return []string{
		r.UserID, r.UserName, r.Email, r.DriveID, r.DriveName, string(r.Kind),
		r.DriveURL, gbString(r.QuotaUsed), gbString(r.QuotaTotal),
		pctString(r.QuotaUsed, r.QuotaTotal), r.CapturedAt.Format(time.RFC3339),
	}
}

// SiteDriveRecord is one row of the sites table: a document library in
// the context of its owning site.
type SiteDriveRecord struct {
	SiteID     string
	SiteName   string
	SiteURL    string
	DriveID    string
	DriveName  string
	DriveType  string
	QuotaUsed  int64
	QuotaTotal int64
	CapturedAt time.Time
}

func (r *SiteDriveRecord) row() []string {
	return []string{
		r.SiteID, r.SiteName, r.SiteURL, r.DriveID, r.DriveName, r.DriveType,
		gbString(r.QuotaUsed), gbString(r.QuotaTotal),
		pctString(r.QuotaUsed, r.QuotaTotal), r.CapturedAt.Format(time.RFC3339),
	}
}

// FileRecord is one row of the files table: a single node visited by
// the traversal. Depth is the nesting level of the node, 0 for direct
// children of the drive root.
type FileRecord struct {
	DriveID    string
	Path       string
	Name       string
	IsFolder   bool
	Size       int64
	Created    time.Time
	Modified   time.Time
	URL        string
	Depth      int
	CapturedAt time.Time
}

func (r *FileRecord) row() []string {
	kind := "file"
	if r.IsFolder {
		kind = "folder"
	}

	return []string{
		r.DriveID, r.Path, r.Name, kind, strconv.FormatInt(r.Size, 10),
		timeString(r.Created), timeString(r.Modified), r.URL,
		strconv.Itoa(r.Depth), r.CapturedAt.Format(time.RFC3339),
	}
}

// gbString renders a byte count as gigabytes with two decimals,
// matching the summary-table convention.
func gbString(bytes int64) string {
	return fmt.Sprintf("%.2f", float64(bytes)/(1024*1024*1024))
}

// pctString renders used/total as a percentage. Unlimited quotas
// (total 0) render as 0.00.
func pctString(used, total int64) string {
	if total <= 0 {
		return "0.00"
	}

	return fmt.Sprintf("%.2f", float64(used)/float64(total)*100)
}

// timeString renders a timestamp, or empty if the API never reported one.
func timeString(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.Format(time.RFC3339)
}
