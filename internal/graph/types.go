package graph

import "time"

// User is a directory principal that may own drives.
type User struct {
	ID          string
	DisplayName string
	Email       string
}

// Site is a SharePoint site. Sites have no email address.
type Site struct {
	ID          string
	DisplayName string
	WebURL      string
}

// Drive is a storage container owned by exactly one user or site.
// Fields are normalized from the Graph API response — callers never
// see raw API data.
type Drive struct {
	ID         string
	Name       string
	DriveType  string // Graph driveType: "personal", "business", "documentLibrary"
	WebURL     string
	QuotaUsed  int64
	QuotaTotal int64
}

// Item is a drive item (file or folder) inside a drive.
type Item struct {
	ID         string
	Name       string
	Size       int64
	IsFolder   bool
	WebURL     string
	CreatedAt  time.Time
	ModifiedAt time.Time
}
