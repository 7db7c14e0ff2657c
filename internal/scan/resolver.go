package scan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/driftsec/tenantscan/internal/graph"
)

// ErrNoDrives is returned when every resolution strategy yields zero
// containers for a principal or URL.
var ErrNoDrives = errors.New("scan: no drives found")

// ErrBadDriveURL is returned when a storage URL carries no parseable
// owner segment.
var ErrBadDriveURL = errors.New("scan: URL does not contain a /personal/ owner segment")

// driveAPI is the slice of the Graph client the resolver needs.
type driveAPI interface {
	UserDefaultDrive(ctx context.Context, userID string) (*graph.Drive, error)
	UserDrives(ctx context.Context, userID string) ([]graph.Drive, error)
	FindUsersByEmail(ctx context.Context, email string) ([]graph.User, error)
	SearchSites(ctx context.Context, query string) ([]graph.Site, error)
	SiteDrives(ctx context.Context, siteID string) ([]graph.Drive, error)
}

// Resolver discovers the containers (drives) belonging to a principal.
// Strategies are tried in a fixed order until one yields containers:
//
//  1. identity lookup — the user's default drive plus their full drive
//     list, deduplicated by ID
//  2. (URL input only) owner email reconstructed from the URL, then
//     identity lookup by that email
//  3. tenant-wide site search for the owner email; every drive under a
//     matching site is tagged orphaned
//
// Selection policy is the caller's: the enumerator processes every
// resolved container, the explorer prompts when there is more than one.
type Resolver struct {
	api    driveAPI
	logger *slog.Logger
}

// NewResolver creates a Resolver backed by the given Graph API.
func NewResolver(api driveAPI, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}

	return &Resolver{api: api, logger: logger}
}

// ResolveUser discovers a known user's containers. Identity lookup
// failures (deleted users, access denied) fall through to the
// tenant-wide search keyed on the user's email. Returns ErrNoDrives
// when every strategy comes back empty.
func (r *Resolver) ResolveUser(ctx context.Context, user graph.User) ([]Container, error) {
	containers := r.byIdentity(ctx, user.ID)
	if len(containers) > 0 {
		return containers, nil
	}

	if user.Email != "" {
		containers = r.byGlobalSearch(ctx, user.Email)
		if len(containers) > 0 {
			return containers, nil
		}
	}

	return nil, fmt.Errorf("%w for user %s", ErrNoDrives, user.ID)
}

// ResolveURL discovers containers starting from a OneDrive storage URL.
// The owner email is reassembled from the URL's /personal/ segment,
// looked up as an identity, and — when the identity is gone or access
// is denied — searched for tenant-wide.
func (r *Resolver) ResolveURL(ctx context.Context, rawURL string) ([]Container, error) {
	email, err := OwnerEmailFromURL(rawURL)
	if err != nil {
		return nil, err
	}

	r.logger.Info("resolved owner email from URL",
		slog.String("email", email),
	)

	users, err := r.api.FindUsersByEmail(ctx, email)
	if err != nil {
		// Access denied or transient failure on the identity lookup
		// takes the same fallback path as a deleted identity.
		r.logger.Warn("identity lookup failed, falling back to global search",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)
	}

	if len(users) > 0 {
		return r.ResolveUser(ctx, users[0])
	}

	containers := r.byGlobalSearch(ctx, email)
	if len(containers) > 0 {
		return containers, nil
	}

	return nil, fmt.Errorf("%w for %s", ErrNoDrives, email)
}

// byIdentity fetches the default drive and the full drive list for a
// user ID, deduplicating by drive ID. The default drive is marked
// personal, the rest shared. Either call may fail without sinking the
// strategy — whatever was found is returned.
func (r *Resolver) byIdentity(ctx context.Context, userID string) []Container {
	var containers []Container

	seen := make(map[string]bool)

	def, err := r.api.UserDefaultDrive(ctx, userID)
	if err != nil {
		r.logger.Debug("default drive lookup failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	} else {
		containers = append(containers, Container{Drive: *def, Kind: KindPersonal})
		seen[def.ID] = true
	}

	drives, err := r.api.UserDrives(ctx, userID)
	if err != nil {
		r.logger.Debug("drive list lookup failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	for _, d := range drives {
		if seen[d.ID] {
			continue
		}

		seen[d.ID] = true

		containers = append(containers, Container{Drive: d, Kind: KindShared})
	}

	return containers
}

// byGlobalSearch searches every site in the tenant for the email and
// collects all drives under matching sites, tagged orphaned.
func (r *Resolver) byGlobalSearch(ctx context.Context, email string) []Container {
	r.logger.Info("searching tenant-wide for orphaned drives",
		slog.String("email", email),
	)

	sites, err := r.api.SearchSites(ctx, email)
	if err != nil {
		r.logger.Warn("global site search failed",
			slog.String("email", email),
			slog.String("error", err.Error()),
		)

		return nil
	}

	var containers []Container

	seen := make(map[string]bool)

	for _, site := range sites {
		drives, err := r.api.SiteDrives(ctx, site.ID)
		if err != nil {
			r.logger.Warn("site drive listing failed",
				slog.String("site_id", site.ID),
				slog.String("error", err.Error()),
			)

			continue
		}

		for _, d := range drives {
			if seen[d.ID] {
				continue
			}

			seen[d.ID] = true

			containers = append(containers, Container{Drive: d, Kind: KindOrphaned})
		}
	}

	return containers
}

// OwnerEmailFromURL reassembles the owner's email address from a
// OneDrive personal-site URL. The path segment after /personal/ encodes
// the address as underscore-joined parts: jane.doe_contoso_com becomes
// jane.doe@contoso.com — the last two parts are the domain and TLD,
// everything before them the local part joined by dots.
func OwnerEmailFromURL(rawURL string) (string, error) {
	trimmed := strings.TrimRight(rawURL, "/")

	const marker = "/personal/"

	idx := strings.LastIndex(trimmed, marker)
	if idx < 0 {
		return "", ErrBadDriveURL
	}

	segment := trimmed[idx+len(marker):]
	if slash := strings.IndexByte(segment, '/'); slash >= 0 {
		segment = segment[:slash]
	}

	if unescaped, err := url.PathUnescape(segment); err == nil {
		segment = unescaped
	}

	parts := strings.Split(segment, "_")
	if len(parts) < 3 {
		return "", fmt.Errorf("%w: owner segment %q", ErrBadDriveURL, segment)
	}

	tld := parts[len(parts)-1]
	domain := parts[len(parts)-2]
	local := strings.Join(parts[:len(parts)-2], ".")

	return local + "@" + domain + "." + tld, nil
}
