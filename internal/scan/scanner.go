package scan

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/driftsec/tenantscan/internal/graph"
)

// Progress reporting intervals: users complete in bulk, sites are few
// and slow, so they report at different granularity.
const (
	userProgressEvery = 50
	siteProgressEvery = 5
)

// tenantAPI is everything the scanner needs from the Graph client.
type tenantAPI interface {
	driveAPI
	childLister
	ListUsers(ctx context.Context) ([]graph.User, error)
	ListSites(ctx context.Context) ([]graph.Site, error)
}

// Options configures a Scanner.
type Options struct {
	Workers  int
	MaxDepth int

	// Progress, when non-nil, receives coarse completion updates per
	// phase ("users" or "sites"). Observability only.
	Progress func(phase string, done, total int)
}

// Summary reports what a run captured. Counts come from the sink, so
// they reflect rows actually written, not rows attempted.
type Summary struct {
	Users         int
	Sites         int
	UserJobsFail  int
	SiteJobsFail  int
	UserDriveRows int64
	SiteDriveRows int64
	FileRows      int64
	PartialUsers  bool
	PartialSites  bool
	StartedAt     time.Time
	FinishedAt    time.Time
}

// Scanner orchestrates a full-tenant enumeration: principal and site
// listing, per-principal container resolution, depth-bounded traversal,
// and aggregation into the sink. Authentication happens before a
// Scanner exists — by the time Run is called, the token source has
// been verified.
type Scanner struct {
	api      tenantAPI
	resolver *Resolver
	sink     *CSVSink
	opts     Options
	logger   *slog.Logger
	nowFunc  func() time.Time
}

// NewScanner wires a scanner from its collaborators.
func NewScanner(api tenantAPI, sink *CSVSink, opts Options, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}

	return &Scanner{
		api:      api,
		resolver: NewResolver(api, logger),
		sink:     sink,
		opts:     opts,
		logger:   logger,
		nowFunc:  time.Now,
	}
}

// Run enumerates the tenant. Partial enumeration (a pagination failure
// mid-listing) is recorded in the summary and the run continues with
// whatever principals were fetched. The only fatal condition — failed
// authentication — is handled by the caller before Run.
func (s *Scanner) Run(ctx context.Context) *Summary {
	summary := &Summary{StartedAt: s.nowFunc()}

	users, err := s.api.ListUsers(ctx)
	if err != nil {
		summary.PartialUsers = true

		s.logger.Warn("user enumeration incomplete, continuing with partial list",
			slog.Int("users", len(users)),
			slog.String("error", err.Error()),
		)
	}

	summary.Users = len(users)

	sites, err := s.api.ListSites(ctx)
	if err != nil {
		summary.PartialSites = true

		s.logger.Warn("site enumeration incomplete, continuing with partial list",
			slog.Int("sites", len(sites)),
			slog.String("error", err.Error()),
		)
	}

	summary.Sites = len(sites)

	s.logger.Info("enumeration targets",
		slog.Int("users", len(users)),
		slog.Int("sites", len(sites)),
		slog.Int("workers", s.opts.Workers),
		slog.Int("max_depth", s.opts.MaxDepth),
	)

	traverser := NewTraverser(s.api, s.opts.MaxDepth, s.logger)

	userJobs := make([]Job, 0, len(users))
	for _, user := range users {
		userJobs = append(userJobs, Job{
			Name: "user " + user.Email,
			Run: func(ctx context.Context) error {
				return s.processUser(ctx, user, traverser)
			},
		})
	}

	pool := NewPool(s.opts.Workers, userProgressEvery, s.phaseProgress("users"), s.logger)
	_, summary.UserJobsFail = pool.Run(ctx, userJobs)

	siteJobs := make([]Job, 0, len(sites))
	for _, site := range sites {
		siteJobs = append(siteJobs, Job{
			Name: "site " + site.ID,
			Run: func(ctx context.Context) error {
				return s.processSite(ctx, site, traverser)
			},
		})
	}

	pool = NewPool(s.opts.Workers, siteProgressEvery, s.phaseProgress("sites"), s.logger)
	_, summary.SiteJobsFail = pool.Run(ctx, siteJobs)

	summary.UserDriveRows, summary.SiteDriveRows, summary.FileRows = s.sink.Counts()
	summary.FinishedAt = s.nowFunc()

	return summary
}

// processUser resolves a user's containers and traverses each one.
// A user with no resolvable drives ends cleanly with zero records.
func (s *Scanner) processUser(ctx context.Context, user graph.User, traverser *Traverser) error {
	containers, err := s.resolver.ResolveUser(ctx, user)
	if err != nil {
		if errors.Is(err, ErrNoDrives) {
			s.logger.Info("user has no drives",
				slog.String("user_id", user.ID),
				slog.String("email", user.Email),
			)

			return nil
		}

		return err
	}

	for _, c := range containers {
		s.sink.AppendUserDrive(UserDriveRecord{
			UserID:     user.ID,
			UserName:   user.DisplayName,
			Email:      user.Email,
			DriveID:    c.Drive.ID,
			DriveName:  c.Drive.Name,
			Kind:       c.Kind,
			DriveURL:   c.Drive.WebURL,
			QuotaUsed:  c.Drive.QuotaUsed,
			QuotaTotal: c.Drive.QuotaTotal,
			CapturedAt: s.nowFunc(),
		})

		traverser.Walk(ctx, c.Drive.ID, "", "/", 0, s.sink.AppendFile)

		s.logger.Info("drive processed",
			slog.String("email", user.Email),
			slog.String("drive", c.Drive.Name),
			slog.String("kind", string(c.Kind)),
		)
	}

	return nil
}

// processSite fetches a site's document libraries directly (no
// resolution strategies — sites own their drives) and traverses each.
func (s *Scanner) processSite(ctx context.Context, site graph.Site, traverser *Traverser) error {
	drives, err := s.api.SiteDrives(ctx, site.ID)
	if err != nil {
		if len(drives) == 0 {
			return err
		}

		s.logger.Warn("site drive listing incomplete, continuing with partial list",
			slog.String("site_id", site.ID),
			slog.String("error", err.Error()),
		)
	}

	for _, d := range drives {
		s.sink.AppendSiteDrive(SiteDriveRecord{
			SiteID:     site.ID,
			SiteName:   site.DisplayName,
			SiteURL:    site.WebURL,
			DriveID:    d.ID,
			DriveName:  d.Name,
			DriveType:  d.DriveType,
			QuotaUsed:  d.QuotaUsed,
			QuotaTotal: d.QuotaTotal,
			CapturedAt: s.nowFunc(),
		})

		traverser.Walk(ctx, d.ID, "", "/", 0, s.sink.AppendFile)

		s.logger.Info("site drive processed",
			slog.String("site", site.DisplayName),
			slog.String("drive", d.Name),
		)
	}

	return nil
}

// phaseProgress adapts the per-phase progress callback for the pool.
func (s *Scanner) phaseProgress(phase string) func(done, total int) {
	if s.opts.Progress == nil {
		return nil
	}

	return func(done, total int) {
		s.opts.Progress(phase, done, total)
	}
}
