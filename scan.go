package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/driftsec/tenantscan/internal/config"
	"github.com/driftsec/tenantscan/internal/graph"
	"github.com/driftsec/tenantscan/internal/scan"
)

// outputStampFormat names the per-run CSV files.
const outputStampFormat = "20060102_150405"

var errMissingTenant = errors.New("tenant ID and client ID are required (flags, env, or config file)")

// authFlags holds the credential flags shared by scan and explore.
type authFlags struct {
	tenantID     string
	clientID     string
	clientSecret string
}

// addAuthFlags registers the credential flags on a command.
func addAuthFlags(cmd *cobra.Command, f *authFlags) {
	cmd.Flags().StringVar(&f.tenantID, "tenant-id", "", "Azure AD tenant ID")
	cmd.Flags().StringVar(&f.clientID, "client-id", "", "app registration client ID")
	cmd.Flags().StringVar(&f.clientSecret, "client-secret", "", "app registration client secret")
}

func newScanCmd() *cobra.Command {
	var (
		auth        authFlags
		flagWorkers int
		flagDepth   int
		flagOutDir  string
		flagLedger  string
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Enumerate every drive and file tree in the tenant",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli := config.CLIOverrides{
				ConfigPath:   flagConfigPath,
				TenantID:     auth.tenantID,
				ClientID:     auth.clientID,
				ClientSecret: auth.clientSecret,
				OutDir:       flagOutDir,
				LedgerPath:   flagLedger,
			}

			// Numeric flags only override config when explicitly set.
			if cmd.Flags().Changed("workers") {
				cli.Workers = &flagWorkers
			}

			if cmd.Flags().Changed("depth") {
				cli.Depth = &flagDepth
			}

			cfg, err := config.Resolve(config.ReadEnvOverrides(), cli)
			if err != nil {
				return err
			}

			return runScan(cmd, cfg)
		},
	}

	addAuthFlags(cmd, &auth)
	cmd.Flags().IntVar(&flagWorkers, "workers", config.DefaultWorkers, "concurrent traversal workers")
	cmd.Flags().IntVar(&flagDepth, "depth", config.DefaultDepth, "maximum folder recursion depth")
	cmd.Flags().StringVar(&flagOutDir, "out-dir", "", "directory for CSV output (default current directory)")
	cmd.Flags().StringVar(&flagLedger, "ledger", "", "run-history database path")

	return cmd
}

func runScan(cmd *cobra.Command, cfg *config.Config) error {
	logger := buildLogger(cfg.LogLevel)

	if cfg.TenantID == "" || cfg.ClientID == "" {
		return errMissingTenant
	}

	if cfg.ClientSecret == "" {
		secret, err := promptSecret()
		if err != nil {
			return err
		}

		cfg.ClientSecret = secret
	}

	ctx := cmd.Context()

	ts, err := graph.NewAppTokenSource(ctx, graph.AppCredentials{
		TenantID:     cfg.TenantID,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
	}, logger)
	if err != nil {
		return err
	}

	// Authentication is the only fatal condition; it must fail before
	// any output file is created.
	if _, err := ts.Verify(); err != nil {
		return err
	}

	client := graph.NewClient(graphBaseURL, defaultHTTPClient(), ts, logger)

	stamp := time.Now().Format(outputStampFormat)

	sink, err := scan.NewCSVSink(cfg.OutDir, stamp, logger)
	if err != nil {
		return err
	}

	var ledger *scan.Ledger

	ledger, err = scan.OpenLedger(cfg.LedgerPath, logger)
	if err != nil {
		// History is a convenience; the scan proceeds without it.
		logger.Warn("run ledger unavailable",
			slog.String("path", cfg.LedgerPath),
			slog.String("error", err.Error()),
		)

		ledger = nil
	} else {
		defer ledger.Close()
	}

	var progress func(phase string, done, total int)
	if isatty.IsTerminal(os.Stderr.Fd()) {
		progress = func(phase string, done, total int) {
			statusf("[%s] %d/%d\n", phase, done, total)
		}
	}

	scanner := scan.NewScanner(client, sink, scan.Options{
		Workers:  cfg.Workers,
		MaxDepth: cfg.Depth,
		Progress: progress,
	}, logger)

	summary := scanner.Run(ctx)

	if err := sink.Close(); err != nil {
		logger.Error("closing output files",
			slog.String("error", err.Error()),
		)
	}

	if ledger != nil {
		run := &scan.Run{
			ID:            scan.NewRunID(),
			TenantID:      cfg.TenantID,
			Workers:       cfg.Workers,
			MaxDepth:      cfg.Depth,
			StartedAt:     summary.StartedAt,
			FinishedAt:    summary.FinishedAt,
			Users:         summary.Users,
			Sites:         summary.Sites,
			UserDriveRows: summary.UserDriveRows,
			SiteDriveRows: summary.SiteDriveRows,
			FileRows:      summary.FileRows,
		}

		if err := ledger.RecordRun(ctx, run); err != nil {
			logger.Warn("recording run history failed",
				slog.String("error", err.Error()),
			)
		}
	}

	printSummary(sink.Paths(), summary)

	return nil
}

// printSummary reports per-stream record counts and output file sizes.
func printSummary(paths scan.SinkPaths, s *scan.Summary) {
	statusf("\nScan finished in %s: %d users, %d sites\n",
		s.FinishedAt.Sub(s.StartedAt).Round(time.Second), s.Users, s.Sites)

	printStream(paths.Users, s.UserDriveRows)
	printStream(paths.Sites, s.SiteDriveRows)
	printStream(paths.Files, s.FileRows)

	if s.UserJobsFail > 0 || s.SiteJobsFail > 0 {
		statusf("  %d user jobs and %d site jobs failed (see log)\n",
			s.UserJobsFail, s.SiteJobsFail)
	}

	if s.PartialUsers || s.PartialSites {
		statusf("  warning: principal enumeration was incomplete\n")
	}
}

func printStream(path string, rows int64) {
	size := "unknown size"
	if fi, err := os.Stat(path); err == nil {
		size = formatSize(fi.Size())
	}

	statusf("  %s: %d records (%s)\n", path, rows, size)
}

// promptSecret reads the client secret from the terminal without echo.
// Refuses to proceed when stdin is not a terminal — piping a secret is
// what the environment variable is for.
func promptSecret() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("client secret required: set --client-secret, %s, or the config file", config.EnvClientSecret)
	}

	fmt.Fprint(os.Stderr, "Client secret: ")

	secret, err := term.ReadPassword(fd)

	fmt.Fprintln(os.Stderr)

	if err != nil {
		return "", fmt.Errorf("reading client secret: %w", err)
	}

	if len(secret) == 0 {
		return "", errors.New("client secret is empty")
	}

	return string(secret), nil
}
