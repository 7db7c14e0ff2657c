package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// version is set at build time via ldflags.
var version = "dev"

// graphBaseURL is the Microsoft Graph API endpoint all commands talk to.
const graphBaseURL = "https://graph.microsoft.com/v1.0"

// httpClientTimeout bounds every single API call so one hung request
// cannot stall a worker indefinitely.
const httpClientTimeout = 30 * time.Second

// Global persistent flags, bound in newRootCmd().
var (
	flagConfigPath string
	flagVerbose    bool
	flagQuiet      bool
)

// defaultHTTPClient returns an HTTP client with the per-call timeout.
func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: httpClientTimeout}
}

// newRootCmd builds and returns the fully-assembled root command with
// all subcommands registered. Called once from main().
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tenantscan",
		Short:   "Tenant-wide drive and file inventory over Microsoft Graph",
		Long:    "tenantscan enumerates every user drive, site drive, and file tree\nin a Microsoft Graph tenant using app-only credentials, exporting\nflat CSV tables for auditing.",
		Version: version,
		// Silence Cobra's default error/usage printing — we handle it ourselves.
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "config file path")
	cmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress informational output")

	cmd.AddCommand(newScanCmd())
	cmd.AddCommand(newExploreCmd())
	cmd.AddCommand(newRunsCmd())

	return cmd
}

// buildLogger creates an slog.Logger from the config log level and CLI
// flags. CLI flags win because they are one-off overrides.
func buildLogger(configLevel string) *slog.Logger {
	level := slog.LevelInfo

	switch configLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	if flagVerbose {
		level = slog.LevelDebug
	}

	if flagQuiet {
		level = slog.LevelError
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// exitOnError prints a user-friendly error message to stderr and exits.
func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
