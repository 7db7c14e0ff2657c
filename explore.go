package main

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/driftsec/tenantscan/internal/config"
	"github.com/driftsec/tenantscan/internal/explore"
	"github.com/driftsec/tenantscan/internal/graph"
	"github.com/driftsec/tenantscan/internal/scan"
)

var errExploreTarget = errors.New("either --drive-id or --url is required")

func newExploreCmd() *cobra.Command {
	var (
		auth        authFlags
		flagDriveID string
		flagURL     string
	)

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Browse a single drive interactively",
		Long:  "explore opens an interactive session against one drive, located\neither by its ID or by resolving a OneDrive URL to its owner.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli := config.CLIOverrides{
				ConfigPath:   flagConfigPath,
				TenantID:     auth.tenantID,
				ClientID:     auth.clientID,
				ClientSecret: auth.clientSecret,
			}

			cfg, err := config.Resolve(config.ReadEnvOverrides(), cli)
			if err != nil {
				return err
			}

			return runExplore(cmd, cfg, flagDriveID, flagURL)
		},
	}

	addAuthFlags(cmd, &auth)
	cmd.Flags().StringVar(&flagDriveID, "drive-id", "", "drive ID to attach to directly")
	cmd.Flags().StringVar(&flagURL, "url", "", "OneDrive URL to resolve to a drive")

	return cmd
}

func runExplore(cmd *cobra.Command, cfg *config.Config, driveID, rawURL string) error {
	logger := buildLogger(cfg.LogLevel)

	if driveID == "" && rawURL == "" {
		return errExploreTarget
	}

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

	if _, err := ts.Verify(); err != nil {
		return err
	}

	client := graph.NewClient(graphBaseURL, defaultHTTPClient(), ts, logger)

	if driveID == "" {
		// Bare drive IDs may be pasted into --url as well; accept them.
		if strings.HasPrefix(rawURL, "b!") {
			driveID = rawURL
		} else {
			resolver := scan.NewResolver(client, logger)

			containers, err := resolver.ResolveURL(ctx, rawURL)
			if err != nil {
				return err
			}

			chosen, err := explore.ChooseContainer(containers, os.Stdin, os.Stdout)
			if err != nil {
				return err
			}

			driveID = chosen.Drive.ID
		}
	}

	session := explore.NewSession(client, driveID, os.Stdin, os.Stdout, logger)

	return session.Run(ctx)
}
