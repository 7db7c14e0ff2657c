package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/driftsec/tenantscan/internal/config"
	"github.com/driftsec/tenantscan/internal/scan"
)

func newRunsCmd() *cobra.Command {
	var (
		flagLedger string
		flagLimit  int
	)

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List past scan runs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cli := config.CLIOverrides{
				ConfigPath: flagConfigPath,
				LedgerPath: flagLedger,
			}

			cfg, err := config.Resolve(config.ReadEnvOverrides(), cli)
			if err != nil {
				return err
			}

			logger := buildLogger(cfg.LogLevel)

			ledger, err := scan.OpenLedger(cfg.LedgerPath, logger)
			if err != nil {
				return err
			}
			defer ledger.Close()

			runs, err := ledger.ListRuns(cmd.Context(), flagLimit)
			if err != nil {
				return err
			}

			if len(runs) == 0 {
				fmt.Println("No runs recorded.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
			fmt.Fprintln(w, "STARTED\tDURATION\tTENANT\tUSERS\tSITES\tDRIVES\tFILES")

			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
					formatTime(r.StartedAt.Local()),
					r.FinishedAt.Sub(r.StartedAt).Round(time.Second),
					r.TenantID,
					r.Users,
					r.Sites,
					r.UserDriveRows+r.SiteDriveRows,
					r.FileRows,
				)
			}

			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&flagLedger, "ledger", "", "run-history database path")
	cmd.Flags().IntVar(&flagLimit, "limit", 20, "maximum runs to list")

	return cmd
}
