package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"github.com/pusdatin/satudata-backend/internal/app"
	"github.com/pusdatin/satudata-backend/internal/data/repos"
	"github.com/pusdatin/satudata-backend/internal/services"
)

var (
	sweepCmd = &cobra.Command{
		Use:   "sweep-orphans",
		Short: "Delete stored uploads that no dataset file references",
		RunE:  cmdSweep,
	}

	sweepCfg struct {
		OlderThan time.Duration
		DryRun    bool
	}
)

func init() {
	sweepCmd.Flags().DurationVar(&sweepCfg.OlderThan, "older-than", time.Hour, "only consider objects last written before this age")
	sweepCmd.Flags().BoolVar(&sweepCfg.DryRun, "dry-run", false, "report orphans without deleting them")
}

func cmdSweep(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	store, err := app.ResolveFileStore(ctx, e.log, e.cfg.Storage, e.cfg.StorageErr)
	if err != nil {
		return err
	}
	sweeper := services.NewOrphanSweeper(e.log, store, repos.NewDatasetFileRepo(e.pg.DB(), e.log), nil)
	report, err := sweeper.Sweep(ctx, services.SweepOptions{OlderThan: sweepCfg.OlderThan, DryRun: sweepCfg.DryRun})
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
