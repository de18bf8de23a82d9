package main

import (
	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the dataset tables and indexes",
		RunE:  cmdMigrate,
	}

	migrateCfg struct {
		RLS bool
	}
)

func init() {
	migrateCmd.Flags().BoolVar(&migrateCfg.RLS, "rls", false, "also install the row-level security policies (Postgres only)")
}

func cmdMigrate(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	withRLS := migrateCfg.RLS || e.cfg.EnableRLS
	if err := e.pg.AutoMigrateAll(withRLS); err != nil {
		return err
	}
	e.log.Info("migration complete", "rls", withRLS)
	return nil
}
