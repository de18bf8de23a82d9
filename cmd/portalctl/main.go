package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pusdatin/satudata-backend/internal/app"
	dbpkg "github.com/pusdatin/satudata-backend/internal/data/db"
	"github.com/pusdatin/satudata-backend/internal/platform/logger"
)

var (
	rootCmd = &cobra.Command{
		Use:           "portalctl",
		Short:         "Operator commands for the Satu Data portal backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// env is what every subcommand needs: a logger, the loaded config and a database.
type env struct {
	log *logger.Logger
	cfg app.Config
	pg  *dbpkg.PostgresService
}

func openEnv() (*env, error) {
	log, err := app.NewLogger()
	if err != nil {
		return nil, err
	}
	cfg := app.LoadConfig(log)
	pg, err := app.OpenDatabase(log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}
	return &env{log: log, cfg: cfg, pg: pg}, nil
}

func (e *env) Close() {
	_ = e.pg.Close()
	e.log.Sync()
}

func main() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(templateCmd)
	rootCmd.AddCommand(bidangCmd)
	bidangCmd.AddCommand(bidangAddCmd)
	bidangCmd.AddCommand(bidangListCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "portalctl:", err)
		os.Exit(1)
	}
}
