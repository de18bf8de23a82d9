package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/pusdatin/satudata-backend/internal/data/repos"
	"github.com/pusdatin/satudata-backend/internal/platform/dbctx"
	"github.com/pusdatin/satudata-backend/internal/services"
)

var (
	templateCmd = &cobra.Command{
		Use:   "template <dataset-id>",
		Short: "Write the CSV header template of a structured dataset",
		Args:  cobra.ExactArgs(1),
		RunE:  cmdTemplate,
	}

	templateCfg struct {
		Out string
	}
)

func init() {
	templateCmd.Flags().StringVarP(&templateCfg.Out, "out", "o", "-", `output file; "-" writes to stdout`)
}

func cmdTemplate(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("dataset id: %w", err)
	}
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	db := e.pg.DB()
	d, err := repos.NewDatasetRepo(db, e.log).GetByID(dbctx.Context{Ctx: cmd.Context()}, id)
	if err != nil {
		return err
	}
	if d == nil {
		return fmt.Errorf("dataset %s not found", id)
	}
	body, err := services.RenderTemplate(cmd.Context(), repos.NewDatasetColumnRepo(db, e.log), d)
	if err != nil {
		return err
	}
	if templateCfg.Out == "-" {
		_, err = cmd.OutOrStdout().Write(body)
		return err
	}
	return os.WriteFile(templateCfg.Out, body, 0o644)
}
