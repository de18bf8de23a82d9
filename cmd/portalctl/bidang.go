package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pusdatin/satudata-backend/internal/data/repos"
	types "github.com/pusdatin/satudata-backend/internal/domain"
	"github.com/pusdatin/satudata-backend/internal/platform/dbctx"
)

var (
	bidangCmd = &cobra.Command{
		Use:   "bidang",
		Short: "Manage organizational units",
	}

	bidangAddCmd = &cobra.Command{
		Use:   "add <code> <name>",
		Short: "Register an organizational unit",
		Args:  cobra.ExactArgs(2),
		RunE:  cmdBidangAdd,
	}

	bidangListCmd = &cobra.Command{
		Use:   "list",
		Short: "List organizational units",
		RunE:  cmdBidangList,
	}
)

func cmdBidangAdd(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	bidangs := repos.NewBidangRepo(e.pg.DB(), e.log)
	dbc := dbctx.Context{Ctx: cmd.Context()}
	code := strings.ToUpper(strings.TrimSpace(args[0]))
	existing, err := bidangs.GetByCode(dbc, code)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("bidang %s already exists with id %s", code, existing.ID)
	}
	b := &types.Bidang{Code: code, Name: strings.TrimSpace(args[1])}
	if err := bidangs.Create(dbc, b); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", b.ID, b.Code, b.Name)
	return err
}

func cmdBidangList(cmd *cobra.Command, args []string) error {
	e, err := openEnv()
	if err != nil {
		return err
	}
	defer e.Close()

	list, err := repos.NewBidangRepo(e.pg.DB(), e.log).List(dbctx.Context{Ctx: cmd.Context()})
	if err != nil {
		return err
	}
	for _, b := range list {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", b.ID, b.Code, b.Name); err != nil {
			return err
		}
	}
	return nil
}
