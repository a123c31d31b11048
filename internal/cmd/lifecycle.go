package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

func newActivateCmd() *cli.Command {
	return &cli.Command{
		Name:  "activate",
		Usage: "Create the option keys if missing and record the activation time",
		Action: withApp(func(ctx context.Context, _ *cli.Command, a *app) error {
			if err := a.mgr.Activate(ctx); err != nil {
				return err
			}
			at, err := a.mgr.ActivatedAt(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Activated at %s\n", at.Format("2006-01-02 15:04:05 MST"))
			return nil
		}),
	}
}

func newDeactivateCmd() *cli.Command {
	return &cli.Command{
		Name:  "deactivate",
		Usage: "Remove every stored option",
		Action: withApp(func(ctx context.Context, _ *cli.Command, a *app) error {
			if err := a.mgr.Deactivate(ctx); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "All block manager options removed")
			return nil
		}),
	}
}

func newUninstallCmd() *cli.Command {
	return &cli.Command{
		Name:  "uninstall",
		Usage: "Remove every stored option and log the cleanup",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Do not ask for confirmation"},
		},
		Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
			if !cmd.Bool("yes") {
				return fmt.Errorf("uninstall removes all stored settings from %s; rerun with --yes", a.cfg.Store.DSN)
			}
			if err := a.mgr.Uninstall(ctx); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Uninstall cleanup completed")
			return nil
		}),
	}
}
