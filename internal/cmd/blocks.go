package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/klauern/block-manager/internal/blocks"
	"github.com/urfave/cli/v3"
)

func newBlocksCmd() *cli.Command {
	return &cli.Command{
		Name:  "blocks",
		Usage: "Inspect the block catalog",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List registered blocks grouped by namespace",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "all", Aliases: []string{"a"}, Usage: "Include child blocks"},
					&cli.BoolFlag{Name: "json", Usage: "Print as JSON"},
				},
				Action: withApp(func(_ context.Context, cmd *cli.Command, a *app) error {
					entries := blocks.BuildCatalog(a.registry.Types(), a.mgr.Hierarchy())
					if !cmd.Bool("all") {
						entries = blocks.TopLevel(entries)
					}
					if cmd.Bool("json") {
						return printJSON(a, entries)
					}
					printCatalog(a, entries)
					return nil
				}),
			},
			{
				Name:  "hierarchy",
				Usage: "Show parent blocks and the children disabled with them",
				Action: withApp(func(_ context.Context, _ *cli.Command, a *app) error {
					h := a.mgr.Hierarchy()
					for _, parent := range h.Parents() {
						children := make([]string, 0, len(h[parent]))
						for _, c := range h[parent] {
							children = append(children, string(c))
						}
						fmt.Fprintf(a.out, "%s\n  -> %s\n", parent, strings.Join(children, ", "))
					}
					return nil
				}),
			},
			{
				Name:  "types",
				Usage: "List the content types blocks can be disabled for",
				Action: withApp(func(_ context.Context, _ *cli.Command, a *app) error {
					for _, t := range blocks.SelectableTypes(a.cfg.ContentTypes) {
						fmt.Fprintln(a.out, t)
					}
					return nil
				}),
			},
		},
	}
}

func printCatalog(a *app, entries []blocks.Entry) {
	namespace := ""
	for _, e := range entries {
		if e.Namespace != namespace {
			if namespace != "" {
				fmt.Fprintln(a.out)
			}
			namespace = e.Namespace
			fmt.Fprintf(a.out, "%s:\n", namespace)
		}
		line := fmt.Sprintf("  %s - %s", e.Slug, e.Title)
		switch {
		case e.IsParent:
			line += fmt.Sprintf(" (parent of %d)", len(e.Children))
		case e.Parent != "":
			line += fmt.Sprintf(" (child of %s)", e.Parent)
		}
		fmt.Fprintln(a.out, line)
	}
	fmt.Fprintf(a.out, "\n%d blocks\n", len(entries))
}
