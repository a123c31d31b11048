package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauern/block-manager/internal/blocks"
	"github.com/klauern/block-manager/internal/manager"
	"github.com/urfave/cli/v3"
)

func newSaveCmd() *cli.Command {
	return &cli.Command{
		Name:  "save",
		Usage: "Save a disable selection, replacing the stored one",
		Description: `Disabled parents are expanded to their child blocks before storing.

Examples:
  block-manager save --global core/buttons,core/quote
  block-manager save --type core/navigation=page --type core/paragraph=post,page
  block-manager save --file selection.json`,
		// urfave/cli resets the separator setting per command, so it is set here too
		DisableSliceFlagSeparator: true,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "global", Aliases: []string{"g"}, Usage: "Blocks to disable everywhere (globs allowed)"},
			&cli.StringSliceFlag{Name: "type", Aliases: []string{"t"}, Usage: "block=type1,type2 to disable a block for content types"},
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "JSON payload file ({\"global\": [...], \"by_type\": {...}}), - for stdin"},
		},
		Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
			sel, err := selectionFromFlags(cmd.String("file"), cmd.StringSlice("global"), cmd.StringSlice("type"))
			if err != nil {
				return err
			}

			res, saveErr := a.mgr.Save(ctx, sel)
			fmt.Fprintf(a.out, "Settings saved (revision %s)\n", res.Revision)
			fmt.Fprintf(a.out, "  Disabled globally: %d\n", res.GlobalCount)
			fmt.Fprintf(a.out, "  Disabled per type: %d\n", res.PostTypeCount)
			if saveErr != nil {
				return fmt.Errorf("storage did not accept every write: %w", saveErr)
			}
			return nil
		}),
	}
}

// selectionFromFlags merges a payload file with --global and --type values.
func selectionFromFlags(file string, global, byType []string) (manager.Selection, error) {
	var sel manager.Selection
	if file != "" {
		var data []byte
		var err error
		if file == "-" {
			data, err = io.ReadAll(os.Stdin)
		} else {
			data, err = os.ReadFile(file) // #nosec G304 - user-supplied payload path
		}
		if err != nil {
			return sel, fmt.Errorf("failed to read payload: %w", err)
		}
		if sel, err = manager.ParsePayload(data); err != nil {
			return sel, err
		}
	}

	for _, g := range global {
		for _, id := range strings.Split(g, ",") {
			if id = strings.TrimSpace(id); id != "" {
				sel.Global = append(sel.Global, id)
			}
		}
	}
	for _, spec := range byType {
		block, types, err := parseTypeSpec(spec)
		if err != nil {
			return sel, err
		}
		if sel.ByType == nil {
			sel.ByType = map[string][]string{}
		}
		sel.ByType[block] = append(sel.ByType[block], types...)
	}
	return sel, nil
}

// parseTypeSpec splits "core/list=post,page".
func parseTypeSpec(spec string) (string, []string, error) {
	block, list, ok := strings.Cut(spec, "=")
	block = strings.TrimSpace(block)
	if !ok || block == "" {
		return "", nil, fmt.Errorf("invalid --type %q: expected block=type[,type...]", spec)
	}
	var types []string
	for _, t := range strings.Split(list, ",") {
		if t = strings.TrimSpace(t); t != "" {
			types = append(types, t)
		}
	}
	if len(types) == 0 {
		return "", nil, fmt.Errorf("invalid --type %q: no content types given", spec)
	}
	return block, types, nil
}

func newAllowedCmd() *cli.Command {
	return &cli.Command{
		Name:  "allowed",
		Usage: "Print the blocks an editor surface may offer",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "surface", Aliases: []string{"s"}, Usage: "Editor surface (core/edit-post, core/edit-site, core/edit-widgets)"},
			&cli.StringFlag{Name: "post-type", Aliases: []string{"p"}, Usage: "Post type being edited"},
			&cli.BoolFlag{Name: "json", Usage: "Print as JSON"},
		},
		Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
			surface := &blocks.Surface{
				Name:     cmd.String("surface"),
				PostType: blocks.ContentType(cmd.String("post-type")),
			}
			if surface.Name == "" && surface.PostType != "" {
				surface.Name = blocks.SurfacePostEditor
			}

			allowed := a.mgr.AllowedFor(ctx, surface)
			if cmd.Bool("json") {
				return printJSON(a, allowed)
			}
			for _, id := range allowed {
				fmt.Fprintln(a.out, id)
			}
			return nil
		}),
	}
}

func newStateCmd() *cli.Command {
	return &cli.Command{
		Name:  "state",
		Usage: "Inspect the stored disable settings",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print the stored settings as JSON",
				Action: withApp(func(ctx context.Context, _ *cli.Command, a *app) error {
					state, err := a.mgr.State(ctx)
					if err != nil {
						return err
					}
					return printJSON(a, state)
				}),
			},
			{
				Name:      "disabled-types",
				Usage:     "List the content types a block is disabled for",
				ArgsUsage: "<block>",
				Action: withApp(func(ctx context.Context, cmd *cli.Command, a *app) error {
					block, err := validateSingleArgument(cmd.Args().Slice(), "<block>")
					if err != nil {
						return err
					}
					types, err := a.mgr.DisabledTypesFor(ctx, blocks.BlockID(block))
					if err != nil {
						return err
					}
					if len(types) == 0 {
						fmt.Fprintf(a.out, "%s is not disabled for any content type\n", block)
						return nil
					}
					for _, t := range types {
						fmt.Fprintln(a.out, t)
					}
					return nil
				}),
			},
		},
	}
}

func printJSON(a *app, v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// validateSingleArgument validates that exactly one non-empty argument is provided
func validateSingleArgument(args []string, name string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("exactly one argument required: %s", name)
	}
	arg := strings.TrimSpace(args[0])
	if arg == "" {
		return "", fmt.Errorf("%s cannot be empty", name)
	}
	return arg, nil
}
