package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/BurntSushi/toml"
	"github.com/klauern/block-manager/internal/config"
	"github.com/urfave/cli/v3"
)

// newConfigCmd creates the main config command with subcommands
func newConfigCmd() *cli.Command {
	return &cli.Command{
		Name:        "config",
		Usage:       "Manage the XDG configuration file",
		Description: `Manage block-manager configuration using the XDG Base Directory Specification.`,
		Commands: []*cli.Command{
			newConfigShowCmd(),
			newConfigInitCmd(),
			newConfigPathCmd(),
			newConfigEditCmd(),
		},
	}
}

// configPath returns --config or the XDG default
func configPath(cmd *cli.Command) string {
	if p := cmd.Root().String("config"); p != "" {
		return p
	}
	return config.NewXDGConfig().GetConfigPath()
}

func newConfigShowCmd() *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: "Print the effective configuration as TOML",
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			w := cmd.Root().Writer
			fmt.Fprintf(w, "# source: %s\n", configPath(cmd))
			return toml.NewEncoder(w).Encode(cfg)
		},
	}
}

func newConfigInitCmd() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Write a default configuration file",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "force", Aliases: []string{"f"}, Usage: "Overwrite an existing file"},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			path := configPath(cmd)
			if _, err := os.Stat(path); err == nil && !cmd.Bool("force") {
				return fmt.Errorf("%s already exists; use --force to overwrite", path)
			}

			xdg := config.NewXDGConfig()
			if err := xdg.EnsureDirectories(); err != nil {
				return err
			}
			if err := config.Save(path, config.Default()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.Root().Writer, "Wrote default configuration to %s\n", path)
			return nil
		},
	}
}

func newConfigPathCmd() *cli.Command {
	return &cli.Command{
		Name:  "path",
		Usage: "Show the configuration, data and log locations",
		Action: func(_ context.Context, cmd *cli.Command) error {
			xdg := config.NewXDGConfig()
			w := cmd.Root().Writer
			fmt.Fprintf(w, "config:  %s\n", configPath(cmd))
			fmt.Fprintf(w, "catalog: %s\n", xdg.GetCatalogPath())
			fmt.Fprintf(w, "data:    %s\n", xdg.GetDataDir())
			fmt.Fprintf(w, "log:     %s\n", xdg.GetLogPath())
			return nil
		},
	}
}

func newConfigEditCmd() *cli.Command {
	return &cli.Command{
		Name:        "edit",
		Usage:       "Edit the configuration file",
		Description: `Open the configuration file in your default editor, creating it first if needed.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "editor",
				Aliases: []string{"e"},
				Value:   "",
				Usage:   "Override default editor (uses $EDITOR environment variable by default)",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			path := configPath(cmd)
			if _, err := os.Stat(path); os.IsNotExist(err) {
				if err := config.Save(path, config.Default()); err != nil {
					return err
				}
			}

			editor, err := selectEditor(cmd.String("editor"))
			if err != nil {
				return err
			}
			return launchEditor(editor, path)
		},
	}
}

func selectEditor(editorFlag string) (string, error) {
	if editorFlag != "" {
		return editorFlag, nil
	}

	if envEditor := os.Getenv("EDITOR"); envEditor != "" {
		return envEditor, nil
	}

	for _, editor := range []string{"vim", "nano", "vi"} {
		if _, err := exec.LookPath(editor); err == nil {
			return editor, nil
		}
	}

	return "", fmt.Errorf("no editor found. Set $EDITOR environment variable or use --editor flag")
}

func launchEditor(editor, configPath string) error {
	cmd := exec.Command(editor, configPath) // #nosec G204 - editor is from controlled sources: user flag, $EDITOR env var, or predefined safe list
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
