// Package cmd implements the block-manager command tree.
package cmd

import (
	"github.com/klauern/block-manager/internal/constants"
	"github.com/urfave/cli/v3"
)

// NewRootCmd assembles the block-manager command tree.
func NewRootCmd(versionInfo VersionInfo) *cli.Command {
	return &cli.Command{
		Name:    constants.BinaryName,
		Usage:   "Disable editor blocks globally or per content type",
		Version: versionInfo.Version,
		Description: `Stores which editor blocks are disabled, expands disabled parents to their
child blocks, and answers which blocks an editor may offer for a content type.`,
		// --type values carry their own comma-separated type lists
		DisableSliceFlagSeparator: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config.toml (default: XDG config dir)",
				Sources: cli.EnvVars(constants.EnvPrefix + "CONFIG"),
			},
			&cli.StringFlag{
				Name:  "dsn",
				Usage: "Option store DSN (memory://, file://, sqlite://, bolt://)",
			},
			&cli.StringFlag{
				Name:  "catalog",
				Usage: "Block catalog YAML file (default: built-in catalog)",
			},
			&cli.BoolFlag{
				Name:  "transitive",
				Usage: "Expand disabled parents through nested parents",
			},
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "Enable debug logging",
			},
		},
		Commands: []*cli.Command{
			newServeCmd(versionInfo),
			newSaveCmd(),
			newAllowedCmd(),
			newBlocksCmd(),
			newStateCmd(),
			newActivateCmd(),
			newDeactivateCmd(),
			newUninstallCmd(),
			newTokenCmd(),
			newConfigCmd(),
			NewVersionCmd(versionInfo),
		},
	}
}
