// Command block-manager stores editor block disable settings and serves the
// allowed-block API.
package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/klauern/block-manager/internal/cmd"
)

// Set via -ldflags at release time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	root := cmd.NewRootCmd(cmd.VersionInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
		GoVer:   runtime.Version(),
	})

	if err := root.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
