package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/numstore/types"
)

// NewApp assembles the numstore command tree.
func NewApp(commit string) *cli.App {
	return &cli.App{
		Name:    "numstore",
		Usage:   "Generate, store and page through binary numeric datasets",
		Version: fmt.Sprintf("%s (commit: %s)", types.Version, commit),
		Flags:   GlobalFlags(),
		Commands: []*cli.Command{
			GenerateCommand(),
			ReadCommand(),
			DeleteCommand(),
			VersionCommand(commit),
		},
	}
}
