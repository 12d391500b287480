package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/numstore/cli/render"
	"github.com/pithecene-io/numstore/types"
)

// VersionResponse is the response for the version command.
type VersionResponse struct {
	Version       string `json:"version" yaml:"version" msgpack:"version"`
	Commit        string `json:"commit" yaml:"commit" msgpack:"commit"`
	FormatVersion int    `json:"format_version" yaml:"format_version" msgpack:"format_version"`
}

// VersionCommand returns the version command.
// It touches neither configuration nor storage.
func VersionCommand(commit string) *cli.Command {
	return &cli.Command{
		Name:   "version",
		Usage:  "Show version information",
		Action: versionAction(commit),
	}
}

func versionAction(commit string) cli.ActionFunc {
	return func(c *cli.Context) error {
		r, err := render.NewRenderer(c)
		if err != nil {
			return cli.Exit(err.Error(), exitInvalidArgument)
		}
		return r.Render(VersionResponse{
			Version:       types.Version,
			Commit:        commit,
			FormatVersion: types.FormatVersion,
		})
	}
}
