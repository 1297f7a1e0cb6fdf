package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/mimestream/cli/render"
	"github.com/pithecene-io/mimestream/types"
)

// VersionResponse is the output of the version command.
type VersionResponse struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit" yaml:"commit"`
}

// VersionCommand returns the version command.
func VersionCommand(commit string) *cli.Command {
	return &cli.Command{
		Name:   "version",
		Usage:  "Show version information",
		Flags:  OutputFlags(),
		Action: versionAction(commit),
	}
}

func versionAction(commit string) cli.ActionFunc {
	return func(c *cli.Context) error {
		r, err := render.NewRenderer(c)
		if err != nil {
			return err
		}
		if c.Bool("tui") {
			return cli.Exit("--tui is not supported for version command", exitError)
		}
		return r.Render(VersionResponse{Version: types.Version, Commit: commit})
	}
}
