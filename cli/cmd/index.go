package cmd

import (
	"errors"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/mimestream/cli/render"
	"github.com/pithecene-io/mimestream/cli/tui"
	mlode "github.com/pithecene-io/mimestream/lode"
)

// IndexCommand returns the index command.
func IndexCommand() *cli.Command {
	return &cli.Command{
		Name:  "index",
		Usage: "List the stored parts of an extraction",
		Flags: joinFlags(
			[]cli.Flag{
				&cli.StringFlag{Name: "config", Usage: "Path to mimestream.yaml"},
				&cli.StringFlag{
					Name:  "extraction-id",
					Usage: "Extraction to list (default: most recent)",
				},
			},
			OutputFlags(),
			StorageFlags(),
		),
		Action: indexAction,
	}
}

func indexAction(c *cli.Context) error {
	s, err := loadSettings(c)
	if err != nil {
		return cli.Exit(err.Error(), exitError)
	}
	r, err := render.NewRenderer(c)
	if err != nil {
		return cli.Exit(err.Error(), exitError)
	}
	if !s.storage.enabled() {
		return cli.Exit("index requires --storage-path", exitError)
	}

	ctx, cancel := signalContext()
	defer cancel()

	factory, err := storeFactory(ctx, s.storage)
	if err != nil {
		return exitFor(err)
	}
	ds, err := mlode.NewReadDataset(s.storage.dataset, factory)
	if err != nil {
		return exitFor(mlode.WrapInitError(err, s.storage.dataset))
	}
	recs, err := mlode.ReadIndex(ctx, ds, c.String("extraction-id"))
	if errors.Is(err, mlode.ErrNoIndex) {
		return cli.Exit(err.Error(), exitError)
	}
	if err != nil {
		return exitFor(err)
	}

	if c.Bool("tui") {
		title := c.String("extraction-id")
		if title == "" {
			title = "latest extraction"
		}
		return r.RenderTUI(tui.ViewIndex, &tui.PartsView{Title: title, Parts: recs})
	}
	return r.Render(render.PartTable(recs))
}
