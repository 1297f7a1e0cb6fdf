package cmd

import (
	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/mimestream/cli/render"
	"github.com/pithecene-io/mimestream/cli/tui"
	"github.com/pithecene-io/mimestream/iox"
	"github.com/pithecene-io/mimestream/response"
	"github.com/pithecene-io/mimestream/types"
)

// PartsCommand returns the parts command.
func PartsCommand() *cli.Command {
	return &cli.Command{
		Name:      "parts",
		Usage:     "Stream a multipart body and list its parts",
		ArgsUsage: "<url>",
		Flags:     joinFlags(InputFlags(), OutputFlags()),
		Action:    partsAction,
	}
}

func partsAction(c *cli.Context) error {
	s, err := loadSettings(c)
	if err != nil {
		return cli.Exit(err.Error(), exitError)
	}
	r, err := render.NewRenderer(c)
	if err != nil {
		return cli.Exit(err.Error(), exitError)
	}

	ctx, cancel := signalContext()
	defer cancel()

	in, err := openInput(ctx, c, s)
	if err != nil {
		return exitFor(err)
	}
	defer iox.DiscardClose(in)

	e, err := newExtraction(c, s, "parts", in.target)
	if err != nil {
		return cli.Exit(err.Error(), exitError)
	}
	recs, err := listParts(in, e)
	e.finish(err)
	if err != nil {
		return exitFor(err)
	}

	if c.Bool("tui") {
		snap := e.collector.Snapshot()
		return r.RenderTUI(tui.ViewParts, &tui.PartsView{Title: in.target, Parts: recs, Metrics: &snap})
	}
	return r.Render(render.PartTable(recs))
}

// listParts reads every part to the end and describes it.
func listParts(in *input, e *extraction) ([]*types.PartRecord, error) {
	st, err := response.New(in.resp, e.streamOptions()...)
	if err != nil {
		return nil, err
	}
	defer iox.DiscardClose(st)

	recs := []*types.PartRecord{}
	for p, err := range st.Parts() {
		if err != nil {
			return recs, err
		}
		if _, err := iox.Drain(p.Content); err != nil {
			return recs, err
		}
		recs = append(recs, partRecord(p))
	}
	return recs, nil
}
