package cmd

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/mimestream/cli/render"
	"github.com/pithecene-io/mimestream/cli/tui"
	"github.com/pithecene-io/mimestream/frame"
	"github.com/pithecene-io/mimestream/stream"
	"github.com/pithecene-io/mimestream/types"
)

// ReplayCommand returns the replay command.
func ReplayCommand() *cli.Command {
	return &cli.Command{
		Name:      "replay",
		Usage:     "Decode a frames stream written by split --frames",
		ArgsUsage: "<frames-file|->",
		Flags: joinFlags(
			[]cli.Flag{
				&cli.StringFlag{Name: "config", Usage: "Path to mimestream.yaml"},
				&cli.StringFlag{Name: "source", Usage: "Source label for storage partitioning"},
				&cli.StringFlag{Name: "log-level", Usage: "Log level: debug, info, warn, error", Value: "warn"},
				MetricsFlag,
			},
			OutputFlags(),
			StorageFlags(),
		),
		Action: replayAction,
	}
}

func replayAction(c *cli.Context) error {
	s, err := loadSettings(c)
	if err != nil {
		return cli.Exit(err.Error(), exitError)
	}
	r, err := render.NewRenderer(c)
	if err != nil {
		return cli.Exit(err.Error(), exitError)
	}
	path := c.Args().First()
	if path == "" {
		return cli.Exit("replay requires a frames file argument (- for stdin)", exitError)
	}

	var src io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return cli.Exit(err.Error(), exitError)
		}
		defer func() { _ = f.Close() }()
		src = f
	}

	ctx, cancel := signalContext()
	defer cancel()

	e, err := newExtraction(c, s, "replay", path)
	if err != nil {
		return cli.Exit(err.Error(), exitError)
	}
	recs, err := replayFrames(ctx, bufio.NewReader(src), e, s)
	e.finish(err)
	if err != nil {
		return exitFor(err)
	}

	if c.Bool("tui") {
		snap := e.collector.Snapshot()
		return r.RenderTUI(tui.ViewParts, &tui.PartsView{Title: path, Parts: recs, Metrics: &snap})
	}
	return r.Render(render.PartTable(recs))
}

// replayFrames reassembles the parts of a frames stream and, when storage
// is configured, persists them as a new extraction.
func replayFrames(ctx context.Context, src io.Reader, e *extraction, s *settings) ([]*types.PartRecord, error) {
	parts, err := frame.Collect(src)
	if err != nil {
		return nil, err
	}

	var store *partStore
	if s.storage.enabled() {
		if store, err = openPartStore(ctx, s.storage, e.meta, e.collector); err != nil {
			return nil, err
		}
	}

	recs := make([]*types.PartRecord, 0, len(parts))
	for _, p := range parts {
		h := stream.Header(p.Header)
		rec := &types.PartRecord{
			Index:       p.Index,
			ContentType: h.Get("content-type"),
			ContentID:   stream.NormalizeContentID(h.Get("content-id")),
			SizeBytes:   int64(len(p.Data)),
			Header:      p.Header,
		}
		e.collector.AddBytesRead(rec.SizeBytes)
		if store != nil {
			if err := store.put(ctx, rec, bytes.NewReader(p.Data)); err != nil {
				return nil, err
			}
		}
		recs = append(recs, rec)
	}
	if store != nil {
		if err := store.commit(ctx); err != nil {
			return nil, err
		}
	}
	return recs, nil
}
