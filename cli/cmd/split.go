package cmd

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/mimestream/cli/render"
	"github.com/pithecene-io/mimestream/frame"
	"github.com/pithecene-io/mimestream/iox"
	"github.com/pithecene-io/mimestream/response"
)

// SplitCommand returns the split command.
func SplitCommand() *cli.Command {
	return &cli.Command{
		Name:      "split",
		Usage:     "Persist every part to storage, or write the parts as frames",
		ArgsUsage: "<url>",
		Flags: joinFlags(
			InputFlags(),
			OutputFlags(),
			StorageFlags(),
			AdapterFlags(),
			[]cli.Flag{
				&cli.BoolFlag{
					Name:  "frames",
					Usage: "Write length-prefixed msgpack frames instead of storing parts",
				},
				&cli.StringFlag{
					Name:  "out",
					Usage: "Frames output file (default: stdout)",
				},
				&cli.IntFlag{
					Name:  "chunk-size",
					Usage: "Maximum content bytes per chunk frame",
					Value: frame.MaxChunkSize,
				},
			},
		),
		Action: splitAction,
	}
}

// splitResult is the rendered outcome of the split command.
type splitResult struct {
	ExtractionID string           `json:"extraction_id" yaml:"extraction_id"`
	ContentType  string           `json:"content_type" yaml:"content_type"`
	Parts        render.PartTable `json:"parts" yaml:"parts"`
	StoragePath  string           `json:"storage_path,omitempty" yaml:"storage_path,omitempty"`
	FramesPath   string           `json:"frames_path,omitempty" yaml:"frames_path,omitempty"`
}

// Columns implements render.Tabular.
func (s *splitResult) Columns() []string { return s.Parts.Columns() }

// Rows implements render.Tabular.
func (s *splitResult) Rows() [][]string { return s.Parts.Rows() }

var errSplitTarget = errors.New("split requires --storage-path or --frames")

func splitAction(c *cli.Context) error {
	s, err := loadSettings(c)
	if err != nil {
		return cli.Exit(err.Error(), exitError)
	}
	r, err := render.NewRenderer(c)
	if err != nil {
		return cli.Exit(err.Error(), exitError)
	}
	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for split command", exitError)
	}
	frames := c.Bool("frames")
	switch {
	case !frames && !s.storage.enabled():
		return cli.Exit(errSplitTarget.Error(), exitError)
	case frames && s.storage.enabled():
		return cli.Exit("--frames and --storage-path are mutually exclusive", exitError)
	}
	a, err := buildAdapter(s.adapter)
	if err != nil {
		return cli.Exit(err.Error(), exitError)
	}
	if a != nil {
		defer iox.DiscardClose(a)
	}

	ctx, cancel := signalContext()
	defer cancel()

	in, err := openInput(ctx, c, s)
	if err != nil {
		return exitFor(err)
	}
	defer iox.DiscardClose(in)

	e, err := newExtraction(c, s, "split", in.target)
	if err != nil {
		return cli.Exit(err.Error(), exitError)
	}

	var res *splitResult
	var sum summary
	if frames {
		res, sum = splitFrames(in, e, c.String("out"), c.Int("chunk-size"))
	} else {
		res, sum = splitStore(ctx, in, e, s)
	}
	e.finish(sum.err)
	notify(ctx, a, e, sum)
	if sum.err != nil {
		return exitFor(sum.err)
	}
	if frames && c.String("out") == "" {
		// stdout carries the frames.
		return nil
	}
	return r.Render(res)
}

func splitStore(ctx context.Context, in *input, e *extraction, s *settings) (*splitResult, summary) {
	sum := summary{contentType: in.resp.Header.Get("Content-Type")}
	st, err := response.New(in.resp, e.streamOptions()...)
	if err != nil {
		sum.err = err
		return nil, sum
	}
	defer iox.DiscardClose(st)

	store, err := openPartStore(ctx, s.storage, e.meta, e.collector)
	if err != nil {
		sum.err = err
		return nil, sum
	}
	sum.storagePath = store.prefix

	res := &splitResult{
		ExtractionID: e.meta.ExtractionID,
		ContentType:  st.ContentType,
		Parts:        render.PartTable{},
		StoragePath:  store.prefix,
	}
	for p, err := range st.Parts() {
		if err != nil {
			sum.err = err
			return nil, sum
		}
		rec := partRecord(p)
		if err := store.put(ctx, rec, p.Content); err != nil {
			sum.err = err
			return nil, sum
		}
		res.Parts = append(res.Parts, rec)
	}
	sum.partCount = len(res.Parts)
	if err := store.commit(ctx); err != nil {
		sum.err = err
		return nil, sum
	}
	return res, sum
}

func splitFrames(in *input, e *extraction, out string, chunkSize int) (res *splitResult, sum summary) {
	sum = summary{contentType: in.resp.Header.Get("Content-Type")}

	var w io.Writer = os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			sum.err = err
			return nil, sum
		}
		defer func() {
			if cerr := f.Close(); sum.err == nil && cerr != nil {
				sum.err = cerr
			}
		}()
		w = f
	}
	bw := bufio.NewWriter(w)

	st, err := response.New(in.resp, e.streamOptions()...)
	if err != nil {
		sum.err = err
		return nil, sum
	}
	defer iox.DiscardClose(st)

	enc := frame.NewEncoder(bw, e.collector)
	enc.SetChunkSize(chunkSize)

	res = &splitResult{
		ExtractionID: e.meta.ExtractionID,
		ContentType:  st.ContentType,
		Parts:        render.PartTable{},
		FramesPath:   out,
	}
	for p, err := range st.Parts() {
		if err != nil {
			sum.err = err
			return nil, sum
		}
		n, err := enc.WritePart(p.Index(), p.Header, p.Content)
		if err != nil {
			sum.err = err
			return nil, sum
		}
		rec := partRecord(p)
		rec.SizeBytes = n
		res.Parts = append(res.Parts, rec)
	}
	if err := bw.Flush(); err != nil {
		sum.err = err
		return nil, sum
	}
	sum.partCount = len(res.Parts)
	return res, sum
}
