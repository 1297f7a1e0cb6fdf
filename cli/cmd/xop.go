package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/mimestream/cli/render"
	"github.com/pithecene-io/mimestream/iox"
	"github.com/pithecene-io/mimestream/response"
	"github.com/pithecene-io/mimestream/stream"
	"github.com/pithecene-io/mimestream/types"
)

// XOPCommand returns the xop command.
func XOPCommand() *cli.Command {
	return &cli.Command{
		Name:      "xop",
		Usage:     "Extract the XOP manifest of an MTOM response and list its attachments",
		ArgsUsage: "<url>",
		Flags: joinFlags(
			InputFlags(),
			OutputFlags(),
			StorageFlags(),
			AdapterFlags(),
			[]cli.Flag{
				&cli.StringFlag{
					Name:  "out",
					Usage: "Write the manifest XML to this file",
				},
			},
		),
		Action: xopAction,
	}
}

// xopResult is the rendered outcome of the xop command.
type xopResult struct {
	ExtractionID string            `json:"extraction_id" yaml:"extraction_id"`
	ContentType  string            `json:"content_type" yaml:"content_type"`
	Manifest     *types.PartRecord `json:"manifest" yaml:"manifest"`
	Includes     []string          `json:"includes" yaml:"includes"`
	Attachments  render.PartTable  `json:"attachments" yaml:"attachments"`
	StoragePath  string            `json:"storage_path,omitempty" yaml:"storage_path,omitempty"`
}

// Columns implements render.Tabular.
func (x *xopResult) Columns() []string {
	return x.all().Columns()
}

// Rows implements render.Tabular.
func (x *xopResult) Rows() [][]string {
	return x.all().Rows()
}

func (x *xopResult) all() render.PartTable {
	return append(render.PartTable{x.Manifest}, x.Attachments...)
}

func xopAction(c *cli.Context) error {
	s, err := loadSettings(c)
	if err != nil {
		return cli.Exit(err.Error(), exitError)
	}
	r, err := render.NewRenderer(c)
	if err != nil {
		return cli.Exit(err.Error(), exitError)
	}
	if c.Bool("tui") {
		return cli.Exit("--tui is not supported for xop command", exitError)
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

	e, err := newExtraction(c, s, "xop", in.target)
	if err != nil {
		return cli.Exit(err.Error(), exitError)
	}
	res, sum := extractXOP(ctx, in, e, s, c.String("out"))
	e.finish(sum.err)
	notify(ctx, a, e, sum)
	if sum.err != nil {
		return exitFor(sum.err)
	}
	return r.Render(res)
}

// extractXOP loads the manifest, optionally writes it to out, and drains
// or stores the attachments.
func extractXOP(ctx context.Context, in *input, e *extraction, s *settings, out string) (*xopResult, summary) {
	sum := summary{contentType: in.resp.Header.Get("Content-Type")}

	x, err := response.NewXOP(in.resp, e.streamOptions()...)
	if err != nil {
		sum.err = err
		return nil, sum
	}
	defer iox.DiscardClose(x)

	res := &xopResult{
		ExtractionID: e.meta.ExtractionID,
		ContentType:  x.ContentType,
		Manifest: &types.PartRecord{
			Index:       0,
			ContentType: x.Manifest.ContentType(),
			ContentID:   stream.NormalizeContentID(x.Manifest.Header.Get("content-id")),
			SizeBytes:   int64(len(x.Manifest.Content)),
			Manifest:    true,
			Header:      map[string]string(x.Manifest.Header),
		},
		Attachments: render.PartTable{},
	}
	sum.manifestBytes = len(x.Manifest.Content)

	if res.Includes, err = x.Manifest.Includes(); err != nil {
		e.logger.Warn("manifest is not well-formed XML", map[string]any{"error": err.Error()})
	}
	if out != "" {
		if err := os.WriteFile(out, x.Manifest.Content, 0o644); err != nil {
			sum.err = fmt.Errorf("write manifest: %w", err)
			return nil, sum
		}
	}

	var store *partStore
	if s.storage.enabled() {
		if store, err = openPartStore(ctx, s.storage, e.meta, e.collector); err != nil {
			sum.err = err
			return nil, sum
		}
		res.StoragePath = store.prefix
		sum.storagePath = store.prefix
		if err := store.put(ctx, res.Manifest, bytes.NewReader(x.Manifest.Content)); err != nil {
			sum.err = err
			return nil, sum
		}
	}

	for p, err := range x.Attachments() {
		if err != nil {
			sum.err = err
			return nil, sum
		}
		rec := partRecord(p)
		if store != nil {
			err = store.put(ctx, rec, p.Content)
		} else {
			_, err = iox.Drain(p.Content)
			rec.SizeBytes = p.Size()
		}
		if err != nil {
			sum.err = err
			return nil, sum
		}
		res.Attachments = append(res.Attachments, rec)
	}
	sum.partCount = 1 + len(res.Attachments)

	if store != nil {
		if err := store.commit(ctx); err != nil {
			sum.err = err
			return nil, sum
		}
	}
	return res, sum
}
