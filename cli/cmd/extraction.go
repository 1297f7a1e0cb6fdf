package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/mimestream/adapter"
	"github.com/pithecene-io/mimestream/fetch"
	"github.com/pithecene-io/mimestream/iox"
	"github.com/pithecene-io/mimestream/lode"
	"github.com/pithecene-io/mimestream/log"
	"github.com/pithecene-io/mimestream/metrics"
	"github.com/pithecene-io/mimestream/response"
	"github.com/pithecene-io/mimestream/stream"
	"github.com/pithecene-io/mimestream/types"
)

// Exit codes.
const (
	exitSuccess            = 0
	exitError              = 1
	exitInvalidContentType = 2
	exitStorageFailure     = 3
)

// exitFor maps an extraction error to a cli.Exit carrying its exit code.
func exitFor(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, response.ErrInvalidContentType):
		return cli.Exit(err.Error(), exitInvalidContentType)
	case lode.IsStorageError(err):
		return cli.Exit(err.Error(), exitStorageFailure)
	default:
		return cli.Exit(err.Error(), exitError)
	}
}

// outcomeFor maps an extraction error to an event outcome.
func outcomeFor(err error) string {
	switch {
	case err == nil:
		return adapter.OutcomeSuccess
	case errors.Is(err, response.ErrInvalidContentType):
		return adapter.OutcomeInvalidContentType
	case lode.IsStorageError(err):
		return adapter.OutcomeStorageError
	default:
		return adapter.OutcomeStreamError
	}
}

// signalContext returns a context canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

// input is an opened multipart body.
type input struct {
	resp   *http.Response
	target string
	client *fetch.Client
}

// openInput fetches the URL argument, or wraps --file in a synthetic
// response.
func openInput(ctx context.Context, c *cli.Context, s *settings) (*input, error) {
	if path := c.String("file"); path != "" {
		if c.Args().Present() {
			return nil, errors.New("give either a URL argument or --file, not both")
		}
		resp, err := fetch.FromFile(path, c.String("content-type"))
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		return &input{resp: resp, target: path}, nil
	}

	url := c.Args().First()
	if url == "" {
		return nil, fmt.Errorf("%s requires a URL argument or --file", c.Command.Name)
	}
	client, err := fetch.New(s.request)
	if err != nil {
		return nil, err
	}
	resp, err := client.Get(ctx, url)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	return &input{resp: resp, target: url, client: client}, nil
}

// Close closes the body and releases the transport.
func (in *input) Close() error {
	iox.DiscardClose(in.resp.Body)
	if in.client != nil {
		return in.client.Close()
	}
	return nil
}

// extraction carries the identity, logger and counters of one command run.
type extraction struct {
	meta      *types.ExtractionMeta
	mode      string
	logger    *log.Logger
	collector *metrics.Collector
	metrics   bool
}

func newExtraction(c *cli.Context, s *settings, mode, target string) (*extraction, error) {
	level, err := log.ParseLevel(s.logLevel)
	if err != nil {
		return nil, err
	}
	meta := &types.ExtractionMeta{
		ExtractionID: uuid.NewString(),
		URL:          target,
		Source:       s.source,
		StartedAt:    time.Now(),
	}
	backend := ""
	if s.storage.enabled() {
		backend = s.storage.backend
	}
	e := &extraction{
		meta:      meta,
		mode:      mode,
		logger:    log.NewLoggerWithWriter(meta, os.Stderr, level),
		collector: metrics.NewCollector(mode, backend, meta.ExtractionID),
		metrics:   c.Bool("metrics"),
	}
	e.collector.IncExtractionStarted()
	e.logger.Info("extraction started", map[string]any{"mode": mode})
	return e, nil
}

func (e *extraction) streamOptions() []stream.Option {
	return []stream.Option{stream.WithLogger(e.logger), stream.WithCollector(e.collector)}
}

// finish records the outcome and, with --metrics, writes the counters
// to stderr.
func (e *extraction) finish(err error) {
	if err != nil {
		e.collector.IncExtractionFailed()
		e.logger.Error("extraction failed", map[string]any{"error": err.Error()})
	} else {
		e.collector.IncExtractionCompleted()
		e.logger.Info("extraction completed", map[string]any{
			"duration_ms": time.Since(e.meta.StartedAt).Milliseconds(),
		})
	}
	if e.metrics {
		enc := json.NewEncoder(os.Stderr)
		enc.SetIndent("", "  ")
		_ = enc.Encode(e.collector.Snapshot())
	}
	_ = e.logger.Sync()
}

// partRecord describes p after its content has been consumed.
func partRecord(p *stream.Part) *types.PartRecord {
	return &types.PartRecord{
		Index:       p.Index(),
		ContentType: p.ContentType(),
		ContentID:   p.ContentID(),
		SizeBytes:   p.Size(),
		Header:      map[string]string(p.Header),
	}
}
