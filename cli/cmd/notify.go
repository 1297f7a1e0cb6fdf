package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/pithecene-io/mimestream/adapter"
	redisadapter "github.com/pithecene-io/mimestream/adapter/redis"
	"github.com/pithecene-io/mimestream/adapter/webhook"
)

// buildAdapter returns the configured adapter, or nil when none is set.
func buildAdapter(a adapterChoice) (adapter.Adapter, error) {
	switch a.kind {
	case "":
		return nil, nil
	case "webhook":
		wh, err := webhook.New(webhook.Config{
			URL:     a.url,
			Headers: a.headers,
			Timeout: a.timeout,
			Retries: a.retries,
		})
		if err != nil {
			return nil, err
		}
		return wh, nil
	case "redis":
		rd, err := redisadapter.New(redisadapter.Config{
			URL:     a.url,
			Channel: a.channel,
			Timeout: a.timeout,
			Retries: a.retries,
		})
		if err != nil {
			return nil, err
		}
		return rd, nil
	default:
		return nil, fmt.Errorf("unknown adapter: %s (must be webhook or redis)", a.kind)
	}
}

// summary is what a finished extraction reports to the adapter.
type summary struct {
	contentType   string
	storagePath   string
	partCount     int
	manifestBytes int
	err           error
}

// notify publishes the extraction_completed event. Publish failures are
// logged and do not change the command's outcome.
func notify(ctx context.Context, a adapter.Adapter, e *extraction, sum summary) {
	if a == nil {
		return
	}
	event := adapter.NewEvent(e.meta, e.mode, outcomeFor(sum.err), time.Now())
	event.ContentType = sum.contentType
	event.StoragePath = sum.storagePath
	event.PartCount = sum.partCount
	event.ManifestBytes = sum.manifestBytes
	event.BytesRead = e.collector.Snapshot().BytesRead

	if err := a.Publish(ctx, event); err != nil {
		e.logger.Warn("event publish failed", map[string]any{"error": err.Error()})
		return
	}
	e.logger.Debug("event published", map[string]any{"outcome": event.Outcome})
}
