package cmd

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	mconfig "github.com/pithecene-io/mimestream/cli/config"
	"github.com/pithecene-io/mimestream/fetch"
)

// storageChoice holds the resolved Lode storage configuration.
type storageChoice struct {
	backend   string // "fs" or "s3"
	path      string // fs: directory, s3: bucket/prefix
	dataset   string
	region    string
	endpoint  string
	pathStyle bool
}

// enabled reports whether parts should be persisted.
func (s storageChoice) enabled() bool {
	return s.path != ""
}

// adapterChoice holds the resolved event adapter configuration.
type adapterChoice struct {
	kind    string // "", "webhook" or "redis"
	url     string
	channel string
	headers map[string]string
	timeout time.Duration
	retries int
}

// settings are the flag values of one invocation with config file
// defaults applied.
type settings struct {
	source   string
	logLevel string
	request  fetch.Config
	storage  storageChoice
	adapter  adapterChoice
}

func loadSettings(c *cli.Context) (*settings, error) {
	cfg, err := mconfig.LoadOptional(c.String("config"))
	if err != nil {
		return nil, err
	}

	reqHeaders, err := resolveHeaders(c, "header", configVal(cfg, func(c *mconfig.Config) map[string]string { return c.Request.Headers }))
	if err != nil {
		return nil, err
	}
	adapterHeaders, err := resolveHeaders(c, "adapter-header", configVal(cfg, func(c *mconfig.Config) map[string]string { return c.Adapter.Headers }))
	if err != nil {
		return nil, err
	}

	s := &settings{
		source:   resolveString(c, "source", cfg.Source),
		logLevel: resolveString(c, "log-level", cfg.Log.Level),
		request: fetch.Config{
			Headers: reqHeaders,
			Accept:  resolveString(c, "accept", cfg.Request.Accept),
			Timeout: resolveDuration(c, "timeout", cfg.Request.Timeout.Duration),
		},
		storage: storageChoice{
			backend:   resolveString(c, "storage-backend", cfg.Storage.Backend),
			path:      resolveString(c, "storage-path", cfg.Storage.Path),
			dataset:   resolveString(c, "storage-dataset", cfg.Storage.Dataset),
			region:    resolveString(c, "storage-region", cfg.Storage.Region),
			endpoint:  resolveString(c, "storage-endpoint", cfg.Storage.Endpoint),
			pathStyle: resolveBool(c, "storage-s3-path-style", cfg.Storage.S3PathStyle),
		},
		adapter: adapterChoice{
			kind:    resolveString(c, "adapter", cfg.Adapter.Type),
			url:     resolveString(c, "adapter-url", cfg.Adapter.URL),
			channel: resolveString(c, "adapter-channel", cfg.Adapter.Channel),
			headers: adapterHeaders,
			timeout: resolveDuration(c, "adapter-timeout", cfg.Adapter.Timeout.Duration),
			retries: resolveInt(c, "adapter-retries", cfg.Adapter.Retries),
		},
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *settings) validate() error {
	switch s.storage.backend {
	case "", "fs", "s3":
	default:
		return fmt.Errorf("invalid --storage-backend %q (must be fs or s3)", s.storage.backend)
	}
	switch s.adapter.kind {
	case "":
	case "webhook", "redis":
		if s.adapter.url == "" {
			return fmt.Errorf("--adapter-url is required for the %s adapter", s.adapter.kind)
		}
	default:
		return fmt.Errorf("invalid --adapter %q (must be webhook or redis)", s.adapter.kind)
	}
	if s.adapter.retries < 0 {
		return fmt.Errorf("--adapter-retries must be >= 0, got %d", s.adapter.retries)
	}
	return nil
}
