// Package cmd provides the commands of the mimestream binary.
package cmd

import "github.com/urfave/cli/v2"

// Output flags shared by every command that renders results.
var (
	// FormatFlag selects output format: json, table, yaml.
	FormatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: json, table, yaml",
	}

	// NoColorFlag disables colored table headers.
	NoColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable colored output",
	}

	// TUIFlag enables the interactive part browser.
	TUIFlag = &cli.BoolFlag{
		Name:  "tui",
		Usage: "Browse parts interactively (parts, index only)",
	}

	// MetricsFlag writes the extraction counters to stderr when done.
	MetricsFlag = &cli.BoolFlag{
		Name:  "metrics",
		Usage: "Write extraction metrics as JSON to stderr",
	}
)

// OutputFlags returns the rendering flags. --tui is included everywhere
// so that unsupported commands fail with an explicit message.
func OutputFlags() []cli.Flag {
	return []cli.Flag{FormatFlag, NoColorFlag, TUIFlag}
}

// InputFlags select and fetch the multipart body.
func InputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "config",
			Usage: "Path to mimestream.yaml (default: ./mimestream.yaml if present)",
		},
		&cli.StringFlag{
			Name:  "file",
			Usage: "Read the body from a captured file instead of a URL",
		},
		&cli.StringFlag{
			Name:  "content-type",
			Usage: "Content-Type of --file input (required with --file)",
		},
		&cli.StringSliceFlag{
			Name:  "header",
			Usage: `Request header "Name: value" (repeatable)`,
		},
		&cli.StringFlag{
			Name:  "accept",
			Usage: "Accept header override",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Response header timeout",
		},
		&cli.StringFlag{
			Name:  "source",
			Usage: "Source label for storage partitioning and events",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
			Value: "warn",
		},
		MetricsFlag,
	}
}

// StorageFlags configure the Lode part store.
func StorageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "storage-backend",
			Usage: "Storage backend: fs or s3",
			Value: "fs",
		},
		&cli.StringFlag{
			Name:  "storage-path",
			Usage: "Storage path (fs: directory, s3: bucket/prefix)",
		},
		&cli.StringFlag{
			Name:  "storage-dataset",
			Usage: "Lode dataset ID",
			Value: "mimestream",
		},
		&cli.StringFlag{
			Name:  "storage-region",
			Usage: "AWS region for s3 (default: SDK chain)",
		},
		&cli.StringFlag{
			Name:  "storage-endpoint",
			Usage: "Custom S3 endpoint for S3-compatible providers",
		},
		&cli.BoolFlag{
			Name:  "storage-s3-path-style",
			Usage: "Force S3 path-style addressing",
		},
	}
}

// AdapterFlags configure the extraction_completed notification.
func AdapterFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "adapter",
			Usage: "Event adapter: webhook or redis",
		},
		&cli.StringFlag{
			Name:  "adapter-url",
			Usage: "Webhook endpoint or Redis URL",
		},
		&cli.StringFlag{
			Name:  "adapter-channel",
			Usage: "Redis pub/sub channel",
		},
		&cli.StringSliceFlag{
			Name:  "adapter-header",
			Usage: `Webhook header "Name: value" (repeatable)`,
		},
		&cli.DurationFlag{
			Name:  "adapter-timeout",
			Usage: "Per-attempt publish timeout",
		},
		&cli.IntFlag{
			Name:  "adapter-retries",
			Usage: "Publish retry attempts",
			Value: 3,
		},
	}
}

func joinFlags(groups ...[]cli.Flag) []cli.Flag {
	var out []cli.Flag
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
