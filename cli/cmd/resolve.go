package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	mconfig "github.com/pithecene-io/mimestream/cli/config"
)

// resolveString returns the flag value when set on the command line,
// then the config value when non-empty, then the flag default.
func resolveString(c *cli.Context, name, configValue string) string {
	if c.IsSet(name) || configValue == "" {
		return c.String(name)
	}
	return configValue
}

func resolveInt(c *cli.Context, name string, configValue *int) int {
	if c.IsSet(name) || configValue == nil {
		return c.Int(name)
	}
	return *configValue
}

func resolveBool(c *cli.Context, name string, configValue bool) bool {
	if c.IsSet(name) {
		return c.Bool(name)
	}
	return configValue || c.Bool(name)
}

func resolveDuration(c *cli.Context, name string, configValue time.Duration) time.Duration {
	if c.IsSet(name) || configValue == 0 {
		return c.Duration(name)
	}
	return configValue
}

// configVal reads a field from cfg, tolerating a nil config.
func configVal[T any](cfg *mconfig.Config, get func(*mconfig.Config) T) T {
	if cfg == nil {
		var zero T
		return zero
	}
	return get(cfg)
}

// resolveHeaders merges config headers with "Name: value" flag values.
// Flag values replace config values of the same name.
func resolveHeaders(c *cli.Context, name string, configValue map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(configValue))
	for k, v := range configValue {
		out[k] = v
	}
	for _, raw := range c.StringSlice(name) {
		k, v, ok := strings.Cut(raw, ":")
		if !ok {
			k, v, ok = strings.Cut(raw, "=")
		}
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid --%s %q: expected \"Name: value\"", name, raw)
		}
		out[k] = strings.TrimSpace(v)
	}
	return out, nil
}
