package config

import (
	"os"
	"strings"
	"time"
)

// envOverrides maps environment variables to config field setters.
var envOverrides = []struct {
	envVar string
	apply  func(*Config, string)
}{
	{
		envVar: "FS_GIT_ALLOWED_PATHS",
		apply: func(c *Config, v string) {
			c.AllowedPaths = splitEnvList(v)
		},
	},
	{
		envVar: "FS_GIT_DENIED_PATHS",
		apply: func(c *Config, v string) {
			c.DeniedPaths = splitEnvList(v)
		},
	},
	{
		envVar: "FSGIT_SESSION_DIR",
		apply: func(c *Config, v string) {
			c.SessionDir = v
		},
	},
	{
		envVar: "FSGIT_GIT_TIMEOUT",
		apply: func(c *Config, v string) {
			if d, err := time.ParseDuration(v); err == nil {
				c.GitTimeout = d
			}
		},
	},
	{
		envVar: "FSGIT_SOCKET",
		apply: func(c *Config, v string) {
			c.ListenAddr = v
		},
	},
}

// applyEnvOverrides modifies config in place with environment variable values.
func applyEnvOverrides(cfg *Config) {
	for _, override := range envOverrides {
		if val := os.Getenv(override.envVar); val != "" {
			override.apply(cfg, val)
		}
	}
}

func splitEnvList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
