// Package config loads fsgitd's broker settings: path authorization
// patterns, git subprocess timeout, session store location, the default
// commit template, and the transport to serve on.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds configuration for the fsgit broker.
type Config struct {
	// AllowedPaths/DeniedPaths seed the C2 path authorizer (internal/authz).
	// A deny pattern may be "!"-prefixed, matching the FS_GIT_DENIED_PATHS
	// convention. Empty AllowedPaths means default-allow.
	AllowedPaths []string `yaml:"allowed_paths"`
	DeniedPaths  []string `yaml:"denied_paths"`

	// GitTimeout bounds every git subprocess invocation (internal/git).
	GitTimeout time.Duration `yaml:"git_timeout"`

	// SessionDir is where the staged-session store (internal/session)
	// persists its one-file-per-session state.
	SessionDir string `yaml:"session_dir"`

	// TemplatePath optionally overrides the built-in default commit
	// template asset (internal/template.LoadDefault). Empty uses the
	// built-in asset.
	TemplatePath string `yaml:"template_path"`

	// ListenAddr, when non-empty, serves over TCP at this address instead
	// of stdio (e.g. "127.0.0.1:4717").
	ListenAddr string `yaml:"listen_addr"`

	LogLevel string `yaml:"log_level"`
}

// LoadConfig loads configuration from path, applying defaults for anything
// the file doesn't set, then environment overrides, then validates the
// result. A missing file is not an error: defaults plus env overrides are
// returned as-is.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// fall through with defaults
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		}
	}

	applyEnvOverrides(cfg)

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
