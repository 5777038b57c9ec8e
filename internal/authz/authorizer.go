// Package authz implements the path authorizer (C2, spec.md §4.2): repo-root
// containment plus optional allow/deny glob and regex filtering, with
// deny-wins decision order.
package authz

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/RevCBH/fsgit/internal/fserrors"
)

const (
	envAllowed = "FS_GIT_ALLOWED_PATHS"
	envDenied  = "FS_GIT_DENIED_PATHS"
)

type pattern struct {
	raw   string // classification-stripped form: glob text or regex source
	regex *regexp.Regexp
}

// Authorizer answers "is this path writable?" for one repo root.
type Authorizer struct {
	allowed []pattern
	denied  []pattern
}

// New builds an Authorizer from explicit pattern lists. Deny patterns are
// expected in their configured form (optionally `!`-prefixed); the `!` is
// stripped before classification, per spec.md §4.2.
func New(allowedPatterns, deniedPatterns []string) (*Authorizer, error) {
	a := &Authorizer{}
	for _, p := range allowedPatterns {
		pp, err := classify(p)
		if err != nil {
			return nil, err
		}
		a.allowed = append(a.allowed, pp)
	}
	for _, p := range deniedPatterns {
		pp, err := classify(strings.TrimPrefix(p, "!"))
		if err != nil {
			return nil, err
		}
		a.denied = append(a.denied, pp)
	}
	return a, nil
}

// FromEnv builds an Authorizer from FS_GIT_ALLOWED_PATHS / FS_GIT_DENIED_PATHS
// (comma-separated, each entry trimmed; empty entries discarded), used when
// no per-request patterns are supplied (spec.md §4.2 "Configuration").
func FromEnv() (*Authorizer, error) {
	return New(splitEnvList(os.Getenv(envAllowed)), splitEnvList(os.Getenv(envDenied)))
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

// classify recognizes the r"..."/r'...' raw-regex marker (spec.md §4.2); any
// other literal form is a glob pattern.
func classify(p string) (pattern, error) {
	if inner, ok := stripRawMarker(p); ok {
		// Full-match semantics against the whole relative path (spec.md
		// §4.2), equivalent to Python's re.fullmatch: anchor even though
		// the configured pattern itself need not carry ^/$.
		re, err := regexp.Compile(`^(?:` + inner + `)$`)
		if err != nil {
			return pattern{}, err
		}
		return pattern{raw: inner, regex: re}, nil
	}
	return pattern{raw: p}, nil
}

func stripRawMarker(p string) (string, bool) {
	if len(p) >= 3 && strings.HasPrefix(p, `r"`) && strings.HasSuffix(p, `"`) {
		return p[2 : len(p)-1], true
	}
	if len(p) >= 3 && strings.HasPrefix(p, "r'") && strings.HasSuffix(p, "'") {
		return p[2 : len(p)-1], true
	}
	return "", false
}

// Allows applies the decision order from spec.md §4.2:
//  1. any deny pattern matches -> deny
//  2. no allow patterns configured -> allow
//  3. any allow pattern matches -> allow
//  4. otherwise -> deny
//
// relPath must already be repo-relative with "/" separators (normalized,
// non-escaping) — callers resolve containment via git.RepoRef.ResolvePath
// before reaching this layer.
func (a *Authorizer) Allows(relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	for _, d := range a.denied {
		if matches(d, relPath) {
			return false
		}
	}
	if len(a.allowed) == 0 {
		return true
	}
	for _, al := range a.allowed {
		if matches(al, relPath) {
			return true
		}
	}
	return false
}

// Check is Allows wrapped into an *fserrors.AuthError on denial, with
// human-readable summaries of the active patterns.
func (a *Authorizer) Check(relPath string) error {
	if a.Allows(relPath) {
		return nil
	}
	return &fserrors.AuthError{
		Path:    relPath,
		Allowed: "allowed: " + a.AllowedSummary(),
		Denied:  "denied: " + a.DeniedSummary(),
	}
}

// AllowedSummary renders the active allow patterns for error messages.
func (a *Authorizer) AllowedSummary() string { return summarize(a.allowed) }

// DeniedSummary renders the active deny patterns for error messages.
func (a *Authorizer) DeniedSummary() string { return summarize(a.denied) }

func summarize(patterns []pattern) string {
	if len(patterns) == 0 {
		return "(none)"
	}
	parts := make([]string, len(patterns))
	for i, p := range patterns {
		parts[i] = p.raw
	}
	return strings.Join(parts, ", ")
}

func matches(p pattern, relPath string) bool {
	if p.regex != nil {
		return p.regex.MatchString(relPath)
	}
	return matchGlob(p.raw, relPath)
}
