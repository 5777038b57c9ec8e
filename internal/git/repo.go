package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/RevCBH/fsgit/internal/fserrors"
)

// RepoRef identifies a repository by an absolute filesystem path and an
// optional branch hint (spec.md §3). Construction validates every
// invariant; a zero-value RepoRef is never handed to a caller.
type RepoRef struct {
	Root   string // canonical, absolute
	Branch string // optional hint; empty means "current branch"
}

var safeDirRegistered sync.Map // canonical root -> struct{}, idempotence cache

// NewRepoRef validates root (C1) and returns a usable RepoRef.
//
// Contract (spec.md §4.1): fail with ConfigError if root is not an existing
// directory; fail with ConfigError if root is not inside a git working
// tree; otherwise record root as a git safe.directory (idempotent,
// global-scope) and succeed.
func NewRepoRef(root string, branch string) (RepoRef, error) {
	if root == "" {
		return RepoRef{}, &fserrors.ConfigError{Path: root, Err: fmt.Errorf("root is empty")}
	}
	if !filepath.IsAbs(root) {
		abs, err := filepath.Abs(root)
		if err != nil {
			return RepoRef{}, &fserrors.ConfigError{Path: root, Err: err}
		}
		root = abs
	}

	info, err := os.Stat(root)
	if err != nil {
		return RepoRef{}, &fserrors.ConfigError{Path: root, Err: fmt.Errorf("not a directory: %w", err)}
	}
	if !info.IsDir() {
		return RepoRef{}, &fserrors.ConfigError{Path: root, Err: fmt.Errorf("not a directory")}
	}

	canonical, err := filepath.EvalSymlinks(root)
	if err != nil {
		return RepoRef{}, &fserrors.ConfigError{Path: root, Err: err}
	}
	canonical = filepath.Clean(canonical)

	ctx := context.Background()
	toplevel, err := gitExec(ctx, canonical, "rev-parse", "--show-toplevel")
	if err != nil {
		return RepoRef{}, &fserrors.ConfigError{Path: canonical, Err: fmt.Errorf("not a git working tree: %w", err)}
	}
	toplevelClean := filepath.Clean(strings.TrimSpace(toplevel))
	if toplevelClean != canonical {
		// Allow the ref to name a subdirectory of the working tree; spec.md
		// requires Root to be a working tree, not necessarily its toplevel,
		// so rebase onto the toplevel to keep all subsequent git calls valid.
		canonical = toplevelClean
	}

	if err := registerSafeDirectory(ctx, canonical); err != nil {
		return RepoRef{}, &fserrors.ConfigError{Path: canonical, Err: err}
	}

	return RepoRef{Root: canonical, Branch: branch}, nil
}

// registerSafeDirectory marks root as a trusted git safe.directory in the
// global git config. Idempotent both in-process (cached) and across
// processes (git itself dedupes identical safe.directory entries).
func registerSafeDirectory(ctx context.Context, root string) error {
	if _, ok := safeDirRegistered.Load(root); ok {
		return nil
	}
	if _, err := gitExec(ctx, root, "config", "--global", "--add", "safe.directory", root); err != nil {
		return err
	}
	safeDirRegistered.Store(root, struct{}{})
	return nil
}

// CurrentBranch returns the symbolic short name of HEAD in this repo.
func (r RepoRef) CurrentBranch(ctx context.Context) (string, error) {
	return CurrentBranch(ctx, r.Root)
}

// ResolvePath joins a repo-relative path onto Root and enforces
// containment (spec.md §4.2(a), invariant 3 in §8): the result must lie
// under Root once both sides are cleaned, rejecting any ".." escape.
func (r RepoRef) ResolvePath(relPath string) (string, error) {
	if filepath.IsAbs(relPath) {
		return "", &fserrors.AuthError{Path: relPath, Allowed: "repo-relative paths only", Denied: "absolute paths are rejected"}
	}
	clean := filepath.Clean(relPath)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", &fserrors.AuthError{Path: relPath, Allowed: "paths under the repo root", Denied: "path escapes repo root"}
	}
	abs := filepath.Join(r.Root, clean)
	rootWithSep := r.Root + string(filepath.Separator)
	if abs != r.Root && !strings.HasPrefix(abs, rootWithSep) {
		return "", &fserrors.AuthError{Path: relPath, Allowed: "paths under the repo root", Denied: "path escapes repo root"}
	}
	return abs, nil
}
