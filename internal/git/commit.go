package git

import (
	"context"
	"strings"
)

// StageAll stages all changes in a repo (git add -A).
func StageAll(ctx context.Context, repoRoot string) error {
	_, err := gitExec(ctx, repoRoot, "add", "-A")
	return err
}

// StagePath stages a single repo-relative path (git add -- <path>).
func StagePath(ctx context.Context, repoRoot, path string) error {
	_, err := gitExec(ctx, repoRoot, "add", "--", path)
	return err
}

// CommitOptions configures a commit operation.
type CommitOptions struct {
	Message    string
	NoVerify   bool
	AllowEmpty bool
}

// Commit commits the currently staged changes.
func Commit(ctx context.Context, repoRoot string, opts CommitOptions) error {
	args := []string{"commit", "-m", opts.Message}
	if opts.NoVerify {
		args = append(args, "--no-verify")
	}
	if opts.AllowEmpty {
		args = append(args, "--allow-empty")
	}
	_, err := gitExec(ctx, repoRoot, args...)
	return err
}

// HasUncommittedChanges checks if there are uncommitted changes (staged,
// modified, or untracked) anywhere in the working tree.
func HasUncommittedChanges(ctx context.Context, repoRoot string) (bool, error) {
	output, err := gitExec(ctx, repoRoot, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(output) != "", nil
}

// StatusPorcelain returns the raw `git status --porcelain` output, used both
// for the dirty-tree guard and for DirtyTreeError's diagnostic payload.
func StatusPorcelain(ctx context.Context, repoRoot string) (string, error) {
	return gitExec(ctx, repoRoot, "status", "--porcelain")
}

// HeadSHA returns the full HEAD commit hash.
func HeadSHA(ctx context.Context, repoRoot string) (string, error) {
	out, err := gitExec(ctx, repoRoot, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// RevParse resolves any ref to a full SHA.
func RevParse(ctx context.Context, repoRoot, ref string) (string, error) {
	out, err := gitExec(ctx, repoRoot, "rev-parse", ref)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// CheckoutPaths discards working-tree changes to the given repo-relative
// paths (git checkout -- <paths>...). This is the recovery path spec.md §7
// documents for callers after a failed mutation — the pipeline itself never
// calls this automatically.
func CheckoutPaths(ctx context.Context, repoRoot string, paths ...string) error {
	args := append([]string{"checkout", "--"}, paths...)
	_, err := gitExec(ctx, repoRoot, args...)
	return err
}
