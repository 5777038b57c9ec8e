// Package pipeline implements the commit pipeline (C4, spec.md §4.4): the
// atomic write_and_commit operation and its read-side counterpart,
// read_with_history.
package pipeline

import (
	"context"
	"os"

	"github.com/RevCBH/fsgit/internal/authz"
	"github.com/RevCBH/fsgit/internal/fserrors"
	"github.com/RevCBH/fsgit/internal/git"
	"github.com/RevCBH/fsgit/internal/template"
)

// WriteRequest is the input to write_and_commit.
type WriteRequest struct {
	Repo    git.RepoRef
	Path    string // repo-relative
	Content string

	Template template.CommitTemplate
	Op       string
	Summary  string
	Reason   string
	Ticket   string

	AllowCreate    bool // default true
	AllowOverwrite bool // default true

	Authorizer *authz.Authorizer // optional

	StrictUniqueness bool // when true, a colliding subject fails instead of being suffixed
}

// WriteResult is the outcome of a successful write_and_commit.
type WriteResult struct {
	Path      string
	CommitSHA string
	Branch    string
	Message   string // final rendered subject, after any collision suffix
}

// WriteAndCommit runs the full precondition chain from spec.md §4.4, writes
// the file, and produces exactly one commit. On any failure after the file
// write it does not attempt rollback — recovery is the caller's
// responsibility (spec.md §7).
func WriteAndCommit(ctx context.Context, req WriteRequest) (WriteResult, error) {
	abs, err := req.Repo.ResolvePath(req.Path)
	if err != nil {
		return WriteResult{}, err
	}

	if req.Authorizer != nil {
		if err := req.Authorizer.Check(req.Path); err != nil {
			return WriteResult{}, err
		}
	}

	unlock := git.LockRepo(req.Repo.Root)
	defer unlock()

	if !req.AllowOverwrite {
		dirty, err := git.HasUncommittedChanges(ctx, req.Repo.Root)
		if err != nil {
			return WriteResult{}, err
		}
		if dirty {
			status, _ := git.StatusPorcelain(ctx, req.Repo.Root)
			return WriteResult{}, &fserrors.DirtyTreeError{RepoRoot: req.Repo.Root, Status: status}
		}
	}

	vars := template.Variables{
		"op":      req.Op,
		"path":    req.Path,
		"summary": req.Summary,
		"reason":  req.Reason,
		"ticket":  req.Ticket,
	}

	if err := template.LintErr(req.Template, vars); err != nil {
		return WriteResult{}, err
	}

	message, err := template.Render(req.Template, vars)
	if err != nil {
		return WriteResult{}, err
	}
	subject := firstLine(message)

	window := req.Template.EnforceUniqueWindow
	if window > 0 {
		recent, err := git.RecentSubjects(ctx, req.Repo.Root, window)
		if err != nil {
			return WriteResult{}, err
		}
		if !template.CheckUniqueness(subject, recent) {
			if req.StrictUniqueness {
				return WriteResult{}, &fserrors.UniquenessError{Subject: subject, Window: window}
			}
			resolved := template.ResolveCollision(subject)
			message = resolved + message[len(subject):]
			subject = resolved
		}
	}

	if err := applyWrite(abs, req.Content, req.AllowCreate, req.AllowOverwrite, req.Path); err != nil {
		return WriteResult{}, err
	}

	if err := git.StagePath(ctx, req.Repo.Root, req.Path); err != nil {
		return WriteResult{}, err
	}
	if err := git.Commit(ctx, req.Repo.Root, git.CommitOptions{Message: message, AllowEmpty: true}); err != nil {
		return WriteResult{}, err
	}

	sha, err := git.HeadSHA(ctx, req.Repo.Root)
	if err != nil {
		return WriteResult{}, err
	}
	branch, err := req.Repo.CurrentBranch(ctx)
	if err != nil {
		return WriteResult{}, err
	}

	return WriteResult{Path: req.Path, CommitSHA: sha, Branch: branch, Message: subject}, nil
}

// applyWrite writes content to abs honoring the create/overwrite policy.
func applyWrite(abs, content string, allowCreate, allowOverwrite bool, relPath string) error {
	_, statErr := os.Stat(abs)
	exists := statErr == nil
	if !exists && !allowCreate {
		return &fserrors.NotFoundError{Path: relPath}
	}
	if exists && !allowOverwrite {
		return &fserrors.ConflictError{Path: relPath}
	}
	return os.WriteFile(abs, []byte(content), 0o644)
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}

// ReadResult is the outcome of ReadWithHistory.
type ReadResult struct {
	Path    string
	Content *string // nil if the file does not exist
	History []git.CommitRecord
}

// ReadWithHistory returns the current content of path (nil if absent, not an
// error) plus its last N commit touches (spec.md §4.4 "Read side").
func ReadWithHistory(ctx context.Context, repo git.RepoRef, relPath string, historyLimit int) (ReadResult, error) {
	abs, err := repo.ResolvePath(relPath)
	if err != nil {
		return ReadResult{}, err
	}

	var content *string
	data, readErr := os.ReadFile(abs)
	if readErr == nil {
		s := string(data)
		content = &s
	} else if !os.IsNotExist(readErr) {
		return ReadResult{}, readErr
	}

	history, err := git.Log(ctx, repo.Root, git.LogOpts{MaxCount: historyLimit, Path: relPath})
	if err != nil {
		return ReadResult{}, err
	}

	return ReadResult{Path: relPath, Content: content, History: history}, nil
}
