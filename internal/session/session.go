package session

import (
	"context"
	"time"

	"github.com/RevCBH/fsgit/internal/git"
	"github.com/RevCBH/fsgit/internal/pipeline"
)

// Manager runs the staged-session state machine on top of a Store.
type Manager struct {
	store *Store
}

// NewManager builds a Manager backed by store.
func NewManager(store *Store) *Manager {
	return &Manager{store: store}
}

// Preview is the result of StagedPreview: the textual diff between
// baseBranch and workBranch, plus the one-line subjects of the commits in
// between.
type Preview struct {
	Diff    string
	Commits []string
}

// FinalizeOptions configures finalize_staged. DeleteWorkBranch defaults to
// true at the dispatcher layer (spec.md §4.5); it is a plain bool here since
// this package has no knowledge of "unset vs explicitly false".
type FinalizeOptions struct {
	Strategy         git.MergeStrategy
	DeleteWorkBranch bool
	SquashSubject    string
}

// FinalizeResult is the outcome of a successful finalize_staged.
type FinalizeResult struct {
	MergedSHA string
}

// StartStaged creates a fresh workBranch from the repo's current HEAD and
// persists the session record (spec.md §4.5 start_staged).
func (m *Manager) StartStaged(ctx context.Context, repo git.RepoRef, ticket string) (Record, error) {
	unlock := git.LockRepo(repo.Root)
	defer unlock()

	baseBranch, err := repo.CurrentBranch(ctx)
	if err != nil {
		return Record{}, err
	}

	id := NewSessionID(ticket)
	workBranch := WorkBranchName(id)

	if err := git.CreateBranch(ctx, repo.Root, workBranch, baseBranch); err != nil {
		return Record{}, err
	}
	if err := git.CheckoutBranch(ctx, repo.Root, workBranch); err != nil {
		return Record{}, err
	}

	rec := Record{
		ID:         id,
		RepoRoot:   repo.Root,
		BaseBranch: baseBranch,
		WorkBranch: workBranch,
		State:      StateActive,
		StartedAt:  timeNowUTC(),
	}
	if err := m.store.Save(rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// timeNowUTC is split out so a test build could substitute a fixed clock;
// production always uses the real wall clock.
var timeNowUTC = func() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// StagedWrite loads the session, ensures HEAD is on its workBranch, and
// delegates to the commit pipeline (C4) under that branch. The previously
// checked-out branch is not restored afterwards.
func (m *Manager) StagedWrite(ctx context.Context, sessionID string, req pipeline.WriteRequest) (pipeline.WriteResult, error) {
	rec, err := m.store.Load(sessionID)
	if err != nil {
		return pipeline.WriteResult{}, err
	}

	// Checkout is serialized on its own: pipeline.WriteAndCommit acquires
	// the same repo lock for the write+commit portion, and the mutex isn't
	// reentrant, so the lock here must be released before calling it.
	unlock := git.LockRepo(rec.RepoRoot)
	current, err := git.CurrentBranch(ctx, rec.RepoRoot)
	if err != nil {
		unlock()
		return pipeline.WriteResult{}, err
	}
	if current != rec.WorkBranch {
		if err := git.CheckoutBranch(ctx, rec.RepoRoot, rec.WorkBranch); err != nil {
			unlock()
			return pipeline.WriteResult{}, err
		}
	}
	unlock()

	req.Repo = git.RepoRef{Root: rec.RepoRoot, Branch: rec.WorkBranch}
	return pipeline.WriteAndCommit(ctx, req)
}

// StagedPreview reads the diff and log between the session's base and work
// branches.
func (m *Manager) StagedPreview(ctx context.Context, sessionID string) (Preview, error) {
	rec, err := m.store.Load(sessionID)
	if err != nil {
		return Preview{}, err
	}

	unlock := git.LockRepo(rec.RepoRoot)
	defer unlock()

	diff, err := git.Diff(ctx, rec.RepoRoot, rec.BaseBranch, rec.WorkBranch)
	if err != nil {
		return Preview{}, err
	}
	records, err := git.Log(ctx, rec.RepoRoot, git.LogOpts{Range: rec.BaseBranch + ".." + rec.WorkBranch})
	if err != nil {
		return Preview{}, err
	}

	commits := make([]string, len(records))
	for i, r := range records {
		commits[i] = r.Subject
	}
	return Preview{Diff: diff, Commits: commits}, nil
}

// FinalizeStaged merges the session's workBranch onto baseBranch using the
// requested strategy, then retires the session.
func (m *Manager) FinalizeStaged(ctx context.Context, sessionID string, opts FinalizeOptions) (FinalizeResult, error) {
	rec, err := m.store.Load(sessionID)
	if err != nil {
		return FinalizeResult{}, err
	}

	unlock := git.LockRepo(rec.RepoRoot)
	defer unlock()

	sha, err := git.Finalize(ctx, rec.RepoRoot, rec.BaseBranch, rec.WorkBranch, opts.Strategy, opts.SquashSubject)
	if err != nil {
		return FinalizeResult{}, err
	}

	if opts.DeleteWorkBranch {
		_ = git.DeleteBranch(ctx, rec.RepoRoot, rec.WorkBranch, true)
	}

	if err := m.store.Remove(rec.ID); err != nil {
		return FinalizeResult{}, err
	}
	return FinalizeResult{MergedSHA: sha}, nil
}

// AbortStaged checks out baseBranch, force-deletes workBranch, and removes
// the session record. Aborting an unknown id is a no-op that still
// succeeds (spec.md §8 invariant 6).
func (m *Manager) AbortStaged(ctx context.Context, sessionID string) error {
	rec, err := m.store.Load(sessionID)
	if err != nil {
		return nil // unknown id: idempotent no-op
	}

	unlock := git.LockRepo(rec.RepoRoot)
	defer unlock()

	if err := git.CheckoutBranch(ctx, rec.RepoRoot, rec.BaseBranch); err != nil {
		return err
	}
	if err := git.DeleteBranch(ctx, rec.RepoRoot, rec.WorkBranch, true); err != nil {
		return err
	}
	return m.store.Remove(rec.ID)
}
