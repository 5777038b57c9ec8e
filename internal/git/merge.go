package git

import (
	"context"
	"strings"

	"github.com/RevCBH/fsgit/internal/fserrors"
)

// MergeStrategy is one of the four FinalizeOptions.strategy values spec.md
// §3/§4.5 defines for finalize_staged.
type MergeStrategy string

const (
	StrategyMergeFF    MergeStrategy = "merge-ff"
	StrategyMergeNoFF  MergeStrategy = "merge-no-ff"
	StrategyRebaseMerge MergeStrategy = "rebase-merge"
	StrategySquashMerge MergeStrategy = "squash-merge"
)

// Finalize checks out baseBranch and merges workBranch onto it using the
// given strategy, following spec.md §4.5. It returns the resulting HEAD SHA
// on baseBranch. squashSubject is only used by StrategySquashMerge.
func Finalize(ctx context.Context, repoRoot string, baseBranch, workBranch string, strategy MergeStrategy, squashSubject string) (string, error) {
	if err := CheckoutBranch(ctx, repoRoot, baseBranch); err != nil {
		return "", err
	}

	switch strategy {
	case StrategyMergeFF:
		if _, err := gitExec(ctx, repoRoot, "merge", "--ff-only", workBranch); err != nil {
			return "", &fserrors.MergeError{Strategy: string(strategy), Reason: notFastForwardReason(err)}
		}

	case StrategyMergeNoFF:
		if _, err := gitExec(ctx, repoRoot, "merge", "--no-ff", "-m", mergeNoFFSubject(workBranch), workBranch); err != nil {
			return "", &fserrors.MergeError{Strategy: string(strategy), Reason: err.Error()}
		}

	case StrategyRebaseMerge:
		// Rebase workBranch onto baseBranch, then fast-forward baseBranch to it.
		if err := CheckoutBranch(ctx, repoRoot, workBranch); err != nil {
			return "", err
		}
		if _, err := gitExec(ctx, repoRoot, "rebase", baseBranch); err != nil {
			_, _ = gitExec(ctx, repoRoot, "rebase", "--abort")
			return "", &fserrors.MergeError{Strategy: string(strategy), Reason: err.Error()}
		}
		if err := CheckoutBranch(ctx, repoRoot, baseBranch); err != nil {
			return "", err
		}
		if _, err := gitExec(ctx, repoRoot, "merge", "--ff-only", workBranch); err != nil {
			return "", &fserrors.MergeError{Strategy: string(strategy), Reason: notFastForwardReason(err)}
		}

	case StrategySquashMerge:
		if _, err := gitExec(ctx, repoRoot, "merge", "--squash", workBranch); err != nil {
			return "", &fserrors.MergeError{Strategy: string(strategy), Reason: err.Error()}
		}
		if err := Commit(ctx, repoRoot, CommitOptions{Message: squashSubject}); err != nil {
			return "", &fserrors.MergeError{Strategy: string(strategy), Reason: err.Error()}
		}

	default:
		return "", &fserrors.MergeError{Strategy: string(strategy), Reason: "unknown finalize strategy"}
	}

	return HeadSHA(ctx, repoRoot)
}

func notFastForwardReason(err error) string {
	if strings.Contains(err.Error(), "not possible to fast-forward") || strings.Contains(err.Error(), "Not possible") {
		return "not fast-forwardable"
	}
	return err.Error()
}

func mergeNoFFSubject(workBranch string) string {
	return "Merge branch '" + workBranch + "'"
}
