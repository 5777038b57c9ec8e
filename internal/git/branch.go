package git

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"
)

// CreateBranch creates branchName forked from fromRef without checking it out.
func CreateBranch(ctx context.Context, repoRoot, branchName, fromRef string) error {
	_, err := gitExec(ctx, repoRoot, "branch", branchName, fromRef)
	return err
}

// CheckoutBranch switches HEAD to branchName.
func CheckoutBranch(ctx context.Context, repoRoot, branchName string) error {
	_, err := gitExec(ctx, repoRoot, "checkout", branchName)
	return err
}

// DeleteBranch removes a local branch. Force uses -D instead of -d.
func DeleteBranch(ctx context.Context, repoRoot, branchName string, force bool) error {
	flag := "-d"
	if force {
		flag = "-D"
	}
	_, err := gitExec(ctx, repoRoot, "branch", flag, branchName)
	return err
}

// BranchExists reports whether branchName exists locally.
func BranchExists(ctx context.Context, repoRoot, branchName string) (bool, error) {
	_, err := gitExec(ctx, repoRoot, "rev-parse", "--verify", "--quiet", "refs/heads/"+branchName)
	if err != nil {
		return false, nil
	}
	return true, nil
}

// CurrentBranch returns the symbolic short name of HEAD.
func CurrentBranch(ctx context.Context, repoRoot string) (string, error) {
	out, err := gitExec(ctx, repoRoot, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// ValidateBranchName checks if a branch name is valid for git.
func ValidateBranchName(name string) error {
	if name == "" {
		return fmt.Errorf("branch name cannot be empty")
	}
	if strings.HasPrefix(name, "refs/") {
		return fmt.Errorf("branch name cannot start with 'refs/'")
	}
	if strings.Contains(name, "..") {
		return fmt.Errorf("branch name cannot contain '..'")
	}
	if strings.Contains(name, " ") {
		return fmt.Errorf("branch name cannot contain spaces")
	}
	if strings.HasPrefix(name, "-") {
		return fmt.Errorf("branch name cannot start with '-'")
	}
	if strings.HasSuffix(name, ".") {
		return fmt.Errorf("branch name cannot end with '.'")
	}
	if strings.HasSuffix(name, ".lock") {
		return fmt.Errorf("branch name cannot end with '.lock'")
	}
	return nil
}

// RandomHex returns n random lowercase hex characters, used for StagedSession
// ids (spec.md: "mcp/{ticket|session}-{8-hex}").
func RandomHex(n int) string {
	buf := make([]byte, (n+1)/2)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing is effectively unrecoverable; fall back to a
		// fixed pattern rather than panic so session creation never aborts
		// the caller's transaction on an entropy-starved host.
		for i := range buf {
			buf[i] = byte(i)
		}
	}
	return fmt.Sprintf("%x", buf)[:n]
}
