package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

// mustCommit writes name=content into repoDir, stages it, and commits it
// with the given subject, failing the test on any error.
func mustCommit(t *testing.T, repoDir, name, content, subject string) string {
	t.Helper()
	ctx := context.Background()
	if err := os.WriteFile(filepath.Join(repoDir, name), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	if err := StagePath(ctx, repoDir, name); err != nil {
		t.Fatalf("stage %s: %v", name, err)
	}
	if err := Commit(ctx, repoDir, CommitOptions{Message: subject}); err != nil {
		t.Fatalf("commit %q: %v", subject, err)
	}
	sha, err := HeadSHA(ctx, repoDir)
	if err != nil {
		t.Fatalf("head sha: %v", err)
	}
	return sha
}
