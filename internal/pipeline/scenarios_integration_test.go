//go:build integration
// +build integration

package pipeline

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/RevCBH/fsgit/internal/fserrors"
	"github.com/RevCBH/fsgit/internal/git"
	"github.com/RevCBH/fsgit/internal/template"
)

func setupTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}
	run("init")
	run("config", "user.name", "Test User")
	run("config", "user.email", "test@example.com")
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("hello\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	run("add", "README.md")
	run("commit", "-m", "initial commit")
	return dir
}

func baseRequest(t *testing.T, root string) WriteRequest {
	t.Helper()
	repo, err := git.NewRepoRef(root, "")
	if err != nil {
		t.Fatalf("NewRepoRef: %v", err)
	}
	return WriteRequest{
		Repo:           repo,
		Path:           "hello.txt",
		Content:        "Hello\n",
		Template:       template.CommitTemplate{Subject: "[{op}] {path} – {summary}", EnforceUniqueWindow: 100},
		Op:             "add",
		Summary:        "create greeting",
		AllowCreate:    true,
		AllowOverwrite: true,
	}
}

func TestWriteAndCommit_DirectCommit(t *testing.T) {
	root := setupTestRepo(t)
	req := baseRequest(t, root)

	result, err := WriteAndCommit(context.Background(), req)
	if err != nil {
		t.Fatalf("WriteAndCommit: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(root, "hello.txt"))
	if err != nil {
		t.Fatalf("reading written file: %v", err)
	}
	if string(content) != "Hello\n" {
		t.Errorf("file content = %q, want %q", content, "Hello\n")
	}

	wantSubject := "[add] hello.txt – create greeting"
	if result.Message != wantSubject {
		t.Errorf("Message = %q, want %q", result.Message, wantSubject)
	}

	head, err := git.HeadSHA(context.Background(), root)
	if err != nil {
		t.Fatalf("HeadSHA: %v", err)
	}
	if result.CommitSHA != head {
		t.Errorf("CommitSHA = %q, want %q", result.CommitSHA, head)
	}
}

func TestWriteAndCommit_UniquenessCollision(t *testing.T) {
	root := setupTestRepo(t)
	req := baseRequest(t, root)

	if _, err := WriteAndCommit(context.Background(), req); err != nil {
		t.Fatalf("first WriteAndCommit: %v", err)
	}

	req2 := baseRequest(t, root)
	req2.StrictUniqueness = false
	result, err := WriteAndCommit(context.Background(), req2)
	if err != nil {
		t.Fatalf("second WriteAndCommit: %v", err)
	}

	wantSubject := "[add] hello.txt – create greeting (#2)"
	if result.Message != wantSubject {
		t.Errorf("Message = %q, want %q", result.Message, wantSubject)
	}
}

func TestWriteAndCommit_UniquenessStrictFails(t *testing.T) {
	root := setupTestRepo(t)
	req := baseRequest(t, root)

	if _, err := WriteAndCommit(context.Background(), req); err != nil {
		t.Fatalf("first WriteAndCommit: %v", err)
	}

	req2 := baseRequest(t, root)
	req2.StrictUniqueness = true
	_, err := WriteAndCommit(context.Background(), req2)
	if err == nil {
		t.Fatal("expected UniquenessError on strict collision")
	}
	if _, ok := err.(*fserrors.UniquenessError); !ok {
		t.Errorf("error type = %T, want *fserrors.UniquenessError", err)
	}
}

func TestWriteAndCommit_PathTraversalBlocked(t *testing.T) {
	root := setupTestRepo(t)
	req := baseRequest(t, root)
	req.Path = "../outside.txt"

	_, err := WriteAndCommit(context.Background(), req)
	if err == nil {
		t.Fatal("expected AuthError for path traversal")
	}
	if _, ok := err.(*fserrors.AuthError); !ok {
		t.Errorf("error type = %T, want *fserrors.AuthError", err)
	}
	if _, statErr := os.Stat(filepath.Join(filepath.Dir(root), "outside.txt")); statErr == nil {
		t.Error("traversal path should not have been created")
	}
}

func TestWriteAndCommit_NotFoundWhenCreateDisallowed(t *testing.T) {
	root := setupTestRepo(t)
	req := baseRequest(t, root)
	req.AllowCreate = false

	_, err := WriteAndCommit(context.Background(), req)
	if _, ok := err.(*fserrors.NotFoundError); !ok {
		t.Errorf("error type = %T, want *fserrors.NotFoundError", err)
	}
}

func TestWriteAndCommit_ConflictWhenOverwriteDisallowed(t *testing.T) {
	root := setupTestRepo(t)
	req := baseRequest(t, root)
	req.Path = "README.md"
	req.AllowOverwrite = false
	req.Content = "changed\n"

	_, err := WriteAndCommit(context.Background(), req)
	if _, ok := err.(*fserrors.ConflictError); !ok {
		t.Errorf("error type = %T, want *fserrors.ConflictError", err)
	}
}

func TestReadWithHistory(t *testing.T) {
	root := setupTestRepo(t)
	repo, err := git.NewRepoRef(root, "")
	if err != nil {
		t.Fatalf("NewRepoRef: %v", err)
	}

	result, err := ReadWithHistory(context.Background(), repo, "README.md", 10)
	if err != nil {
		t.Fatalf("ReadWithHistory: %v", err)
	}
	if result.Content == nil || *result.Content != "hello\n" {
		t.Errorf("Content = %v, want %q", result.Content, "hello\n")
	}
	if len(result.History) != 1 {
		t.Fatalf("History = %v, want 1 entry", result.History)
	}

	missing, err := ReadWithHistory(context.Background(), repo, "does-not-exist.txt", 10)
	if err != nil {
		t.Fatalf("ReadWithHistory missing: %v", err)
	}
	if missing.Content != nil {
		t.Errorf("Content = %v, want nil for missing file", *missing.Content)
	}
}
