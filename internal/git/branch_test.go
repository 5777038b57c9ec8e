package git

import (
	"context"
	"testing"
)

func TestCreateAndCheckoutBranch(t *testing.T) {
	repoDir := setupTestRepo(t)
	ctx := context.Background()
	mustCommit(t, repoDir, "seed.txt", "seed", "seed commit")

	if err := CreateBranch(ctx, repoDir, "feature", "HEAD"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	exists, err := BranchExists(ctx, repoDir, "feature")
	if err != nil {
		t.Fatalf("BranchExists: %v", err)
	}
	if !exists {
		t.Fatal("expected feature branch to exist")
	}

	if err := CheckoutBranch(ctx, repoDir, "feature"); err != nil {
		t.Fatalf("CheckoutBranch: %v", err)
	}
	current, err := CurrentBranch(ctx, repoDir)
	if err != nil {
		t.Fatalf("CurrentBranch: %v", err)
	}
	if current != "feature" {
		t.Errorf("expected current branch feature, got %q", current)
	}
}

func TestBranchExistsFalseForMissingBranch(t *testing.T) {
	repoDir := setupTestRepo(t)
	ctx := context.Background()
	mustCommit(t, repoDir, "seed.txt", "seed", "seed commit")

	exists, err := BranchExists(ctx, repoDir, "does-not-exist")
	if err != nil {
		t.Fatalf("BranchExists: %v", err)
	}
	if exists {
		t.Error("expected does-not-exist branch to be reported absent")
	}
}

func TestDeleteBranch(t *testing.T) {
	repoDir := setupTestRepo(t)
	ctx := context.Background()
	mustCommit(t, repoDir, "seed.txt", "seed", "seed commit")

	if err := CreateBranch(ctx, repoDir, "scratch", "HEAD"); err != nil {
		t.Fatalf("CreateBranch: %v", err)
	}
	if err := DeleteBranch(ctx, repoDir, "scratch", false); err != nil {
		t.Fatalf("DeleteBranch: %v", err)
	}
	exists, err := BranchExists(ctx, repoDir, "scratch")
	if err != nil {
		t.Fatalf("BranchExists: %v", err)
	}
	if exists {
		t.Error("expected scratch branch to be deleted")
	}
}

func TestValidateBranchName(t *testing.T) {
	cases := []struct {
		name    string
		wantErr bool
	}{
		{"feature/add-thing", false},
		{"", true},
		{"refs/heads/x", true},
		{"foo..bar", true},
		{"has space", true},
		{"-leading-dash", true},
		{"trailing.", true},
		{"name.lock", true},
	}
	for _, tc := range cases {
		err := ValidateBranchName(tc.name)
		if (err != nil) != tc.wantErr {
			t.Errorf("ValidateBranchName(%q) error = %v, wantErr %v", tc.name, err, tc.wantErr)
		}
	}
}

func TestRandomHex(t *testing.T) {
	h := RandomHex(8)
	if len(h) != 8 {
		t.Fatalf("expected 8 hex characters, got %d (%q)", len(h), h)
	}
	h2 := RandomHex(8)
	if h == h2 {
		t.Errorf("expected two RandomHex calls to differ, both were %q", h)
	}
}
