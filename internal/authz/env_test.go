package authz

import "testing"

func TestFromEnv(t *testing.T) {
	t.Setenv("FS_GIT_ALLOWED_PATHS", " src/**, *.md ")
	t.Setenv("FS_GIT_DENIED_PATHS", "!*.lock")

	a, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if !a.Allows("src/main.go") {
		t.Error("expected src/main.go allowed from env pattern")
	}
	if !a.Allows("README.md") {
		t.Error("expected README.md allowed from trimmed env pattern")
	}
	if a.Allows("yarn.lock") {
		t.Error("expected yarn.lock denied from env pattern")
	}
}

func TestFromEnvEmpty(t *testing.T) {
	t.Setenv("FS_GIT_ALLOWED_PATHS", "")
	t.Setenv("FS_GIT_DENIED_PATHS", "")

	a, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if !a.Allows("anything.go") {
		t.Error("expected default-allow with empty env")
	}
}
