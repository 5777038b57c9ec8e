package authz

import "testing"

func TestAllowsNoPatternsAllowsEverything(t *testing.T) {
	a, err := New(nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, p := range []string{"a.txt", "src/main.go", "deep/nested/path/file.md"} {
		if !a.Allows(p) {
			t.Errorf("Allows(%q) = false, want true with no configured patterns", p)
		}
	}
}

func TestAllowsGlobPatterns(t *testing.T) {
	a, err := New([]string{"src/**", "docs/**/*.md", "*.txt"}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cases := map[string]bool{
		"src/main.go":       true,
		"src/pkg/lib.go":    true,
		"docs/readme.md":    true,
		"docs/sub/guide.md": true,
		"config.txt":        true,
		"nested/config.txt": true, // single-segment pattern matches basename at any depth
		"other/file.go":     false,
		"docs/readme.rst":   false,
	}
	for p, want := range cases {
		if got := a.Allows(p); got != want {
			t.Errorf("Allows(%q) = %v, want %v", p, got, want)
		}
	}
}

func TestDeniedWinsOverAllowed(t *testing.T) {
	a, err := New([]string{"**"}, []string{"!**/node_modules/**", "!*.lock"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if a.Allows("node_modules/pkg/index.js") {
		t.Error("expected node_modules path to be denied")
	}
	if a.Allows("yarn.lock") {
		t.Error("expected *.lock basename to be denied")
	}
	if !a.Allows("src/main.go") {
		t.Error("expected unrelated path to remain allowed")
	}
}

func TestRegexPatternMarker(t *testing.T) {
	a, err := New([]string{`r"^src/.*\.go$"`}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !a.Allows("src/main.go") {
		t.Error("expected regex pattern to allow src/main.go")
	}
	if a.Allows("docs/readme.md") {
		t.Error("expected regex pattern to reject docs/readme.md")
	}
}

func TestRegexSingleQuoteMarker(t *testing.T) {
	a, err := New(nil, []string{`r'.*\.secret$'`})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if a.Allows("keys/a.secret") {
		t.Error("expected regex deny pattern to reject .secret files")
	}
	if !a.Allows("keys/a.txt") {
		t.Error("expected unrelated file to remain allowed")
	}
}

func TestRegexPatternRequiresFullMatch(t *testing.T) {
	// An unanchored pattern must still match the whole relative path, not
	// just a substring of it (spec.md §4.2's re.fullmatch-equivalent
	// semantics).
	a, err := New(nil, []string{`r"secret"`})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if a.Allows("secret") {
		t.Error("expected exact match 'secret' path to be denied")
	}
	if !a.Allows("keys/secret") {
		t.Error("expected path merely containing 'secret' as a substring to remain allowed")
	}
}

func TestInvalidRegexReturnsError(t *testing.T) {
	if _, err := New([]string{`r"(unclosed"`}, nil); err == nil {
		t.Error("expected error for invalid regex pattern")
	}
}

func TestCheckReturnsAuthError(t *testing.T) {
	a, err := New([]string{"src/**"}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := a.Check("src/main.go"); err != nil {
		t.Errorf("Check(allowed) = %v, want nil", err)
	}
	if err := a.Check("other/file.go"); err == nil {
		t.Error("Check(denied) = nil, want AuthError")
	}
}

func TestSummaries(t *testing.T) {
	a, err := New([]string{"src/**"}, []string{"!*.lock"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if a.AllowedSummary() != "src/**" {
		t.Errorf("AllowedSummary() = %q", a.AllowedSummary())
	}
	if a.DeniedSummary() != "*.lock" {
		t.Errorf("DeniedSummary() = %q", a.DeniedSummary())
	}

	empty, err := New(nil, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if empty.AllowedSummary() != "(none)" {
		t.Errorf("AllowedSummary() on empty = %q", empty.AllowedSummary())
	}
}
