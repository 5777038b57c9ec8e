// Package template implements the commit-message template engine (C3,
// spec.md §4.3): rendering, linting, uniqueness checking, and collision
// resolution for commit subjects.
package template

import (
	"embed"
	"fmt"
	"regexp"
	"strings"

	"github.com/RevCBH/fsgit/internal/fserrors"
)

//go:embed assets/commit_template.default.txt
var defaultAssetFS embed.FS

const defaultAssetPath = "assets/commit_template.default.txt"

const maxSubjectLen = 72

// CommitTemplate is a mandatory subject format string, an optional body
// format string, an optional ordered set of trailers, and the window over
// which rendered subjects must stay unique.
type CommitTemplate struct {
	Subject             string
	Body                string
	Trailers            []Trailer
	EnforceUniqueWindow int // default 100; 0 disables uniqueness enforcement
}

// Trailer is one "Key: value-format-string" line appended after the body.
type Trailer struct {
	Key   string
	Value string
}

// Variables is the mapping used to render a template. Recognized keys: op,
// path, summary, reason, ticket, files, refs. Missing optional keys render
// as empty strings.
type Variables map[string]string

// LoadDefault loads the module's built-in commit template asset. The first
// line is the subject; the remainder (trimmed) is the body.
func LoadDefault() (CommitTemplate, error) {
	data, err := defaultAssetFS.ReadFile(defaultAssetPath)
	if err != nil {
		return CommitTemplate{}, fmt.Errorf("load default commit template: %w", err)
	}
	return ParseTemplateFile(data)
}

// ParseTemplateFile parses a commit template asset: the first line is the
// subject; the remainder (trimmed) is the body. Used both for the built-in
// default asset and for a user-supplied override file (see
// internal/config's TemplatePath).
func ParseTemplateFile(data []byte) (CommitTemplate, error) {
	lines := strings.Split(string(data), "\n")
	subject := lines[0]
	var body string
	if len(lines) > 1 {
		body = strings.TrimSpace(strings.Join(lines[1:], "\n"))
	}
	return CommitTemplate{Subject: subject, Body: body, EnforceUniqueWindow: 100}, nil
}

// Render produces subject + "\n\n" + body + trailer lines, substituting
// {name} placeholders from vars. Missing variables render as empty strings
// (spec.md §4.3).
func Render(t CommitTemplate, vars Variables) (string, error) {
	subject := substitute(t.Subject, vars)
	message := subject
	if t.Body != "" {
		message += "\n\n" + substitute(t.Body, vars)
	}
	for _, tr := range t.Trailers {
		message += fmt.Sprintf("\n%s: %s", tr.Key, substitute(tr.Value, vars))
	}
	return message, nil
}

var placeholderRe = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// substitute replaces {name} placeholders with vars[name], empty string if
// absent. This is deliberately not a general format-string engine: no
// conditionals, no iteration (spec.md §9 "Template placeholders as a narrow
// DSL").
func substitute(s string, vars Variables) string {
	return placeholderRe.ReplaceAllStringFunc(s, func(match string) string {
		name := match[1 : len(match)-1]
		return vars[name]
	})
}

// LintResult is the outcome of Lint.
type LintResult struct {
	OK     bool
	Errors []string
}

// Lint applies L1 (rendered subject length <=72) and L2 (subject source text
// must contain the literal placeholders {op}, {path}, {summary}) per
// spec.md §4.3. L2 is checked against the template's pre-render text, not
// the rendered output — intentionally, per spec.md §9's documented
// open question.
func Lint(t CommitTemplate, vars Variables) LintResult {
	var errs []string

	rendered := substitute(t.Subject, vars)
	if len(rendered) > maxSubjectLen {
		errs = append(errs, fmt.Sprintf("subject exceeds %d characters", maxSubjectLen))
	}

	for _, required := range []string{"{op}", "{path}", "{summary}"} {
		if !strings.Contains(t.Subject, required) {
			errs = append(errs, fmt.Sprintf("subject template must contain %s", required))
		}
	}

	return LintResult{OK: len(errs) == 0, Errors: errs}
}

// LintErr runs Lint and converts a failing result into *fserrors.TemplateError.
func LintErr(t CommitTemplate, vars Variables) error {
	result := Lint(t, vars)
	if result.OK {
		return nil
	}
	return &fserrors.TemplateError{Errors: result.Errors}
}

// CheckUniqueness reports whether subject does not already appear among
// recentSubjects (the last enforceUniqueWindow commit subjects).
func CheckUniqueness(subject string, recentSubjects []string) bool {
	for _, s := range recentSubjects {
		if s == subject {
			return false
		}
	}
	return true
}

var collisionSuffixRe = regexp.MustCompile(` \(#(\d+)\)$`)

// ResolveCollision appends " (#2)" on first collision, incrementing an
// existing "(#n)" suffix rather than stacking a new one (spec.md §4.3).
func ResolveCollision(subject string) string {
	if m := collisionSuffixRe.FindStringSubmatchIndex(subject); m != nil {
		n := 0
		fmt.Sscanf(subject[m[2]:m[3]], "%d", &n)
		return collisionSuffixRe.ReplaceAllString(subject, fmt.Sprintf(" (#%d)", n+1))
	}
	return subject + " (#2)"
}
