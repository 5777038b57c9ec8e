package textops

import (
	"context"
	"os"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/RevCBH/fsgit/internal/fserrors"
	"github.com/RevCBH/fsgit/internal/git"
)

// PreviewDiffRequest is the input to PreviewDiff.
type PreviewDiffRequest struct {
	Repo             git.RepoRef
	Path             string
	ModifiedContent  string
	IgnoreWhitespace bool
	ContextLines     int // default 3
}

// PreviewDiff produces a unified diff (a/path -> b/path) between the
// current on-disk content of Path and ModifiedContent, without writing or
// committing anything (spec.md §4.6).
func PreviewDiff(ctx context.Context, req PreviewDiffRequest) (string, error) {
	abs, err := req.Repo.ResolvePath(req.Path)
	if err != nil {
		return "", err
	}

	original, err := readFileOrEmpty(abs)
	if err != nil {
		return "", err
	}

	modified := req.ModifiedContent
	if req.IgnoreWhitespace {
		original = rstripLines(original)
		modified = rstripLines(modified)
	}

	contextLines := req.ContextLines
	if contextLines == 0 {
		contextLines = 3
	}

	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(original),
		B:        difflib.SplitLines(modified),
		FromFile: "a/" + req.Path,
		ToFile:   "b/" + req.Path,
		Context:  contextLines,
	}
	out, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return "", &fserrors.PatchError{Path: req.Path, Reason: err.Error()}
	}
	return out, nil
}

func rstripLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r")
	}
	return strings.Join(lines, "\n")
}

func readFileOrEmpty(abs string) (string, error) {
	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return string(data), nil
}
