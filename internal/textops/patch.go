package textops

import (
	"context"
	"fmt"
	"strings"

	gdiff "github.com/sourcegraph/go-diff/diff"

	"github.com/RevCBH/fsgit/internal/fserrors"
	"github.com/RevCBH/fsgit/internal/git"
	"github.com/RevCBH/fsgit/internal/pipeline"
	"github.com/RevCBH/fsgit/internal/template"
)

// ApplyPatchRequest is the input to ApplyPatchAndCommit.
type ApplyPatchRequest struct {
	Repo     git.RepoRef
	Path     string
	Patch    string
	Template template.CommitTemplate
	Summary  string
}

// ApplyPatchAndCommit parses Patch as one or more unified-diff hunks,
// applies them to the current content of Path, and writes the result
// through the commit pipeline with op="patch" (spec.md §4.6).
func ApplyPatchAndCommit(ctx context.Context, req ApplyPatchRequest) (pipeline.WriteResult, error) {
	abs, err := req.Repo.ResolvePath(req.Path)
	if err != nil {
		return pipeline.WriteResult{}, err
	}
	original, err := readFileOrEmpty(abs)
	if err != nil {
		return pipeline.WriteResult{}, err
	}

	newContent, err := applyPatch(req.Path, original, req.Patch)
	if err != nil {
		return pipeline.WriteResult{}, err
	}

	return pipeline.WriteAndCommit(ctx, pipeline.WriteRequest{
		Repo:             req.Repo,
		Path:             req.Path,
		Content:          newContent,
		Template:         req.Template,
		Op:               "patch",
		Summary:          req.Summary,
		AllowCreate:      true,
		AllowOverwrite:   true,
		StrictUniqueness: req.Template.EnforceUniqueWindow > 0,
	})
}

// applyPatch applies the hunks in patch to original, maintaining a running
// index into the file's line list exactly as spec.md §4.6 describes:
// context lines must match exactly, "-" lines are removed, "+" lines are
// inserted.
func applyPatch(path, original, patch string) (string, error) {
	hunks, err := parseHunks(patch)
	if err != nil {
		return "", &fserrors.PatchError{Path: path, Reason: err.Error()}
	}

	trailingNewline := strings.HasSuffix(original, "\n")
	lines := strings.Split(strings.TrimSuffix(original, "\n"), "\n")
	if original == "" {
		lines = nil
	}

	offset := 0
	for _, h := range hunks {
		idx := int(h.OrigStartLine) - 1 + offset
		if idx < 0 {
			idx = 0
		}
		for _, bodyLine := range splitHunkBody(h.Body) {
			if bodyLine == "" {
				continue
			}
			marker, text := bodyLine[0], bodyLine[1:]
			switch marker {
			case ' ':
				if idx >= len(lines) || lines[idx] != text {
					return "", &fserrors.PatchError{Path: path, Reason: fmt.Sprintf("context mismatch at line %d", idx+1)}
				}
				idx++
			case '-':
				if idx >= len(lines) || lines[idx] != text {
					return "", &fserrors.PatchError{Path: path, Reason: fmt.Sprintf("context mismatch at line %d", idx+1)}
				}
				lines = append(lines[:idx], lines[idx+1:]...)
				offset--
			case '+':
				lines = append(lines[:idx], append([]string{text}, lines[idx:]...)...)
				idx++
				offset++
			default:
				return "", &fserrors.PatchError{Path: path, Reason: "unrecognized hunk line marker"}
			}
		}
	}

	result := strings.Join(lines, "\n")
	if trailingNewline || result != "" {
		result += "\n"
	}
	return result, nil
}

// parseHunks accepts either a full unified diff (with --- /+++ headers) or
// a bare sequence of "@@ ... @@" hunks.
func parseHunks(patch string) ([]*gdiff.Hunk, error) {
	trimmed := strings.TrimSpace(patch)
	if strings.HasPrefix(trimmed, "---") || strings.HasPrefix(trimmed, "diff ") {
		fd, err := gdiff.ParseFileDiff([]byte(patch))
		if err != nil {
			return nil, err
		}
		return fd.Hunks, nil
	}
	return gdiff.ParseHunks([]byte(patch))
}

func splitHunkBody(body []byte) []string {
	return strings.Split(strings.TrimSuffix(string(body), "\n"), "\n")
}
