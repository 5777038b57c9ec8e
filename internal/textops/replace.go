// Package textops implements the text-replace and patch-apply operations
// (C6, spec.md §4.6): replace_and_commit, batch_replace_and_commit,
// preview_diff, apply_patch_and_commit.
package textops

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/RevCBH/fsgit/internal/fserrors"
	"github.com/RevCBH/fsgit/internal/git"
	"github.com/RevCBH/fsgit/internal/pipeline"
	"github.com/RevCBH/fsgit/internal/template"
)

// ReplaceRequest is the input to ReplaceAndCommit.
type ReplaceRequest struct {
	Repo     git.RepoRef
	Path     string
	Search   string
	Replace  string
	Regex    bool
	Template template.CommitTemplate
	Summary  string
}

// ReplaceAndCommit reads path, substitutes every occurrence of Search with
// Replace (as a regex when Regex is set, else literal), and writes the
// result back through the commit pipeline with op="replace".
func ReplaceAndCommit(ctx context.Context, req ReplaceRequest) (pipeline.WriteResult, error) {
	read, err := pipeline.ReadWithHistory(ctx, req.Repo, req.Path, 0)
	if err != nil {
		return pipeline.WriteResult{}, err
	}
	if read.Content == nil {
		return pipeline.WriteResult{}, &fserrors.NotFoundError{Path: req.Path}
	}

	newContent, err := substitute(*read.Content, req.Search, req.Replace, req.Regex)
	if err != nil {
		return pipeline.WriteResult{}, err
	}

	return pipeline.WriteAndCommit(ctx, pipeline.WriteRequest{
		Repo:             req.Repo,
		Path:             req.Path,
		Content:          newContent,
		Template:         req.Template,
		Op:               "replace",
		Summary:          req.Summary,
		AllowCreate:      false,
		AllowOverwrite:   true,
		StrictUniqueness: req.Template.EnforceUniqueWindow > 0,
	})
}

func substitute(content, search, replace string, useRegex bool) (string, error) {
	if !useRegex {
		return strings.ReplaceAll(content, search, replace), nil
	}
	re, err := regexp.Compile(search)
	if err != nil {
		return "", fmt.Errorf("invalid replace regex %q: %w", search, err)
	}
	return re.ReplaceAllString(content, replace), nil
}

// BatchReplaceItem is one (path, search, replace) tuple in a batch request.
type BatchReplaceItem struct {
	Path    string
	Search  string
	Replace string
	Regex   bool
	Summary string
}

// BatchReplaceRequest is the input to BatchReplaceAndCommit.
type BatchReplaceRequest struct {
	Repo     git.RepoRef
	Items    []BatchReplaceItem
	Template template.CommitTemplate
	Summary  string
}

// BatchReplaceAndCommit applies one commit per item, in order. There is no
// transaction across items: a mid-sequence failure leaves earlier commits
// in place and the first error is returned alongside whatever results were
// produced so far (spec.md §4.6).
func BatchReplaceAndCommit(ctx context.Context, req BatchReplaceRequest) ([]pipeline.WriteResult, error) {
	results := make([]pipeline.WriteResult, 0, len(req.Items))
	for _, item := range req.Items {
		summary := item.Summary
		if summary == "" {
			summary = req.Summary
		}
		result, err := ReplaceAndCommit(ctx, ReplaceRequest{
			Repo:     req.Repo,
			Path:     item.Path,
			Search:   item.Search,
			Replace:  item.Replace,
			Regex:    item.Regex,
			Template: req.Template,
			Summary:  summary,
		})
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}
