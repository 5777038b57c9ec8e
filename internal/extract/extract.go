// Package extract implements the "extract" reader tool (spec.md §6): a
// trivial line-window grep over a repo-relative file, paired with its
// recent git history.
package extract

import (
	"bufio"
	"context"
	"os"
	"regexp"
	"strings"

	"github.com/RevCBH/fsgit/internal/git"
)

// Request is the input to Extract.
type Request struct {
	Repo           git.RepoRef
	Path           string
	Query          string
	Regex          bool
	Before         int // default 3
	After          int // default 3
	MaxSpans       int // default 20
	IncludeContent bool
	HistoryLimit   int // default 10
}

// Span is one matched window of lines.
type Span struct {
	Start int // 0-based, inclusive
	End   int // 0-based, exclusive
	Lines []string
}

// Result is the outcome of Extract.
type Result struct {
	Path    string
	Spans   []Span
	History []git.CommitRecord
	Content *string // set only when Request.IncludeContent
}

// Extract scans Path line by line for Query (literal substring or regex),
// collecting a ±Before/After window around each match up to MaxSpans, and
// attaches the file's recent commit history.
func Extract(ctx context.Context, req Request) (Result, error) {
	abs, err := req.Repo.ResolvePath(req.Path)
	if err != nil {
		return Result{}, err
	}

	before, after, maxSpans, historyLimit := applyDefaults(req)

	lines, err := readLines(abs)
	if err != nil {
		return Result{}, err
	}

	var spans []Span
	if req.Query != "" {
		spans, err = findSpans(lines, req.Query, req.Regex, before, after, maxSpans)
		if err != nil {
			return Result{}, err
		}
	}

	history, err := git.Log(ctx, req.Repo.Root, git.LogOpts{MaxCount: historyLimit, Path: req.Path})
	if err != nil {
		return Result{}, err
	}

	result := Result{Path: req.Path, Spans: spans, History: history}
	if req.IncludeContent {
		content := strings.Join(lines, "\n")
		if len(lines) > 0 {
			content += "\n"
		}
		result.Content = &content
	}
	return result, nil
}

func applyDefaults(req Request) (before, after, maxSpans, historyLimit int) {
	before, after, maxSpans, historyLimit = req.Before, req.After, req.MaxSpans, req.HistoryLimit
	if before == 0 {
		before = 3
	}
	if after == 0 {
		after = 3
	}
	if maxSpans == 0 {
		maxSpans = 20
	}
	if historyLimit == 0 {
		historyLimit = 10
	}
	return
}

func readLines(abs string) ([]string, error) {
	f, err := os.Open(abs)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func findSpans(lines []string, query string, useRegex bool, before, after, maxSpans int) ([]Span, error) {
	var matches func(line string) bool
	if useRegex {
		re, err := regexp.Compile(query)
		if err != nil {
			return nil, err
		}
		matches = re.MatchString
	} else {
		matches = func(line string) bool { return strings.Contains(line, query) }
	}

	var spans []Span
	for i, line := range lines {
		if !matches(line) {
			continue
		}
		start := i - before
		if start < 0 {
			start = 0
		}
		end := i + after + 1
		if end > len(lines) {
			end = len(lines)
		}
		spans = append(spans, Span{Start: start, End: end, Lines: append([]string(nil), lines[start:end]...)})
		if len(spans) >= maxSpans {
			break
		}
	}
	return spans, nil
}
