package git

import (
	"context"
	"strconv"
	"strings"
)

// CommitRecord is one entry of `git log`.
type CommitRecord struct {
	SHA     string
	Subject string
}

const recordSep = "\x1f" // unit separator, won't appear in subjects

// RecentSubjects returns the subjects of the last n commits reachable from
// HEAD, most recent first. Used by the template engine's uniqueness check
// (spec.md §4.3 checkUniqueness).
func RecentSubjects(ctx context.Context, repoRoot string, n int) ([]string, error) {
	records, err := Log(ctx, repoRoot, LogOpts{MaxCount: n})
	if err != nil {
		return nil, err
	}
	subjects := make([]string, len(records))
	for i, r := range records {
		subjects[i] = r.Subject
	}
	return subjects, nil
}

// LogOpts configures Log.
type LogOpts struct {
	MaxCount int
	Path     string // if set, only commits touching this repo-relative path
	Range    string // e.g. "base..head" or "base...head"; empty means HEAD
}

// Log returns commit records, most recent first.
func Log(ctx context.Context, repoRoot string, opts LogOpts) ([]CommitRecord, error) {
	args := []string{"log", "--format=%H" + recordSep + "%s"}
	if opts.MaxCount > 0 {
		args = append(args, "-n", strconv.Itoa(opts.MaxCount))
	}
	if opts.Range != "" {
		args = append(args, opts.Range)
	}
	if opts.Path != "" {
		args = append(args, "--", opts.Path)
	}

	out, err := gitExec(ctx, repoRoot, args...)
	if err != nil {
		// An empty repo (no commits yet) fails `git log`; treat as empty history.
		if strings.Contains(err.Error(), "does not have any commits") ||
			strings.Contains(err.Error(), "unknown revision") {
			return nil, nil
		}
		return nil, err
	}
	return parseLogOutput(out), nil
}

func parseLogOutput(out string) []CommitRecord {
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	records := make([]CommitRecord, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, recordSep, 2)
		if len(parts) != 2 {
			continue
		}
		records = append(records, CommitRecord{SHA: parts[0], Subject: parts[1]})
	}
	return records
}

// Diff returns the textual unified diff between two refs (e.g. "base..head").
func Diff(ctx context.Context, repoRoot, fromRef, toRef string) (string, error) {
	return gitExec(ctx, repoRoot, "diff", fromRef+".."+toRef)
}

// DiffNameOnly returns the list of repo-relative paths changed between two refs.
func DiffNameOnly(ctx context.Context, repoRoot, fromRef, toRef string) ([]string, error) {
	out, err := gitExec(ctx, repoRoot, "diff", "--name-only", fromRef+".."+toRef)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			files = append(files, line)
		}
	}
	return files, nil
}
