// Package fsops implements the thin filesystem wrappers spec.md §6 lists
// alongside the core tools: read_file, stat_file, list_dir, make_dir. Every
// path passes through RepoRef.ResolvePath for containment first.
package fsops

import (
	"os"
	"path/filepath"
	"time"

	"github.com/RevCBH/fsgit/internal/git"
)

// ReadFile returns the full text of a repo-relative path.
func ReadFile(repo git.RepoRef, path string) (string, error) {
	abs, err := repo.ResolvePath(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Stat is the result of StatFile.
type Stat struct {
	Size  int64
	MTime time.Time
	IsDir bool
}

// StatFile returns size/mtime/kind for a repo-relative path.
func StatFile(repo git.RepoRef, path string) (Stat, error) {
	abs, err := repo.ResolvePath(path)
	if err != nil {
		return Stat{}, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Stat{}, err
	}
	return Stat{Size: info.Size(), MTime: info.ModTime(), IsDir: info.IsDir()}, nil
}

// ListDir lists the entries of a repo-relative directory. When recursive is
// true, it walks the full subtree and returns repo-relative file paths only
// (directories are not listed, matching the original reader's os.walk use).
func ListDir(repo git.RepoRef, path string, recursive bool) ([]string, error) {
	abs, err := repo.ResolvePath(path)
	if err != nil {
		return nil, err
	}

	if !recursive {
		entries, err := os.ReadDir(abs)
		if err != nil {
			return nil, err
		}
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		return names, nil
	}

	var files []string
	err = filepath.WalkDir(abs, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			rel, relErr := filepath.Rel(repo.Root, p)
			if relErr != nil {
				return relErr
			}
			files = append(files, filepath.ToSlash(rel))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// MakeDir creates a repo-relative directory, creating parents as needed
// when recursive is true.
func MakeDir(repo git.RepoRef, path string, recursive bool) error {
	abs, err := repo.ResolvePath(path)
	if err != nil {
		return err
	}
	if recursive {
		return os.MkdirAll(abs, 0o755)
	}
	return os.Mkdir(abs, 0o755)
}
