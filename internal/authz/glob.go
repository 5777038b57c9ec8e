package authz

import (
	"path"
	"strings"
)

// matchGlob implements spec.md §4.2's segment-wise glob matching: ordinary
// segments use shell-glob semantics (*, ?, [...]) within one path segment,
// "**" matches zero or more whole segments, and a single-segment pattern
// (no "/", not "**") is matched against the path's basename so that e.g.
// "*.py" matches a file at any depth.
func matchGlob(pattern, relPath string) bool {
	patSegs := strings.Split(pattern, "/")
	if len(patSegs) == 1 && pattern != "**" {
		return segmentMatch(pattern, path.Base(relPath))
	}
	pathSegs := strings.Split(relPath, "/")
	return matchSegs(patSegs, pathSegs)
}

func matchSegs(pat, segs []string) bool {
	if len(pat) == 0 {
		return len(segs) == 0
	}
	if pat[0] == "**" {
		for i := 0; i <= len(segs); i++ {
			if matchSegs(pat[1:], segs[i:]) {
				return true
			}
		}
		return false
	}
	if len(segs) == 0 {
		return false
	}
	if !segmentMatch(pat[0], segs[0]) {
		return false
	}
	return matchSegs(pat[1:], segs[1:])
}

func segmentMatch(pattern, segment string) bool {
	ok, err := path.Match(pattern, segment)
	return err == nil && ok
}
