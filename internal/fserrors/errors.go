// Package fserrors holds the broker's error taxonomy (spec.md §7): one Go
// type per variant, each carrying a stable JSON-RPC error code so the
// dispatcher (internal/rpc) never has to guess a code from a string.
package fserrors

import (
	"fmt"
	"strings"
)

// Code identifies a taxonomy variant for the JSON-RPC error envelope.
type Code int

const (
	CodeConfig     Code = -32001
	CodeAuth       Code = -32002
	CodeDirtyTree  Code = -32003
	CodeTemplate   Code = -32004
	CodeUniqueness Code = -32005
	CodeNotFound   Code = -32006
	CodeConflict   Code = -32007
	CodePatch      Code = -32008
	CodeMerge      Code = -32009
	CodeSession    Code = -32010
	CodeGit        Code = -32011
)

// Coded is implemented by every error in this package so the dispatcher can
// recover a stable RPC error code via a single type switch/assertion.
type Coded interface {
	error
	Code() Code
}

// ConfigError: repo is not a git tree, path is not a directory.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config error for %q: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("config error for %q", e.Path)
}
func (e *ConfigError) Unwrap() error { return e.Err }
func (e *ConfigError) Code() Code    { return CodeConfig }

// AuthError: path escapes repo root, or fails allow/deny rules.
type AuthError struct {
	Path    string
	Allowed string // human-readable summary of allowed patterns
	Denied  string // human-readable summary of denied patterns
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("path %s not authorized: %s; %s", e.Path, e.Allowed, e.Denied)
}
func (e *AuthError) Code() Code { return CodeAuth }

// DirtyTreeError: pre-commit guard against uncommitted changes when policy
// disallows overwrite.
type DirtyTreeError struct {
	RepoRoot string
	Status   string
}

func (e *DirtyTreeError) Error() string {
	return fmt.Sprintf("working tree at %s is dirty:\n%s", e.RepoRoot, e.Status)
}
func (e *DirtyTreeError) Code() Code { return CodeDirtyTree }

// TemplateError: subject too long, required placeholder missing, unrenderable.
type TemplateError struct {
	Errors []string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("template invalid: %s", strings.Join(e.Errors, "; "))
}
func (e *TemplateError) Code() Code { return CodeTemplate }

// UniquenessError: subject collides in the uniqueness window and strict
// mode is on (enforceUniqueWindow > 0).
type UniquenessError struct {
	Subject string
	Window  int
}

func (e *UniquenessError) Error() string {
	return fmt.Sprintf("subject %q collides with a commit in the last %d commits", e.Subject, e.Window)
}
func (e *UniquenessError) Code() Code { return CodeUniqueness }

// NotFoundError: file presence policy violation (missing file, allowCreate=false).
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("file not found: %s", e.Path) }
func (e *NotFoundError) Code() Code    { return CodeNotFound }

// ConflictError: file presence policy violation (existing file, allowOverwrite=false).
type ConflictError struct {
	Path string
}

func (e *ConflictError) Error() string { return fmt.Sprintf("file already exists: %s", e.Path) }
func (e *ConflictError) Code() Code    { return CodeConflict }

// PatchError: unified-diff hunk context does not match.
type PatchError struct {
	Path   string
	Reason string
}

func (e *PatchError) Error() string {
	return fmt.Sprintf("patch does not apply to %s: %s", e.Path, e.Reason)
}
func (e *PatchError) Code() Code { return CodePatch }

// MergeError: git refused the requested finalize strategy.
type MergeError struct {
	Strategy string
	Reason   string
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("finalize strategy %s failed: %s", e.Strategy, e.Reason)
}
func (e *MergeError) Code() Code { return CodeMerge }

// SessionError: unknown, corrupted, or already-terminated session.
type SessionError struct {
	SessionID string
	Reason    string
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("session %s: %s", e.SessionID, e.Reason)
}
func (e *SessionError) Code() Code { return CodeSession }

// GitError: underlying git subprocess returned non-zero or timed out.
type GitError struct {
	Args    []string
	Err     error
	Timeout bool
}

func (e *GitError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("git %s timed out: %v", strings.Join(e.Args, " "), e.Err)
	}
	return fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
}
func (e *GitError) Unwrap() error { return e.Err }
func (e *GitError) Code() Code    { return CodeGit }
