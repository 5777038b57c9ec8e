package rpc

import (
	"encoding/json"
	"fmt"

	"github.com/RevCBH/fsgit/internal/git"
	"github.com/RevCBH/fsgit/internal/template"
)

// RepoArg accepts either a bare string root or an object {root, branch?},
// per spec.md §6 "repo argument shape".
type RepoArg struct {
	Root   string `json:"root"`
	Branch string `json:"branch,omitempty"`
}

func (r *RepoArg) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		r.Root = asString
		return nil
	}
	type repoObj RepoArg
	var obj repoObj
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("repo must be a string root or {root, branch?}: %w", err)
	}
	*r = RepoArg(obj)
	return nil
}

func (r RepoArg) resolve() (git.RepoRef, error) {
	return git.NewRepoRef(r.Root, r.Branch)
}

// TemplateArg is the wire shape of a CommitTemplate. A zero value means
// "use the server's default template".
type TemplateArg struct {
	Subject             string            `json:"subject"`
	Body                string            `json:"body"`
	Trailers            []TrailerArg      `json:"trailers,omitempty"`
	EnforceUniqueWindow *int              `json:"enforceUniqueWindow,omitempty"`
}

// TrailerArg is one wire-shape trailer entry.
type TrailerArg struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func (t *TemplateArg) resolve(defaultTemplate template.CommitTemplate) template.CommitTemplate {
	if t == nil || t.Subject == "" {
		return defaultTemplate
	}
	ct := template.CommitTemplate{
		Subject:             t.Subject,
		Body:                t.Body,
		EnforceUniqueWindow: defaultTemplate.EnforceUniqueWindow,
	}
	for _, tr := range t.Trailers {
		ct.Trailers = append(ct.Trailers, template.Trailer{Key: tr.Key, Value: tr.Value})
	}
	if t.EnforceUniqueWindow != nil {
		ct.EnforceUniqueWindow = *t.EnforceUniqueWindow
	}
	return ct
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

// defaultSquashSubject synthesizes a commit subject for squash-merge when
// the caller doesn't supply one; git refuses an empty -m.
func defaultSquashSubject(sessionID string) string {
	return "[squash] " + sessionID + " – finalize staged session"
}
