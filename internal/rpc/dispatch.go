package rpc

import (
	"context"
	"encoding/json"

	"github.com/RevCBH/fsgit/internal/authz"
	"github.com/RevCBH/fsgit/internal/extract"
	"github.com/RevCBH/fsgit/internal/fsops"
	"github.com/RevCBH/fsgit/internal/git"
	"github.com/RevCBH/fsgit/internal/pipeline"
	"github.com/RevCBH/fsgit/internal/session"
	"github.com/RevCBH/fsgit/internal/template"
	"github.com/RevCBH/fsgit/internal/textops"
)

// Deps are the components the dispatcher wires each tool call against.
type Deps struct {
	DefaultTemplate template.CommitTemplate
	Authorizer      *authz.Authorizer // nil means no path restrictions
	Sessions        *session.Manager
}

// toolDescriptor is the "tools/list" entry for one tool.
type toolDescriptor struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema interface{} `json:"inputSchema"`
}

// toolHandler pairs a tool's schema with its typed-argument invocation.
type toolHandler struct {
	descriptor toolDescriptor
	invoke     func(ctx context.Context, args json.RawMessage) (interface{}, error)
}

func (s *Server) registerTools(deps Deps) {
	s.add("write_and_commit", "Write a file and commit it in one atomic operation",
		objectSchema(map[string]interface{}{
			"repo":           repoProp,
			"path":           stringProp("Repo-relative file path"),
			"content":        stringProp("New file content"),
			"template":       templateProp,
			"op":             stringProp("Operation tag substituted into {op}"),
			"summary":        stringProp("One-line summary substituted into {summary}"),
			"reason":         stringProp("Longer rationale substituted into {reason}"),
			"ticket":         stringProp("Ticket id substituted into {ticket}"),
			"allowCreate":    boolProp("Allow creating a new file (default true)"),
			"allowOverwrite": boolProp("Allow overwriting an existing file (default true)"),
		}, "repo", "path", "content"),
		func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var p writeAndCommitParams
			if err := json.Unmarshal(raw, &p); err != nil {
				return nil, err
			}
			repo, err := p.Repo.resolve()
			if err != nil {
				return nil, err
			}
			tpl := p.Template.resolve(deps.DefaultTemplate)
			result, err := pipeline.WriteAndCommit(ctx, pipeline.WriteRequest{
				Repo:             repo,
				Path:             p.Path,
				Content:          p.Content,
				Template:         tpl,
				Op:               p.Op,
				Summary:          p.Summary,
				Reason:           p.Reason,
				Ticket:           p.Ticket,
				AllowCreate:      boolOr(p.AllowCreate, true),
				AllowOverwrite:   boolOr(p.AllowOverwrite, true),
				Authorizer:       deps.Authorizer,
				StrictUniqueness: tpl.EnforceUniqueWindow > 0,
			})
			if err != nil {
				return nil, err
			}
			return writeResultView(result), nil
		})

	s.add("read_with_history", "Read a file's current content plus its recent commit history",
		objectSchema(map[string]interface{}{
			"repo":         repoProp,
			"path":         stringProp("Repo-relative file path"),
			"historyLimit": intProp("Maximum number of history entries (default 10)"),
		}, "repo", "path"),
		func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var p readWithHistoryParams
			if err := json.Unmarshal(raw, &p); err != nil {
				return nil, err
			}
			repo, err := p.Repo.resolve()
			if err != nil {
				return nil, err
			}
			result, err := pipeline.ReadWithHistory(ctx, repo, p.Path, intOr(p.HistoryLimit, 10))
			if err != nil {
				return nil, err
			}
			return readResultView(result), nil
		})

	s.add("start_staged", "Start a new staged session isolated on its own work branch",
		objectSchema(map[string]interface{}{
			"repo":   repoProp,
			"ticket": stringProp("Optional ticket id used in the session id"),
		}, "repo"),
		func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var p startStagedParams
			if err := json.Unmarshal(raw, &p); err != nil {
				return nil, err
			}
			repo, err := p.Repo.resolve()
			if err != nil {
				return nil, err
			}
			rec, err := deps.Sessions.StartStaged(ctx, repo, p.Ticket)
			if err != nil {
				return nil, err
			}
			return recordView(rec), nil
		})

	s.add("staged_write", "Write a file and commit within an active staged session",
		objectSchema(map[string]interface{}{
			"sessionId": stringProp("Staged session id"),
			"repo":      repoProp,
			"path":      stringProp("Repo-relative file path"),
			"content":   stringProp("New file content"),
			"summary":   stringProp("One-line summary substituted into {summary}"),
		}, "sessionId", "repo", "path", "content"),
		func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var p stagedWriteParams
			if err := json.Unmarshal(raw, &p); err != nil {
				return nil, err
			}
			repo, err := p.Repo.resolve()
			if err != nil {
				return nil, err
			}
			result, err := deps.Sessions.StagedWrite(ctx, p.SessionID, pipeline.WriteRequest{
				Repo:             repo,
				Path:             p.Path,
				Content:          p.Content,
				Template:         deps.DefaultTemplate,
				Op:               "stage",
				Summary:          p.Summary,
				AllowCreate:      true,
				AllowOverwrite:   true,
				Authorizer:       deps.Authorizer,
				StrictUniqueness: deps.DefaultTemplate.EnforceUniqueWindow > 0,
			})
			if err != nil {
				return nil, err
			}
			return writeResultView(result), nil
		})

	s.add("staged_preview", "Preview the diff and commits accumulated on a staged session",
		objectSchema(map[string]interface{}{
			"sessionId": stringProp("Staged session id"),
		}, "sessionId"),
		func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var p sessionIDParams
			if err := json.Unmarshal(raw, &p); err != nil {
				return nil, err
			}
			preview, err := deps.Sessions.StagedPreview(ctx, p.SessionID)
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{"diff": preview.Diff, "commits": preview.Commits}, nil
		})

	s.add("finalize_staged", "Merge a staged session's work branch onto its base branch",
		objectSchema(map[string]interface{}{
			"sessionId":        stringProp("Staged session id"),
			"strategy":         stringPropEnum("Finalize strategy (default merge-ff)", "merge-ff", "merge-no-ff", "rebase-merge", "squash-merge"),
			"deleteWorkBranch": boolProp("Delete the work branch after finalize (default true)"),
			"squashSubject":    stringProp("Commit subject for squash-merge (default derived from the session id)"),
		}, "sessionId"),
		func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var p finalizeStagedParams
			if err := json.Unmarshal(raw, &p); err != nil {
				return nil, err
			}
			strategy := git.MergeStrategy(p.Strategy)
			if strategy == "" {
				strategy = git.StrategyMergeFF
			}
			squashSubject := p.SquashSubject
			if squashSubject == "" {
				squashSubject = defaultSquashSubject(p.SessionID)
			}
			result, err := deps.Sessions.FinalizeStaged(ctx, p.SessionID, session.FinalizeOptions{
				Strategy:         strategy,
				DeleteWorkBranch: boolOr(p.DeleteWorkBranch, true),
				SquashSubject:    squashSubject,
			})
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{"mergedSha": result.MergedSHA}, nil
		})

	s.add("abort_staged", "Abort a staged session, discarding its work branch",
		objectSchema(map[string]interface{}{
			"sessionId": stringProp("Staged session id"),
		}, "sessionId"),
		func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var p sessionIDParams
			if err := json.Unmarshal(raw, &p); err != nil {
				return nil, err
			}
			if err := deps.Sessions.AbortStaged(ctx, p.SessionID); err != nil {
				return nil, err
			}
			return map[string]interface{}{"status": "aborted"}, nil
		})

	s.add("replace_and_commit", "Substitute text in a file and commit the result",
		objectSchema(map[string]interface{}{
			"repo":     repoProp,
			"path":     stringProp("Repo-relative file path"),
			"search":   stringProp("Literal text or regex to search for"),
			"replace":  stringProp("Replacement text"),
			"regex":    boolProp("Treat search as a regex (default false)"),
			"template": templateProp,
			"summary":  stringProp("One-line summary substituted into {summary}"),
		}, "repo", "path", "search", "replace"),
		func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var p replaceAndCommitParams
			if err := json.Unmarshal(raw, &p); err != nil {
				return nil, err
			}
			repo, err := p.Repo.resolve()
			if err != nil {
				return nil, err
			}
			result, err := textops.ReplaceAndCommit(ctx, textops.ReplaceRequest{
				Repo:     repo,
				Path:     p.Path,
				Search:   p.Search,
				Replace:  p.Replace,
				Regex:    boolOr(p.Regex, false),
				Template: p.Template.resolve(deps.DefaultTemplate),
				Summary:  p.Summary,
			})
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{"commitSha": result.CommitSHA}, nil
		})

	s.add("batch_replace_and_commit", "Apply one replace-and-commit per item, in order",
		objectSchema(map[string]interface{}{
			"repo":     repoProp,
			"items":    itemsProp,
			"template": templateProp,
			"summary":  stringProp("Fallback summary for items that omit their own"),
		}, "repo", "items"),
		func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var p batchReplaceParams
			if err := json.Unmarshal(raw, &p); err != nil {
				return nil, err
			}
			repo, err := p.Repo.resolve()
			if err != nil {
				return nil, err
			}
			items := make([]textops.BatchReplaceItem, len(p.Items))
			for i, it := range p.Items {
				items[i] = textops.BatchReplaceItem{
					Path: it.Path, Search: it.Search, Replace: it.Replace,
					Regex: boolOr(it.Regex, false), Summary: it.Summary,
				}
			}
			results, err := textops.BatchReplaceAndCommit(ctx, textops.BatchReplaceRequest{
				Repo:     repo,
				Items:    items,
				Template: p.Template.resolve(deps.DefaultTemplate),
				Summary:  p.Summary,
			})
			views := make([]map[string]interface{}, len(results))
			for i, r := range results {
				views[i] = map[string]interface{}{"path": r.Path, "commitSha": r.CommitSHA}
			}
			if err != nil {
				return nil, &batchReplaceError{underlying: err, completed: views}
			}
			return map[string]interface{}{"results": views}, nil
		})

	s.add("preview_diff", "Produce a unified diff between on-disk content and proposed content",
		objectSchema(map[string]interface{}{
			"repo":             repoProp,
			"path":             stringProp("Repo-relative file path"),
			"modifiedContent":  stringProp("Proposed new content"),
			"ignoreWhitespace": boolProp("Right-strip each line before diffing (default false)"),
			"contextLines":     intProp("Unified diff context width (default 3)"),
		}, "repo", "path", "modifiedContent"),
		func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var p previewDiffParams
			if err := json.Unmarshal(raw, &p); err != nil {
				return nil, err
			}
			repo, err := p.Repo.resolve()
			if err != nil {
				return nil, err
			}
			diff, err := textops.PreviewDiff(ctx, textops.PreviewDiffRequest{
				Repo: repo, Path: p.Path, ModifiedContent: p.ModifiedContent,
				IgnoreWhitespace: boolOr(p.IgnoreWhitespace, false),
				ContextLines:     intOr(p.ContextLines, 3),
			})
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{"diff": diff}, nil
		})

	s.add("apply_patch_and_commit", "Apply a unified diff patch to a file and commit the result",
		objectSchema(map[string]interface{}{
			"repo":     repoProp,
			"path":     stringProp("Repo-relative file path"),
			"patch":    stringProp("Unified diff patch text"),
			"template": templateProp,
			"summary":  stringProp("One-line summary substituted into {summary}"),
		}, "repo", "path", "patch"),
		func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var p applyPatchParams
			if err := json.Unmarshal(raw, &p); err != nil {
				return nil, err
			}
			repo, err := p.Repo.resolve()
			if err != nil {
				return nil, err
			}
			result, err := textops.ApplyPatchAndCommit(ctx, textops.ApplyPatchRequest{
				Repo: repo, Path: p.Path, Patch: p.Patch,
				Template: p.Template.resolve(deps.DefaultTemplate), Summary: p.Summary,
			})
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{"commitSha": result.CommitSHA}, nil
		})

	s.add("lint_commit_message", "Check a commit template + variables against the subject lints",
		objectSchema(map[string]interface{}{
			"template":  templateProp,
			"variables": map[string]interface{}{"type": "object", "description": "Template variable values"},
		}, "template", "variables"),
		func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var p lintParams
			if err := json.Unmarshal(raw, &p); err != nil {
				return nil, err
			}
			ct := p.Template.resolve(deps.DefaultTemplate)
			result := template.Lint(ct, template.Variables(p.Variables))
			return map[string]interface{}{"ok": result.OK, "errors": result.Errors}, nil
		})

	s.add("extract", "Line-window grep over a file, paired with its recent history",
		objectSchema(map[string]interface{}{
			"repo":           repoProp,
			"path":           stringProp("Repo-relative file path"),
			"query":          stringProp("Literal text or regex to search for"),
			"regex":          boolProp("Treat query as a regex (default false)"),
			"before":         intProp("Lines of context before a match (default 3)"),
			"after":          intProp("Lines of context after a match (default 3)"),
			"maxSpans":       intProp("Maximum number of matched spans (default 20)"),
			"includeContent": boolProp("Include the file's full content in the result"),
			"historyLimit":   intProp("Maximum number of history entries (default 10)"),
		}, "repo", "path"),
		func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var p extractParams
			if err := json.Unmarshal(raw, &p); err != nil {
				return nil, err
			}
			repo, err := p.Repo.resolve()
			if err != nil {
				return nil, err
			}
			result, err := extract.Extract(ctx, extract.Request{
				Repo: repo, Path: p.Path, Query: p.Query, Regex: boolOr(p.Regex, false),
				Before: intOr(p.Before, 0), After: intOr(p.After, 0), MaxSpans: intOr(p.MaxSpans, 0),
				IncludeContent: boolOr(p.IncludeContent, false), HistoryLimit: intOr(p.HistoryLimit, 0),
			})
			if err != nil {
				return nil, err
			}
			return extractResultView(result), nil
		})

	s.add("read_file", "Read the full text of a repo-relative file",
		objectSchema(map[string]interface{}{
			"repo": repoProp,
			"path": stringProp("Repo-relative file path"),
		}, "repo", "path"),
		func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var p pathOnlyParams
			if err := json.Unmarshal(raw, &p); err != nil {
				return nil, err
			}
			repo, err := p.Repo.resolve()
			if err != nil {
				return nil, err
			}
			content, err := fsops.ReadFile(repo, p.Path)
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{"content": content}, nil
		})

	s.add("stat_file", "Stat a repo-relative path",
		objectSchema(map[string]interface{}{
			"repo": repoProp,
			"path": stringProp("Repo-relative path"),
		}, "repo", "path"),
		func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var p pathOnlyParams
			if err := json.Unmarshal(raw, &p); err != nil {
				return nil, err
			}
			repo, err := p.Repo.resolve()
			if err != nil {
				return nil, err
			}
			stat, err := fsops.StatFile(repo, p.Path)
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{"size": stat.Size, "mtime": stat.MTime, "isDir": stat.IsDir}, nil
		})

	s.add("list_dir", "List the entries of a repo-relative directory",
		objectSchema(map[string]interface{}{
			"repo":      repoProp,
			"path":      stringProp("Repo-relative directory path"),
			"recursive": boolProp("Walk the full subtree (default false)"),
		}, "repo", "path"),
		func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var p listDirParams
			if err := json.Unmarshal(raw, &p); err != nil {
				return nil, err
			}
			repo, err := p.Repo.resolve()
			if err != nil {
				return nil, err
			}
			entries, err := fsops.ListDir(repo, p.Path, boolOr(p.Recursive, false))
			if err != nil {
				return nil, err
			}
			return map[string]interface{}{"entries": entries}, nil
		})

	s.add("make_dir", "Create a repo-relative directory",
		objectSchema(map[string]interface{}{
			"repo":      repoProp,
			"path":      stringProp("Repo-relative directory path"),
			"recursive": boolProp("Create parents as needed (default false)"),
		}, "repo", "path"),
		func(ctx context.Context, raw json.RawMessage) (interface{}, error) {
			var p listDirParams
			if err := json.Unmarshal(raw, &p); err != nil {
				return nil, err
			}
			repo, err := p.Repo.resolve()
			if err != nil {
				return nil, err
			}
			if err := fsops.MakeDir(repo, p.Path, boolOr(p.Recursive, false)); err != nil {
				return nil, err
			}
			return map[string]interface{}{"status": "ok"}, nil
		})
}

func (s *Server) add(name, description string, schema interface{}, invoke func(context.Context, json.RawMessage) (interface{}, error)) {
	s.tools[name] = toolHandler{
		descriptor: toolDescriptor{Name: name, Description: description, InputSchema: schema},
		invoke:     invoke,
	}
}

// batchReplaceError carries the partial results produced before the first
// failure in batch_replace_and_commit (spec.md §4.6: "no transaction across
// items"), surfaced via the JSON-RPC error's Data field.
type batchReplaceError struct {
	underlying error
	completed  []map[string]interface{}
}

func (e *batchReplaceError) Error() string { return e.underlying.Error() }
func (e *batchReplaceError) Unwrap() error { return e.underlying }

// batchReplaceData returns batchReplaceError's partial-results payload;
// handleCallTool attaches it as the error response's data.
func batchReplaceData(err error) (interface{}, bool) {
	if be, ok := err.(*batchReplaceError); ok {
		return map[string]interface{}{"completed": be.completed}, true
	}
	return nil, false
}

func writeResultView(r pipeline.WriteResult) map[string]interface{} {
	return map[string]interface{}{
		"path": r.Path, "commitSha": r.CommitSHA, "branch": r.Branch, "message": r.Message,
	}
}

func readResultView(r pipeline.ReadResult) map[string]interface{} {
	view := map[string]interface{}{"path": r.Path, "history": historyView(r.History)}
	if r.Content != nil {
		view["content"] = *r.Content
	}
	return view
}

func historyView(records []git.CommitRecord) []map[string]interface{} {
	out := make([]map[string]interface{}, len(records))
	for i, r := range records {
		out[i] = map[string]interface{}{"sha": r.SHA, "subject": r.Subject}
	}
	return out
}

func recordView(rec session.Record) map[string]interface{} {
	return map[string]interface{}{
		"sessionId":  rec.ID,
		"baseBranch": rec.BaseBranch,
		"workBranch": rec.WorkBranch,
		"startedAt":  rec.StartedAt,
		"state":      string(rec.State),
	}
}

func extractResultView(r extract.Result) map[string]interface{} {
	spans := make([]map[string]interface{}, len(r.Spans))
	for i, sp := range r.Spans {
		spans[i] = map[string]interface{}{"start": sp.Start, "end": sp.End, "lines": sp.Lines}
	}
	view := map[string]interface{}{"path": r.Path, "spans": spans, "history": historyView(r.History)}
	if r.Content != nil {
		view["content"] = *r.Content
	}
	return view
}
