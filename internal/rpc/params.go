package rpc

// Per-tool typed argument records (spec.md §9 "Replacing dynamic dispatch":
// one sum type of typed requests instead of map[string]interface{}
// unpacking). Each is unmarshaled directly from a tool call's "arguments".

type writeAndCommitParams struct {
	Repo           RepoArg      `json:"repo"`
	Path           string       `json:"path"`
	Content        string       `json:"content"`
	Template       *TemplateArg `json:"template,omitempty"`
	Op             string       `json:"op"`
	Summary        string       `json:"summary"`
	Reason         string       `json:"reason"`
	Ticket         string       `json:"ticket"`
	AllowCreate    *bool        `json:"allowCreate,omitempty"`
	AllowOverwrite *bool        `json:"allowOverwrite,omitempty"`
}

type readWithHistoryParams struct {
	Repo         RepoArg `json:"repo"`
	Path         string  `json:"path"`
	HistoryLimit *int    `json:"historyLimit,omitempty"`
}

type startStagedParams struct {
	Repo   RepoArg `json:"repo"`
	Ticket string  `json:"ticket"`
}

type stagedWriteParams struct {
	SessionID string  `json:"sessionId"`
	Repo      RepoArg `json:"repo"`
	Path      string  `json:"path"`
	Content   string  `json:"content"`
	Summary   string  `json:"summary"`
}

type sessionIDParams struct {
	SessionID string `json:"sessionId"`
}

type finalizeStagedParams struct {
	SessionID        string `json:"sessionId"`
	Strategy         string `json:"strategy"`
	DeleteWorkBranch *bool  `json:"deleteWorkBranch,omitempty"`
	SquashSubject    string `json:"squashSubject,omitempty"`
}

type replaceAndCommitParams struct {
	Repo     RepoArg      `json:"repo"`
	Path     string       `json:"path"`
	Search   string       `json:"search"`
	Replace  string       `json:"replace"`
	Regex    *bool        `json:"regex,omitempty"`
	Template *TemplateArg `json:"template,omitempty"`
	Summary  string       `json:"summary"`
}

type batchReplaceItemParams struct {
	Path    string `json:"path"`
	Search  string `json:"search"`
	Replace string `json:"replace"`
	Regex   *bool  `json:"regex,omitempty"`
	Summary string `json:"summary"`
}

type batchReplaceParams struct {
	Repo     RepoArg                  `json:"repo"`
	Items    []batchReplaceItemParams `json:"items"`
	Template *TemplateArg             `json:"template,omitempty"`
	Summary  string                   `json:"summary"`
}

type previewDiffParams struct {
	Repo             RepoArg `json:"repo"`
	Path             string  `json:"path"`
	ModifiedContent  string  `json:"modifiedContent"`
	IgnoreWhitespace *bool   `json:"ignoreWhitespace,omitempty"`
	ContextLines     *int    `json:"contextLines,omitempty"`
}

type applyPatchParams struct {
	Repo     RepoArg      `json:"repo"`
	Path     string       `json:"path"`
	Patch    string       `json:"patch"`
	Template *TemplateArg `json:"template,omitempty"`
	Summary  string       `json:"summary"`
}

type lintParams struct {
	Template *TemplateArg      `json:"template,omitempty"`
	Variables map[string]string `json:"variables"`
}

type extractParams struct {
	Repo           RepoArg `json:"repo"`
	Path           string  `json:"path"`
	Query          string  `json:"query"`
	Regex          *bool   `json:"regex,omitempty"`
	Before         *int    `json:"before,omitempty"`
	After          *int    `json:"after,omitempty"`
	MaxSpans       *int    `json:"maxSpans,omitempty"`
	IncludeContent *bool   `json:"includeContent,omitempty"`
	HistoryLimit   *int    `json:"historyLimit,omitempty"`
}

type pathOnlyParams struct {
	Repo RepoArg `json:"repo"`
	Path string  `json:"path"`
}

type listDirParams struct {
	Repo      RepoArg `json:"repo"`
	Path      string  `json:"path"`
	Recursive *bool   `json:"recursive,omitempty"`
}
