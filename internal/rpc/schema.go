package rpc

// Minimal JSON-Schema builders for tools/list descriptors. The dispatcher
// only needs enough shape to advertise argument types to a client; it is
// not itself schema-validated (argument unmarshaling does that work).

func objectSchema(properties map[string]interface{}, required ...string) map[string]interface{} {
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func stringProp(desc string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": desc}
}

func stringPropEnum(desc string, values ...string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": desc, "enum": values}
}

func intProp(desc string) map[string]interface{} {
	return map[string]interface{}{"type": "integer", "description": desc}
}

func boolProp(desc string) map[string]interface{} {
	return map[string]interface{}{"type": "boolean", "description": desc}
}

var repoProp = map[string]interface{}{
	"description": "Repository root, as a string path or {root, branch?}",
	"oneOf": []map[string]interface{}{
		{"type": "string"},
		{"type": "object", "properties": map[string]interface{}{
			"root":   stringProp("Repository root path"),
			"branch": stringProp("Branch hint"),
		}},
	},
}

var templateProp = map[string]interface{}{
	"type":        "object",
	"description": "Commit template override; omit to use the server default",
	"properties": map[string]interface{}{
		"subject":             stringProp("Subject format string"),
		"body":                stringProp("Body format string"),
		"enforceUniqueWindow": intProp("Commits to check for subject uniqueness"),
	},
}

var itemsProp = map[string]interface{}{
	"type":        "array",
	"description": "Batch of (path, search, replace) tuples",
	"items": map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"path":    stringProp("Repo-relative file path"),
			"search":  stringProp("Literal text or regex to search for"),
			"replace": stringProp("Replacement text"),
			"regex":   boolProp("Treat search as a regex (default false)"),
			"summary": stringProp("Per-item summary override"),
		},
		"required": []string{"path", "search", "replace"},
	},
}
