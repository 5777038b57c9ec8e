package rpc

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RevCBH/fsgit/internal/session"
	"github.com/RevCBH/fsgit/internal/template"
)

func setupTestRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}
	run("init")
	run("config", "user.name", "Test User")
	run("config", "user.email", "test@example.com")
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("hello\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	run("add", "README.md")
	run("commit", "-m", "initial commit")
	return dir
}

func testServer(t *testing.T) *Server {
	t.Helper()
	ct, err := template.LoadDefault()
	if err != nil {
		t.Fatalf("load default template: %v", err)
	}
	store, err := session.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("new session store: %v", err)
	}
	deps := Deps{
		DefaultTemplate: ct,
		Sessions:        session.NewManager(store),
	}
	return NewServer(deps, nil)
}

// driveLines sends each input line to the server and returns the decoded
// response for every line that produced one, in order.
func driveLines(t *testing.T, s *Server, lines ...string) []Response {
	t.Helper()
	var out bytes.Buffer
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	if err := s.ServeStdio(context.Background(), in, &out); err != nil {
		t.Fatalf("ServeStdio: %v", err)
	}
	var responses []Response
	scanner := bufio.NewScanner(&out)
	for scanner.Scan() {
		if scanner.Text() == "" {
			continue
		}
		var resp Response
		if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
			t.Fatalf("decode response %q: %v", scanner.Text(), err)
		}
		responses = append(responses, resp)
	}
	return responses
}

func TestInitializeHandshake(t *testing.T) {
	s := testServer(t)
	resp := driveLines(t, s, `{"jsonrpc":"2.0","id":1,"method":"initialize"}`)
	if len(resp) != 1 {
		t.Fatalf("expected 1 response, got %d", len(resp))
	}
	if resp[0].Error != nil {
		t.Fatalf("unexpected error: %+v", resp[0].Error)
	}
	result, ok := resp[0].Result.(map[string]interface{})
	if !ok {
		t.Fatalf("result is not an object: %#v", resp[0].Result)
	}
	if result["protocolVersion"] != "2024-11-05" {
		t.Fatalf("unexpected protocolVersion: %#v", result["protocolVersion"])
	}
}

func TestToolsListIncludesAllTools(t *testing.T) {
	s := testServer(t)
	resp := driveLines(t, s, `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	if len(resp) != 1 || resp[0].Error != nil {
		t.Fatalf("unexpected response: %+v", resp)
	}
	result := resp[0].Result.(map[string]interface{})
	toolsRaw := result["tools"].([]interface{})

	want := []string{
		"write_and_commit", "read_with_history", "start_staged", "staged_write",
		"staged_preview", "finalize_staged", "abort_staged", "replace_and_commit",
		"batch_replace_and_commit", "preview_diff", "apply_patch_and_commit",
		"lint_commit_message", "extract", "read_file", "stat_file", "list_dir", "make_dir",
	}
	got := make(map[string]bool, len(toolsRaw))
	for _, raw := range toolsRaw {
		entry := raw.(map[string]interface{})
		got[entry["name"].(string)] = true
	}
	for _, name := range want {
		if !got[name] {
			t.Errorf("tools/list missing %q", name)
		}
	}
	if len(got) != len(want) {
		t.Errorf("tools/list returned %d tools, want %d", len(got), len(want))
	}
}

func TestWriteAndCommitRoundTrip(t *testing.T) {
	root := setupTestRepo(t)
	s := testServer(t)

	req := fmt.Sprintf(`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"write_and_commit","arguments":{"repo":%q,"path":"hello.txt","content":"hi\n","op":"add","summary":"create greeting"}}}`, root)
	resp := driveLines(t, s, req)
	if len(resp) != 1 {
		t.Fatalf("expected 1 response, got %d", len(resp))
	}
	if resp[0].Error != nil {
		t.Fatalf("unexpected error: %+v", resp[0].Error)
	}
	result := resp[0].Result.(map[string]interface{})
	if result["message"] != "[add] hello.txt – create greeting" {
		t.Errorf("unexpected commit subject: %#v", result["message"])
	}
	if result["commitSha"] == "" || result["commitSha"] == nil {
		t.Errorf("expected a non-empty commitSha")
	}

	data, err := os.ReadFile(filepath.Join(root, "hello.txt"))
	if err != nil {
		t.Fatalf("read written file: %v", err)
	}
	if string(data) != "hi\n" {
		t.Errorf("unexpected file content: %q", data)
	}
}

func TestUnknownToolReturnsMethodNotFound(t *testing.T) {
	s := testServer(t)
	resp := driveLines(t, s, `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"nope","arguments":{}}}`)
	if len(resp) != 1 {
		t.Fatalf("expected 1 response, got %d", len(resp))
	}
	if resp[0].Error == nil || resp[0].Error.Code != codeMethodNotFound {
		t.Fatalf("expected method-not-found error, got %+v", resp[0].Error)
	}
}

func TestUnknownMethodReturnsMethodNotFound(t *testing.T) {
	s := testServer(t)
	resp := driveLines(t, s, `{"jsonrpc":"2.0","id":1,"method":"bogus"}`)
	if len(resp) != 1 {
		t.Fatalf("expected 1 response, got %d", len(resp))
	}
	if resp[0].Error == nil || resp[0].Error.Code != codeMethodNotFound {
		t.Fatalf("expected method-not-found error, got %+v", resp[0].Error)
	}
}

func TestNotificationProducesNoReply(t *testing.T) {
	s := testServer(t)
	resp := driveLines(t, s, `{"jsonrpc":"2.0","method":"notifications/initialized"}`)
	if len(resp) != 0 {
		t.Fatalf("expected no responses for a notification, got %d: %+v", len(resp), resp)
	}
}

func TestBatchReplaceAndCommitPartialFailureSurfacesCompleted(t *testing.T) {
	root := setupTestRepo(t)
	s := testServer(t)

	writeRepoFile(t, root, "a.txt", "foo\n")

	req := fmt.Sprintf(`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"batch_replace_and_commit","arguments":{"repo":%q,"items":[{"path":"a.txt","search":"foo","replace":"bar"},{"path":"missing.txt","search":"x","replace":"y"}]}}}`, root)
	resp := driveLines(t, s, req)
	if len(resp) != 1 {
		t.Fatalf("expected 1 response, got %d", len(resp))
	}
	if resp[0].Error == nil {
		t.Fatalf("expected an error response for the missing second item")
	}
	data, ok := resp[0].Error.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("expected error data to be an object, got %#v", resp[0].Error.Data)
	}
	completed, ok := data["completed"].([]interface{})
	if !ok || len(completed) != 1 {
		t.Fatalf("expected 1 completed item before the failure, got %#v", data["completed"])
	}
}

func writeRepoFile(t *testing.T, root, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(root, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cmd := exec.Command("git", "add", name)
	cmd.Dir = root
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git add: %v\n%s", err, out)
	}
	cmd = exec.Command("git", "commit", "-m", "seed "+name)
	cmd.Dir = root
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("git commit: %v\n%s", err, out)
	}
}
