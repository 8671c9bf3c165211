package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/canicai/canicai/pkg/catalog"
	"github.com/canicai/canicai/pkg/editor"
	apperrors "github.com/canicai/canicai/pkg/errors"
	"github.com/canicai/canicai/pkg/persist"
	"github.com/canicai/canicai/pkg/store"
	"github.com/canicai/canicai/pkg/store/storetest"
)

// env is a temporary canicai setup: a file catalog, a file store and a
// config file pointing at both.
type env struct {
	dir    string
	config string
}

func newEnv(t *testing.T, compatible bool) env {
	t.Helper()
	dir := t.TempDir()

	cat := catalog.File{
		Manufacturers: []catalog.Manufacturer{{ID: "mf", Name: "Acme"}},
		Categories:    []catalog.Category{{ID: "cat", Name: catalog.LocalizedName{EN: "Cameras"}, Icon: "camera"}},
		Components: []catalog.Component{
			{ID: "c1", Name: "Camera One", Manufacturer: "mf", Category: "cat", Type: catalog.TypeInput, Compatible: compatible},
		},
	}
	writeJSON(t, filepath.Join(dir, "catalog.json"), cat)

	cfg := "[catalog]\n" +
		"source = \"file\"\n" +
		"file = '" + filepath.Join(dir, "catalog.json") + "'\n" +
		"cache_dir = '" + filepath.Join(dir, "cache") + "'\n" +
		"\n[store]\n" +
		"backend = \"file\"\n" +
		"dir = '" + filepath.Join(dir, "workflows") + "'\n"
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(cfg), 0o600); err != nil {
		t.Fatal(err)
	}
	return env{dir: dir, config: path}
}

func writeJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}
}

// workflowFile writes the sample workflow and returns its path.
func (e env) workflowFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(e.dir, "demo.json")
	if err := persist.WriteFile(storetest.Sample("wf-1", "Demo"), path); err != nil {
		t.Fatal(err)
	}
	return path
}

// run executes the root command and returns what it wrote to its output.
func (e env) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, log.WarnLevel)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--config", e.config}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCheckJSON(t *testing.T) {
	e := newEnv(t, true)

	out, err := e.run(t, "check", e.workflowFile(t), "--json")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	var got editor.Check
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if got.Name != "Demo" || !got.Report.Compatible {
		t.Errorf("check = %+v, want compatible Demo", got)
	}
	if len(got.Hash) != 64 {
		t.Errorf("hash = %q, want 64 hex characters", got.Hash)
	}
	if len(got.Report.Nodes) != 2 || len(got.Report.Edges) != 1 {
		t.Errorf("report has %d nodes, %d edges, want 2, 1", len(got.Report.Nodes), len(got.Report.Edges))
	}
}

func TestCheckStrict(t *testing.T) {
	e := newEnv(t, false)
	path := e.workflowFile(t)

	if _, err := e.run(t, "check", path, "--json"); err != nil {
		t.Fatalf("check without --strict: %v", err)
	}
	_, err := e.run(t, "check", path, "--json", "--strict")
	if !apperrors.Is(err, apperrors.ErrCodeInvalidWorkflow) {
		t.Errorf("check --strict error = %v, want INVALID_WORKFLOW", err)
	}
}

func TestCheckArgs(t *testing.T) {
	e := newEnv(t, true)
	path := e.workflowFile(t)

	tests := []struct {
		name string
		args []string
	}{
		{"no input", []string{"check"}},
		{"file and id", []string{"check", path, "--id", "wf-1"}},
		{"two files", []string{"check", path, path}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := e.run(t, tt.args...); err == nil {
				t.Error("expected an argument error")
			}
		})
	}
}

func TestCheckMissingFile(t *testing.T) {
	e := newEnv(t, true)
	_, err := e.run(t, "check", filepath.Join(e.dir, "nope.json"))
	if !apperrors.Is(err, apperrors.ErrCodeFileNotFound) {
		t.Errorf("error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestCheckInvalidFile(t *testing.T) {
	e := newEnv(t, true)
	saved := storetest.Sample("wf-1", "Demo")
	saved.Edges = nil
	path := filepath.Join(e.dir, "broken.json")
	writeJSON(t, path, saved)

	_, err := e.run(t, "check", path)
	if !apperrors.Is(err, apperrors.ErrCodeInvalidWorkflow) {
		t.Errorf("error = %v, want INVALID_WORKFLOW", err)
	}
}

func TestHash(t *testing.T) {
	e := newEnv(t, true)
	path := e.workflowFile(t)

	first, err := e.run(t, "hash", path)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	second, _ := e.run(t, "hash", path)
	if first != second {
		t.Errorf("hash is not stable: %q vs %q", first, second)
	}
	if got := strings.TrimSpace(first); len(got) != 64 {
		t.Errorf("hash = %q, want 64 hex characters", got)
	}

	canon, err := e.run(t, "hash", path, "--canonical")
	if err != nil {
		t.Fatalf("hash --canonical: %v", err)
	}
	if !strings.HasPrefix(canon, "n1") || !strings.HasSuffix(strings.TrimSpace(canon), "Demo") {
		t.Errorf("canonical = %q, want n1... ending in the name", canon)
	}
}

func TestRenderDOT(t *testing.T) {
	e := newEnv(t, true)

	out, err := e.run(t, "render", e.workflowFile(t), "-f", "dot", "-o", "-")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.HasPrefix(out, "digraph G {") {
		t.Errorf("output does not start with a digraph: %q", out)
	}
	if !strings.Contains(out, `"n1" -> "n2"`) {
		t.Errorf("output lacks the n1 -> n2 edge:\n%s", out)
	}
}

func TestRenderDefaultOutputPath(t *testing.T) {
	e := newEnv(t, true)
	path := e.workflowFile(t)

	if _, err := e.run(t, "render", path, "-f", "dot"); err != nil {
		t.Fatalf("render: %v", err)
	}
	if _, err := os.Stat(strings.TrimSuffix(path, ".json") + ".dot"); err != nil {
		t.Errorf("expected demo.dot next to the input: %v", err)
	}
}

func TestRenderInvalidFormat(t *testing.T) {
	e := newEnv(t, true)
	if _, err := e.run(t, "render", e.workflowFile(t), "-f", "gif"); err == nil {
		t.Error("expected an error for an unknown format")
	}
}

func TestWorkflowsLifecycle(t *testing.T) {
	e := newEnv(t, true)
	path := e.workflowFile(t)

	if _, err := e.run(t, "workflows", "import", path, "--keep-id"); err != nil {
		t.Fatalf("import: %v", err)
	}

	out, err := e.run(t, "workflows", "list", "--json")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var list []store.Summary
	if err := json.Unmarshal([]byte(out), &list); err != nil {
		t.Fatalf("decode list %q: %v", out, err)
	}
	if len(list) != 1 || list[0].ID != "wf-1" || list[0].ComponentCount != 2 {
		t.Fatalf("list = %+v, want wf-1 with 2 components", list)
	}

	out, err = e.run(t, "check", "--id", "wf-1", "--json")
	if err != nil {
		t.Fatalf("check --id: %v", err)
	}
	var check editor.Check
	if err := json.Unmarshal([]byte(out), &check); err != nil || check.ID != "wf-1" {
		t.Errorf("check --id = %+v, %v", check, err)
	}

	out, err = e.run(t, "workflows", "export", "wf-1")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	saved, err := persist.Unmarshal([]byte(out))
	if err != nil || saved.Name != "Demo" {
		t.Errorf("export = %+v, %v", saved, err)
	}

	if _, err := e.run(t, "workflows", "delete", "wf-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err = e.run(t, "check", "--id", "wf-1")
	if !apperrors.Is(err, apperrors.ErrCodeWorkflowNotFound) {
		t.Errorf("check after delete = %v, want WORKFLOW_NOT_FOUND", err)
	}
}

func TestWorkflowsImportAssignsID(t *testing.T) {
	e := newEnv(t, true)
	if _, err := e.run(t, "workflows", "import", e.workflowFile(t)); err != nil {
		t.Fatalf("import: %v", err)
	}
	out, _ := e.run(t, "workflows", "list", "--json")
	var list []store.Summary
	if err := json.Unmarshal([]byte(out), &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID == "wf-1" {
		t.Errorf("list = %+v, want one workflow with a fresh id", list)
	}
}

func TestWorkflowsExportUnknown(t *testing.T) {
	e := newEnv(t, true)
	_, err := e.run(t, "workflows", "export", "nope")
	if !apperrors.Is(err, apperrors.ErrCodeWorkflowNotFound) {
		t.Errorf("error = %v, want WORKFLOW_NOT_FOUND", err)
	}
}

func TestCatalogSearch(t *testing.T) {
	e := newEnv(t, true)

	out, err := e.run(t, "catalog", "search", "acme", "--json")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	var found []catalog.Component
	if err := json.Unmarshal([]byte(out), &found); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(found) != 1 || found[0].ID != "c1" {
		t.Errorf("search acme = %+v, want c1", found)
	}

	out, err = e.run(t, "catalog", "search", "camera", "--type", "output", "--json")
	if err != nil {
		t.Fatalf("search --type: %v", err)
	}
	if strings.TrimSpace(out) != "null" {
		t.Errorf("search with output filter = %s, want no results", out)
	}
}

func TestParseSearch(t *testing.T) {
	tests := []struct {
		text    string
		types   []string
		wantErr bool
	}{
		{"cam", nil, false},
		{"  ab ", nil, true},
		{"camera", []string{"input", "output"}, false},
		{"camera", []string{"sideways"}, true},
	}
	for _, tt := range tests {
		q, err := parseSearch(tt.text, tt.types)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseSearch(%q, %v) error = %v, wantErr %v", tt.text, tt.types, err, tt.wantErr)
			continue
		}
		if err == nil && len(q.Types) != len(tt.types) {
			t.Errorf("parseSearch(%q) types = %v", tt.text, q.Types)
		}
		if err != nil && !apperrors.Is(err, apperrors.ErrCodeInvalidInput) {
			t.Errorf("parseSearch(%q) code = %s, want INVALID_INPUT", tt.text, apperrors.GetCode(err))
		}
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		id     string
		args   []string
		want   string
	}{
		{"explicit", "out.svg", "", []string{"wf.json"}, "out.svg"},
		{"stdout", "-", "", []string{"wf.json"}, ""},
		{"from id", "", "wf-1", nil, "wf-1.png"},
		{"from file", "", "", []string{"dir/wf.json"}, "dir/wf.png"},
		{"from stdin", "", "", []string{"-"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outputPath(tt.output, tt.id, tt.args, "png"); got != tt.want {
				t.Errorf("outputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConfigCommands(t *testing.T) {
	e := newEnv(t, true)

	out, err := e.run(t, "config", "path")
	if err != nil || strings.TrimSpace(out) != e.config {
		t.Errorf("config path = %q, %v, want %q", out, err, e.config)
	}

	out, err = e.run(t, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, `backend = "file"`) || !strings.Contains(out, "catalog.json") {
		t.Errorf("config show missing values:\n%s", out)
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	e := env{dir: filepath.Dir(path), config: path}

	if _, err := e.run(t, "config", "init"); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if _, err := e.run(t, "config", "init"); err == nil {
		t.Error("second init without --force should fail")
	}
	if _, err := e.run(t, "config", "init", "--force"); err != nil {
		t.Errorf("init --force: %v", err)
	}
}

func TestCachePath(t *testing.T) {
	e := newEnv(t, true)
	out, err := e.run(t, "cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if want := filepath.Join(e.dir, "cache"); strings.TrimSpace(out) != want {
		t.Errorf("cache path = %q, want %q", out, want)
	}
}

func TestCompletion(t *testing.T) {
	e := newEnv(t, true)
	out, err := e.run(t, "completion", "bash")
	if err != nil {
		t.Fatalf("completion: %v", err)
	}
	if !strings.Contains(out, "canicai") {
		t.Error("bash completion should mention the command name")
	}
}

func TestInvalidConfig(t *testing.T) {
	e := newEnv(t, true)
	if err := os.WriteFile(e.config, []byte("[store]\nbackend = \"tape\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := e.run(t, "workflows", "list")
	if !apperrors.Is(err, apperrors.ErrCodeInvalidConfig) {
		t.Errorf("error = %v, want INVALID_CONFIG", err)
	}
}

func TestCacheClear(t *testing.T) {
	e := newEnv(t, true)
	dir := filepath.Join(e.dir, "cache")
	if err := os.MkdirAll(filepath.Join(dir, "render", "ab"), 0o755); err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{filepath.Join(dir, "entry"), filepath.Join(dir, "render", "ab", "x.json")} {
		if err := os.WriteFile(p, []byte("{}"), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := e.run(t, "cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	for _, p := range []string{filepath.Join(dir, "entry"), filepath.Join(dir, "render")} {
		if _, err := os.Stat(p); !os.IsNotExist(err) {
			t.Errorf("%s still exists after clear", p)
		}
	}
}

func TestCatalogImportRejectsNonObjectIDs(t *testing.T) {
	e := newEnv(t, true)
	_, err := e.run(t, "catalog", "import", filepath.Join(e.dir, "catalog.json"))
	if !apperrors.Is(err, apperrors.ErrCodeInvalidID) {
		t.Errorf("error = %v, want INVALID_ID before connecting", err)
	}
}
