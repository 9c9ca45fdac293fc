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

	"github.com/matzehuels/stackbom/pkg/errors"
	"github.com/matzehuels/stackbom/pkg/pipeline"
)

const testNodes = `{"@id": "http://example.com/c/app", "@type": "Component", "name": "app", "buildTool": "go"}
{"@id": "http://example.com/f/1", "@type": "File", "path": "go.mod", "contains": {"@id": "http://example.com/c/app"}}
{"@id": "http://example.com/d/1", "@type": "Dependency", "from": {"@id": "http://example.com/c/app"}, "to": {"@id": "http://example.com/c/lib"}}
`

const testConfig = `max_per_chunk = 2
format = "cbor"
compression = "zstd"

[properties]
project = "demo"

[[terms]]
name = "buildTool"
iri = "https://example.com/ns#buildTool"
kind = "data"
`

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func inspectJSON(t *testing.T, args ...string) pipeline.Inspection {
	t.Helper()
	out, err := execute(t, "", append([]string{"inspect", "--json"}, args...)...)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	var insp pipeline.Inspection
	if err := json.Unmarshal([]byte(out), &insp); err != nil {
		t.Fatalf("decode inspection: %v\n%s", err, out)
	}
	return insp
}

func TestRootCommand(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()

	want := []string{"pack", "unpack", "inspect", "terms", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("Find(%q) = %v, %v", name, cmd, err)
		}
	}
	for _, flag := range []string{"verbose", "config"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("missing persistent flag --%s", flag)
		}
	}
}

func TestPackUnpackWithConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "stackbom.toml", testConfig)
	nodes := writeFile(t, dir, "nodes.jsonl", testNodes)
	archive := filepath.Join(dir, "bom.zip")

	out, err := execute(t, "", "pack", nodes, "--config", cfg, "-o", archive, "--run-id", "run-1")
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	if !strings.Contains(out, "Archive written") || !strings.Contains(out, "run-1") {
		t.Errorf("pack output:\n%s", out)
	}

	insp := inspectJSON(t, archive, "--config", cfg)
	m := insp.Metadata
	if m.RunID != "run-1" || m.Format != "cbor" || m.Compression != "zstd" || m.MaxPerChunk != 2 {
		t.Errorf("metadata = %+v", m)
	}
	if m.Properties["project"] != "demo" {
		t.Errorf("properties = %v, want project=demo", m.Properties)
	}
	if len(insp.Entries) != 3 || insp.Nodes != 3 {
		t.Errorf("inspect = %d entries, %d nodes", len(insp.Entries), insp.Nodes)
	}
	if insp.Entries[1].Name != "chunks/000001.cbor.zst" {
		t.Errorf("first chunk = %q", insp.Entries[1].Name)
	}

	out, err = execute(t, "", "unpack", archive, "--config", cfg)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if lines := strings.Count(out, "\n"); lines != 3 {
		t.Errorf("unpack wrote %d lines:\n%s", lines, out)
	}
	if !strings.Contains(out, `"buildTool":"go"`) {
		t.Errorf("unpack lost the project term:\n%s", out)
	}

	target := filepath.Join(dir, "out.jsonl")
	if _, err := execute(t, "", "unpack", archive, "--config", cfg, "-o", target); err != nil {
		t.Fatalf("unpack -o: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil || strings.Count(string(data), "\n") != 3 {
		t.Errorf("unpack -o wrote %q, %v", data, err)
	}
}

func TestPackFlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "stackbom.toml", testConfig)
	archive := filepath.Join(dir, "bom")

	_, err := execute(t, testNodes, "pack", "--config", cfg, "-o", archive, "-f", "jsonld", "-n", "5", "-p", "team=core")
	if err != nil {
		t.Fatalf("pack: %v", err)
	}

	insp := inspectJSON(t, archive, "--config", cfg)
	m := insp.Metadata
	if m.Format != "jsonld" || m.Compression != "" || m.MaxPerChunk != 5 {
		t.Errorf("metadata = %+v", m)
	}
	if m.Properties["project"] != "demo" || m.Properties["team"] != "core" {
		t.Errorf("properties = %v", m.Properties)
	}
	if len(insp.Entries) != 2 {
		t.Errorf("entries = %d, want 2", len(insp.Entries))
	}
}

func TestPackUnknownTerm(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "bom.zip")

	_, err := execute(t, testNodes, "pack", "-o", archive)
	if !errors.Has(err, errors.ErrCodeUnknownTerm) {
		t.Errorf("strict pack = %v, want UNKNOWN_TERM in chain", err)
	}

	if _, err := execute(t, testNodes, "pack", "-o", archive, "--lenient"); err != nil {
		t.Errorf("lenient pack: %v", err)
	}
}

func TestPackRejectsChunkBoundBelowOne(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "bom.zip")
	for _, n := range []string{"0", "-3"} {
		_, err := execute(t, testNodes, "pack", "-o", archive, "--max-per-chunk", n)
		if !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("--max-per-chunk %s code = %v, want INVALID_INPUT", n, errors.GetCode(err))
		}
	}
	if _, err := os.Stat(archive); !os.IsNotExist(err) {
		t.Errorf("rejected pack created %s", archive)
	}
}

func TestPackRequiresOutput(t *testing.T) {
	if _, err := execute(t, testNodes, "pack"); err == nil {
		t.Error("pack without --output succeeded")
	}
}

func TestInspectText(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "stackbom.toml", testConfig)
	archive := filepath.Join(dir, "bom.zip")
	if _, err := execute(t, testNodes, "pack", "--config", cfg, "-o", archive, "--run-id", "run-2"); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "", "inspect", archive, "--config", cfg)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"run-2", "metadata.json", "chunks/000002.cbor.zst", "cbor+zstd", "project", "component"} {
		if !strings.Contains(out, want) {
			t.Errorf("inspect output missing %q:\n%s", want, out)
		}
	}
}

func TestTermsCommand(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "stackbom.toml", testConfig)

	tests := []struct {
		name    string
		args    []string
		want    []string
		notWant []string
		wantErr bool
	}{
		{
			name: "all",
			args: []string{"terms"},
			want: []string{"ContainerLayer", "dependsOn", "https://stackbom.dev/ns/bom#path"},
		},
		{
			name:    "types only",
			args:    []string{"terms", "--kind", "type"},
			want:    []string{"Component", "Annotation"},
			notWant: []string{"dependsOn"},
		},
		{
			name: "project terms",
			args: []string{"terms", "--config", cfg},
			want: []string{"buildTool", "https://example.com/ns#buildTool"},
		},
		{
			name:    "bad kind",
			args:    []string{"terms", "--kind", "edge"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, "", tt.args...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("terms error = %v, wantErr %v", err, tt.wantErr)
			}
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q:\n%s", w, out)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(out, w) {
					t.Errorf("output contains %q:\n%s", w, out)
				}
			}
		})
	}
}

func TestCompletionCommand(t *testing.T) {
	out, err := execute(t, "", "completion", "bash")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "stackbom") {
		t.Error("bash completion does not mention stackbom")
	}
}
