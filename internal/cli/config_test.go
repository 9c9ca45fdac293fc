package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/stackbom/pkg/errors"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "stackbom.toml", "strict = false\nbase = \"https://example.com/\"\n"+testConfig)

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	opts := cfg.options()
	if opts.MaxPerChunk != 2 || opts.Format != "cbor" || opts.Compression != "zstd" {
		t.Errorf("options = %+v", opts)
	}
	if !opts.Lenient || opts.Base != "https://example.com/" {
		t.Errorf("Lenient = %v, Base = %q", opts.Lenient, opts.Base)
	}
	if len(opts.Terms) != 1 || opts.Terms[0].Name != "buildTool" || opts.Terms[0].Kind != "data" {
		t.Errorf("Terms = %+v", opts.Terms)
	}
	if opts.Properties["project"] != "demo" {
		t.Errorf("Properties = %v", opts.Properties)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		code    errors.Code
	}{
		{"unknown key", "max_per_chunk = 2\ncolour = \"red\"\n", errors.ErrCodeInvalidInput},
		{"bad syntax", "format = \n", errors.ErrCodeInvalidFormat},
		{"wrong type", "max_per_chunk = \"many\"\n", errors.ErrCodeInvalidFormat},
		{"zero chunk bound", "max_per_chunk = 0\n", errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, "c.toml", tt.content)
			_, err := loadConfig(path)
			if !errors.Is(err, tt.code) {
				t.Errorf("loadConfig() code = %v, want %v (err: %v)", errors.GetCode(err), tt.code, err)
			}
		})
	}

	if _, err := loadConfig(filepath.Join(dir, "missing.toml")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing explicit config code = %v, want FILE_NOT_FOUND", errors.GetCode(err))
	}
}

func TestLoadConfigSearch(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.path != "" || cfg.Format != "" {
		t.Errorf("no config files: got %+v", cfg)
	}

	if err := os.MkdirAll(filepath.Join(xdg, appName), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(xdg, appName), "config.toml", "format = \"cbor\"\n")
	cfg, err = loadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Format != "cbor" {
		t.Errorf("XDG config Format = %q, want cbor", cfg.Format)
	}
}

func TestConfigDir(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/custom-config")
	dir, err := configDir()
	if err != nil {
		t.Fatalf("configDir() error: %v", err)
	}
	if want := filepath.Join("/tmp/custom-config", appName); dir != want {
		t.Errorf("configDir() = %q, want %q", dir, want)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	dir, _ = configDir()
	if want := filepath.Join(home, ".config", appName); dir != want {
		t.Errorf("configDir() = %q, want %q", dir, want)
	}
}
