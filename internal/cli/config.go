package cli

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/stackbom/pkg/errors"
	"github.com/matzehuels/stackbom/pkg/pipeline"
)

// configName is looked up in the working directory when --config is unset.
const configName = "stackbom.toml"

// fileConfig is the shape of stackbom.toml.
//
//	max_per_chunk = 1000
//	format = "cbor"
//	compression = "zstd"
//	strict = true
//	base = "https://example.com/"
//
//	[properties]
//	project = "demo"
//
//	[[terms]]
//	name = "buildTool"
//	iri = "https://example.com/ns#buildTool"
//	kind = "data"
type fileConfig struct {
	MaxPerChunk int               `toml:"max_per_chunk"`
	Format      string            `toml:"format"`
	Compression string            `toml:"compression"`
	Strict      *bool             `toml:"strict"`
	Base        string            `toml:"base"`
	Properties  map[string]string `toml:"properties"`
	Terms       []fileTerm        `toml:"terms"`

	// path is the file the config was read from, empty for defaults.
	path string
}

type fileTerm struct {
	Name string `toml:"name"`
	IRI  string `toml:"iri"`
	Kind string `toml:"kind"`
}

// loadConfig reads the config at path. With an empty path it tries
// ./stackbom.toml and then $XDG_CONFIG_HOME/stackbom/config.toml, and
// returns an empty config when neither exists. An explicit path must exist.
func loadConfig(path string) (*fileConfig, error) {
	if path != "" {
		return decodeConfig(path)
	}
	candidates := []string{configName}
	if dir, err := configDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "config.toml"))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return decodeConfig(p)
		}
	}
	return &fileConfig{}, nil
}

func decodeConfig(path string) (*fileConfig, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
	}
	var cfg fileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		slices.Sort(keys)
		return nil, errors.New(errors.ErrCodeInvalidInput, "config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if md.IsDefined("max_per_chunk") && cfg.MaxPerChunk < 1 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "config %s: max_per_chunk must be at least 1, got %d", path, cfg.MaxPerChunk)
	}
	cfg.path = path
	return &cfg, nil
}

// options converts the file values into pipeline options. Flags are
// applied on top by the commands.
func (c *fileConfig) options() pipeline.Options {
	opts := pipeline.Options{
		MaxPerChunk: c.MaxPerChunk,
		Format:      c.Format,
		Compression: c.Compression,
		Lenient:     c.Strict != nil && !*c.Strict,
		Base:        c.Base,
	}
	if len(c.Properties) > 0 {
		opts.Properties = make(map[string]string, len(c.Properties))
		for k, v := range c.Properties {
			opts.Properties[k] = v
		}
	}
	for _, t := range c.Terms {
		opts.Terms = append(opts.Terms, pipeline.Term{Name: t.Name, IRI: t.IRI, Kind: t.Kind})
	}
	return opts
}

// configDir returns the config directory using the XDG standard
// (~/.config/stackbom/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}
