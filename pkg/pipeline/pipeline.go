// Package pipeline provides the pack, unpack and inspect operations shared
// by the CLI and any other entry point.
//
// # Operations
//
//  1. Pack: read JSON-lines nodes and write a chunked archive
//  2. Unpack: read an archive and write its nodes back as JSON lines
//  3. Inspect: report an archive's metadata and per-entry contents
//
// # Usage
//
//	runner := pipeline.NewRunner(logger)
//	opts := pipeline.Options{
//	    Output:      "bom.zip",
//	    MaxPerChunk: 500,
//	    Format:      "cbor",
//	    Compression: "zstd",
//	}
//	result, err := runner.Pack(ctx, os.Stdin, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Chunks, "chunks")
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackbom/pkg/archive"
	"github.com/matzehuels/stackbom/pkg/chunk"
	"github.com/matzehuels/stackbom/pkg/errors"
	"github.com/matzehuels/stackbom/pkg/ld"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and library callers
// =============================================================================

const (
	// DefaultMaxPerChunk is the number of nodes per chunk entry.
	DefaultMaxPerChunk = archive.DefaultMaxPerChunk

	// DefaultFormat is the chunk document form.
	DefaultFormat = "jsonld"

	// DefaultCompression applies to binary chunks only.
	DefaultCompression = "none"
)

// ValidFormats is the set of supported chunk formats.
var ValidFormats = map[string]bool{
	"jsonld": true,
	"cbor":   true,
}

// ValidCompressions is the set of supported chunk compressions.
var ValidCompressions = map[string]bool{
	"none": true,
	"lz4":  true,
	"zstd": true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Term is a project-specific vocabulary entry registered on top of the BOM
// vocabulary.
type Term struct {
	Name string `json:"name"`
	IRI  string `json:"iri"`
	Kind string `json:"kind"` // "type" or "data"
}

// Options contains all configuration for pack, unpack and inspect.
type Options struct {
	// Input is the node source for Pack, or the archive for Unpack.
	Input string `json:"input,omitempty"`
	// Output is the archive path for Pack. Paths ending in .zip produce a
	// ZIP file, anything else a directory.
	Output string `json:"output,omitempty"`

	MaxPerChunk int               `json:"max_per_chunk,omitempty"`
	Format      string            `json:"format,omitempty"`
	Compression string            `json:"compression,omitempty"`
	Lenient     bool              `json:"lenient,omitempty"` // Drop unknown terms instead of failing
	Base        string            `json:"base,omitempty"`
	Properties  map[string]string `json:"properties,omitempty"`
	Terms       []Term            `json:"terms,omitempty"`
	RunID       string            `json:"run_id,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result summarizes a pack or unpack run.
type Result struct {
	Metadata archive.Metadata
	Nodes    int
	Chunks   int
	Duration time.Duration
}

// Inspection describes an archive without reproducing its nodes.
type Inspection struct {
	Path     string           `json:"path"`
	Metadata archive.Metadata `json:"metadata"`
	Entries  []EntryInfo      `json:"entries"`
	Nodes    int              `json:"nodes"`
}

// EntryInfo describes one archive entry. Nodes and Counts are zero for the
// metadata entry.
type EntryInfo struct {
	Name   string         `json:"name"`
	Size   int            `json:"size"`
	Digest string         `json:"sha256"`
	Nodes  int            `json:"nodes,omitempty"`
	Counts map[string]int `json:"counts,omitempty"`
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.MaxPerChunk == 0 {
		o.MaxPerChunk = DefaultMaxPerChunk
	}
	if o.MaxPerChunk < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max_per_chunk must be positive, got %d", o.MaxPerChunk)
	}
	if o.Format == "" {
		o.Format = DefaultFormat
	}
	if o.Compression == "" {
		o.Compression = DefaultCompression
	}
	if !ValidFormats[o.Format] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid format: %q (must be one of: jsonld, cbor)", o.Format)
	}
	if !ValidCompressions[o.Compression] {
		return errors.New(errors.ErrCodeInvalidInput, "invalid compression: %q (must be one of: none, lz4, zstd)", o.Compression)
	}
	if o.Format == "jsonld" && o.Compression != "none" {
		return errors.New(errors.ErrCodeInvalidInput, "compression %s requires the cbor format", o.Compression)
	}
	for _, t := range o.Terms {
		if _, err := ld.ParseTermKind(t.Kind); err != nil {
			return err
		}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// TermContext builds the BOM vocabulary context with Base and Terms
// applied. Project terms may not rebind vocabulary names (CONFLICT).
func (o *Options) TermContext() (*ld.Context, error) {
	ctx, err := ld.NewContext(o.Base)
	if err != nil {
		return nil, err
	}
	if err := ld.RegisterBOM(ctx); err != nil {
		return nil, err
	}
	for _, t := range o.Terms {
		kind, err := ld.ParseTermKind(t.Kind)
		if err != nil {
			return nil, err
		}
		if err := ctx.Register(t.Name, t.IRI, kind); err != nil {
			return nil, err
		}
	}
	return ctx, nil
}

// Codec builds the chunk codec for these options.
func (o *Options) Codec() (*chunk.Codec, error) {
	ctx, err := o.TermContext()
	if err != nil {
		return nil, err
	}
	return chunk.NewCodec(ctx, chunk.WithStrict(!o.Lenient), chunk.WithLogger(o.Logger)), nil
}

// ArchiveOptions returns the writer options for these options.
func (o *Options) ArchiveOptions() ([]archive.Option, error) {
	format, err := chunk.ParseFormat(o.Format)
	if err != nil {
		return nil, err
	}
	comp, err := chunk.ParseCompression(o.Compression)
	if err != nil {
		return nil, err
	}
	return []archive.Option{
		archive.WithMaxPerChunk(o.MaxPerChunk),
		archive.WithFormat(format),
		archive.WithCompression(comp),
		archive.WithProperties(o.Properties),
		archive.WithRunID(o.RunID),
		archive.WithLogger(o.Logger),
	}, nil
}
