package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackbom/pkg/errors"
	"github.com/matzehuels/stackbom/pkg/pipeline"
)

// termFlags are shared by every command that decodes nodes.
type termFlags struct {
	base    string // base IRI for relative identifiers
	lenient bool   // drop unknown terms instead of failing
}

func (f *termFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.base, "base", "", "base IRI for relative node identifiers")
	cmd.Flags().BoolVar(&f.lenient, "lenient", false, "drop unknown terms instead of failing")
}

// apply overrides opts with the flags the user set explicitly.
func (f *termFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	if cmd.Flags().Changed("base") {
		opts.Base = f.base
	}
	if cmd.Flags().Changed("lenient") {
		opts.Lenient = f.lenient
	}
}

// packFlags holds the command-line flags for the pack command.
type packFlags struct {
	termFlags
	output      string            // archive path; .zip selects a ZIP file
	maxPerChunk int               // nodes per chunk entry
	format      string            // jsonld or cbor
	compression string            // none, lz4 or zstd
	properties  map[string]string // free-form metadata properties
	runID       string            // fixed run id instead of a random one
}

func (f *packFlags) register(cmd *cobra.Command) {
	f.termFlags.register(cmd)
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "archive path (.zip for a ZIP file, otherwise a directory)")
	cmd.Flags().IntVarP(&f.maxPerChunk, "max-per-chunk", "n", pipeline.DefaultMaxPerChunk, "maximum nodes per chunk")
	cmd.Flags().StringVarP(&f.format, "format", "f", pipeline.DefaultFormat, "chunk format: jsonld, cbor")
	cmd.Flags().StringVarP(&f.compression, "compression", "c", pipeline.DefaultCompression, "chunk compression for cbor: none, lz4, zstd")
	cmd.Flags().StringToStringVarP(&f.properties, "property", "p", nil, "metadata property key=value (repeatable)")
	cmd.Flags().StringVar(&f.runID, "run-id", "", "run identifier recorded in the metadata (random if empty)")
	_ = cmd.MarkFlagRequired("output")
}

// apply overrides opts with the flags the user set explicitly. An
// explicit chunk bound below 1 fails with INVALID_INPUT; zero in Options
// means "use the default", so it cannot be passed through.
func (f *packFlags) apply(cmd *cobra.Command, opts *pipeline.Options) error {
	f.termFlags.apply(cmd, opts)
	opts.Output = f.output
	opts.RunID = f.runID
	if cmd.Flags().Changed("max-per-chunk") {
		if f.maxPerChunk < 1 {
			return errors.New(errors.ErrCodeInvalidInput, "--max-per-chunk must be at least 1, got %d", f.maxPerChunk)
		}
		opts.MaxPerChunk = f.maxPerChunk
	}
	if cmd.Flags().Changed("format") {
		opts.Format = f.format
	}
	if cmd.Flags().Changed("compression") {
		opts.Compression = f.compression
	} else if opts.Format == "jsonld" {
		// A compression from the config file only applies to cbor.
		opts.Compression = ""
	}
	if len(f.properties) > 0 && opts.Properties == nil {
		opts.Properties = make(map[string]string, len(f.properties))
	}
	for k, v := range f.properties {
		opts.Properties[k] = v
	}
	return nil
}
