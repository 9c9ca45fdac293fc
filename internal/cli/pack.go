package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackbom/pkg/observability"
	"github.com/matzehuels/stackbom/pkg/pipeline"
)

// packCommand creates the pack command.
func (c *CLI) packCommand() *cobra.Command {
	var flags packFlags

	cmd := &cobra.Command{
		Use:   "pack [nodes.jsonl]",
		Short: "Pack a JSON-lines node stream into a chunked archive",
		Long: `Pack reads one JSON-LD node object per line from a file, or from stdin when
no file (or "-") is given, and writes a chunked BOM archive.

Examples:
  stackbom pack nodes.jsonl -o bom.zip
  stackbom pack nodes.jsonl -o bom.zip -f cbor -c zstd -n 500
  generate-bom | stackbom pack -o ./bom -p project=demo`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.baseOptions()
			if err := flags.apply(cmd, &opts); err != nil {
				return err
			}

			input := "-"
			if len(args) == 1 {
				input = args[0]
			}
			src, err := openInput(cmd, input)
			if err != nil {
				return err
			}
			defer src.Close()

			if opts.Lenient {
				printWarning(cmd.ErrOrStderr(), "lenient mode: unknown terms are dropped")
			}
			return c.runPack(cmd, src, opts)
		},
	}

	flags.register(cmd)
	return cmd
}

func (c *CLI) runPack(cmd *cobra.Command, src io.Reader, opts pipeline.Options) error {
	ctx := cmd.Context()
	prog := newProgress(c.Logger)

	stop := c.startSpinner(cmd, "Packing...")
	result, err := c.newRunner().Pack(ctx, src, opts)
	stop()
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Packed %d nodes", result.Nodes))

	out := cmd.OutOrStdout()
	printSuccess(out, "Archive written")
	printFile(out, opts.Output)
	printStats(out, result.Nodes, result.Chunks)
	printDetail(out, "run %s", result.Metadata.RunID)
	return nil
}

// startSpinner shows a spinner that counts archive entries until the
// returned function is called.
func (c *CLI) startSpinner(cmd *cobra.Command, message string) func() {
	if !c.showProgress() {
		return func() {}
	}
	spinner := newSpinner(cmd.Context(), cmd.ErrOrStderr(), message)
	observability.SetArchiveHooks(spinner)
	spinner.Start()
	return func() {
		spinner.Stop()
		observability.Reset()
	}
}

// openInput opens path for reading; "-" reads the command's stdin.
func openInput(cmd *cobra.Command, path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	return f, nil
}
