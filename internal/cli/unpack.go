package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// unpackCommand creates the unpack command.
func (c *CLI) unpackCommand() *cobra.Command {
	var (
		flags  termFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "unpack <archive>",
		Short: "Write the nodes of an archive back as JSON lines",
		Long: `Unpack reads every chunk of an archive in order and writes one JSON-LD node
object per line to stdout or to --output.

Examples:
  stackbom unpack bom.zip > nodes.jsonl
  stackbom unpack ./bom -o nodes.jsonl`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.baseOptions()
			flags.apply(cmd, &opts)
			opts.Input = args[0]

			dst, err := openOutput(cmd, output)
			if err != nil {
				return err
			}

			stop := c.startSpinner(cmd, "Unpacking...")
			result, err := c.newRunner().Unpack(cmd.Context(), dst, opts)
			stop()
			if cerr := dst.Close(); err == nil && cerr != nil {
				err = fmt.Errorf("close output: %w", cerr)
			}
			if err != nil {
				return err
			}
			if output != "" {
				printSuccess(cmd.ErrOrStderr(), "Unpacked %d nodes from %d chunks", result.Nodes, result.Chunks)
				printFile(cmd.ErrOrStderr(), output)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	return cmd
}

// nopCloser wraps an io.Writer to satisfy io.WriteCloser.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput opens path for writing. If path is empty, it returns the
// command's stdout wrapped in nopCloser.
func openOutput(cmd *cobra.Command, path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{cmd.OutOrStdout()}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	return f, nil
}
