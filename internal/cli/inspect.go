package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stackbom/pkg/chunk"
	"github.com/matzehuels/stackbom/pkg/pipeline"
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		flags  termFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "inspect <archive>",
		Short: "Show an archive's metadata and entries",
		Long: `Inspect decodes every entry of an archive and reports the metadata, each
entry's size and SHA-256 digest, and the number of nodes of each kind per
chunk. A corrupt archive fails the command.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.baseOptions()
			flags.apply(cmd, &opts)

			insp, err := c.newRunner().Inspect(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(insp)
			}
			printInspection(cmd.OutOrStdout(), insp)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the inspection as JSON")
	return cmd
}

func printInspection(w io.Writer, insp *pipeline.Inspection) {
	m := insp.Metadata
	fmt.Fprintln(w, StyleTitle.Render(insp.Path))
	printKeyValue(w, "run", m.RunID)
	printKeyValue(w, "created", m.CreatedAt.Format(time.RFC3339))
	printKeyValue(w, "creator", m.Creator)
	format := m.Format
	if m.Compression != "" && m.Compression != "none" {
		format += "+" + m.Compression
	}
	printKeyValue(w, "format", format)
	printKeyValue(w, "max/chunk", fmt.Sprint(m.MaxPerChunk))
	if m.Base != "" {
		printKeyValue(w, "base", m.Base)
	}
	for _, k := range slices.Sorted(maps.Keys(m.Properties)) {
		printKeyValue(w, k, m.Properties[k])
	}

	fmt.Fprintln(w)
	kinds := kindNames()
	for _, e := range insp.Entries {
		printFile(w, fmt.Sprintf("%s %s", e.Name, StyleDim.Render(fmt.Sprintf("%d bytes sha256:%s", e.Size, e.Digest[:12]))))
		printCounts(w, kinds, e.Counts)
	}
	printStats(w, insp.Nodes, len(insp.Entries)-1)
}

func kindNames() []string {
	names := make([]string, len(chunk.Kinds))
	for i, k := range chunk.Kinds {
		names[i] = k.String()
	}
	return names
}
