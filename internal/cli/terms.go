package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackbom/pkg/ld"
)

// termsCommand creates the terms command.
func (c *CLI) termsCommand() *cobra.Command {
	var (
		flags termFlags
		kind  string
	)

	cmd := &cobra.Command{
		Use:   "terms",
		Short: "List the vocabulary terms known to the codec",
		Long: `Terms lists the BOM vocabulary together with the project terms declared in
the config file, as short name, kind and canonical IRI.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.baseOptions()
			flags.apply(cmd, &opts)

			var want ld.TermKind
			if kind != "" {
				k, err := ld.ParseTermKind(kind)
				if err != nil {
					return err
				}
				want = k
			}
			ctx, err := opts.TermContext()
			if err != nil {
				return err
			}

			var terms []ld.Term
			for _, t := range ctx.Terms() {
				if want == 0 || t.Kind == want {
					terms = append(terms, t)
				}
			}
			printTerms(cmd.OutOrStdout(), terms)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&kind, "kind", "k", "", "only list terms of this kind: type, data")
	return cmd
}

func printTerms(w io.Writer, terms []ld.Term) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(StyleDim).
		Headers("NAME", "KIND", "IRI").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return StyleTitle.Padding(0, 1)
			case col == 1:
				return styleKindTag.Padding(0, 1)
			default:
				return StyleValue.Padding(0, 1)
			}
		})
	for _, term := range terms {
		t.Row(term.Name, term.Kind.String(), term.IRI)
	}
	fmt.Fprintln(w, t.Render())
	printDetail(w, "%d terms", len(terms))
}
