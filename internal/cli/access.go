package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tessera/grammar"
	"tessera/internal/access"
)

// AccessOptions holds flags for the access command.
type AccessOptions struct {
	Block   string
	Buffer  string
	Require bool
}

// NewAccessCommand creates the access command: report how a buffer's
// address varies across the loops of a block's subtree.
func NewAccessCommand(opts *RootOptions) *cobra.Command {
	accessOpts := &AccessOptions{}

	cmd := &cobra.Command{
		Use:   "access <file>",
		Short: "Derive a buffer's access patterns within a block",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := grammar.ParseFile(args[0])
			if err != nil {
				return err
			}

			id := tree.Root().ID()
			if accessOpts.Block != "" {
				found, ok := tree.Find(accessOpts.Block)
				if !ok {
					return fmt.Errorf("no block named %q in %s", accessOpts.Block, args[0])
				}
				id = found
			}

			compute := access.Compute
			if accessOpts.Require {
				compute = access.Require
			}
			patterns, err := compute(tree, id, accessOpts.Buffer)
			if err != nil {
				return err
			}

			if len(patterns) == 0 {
				color.Yellow("Buffer %s is not accessed under block %s", accessOpts.Buffer, tree.Block(id).Name)
				return nil
			}
			for i, p := range patterns {
				printPattern(i, p)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&accessOpts.Block, "block", "", "block to analyze (default: root)")
	cmd.Flags().StringVar(&accessOpts.Buffer, "buffer", "", "buffer to analyze")
	cmd.Flags().BoolVar(&accessOpts.Require, "require", false, "fail if the buffer is never accessed")
	_ = cmd.MarkFlagRequired("buffer")
	return cmd
}

func printPattern(i int, p access.Pattern) {
	fmt.Printf("pattern %d: exterior=%t exact=%t offset=%d\n", i, p.Exterior, p.Exact, p.Offset)
	for _, idx := range p.Indices {
		fmt.Printf("  %-8s stride %-6d range %d\n", idx.Name, idx.Stride, idx.Range)
	}
	for _, c := range p.Constraints {
		fmt.Printf("  guard: %s\n", formatConstraint(p, c))
	}
}

// formatConstraint renders a row over the pattern's positional indices,
// e.g. "2*k[0] + 1*k[3] < 5".
func formatConstraint(p access.Pattern, c access.Constraint) string {
	var parts []string
	for i, coeff := range c.Coeffs {
		if coeff == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%d*%s[%d]", coeff, p.Indices[i].Name, i))
	}
	return fmt.Sprintf("%s < %d", strings.Join(parts, " + "), c.Bound)
}
