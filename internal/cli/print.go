package cli

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tessera/grammar"
	"tessera/internal/ir"
)

// NewPrintCommand creates the print command: parse a loop-nest file,
// validate it, and dump it back in canonical form.
func NewPrintCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "print <file>",
		Short: "Parse and pretty-print a loop-nest file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			tree, err := grammar.ParseFile(args[0])
			if err != nil {
				color.Red("Failed after %s", formatDuration(time.Since(start)))
				return err
			}
			fmt.Print(ir.Print(tree, tree.Root().ID()))
			if opts.Verbose {
				log.Infof("printed %d blocks from %s", tree.Len(), args[0])
			}
			return nil
		},
	}
	return cmd
}

func formatDuration(d time.Duration) string {
	switch {
	case d >= time.Second:
		return fmt.Sprintf("%.2fs", d.Seconds())
	case d >= time.Millisecond:
		return fmt.Sprintf("%.1fms", float64(d.Nanoseconds())/1000000.0)
	default:
		return fmt.Sprintf("%.1fµs", float64(d.Nanoseconds())/1000.0)
	}
}
