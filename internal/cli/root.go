// Package cli wires the tessera commands: parsing textual loop nests,
// applying tile shapes, and querying buffer access patterns.
package cli

import (
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	Verbose bool
}

var log = commonlog.GetLogger("tessera")

// NewRootCommand creates the root command for the tessera CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "tessera",
		Short: "Loop-tiling and buffer-access analysis for loop-nest kernels",
		Long: "tessera transforms textual loop-nest kernels: it splits loop dimensions\n" +
			"into tile/inner levels and derives each buffer's linear addressing\n" +
			"behavior (strides, ranges, offsets, boundary constraints).",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			verbosity := 0
			if opts.Verbose {
				verbosity = 1
			}
			commonlog.Configure(verbosity, nil)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewPrintCommand(opts))
	cmd.AddCommand(NewTileCommand(opts))
	cmd.AddCommand(NewAccessCommand(opts))

	return cmd
}
