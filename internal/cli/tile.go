package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"tessera/grammar"
	"tessera/internal/ir"
	"tessera/internal/tiling"
)

// TileOptions holds flags for the tile command.
type TileOptions struct {
	Block  string
	Shape  string
	Shapes string
}

// NewTileCommand creates the tile command: apply tile shapes to blocks
// of a loop-nest file and print the rewritten tree.
func NewTileCommand(opts *RootOptions) *cobra.Command {
	tileOpts := &TileOptions{}

	cmd := &cobra.Command{
		Use:   "tile <file>",
		Short: "Split a block's loops into tile/inner levels",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()
			tree, err := grammar.ParseFile(args[0])
			if err != nil {
				return err
			}

			shapes, err := collectShapes(tileOpts)
			if err != nil {
				return err
			}
			for block, shape := range shapes {
				id, ok := tree.Find(block)
				if !ok {
					return fmt.Errorf("no block named %q in %s", block, args[0])
				}
				inner, err := tiling.Apply(tree, id, shape)
				if err != nil {
					return err
				}
				log.Infof("tiled block %s with shape %v into %s",
					block, shape, tree.Block(inner).Name)
			}

			fmt.Print(ir.Print(tree, tree.Root().ID()))
			color.Green("Tiled %d block(s) in %s", len(shapes), formatDuration(time.Since(start)))
			return nil
		},
	}

	cmd.Flags().StringVar(&tileOpts.Block, "block", "", "block to tile (with --shape)")
	cmd.Flags().StringVar(&tileOpts.Shape, "shape", "", "comma-separated tile sizes, one per index variable")
	cmd.Flags().StringVar(&tileOpts.Shapes, "shapes", "", "yaml file mapping block names to tile shapes")
	return cmd
}

// collectShapes merges the --block/--shape pair and the --shapes file
// into one block-to-shape mapping.
func collectShapes(opts *TileOptions) (map[string][]int64, error) {
	shapes := make(map[string][]int64)

	if opts.Shapes != "" {
		data, err := os.ReadFile(opts.Shapes)
		if err != nil {
			return nil, fmt.Errorf("failed to read shapes file: %w", err)
		}
		if err := yaml.Unmarshal(data, &shapes); err != nil {
			return nil, fmt.Errorf("failed to parse shapes file: %w", err)
		}
	}

	if opts.Shape != "" {
		if opts.Block == "" {
			return nil, fmt.Errorf("--shape requires --block")
		}
		shape, err := parseShape(opts.Shape)
		if err != nil {
			return nil, err
		}
		shapes[opts.Block] = shape
	}

	if len(shapes) == 0 {
		return nil, fmt.Errorf("nothing to tile: pass --block/--shape or --shapes")
	}
	return shapes, nil
}

func parseShape(s string) ([]int64, error) {
	parts := strings.Split(s, ",")
	shape := make([]int64, 0, len(parts))
	for _, part := range parts {
		size, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad tile size %q: %w", part, err)
		}
		shape = append(shape, size)
	}
	return shape, nil
}
