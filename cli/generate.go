package cli

import (
	"io"
	"log"
	"os"

	"github.com/samuelfneumann/gridagent/environment/gridworld"
	"github.com/spf13/cobra"
)

// GenerateCommand returns the command generating random maps
func GenerateCommand() *cobra.Command {
	var (
		rows, cols int
		density    float64
		output     string
		maze       bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a random map with a path from start to reward",
		Long: "Generate a random map with a path from start to reward.\n\n" +
			"With --maze, rows and cols count maze cells and the map is a " +
			"perfect maze of 2*rows+1 by 2*cols+1 cells.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				m   gridworld.GridMap
				err error
			)
			if maze {
				m, err = gridworld.GenerateMaze(rows, cols, cfg.Seed)
			} else {
				m, err = gridworld.Generate(rows, cols, density, cfg.Seed)
			}
			if err != nil {
				return err
			}

			var out io.Writer = cmd.OutOrStdout()
			if output != "" {
				file, err := os.Create(output)
				if err != nil {
					return err
				}
				defer file.Close()
				out = file
			}

			if err := gridworld.Format(out, m); err != nil {
				return err
			}
			if output != "" {
				r, c := m.Dims()
				log.Printf("[APP] [INFO] wrote %dx%d map to %v", r, c, output)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&rows, "rows", 10, "Number of rows")
	flags.IntVar(&cols, "cols", 10, "Number of columns")
	flags.Float64Var(&density, "density", 0.25,
		"Probability that a cell off the guaranteed path is an obstacle")
	flags.StringVar(&output, "output", "", "File to write the map to, "+
		"stdout by default")
	flags.BoolVar(&maze, "maze", false, "Generate a perfect maze instead "+
		"of a random obstacle map")
	return cmd
}
