package cli

import (
	"fmt"

	"github.com/samuelfneumann/gridagent/agent/search/astar"
	"github.com/samuelfneumann/gridagent/environment/gridworld"
	"github.com/samuelfneumann/gridagent/experiment"
	"github.com/samuelfneumann/gridagent/storage"
	"github.com/spf13/cobra"
)

// AStarCommand returns the command running an A* search
func AStarCommand() *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "astar",
		Short: "Search for the shortest path to the reward with A*",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := astar.Config{}
			if from != "" {
				start, err := parsePosition(from)
				if err != nil {
					return err
				}
				c.Start = &start
			}
			return runAStar(cmd, c)
		},
	}
	cmd.Flags().StringVar(&from, "from", "",
		"Start cell as row,col, the map's start cell by default")
	return cmd
}

func runAStar(cmd *cobra.Command, c astar.Config) error {
	ctx, cancel := signalContext()
	defer cancel()

	world, err := loadWorld()
	if err != nil {
		return err
	}

	s, err := sessionConfig(experiment.NewConfig(c, cfg.Seed)).
		CreateSession(world)
	if err != nil {
		return err
	}

	if err := s.Run(ctx); err != nil {
		return err
	}

	a := s.Agent().(*astar.AStar)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "search %v after %d steps\n", a.State(), a.Steps())
	if a.State() != astar.Found {
		return astar.ErrNoPath
	}

	err = s.WalkBestPath(ctx, func(p gridworld.Position) {
		fmt.Fprintln(out, p)
	})
	if err != nil {
		return err
	}

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer storage.CloseIfSupported(store)

	return finish(ctx, s, store, 0)
}
