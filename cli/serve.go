package cli

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/samuelfneumann/gridagent/agent"
	"github.com/samuelfneumann/gridagent/agent/linear/discrete/qlearning"
	"github.com/samuelfneumann/gridagent/agent/search/astar"
	"github.com/samuelfneumann/gridagent/experiment"
	"github.com/samuelfneumann/gridagent/server"
	"github.com/spf13/cobra"
)

// ServeCommand returns the command serving a search session over HTTP
func ServeCommand() *cobra.Command {
	var (
		agentType string
		addr      string
		episodes  int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Drive a search session over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			var c agent.Config
			switch agent.Type(agentType) {
			case agent.AStar, "astar":
				c = astar.Config{}
			case agent.EGreedyQLearningTabular, "qlearning":
				q := qlearning.DefaultConfig()
				q.Episodes = episodes
				c = q
			default:
				return fmt.Errorf("unknown agent %q, registered agents are %v",
					agentType, agent.Registered())
			}

			world, err := loadWorld()
			if err != nil {
				return err
			}
			s, err := sessionConfig(experiment.NewConfig(c, cfg.Seed)).
				CreateSession(world)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("addr") {
				cfg.ServerAddr = addr
			}
			gin.SetMode(cfg.GinMode)

			return server.NewRouter(server.Config{
				Addr:        cfg.ServerAddr,
				BaseURL:     "/api",
				Controllers: []server.Controller{server.NewSessionController(s)},
			}).Run()
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&agentType, "agent", "a", "astar",
		"Agent to serve: astar or qlearning")
	flags.StringVar(&addr, "addr", "", "Address to listen on")
	flags.IntVarP(&episodes, "episodes", "e", qlearning.DefaultEpisodes,
		"Number of Q-learning training episodes")
	return cmd
}
