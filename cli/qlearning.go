package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/samuelfneumann/gridagent/agent"
	"github.com/samuelfneumann/gridagent/agent/linear/discrete/qlearning"
	"github.com/samuelfneumann/gridagent/experiment"
	"github.com/samuelfneumann/gridagent/experiment/checkpointer"
	"github.com/samuelfneumann/gridagent/experiment/trackers"
	"github.com/samuelfneumann/gridagent/export"
	"github.com/samuelfneumann/gridagent/storage"
	ts "github.com/samuelfneumann/gridagent/timestep"
	"github.com/samuelfneumann/gridagent/utils/progressbar"
	"github.com/spf13/cobra"
)

// QLearningCommand returns the command training a Q-learning agent and
// replaying its greedy policy
func QLearningCommand() *cobra.Command {
	c := qlearning.DefaultConfig()
	var (
		from            string
		checkpointEvery int
		noProgress      bool
	)

	cmd := &cobra.Command{
		Use:   "qlearning",
		Short: "Learn a policy to the reward with tabular Q-learning",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQLearning(cmd, c, from, checkpointEvery, !noProgress)
		},
	}

	flags := cmd.Flags()
	flags.IntVarP(&c.Episodes, "episodes", "e", c.Episodes,
		"Number of training episodes")
	flags.IntVar(&c.MaxEpisodeSteps, "horizon", c.MaxEpisodeSteps,
		"Maximum number of steps of each episode")
	flags.Float64Var(&c.LearningRate, "learning-rate", c.LearningRate,
		"Learning rate")
	flags.Float64Var(&c.Discount, "discount", c.Discount, "Discount factor")
	flags.Float64Var(&c.Epsilon, "epsilon", c.Epsilon,
		"Exploration rate of the behaviour policy")
	flags.Float64Var(&c.Reward, "reward", c.Reward,
		"Reward for reaching the reward cell")
	flags.Float64Var(&c.StepPenalty, "step-penalty", c.StepPenalty,
		"Reward for every other move")
	flags.StringVar(&from, "from", "",
		"Cell as row,col to replay the learned policy from, the map's "+
			"start cell by default")
	flags.IntVar(&checkpointEvery, "checkpoint", 0,
		"Checkpoint values every n episodes, 0 to disable")
	flags.BoolVar(&noProgress, "no-progress", false,
		"Do not display a progress bar")
	return cmd
}

func runQLearning(cmd *cobra.Command, c qlearning.Config, from string,
	checkpointEvery int, progress bool) error {
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
	learner := s.Agent().(agent.Learner)

	returns := trackers.NewReturn(filepath.Join(cfg.ExportDir, "returns.bin"))
	lengths := trackers.NewEpisodeLength(filepath.Join(cfg.ExportDir,
		"lengths.bin"))
	s.Register("return", returns)
	s.Register("length", lengths)

	if checkpointEvery > 0 {
		filename := checkpointer.FilenameEnumerator(0,
			filepath.Join(cfg.ExportDir, "values"), ".bin")
		s.RegisterCheckpointer(checkpointer.NewNEpisode(checkpointEvery,
			learner, filename))
	}

	var bar *progressbar.ProgressBar
	if progress {
		bar = progressbar.NewProgressBar(cmd.ErrOrStderr(), 40, c.Episodes,
			100*time.Millisecond)
		episodes := 0
		s.Observe(func(_ agent.Agent, t ts.TimeStep) {
			if t.Last() && episodes < c.Episodes {
				episodes++
				bar.Increment()
			}
		})
	}

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer storage.CloseIfSupported(store)

	if err := os.MkdirAll(cfg.ExportDir, 0o755); err != nil {
		return err
	}
	if bar != nil {
		bar.Display()
	}
	err = s.Run(ctx)
	if bar != nil {
		bar.Close()
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "return  |  %v\n", trackers.Summarize(returns.Data()))
	fmt.Fprintf(out, "length  |  %v\n", trackers.Summarize(lengths.Data()))
	if err := s.Save(); err != nil {
		return err
	}
	if err := export.PlotCurve(returns.Data(), "Episodic return", "Return",
		filepath.Join(cfg.ExportDir, "returns.png")); err != nil {
		return err
	}

	replayFrom := world.Start()
	if from != "" {
		if replayFrom, err = parsePosition(from); err != nil {
			return err
		}
	}
	path, err := s.Replay(ctx, &replayFrom, c.MaxEpisodeSteps)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "greedy path from %v: %v\n", replayFrom, path)
	if !learner.Done() {
		fmt.Fprintf(out, "reward not reached within %d steps\n",
			c.MaxEpisodeSteps)
	}

	return finish(ctx, s, store, c.Reward)
}
