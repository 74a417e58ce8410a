// Package cli implements the gridagent command line interface
package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samuelfneumann/gridagent/config"
	"github.com/samuelfneumann/gridagent/environment/gridworld"
	"github.com/samuelfneumann/gridagent/experiment"
	"github.com/samuelfneumann/gridagent/export"
	"github.com/samuelfneumann/gridagent/storage"
	"github.com/spf13/cobra"
)

// Flags shared by all subcommands
var (
	envFile      string
	mapFile      string
	seed         uint64
	exportDir    string
	formats      []string
	stepInterval time.Duration
	pathInterval time.Duration
	redisAddr    string
	storeKind    string
	sqlitePath   string

	cfg config.Config
)

// GetRootCommand returns the root command with all subcommands added
func GetRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:           "gridagent",
		Short:         "Search gridworlds with A* and Q-learning",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd)
		},
	}

	flags := rootCommand.PersistentFlags()
	flags.StringVar(&envFile, "env", "", "The .env file to load, .env by default")
	flags.StringVarP(&mapFile, "map", "m", "", "CSV map file of the gridworld")
	flags.Uint64Var(&seed, "seed", 0, "Seed for agents and map generation")
	flags.StringVarP(&exportDir, "out", "o", config.DefaultExportDir,
		"Directory to export results to")
	flags.StringSliceVar(&formats, "formats", []string{"csv", "json"},
		"File formats to export: csv, json, png, heatmap")
	flags.DurationVar(&stepInterval, "step-interval",
		config.DefaultStepInterval, "Delay between search steps")
	flags.DurationVar(&pathInterval, "path-interval",
		config.DefaultPathInterval, "Delay between cells of the best path")
	flags.StringVar(&redisAddr, "redis", "",
		"Redis address to publish results to")
	flags.StringVar(&storeKind, "store", config.DefaultStore,
		"Result store: memory or sqlite")
	flags.StringVar(&sqlitePath, "sqlite", config.DefaultSQLitePath,
		"Database file of the sqlite store")

	rootCommand.AddCommand(AStarCommand())
	rootCommand.AddCommand(QLearningCommand())
	rootCommand.AddCommand(GenerateCommand())
	rootCommand.AddCommand(ServeCommand())
	return rootCommand
}

// loadConfig loads the configuration from the environment, overriding
// it with any flags set on the command line
func loadConfig(cmd *cobra.Command) error {
	var files []string
	if envFile != "" {
		files = append(files, envFile)
	}

	var err error
	if cfg, err = config.Load(files...); err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("out") {
		cfg.ExportDir = exportDir
	}
	if flags.Changed("step-interval") {
		cfg.StepInterval = stepInterval
	}
	if flags.Changed("path-interval") {
		cfg.PathInterval = pathInterval
	}
	if flags.Changed("redis") {
		cfg.RedisAddr = redisAddr
	}
	if flags.Changed("store") {
		cfg.Store = storeKind
	}
	if flags.Changed("sqlite") {
		cfg.SQLitePath = sqlitePath
	}
	return cfg.Validate()
}

// signalContext returns a context cancelled on interrupt
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// loadWorld reads the gridworld from the map flag
func loadWorld() (*gridworld.GridWorld, error) {
	if mapFile == "" {
		return nil, fmt.Errorf("no map given, use --map")
	}

	m, err := gridworld.ParseFile(mapFile)
	if err != nil {
		return nil, err
	}
	return gridworld.New(m)
}

// sessionConfig returns the experiment.Config of the loaded
// configuration for agents configured by c
func sessionConfig(c experiment.Config) experiment.Config {
	c.Seed = cfg.Seed
	c.StepInterval = cfg.StepInterval
	c.PathInterval = cfg.PathInterval
	return c
}

// openStore opens and initializes the configured result store
func openStore(ctx context.Context) (storage.Store, error) {
	store, err := storage.NewStore(cfg.Store, cfg.SQLitePath)
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		_ = storage.CloseIfSupported(store)
		return nil, err
	}
	return store, nil
}

// newExporter returns an Exporter for the configured formats, Redis
// and the result store of run runID. The returned function releases
// any resources held by the Exporter.
func newExporter(store storage.Store, runID string, reward float64) (
	export.Exporter, func(), error) {
	exporters := export.Multi{export.NewStore(store, runID)}
	closers := []func(){}
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	for _, format := range formats {
		var (
			e   export.Exporter
			err error
		)
		switch strings.ToLower(strings.TrimSpace(format)) {
		case "csv":
			e, err = export.NewCSV(cfg.ExportDir)
		case "json":
			e, err = export.NewJSON(cfg.ExportDir, true)
		case "png":
			e, err = export.NewPNG(cfg.ExportDir, 32, reward)
		case "heatmap":
			e, err = export.NewHeatmap(cfg.ExportDir)
		default:
			err = fmt.Errorf("unknown export format %q", format)
		}
		if err != nil {
			return nil, nil, err
		}
		exporters = append(exporters, e)
	}

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		closers = append(closers, func() {
			if err := client.Close(); err != nil {
				log.Printf("[APP] [ERROR] closing redis client: %v", err)
			}
		})
		prefix := cfg.RedisPrefix + ":" + runID
		exporters = append(exporters, export.NewRedis(client, prefix,
			cfg.RedisTTL))
	}

	return exporters, closeAll, nil
}

// finish exports the session's results and records the session in
// store
func finish(ctx context.Context, s *experiment.Session, store storage.Store,
	reward float64) error {
	e, closeExporter, err := newExporter(store, s.ID(), reward)
	if err != nil {
		return err
	}
	defer closeExporter()

	if err := s.Export(ctx, e); err != nil {
		return err
	}
	if err := s.Record(ctx, store); err != nil {
		return err
	}

	log.Printf("[APP] [INFO] session %v recorded in %v store", s.ID(),
		cfg.Store)
	return nil
}

// parsePosition parses a position given as "row,col"
func parsePosition(s string) (gridworld.Position, error) {
	row, col, ok := strings.Cut(s, ",")
	if !ok {
		return gridworld.Position{}, fmt.Errorf("position %q must be row,col",
			s)
	}

	r, err := strconv.Atoi(strings.TrimSpace(row))
	if err != nil {
		return gridworld.Position{}, fmt.Errorf("position %q: %w", s, err)
	}
	c, err := strconv.Atoi(strings.TrimSpace(col))
	if err != nil {
		return gridworld.Position{}, fmt.Errorf("position %q: %w", s, err)
	}
	return gridworld.Position{Row: r, Col: c}, nil
}
