// Package config loads the application's configuration from the
// environment and an optional .env file
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultStepInterval time.Duration = 3 * time.Millisecond
	DefaultPathInterval time.Duration = 200 * time.Millisecond
	DefaultExportDir    string        = "out"
	DefaultStore        string        = "memory"
	DefaultSQLitePath   string        = "gridagent.db"
	DefaultServerAddr   string        = ":8080"
	DefaultRedisPrefix  string        = "gridagent"
	DefaultGinMode      string        = "release"
)

// Environment variables read by Load
const (
	StepIntervalEnv = "GRIDAGENT_STEP_INTERVAL"
	PathIntervalEnv = "GRIDAGENT_PATH_INTERVAL"
	ExportDirEnv    = "GRIDAGENT_EXPORT_DIR"
	RedisAddrEnv    = "GRIDAGENT_REDIS_ADDR"
	RedisPrefixEnv  = "GRIDAGENT_REDIS_PREFIX"
	RedisTTLEnv     = "GRIDAGENT_REDIS_TTL"
	StoreEnv        = "GRIDAGENT_STORE"
	SQLitePathEnv   = "GRIDAGENT_SQLITE_PATH"
	ServerAddrEnv   = "GRIDAGENT_SERVER_ADDR"
	SeedEnv         = "GRIDAGENT_SEED"
	GinModeEnv      = "GIN_MODE"
)

// Config holds the application's configuration values
type Config struct {
	StepInterval time.Duration // Delay between search steps
	PathInterval time.Duration // Delay between cells of a walked path
	ExportDir    string        // Directory for file exports
	RedisAddr    string        // Redis address, empty to disable Redis export
	RedisPrefix  string        // Prefix of Redis export keys
	RedisTTL     time.Duration // Expiry of Redis export keys, 0 for none
	Store        string        // Result store backend: memory or sqlite
	SQLitePath   string        // Database file of the sqlite store
	ServerAddr   string        // Listen address of the HTTP driver
	Seed         uint64        // Seed for agents and map generation
	GinMode      string        // Mode for the Gin framework
}

// Default returns the default configuration
func Default() Config {
	return Config{
		StepInterval: DefaultStepInterval,
		PathInterval: DefaultPathInterval,
		ExportDir:    DefaultExportDir,
		RedisPrefix:  DefaultRedisPrefix,
		Store:        DefaultStore,
		SQLitePath:   DefaultSQLitePath,
		ServerAddr:   DefaultServerAddr,
		GinMode:      DefaultGinMode,
	}
}

// Load loads the given .env files, or .env in the working directory if
// none are given, and returns the configuration read from the
// environment. Missing .env files are not an error. Variables already
// set in the environment take precedence over .env files, and unset
// variables take their defaults.
func Load(filenames ...string) (Config, error) {
	if err := godotenv.Load(filenames...); err != nil {
		log.Printf("[APP] [INFO] .env file not found or could not be "+
			"loaded: %v", err)
	}

	c := Default()
	var err error
	if c.StepInterval, err = getEnvAsDuration(StepIntervalEnv,
		c.StepInterval); err != nil {
		return Config{}, fmt.Errorf("load: %w", err)
	}
	if c.PathInterval, err = getEnvAsDuration(PathIntervalEnv,
		c.PathInterval); err != nil {
		return Config{}, fmt.Errorf("load: %w", err)
	}
	if c.RedisTTL, err = getEnvAsDuration(RedisTTLEnv, c.RedisTTL); err != nil {
		return Config{}, fmt.Errorf("load: %w", err)
	}
	if c.Seed, err = getEnvAsUint(SeedEnv, c.Seed); err != nil {
		return Config{}, fmt.Errorf("load: %w", err)
	}

	c.ExportDir = getEnvWithDefault(ExportDirEnv, c.ExportDir)
	c.RedisAddr = getEnvWithDefault(RedisAddrEnv, c.RedisAddr)
	c.RedisPrefix = getEnvWithDefault(RedisPrefixEnv, c.RedisPrefix)
	c.Store = getEnvWithDefault(StoreEnv, c.Store)
	c.SQLitePath = getEnvWithDefault(SQLitePathEnv, c.SQLitePath)
	c.ServerAddr = getEnvWithDefault(ServerAddrEnv, c.ServerAddr)
	c.GinMode = getEnvWithDefault(GinModeEnv, c.GinMode)

	return c, c.Validate()
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if c.StepInterval < 0 || c.PathInterval < 0 {
		return fmt.Errorf("validate: intervals must be non-negative")
	}
	if c.RedisTTL < 0 {
		return fmt.Errorf("validate: redis ttl must be non-negative")
	}
	switch c.Store {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("validate: unknown store %q", c.Store)
	}
	return nil
}

// getEnvWithDefault retrieves the value of an environment variable or
// returns a default value if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsDuration retrieves an environment variable as a duration,
// such as "3ms", or returns a default value if not set
func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration,
	error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("environment variable %s must be a duration: %w",
			key, err)
	}
	return d, nil
}

// getEnvAsUint retrieves an environment variable as an unsigned integer
// or returns a default value if not set
func getEnvAsUint(key string, defaultValue uint64) (uint64, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}

	u, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("environment variable %s must be an unsigned "+
			"integer: %w", key, err)
	}
	return u, nil
}
