package export

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samuelfneumann/gridagent/agent"
	"github.com/samuelfneumann/gridagent/environment/gridworld"
)

// Redis publishes search results to Redis. The path is stored as a list
// of "row,col" cells at <prefix>:path and the values as a hash from
// "row,col" to the JSON encoded defined values of the cell at
// <prefix>:values. Keys expire after ttl, or never if ttl <= 0.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis returns a new Redis Exporter
func NewRedis(client *redis.Client, prefix string, ttl time.Duration) *Redis {
	return &Redis{client, prefix, ttl}
}

// PathKey returns the key under which paths are stored
func (r *Redis) PathKey() string { return r.prefix + ":path" }

// ValuesKey returns the key under which values are stored
func (r *Redis) ValuesKey() string { return r.prefix + ":values" }

// ExportPath replaces the stored path with path
func (r *Redis) ExportPath(ctx context.Context, world *gridworld.GridWorld,
	path []gridworld.Position) error {
	if err := checkPath(world, path); err != nil {
		return fmt.Errorf("exportPath: %w", err)
	}

	cells := make([]interface{}, len(path))
	for i, p := range path {
		cells[i] = cellField(p)
	}

	key := r.PathKey()
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(cells) > 0 {
			pipe.RPush(ctx, key, cells...)
			r.expire(ctx, pipe, key)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("exportPath: %w", err)
	}

	log.Printf("[APP] [INFO] exported path to redis key %v", key)
	return nil
}

// ExportValues replaces the stored values with the defined values of
// each cell of table
func (r *Redis) ExportValues(ctx context.Context, world *gridworld.GridWorld,
	table agent.ValueTable) error {
	fields := make(map[string]interface{}, len(table))
	for _, p := range table.Positions() {
		data, err := json.Marshal(definedValues(world, table, p))
		if err != nil {
			return fmt.Errorf("exportValues: %w", err)
		}
		fields[cellField(p)] = string(data)
	}

	key := r.ValuesKey()
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(fields) > 0 {
			pipe.HSet(ctx, key, fields)
			r.expire(ctx, pipe, key)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("exportValues: %w", err)
	}

	log.Printf("[APP] [INFO] exported values to redis key %v", key)
	return nil
}

// LoadPath returns the stored path
func (r *Redis) LoadPath(ctx context.Context) ([]gridworld.Position, error) {
	cells, err := r.client.LRange(ctx, r.PathKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("loadPath: %w", err)
	}

	path := make([]gridworld.Position, len(cells))
	for i, cell := range cells {
		if path[i], err = parseCellField(cell); err != nil {
			return nil, fmt.Errorf("loadPath: %w", err)
		}
	}
	return path, nil
}

// LoadValues returns the stored defined values of each cell, keyed by
// direction name
func (r *Redis) LoadValues(ctx context.Context) (
	map[gridworld.Position]map[string]float64, error) {
	fields, err := r.client.HGetAll(ctx, r.ValuesKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("loadValues: %w", err)
	}

	values := make(map[gridworld.Position]map[string]float64, len(fields))
	for field, data := range fields {
		p, err := parseCellField(field)
		if err != nil {
			return nil, fmt.Errorf("loadValues: %w", err)
		}

		var cell map[string]float64
		if err := json.Unmarshal([]byte(data), &cell); err != nil {
			return nil, fmt.Errorf("loadValues: cell %v: %w", p, err)
		}
		values[p] = cell
	}
	return values, nil
}

func (r *Redis) expire(ctx context.Context, pipe redis.Pipeliner, key string) {
	if r.ttl > 0 {
		pipe.Expire(ctx, key, r.ttl)
	}
}

func cellField(p gridworld.Position) string {
	return strconv.Itoa(p.Row) + "," + strconv.Itoa(p.Col)
}

func parseCellField(field string) (gridworld.Position, error) {
	row, col, ok := strings.Cut(field, ",")
	if !ok {
		return gridworld.Position{}, fmt.Errorf("malformed cell %q", field)
	}

	r, err := strconv.Atoi(row)
	if err != nil {
		return gridworld.Position{}, fmt.Errorf("malformed cell %q: %w",
			field, err)
	}
	c, err := strconv.Atoi(col)
	if err != nil {
		return gridworld.Position{}, fmt.Errorf("malformed cell %q: %w",
			field, err)
	}
	return gridworld.Position{Row: r, Col: c}, nil
}
