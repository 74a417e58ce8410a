package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samuelfneumann/gridagent/agent"
	"github.com/samuelfneumann/gridagent/agent/linear/discrete/qlearning"
	"github.com/samuelfneumann/gridagent/environment/gridworld"
	"github.com/samuelfneumann/gridagent/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const corridor = "1,0,0\n3,3,0\n0,0,2\n"

var corridorPath = []gridworld.Position{
	{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: 2},
	{Row: 1, Col: 2}, {Row: 2, Col: 2},
}

func newWorld(t *testing.T, csv string) *gridworld.GridWorld {
	t.Helper()
	m, err := gridworld.Parse(strings.NewReader(csv))
	require.NoError(t, err)
	world, err := gridworld.New(m)
	require.NoError(t, err)
	return world
}

// newTable returns a table over world where the value of each move is
// its destination's column
func newTable(world *gridworld.GridWorld) agent.ValueTable {
	table := make(agent.ValueTable, world.Len())
	for i := 0; i < world.Len(); i++ {
		p := world.Position(i)
		var values agent.ActionValues
		for _, d := range gridworld.Directions {
			values[d] = float64(p.Move(d).Col)
		}
		table[p] = values
	}
	return table
}

type failingExporter struct{ err error }

func (f failingExporter) ExportPath(context.Context, *gridworld.GridWorld,
	[]gridworld.Position) error {
	return f.err
}

func (f failingExporter) ExportValues(context.Context, *gridworld.GridWorld,
	agent.ValueTable) error {
	return f.err
}

func TestWritePathCSV(t *testing.T) {
	world := newWorld(t, corridor)

	var buf bytes.Buffer
	require.NoError(t, WritePathCSV(&buf, world, corridorPath))
	assert.Equal(t, "1,P,P\n3,3,P\n0,0,2\n", buf.String())

	outside := append(corridorPath, gridworld.Position{Row: 3, Col: 2})
	err := WritePathCSV(&buf, world, outside)
	assert.ErrorIs(t, err, gridworld.ErrOutOfBounds)
}

func TestWriteValuesCSV(t *testing.T) {
	world := newWorld(t, "1,2\n")

	var buf bytes.Buffer
	require.NoError(t, WriteValuesCSV(&buf, world, newTable(world)))
	assert.Equal(t,
		"row,col,Up,Down,Left,Right\n0,0,,,,1\n0,1,,,0,\n", buf.String())
}

func TestCSVExporter(t *testing.T) {
	world := newWorld(t, corridor)
	dir := filepath.Join(t.TempDir(), "out")

	e, err := NewCSV(dir)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, e.ExportPath(ctx, world, corridorPath))
	require.NoError(t, e.ExportValues(ctx, world, newTable(world)))

	// The exported path is still a valid map once the marks are cleared
	data, err := os.ReadFile(filepath.Join(dir, PathCSVFile))
	require.NoError(t, err)
	cleared := strings.ReplaceAll(string(data), PathMarker, gridworld.EmptyMarker)
	m, err := gridworld.Parse(strings.NewReader(cleared))
	require.NoError(t, err)
	assert.Equal(t, world.Map(), m)

	_, err = os.Stat(filepath.Join(dir, ValuesCSVFile))
	assert.NoError(t, err)
}

func TestJSONExporter(t *testing.T) {
	world := newWorld(t, corridor)
	dir := t.TempDir()

	e, err := NewJSON(dir, true)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, e.ExportPath(ctx, world, corridorPath))
	require.NoError(t, e.ExportValues(ctx, world, newTable(world)))

	var path PathDocument
	data, err := os.ReadFile(filepath.Join(dir, PathJSONFile))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &path))
	assert.Equal(t, 3, path.Rows)
	assert.Equal(t, 3, path.Cols)
	assert.Equal(t, world.Start(), path.Start)
	assert.Equal(t, world.Reward(), path.Reward)
	assert.Equal(t, corridorPath, path.Path)

	var values ValuesDocument
	data, err = os.ReadFile(filepath.Join(dir, ValuesJSONFile))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &values))
	require.Len(t, values.Values, world.Len())
	assert.Equal(t, gridworld.Position{}, values.Values[0].Position)
	assert.Equal(t, map[string]float64{"Down": 0, "Right": 1},
		values.Values[0].Values)
}

func TestPNGExporter(t *testing.T) {
	world := newWorld(t, corridor)
	dir := t.TempDir()

	_, err := NewPNG(dir, 0, 100)
	assert.Error(t, err)

	e, err := NewPNG(dir, 10, 100)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, e.ExportPath(ctx, world, corridorPath))
	require.NoError(t, e.ExportValues(ctx, world, newTable(world)))

	for _, name := range []string{PathPNGFile, ValuesPNGFile} {
		file, err := os.Open(filepath.Join(dir, name))
		require.NoError(t, err)
		img, err := png.Decode(file)
		require.NoError(t, file.Close())
		require.NoError(t, err)
		assert.Equal(t, 30, img.Bounds().Dx())
		assert.Equal(t, 30, img.Bounds().Dy())
	}
}

func TestRenderPath(t *testing.T) {
	world := newWorld(t, corridor)

	img, err := RenderPath(world, corridorPath, 10)
	require.NoError(t, err)

	// Centre of a path cell and of an unvisited empty cell
	r, g, b, _ := img.At(15, 5).RGBA()
	assert.Equal(t, [3]uint32{52, 168, 83}, [3]uint32{r >> 8, g >> 8, b >> 8})
	r, g, b, _ = img.At(5, 25).RGBA()
	assert.Equal(t, [3]uint32{245, 245, 245},
		[3]uint32{r >> 8, g >> 8, b >> 8})

	_, err = RenderPath(world, []gridworld.Position{{Row: -1, Col: 0}}, 10)
	assert.ErrorIs(t, err, gridworld.ErrOutOfBounds)
}

func TestValueGrid(t *testing.T) {
	world := newWorld(t, corridor)
	grid := NewValueGrid(world, newTable(world))

	c, r := grid.Dims()
	assert.Equal(t, 3, c)
	assert.Equal(t, 3, r)

	// Row 0 of the plot is the bottom row of the grid
	assert.Equal(t, 1.0, grid.Z(0, 0))
	assert.True(t, math.IsNaN(grid.Z(0, 1)))
	assert.Equal(t, 2.0, grid.Z(1, 2))
	assert.Equal(t, 1.0, grid.Min())
	assert.Equal(t, 2.0, grid.Max())

	flat := NewValueGrid(world, make(agent.ValueTable))
	assert.Equal(t, 0.0, flat.Min())
	assert.Equal(t, 1.0, flat.Max())
}

func TestHeatmapExporter(t *testing.T) {
	world := newWorld(t, corridor)
	dir := t.TempDir()

	e, err := NewHeatmap(dir)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, e.ExportPath(ctx, world, corridorPath))
	require.NoError(t, e.ExportValues(ctx, world, newTable(world)))

	_, err = os.Stat(filepath.Join(dir, HeatmapFile))
	assert.NoError(t, err)
}

func TestPlotCurve(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "returns.png")
	require.NoError(t, PlotCurve([]float64{-3, -1, 2, 5}, "Returns",
		"Return", filename))
	_, err := os.Stat(filename)
	assert.NoError(t, err)

	assert.Error(t, PlotCurve(nil, "Returns", "Return", filename))
}

func TestStoreExporter(t *testing.T) {
	world := newWorld(t, corridor)
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Init(ctx))

	e := NewStore(store, "run")
	table := newTable(world)
	require.NoError(t, e.ExportPath(ctx, world, corridorPath))
	require.NoError(t, e.ExportValues(ctx, world, table))

	path, ok, err := store.GetPath(ctx, "run")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, corridorPath, path)

	values, ok, err := store.GetValues(ctx, "run")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, table.Equal(values))
}

func TestMulti(t *testing.T) {
	world := newWorld(t, corridor)
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Init(ctx))

	errA, errB := errors.New("a"), errors.New("b")
	m := Multi{failingExporter{errA}, NewStore(store, "run"),
		failingExporter{errB}}

	err := m.ExportPath(ctx, world, corridorPath)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)

	// Exporters after a failing one still run
	_, ok, err := store.GetPath(ctx, "run")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.NoError(t, Multi{}.ExportValues(ctx, world, newTable(world)))
}

func TestDefinedSumMatchesLearner(t *testing.T) {
	world := newWorld(t, corridor)
	q, err := qlearning.New(world, world.Start(), world.Reward(),
		qlearning.DefaultConfig(), 4)
	require.NoError(t, err)
	for i := 0; i < 300; i++ {
		q.Step()
	}

	table := q.ValueTable()
	for _, p := range table.Positions() {
		want, err := q.SumValueForCell(p)
		require.NoError(t, err)
		assert.Equal(t, want, definedSum(world, table, p), "%v", p)
	}
}

func TestCellField(t *testing.T) {
	p := gridworld.Position{Row: 12, Col: 3}
	parsed, err := parseCellField(cellField(p))
	require.NoError(t, err)
	assert.Equal(t, p, parsed)

	for _, field := range []string{"", "1", "a,1", "1,b"} {
		_, err := parseCellField(field)
		assert.Error(t, err, field)
	}
}

// TestRedisExporter runs against the Redis server at
// GRIDAGENT_TEST_REDIS_ADDR and is skipped if it is unset
func TestRedisExporter(t *testing.T) {
	addr := os.Getenv("GRIDAGENT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("GRIDAGENT_TEST_REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()
	ctx := context.Background()
	require.NoError(t, client.Ping(ctx).Err())

	world := newWorld(t, corridor)
	e := NewRedis(client, "gridagent-test:"+t.Name(), time.Minute)
	defer client.Del(ctx, e.PathKey(), e.ValuesKey())

	require.NoError(t, e.ExportPath(ctx, world, corridorPath))
	path, err := e.LoadPath(ctx)
	require.NoError(t, err)
	assert.Equal(t, corridorPath, path)

	ttl, err := client.TTL(ctx, e.PathKey()).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, e.ExportValues(ctx, world, newTable(world)))
	values, err := e.LoadValues(ctx)
	require.NoError(t, err)
	assert.Len(t, values, world.Len())
	assert.Equal(t, map[string]float64{"Down": 0, "Right": 1},
		values[gridworld.Position{}])
}
