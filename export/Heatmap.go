package export

import (
	"context"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"

	"github.com/samuelfneumann/gridagent/agent"
	"github.com/samuelfneumann/gridagent/environment/gridworld"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const (
	HeatmapFile     string = "heatmap.png"
	heatmapColours  int    = 32
	heatmapCellSize        = 0.5 * vg.Inch
)

// ValueGrid is a plotter.GridXYZ over the greatest defined action value
// of each cell of a grid. Obstacles have no value and are NaN. Row 0 of
// the grid is drawn at the top of the plot.
type ValueGrid struct {
	world *gridworld.GridWorld
	table agent.ValueTable
}

var _ plotter.GridXYZ = ValueGrid{}

// NewValueGrid returns a new ValueGrid
func NewValueGrid(world *gridworld.GridWorld, table agent.ValueTable) ValueGrid {
	return ValueGrid{world, table}
}

// Dims returns the number of columns and rows of the grid
func (v ValueGrid) Dims() (c, r int) {
	rows, cols := v.world.Dims()
	return cols, rows
}

// Z returns the value of the cell drawn at column c and row r
func (v ValueGrid) Z(c, r int) float64 {
	rows, _ := v.world.Dims()
	p := gridworld.Position{Row: rows - 1 - r, Col: c}
	if cellKind(v.world, p) == gridworld.Obstacle {
		return math.NaN()
	}

	max := math.Inf(-1)
	for _, value := range definedValues(v.world, v.table, p) {
		max = math.Max(max, value)
	}
	if math.IsInf(max, -1) {
		return math.NaN()
	}
	return max
}

func (v ValueGrid) X(c int) float64 { return float64(c) }
func (v ValueGrid) Y(r int) float64 { return float64(r) }

// Min returns the smallest value on the grid
func (v ValueGrid) Min() float64 {
	min, _ := v.bounds()
	return min
}

// Max returns the largest value on the grid
func (v ValueGrid) Max() float64 {
	_, max := v.bounds()
	return max
}

// bounds returns the smallest and largest values on the grid. If the
// grid has no values or all values are equal, the returned range still
// has unit width so that colours can be assigned.
func (v ValueGrid) bounds() (min, max float64) {
	min, max = math.Inf(1), math.Inf(-1)
	cols, rows := v.Dims()
	for c := 0; c < cols; c++ {
		for r := 0; r < rows; r++ {
			z := v.Z(c, r)
			if math.IsNaN(z) {
				continue
			}
			min = math.Min(min, z)
			max = math.Max(max, z)
		}
	}

	if math.IsInf(min, 1) {
		return 0, 1
	}
	if max == min {
		max = min + 1
	}
	return min, max
}

// Heatmap exports heatmaps of learned values to a directory. Paths are
// not drawn by Heatmap.
type Heatmap struct {
	dir string
}

// NewHeatmap returns a new Heatmap Exporter writing to dir, creating
// dir if needed
func NewHeatmap(dir string) (*Heatmap, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("newHeatmap: %w", err)
	}
	return &Heatmap{dir}, nil
}

// ExportPath does nothing
func (h *Heatmap) ExportPath(context.Context, *gridworld.GridWorld,
	[]gridworld.Position) error {
	return nil
}

// ExportValues plots the greatest action value of each cell to
// HeatmapFile
func (h *Heatmap) ExportValues(_ context.Context, world *gridworld.GridWorld,
	table agent.ValueTable) error {
	p := HeatmapPlot(world, table)

	rows, cols := world.Dims()
	filename := filepath.Join(h.dir, HeatmapFile)
	err := p.Save(vg.Length(cols+1)*heatmapCellSize,
		vg.Length(rows+1)*heatmapCellSize, filename)
	if err != nil {
		return fmt.Errorf("exportValues: %w", err)
	}

	log.Printf("[APP] [INFO] exported heatmap to %v", filename)
	return nil
}

// HeatmapPlot returns a plot of the greatest action value of each cell
// of world
func HeatmapPlot(world *gridworld.GridWorld, table agent.ValueTable) *plot.Plot {
	grid := NewValueGrid(world, table)

	heatmap := plotter.NewHeatMap(grid, palette.Heat(heatmapColours, 1))
	heatmap.Min, heatmap.Max = grid.bounds()

	p := plot.New()
	p.Title.Text = "Action values"
	p.X.Label.Text = "Column"
	p.Y.Label.Text = "Row (reversed)"
	p.Add(heatmap)
	return p
}

// PlotCurve plots data, such as the per-episode data of a tracker,
// against the episode number and saves the plot to filename
func PlotCurve(data []float64, title, yLabel, filename string) error {
	if len(data) == 0 {
		return fmt.Errorf("plotCurve: no data to plot")
	}

	points := make(plotter.XYs, len(data))
	for i, v := range data {
		points[i] = plotter.XY{X: float64(i + 1), Y: v}
	}

	line, err := plotter.NewLine(points)
	if err != nil {
		return fmt.Errorf("plotCurve: %w", err)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Episode"
	p.Y.Label.Text = yLabel
	p.Add(line)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, filename); err != nil {
		return fmt.Errorf("plotCurve: %w", err)
	}
	return nil
}
