package export

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
	"github.com/samuelfneumann/gridagent/agent"
	"github.com/samuelfneumann/gridagent/agent/linear/discrete/qlearning"
	"github.com/samuelfneumann/gridagent/environment/gridworld"
)

const (
	PathPNGFile   string = "path.png"
	ValuesPNGFile string = "values.png"
)

var (
	emptyColour    = color.RGBA{245, 245, 245, 255}
	obstacleColour = color.RGBA{60, 60, 60, 255}
	startColour    = color.RGBA{66, 133, 244, 255}
	rewardColour   = color.RGBA{251, 188, 5, 255}
	pathColour     = color.RGBA{52, 168, 83, 255}
	gridColour     = color.RGBA{200, 200, 200, 255}
)

// PNG exports images of the grid to PNG files in a directory
type PNG struct {
	dir      string
	cellSize int
	reward   float64
}

// NewPNG returns a new PNG Exporter which writes to dir, creating dir
// if needed. Each cell is drawn cellSize pixels wide. reward is the
// reward of the reward cell, which scales the illumination of cells
// when drawing values.
func NewPNG(dir string, cellSize int, reward float64) (*PNG, error) {
	if cellSize < 1 {
		return nil, fmt.Errorf("newPNG: cell size must be positive, have %d",
			cellSize)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("newPNG: %w", err)
	}
	return &PNG{dir, cellSize, reward}, nil
}

// ExportPath draws world with path to PathPNGFile
func (p *PNG) ExportPath(_ context.Context, world *gridworld.GridWorld,
	path []gridworld.Position) error {
	img, err := RenderPath(world, path, p.cellSize)
	if err != nil {
		return fmt.Errorf("exportPath: %w", err)
	}

	filename := filepath.Join(p.dir, PathPNGFile)
	if err := gg.SavePNG(filename, img); err != nil {
		return fmt.Errorf("exportPath: %w", err)
	}

	log.Printf("[APP] [INFO] exported path to %v", filename)
	return nil
}

// ExportValues draws world illuminated by table to ValuesPNGFile
func (p *PNG) ExportValues(_ context.Context, world *gridworld.GridWorld,
	table agent.ValueTable) error {
	img := RenderValues(world, table, p.cellSize, p.reward)

	filename := filepath.Join(p.dir, ValuesPNGFile)
	if err := gg.SavePNG(filename, img); err != nil {
		return fmt.Errorf("exportValues: %w", err)
	}

	log.Printf("[APP] [INFO] exported values to %v", filename)
	return nil
}

// RenderPath draws world with the empty cells of path filled
func RenderPath(world *gridworld.GridWorld, path []gridworld.Position,
	cellSize int) (image.Image, error) {
	if err := checkPath(world, path); err != nil {
		return nil, err
	}

	dc := newGridContext(world, cellSize)
	for _, pos := range path {
		if cellKind(world, pos) == gridworld.Empty {
			fillCell(dc, pos, cellSize, pathColour, 1)
		}
	}
	drawGridLines(dc, world, cellSize)

	return dc.Image(), nil
}

// RenderValues draws world with each empty cell illuminated according
// to the sum of its action values, as given by qlearning.Illumination
func RenderValues(world *gridworld.GridWorld, table agent.ValueTable,
	cellSize int, reward float64) image.Image {
	dc := newGridContext(world, cellSize)

	for i := 0; i < world.Len(); i++ {
		pos := world.Position(i)
		if cellKind(world, pos) != gridworld.Empty {
			continue
		}

		opacity := qlearning.Illumination(definedSum(world, table, pos),
			reward)
		if opacity > 0 {
			fillCell(dc, pos, cellSize, pathColour, opacity)
		}
	}
	drawGridLines(dc, world, cellSize)

	return dc.Image()
}

// newGridContext returns a context with every cell of world drawn
func newGridContext(world *gridworld.GridWorld, cellSize int) *gg.Context {
	rows, cols := world.Dims()
	dc := gg.NewContext(cols*cellSize, rows*cellSize)
	dc.SetColor(emptyColour)
	dc.Clear()

	for _, cell := range world.Cells() {
		switch cell.Kind {
		case gridworld.Obstacle:
			fillCell(dc, cell.Position, cellSize, obstacleColour, 1)
		case gridworld.Start:
			fillCell(dc, cell.Position, cellSize, startColour, 1)
		case gridworld.Reward:
			fillCell(dc, cell.Position, cellSize, rewardColour, 1)
		}
	}
	return dc
}

// fillCell fills the cell at p with c at the given opacity
func fillCell(dc *gg.Context, p gridworld.Position, cellSize int,
	c color.RGBA, opacity float64) {
	size := float64(cellSize)
	dc.DrawRectangle(float64(p.Col)*size, float64(p.Row)*size, size, size)
	dc.SetRGBA255(int(c.R), int(c.G), int(c.B), int(opacity*255))
	dc.Fill()
}

func drawGridLines(dc *gg.Context, world *gridworld.GridWorld, cellSize int) {
	rows, cols := world.Dims()
	size := float64(cellSize)
	width, height := float64(cols)*size, float64(rows)*size

	for r := 0; r <= rows; r++ {
		dc.DrawLine(0, float64(r)*size, width, float64(r)*size)
	}
	for c := 0; c <= cols; c++ {
		dc.DrawLine(float64(c)*size, 0, float64(c)*size, height)
	}
	dc.SetColor(gridColour)
	dc.SetLineWidth(1.0)
	dc.Stroke()
}

func cellKind(world *gridworld.GridWorld, p gridworld.Position) gridworld.CellKind {
	cell, err := world.CellAt(p)
	if err != nil {
		panic(fmt.Sprintf("cellKind: %v", err))
	}
	return cell.Kind
}
