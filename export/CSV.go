package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/samuelfneumann/gridagent/agent"
	"github.com/samuelfneumann/gridagent/environment/gridworld"
)

const (
	// PathMarker marks path cells in an exported grid
	PathMarker string = "P"

	PathCSVFile   string = "path.csv"
	ValuesCSVFile string = "values.csv"
)

// CSV exports to CSV files in a directory
type CSV struct {
	dir string
}

// NewCSV returns a new CSV Exporter which writes to dir, creating dir
// if needed
func NewCSV(dir string) (*CSV, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("newCSV: %w", err)
	}
	return &CSV{dir}, nil
}

// ExportPath writes the grid annotated with path to PathCSVFile
func (c *CSV) ExportPath(_ context.Context, world *gridworld.GridWorld,
	path []gridworld.Position) error {
	filename := filepath.Join(c.dir, PathCSVFile)
	if err := writeFile(filename, func(w io.Writer) error {
		return WritePathCSV(w, world, path)
	}); err != nil {
		return fmt.Errorf("exportPath: %w", err)
	}

	log.Printf("[APP] [INFO] exported path to %v", filename)
	return nil
}

// ExportValues writes table to ValuesCSVFile
func (c *CSV) ExportValues(_ context.Context, world *gridworld.GridWorld,
	table agent.ValueTable) error {
	filename := filepath.Join(c.dir, ValuesCSVFile)
	if err := writeFile(filename, func(w io.Writer) error {
		return WriteValuesCSV(w, world, table)
	}); err != nil {
		return fmt.Errorf("exportValues: %w", err)
	}

	log.Printf("[APP] [INFO] exported values to %v", filename)
	return nil
}

// WritePathCSV writes world to w in the map format written by
// gridworld.Format, with the empty cells of path marked with PathMarker
func WritePathCSV(w io.Writer, world *gridworld.GridWorld,
	path []gridworld.Position) error {
	if err := checkPath(world, path); err != nil {
		return err
	}

	onPath := make(map[gridworld.Position]bool, len(path))
	for _, p := range path {
		onPath[p] = true
	}

	rows, cols := world.Dims()
	records := make([][]string, rows)
	for r := range records {
		records[r] = make([]string, cols)
		for c := range records[r] {
			p := gridworld.Position{Row: r, Col: c}
			cell, err := world.CellAt(p)
			if err != nil {
				return err
			}

			records[r][c] = gridworld.Marker(cell.Kind)
			if onPath[p] && cell.Kind == gridworld.Empty {
				records[r][c] = PathMarker
			}
		}
	}

	return csv.NewWriter(w).WriteAll(records)
}

// WriteValuesCSV writes one row per cell of world in row-major order,
// with the cell's row, column and the value of each direction. Values
// of directions which leave the grid are left empty.
func WriteValuesCSV(w io.Writer, world *gridworld.GridWorld,
	table agent.ValueTable) error {
	writer := csv.NewWriter(w)

	header := []string{"row", "col"}
	for _, d := range gridworld.Directions {
		header = append(header, d.String())
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for i := 0; i < world.Len(); i++ {
		p := world.Position(i)
		values := definedValues(world, table, p)

		record := []string{strconv.Itoa(p.Row), strconv.Itoa(p.Col)}
		for _, d := range gridworld.Directions {
			v, ok := values[d.String()]
			if !ok {
				record = append(record, "")
				continue
			}
			record = append(record, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// writeFile creates filename and writes to it using write
func writeFile(filename string, write func(io.Writer) error) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}

	if err := write(file); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}
