package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/samuelfneumann/gridagent/agent"
	"github.com/samuelfneumann/gridagent/environment/gridworld"
)

const (
	PathJSONFile   string = "path.json"
	ValuesJSONFile string = "values.json"
)

// PathDocument is the JSON form of an exported path
type PathDocument struct {
	Rows   int                  `json:"rows"`
	Cols   int                  `json:"cols"`
	Start  gridworld.Position   `json:"start"`
	Reward gridworld.Position   `json:"reward"`
	Path   []gridworld.Position `json:"path"`
}

// CellValues holds the action values of a single cell, keyed by
// direction name. Directions which leave the grid are omitted.
type CellValues struct {
	Position gridworld.Position `json:"position"`
	Values   map[string]float64 `json:"values"`
}

// ValuesDocument is the JSON form of an exported value table
type ValuesDocument struct {
	Rows   int          `json:"rows"`
	Cols   int          `json:"cols"`
	Values []CellValues `json:"values"`
}

// NewPathDocument returns the PathDocument of path on world
func NewPathDocument(world *gridworld.GridWorld,
	path []gridworld.Position) (PathDocument, error) {
	if err := checkPath(world, path); err != nil {
		return PathDocument{}, err
	}

	rows, cols := world.Dims()
	return PathDocument{
		Rows:   rows,
		Cols:   cols,
		Start:  world.Start(),
		Reward: world.Reward(),
		Path:   path,
	}, nil
}

// NewValuesDocument returns the ValuesDocument of table on world, with
// cells in row-major order
func NewValuesDocument(world *gridworld.GridWorld,
	table agent.ValueTable) ValuesDocument {
	rows, cols := world.Dims()
	doc := ValuesDocument{Rows: rows, Cols: cols}

	for i := 0; i < world.Len(); i++ {
		p := world.Position(i)
		doc.Values = append(doc.Values, CellValues{
			Position: p,
			Values:   definedValues(world, table, p),
		})
	}
	return doc
}

// JSON exports to JSON files in a directory
type JSON struct {
	dir    string
	indent bool
}

// NewJSON returns a new JSON Exporter which writes to dir, creating dir
// if needed. If indent is true, the output is indented.
func NewJSON(dir string, indent bool) (*JSON, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("newJSON: %w", err)
	}
	return &JSON{dir, indent}, nil
}

// ExportPath writes the PathDocument of path to PathJSONFile
func (j *JSON) ExportPath(_ context.Context, world *gridworld.GridWorld,
	path []gridworld.Position) error {
	doc, err := NewPathDocument(world, path)
	if err != nil {
		return fmt.Errorf("exportPath: %w", err)
	}

	filename := filepath.Join(j.dir, PathJSONFile)
	if err := writeFile(filename, j.encoder(doc)); err != nil {
		return fmt.Errorf("exportPath: %w", err)
	}

	log.Printf("[APP] [INFO] exported path to %v", filename)
	return nil
}

// ExportValues writes the ValuesDocument of table to ValuesJSONFile
func (j *JSON) ExportValues(_ context.Context, world *gridworld.GridWorld,
	table agent.ValueTable) error {
	filename := filepath.Join(j.dir, ValuesJSONFile)
	doc := NewValuesDocument(world, table)
	if err := writeFile(filename, j.encoder(doc)); err != nil {
		return fmt.Errorf("exportValues: %w", err)
	}

	log.Printf("[APP] [INFO] exported values to %v", filename)
	return nil
}

func (j *JSON) encoder(v interface{}) func(io.Writer) error {
	return func(w io.Writer) error {
		enc := json.NewEncoder(w)
		if j.indent {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(v)
	}
}
