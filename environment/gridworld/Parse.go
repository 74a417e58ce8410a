package gridworld

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Cell markers used in map files
const (
	EmptyMarker    string = "0"
	StartMarker    string = "1"
	RewardMarker   string = "2"
	ObstacleMarker string = "3"
)

// Parse reads a comma separated map from r. Each field is one cell:
// 0 (or blank) is empty, 1 is the start, 2 is the reward, and 3, X or #
// is an obstacle. Any error in the map's contents wraps ErrInvalidMap.
func Parse(r io.Reader) (GridMap, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		if errors.Is(err, csv.ErrFieldCount) {
			return GridMap{}, fmt.Errorf("parse: rows are not the same "+
				"length: %v: %w", err, ErrInvalidMap)
		}
		return GridMap{}, fmt.Errorf("parse: could not read map: %v: %w",
			err, ErrInvalidMap)
	}

	kinds := make([][]CellKind, len(records))
	for r, record := range records {
		kinds[r] = make([]CellKind, len(record))
		for c, field := range record {
			kind, err := parseMarker(field)
			if err != nil {
				return GridMap{}, fmt.Errorf("parse: cell (%d, %d): %w", r,
					c, err)
			}
			kinds[r][c] = kind
		}
	}

	return NewGridMap(kinds)
}

// ParseFile reads the map stored at filename
func ParseFile(filename string) (GridMap, error) {
	file, err := os.Open(filename)
	if err != nil {
		return GridMap{}, fmt.Errorf("parseFile: could not open map: %w",
			err)
	}
	defer file.Close()

	return Parse(file)
}

func parseMarker(field string) (CellKind, error) {
	switch strings.TrimSpace(field) {
	case "", EmptyMarker:
		return Empty, nil
	case StartMarker:
		return Start, nil
	case RewardMarker:
		return Reward, nil
	case ObstacleMarker, "X", "x", "#":
		return Obstacle, nil
	}
	return Empty, fmt.Errorf("unknown marker %q: %w", field, ErrInvalidMap)
}

// Format writes m to w in the format read by Parse
func Format(w io.Writer, m GridMap) error {
	writer := csv.NewWriter(w)
	rows, cols := m.Dims()

	for r := 0; r < rows; r++ {
		record := make([]string, cols)
		for c := 0; c < cols; c++ {
			record[c] = Marker(m.At(r, c))
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("format: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// Marker returns the map file marker of cell kind k
func Marker(k CellKind) string {
	switch k {
	case Obstacle:
		return ObstacleMarker
	case Start:
		return StartMarker
	case Reward:
		return RewardMarker
	default:
		return EmptyMarker
	}
}
