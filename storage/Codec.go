package storage

import (
	"encoding/json"
	"fmt"

	"github.com/samuelfneumann/gridagent/agent"
	"github.com/samuelfneumann/gridagent/environment/gridworld"
)

// valueRecord is the encoded form of the action values of one cell
type valueRecord struct {
	Row    int
	Col    int
	Values agent.ActionValues
}

// EncodePath encodes a path
func EncodePath(path []gridworld.Position) ([]byte, error) {
	return json.Marshal(path)
}

// DecodePath decodes a path encoded by EncodePath
func DecodePath(payload []byte) ([]gridworld.Position, error) {
	var path []gridworld.Position
	if err := json.Unmarshal(payload, &path); err != nil {
		return nil, fmt.Errorf("decodePath: %w", err)
	}
	return path, nil
}

// EncodeValues encodes a value table, with cells in row-major order
func EncodeValues(table agent.ValueTable) ([]byte, error) {
	records := make([]valueRecord, 0, len(table))
	for _, p := range table.Positions() {
		records = append(records, valueRecord{p.Row, p.Col, table[p]})
	}
	return json.Marshal(records)
}

// DecodeValues decodes a value table encoded by EncodeValues
func DecodeValues(payload []byte) (agent.ValueTable, error) {
	var records []valueRecord
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, fmt.Errorf("decodeValues: %w", err)
	}

	table := make(agent.ValueTable, len(records))
	for _, r := range records {
		table[gridworld.Position{Row: r.Row, Col: r.Col}] = r.Values
	}
	return table, nil
}
