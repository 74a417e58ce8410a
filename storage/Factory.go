package storage

import "fmt"

// NewStore returns a new Store of the given kind: "memory" (or "") or
// "sqlite". The sqlite store keeps its database at sqlitePath and is
// only available in builds with the sqlite tag.
func NewStore(kind, sqlitePath string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return newSQLiteStore(sqlitePath)
	default:
		return nil, fmt.Errorf("newStore: unsupported store backend: %s", kind)
	}
}

// CloseIfSupported closes store if it holds resources
func CloseIfSupported(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}
