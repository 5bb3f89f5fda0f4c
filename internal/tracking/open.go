package tracking

import "fmt"

const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Open returns the store for backend. An empty dbPath selects a private
// in-memory SQLite database.
func Open(backend, dbPath string) (Store, error) {
	switch backend {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendSQLite:
		if dbPath == "" {
			dbPath = MemoryPath
		}
		return OpenSQLite(dbPath)
	default:
		return nil, fmt.Errorf("unknown tracking backend %q", backend)
	}
}
