package jsonstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/Makepad-fr/tada/internal/model"
)

// JSON-backed storage for the reference server. Single file, human-readable.
// The server holds its own lock around Load/Save.

// DefaultFileName is the conventional name of the data file.
const DefaultFileName = "todos.json"

// Snapshot is everything the server needs to resume after a restart.
type Snapshot struct {
	NextID int64        `json:"next_id"`
	Todos  []model.Todo `json:"todos"`
}

// Load reads p. A missing file is an empty snapshot.
func Load(p string) (Snapshot, error) {
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Snapshot{NextID: 1, Todos: []model.Todo{}}, nil
		}
		return Snapshot{}, fmt.Errorf("read file: %w", err)
	}
	var s Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return Snapshot{}, fmt.Errorf("json unmarshal: %w", err)
	}
	if s.Todos == nil {
		s.Todos = []model.Todo{}
	}
	if s.NextID < 1 {
		s.NextID = 1
	}
	return s, nil
}

// Save writes s to p through a temp file so a crash never leaves half a file.
func Save(p string, s Snapshot) error {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	if err := os.Rename(tmp, p); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
