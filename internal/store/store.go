// Package store persists the whole game state as one JSON file. There is no
// incremental diff or transaction log: every save overwrites the file via an
// atomic rename.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wscgames/scavbot/internal/game"
)

// State is the full persisted snapshot.
type State struct {
	Players  map[string]*game.Player `json:"players"`
	NFTCount int                     `json:"nftCount"`
}

// NewState returns an empty snapshot.
func NewState() *State {
	return &State{Players: map[string]*game.Player{}}
}

// Snapshot is the persistence collaborator.
type Snapshot interface {
	LoadSnapshot() (*State, error)
	SaveSnapshot(*State) error
}

// File stores the snapshot at a fixed path.
type File struct {
	Path string
}

// NewFile returns a file store rooted at path.
func NewFile(path string) *File { return &File{Path: path} }

// LoadSnapshot reads the state file. A missing file yields a fresh empty
// state, not an error.
func (f *File) LoadSnapshot() (*State, error) {
	b, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return NewState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	st := NewState()
	if err := json.Unmarshal(b, st); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if st.Players == nil {
		st.Players = map[string]*game.Player{}
	}
	return st, nil
}

// SaveSnapshot writes the whole state, creating parent directories and
// renaming over the previous file so a crash mid-write never truncates it.
func (f *File) SaveSnapshot(st *State) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	if err := os.Rename(tmp, f.Path); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}
