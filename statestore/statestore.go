// Package statestore persists the bookmark store between runs. The engine
// saves at chunk boundaries only; both backends write the full state
// atomically so a crash can never leave a torn bookmark behind.
package statestore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/XAbade/tap-sherpaan/types"
)

type Store interface {
	Load(state *types.State) error
	Save(state *types.State) error
	Close() error
}

// New picks a backend from the state path: "sqlite://path.db" selects the
// sqlite store, anything else the JSON file store.
func New(path string) (Store, error) {
	if strings.HasPrefix(path, "sqlite://") {
		return NewSQLite(strings.TrimPrefix(path, "sqlite://"))
	}
	return NewFile(path), nil
}

// File is the Singer-convention JSON state file.
type File struct {
	path string
}

func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Load(state *types.State) error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // fresh sync
		}
		return fmt.Errorf("failed to read state file: %s", err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, state); err != nil {
		return fmt.Errorf("failed to unmarshal state file: %s", err)
	}
	return nil
}

func (f *File) Save(state *types.State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %s", err)
	}

	// write-then-rename keeps the previous state intact on a mid-write crash
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".state-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %s", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write temp state file: %s", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp state file: %s", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace state file: %s", err)
	}
	return nil
}

func (f *File) Close() error {
	return nil
}
