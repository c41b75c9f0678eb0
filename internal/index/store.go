package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/atmark-dev/atmark/internal/atomicfile"
	"github.com/atmark-dev/atmark/internal/vault"
)

// storeFile is the blob the full mention list is persisted to, inside the
// vault's state directory.
const storeFile = "mentions.json"

// Store persists the full mention list as a single JSON blob.
type Store struct {
	path string
}

// NewStore creates a store rooted in a vault's state directory.
func NewStore(vaultRoot string) *Store {
	return &Store{path: filepath.Join(vaultRoot, vault.StateDir, storeFile)}
}

// Path returns the blob location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the persisted mention list. A missing blob is an empty list,
// not an error.
func (s *Store) Load() ([]Mention, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("load mention index: %w", err)
	}

	var entries []Mention
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode mention index: %w", err)
	}
	return entries, nil
}

// Save writes the full mention list atomically.
func (s *Store) Save(entries []Mention) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	if entries == nil {
		entries = []Mention{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode mention index: %w", err)
	}

	if err := atomicfile.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("save mention index: %w", err)
	}
	return nil
}
