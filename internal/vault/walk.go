package vault

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// ListDocuments returns the IDs of all markdown documents in the vault,
// skipping the state, VCS, and trash directories.
func (v *Vault) ListDocuments() ([]string, error) {
	var ids []string

	err := filepath.WalkDir(v.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees do not invalidate the listing.
			return nil //nolint:nilerr
		}

		if d.IsDir() {
			if shouldSkipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		if !strings.HasSuffix(path, ".md") {
			return nil
		}

		if id := v.DocumentIDFromPath(path); id != "" {
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ids, nil
}

func shouldSkipDir(name string) bool {
	switch name {
	case StateDir, ".git", ".trash", "node_modules":
		return true
	}
	return false
}
