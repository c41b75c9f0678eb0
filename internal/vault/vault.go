// Package vault provides file storage for a directory of markdown documents.
//
// Documents are addressed by their vault-relative path (e.g. "notes/standup.md"),
// always with forward slashes.
package vault

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/atmark-dev/atmark/internal/atomicfile"
)

// StateDir is the vault-local directory for atmark's own state.
const StateDir = ".atmark"

// ErrOutsideVault indicates a document ID that escapes the vault root.
var ErrOutsideVault = errors.New("document path is outside the vault")

// Vault is a directory of markdown documents.
type Vault struct {
	root string
}

// Open opens a vault rooted at the given directory.
func Open(root string) (*Vault, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve vault path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("open vault: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("vault path is not a directory: %s", abs)
	}

	return &Vault{root: abs}, nil
}

// Root returns the absolute vault root path.
func (v *Vault) Root() string {
	return v.root
}

// NormalizeID canonicalizes a document ID: forward slashes, no leading "./".
func NormalizeID(id string) string {
	id = filepath.ToSlash(id)
	id = strings.TrimPrefix(id, "./")
	id = strings.TrimPrefix(id, "/")
	return id
}

// AbsPath resolves a document ID to an absolute path, rejecting IDs that
// escape the vault root.
func (v *Vault) AbsPath(id string) (string, error) {
	id = NormalizeID(id)
	abs := filepath.Join(v.root, filepath.FromSlash(id))

	rel, err := filepath.Rel(v.root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideVault, id)
	}
	return abs, nil
}

// Read returns the content of a document.
func (v *Vault) Read(id string) (string, error) {
	path, err := v.AbsPath(id)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read document %s: %w", id, err)
	}
	return string(data), nil
}

// Write replaces the content of a document atomically, creating parent
// directories as needed.
func (v *Vault) Write(id string, content string) error {
	path, err := v.AbsPath(id)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create document directory: %w", err)
	}
	if err := atomicfile.WriteFile(path, []byte(content), 0); err != nil {
		return fmt.Errorf("write document %s: %w", id, err)
	}
	return nil
}

// Exists reports whether a document is present in the vault.
func (v *Vault) Exists(id string) bool {
	path, err := v.AbsPath(id)
	if err != nil {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Rename moves a document to a new ID.
func (v *Vault) Rename(oldID, newID string) error {
	oldPath, err := v.AbsPath(oldID)
	if err != nil {
		return err
	}
	newPath, err := v.AbsPath(newID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(newPath), 0o755); err != nil {
		return fmt.Errorf("create document directory: %w", err)
	}
	if err := os.Rename(oldPath, newPath); err != nil {
		return fmt.Errorf("rename document %s -> %s: %w", oldID, newID, err)
	}
	return nil
}

// DocumentIDFromPath converts an absolute path inside the vault to a
// document ID. Returns "" when the path is not a markdown file in the vault.
func (v *Vault) DocumentIDFromPath(path string) string {
	rel, err := filepath.Rel(v.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return ""
	}
	id := NormalizeID(rel)
	if !strings.HasSuffix(id, ".md") {
		return ""
	}
	if ignoredID(id) {
		return ""
	}
	return id
}

// ignoredID reports whether any path component belongs to a directory the
// vault does not track.
func ignoredID(id string) bool {
	for _, part := range strings.Split(id, "/") {
		switch part {
		case StateDir, ".git", ".trash", "node_modules":
			return true
		}
	}
	return false
}
