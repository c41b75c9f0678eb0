// Package index maintains the in-memory mention index and its persistence.
package index

import (
	"sort"
	"strings"
	"sync"

	"github.com/atmark-dev/atmark/internal/parser"
	"github.com/atmark-dev/atmark/internal/vault"
)

// Mention is one occurrence of a mention in a document. Identity is the
// full triple; identical triples are collapsed.
type Mention struct {
	// Text is the normalized mention text, leading '@' included.
	Text string `json:"text"`

	// DocumentID is the vault-relative path of the owning document.
	DocumentID string `json:"documentId"`

	// Offset is the byte offset of the occurrence in the document.
	Offset int `json:"offset"`
}

// Index is the process-wide mention index. All mutating operations persist
// the full entry list before returning, so readers never observe an index
// state that was not also saved.
type Index struct {
	mu      sync.Mutex
	entries []Mention
	store   *Store
}

// New creates an empty, unpersisted index (used in tests and dry runs).
func New() *Index {
	return &Index{}
}

// Load creates an index backed by the store, seeded with the persisted
// entry list.
func Load(store *Store) (*Index, error) {
	entries, err := store.Load()
	if err != nil {
		return nil, err
	}
	return &Index{entries: entries, store: store}, nil
}

// persistLocked saves the current entry list. Caller holds mu.
func (ix *Index) persistLocked() error {
	if ix.store == nil {
		return nil
	}
	return ix.store.Save(ix.entries)
}

// Rescan replaces all entries for a document with a fresh extraction of
// text. Set-replace semantics: prior entries for the document are dropped,
// duplicates of the same (text, document, offset) triple are not inserted.
func (ix *Index) Rescan(docID string, text string) error {
	matches := parser.ExtractMentions(text)

	ix.mu.Lock()
	defer ix.mu.Unlock()

	kept := ix.entries[:0:0]
	for _, e := range ix.entries {
		if e.DocumentID != docID {
			kept = append(kept, e)
		}
	}

	seen := make(map[Mention]struct{}, len(matches))
	for _, m := range matches {
		entry := Mention{Text: m.Text, DocumentID: docID, Offset: m.Offset}
		if _, ok := seen[entry]; ok {
			continue
		}
		seen[entry] = struct{}{}
		kept = append(kept, entry)
	}

	ix.entries = kept
	return ix.persistLocked()
}

// Remove purges all entries for a document.
func (ix *Index) Remove(docID string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	kept := ix.entries[:0:0]
	for _, e := range ix.entries {
		if e.DocumentID != docID {
			kept = append(kept, e)
		}
	}
	ix.entries = kept
	return ix.persistLocked()
}

// Rename rewrites the document ID on all matching entries in place,
// leaving text and offset untouched.
func (ix *Index) Rename(oldID, newID string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	for i := range ix.entries {
		if ix.entries[i].DocumentID == oldID {
			ix.entries[i].DocumentID = newID
		}
	}
	return ix.persistLocked()
}

// Query returns all entries whose normalized text matches exactly.
// The query may be given with or without the leading '@'.
func (ix *Index) Query(text string) []Mention {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if !strings.HasPrefix(text, "@") {
		text = "@" + text
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	var out []Mention
	for _, e := range ix.entries {
		if e.Text == text {
			out = append(out, e)
		}
	}
	return out
}

// AllUniqueTexts returns the sorted set of normalized mention texts across
// all documents.
func (ix *Index) AllUniqueTexts() []string {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	seen := make(map[string]struct{})
	for _, e := range ix.entries {
		seen[e.Text] = struct{}{}
	}

	texts := make([]string, 0, len(seen))
	for t := range seen {
		texts = append(texts, t)
	}
	sort.Strings(texts)
	return texts
}

// DocumentTexts returns the document's de-duplicated mention texts, sorted.
// This is the mention set mirrored into document metadata.
func (ix *Index) DocumentTexts(docID string) []string {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	seen := make(map[string]struct{})
	for _, e := range ix.entries {
		if e.DocumentID == docID {
			seen[e.Text] = struct{}{}
		}
	}

	texts := make([]string, 0, len(seen))
	for t := range seen {
		texts = append(texts, t)
	}
	sort.Strings(texts)
	return texts
}

// Entries returns a snapshot copy of all entries.
func (ix *Index) Entries() []Mention {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	out := make([]Mention, len(ix.entries))
	copy(out, ix.entries)
	return out
}

// Len returns the number of entries.
func (ix *Index) Len() int {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return len(ix.entries)
}

// ReconcileResult summarizes a full-vault reconcile.
type ReconcileResult struct {
	Documents int
	Mentions  int
	Errors    []error
}

// Reconcile rescans every listed document and drops entries for documents
// that no longer exist. It handles drift from events missed while the
// process was not running.
func (ix *Index) Reconcile(v *vault.Vault) (*ReconcileResult, error) {
	ids, err := v.ListDocuments()
	if err != nil {
		return nil, err
	}

	result := &ReconcileResult{Documents: len(ids)}
	listed := make(map[string]struct{}, len(ids))

	for _, id := range ids {
		listed[id] = struct{}{}
		content, err := v.Read(id)
		if err != nil {
			// Unreadable document: keep whatever the index already has.
			result.Errors = append(result.Errors, err)
			continue
		}
		if err := ix.Rescan(id, content); err != nil {
			result.Errors = append(result.Errors, err)
		}
	}

	// Drop documents that disappeared while we were not watching.
	ix.mu.Lock()
	kept := ix.entries[:0:0]
	for _, e := range ix.entries {
		if _, ok := listed[e.DocumentID]; ok {
			kept = append(kept, e)
		}
	}
	ix.entries = kept
	err = ix.persistLocked()
	result.Mentions = len(ix.entries)
	ix.mu.Unlock()
	if err != nil {
		return result, err
	}

	return result, nil
}
