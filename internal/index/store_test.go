package index

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/atmark-dev/atmark/internal/vault"
)

func TestStoreRoundTrip(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root)

	entries := []Mention{
		{Text: "@anna.b", DocumentID: "a.md", Offset: 5},
		{Text: "@boris-k", DocumentID: "b.md", Offset: 0},
	}
	if err := store.Save(entries); err != nil {
		t.Fatal(err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, entries) {
		t.Errorf("Load() = %v, want %v", got, entries)
	}
}

func TestStoreLoadMissing(t *testing.T) {
	store := NewStore(t.TempDir())
	got, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("Load() = %v, want nil for a missing blob", got)
	}
}

func TestIndexPersistsOnMutation(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root)

	ix, err := Load(store)
	if err != nil {
		t.Fatal(err)
	}
	if err := ix.Rescan("a.md", "Hi @anna.b"); err != nil {
		t.Fatal(err)
	}

	// A fresh index seeded from the same store sees the mutation.
	reloaded, err := Load(store)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(reloaded.Entries(), ix.Entries()) {
		t.Errorf("reloaded index differs: %v vs %v", reloaded.Entries(), ix.Entries())
	}
}

func TestReconcile(t *testing.T) {
	root := t.TempDir()
	writeDoc := func(rel, content string) {
		t.Helper()
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	writeDoc("a.md", "Hi @anna.b")
	writeDoc("sub/b.md", "Hi @boris-k and @anna.b")

	v, err := vault.Open(root)
	if err != nil {
		t.Fatal(err)
	}

	ix, err := Load(NewStore(root))
	if err != nil {
		t.Fatal(err)
	}
	// Seed drift: an entry for a document that no longer exists.
	if err := ix.Rescan("gone.md", "stale @ghost"); err != nil {
		t.Fatal(err)
	}

	result, err := ix.Reconcile(v)
	if err != nil {
		t.Fatal(err)
	}

	if result.Documents != 2 {
		t.Errorf("Documents = %d, want 2", result.Documents)
	}
	if result.Mentions != 3 {
		t.Errorf("Mentions = %d, want 3", result.Mentions)
	}
	if got := ix.Query("@ghost"); len(got) != 0 {
		t.Errorf("stale entries survived reconcile: %v", got)
	}

	want := []string{"@anna.b", "@boris-k"}
	if got := ix.AllUniqueTexts(); !reflect.DeepEqual(got, want) {
		t.Errorf("AllUniqueTexts() = %v, want %v", got, want)
	}
}
