package cli

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/atmark-dev/atmark/internal/index"
	"github.com/atmark-dev/atmark/internal/vault"
)

func TestNormalizeDocArg(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"notes/standup.md", "notes/standup.md"},
		{"notes/standup", "notes/standup.md"},
		{"./notes/standup.md", "notes/standup.md"},
		{"  notes/standup  ", "notes/standup.md"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := normalizeDocArg(tt.in); got != tt.want {
			t.Errorf("normalizeDocArg(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeMentionArg(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"anna.b", "@anna.b"},
		{"@anna.b", "@anna.b"},
		{"  anna.b  ", "@anna.b"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := normalizeMentionArg(tt.in); got != tt.want {
			t.Errorf("normalizeMentionArg(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSummarizeMentions(t *testing.T) {
	entries := []index.Mention{
		{Text: "@anna.b", DocumentID: "a.md", Offset: 0},
		{Text: "@anna.b", DocumentID: "b.md", Offset: 5},
		{Text: "@anna.b", DocumentID: "a.md", Offset: 20},
		{Text: "@boris-k", DocumentID: "a.md", Offset: 40},
	}

	got := summarizeMentions(entries, "")
	want := []mentionSummary{
		{Text: "@anna.b", Count: 3, Documents: []string{"a.md", "b.md"}},
		{Text: "@boris-k", Count: 1, Documents: []string{"a.md"}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("summarizeMentions() = %+v, want %+v", got, want)
	}
}

func TestSummarizeMentionsDocFilter(t *testing.T) {
	entries := []index.Mention{
		{Text: "@anna.b", DocumentID: "a.md", Offset: 0},
		{Text: "@boris-k", DocumentID: "b.md", Offset: 0},
	}

	got := summarizeMentions(entries, "b.md")
	if len(got) != 1 || got[0].Text != "@boris-k" {
		t.Errorf("summarizeMentions(doc=b.md) = %+v, want only @boris-k", got)
	}
}

func TestDocumentLabel(t *testing.T) {
	root := t.TempDir()
	files := map[string]string{
		"standup.md": "---\ntitle: x\n---\n# Weekly sync\n\nPing @anna.b\n",
		"plain.md":   "no heading, just @anna.b\n",
	}
	for rel, content := range files {
		if err := os.WriteFile(filepath.Join(root, rel), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	v, err := vault.Open(root)
	if err != nil {
		t.Fatal(err)
	}

	label := documentLabel(v, "standup.md")
	if !strings.Contains(label, "Weekly sync") {
		t.Errorf("label %q does not carry the document heading", label)
	}
	if !strings.Contains(label, "standup.md") {
		t.Errorf("label %q does not carry the document ID", label)
	}

	// No heading: just the ID.
	label = documentLabel(v, "plain.md")
	if strings.Contains(label, "no heading") || !strings.Contains(label, "plain.md") {
		t.Errorf("label without heading = %q, want bare ID", label)
	}

	// Unreadable document: still the ID, no error surfaced here.
	if label = documentLabel(v, "missing.md"); !strings.Contains(label, "missing.md") {
		t.Errorf("label for missing document = %q", label)
	}
}

func TestLocateOffset(t *testing.T) {
	content := "first line\nsecond @anna.b here\nthird"

	line, col, context := locateOffset(content, 18)
	if line != 2 || col != 8 {
		t.Errorf("locateOffset() position = %d:%d, want 2:8", line, col)
	}
	if context != "second @anna.b here" {
		t.Errorf("locateOffset() context = %q", context)
	}

	// Offset at the start of the content.
	line, col, _ = locateOffset(content, 0)
	if line != 1 || col != 1 {
		t.Errorf("locateOffset(0) = %d:%d, want 1:1", line, col)
	}
}
