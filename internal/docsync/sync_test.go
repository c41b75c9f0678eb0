package docsync

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/atmark-dev/atmark/internal/vault"
)

func newTestVault(t *testing.T, files map[string]string) *vault.Vault {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	v, err := vault.Open(root)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func readFields(t *testing.T, v *vault.Vault, id string) map[string]any {
	t.Helper()
	content, err := v.Read(id)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(content, "\n")
	if len(lines) == 0 || lines[0] != "---" {
		return nil
	}
	end := -1
	for i := 1; i < len(lines); i++ {
		if lines[i] == "---" {
			end = i
			break
		}
	}
	if end == -1 {
		t.Fatalf("unclosed block in %q", content)
	}
	var fields map[string]any
	if err := yaml.Unmarshal([]byte(strings.Join(lines[1:end], "\n")), &fields); err != nil {
		t.Fatalf("block does not parse: %v", err)
	}
	return fields
}

func TestSyncWritesMentionField(t *testing.T) {
	v := newTestVault(t, map[string]string{"a.md": "Ping @anna.b\n"})
	s := New(v, "mentions")

	wrote, err := s.Sync("a.md", []string{"@anna.b"})
	if err != nil {
		t.Fatal(err)
	}
	if !wrote {
		t.Fatal("expected a write")
	}

	fields := readFields(t, v, "a.md")
	want := []any{"anna.b"}
	if got := fields["mentions"]; !reflect.DeepEqual(got, want) {
		t.Errorf("mentions = %#v, want %#v", got, want)
	}

	content, _ := v.Read("a.md")
	if !strings.HasSuffix(content, "Ping @anna.b\n") {
		t.Errorf("body was altered: %q", content)
	}
}

func TestSyncSecondCallIsNoOp(t *testing.T) {
	v := newTestVault(t, map[string]string{"a.md": "Ping @anna.b\n"})
	s := New(v, "mentions")

	wrote, err := s.Sync("a.md", []string{"@anna.b"})
	if err != nil || !wrote {
		t.Fatalf("first sync: wrote=%v err=%v", wrote, err)
	}
	before, _ := v.Read("a.md")

	wrote, err = s.Sync("a.md", []string{"@anna.b"})
	if err != nil {
		t.Fatal(err)
	}
	if wrote {
		t.Error("second identical sync performed a write")
	}
	after, _ := v.Read("a.md")
	if before != after {
		t.Errorf("content changed on no-op sync:\n%q\nvs\n%q", before, after)
	}
}

func TestSyncPreservesUnrelatedKeys(t *testing.T) {
	v := newTestVault(t, map[string]string{
		"a.md": "---\ntitle: X\nmentions:\n  - a\n---\nbody\n",
	})
	s := New(v, "mentions")

	if _, err := s.Sync("a.md", []string{"@b", "@c"}); err != nil {
		t.Fatal(err)
	}

	fields := readFields(t, v, "a.md")
	if fields["title"] != "X" {
		t.Errorf("title = %#v, want X", fields["title"])
	}
	want := []any{"b", "c"}
	if got := fields["mentions"]; !reflect.DeepEqual(got, want) {
		t.Errorf("mentions = %#v, want %#v", got, want)
	}
}

func TestSyncEmptySetRemovesField(t *testing.T) {
	v := newTestVault(t, map[string]string{
		"a.md": "---\ntitle: X\nmentions:\n  - a\n---\nbody\n",
	})
	s := New(v, "mentions")

	wrote, err := s.Sync("a.md", nil)
	if err != nil || !wrote {
		t.Fatalf("sync: wrote=%v err=%v", wrote, err)
	}

	fields := readFields(t, v, "a.md")
	if _, ok := fields["mentions"]; ok {
		t.Errorf("mentions key survived empty sync: %#v", fields)
	}
	if fields["title"] != "X" {
		t.Errorf("title = %#v, want X", fields["title"])
	}
}

func TestSyncEmptySetDropsMentionOnlyBlock(t *testing.T) {
	v := newTestVault(t, map[string]string{
		"a.md": "---\nmentions:\n  - a\n---\nbody\n",
	})
	s := New(v, "mentions")

	if _, err := s.Sync("a.md", nil); err != nil {
		t.Fatal(err)
	}

	content, _ := v.Read("a.md")
	if strings.HasPrefix(content, "---") {
		t.Errorf("empty block should be dropped entirely: %q", content)
	}
	if content != "body\n" {
		t.Errorf("content = %q, want body only", content)
	}
}

func TestSyncNoBlockNoMentionsNoWrite(t *testing.T) {
	v := newTestVault(t, map[string]string{"a.md": "plain body\n"})
	s := New(v, "mentions")

	wrote, err := s.Sync("a.md", nil)
	if err != nil {
		t.Fatal(err)
	}
	if wrote {
		t.Error("document without block and without mentions was written")
	}
}

func TestSyncReadFailure(t *testing.T) {
	v := newTestVault(t, nil)
	s := New(v, "mentions")

	if _, err := s.Sync("missing.md", []string{"@a"}); err == nil {
		t.Error("expected read failure for missing document")
	}
}

func TestSyncDegradedBlockIsSurfaced(t *testing.T) {
	v := newTestVault(t, map[string]string{
		"a.md": "---\nno colons here at all\n---\nbody\n",
	})
	s := New(v, "mentions")

	// No Logf: the loss notice must not depend on debug logging.
	var notices []string
	s.Warnf = func(format string, args ...any) {
		notices = append(notices, fmt.Sprintf(format, args...))
	}

	if _, err := s.Sync("a.md", []string{"@a"}); err != nil {
		t.Fatal(err)
	}
	if len(notices) == 0 {
		t.Error("degraded parse was not surfaced on the notice channel")
	}
	if len(notices) > 0 && !strings.Contains(notices[0], "a.md") {
		t.Errorf("notice does not name the document: %q", notices[0])
	}

	fields := readFields(t, v, "a.md")
	if !reflect.DeepEqual(fields["mentions"], []any{"a"}) {
		t.Errorf("mentions = %#v", fields["mentions"])
	}
}

func TestPropertyValues(t *testing.T) {
	got := PropertyValues([]string{"@zoya", "@anna.b", "anna.b", "", "@"})
	want := []string{"anna.b", "zoya"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("PropertyValues = %v, want %v", got, want)
	}
}
