package parser

import (
	"reflect"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestSplitFrontmatter(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantNil    bool
		wantFields map[string]any
		wantBody   string
		wantFall   bool
		wantDegr   bool
	}{
		{
			name: "basic block",
			content: `---
title: Standup notes
mentions:
  - anna.b
---
Ping @anna.b`,
			wantFields: map[string]any{
				"title":    "Standup notes",
				"mentions": []any{"anna.b"},
			},
			wantBody: "Ping @anna.b",
		},
		{
			name:     "no block",
			content:  "# Heading\n\nBody text",
			wantNil:  true,
			wantBody: "# Heading\n\nBody text",
		},
		{
			name:     "unclosed block is not a block",
			content:  "---\ntitle: X\nno closing marker",
			wantNil:  true,
			wantBody: "---\ntitle: X\nno closing marker",
		},
		{
			name:       "empty block",
			content:    "---\n---\nBody",
			wantFields: map[string]any{},
			wantBody:   "Body",
		},
		{
			name: "malformed block recovered by fallback",
			content: `---
title: [unclosed
count: 3
---
Body`,
			wantFields: map[string]any{
				"title": "[unclosed",
				"count": 3,
			},
			wantBody: "Body",
			wantFall: true,
		},
		{
			name:       "block that defeats both parsers is degraded",
			content:    "---\njust some words\nmore words\n---\nBody",
			wantFields: map[string]any{},
			wantBody:   "Body",
			wantDegr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm, body := SplitFrontmatter(tt.content)
			if body != tt.wantBody {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
			if tt.wantNil {
				if fm != nil {
					t.Fatalf("frontmatter = %+v, want nil", fm)
				}
				return
			}
			if fm == nil {
				t.Fatal("frontmatter = nil, want block")
			}
			if !reflect.DeepEqual(fm.Fields, tt.wantFields) {
				t.Errorf("fields = %#v, want %#v", fm.Fields, tt.wantFields)
			}
			if fm.Fallback != tt.wantFall {
				t.Errorf("fallback = %v, want %v", fm.Fallback, tt.wantFall)
			}
			if fm.Degraded != tt.wantDegr {
				t.Errorf("degraded = %v, want %v", fm.Degraded, tt.wantDegr)
			}
		})
	}
}

func TestFallbackKeepsRawStringValues(t *testing.T) {
	content := "---\nbroken: [oops\nnote: @not yaml: at all\n---\nBody"
	fm, _ := SplitFrontmatter(content)
	if fm == nil || !fm.Fallback {
		t.Fatalf("expected fallback parse, got %+v", fm)
	}
	if got := fm.Fields["note"]; got != "@not yaml: at all" {
		t.Errorf("note = %#v, want raw string", got)
	}
}

func TestSerializeFieldsDeterministic(t *testing.T) {
	fields := map[string]any{
		"zeta":     "last",
		"alpha":    "first",
		"mentions": []string{"anna.b", "boris-k"},
	}

	first, err := SerializeFields(fields)
	if err != nil {
		t.Fatalf("SerializeFields: %v", err)
	}
	second, err := SerializeFields(fields)
	if err != nil {
		t.Fatalf("SerializeFields: %v", err)
	}
	if first != second {
		t.Errorf("serialization is not deterministic:\n%s\nvs\n%s", first, second)
	}

	// Keys must come out sorted so repeated syncs are byte-identical.
	alphaAt := strings.Index(first, "alpha:")
	mentionsAt := strings.Index(first, "mentions:")
	zetaAt := strings.Index(first, "zeta:")
	if alphaAt == -1 || mentionsAt == -1 || zetaAt == -1 {
		t.Fatalf("missing keys in output:\n%s", first)
	}
	if !(alphaAt < mentionsAt && mentionsAt < zetaAt) {
		t.Errorf("keys are not sorted:\n%s", first)
	}
}

func TestSerializeFieldsQuotesDelimiters(t *testing.T) {
	fields := map[string]any{"title": "meeting: planning"}
	out, err := SerializeFields(fields)
	if err != nil {
		t.Fatalf("SerializeFields: %v", err)
	}

	// Round-trip must preserve the value exactly.
	var back map[string]any
	if err := yaml.Unmarshal([]byte(out), &back); err != nil {
		t.Fatalf("round-trip parse failed: %v\n%s", err, out)
	}
	if back["title"] != "meeting: planning" {
		t.Errorf("round-trip title = %#v", back["title"])
	}
}

func TestSerializeFieldsEmptyList(t *testing.T) {
	out, err := SerializeFields(map[string]any{"tags": []string{}})
	if err != nil {
		t.Fatalf("SerializeFields: %v", err)
	}
	if !strings.Contains(out, "tags: []") {
		t.Errorf("empty list should render as []:\n%s", out)
	}
}

func TestComposeDocument(t *testing.T) {
	t.Run("empty fields drop the block", func(t *testing.T) {
		out, err := ComposeDocument(nil, "Body only")
		if err != nil {
			t.Fatalf("ComposeDocument: %v", err)
		}
		if out != "Body only" {
			t.Errorf("out = %q", out)
		}
	})

	t.Run("round-trip is stable", func(t *testing.T) {
		fields := map[string]any{"title": "X", "mentions": []string{"anna.b"}}
		first, err := ComposeDocument(fields, "Body\n")
		if err != nil {
			t.Fatalf("ComposeDocument: %v", err)
		}

		// Re-parse and re-compose: byte-identical output.
		fm, body := SplitFrontmatter(first)
		if fm == nil {
			t.Fatal("expected frontmatter after compose")
		}
		second, err := ComposeDocument(fm.Fields, body)
		if err != nil {
			t.Fatalf("ComposeDocument: %v", err)
		}
		if first != second {
			t.Errorf("compose round-trip changed bytes:\n%q\nvs\n%q", first, second)
		}
	})
}
