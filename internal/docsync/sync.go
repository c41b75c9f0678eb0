// Package docsync mirrors a document's mention set into one frontmatter
// field, leaving every other field alone.
package docsync

import (
	"sort"
	"strings"

	"github.com/atmark-dev/atmark/internal/parser"
	"github.com/atmark-dev/atmark/internal/vault"
)

// Syncer performs the read-modify-write cycle for a single frontmatter
// field. It is safe for use from multiple goroutines as long as the
// scheduler serializes calls per document.
type Syncer struct {
	vault *vault.Vault
	field string

	// Logf receives debug messages (parse fallbacks). Nil disables logging.
	Logf func(format string, args ...any)

	// Warnf receives user-visible notices for the data-loss path: a block
	// malformed beyond both parsers loses its non-mention fields on the
	// next write. Unlike Logf this must not be gated on debug mode; nil
	// falls back to Logf.
	Warnf func(format string, args ...any)
}

// New creates a Syncer writing the given frontmatter field.
func New(v *vault.Vault, field string) *Syncer {
	return &Syncer{vault: v, field: field}
}

// Sync merges mentionTexts into the document's frontmatter field and writes
// the document back when the content actually changed. Returns whether a
// write happened.
//
// mentionTexts may carry the leading '@'; the frontmatter value is stored
// without it, de-duplicated and sorted.
func (s *Syncer) Sync(docID string, mentionTexts []string) (bool, error) {
	content, err := s.vault.Read(docID)
	if err != nil {
		return false, err
	}

	fm, body := parser.SplitFrontmatter(content)

	values := PropertyValues(mentionTexts)

	// Nothing to write and nothing to remove: leave the document alone.
	if fm == nil && len(values) == 0 {
		return false, nil
	}

	fields := map[string]any{}
	if fm != nil {
		fields = fm.Fields
		if fm.Fallback {
			s.logf("frontmatter of %s recovered by fallback parser", docID)
		}
		if fm.Degraded {
			// Bounded-risk path: the malformed block content is replaced by
			// the mention field alone.
			s.warnf("frontmatter of %s is malformed beyond recovery; non-mention fields will be lost", docID)
		}
	}

	if len(values) > 0 {
		fields[s.field] = values
	} else {
		delete(fields, s.field)
	}

	newContent, err := parser.ComposeDocument(fields, body)
	if err != nil {
		return false, err
	}

	if newContent == content {
		return false, nil
	}

	if err := s.vault.Write(docID, newContent); err != nil {
		return false, err
	}
	return true, nil
}

// PropertyValues converts mention texts to the frontmatter representation:
// leading '@' stripped, de-duplicated, sorted ascending.
func PropertyValues(mentionTexts []string) []string {
	seen := make(map[string]struct{}, len(mentionTexts))
	values := make([]string, 0, len(mentionTexts))
	for _, t := range mentionTexts {
		t = strings.TrimPrefix(strings.TrimSpace(t), "@")
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		values = append(values, t)
	}
	sort.Strings(values)
	return values
}

func (s *Syncer) logf(format string, args ...any) {
	if s.Logf != nil {
		s.Logf(format, args...)
	}
}

func (s *Syncer) warnf(format string, args ...any) {
	if s.Warnf != nil {
		s.Warnf(format, args...)
		return
	}
	s.logf(format, args...)
}
