// Package parser handles parsing markdown documents: mention extraction
// and YAML frontmatter.
package parser

import (
	"regexp"
	"strings"
)

// mentionPattern matches '@' followed by one or more allowed name characters:
// lowercase Latin letters, lowercase Cyrillic letters, '.' and '-'.
// No digits, no uppercase.
var mentionPattern = regexp.MustCompile(`@[a-zа-яё.-]+`)

// trailingPunctuation is stripped from a match's tail when producing the
// normalized mention text.
const trailingPunctuation = ".,!?;:"

// MentionMatch represents a single @mention found in document text.
type MentionMatch struct {
	// Raw is the matched text exactly as it appears in the source.
	Raw string

	// Text is the normalized mention text (leading '@' kept, trailing
	// punctuation stripped). This is the form used for indexing and
	// metadata sync.
	Text string

	// Offset is the byte offset of the match in the source text.
	Offset int
}

// ExtractMentions scans text left to right and returns all non-overlapping
// mention matches in document order. It never fails; text without mentions
// yields an empty slice.
func ExtractMentions(text string) []MentionMatch {
	locs := mentionPattern.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}

	matches := make([]MentionMatch, 0, len(locs))
	for _, loc := range locs {
		raw := text[loc[0]:loc[1]]
		normalized := NormalizeMention(raw)
		if normalized == "@" {
			// Only punctuation after the '@' (e.g. "@..."), not a mention.
			continue
		}
		matches = append(matches, MentionMatch{
			Raw:    raw,
			Text:   normalized,
			Offset: loc[0],
		})
	}
	return matches
}

// NormalizeMention strips trailing punctuation from a raw match.
// The leading '@' is preserved.
func NormalizeMention(raw string) string {
	return strings.TrimRight(raw, trailingPunctuation)
}

// IsMentionRune reports whether r may appear in a mention name after the '@'.
func IsMentionRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'а' && r <= 'я':
		return true
	case r == 'ё':
		return true
	case r == '.' || r == '-':
		return true
	}
	return false
}
