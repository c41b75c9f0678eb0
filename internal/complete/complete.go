// Package complete suggests mention completions while typing.
package complete

import (
	"sort"
	"strings"

	"github.com/atmark-dev/atmark/internal/parser"
)

// Source provides the candidate mention texts. The mention index satisfies
// this interface.
type Source interface {
	AllUniqueTexts() []string
}

// Provider ranks mention candidates for a partial query.
type Provider struct {
	source Source
}

// NewProvider creates a Provider drawing candidates from the source.
func NewProvider(source Source) *Provider {
	return &Provider{source: source}
}

// Suggest returns candidates whose lowercase form contains the lowercase
// query as a substring. Candidates are normalized mention texts without the
// leading '@', de-duplicated and sorted ascending. An empty query returns
// all candidates.
func (p *Provider) Suggest(query string) []string {
	return Suggest(query, p.source.AllUniqueTexts())
}

// Suggest filters candidates by case-insensitive substring match.
// Candidates may carry the leading '@'; results never do.
func Suggest(query string, candidates []string) []string {
	query = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(query), "@"))

	seen := make(map[string]struct{}, len(candidates))
	var out []string
	for _, c := range candidates {
		name := strings.TrimPrefix(c, "@")
		if name == "" {
			continue
		}
		if !strings.Contains(strings.ToLower(name), query) {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// TriggerAt reports whether the text before col on a line is an in-progress
// mention: an '@' followed by zero or more allowed characters with no
// intervening whitespace, ending at the cursor. start is the byte offset of
// the '@', and query is the typed name so far (without '@').
//
// col is a byte offset into line and must sit on a rune boundary.
func TriggerAt(line string, col int) (start int, query string, ok bool) {
	if col < 0 || col > len(line) {
		return 0, "", false
	}

	// Walk back over allowed name runes to the nearest '@'.
	runes := []rune(line[:col])
	i := len(runes)
	for i > 0 && parser.IsMentionRune(runes[i-1]) {
		i--
	}
	if i == 0 || runes[i-1] != '@' {
		return 0, "", false
	}

	start = len(string(runes[:i-1]))
	query = string(runes[i:])
	return start, query, true
}

// Replacement returns the text that replaces the triggered span (from the
// '@' to the cursor) when choice is selected: the full mention plus one
// trailing space, so the cursor lands just after the space.
func Replacement(choice string) string {
	return "@" + strings.TrimPrefix(choice, "@") + " "
}
