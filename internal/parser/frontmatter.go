package parser

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Frontmatter represents the parsed metadata block at the head of a document.
type Frontmatter struct {
	// Fields are the parsed key/value pairs.
	Fields map[string]any

	// Raw is the raw block content between the marker lines.
	Raw string

	// EndLine is the line of the closing marker (1-indexed).
	EndLine int

	// Fallback is true when the block was recovered by the line-oriented
	// fallback parser instead of the YAML parser.
	Fallback bool

	// Degraded is true when both parsers failed. Fields is empty and the
	// original block content will be lost on the next write.
	Degraded bool
}

// FrontmatterBounds returns the opening and closing marker line indices.
// It only detects a block when the first line is '---'.
// If a block is present but unclosed, endLine is -1.
func FrontmatterBounds(lines []string) (startLine int, endLine int, ok bool) {
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return 0, -1, false
	}

	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return 0, i, true
		}
	}

	return 0, -1, true
}

// SplitFrontmatter parses the leading metadata block of content and returns
// it together with the remaining body. When no block is present (or the
// block is unclosed) the frontmatter is nil and the body is the whole
// document.
//
// Malformed blocks never fail outward: the fallback parser is tried first,
// and if that also fails the block is reported as Degraded with empty
// fields.
func SplitFrontmatter(content string) (*Frontmatter, string) {
	lines := strings.Split(content, "\n")

	_, endLine, ok := FrontmatterBounds(lines)
	if !ok || endLine == -1 {
		return nil, content
	}

	raw := strings.Join(lines[1:endLine], "\n")
	body := strings.Join(lines[endLine+1:], "\n")

	fm := &Frontmatter{
		Raw:     raw,
		EndLine: endLine + 1, // 1-indexed
		Fields:  make(map[string]any),
	}

	var yamlData map[string]any
	if err := yaml.Unmarshal([]byte(raw), &yamlData); err == nil {
		// YAML decodes an empty (or comments-only) block into a nil map.
		// The block is still present; treat it as an empty field set.
		if yamlData != nil {
			fm.Fields = yamlData
		}
		return fm, body
	}

	if fields, ok := parseFallbackFields(raw); ok {
		fm.Fields = fields
		fm.Fallback = true
		return fm, body
	}

	fm.Degraded = true
	return fm, body
}

// parseFallbackFields recovers key/value pairs from a malformed block, line
// by line. Each non-comment, non-blank line containing a colon is split on
// the first colon; the value is interpreted as YAML where possible and kept
// as a raw string otherwise. Returns false when no key could be recovered.
func parseFallbackFields(raw string) (map[string]any, bool) {
	fields := make(map[string]any)

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		idx := strings.Index(trimmed, ":")
		if idx <= 0 {
			continue
		}

		key := strings.TrimSpace(trimmed[:idx])
		value := strings.TrimSpace(trimmed[idx+1:])
		if key == "" {
			continue
		}

		fields[key] = fallbackValue(value)
	}

	if len(fields) == 0 {
		return nil, false
	}
	return fields, true
}

// fallbackValue interprets a raw value string as a YAML scalar or list,
// keeping the raw string when YAML cannot make sense of it.
func fallbackValue(value string) any {
	if value == "" {
		return ""
	}
	var v any
	if err := yaml.Unmarshal([]byte(value), &v); err != nil || v == nil {
		return value
	}
	return v
}

// SerializeFields renders a field map as block content (without markers).
// Output is deterministic for equal maps: keys are sorted, strings are
// quoted as needed, and empty lists render as an explicit '[]'.
func SerializeFields(fields map[string]any) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fields); err != nil {
		return "", fmt.Errorf("serialize frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("serialize frontmatter: %w", err)
	}
	return buf.String(), nil
}

// ComposeDocument reassembles a document from a field map and body text.
// An empty field map drops the block entirely.
func ComposeDocument(fields map[string]any, body string) (string, error) {
	if len(fields) == 0 {
		return body, nil
	}

	block, err := SerializeFields(fields)
	if err != nil {
		return "", err
	}

	return "---\n" + block + "---\n" + body, nil
}
