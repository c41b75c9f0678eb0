package parser

// ParsedDocument is the result of parsing a single markdown document.
type ParsedDocument struct {
	// Frontmatter is the leading metadata block (nil when absent).
	Frontmatter *Frontmatter

	// Body is the document content after the metadata block.
	Body string

	// Mentions are all mention matches in the full document text, in
	// document order. Offsets are byte offsets into the original content.
	Mentions []MentionMatch
}

// ParseDocument parses document content into frontmatter, body, and
// mentions. Mentions are extracted from the full content so that offsets
// match the document as stored on disk.
func ParseDocument(content string) *ParsedDocument {
	fm, body := SplitFrontmatter(content)
	return &ParsedDocument{
		Frontmatter: fm,
		Body:        body,
		Mentions:    ExtractMentions(content),
	}
}
