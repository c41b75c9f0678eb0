package lsp

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/atmark-dev/atmark/internal/complete"
	"github.com/atmark-dev/atmark/internal/parser"
)

// LSP Protocol Types
// These are simplified versions - a full implementation would use go.lsp.dev/protocol

type InitializeParams struct {
	RootURI string `json:"rootUri"`
}

type InitializeResult struct {
	Capabilities ServerCapabilities `json:"capabilities"`
}

type ServerCapabilities struct {
	TextDocumentSync   int                `json:"textDocumentSync"`
	CompletionProvider *CompletionOptions `json:"completionProvider,omitempty"`
	DefinitionProvider bool               `json:"definitionProvider"`
}

type CompletionOptions struct {
	TriggerCharacters []string `json:"triggerCharacters"`
}

type TextDocumentIdentifier struct {
	URI string `json:"uri"`
}

type VersionedTextDocumentIdentifier struct {
	URI     string `json:"uri"`
	Version int    `json:"version"`
}

type TextDocumentItem struct {
	URI        string `json:"uri"`
	LanguageID string `json:"languageId"`
	Version    int    `json:"version"`
	Text       string `json:"text"`
}

type DidOpenTextDocumentParams struct {
	TextDocument TextDocumentItem `json:"textDocument"`
}

type DidChangeTextDocumentParams struct {
	TextDocument   VersionedTextDocumentIdentifier  `json:"textDocument"`
	ContentChanges []TextDocumentContentChangeEvent `json:"contentChanges"`
}

type TextDocumentContentChangeEvent struct {
	Text string `json:"text"` // Full content (we use full sync)
}

type DidSaveTextDocumentParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

type DidCloseTextDocumentParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

type TextDocumentPositionParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
}

type CompletionParams struct {
	TextDocumentPositionParams
}

type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

type Location struct {
	URI   string `json:"uri"`
	Range Range  `json:"range"`
}

type TextEdit struct {
	Range   Range  `json:"range"`
	NewText string `json:"newText"`
}

type CompletionItem struct {
	Label    string    `json:"label"`
	Kind     int       `json:"kind,omitempty"`
	Detail   string    `json:"detail,omitempty"`
	TextEdit *TextEdit `json:"textEdit,omitempty"`
}

type CompletionList struct {
	IsIncomplete bool             `json:"isIncomplete"`
	Items        []CompletionItem `json:"items"`
}

type ShowMessageParams struct {
	Type    int    `json:"type"`
	Message string `json:"message"`
}

const completionKindText = 1

// Handlers

func (s *Server) handleInitialize(msg jsonRPCMessage) error {
	result := InitializeResult{
		Capabilities: ServerCapabilities{
			TextDocumentSync: 1, // Full sync
			CompletionProvider: &CompletionOptions{
				TriggerCharacters: []string{"@"},
			},
			DefinitionProvider: true,
		},
	}
	return s.sendResult(msg.ID, result)
}

func (s *Server) handleDidOpen(msg jsonRPCMessage) error {
	var params DidOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return fmt.Errorf("invalid didOpen params: %w", err)
	}

	s.documents.Open(params.TextDocument.URI, params.TextDocument.Text, params.TextDocument.Version)

	if docID := s.docIDFromURI(params.TextDocument.URI); docID != "" {
		if err := s.index.Rescan(docID, params.TextDocument.Text); err != nil {
			s.logDebug("Failed to rescan %s: %v", docID, err)
		}
	}
	return nil
}

func (s *Server) handleDidChange(msg jsonRPCMessage) error {
	var params DidChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return fmt.Errorf("invalid didChange params: %w", err)
	}
	if len(params.ContentChanges) == 0 {
		return nil
	}

	content := params.ContentChanges[len(params.ContentChanges)-1].Text
	s.documents.Update(params.TextDocument.URI, content, params.TextDocument.Version)

	if docID := s.docIDFromURI(params.TextDocument.URI); docID != "" {
		if err := s.index.Rescan(docID, content); err != nil {
			s.logDebug("Failed to rescan %s: %v", docID, err)
		}
	}
	return nil
}

func (s *Server) handleDidSave(msg jsonRPCMessage) error {
	var params DidSaveTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return fmt.Errorf("invalid didSave params: %w", err)
	}

	s.scheduleUpdate(s.docIDFromURI(params.TextDocument.URI))
	return nil
}

func (s *Server) handleDidClose(msg jsonRPCMessage) error {
	var params DidCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return fmt.Errorf("invalid didClose params: %w", err)
	}

	s.documents.Close(params.TextDocument.URI)
	return nil
}

func (s *Server) handleCompletion(msg jsonRPCMessage) error {
	var params CompletionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, -32602, "Invalid params")
	}

	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil {
		return s.sendResult(msg.ID, nil)
	}

	line := getLineAt(doc.Content, params.Position.Line)
	col := clampCol(line, params.Position.Character)

	start, query, ok := complete.TriggerAt(line, col)
	if !ok {
		return s.sendResult(msg.ID, CompletionList{IsIncomplete: false})
	}

	// The edit replaces the whole span from the '@' to the cursor with the
	// completed mention plus a trailing space, leaving the cursor after it.
	editRange := Range{
		Start: Position{Line: params.Position.Line, Character: start},
		End:   Position{Line: params.Position.Line, Character: col},
	}

	var items []CompletionItem
	for _, name := range s.completer.Suggest(query) {
		occurrences := len(s.index.Query(name))
		items = append(items, CompletionItem{
			Label:  name,
			Kind:   completionKindText,
			Detail: fmt.Sprintf("%d occurrence(s)", occurrences),
			TextEdit: &TextEdit{
				Range:   editRange,
				NewText: complete.Replacement(name),
			},
		})
	}

	return s.sendResult(msg.ID, CompletionList{
		IsIncomplete: false,
		Items:        items,
	})
}

func (s *Server) handleDefinition(msg jsonRPCMessage) error {
	var params TextDocumentPositionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, -32602, "Invalid params")
	}

	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil {
		return s.sendResult(msg.ID, nil)
	}

	line := getLineAt(doc.Content, params.Position.Line)
	mention := mentionAtColumn(line, clampCol(line, params.Position.Character))
	if mention == "" {
		return s.sendResult(msg.ID, nil)
	}

	currentID := s.docIDFromURI(params.TextDocument.URI)

	// Jump to an occurrence in another document when one exists, otherwise
	// to the first occurrence anywhere.
	entries := s.index.Query(mention)
	if len(entries) == 0 {
		return s.sendResult(msg.ID, nil)
	}
	target := entries[0]
	for _, e := range entries {
		if e.DocumentID != currentID {
			target = e
			break
		}
	}

	content, err := s.vault.Read(target.DocumentID)
	if err != nil {
		s.logDebug("Failed to read %s: %v", target.DocumentID, err)
		return s.sendResult(msg.ID, nil)
	}
	pos := positionForOffset(content, target.Offset)

	location := Location{
		URI: s.pathToURI(target.DocumentID),
		Range: Range{
			Start: pos,
			End:   Position{Line: pos.Line, Character: pos.Character + len(mention)},
		},
	}
	return s.sendResult(msg.ID, location)
}

// Helpers

// getLineAt returns the given 0-indexed line of content.
func getLineAt(content string, line int) string {
	lines := strings.Split(content, "\n")
	if line < 0 || line >= len(lines) {
		return ""
	}
	return lines[line]
}

func clampCol(line string, col int) int {
	if col < 0 {
		return 0
	}
	if col > len(line) {
		return len(line)
	}
	return col
}

// mentionAtColumn returns the normalized mention covering col, or "".
func mentionAtColumn(line string, col int) string {
	for _, m := range parser.ExtractMentions(line) {
		if col >= m.Offset && col < m.Offset+len(m.Raw) {
			return m.Text
		}
	}
	return ""
}

// positionForOffset converts a byte offset into a 0-indexed line/character
// position.
func positionForOffset(content string, offset int) Position {
	if offset > len(content) {
		offset = len(content)
	}
	prefix := content[:offset]
	line := strings.Count(prefix, "\n")
	lastNL := strings.LastIndex(prefix, "\n")
	return Position{Line: line, Character: offset - lastNL - 1}
}
