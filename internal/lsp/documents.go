package lsp

import (
	"sync"
)

// DocumentManager tracks open documents and their content.
type DocumentManager struct {
	mu        sync.RWMutex
	documents map[string]*Document
}

// Document represents an open document in the editor.
type Document struct {
	URI     string
	Content string
	Version int
}

// NewDocumentManager creates a new document manager.
func NewDocumentManager() *DocumentManager {
	return &DocumentManager{
		documents: make(map[string]*Document),
	}
}

// Open registers a newly opened document.
func (dm *DocumentManager) Open(uri, content string, version int) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	dm.documents[uri] = &Document{
		URI:     uri,
		Content: content,
		Version: version,
	}
}

// Update applies changes to a document.
// Only full document sync is supported (the entire content is replaced).
func (dm *DocumentManager) Update(uri, content string, version int) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if doc, ok := dm.documents[uri]; ok {
		doc.Content = content
		doc.Version = version
	}
}

// Close removes a document from tracking.
func (dm *DocumentManager) Close(uri string) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	delete(dm.documents, uri)
}

// Get returns a document by URI, or nil if not open.
func (dm *DocumentManager) Get(uri string) *Document {
	dm.mu.RLock()
	defer dm.mu.RUnlock()

	return dm.documents[uri]
}
