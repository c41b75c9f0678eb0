// Package lsp implements a Language Server Protocol server for atmark.
//
// It provides mention autocomplete, go-to-definition across documents, and
// save-triggered frontmatter sync for markdown files in the vault.
package lsp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/atmark-dev/atmark/internal/complete"
	"github.com/atmark-dev/atmark/internal/config"
	"github.com/atmark-dev/atmark/internal/docsync"
	"github.com/atmark-dev/atmark/internal/index"
	"github.com/atmark-dev/atmark/internal/lifecycle"
	"github.com/atmark-dev/atmark/internal/scheduler"
	"github.com/atmark-dev/atmark/internal/vault"
)

// Server is the atmark LSP server.
type Server struct {
	// Configuration
	cfg       *config.Config
	vaultPath string
	debug     bool

	// atmark infrastructure
	vault     *vault.Vault
	index     *index.Index
	sched     *scheduler.Scheduler
	completer *complete.Provider

	// Document management
	documents *DocumentManager

	// LSP communication
	input  io.Reader
	output io.Writer
	mu     sync.Mutex // Protects output writes

	// Shutdown
	shutdown bool
}

// NewServer creates a new LSP server.
func NewServer(vaultPath string, cfg *config.Config) *Server {
	return &Server{
		cfg:       cfg,
		vaultPath: vaultPath,
		debug:     cfg.DebugMode,
		documents: NewDocumentManager(),
		input:     os.Stdin,
		output:    os.Stdout,
	}
}

// Run starts the LSP server and processes messages until shutdown.
func (s *Server) Run(ctx context.Context) error {
	if err := s.initialize(); err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer s.sched.CancelAll()

	s.logDebug("atmark LSP server started for vault: %s", s.vaultPath)

	// Main message loop
	for !s.shutdown {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if err := s.handleNextMessage(); err != nil {
				if err == io.EOF {
					return nil
				}
				s.logDebug("Error handling message: %v", err)
			}
		}
	}

	return nil
}

// initialize loads atmark infrastructure (vault, index, scheduler).
func (s *Server) initialize() error {
	v, err := vault.Open(s.vaultPath)
	if err != nil {
		return fmt.Errorf("failed to open vault: %w", err)
	}
	s.vault = v

	ix, err := index.Load(index.NewStore(v.Root()))
	if err != nil {
		return fmt.Errorf("failed to load index: %w", err)
	}
	s.index = ix

	// Reconcile against the current vault state; drift accumulates while
	// no server is running.
	if _, err := ix.Reconcile(v); err != nil {
		return fmt.Errorf("failed to reconcile index: %w", err)
	}

	syncer := docsync.New(v, s.cfg.FieldName())
	syncer.Logf = s.logDebug
	syncer.Warnf = func(format string, args ...interface{}) {
		s.sendNotification("window/showMessage", ShowMessageParams{
			Type:    2, // Warning
			Message: "atmark: " + fmt.Sprintf(format, args...),
		})
	}

	s.completer = complete.NewProvider(ix)

	s.sched = scheduler.New(scheduler.Config{
		Sync: syncer.Sync,
		Logf: s.logDebug,
		OnFailure: func(docID string, err error) {
			s.sendNotification("window/showMessage", ShowMessageParams{
				Type:    1, // Error
				Message: fmt.Sprintf("atmark: failed to update mentions in %s: %v", docID, err),
			})
		},
	})

	return nil
}

// handleNextMessage reads and processes a single LSP message.
func (s *Server) handleNextMessage() error {
	// Read Content-Length header
	var contentLength int
	for {
		var line string
		for {
			b := make([]byte, 1)
			_, err := s.input.Read(b)
			if err != nil {
				return err
			}
			if b[0] == '\n' {
				break
			}
			if b[0] != '\r' {
				line += string(b)
			}
		}

		if line == "" {
			break // Empty line separates header from content
		}

		if strings.HasPrefix(line, "Content-Length: ") {
			fmt.Sscanf(line, "Content-Length: %d", &contentLength)
		}
	}

	if contentLength == 0 {
		return fmt.Errorf("no Content-Length header")
	}

	// Read content
	content := make([]byte, contentLength)
	_, err := io.ReadFull(s.input, content)
	if err != nil {
		return err
	}

	// Parse JSON-RPC message
	var msg jsonRPCMessage
	if err := json.Unmarshal(content, &msg); err != nil {
		return fmt.Errorf("failed to parse message: %w", err)
	}

	s.logDebug("Received: %s", msg.Method)

	return s.dispatch(msg)
}

// dispatch routes a message to the appropriate handler.
func (s *Server) dispatch(msg jsonRPCMessage) error {
	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		// Client acknowledgment, nothing to do
		return nil
	case "shutdown":
		s.shutdown = true
		s.sched.CancelAll()
		return s.sendResult(msg.ID, nil)
	case "exit":
		os.Exit(0)
		return nil
	case "textDocument/didOpen":
		return s.handleDidOpen(msg)
	case "textDocument/didChange":
		return s.handleDidChange(msg)
	case "textDocument/didSave":
		return s.handleDidSave(msg)
	case "textDocument/didClose":
		return s.handleDidClose(msg)
	case "textDocument/completion":
		return s.handleCompletion(msg)
	case "textDocument/definition":
		return s.handleDefinition(msg)
	default:
		s.logDebug("Unhandled method: %s", msg.Method)
		return nil
	}
}

// sendResult sends a successful response.
func (s *Server) sendResult(id interface{}, result interface{}) error {
	response := jsonRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	}
	return s.send(response)
}

// sendError sends an error response.
func (s *Server) sendError(id interface{}, code int, message string) error {
	response := jsonRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &jsonRPCError{
			Code:    code,
			Message: message,
		},
	}
	return s.send(response)
}

// sendNotification sends a notification (no response expected).
func (s *Server) sendNotification(method string, params interface{}) error {
	notification := jsonRPCMessage{
		JSONRPC: "2.0",
		Method:  method,
		Params:  mustMarshal(params),
	}
	return s.send(notification)
}

// send writes a JSON-RPC message to the output.
func (s *Server) send(msg interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	content, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	header := fmt.Sprintf("Content-Length: %d\r\n\r\n", len(content))
	_, err = s.output.Write([]byte(header))
	if err != nil {
		return err
	}
	_, err = s.output.Write(content)
	return err
}

// logDebug logs a debug message to stderr if debug mode is enabled.
func (s *Server) logDebug(format string, args ...interface{}) {
	if s.debug {
		fmt.Fprintf(os.Stderr, "[atmark-lsp] "+format+"\n", args...)
	}
}

// Helper functions

func (s *Server) uriToPath(uri string) string {
	return strings.TrimPrefix(uri, "file://")
}

func (s *Server) pathToURI(path string) string {
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.vault.Root(), path)
	}
	return "file://" + path
}

// docIDFromURI maps a file URI to a vault document ID ("" when outside).
func (s *Server) docIDFromURI(uri string) string {
	return s.vault.DocumentIDFromPath(s.uriToPath(uri))
}

// scheduleUpdate enqueues a frontmatter sync for the document when
// auto-update is enabled.
func (s *Server) scheduleUpdate(docID string) {
	if !s.cfg.AutoUpdateProperties || docID == "" {
		return
	}
	s.sched.Schedule(docID, s.index.DocumentTexts(docID), lifecycle.UpdateDelay)
}

func mustMarshal(v interface{}) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}

// JSON-RPC types

type jsonRPCMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type jsonRPCResponse struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      interface{}   `json:"id"`
	Result  interface{}   `json:"result,omitempty"`
	Error   *jsonRPCError `json:"error,omitempty"`
}

type jsonRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
