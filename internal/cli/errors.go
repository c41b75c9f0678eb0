// Package cli implements the command-line interface.
package cli

// Error codes for structured error responses.
// These codes are stable and can be relied upon by scripts.
const (
	// Vault errors
	ErrVaultNotFound     = "VAULT_NOT_FOUND"
	ErrVaultNotSpecified = "VAULT_NOT_SPECIFIED"
	ErrConfigInvalid     = "CONFIG_INVALID"

	// Document errors
	ErrDocumentNotFound = "DOCUMENT_NOT_FOUND"
	ErrMentionNotFound  = "MENTION_NOT_FOUND"

	// File errors
	ErrFileReadError    = "FILE_READ_ERROR"
	ErrFileWriteError   = "FILE_WRITE_ERROR"
	ErrFileOutsideVault = "FILE_OUTSIDE_VAULT"

	// Index errors
	ErrIndexError = "INDEX_ERROR"

	// Input errors
	ErrInvalidInput = "INVALID_INPUT"
)
