package cli

import (
	"fmt"
	"strings"

	"github.com/atmark-dev/atmark/internal/index"
	"github.com/atmark-dev/atmark/internal/parser"
	"github.com/atmark-dev/atmark/internal/ui"
	"github.com/atmark-dev/atmark/internal/vault"
)

// openVault opens the resolved vault.
func openVault() (*vault.Vault, error) {
	v, err := vault.Open(getVaultPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open vault: %w", err)
	}
	return v, nil
}

// loadIndex loads the persisted mention index for the vault.
func loadIndex(v *vault.Vault) (*index.Index, error) {
	ix, err := index.Load(index.NewStore(v.Root()))
	if err != nil {
		return nil, fmt.Errorf("failed to load index: %w", err)
	}
	return ix, nil
}

// normalizeDocArg resolves a user-supplied document argument to a vault ID,
// appending .md when missing.
func normalizeDocArg(arg string) string {
	id := vault.NormalizeID(strings.TrimSpace(arg))
	if id != "" && !strings.HasSuffix(id, ".md") {
		id += ".md"
	}
	return id
}

// documentLabel renders a document line for panel output: the first heading
// of the document followed by its vault ID, or the bare ID when the document
// has no heading or cannot be read.
func documentLabel(v *vault.Vault, id string) string {
	content, err := v.Read(id)
	if err != nil {
		return ui.FilePath(id)
	}
	doc := parser.ParseDocument(content)
	title := parser.DocumentTitle(doc.Body)
	if title == "" {
		return ui.FilePath(id)
	}
	return fmt.Sprintf("%s  %s", title, ui.FilePath(id))
}

// normalizeMentionArg accepts a mention with or without the leading '@'.
func normalizeMentionArg(arg string) string {
	text := strings.TrimSpace(arg)
	if text == "" {
		return ""
	}
	if !strings.HasPrefix(text, "@") {
		text = "@" + text
	}
	return text
}
