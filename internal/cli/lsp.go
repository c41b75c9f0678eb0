package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/atmark-dev/atmark/internal/lsp"
)

var lspCmd = &cobra.Command{
	Use:   "lsp",
	Short: "Start the Language Server Protocol server",
	Long: `Start a Language Server Protocol (LSP) server for Atmark.

This enables editor features for mentions:
- Autocomplete after typing @
- Go-to-definition to jump to another document mentioning the same name
- Frontmatter mention-set updates on save (when auto_update_properties is on)

The server communicates over stdin/stdout using JSON-RPC.

Configure your editor to use this command as the LSP server for markdown files.

Examples:
  # Start LSP server (for editor integration)
  atm lsp

  # Start with debug logging to stderr
  atm lsp --debug

  # Start for a specific vault
  atm lsp --vault-path /path/to/vault`,
	RunE: runLSP,
}

func init() {
	rootCmd.AddCommand(lspCmd)
	lspCmd.Flags().Bool("debug", false, "Enable debug logging to stderr")
}

func runLSP(cmd *cobra.Command, args []string) error {
	debug, _ := cmd.Flags().GetBool("debug")

	serverCfg := *getConfig()
	if debug {
		serverCfg.DebugMode = true
	}

	server := lsp.NewServer(getVaultPath(), &serverCfg)

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	return server.Run(ctx)
}
