package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/atmark-dev/atmark/internal/docsync"
	"github.com/atmark-dev/atmark/internal/lifecycle"
	"github.com/atmark-dev/atmark/internal/scheduler"
	"github.com/atmark-dev/atmark/internal/ui"
	"github.com/atmark-dev/atmark/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the vault and keep the mention index current",
	Long: `Watch the vault directory for file changes and keep the mention index
up to date.

This runs in the foreground. Changed documents are rescanned after a
short debounce; deleted documents are dropped from the index. When
auto_update_properties is enabled, changed documents also get their
frontmatter mention set rewritten about a second after the change.

The watcher:
- Monitors all .md files in the vault
- Debounces rapid changes (waits 100ms after last change)
- Ignores .atmark/, .git/, .trash/ directories

Examples:
  atm watch
  atm watch --debug
  atm watch --vault-path /path/to/vault`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().Bool("debug", false, "Enable debug logging")
}

func runWatch(cmd *cobra.Command, args []string) error {
	debugFlag, _ := cmd.Flags().GetBool("debug")
	debug := debugFlag || getConfig().DebugMode

	v, err := openVault()
	if err != nil {
		return err
	}

	ix, err := loadIndex(v)
	if err != nil {
		return err
	}

	// Catch up on anything that changed while the watcher was not running.
	if _, err := ix.Reconcile(v); err != nil {
		return fmt.Errorf("failed to reconcile index: %w", err)
	}

	logf := func(format string, a ...any) {
		if debug {
			fmt.Fprintf(os.Stderr, "[atmark] "+format+"\n", a...)
		}
	}

	syncer := docsync.New(v, getConfig().FieldName())
	syncer.Logf = logf
	syncer.Warnf = func(format string, a ...any) {
		fmt.Fprintln(os.Stderr, ui.Warningf(format, a...))
	}

	sched := scheduler.New(scheduler.Config{
		Sync: syncer.Sync,
		OnFailure: func(docID string, err error) {
			fmt.Fprintln(os.Stderr, ui.Errorf("failed to update %s: %v", docID, err))
		},
		Logf: logf,
	})
	defer sched.CancelAll()

	adapter := lifecycle.NewAdapter(v, ix, sched)
	adapter.AutoUpdate = getConfig().AutoUpdateProperties
	adapter.Logf = logf

	w, err := watcher.New(watcher.Config{
		Vault:   v,
		Handler: adapter,
		Debug:   debug,
		OnEvent: func(ev lifecycle.Event, err error) {
			if err != nil {
				fmt.Fprintln(os.Stderr, ui.Errorf("%s %s: %v", ev.Kind, ev.ID, err))
			}
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nShutting down watcher...")
		cancel()
	}()

	fmt.Printf("Watching vault: %s\n", v.Root())
	fmt.Println("Press Ctrl+C to stop")

	return w.Start(ctx)
}
