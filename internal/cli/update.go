package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/atmark-dev/atmark/internal/docsync"
	"github.com/atmark-dev/atmark/internal/ui"
)

var updateAll bool

var updateCmd = &cobra.Command{
	Use:   "update [document]",
	Short: "Write mention sets into document frontmatter",
	Long: `Mirror the indexed mention set of a document into its YAML frontmatter
field (default "mentions", configurable via properties_field_name).

Documents whose frontmatter already matches are left untouched. With
--all, every indexed document is updated.

Examples:
  atm update notes/standup.md
  atm update --all`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.Flags().BoolVar(&updateAll, "all", false, "Update every document in the vault")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	if !updateAll && len(args) == 0 {
		return handleErrorMsg(ErrInvalidInput, "a document is required (or use --all)", "")
	}

	v, err := openVault()
	if err != nil {
		return handleError(ErrVaultNotFound, err, "")
	}

	ix, err := loadIndex(v)
	if err != nil {
		return handleError(ErrIndexError, err, "")
	}

	// Reconcile first so the written sets reflect what is on disk.
	if _, err := ix.Reconcile(v); err != nil {
		return handleError(ErrIndexError, err, "")
	}

	syncer := docsync.New(v, getConfig().FieldName())
	syncer.Warnf = func(format string, a ...any) {
		fmt.Fprintln(os.Stderr, ui.Warningf(format, a...))
	}
	if getConfig().DebugMode {
		syncer.Logf = func(format string, a ...any) {
			fmt.Fprintf(os.Stderr, "[atmark] "+format+"\n", a...)
		}
	}

	var ids []string
	if updateAll {
		ids, err = v.ListDocuments()
		if err != nil {
			return handleError(ErrFileReadError, err, "")
		}
	} else {
		ids = []string{normalizeDocArg(args[0])}
		if !v.Exists(ids[0]) {
			return handleErrorMsg(ErrDocumentNotFound,
				fmt.Sprintf("document not found: %s", ids[0]), "")
		}
	}

	updated := 0
	unchanged := 0
	var failures []string
	for _, id := range ids {
		changed, err := syncer.Sync(id, ix.DocumentTexts(id))
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", id, err))
			continue
		}
		if changed {
			updated++
		} else {
			unchanged++
		}
	}

	if isJSONOutput() {
		outputSuccess(map[string]interface{}{
			"updated":   updated,
			"unchanged": unchanged,
			"failures":  failures,
		}, &Meta{Count: updated})
		return nil
	}

	fmt.Println(ui.Successf("Updated %s (%d unchanged)",
		ui.Count(updated, "document", "documents"), unchanged))
	for _, msg := range failures {
		fmt.Println(ui.Error(msg))
	}
	if len(failures) > 0 {
		return fmt.Errorf("%d document(s) failed", len(failures))
	}
	return nil
}
