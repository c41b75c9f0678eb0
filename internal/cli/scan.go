package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atmark-dev/atmark/internal/ui"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Rescan the vault and rebuild the mention index",
	Long: `Walk every markdown document in the vault, rescan its mentions, and
reconcile the persisted index: documents that no longer exist on disk
are dropped, current contents replace stale entries.

Examples:
  atm scan
  atm scan --json`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	v, err := openVault()
	if err != nil {
		return handleError(ErrVaultNotFound, err, "")
	}

	ix, err := loadIndex(v)
	if err != nil {
		return handleError(ErrIndexError, err, "")
	}

	result, err := ix.Reconcile(v)
	if err != nil {
		return handleError(ErrIndexError, err, "")
	}

	if isJSONOutput() {
		errMsgs := make([]string, 0, len(result.Errors))
		for _, e := range result.Errors {
			errMsgs = append(errMsgs, e.Error())
		}
		outputSuccess(map[string]interface{}{
			"documents": result.Documents,
			"mentions":  result.Mentions,
			"errors":    errMsgs,
		}, &Meta{Count: result.Mentions})
		return nil
	}

	fmt.Println(ui.Successf("Scanned %s in %s",
		ui.Count(result.Documents, "document", "documents"),
		ui.FilePath(v.Root())))
	fmt.Printf("  %s indexed\n", ui.Count(result.Mentions, "mention", "mentions"))
	for _, e := range result.Errors {
		fmt.Println(ui.Warning(e.Error()))
	}
	return nil
}
