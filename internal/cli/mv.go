package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atmark-dev/atmark/internal/ui"
)

var mvCmd = &cobra.Command{
	Use:   "mv <source> <destination>",
	Short: "Move or rename a document within the vault",
	Long: `Move or rename a document within the vault, carrying its index entries
to the new path.

Both paths must be inside the vault. The index keeps every mention the
document had; only the document ID changes.

Examples:
  atm mv people/anna.md people/anna-b.md
  atm mv inbox/standup.md notes/standup.md`,
	Args: cobra.ExactArgs(2),
	RunE: runMv,
}

func init() {
	rootCmd.AddCommand(mvCmd)
}

func runMv(cmd *cobra.Command, args []string) error {
	source := normalizeDocArg(args[0])
	destination := normalizeDocArg(args[1])

	v, err := openVault()
	if err != nil {
		return handleError(ErrVaultNotFound, err, "")
	}

	if !v.Exists(source) {
		return handleErrorMsg(ErrDocumentNotFound,
			fmt.Sprintf("source not found: %s", source),
			"Check the source path and try again")
	}
	if v.Exists(destination) {
		return handleErrorMsg(ErrInvalidInput,
			fmt.Sprintf("destination already exists: %s", destination), "")
	}

	ix, err := loadIndex(v)
	if err != nil {
		return handleError(ErrIndexError, err, "")
	}

	if err := v.Rename(source, destination); err != nil {
		return handleError(ErrFileWriteError, err, "Paths must stay inside the vault")
	}
	if err := ix.Rename(source, destination); err != nil {
		return handleError(ErrIndexError, err, "")
	}

	if isJSONOutput() {
		outputSuccess(map[string]interface{}{
			"source":      source,
			"destination": destination,
		}, nil)
		return nil
	}

	fmt.Println(ui.Successf("Moved %s to %s", ui.FilePath(source), ui.FilePath(destination)))
	return nil
}
