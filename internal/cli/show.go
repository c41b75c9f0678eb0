package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atmark-dev/atmark/internal/ui"
)

var showPreview bool

var showCmd = &cobra.Command{
	Use:   "show <mention>",
	Short: "Show every occurrence of a mention",
	Long: `Show every occurrence of a mention across the vault, with the line it
appears on. The mention may be given with or without the leading '@'.

Examples:
  atm show anna.b
  atm show @anna.b --preview
  atm show anna.b --json`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showPreview, "preview", false, "Render each occurrence's document as markdown")
}

type occurrence struct {
	DocumentID string `json:"documentId"`
	Line       int    `json:"line"`
	Column     int    `json:"column"`
	Context    string `json:"context"`
}

func runShow(cmd *cobra.Command, args []string) error {
	text := normalizeMentionArg(args[0])
	if text == "" || text == "@" {
		return handleErrorMsg(ErrInvalidInput, "mention is required", "")
	}

	v, err := openVault()
	if err != nil {
		return handleError(ErrVaultNotFound, err, "")
	}

	ix, err := loadIndex(v)
	if err != nil {
		return handleError(ErrIndexError, err, "")
	}

	entries := ix.Query(text)
	if len(entries) == 0 {
		return handleErrorMsg(ErrMentionNotFound,
			fmt.Sprintf("no occurrences of %s", text),
			"Run 'atm mentions' to see what is indexed")
	}

	// Group by document so each file is read once.
	var occurrences []occurrence
	contents := make(map[string]string)
	for _, e := range entries {
		content, ok := contents[e.DocumentID]
		if !ok {
			content, err = v.Read(e.DocumentID)
			if err != nil {
				fmt.Println(ui.Warningf("failed to read %s: %v", e.DocumentID, err))
				contents[e.DocumentID] = ""
				continue
			}
			contents[e.DocumentID] = content
		}
		if content == "" {
			continue
		}
		line, col, context := locateOffset(content, e.Offset)
		occurrences = append(occurrences, occurrence{
			DocumentID: e.DocumentID,
			Line:       line,
			Column:     col,
			Context:    context,
		})
	}

	if isJSONOutput() {
		outputSuccess(occurrences, &Meta{Count: len(occurrences)})
		return nil
	}

	fmt.Println(ui.Header(fmt.Sprintf("%s (%d)", text, len(occurrences))))
	lastDoc := ""
	for _, occ := range occurrences {
		if occ.DocumentID != lastDoc {
			fmt.Printf("\n%s\n", documentLabel(v, occ.DocumentID))
			lastDoc = occ.DocumentID
		}
		fmt.Printf("  %d:%d  %s\n", occ.Line, occ.Column, strings.TrimSpace(occ.Context))
	}

	if showPreview {
		display := ui.NewDisplayContext()
		for docID, content := range contents {
			if content == "" {
				continue
			}
			rendered, err := ui.RenderMarkdown(content, display.TermWidth)
			if err != nil {
				continue
			}
			fmt.Printf("\n%s\n%s", ui.Header(docID), rendered)
		}
	}
	return nil
}

// locateOffset converts a byte offset to a 1-indexed line/column and returns
// the line the offset falls on.
func locateOffset(content string, offset int) (line, col int, context string) {
	if offset > len(content) {
		offset = len(content)
	}
	prefix := content[:offset]
	line = strings.Count(prefix, "\n") + 1
	lastNL := strings.LastIndex(prefix, "\n")
	col = offset - lastNL

	rest := content[lastNL+1:]
	if end := strings.IndexByte(rest, '\n'); end >= 0 {
		context = rest[:end]
	} else {
		context = rest
	}
	return line, col, context
}
