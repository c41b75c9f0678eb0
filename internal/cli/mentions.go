package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/atmark-dev/atmark/internal/index"
	"github.com/atmark-dev/atmark/internal/ui"
)

var mentionsDocFilter string

var mentionsCmd = &cobra.Command{
	Use:   "mentions",
	Short: "List all mentions in the vault",
	Long: `List every unique mention in the vault with its occurrence count and
the documents it appears in.

Examples:
  atm mentions
  atm mentions --doc people/anna.md
  atm mentions --json`,
	Args: cobra.NoArgs,
	RunE: runMentions,
}

func init() {
	rootCmd.AddCommand(mentionsCmd)
	mentionsCmd.Flags().StringVar(&mentionsDocFilter, "doc", "", "Only show mentions from this document")
}

type mentionSummary struct {
	Text      string   `json:"text"`
	Count     int      `json:"count"`
	Documents []string `json:"documents"`
}

func runMentions(cmd *cobra.Command, args []string) error {
	v, err := openVault()
	if err != nil {
		return handleError(ErrVaultNotFound, err, "")
	}

	ix, err := loadIndex(v)
	if err != nil {
		return handleError(ErrIndexError, err, "")
	}

	docFilter := ""
	if mentionsDocFilter != "" {
		docFilter = normalizeDocArg(mentionsDocFilter)
	}

	summaries := summarizeMentions(ix.Entries(), docFilter)

	if isJSONOutput() {
		outputSuccess(summaries, &Meta{Count: len(summaries)})
		return nil
	}

	if len(summaries) == 0 {
		if docFilter != "" {
			fmt.Println(ui.Infof("No mentions in %s", ui.FilePath(docFilter)))
		} else {
			fmt.Println(ui.Info("No mentions in the vault"))
			fmt.Println(ui.Hint("Write @name anywhere in a note, then run 'atm scan'"))
		}
		return nil
	}

	fmt.Println(ui.Header(fmt.Sprintf("Mentions (%d)", len(summaries))))
	for _, s := range summaries {
		fmt.Printf("  %s  %s\n", ui.Mention(s.Text), ui.Count(s.Count, "occurrence", "occurrences"))
		for _, doc := range s.Documents {
			fmt.Printf("      %s\n", documentLabel(v, doc))
		}
	}
	return nil
}

// summarizeMentions groups raw entries by text, sorted by count (descending)
// then text.
func summarizeMentions(entries []index.Mention, docFilter string) []mentionSummary {
	counts := make(map[string]int)
	docs := make(map[string]map[string]struct{})

	for _, e := range entries {
		if docFilter != "" && e.DocumentID != docFilter {
			continue
		}
		counts[e.Text]++
		if docs[e.Text] == nil {
			docs[e.Text] = make(map[string]struct{})
		}
		docs[e.Text][e.DocumentID] = struct{}{}
	}

	summaries := make([]mentionSummary, 0, len(counts))
	for text, count := range counts {
		ids := make([]string, 0, len(docs[text]))
		for id := range docs[text] {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		summaries = append(summaries, mentionSummary{Text: text, Count: count, Documents: ids})
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Count != summaries[j].Count {
			return summaries[i].Count > summaries[j].Count
		}
		return summaries[i].Text < summaries[j].Text
	})
	return summaries
}
