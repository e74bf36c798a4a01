package commands

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/docify-online/docify-go/internal/store"
)

// NewHistoryCmd constructs the `docify history` command, which prints recent
// consultations from the local SQLite log.
func NewHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent consultations from the local log",
		Long: `Print the most recent consultations recorded by 'docify serve'.

The log lives at ~/.docify/history.db unless DOCIFY_HISTORY_DB points
elsewhere.

Examples:
  docify history
  docify history --limit 50`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			dbPath := os.Getenv("DOCIFY_HISTORY_DB")
			if dbPath == "" || dbPath == "disabled" {
				var err error
				dbPath, err = store.DefaultDBPath()
				if err != nil {
					return fmt.Errorf("history: %w", err)
				}
			}
			if _, err := os.Stat(dbPath); err != nil {
				return fmt.Errorf("history: no consultation log at %s", dbPath)
			}

			hs, err := store.Open(dbPath)
			if err != nil {
				return fmt.Errorf("history: opening %s: %w", dbPath, err)
			}
			defer func() { _ = hs.Close() }()

			records, err := hs.Recent(ctx, limit)
			if err != nil {
				return fmt.Errorf("history: %w", err)
			}
			if len(records) == 0 {
				fmt.Println("no consultations recorded yet")
				return nil
			}

			dim := color.New(color.Faint)
			bold := color.New(color.Bold)
			for _, rec := range records {
				dim.Printf("%s  [%s]\n", rec.CreatedAt.Format("2006-01-02 15:04"), rec.Tier)
				bold.Printf("Q: %s\n", rec.Query)
				if rec.Symptoms != "" {
					fmt.Printf("   symptoms: %s\n", rec.Symptoms)
				}
				fmt.Printf("A: %s\n\n", rec.Reply)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of consultations to show")

	return cmd
}
