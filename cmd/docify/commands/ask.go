package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/docify-online/docify-go/internal/assistant"
	"github.com/docify-online/docify-go/internal/logging"
)

// NewAskCmd constructs the `docify ask` command, which answers a single
// question on the command line without starting the server.
func NewAskCmd() *cobra.Command {
	var symptoms string
	var quiet bool

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask the Docify assistant a question",
		Long: `Ask the Docify assistant a single question and print the answer.

The assistant grounds the reply in the FAQ corpus configured via CORPUS_PATH
(or the Qdrant collection when VECTOR_BACKEND=qdrant). When the model backend
is unreachable the answer degrades to retrieved FAQ excerpts, and finally to
the rule-based responder.

Examples:
  docify ask "What is Docify Online?"
  docify ask --symptoms "fever for 2 days, 101F" "How do I manage a fever?"
  MODEL_PROVIDER=none docify ask "How do I submit a consultation?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			asst, _, cleanup, err := buildAssistant(ctx, log)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}
			defer cleanup()

			answer, err := asst.Answer(ctx, args[0], symptoms)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}

			if !quiet {
				printTier(answer)
			}
			fmt.Println(answer.Text)
			return nil
		},
	}

	cmd.Flags().StringVarP(&symptoms, "symptoms", "s", "", "Free-text symptoms description to include as context")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Print only the answer text, without the tier banner")

	return cmd
}

// printTier writes a one-line colored banner naming the pipeline tier that
// produced the answer.
func printTier(a *assistant.Answer) {
	var c *color.Color
	switch a.Tier {
	case assistant.TierGenerator:
		c = color.New(color.FgGreen)
	case assistant.TierRetrieval:
		c = color.New(color.FgYellow)
	default:
		c = color.New(color.FgCyan)
	}
	label := a.Tier.String()
	if a.Fallback {
		label += " (fallback)"
	}
	c.Fprintf(color.Error, "[%s]\n", label)
}
