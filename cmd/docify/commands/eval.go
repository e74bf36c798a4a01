package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/docify-online/docify-go/internal/logging"
)

// evalCase is one scripted evaluation turn.
type evalCase struct {
	query    string
	symptoms string
}

// evalCases is the manual evaluation set used to sanity-check a deployment
// end to end. It covers each answer path: a symptom question with context,
// platform FAQ lookups, and a greeting that only the rule tier handles well.
var evalCases = []evalCase{
	{query: "How do I manage a fever?", symptoms: "Fever for 2 days, 101F"},
	{query: "What is Docify Online?"},
	{query: "How do I submit a consultation?"},
	{query: "Is my data secure?"},
	{query: "What are the symptoms of diabetes?"},
	{query: "hello"},
}

// NewEvalCmd constructs the `docify eval` command, which runs the scripted
// evaluation queries against the live pipeline and prints each answer with
// the tier that produced it.
func NewEvalCmd() *cobra.Command {
	var symptoms string
	var queries []string

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Run the evaluation queries against the live pipeline",
		Long: `Run a set of evaluation queries through the full answering pipeline and
print each reply together with the tier (generator, retrieval, rules) that
produced it. Useful after changing the model provider, the corpus, or the
chunking parameters.

With no flags the built-in evaluation set runs. Pass --query (repeatable)
to evaluate your own questions instead.

Examples:
  docify eval
  docify eval --query "Can I get a prescription?" --query "What is Docify?"
  MODEL_PROVIDER=none docify eval`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			asst, _, cleanup, err := buildAssistant(ctx, log)
			if err != nil {
				return fmt.Errorf("eval: %w", err)
			}
			defer cleanup()

			cases := evalCases
			if len(queries) > 0 {
				cases = make([]evalCase, 0, len(queries))
				for _, q := range queries {
					cases = append(cases, evalCase{query: q, symptoms: symptoms})
				}
			}

			bold := color.New(color.Bold)
			for i, c := range cases {
				answer, ansErr := asst.Answer(ctx, c.query, c.symptoms)
				if ansErr != nil {
					return fmt.Errorf("eval: query %d: %w", i+1, ansErr)
				}

				bold.Printf("%d. %s\n", i+1, c.query)
				if c.symptoms != "" {
					fmt.Printf("   symptoms: %s\n", c.symptoms)
				}
				printTier(answer)
				fmt.Println(answer.Text)
				fmt.Println()
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&queries, "query", nil, "Evaluation query (repeatable, replaces the built-in set)")
	cmd.Flags().StringVarP(&symptoms, "symptoms", "s", "", "Symptoms context applied to every --query")

	return cmd
}
