// Package commands defines all Cobra CLI commands for the docify binary.
package commands

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/docify-online/docify-go/internal/audit"
	"github.com/docify-online/docify-go/internal/config"
	"github.com/docify-online/docify-go/internal/logging"
)

// configPath holds the --config flag value for YAML config file override.
var configPath string

// loadedConfigPath stores the resolved config file path for audit logging.
var loadedConfigPath string

// NewRootCmd constructs the root Cobra command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "docify",
		Short: "Docify Online — medical FAQ assistant powered by retrieval-augmented LLMs",
		Long: `Docify is the assistant behind the Docify Online patient portal.

It answers medical FAQ questions about the platform, common symptoms, and
next steps, grounding LLM replies in the curated FAQ corpus. When the model
or the retrieval index is unavailable it degrades to retrieved excerpts and
finally to a rule-based responder, so a user always gets an answer.

Model provider is selected via the MODEL_PROVIDER environment variable
or a YAML config file (~/.docify/config.yaml).
See 'docify --help' for available commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// .env is a development convenience; absence is not an error.
			_ = godotenv.Load()

			log := logging.New()

			// Load YAML config (env vars always override YAML values).
			path, err := config.Load(configPath, log)
			if err != nil {
				return err
			}
			loadedConfigPath = path

			// Emit structured audit log for every command invocation.
			audit.LogCommandStart(log, cmd.Name(), loadedConfigPath)

			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: ~/.docify/config.yaml)")

	root.AddCommand(
		NewAskCmd(),
		NewServeCmd(),
		NewIngestCmd(),
		NewEvalCmd(),
		NewHistoryCmd(),
		NewVersionCmd(),
	)

	return root
}
