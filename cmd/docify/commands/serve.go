package commands

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cloudwego/eino/callbacks"
	"github.com/spf13/cobra"

	"github.com/docify-online/docify-go/internal/logging"
	"github.com/docify-online/docify-go/internal/server"
	"github.com/docify-online/docify-go/internal/store"
	"github.com/docify-online/docify-go/internal/tracing"
)

// NewServeCmd constructs the `docify serve` command, which starts the HTTP
// server that backs the Docify Online chat widget.
func NewServeCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Docify chat HTTP server",
		Long: `Start the Docify HTTP server on localhost.

The server exposes POST /api/chat for the web front-end, plus health,
readiness, and Prometheus metrics endpoints. Answered consultations are
logged to a local SQLite database unless DOCIFY_HISTORY_DB=disabled.

Examples:
  docify serve
  docify serve --port 9090
  MODEL_PROVIDER=gemini docify serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			log.Info("serve starting", slog.String("provider", os.Getenv("MODEL_PROVIDER")))

			// Setup Langfuse tracing — opt-in, no-op if keys are absent.
			handler, flush, ok := tracing.Setup()
			if ok {
				callbacks.AppendGlobalHandlers(handler)
				defer flush()
				log.Info("langfuse tracing enabled")
			} else {
				log.Info("langfuse tracing disabled", slog.String("reason", "LANGFUSE_PUBLIC_KEY not set"))
			}

			asst, pingers, cleanup, err := buildAssistant(ctx, log)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer cleanup()

			// Open the consultation log. DOCIFY_HISTORY_DB overrides the
			// default path (~/.docify/history.db). Set to "disabled" to skip.
			var history store.ConsultationStore
			dbPath := os.Getenv("DOCIFY_HISTORY_DB")
			if dbPath != "disabled" {
				if dbPath == "" {
					dbPath, err = store.DefaultDBPath()
					if err != nil {
						log.Warn("history: could not resolve default DB path, disabling", slog.Any("error", err))
					}
				}
				if dbPath != "" {
					hs, hsErr := store.Open(dbPath)
					if hsErr != nil {
						log.Warn("history: failed to open store, disabling", slog.Any("error", hsErr))
					} else {
						history = hs
						defer func() { _ = hs.Close() }()
						log.Info("history: store opened", slog.String("path", dbPath))
					}
				}
			} else {
				log.Info("history: disabled via DOCIFY_HISTORY_DB=disabled")
			}

			srv, err := server.New(asst, &server.Config{
				Host:    host,
				Port:    port,
				Logger:  log,
				Pingers: pingers,
				APIKey:  os.Getenv("DOCIFY_API_KEY"),
				History: history,
			})
			if err != nil {
				return fmt.Errorf("serve: failed to create server: %w", err)
			}

			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Host address to bind to")
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "TCP port to listen on")

	return cmd
}
