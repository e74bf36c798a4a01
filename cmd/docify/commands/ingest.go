package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/docify-online/docify-go/internal/embedder"
	"github.com/docify-online/docify-go/internal/index"
	"github.com/docify-online/docify-go/internal/ingestion"
	"github.com/docify-online/docify-go/internal/logging"
)

// NewIngestCmd constructs the `docify ingest` command, which (re)builds the
// retrieval corpus used to ground answers.
func NewIngestCmd() *cobra.Command {
	var sources []string

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Build or update the FAQ retrieval corpus",
		Long: `Chunk, embed, and index FAQ content for retrieval.

With the local backend (VECTOR_BACKEND=local, the default) this rebuilds the
persisted index from CORPUS_PATH, replacing any existing index file. With the
Qdrant backend, each --source (a file path or URL) is fetched, chunked,
embedded, and upserted into the collection.

Environment variables:
  CORPUS_PATH          FAQ corpus file (required for the local backend)
  INDEX_PATH           Persisted index location (default: ~/.docify/faq.index)
  CHUNK_SIZE           Chunk length in bytes (default: 200)
  CHUNK_OVERLAP        Overlap between neighbouring chunks (default: 50)
  QDRANT_HOST          Qdrant server hostname (default: localhost)
  QDRANT_PORT          Qdrant gRPC port (default: 6334)
  QDRANT_COLLECTION    Collection name (default: docify-faq)
  EMBEDDING_*          Embedding backend overrides (see README)

Examples:
  docify ingest
  VECTOR_BACKEND=qdrant docify ingest --source ./data/faq.txt
  VECTOR_BACKEND=qdrant docify ingest --source https://docify.online/faq.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			if err := embedder.Validate(log); err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			emb, err := embedder.NewFromEnv()
			if err != nil {
				return fmt.Errorf("ingest: failed to initialise embedder: %w", err)
			}
			log.Info("embedder initialised",
				slog.String("provider", getEnvOrDefault("EMBEDDING_PROVIDER", getEnvOrDefault("MODEL_PROVIDER", "ollama"))),
			)

			backend, err := buildVectorBackend(ctx, emb, log)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}
			defer backend.close()

			// The local backend rebuilds wholesale from CORPUS_PATH;
			// --source only applies to stores that support upserts.
			if handle, ok := backend.store.(*index.Handle); ok {
				if len(sources) > 0 {
					return fmt.Errorf("ingest: --source is only supported with VECTOR_BACKEND=qdrant; the local index rebuilds from CORPUS_PATH")
				}
				idx, rebuildErr := handle.Rebuild(ctx)
				if rebuildErr != nil {
					return fmt.Errorf("ingest: rebuilding index: %w", rebuildErr)
				}
				log.Info("ingestion complete",
					slog.String("corpus", os.Getenv("CORPUS_PATH")),
					slog.Int("chunks", idx.Len()),
					slog.Int("dimension", idx.Dimension()),
				)
				return nil
			}

			if len(sources) == 0 {
				return fmt.Errorf("ingest: at least one --source is required with VECTOR_BACKEND=qdrant")
			}

			pipeline, err := ingestion.NewPipeline(emb, backend.store, &ingestion.Config{
				ChunkSize:    getEnvInt("CHUNK_SIZE", 200),
				ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 50),
			})
			if err != nil {
				return fmt.Errorf("ingest: failed to create pipeline: %w", err)
			}

			srcs := make([]ingestion.Source, 0, len(sources))
			for _, s := range sources {
				srcs = append(srcs, ingestion.Source{Location: s})
			}

			log.Info("starting ingestion", slog.Int("sources", len(srcs)))

			if err := pipeline.Ingest(ctx, srcs, func(msg string) {
				log.Info(msg)
			}); err != nil {
				return fmt.Errorf("ingest: pipeline failed: %w", err)
			}

			log.Info("ingestion complete", slog.Int("sources", len(srcs)))
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&sources, "source", "u", nil, "FAQ source to ingest: file path or URL (repeatable, qdrant backend only)")

	return cmd
}
