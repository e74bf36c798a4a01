package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/docify-online/docify-go/internal/assistant"
	"github.com/docify-online/docify-go/internal/corpus"
	"github.com/docify-online/docify-go/internal/embedder"
	"github.com/docify-online/docify-go/internal/generator"
	"github.com/docify-online/docify-go/internal/index"
	"github.com/docify-online/docify-go/internal/rag"
	"github.com/docify-online/docify-go/internal/server"
)

// vectorBackend holds everything the caller needs to use and tear down the
// configured vector store.
type vectorBackend struct {
	store  rag.VectorStore
	pinger server.Pinger
	close  func()
}

// buildVectorBackend constructs the vector store selected by VECTOR_BACKEND:
// "local" (default) is the file-persisted in-process index, "qdrant" is a
// remote Qdrant collection.
func buildVectorBackend(ctx context.Context, emb rag.Embedder, log *slog.Logger) (*vectorBackend, error) {
	backend := getEnvOrDefault("VECTOR_BACKEND", "local")

	switch backend {
	case "local":
		corpusPath := os.Getenv("CORPUS_PATH")
		if corpusPath == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("resolving home directory: %w", err)
			}
			corpusPath, err = corpus.Materialize(filepath.Join(home, ".docify", "faq.txt"))
			if err != nil {
				return nil, err
			}
			log.Info("CORPUS_PATH not set, using built-in FAQ corpus", slog.String("path", corpusPath))
		}
		indexPath := os.Getenv("INDEX_PATH")
		if indexPath == "" {
			var err error
			indexPath, err = defaultIndexPath()
			if err != nil {
				return nil, err
			}
		}
		embBackend := getEnvOrDefault("EMBEDDING_PROVIDER", getEnvOrDefault("MODEL_PROVIDER", "ollama"))
		handle := index.NewHandle(index.Options{
			CorpusPath:   corpusPath,
			IndexPath:    indexPath,
			ChunkSize:    getEnvInt("CHUNK_SIZE", 200),
			ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 50),
			Embedder:     emb,
			ExpectDim:    embedder.DefaultDimensions(embBackend),
			Logger:       log,
		})
		return &vectorBackend{
			store:  handle,
			pinger: server.NewIndexPinger(handle),
			close:  func() {},
		}, nil

	case "qdrant":
		embBackend := getEnvOrDefault("EMBEDDING_PROVIDER", getEnvOrDefault("MODEL_PROVIDER", "ollama"))
		store, err := rag.NewQdrantStore(ctx, &rag.QdrantConfig{
			Host:       getEnvOrDefault("QDRANT_HOST", "localhost"),
			Port:       getEnvInt("QDRANT_PORT", 6334),
			Collection: getEnvOrDefault("QDRANT_COLLECTION", "docify-faq"),
			VectorSize: uint64(embedder.DefaultDimensions(embBackend)), //nolint:gosec // dimensions are bounded
			APIKey:     os.Getenv("QDRANT_API_KEY"),
			UseTLS:     os.Getenv("QDRANT_TLS") == "true",
		})
		if err != nil {
			return nil, fmt.Errorf("connecting to qdrant: %w", err)
		}
		return &vectorBackend{
			store:  store,
			pinger: server.NewQdrantPinger(store.Client()),
			close:  func() { _ = store.Close() },
		}, nil

	default:
		return nil, fmt.Errorf("unknown VECTOR_BACKEND %q (expected local or qdrant)", backend)
	}
}

// buildAssistant wires the full answering pipeline from the environment:
// embedder, vector store, retriever, and (unless MODEL_PROVIDER=none)
// the LLM generator. The returned cleanup must be called before exit.
func buildAssistant(ctx context.Context, log *slog.Logger) (*assistant.Assistant, []server.Pinger, func(), error) {
	emb, err := embedder.NewFromEnv()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("initialising embedder: %w", err)
	}

	backend, err := buildVectorBackend(ctx, emb, log)
	if err != nil {
		return nil, nil, nil, err
	}

	retriever, err := rag.NewRetriever(emb, backend.store, getEnvInt("RETRIEVAL_TOP_K", 3))
	if err != nil {
		backend.close()
		return nil, nil, nil, fmt.Errorf("initialising retriever: %w", err)
	}

	var gen generator.Generator
	var genOpts *generator.Options
	var pingers []server.Pinger

	providerName := getEnvOrDefault("MODEL_PROVIDER", "ollama")
	if providerName == "none" {
		log.Info("generator disabled, running retrieval-only", slog.String("reason", "MODEL_PROVIDER=none"))
	} else {
		genCfg := generator.ConfigFromEnv()
		g, genErr := generator.New(ctx, genCfg)
		if genErr != nil {
			return nil, nil, nil, fmt.Errorf("initialising model provider: %w", genErr)
		}
		gen = g
		genOpts = &generator.Options{
			Temperature: genCfg.Temperature,
			MaxTokens:   genCfg.MaxTokens,
		}
		log.Info("generator initialised",
			slog.String("provider", string(genCfg.Backend)),
			slog.String("model", genCfg.Model),
		)
		if p := generatorPinger(genCfg); p != nil {
			pingers = append(pingers, p)
		}
	}

	pingers = append(pingers, backend.pinger)

	asst := assistant.New(&assistant.Config{
		Retriever:  retriever,
		Generator:  gen,
		TopK:       getEnvInt("RETRIEVAL_TOP_K", 3),
		GenOptions: genOpts,
	})

	return asst, pingers, backend.close, nil
}

// generatorPinger returns a readiness probe for the chat backend, or nil when
// the backend has no cheap probe endpoint (hosted APIs are assumed up).
func generatorPinger(cfg *generator.Config) server.Pinger {
	if cfg.Backend == generator.BackendOllama {
		return server.NewHTTPPinger(cfg.BaseURL, "ollama")
	}
	return nil
}

// defaultIndexPath returns ~/.docify/faq.index.
func defaultIndexPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".docify", "faq.index"), nil
}

// getEnvOrDefault returns the env var value or a fallback when unset.
func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt returns the env var parsed as int, or a fallback when unset
// or unparseable.
func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
