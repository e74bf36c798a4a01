// Package ingestion implements the corpus ingestion pipeline.
// It reads FAQ and medical-information documents from local files or HTTP
// URLs, chunks the content, embeds each chunk, and upserts the results into
// the vector store. This pipeline is invoked by the `docify ingest` CLI
// command.
package ingestion

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/docify-online/docify-go/internal/rag"
	"github.com/docify-online/docify-go/internal/splitter"
)

// Source describes a corpus document to be ingested. Location may be a local
// file path or an HTTP(S) URL.
type Source struct {
	// Location is the file path or URL of the document.
	Location string

	// Name is the source label stored on each chunk. Defaults to the file
	// base name (or the URL) when empty.
	Name string
}

// Config holds the configuration for the ingestion pipeline.
type Config struct {
	// ChunkSize is the maximum number of bytes per document chunk.
	// Defaults to 200 if zero.
	ChunkSize int

	// ChunkOverlap is the number of bytes shared between consecutive chunks.
	// Defaults to 50 if zero.
	ChunkOverlap int

	// HTTPTimeout is the timeout for each URL fetch. Defaults to 30s if zero.
	HTTPTimeout time.Duration

	// UserAgent is the HTTP User-Agent header sent with fetch requests.
	UserAgent string
}

// Pipeline orchestrates the read → chunk → embed → upsert flow for a set of
// corpus sources.
type Pipeline struct {
	// embedder converts text chunks into dense vector embeddings.
	embedder rag.Embedder

	// store persists the embedded chunks.
	store rag.VectorStore

	// cfg holds the resolved pipeline configuration.
	cfg *Config

	// httpClient is the HTTP client used for fetching URL sources.
	httpClient *http.Client
}

// NewPipeline constructs a Pipeline from the provided dependencies and config.
func NewPipeline(embedder rag.Embedder, store rag.VectorStore, cfg *Config) (*Pipeline, error) {
	if embedder == nil {
		return nil, fmt.Errorf("ingestion: embedder must not be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("ingestion: store must not be nil")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 200
	}
	if cfg.ChunkOverlap <= 0 {
		cfg.ChunkOverlap = 50
	}
	if cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = cfg.ChunkSize / 4
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "docify-go/1.0 (corpus ingestion)"
	}

	return &Pipeline{
		embedder: embedder,
		store:    store,
		cfg:      cfg,
		httpClient: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
	}, nil
}

// Ingest reads, chunks, embeds, and stores all provided sources.
// It processes sources sequentially and returns the first error encountered.
// Progress is reported via the optional progress callback.
func (p *Pipeline) Ingest(ctx context.Context, sources []Source, progress func(msg string)) error {
	if progress == nil {
		progress = func(string) {}
	}

	for _, src := range sources {
		name := src.Name
		if name == "" {
			name = sourceName(src.Location)
		}
		progress(fmt.Sprintf("reading %s", src.Location))

		content, err := p.read(ctx, src.Location)
		if err != nil {
			return fmt.Errorf("ingestion: read failed for %s: %w", src.Location, err)
		}

		chunks, err := splitter.Split(content, p.cfg.ChunkSize, p.cfg.ChunkOverlap)
		if err != nil {
			return fmt.Errorf("ingestion: chunking failed for %s: %w", src.Location, err)
		}
		progress(fmt.Sprintf("chunked %s into %d chunks", src.Location, len(chunks)))

		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Text
		}

		embeddings, err := p.embedder.Embed(ctx, texts)
		if err != nil {
			return fmt.Errorf("ingestion: embedding failed for %s: %w", src.Location, err)
		}

		docs := make([]rag.Document, 0, len(chunks))
		for _, chunk := range chunks {
			docs = append(docs, rag.Document{
				ID:         fmt.Sprintf("%s#%d", name, chunk.Index),
				Content:    chunk.Text,
				Source:     name,
				ChunkIndex: chunk.Index,
			})
		}

		if err := p.store.Upsert(ctx, docs, embeddings); err != nil {
			return fmt.Errorf("ingestion: upsert failed for %s: %w", src.Location, err)
		}

		progress(fmt.Sprintf("ingested %d chunks from %s", len(chunks), src.Location))
	}

	return nil
}

// read returns the text content of a source, fetching URLs over HTTP and
// reading everything else from the local filesystem.
func (p *Pipeline) read(ctx context.Context, location string) (string, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return p.fetch(ctx, location)
	}
	b, err := os.ReadFile(location)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return string(b), nil
}

// fetch retrieves the raw text content of a URL.
func (p *Pipeline) fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", p.cfg.UserAgent)
	req.Header.Set("Accept", "text/plain, text/html")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("http get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading body: %w", err)
	}

	return string(body), nil
}

// sourceName derives the chunk source label from a location: the base name
// for files, the location itself for URLs.
func sourceName(location string) string {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return location
	}
	return filepath.Base(location)
}
