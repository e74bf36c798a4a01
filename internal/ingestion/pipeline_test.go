package ingestion

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/docify-online/docify-go/internal/rag"
)

// fakeEmbedder returns a fixed-size zero vector per input text.
type fakeEmbedder struct {
	calls int
	err   error
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, 4)
	}
	return out, nil
}

// fakeStore records upserted documents.
type fakeStore struct {
	docs []rag.Document
	vecs [][]float32
	err  error
}

func (f *fakeStore) Upsert(_ context.Context, docs []rag.Document, vecs [][]float32) error {
	if f.err != nil {
		return f.err
	}
	f.docs = append(f.docs, docs...)
	f.vecs = append(f.vecs, vecs...)
	return nil
}

func (f *fakeStore) Search(_ context.Context, _ []float32, _ int) ([]rag.Document, error) {
	return nil, nil
}
func (f *fakeStore) Delete(_ context.Context, _ []string) error { return nil }
func (f *fakeStore) Close() error                               { return nil }

func writeCorpusFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "faq.txt")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write corpus file: %v", err)
	}
	return path
}

func TestPipelineIngestLocalFile(t *testing.T) {
	t.Parallel()

	content := strings.Repeat("Fever is a common symptom. Stay hydrated and rest. ", 20)
	path := writeCorpusFile(t, content)

	emb := &fakeEmbedder{}
	st := &fakeStore{}
	p, err := NewPipeline(emb, st, &Config{ChunkSize: 200, ChunkOverlap: 50})
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}

	var msgs []string
	err = p.Ingest(context.Background(), []Source{{Location: path}}, func(m string) { msgs = append(msgs, m) })
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}

	if len(st.docs) == 0 {
		t.Fatal("no documents upserted")
	}
	if len(st.docs) != len(st.vecs) {
		t.Errorf("docs/embeddings length mismatch: %d vs %d", len(st.docs), len(st.vecs))
	}
	for i, doc := range st.docs {
		if doc.Source != "faq.txt" {
			t.Errorf("doc %d source = %q, want faq.txt", i, doc.Source)
		}
		if want := fmt.Sprintf("faq.txt#%d", doc.ChunkIndex); doc.ID != want {
			t.Errorf("doc %d ID = %q, want %q", i, doc.ID, want)
		}
	}
	if emb.calls != 1 {
		t.Errorf("embedder called %d times, want 1 batch per source", emb.calls)
	}
	if len(msgs) == 0 {
		t.Error("no progress messages reported")
	}
}

func TestPipelineIngestURL(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, strings.Repeat("Docify connects users with certified doctors. ", 10))
	}))
	t.Cleanup(srv.Close)

	st := &fakeStore{}
	p, err := NewPipeline(&fakeEmbedder{}, st, nil)
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}

	if err := p.Ingest(context.Background(), []Source{{Location: srv.URL, Name: "web"}}, nil); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if len(st.docs) == 0 {
		t.Fatal("no documents upserted from URL source")
	}
	if st.docs[0].Source != "web" {
		t.Errorf("source = %q, want explicit name", st.docs[0].Source)
	}
}

func TestPipelineIngestMissingFile(t *testing.T) {
	t.Parallel()

	p, err := NewPipeline(&fakeEmbedder{}, &fakeStore{}, nil)
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}

	err = p.Ingest(context.Background(), []Source{{Location: "/nonexistent/faq.txt"}}, nil)
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestPipelineIngestHTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	p, err := NewPipeline(&fakeEmbedder{}, &fakeStore{}, nil)
	if err != nil {
		t.Fatalf("new pipeline: %v", err)
	}

	if err := p.Ingest(context.Background(), []Source{{Location: srv.URL}}, nil); err == nil {
		t.Fatal("expected error for 404 response")
	}
}

func TestNewPipelineValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewPipeline(nil, &fakeStore{}, nil); err == nil {
		t.Error("expected error for nil embedder")
	}
	if _, err := NewPipeline(&fakeEmbedder{}, nil, nil); err == nil {
		t.Error("expected error for nil store")
	}
}
