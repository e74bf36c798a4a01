package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/docify-online/docify-go/internal/assistant"
	"github.com/docify-online/docify-go/internal/store"
)

// ---------------------------------------------------------------------------
// Fakes for chat handler tests
// ---------------------------------------------------------------------------

// fakeAnswerer implements the answerer interface for tests.
type fakeAnswerer struct {
	// answer is returned on success.
	answer *assistant.Answer
	// err is returned as the error value.
	err error
	// gotQuery and gotSymptoms record the last call.
	gotQuery    string
	gotSymptoms string
}

func (f *fakeAnswerer) Answer(_ context.Context, query, symptoms string) (*assistant.Answer, error) {
	f.gotQuery = query
	f.gotSymptoms = symptoms
	if f.err != nil {
		return nil, f.err
	}
	if f.answer != nil {
		return f.answer, nil
	}
	return &assistant.Answer{Text: "ok", Tier: assistant.TierRules}, nil
}

// fakeHistory records appended consultations and optionally fails.
type fakeHistory struct {
	recs []store.Consultation
	err  error
}

func (f *fakeHistory) Append(_ context.Context, c store.Consultation) error {
	if f.err != nil {
		return f.err
	}
	f.recs = append(f.recs, c)
	return nil
}

func (f *fakeHistory) Recent(_ context.Context, n int) ([]store.Consultation, error) {
	if n > len(f.recs) {
		n = len(f.recs)
	}
	return f.recs[len(f.recs)-n:], nil
}

func (f *fakeHistory) Close() error { return nil }

// newTestServer builds a minimal *Server with an isolated metrics registry.
func newTestServer() *Server {
	return &Server{
		answerer: &fakeAnswerer{},
		cfg:      &Config{Port: 8080},
		log:      slog.Default(),
		metrics:  newServerMetrics(prometheus.NewRegistry()),
	}
}

// ---------------------------------------------------------------------------
// POST /api/chat — validation error paths
// ---------------------------------------------------------------------------

func TestHandleChat_InvalidJSON(t *testing.T) {
	t.Parallel()

	s := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/api/chat",
		strings.NewReader(`not-json`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	s.handleChat(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestHandleChat_EmptyMessage(t *testing.T) {
	t.Parallel()

	s := newTestServer()
	s.answerer = &fakeAnswerer{err: assistant.ErrEmptyQuery}
	req := httptest.NewRequest(http.MethodPost, "/api/chat",
		strings.NewReader(`{"message":"   "}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	s.handleChat(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestHandleChat_InternalError(t *testing.T) {
	t.Parallel()

	s := newTestServer()
	s.answerer = &fakeAnswerer{err: errors.New("unexpected fault")}
	req := httptest.NewRequest(http.MethodPost, "/api/chat",
		strings.NewReader(`{"message":"hello"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	s.handleChat(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", w.Code)
	}
}

// ---------------------------------------------------------------------------
// POST /api/chat — happy path
// ---------------------------------------------------------------------------

func TestHandleChat_Success(t *testing.T) {
	t.Parallel()

	fa := &fakeAnswerer{answer: &assistant.Answer{
		Text: "Stay hydrated and rest.",
		Tier: assistant.TierGenerator,
	}}
	s := newTestServer()
	s.answerer = fa

	req := httptest.NewRequest(http.MethodPost, "/api/chat",
		strings.NewReader(`{"message":"How do I manage a fever?","symptoms":"101°F for 2 days"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	s.handleChat(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d — body: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: expected application/json, got %q", ct)
	}

	var resp chatResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Reply != "Stay hydrated and rest." {
		t.Errorf("reply = %q", resp.Reply)
	}
	if resp.Tier != "generator" {
		t.Errorf("tier = %q, want generator", resp.Tier)
	}
	if resp.Fallback {
		t.Error("fallback = true on the top tier")
	}
	if fa.gotSymptoms != "101°F for 2 days" {
		t.Errorf("symptoms not forwarded: got %q", fa.gotSymptoms)
	}
}

func TestHandleChat_FallbackReported(t *testing.T) {
	t.Parallel()

	s := newTestServer()
	s.answerer = &fakeAnswerer{answer: &assistant.Answer{
		Text:     "Doc 1: fever guidance",
		Tier:     assistant.TierRetrieval,
		Fallback: true,
	}}

	req := httptest.NewRequest(http.MethodPost, "/api/chat",
		strings.NewReader(`{"message":"fever"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	s.handleChat(w, req)

	var resp chatResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Tier != "retrieval" || !resp.Fallback {
		t.Errorf("got tier=%q fallback=%v, want retrieval/true", resp.Tier, resp.Fallback)
	}
}

// ---------------------------------------------------------------------------
// POST /api/chat — consultation log
// ---------------------------------------------------------------------------

func TestHandleChat_PersistsConsultation(t *testing.T) {
	t.Parallel()

	hist := &fakeHistory{}
	s := newTestServer()
	s.answerer = &fakeAnswerer{answer: &assistant.Answer{
		Text: "reply text",
		Tier: assistant.TierRules,
	}}
	s.history = hist

	req := httptest.NewRequest(http.MethodPost, "/api/chat",
		strings.NewReader(`{"message":"hello","symptoms":"none"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	s.handleChat(w, req)

	if len(hist.recs) != 1 {
		t.Fatalf("want 1 persisted consultation, got %d", len(hist.recs))
	}
	rec := hist.recs[0]
	if rec.Query != "hello" || rec.Symptoms != "none" || rec.Reply != "reply text" || rec.Tier != "rules" {
		t.Errorf("persisted record = %+v", rec)
	}
}

// A failing consultation log must not fail the request.
func TestHandleChat_HistoryFailureIsNonFatal(t *testing.T) {
	t.Parallel()

	s := newTestServer()
	s.history = &fakeHistory{err: errors.New("disk full")}

	req := httptest.NewRequest(http.MethodPost, "/api/chat",
		strings.NewReader(`{"message":"hello"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	s.handleChat(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200 despite history failure, got %d", w.Code)
	}
}
