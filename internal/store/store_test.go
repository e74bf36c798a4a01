package store

import (
	"context"
	"fmt"
	"testing"
)

// openTestStore opens an in-memory SQLiteStore for use in tests.
func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func Test_Store_AppendAndRecent(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Append(ctx, Consultation{
		Query:    "How do I manage a fever?",
		Symptoms: "101°F for 2 days",
		Reply:    "Stay hydrated and rest.",
		Tier:     "generator",
	}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Append(ctx, Consultation{
		Query: "What is Docify Online?",
		Reply: "Docify Online is a consultation platform.",
		Tier:  "rules",
	}); err != nil {
		t.Fatalf("append: %v", err)
	}

	recs, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("want 2 consultations, got %d", len(recs))
	}
	if recs[0].Query != "How do I manage a fever?" || recs[0].Tier != "generator" {
		t.Errorf("rec[0]: got %q/%q", recs[0].Query, recs[0].Tier)
	}
	if recs[0].Symptoms != "101°F for 2 days" {
		t.Errorf("rec[0] symptoms: got %q", recs[0].Symptoms)
	}
	if recs[1].Tier != "rules" || recs[1].Symptoms != "" {
		t.Errorf("rec[1]: got tier %q symptoms %q", recs[1].Tier, recs[1].Symptoms)
	}
}

func Test_Store_RecentLimitRespected(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	for i := range 6 {
		if err := s.Append(ctx, Consultation{
			Query: fmt.Sprintf("query %d", i),
			Reply: "reply",
			Tier:  "retrieval",
		}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	recs, err := s.Recent(ctx, 4)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recs) != 4 {
		t.Errorf("want 4 consultations, got %d", len(recs))
	}
}

func Test_Store_RejectsUnknownTier(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	err := s.Append(context.Background(), Consultation{
		Query: "q",
		Reply: "r",
		Tier:  "psychic",
	})
	if err == nil {
		t.Fatal("append with unknown tier should fail the CHECK constraint")
	}
}

func Test_Store_RecentEmpty(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	recs, err := s.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("want 0 consultations, got %d", len(recs))
	}
}
