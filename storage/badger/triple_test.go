package badger

import (
	"context"
	"testing"

	"github.com/poiesic/lecturegraph/core"
)

func TestTripleReplaceAndGet(t *testing.T) {
	lectureRepo, conceptRepo, tripleRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { tripleRepo.Close(); conceptRepo.Close(); lectureRepo.Close(); backend.Close() }()

	ctx := context.Background()
	lectureID := core.ID(42)

	// Empty graph reads back empty
	got, err := tripleRepo.GetByLecture(ctx, lectureID)
	if err != nil {
		t.Fatalf("Failed to get triples: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("Expected no triples, got %d", len(got))
	}

	first := []core.Triple{
		{Subject: 1, Predicate: "concept.appearsIn", ObjectId: lectureID},
		{Subject: 1, Predicate: "concept.hasExplanation", Literal: "A cell is the basic unit of life."},
		{Subject: 1, Predicate: "concept.relatedTo", ObjectId: core.ID(2)},
	}
	if err := tripleRepo.ReplaceForLecture(ctx, lectureID, first); err != nil {
		t.Fatalf("Failed to replace triples: %v", err)
	}

	got, err = tripleRepo.GetByLecture(ctx, lectureID)
	if err != nil {
		t.Fatalf("Failed to get triples: %v", err)
	}
	if len(got) != len(first) {
		t.Fatalf("Expected %d triples, got %d", len(first), len(got))
	}
	for i := range first {
		if got[i] != first[i] {
			t.Fatalf("Triple %d: expected %+v, got %+v", i, first[i], got[i])
		}
	}

	// Replacement drops the old set entirely
	second := []core.Triple{
		{Subject: 3, Predicate: "concept.appearsIn", ObjectId: lectureID},
	}
	if err := tripleRepo.ReplaceForLecture(ctx, lectureID, second); err != nil {
		t.Fatalf("Failed to replace triples: %v", err)
	}
	got, err = tripleRepo.GetByLecture(ctx, lectureID)
	if err != nil {
		t.Fatalf("Failed to get triples: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected 1 triple after replacement, got %d", len(got))
	}
	if got[0].Subject != 3 {
		t.Fatalf("Expected replacement subject, got %d", got[0].Subject)
	}

	// Graphs of other lectures are untouched
	other := core.ID(43)
	if err := tripleRepo.ReplaceForLecture(ctx, other, first); err != nil {
		t.Fatalf("Failed to replace triples: %v", err)
	}
	got, err = tripleRepo.GetByLecture(ctx, lectureID)
	if err != nil {
		t.Fatalf("Failed to get triples: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected other lecture's graph untouched, got %d triples", len(got))
	}
}
