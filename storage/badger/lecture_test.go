package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/lecturegraph/core"
	"github.com/poiesic/lecturegraph/storage"
)

func TestLectureBasics(t *testing.T) {
	lectureRepo, conceptRepo, tripleRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { tripleRepo.Close(); conceptRepo.Close(); lectureRepo.Close(); backend.Close() }()

	ctx := context.Background()

	lecture := &core.Lecture{
		Title:    "Introduction to Cell Biology",
		Language: "en",
	}

	added, err := lectureRepo.AddLecture(ctx, lecture)
	if err != nil {
		t.Fatalf("Failed to add lecture: %v", err)
	}
	if added.Id == 0 {
		t.Fatal("Expected non-zero ID")
	}
	if added.State != core.StateIngested {
		t.Fatalf("Expected INGESTED, got %s", added.State)
	}

	// Adding the same material again returns the stored record
	again, err := lectureRepo.AddLecture(ctx, &core.Lecture{
		Title:    "Introduction to Cell Biology",
		Language: "en",
	})
	if err != nil {
		t.Fatalf("Failed to re-add lecture: %v", err)
	}
	if again.Id != added.Id {
		t.Fatalf("Expected same ID on re-ingestion, got %d and %d", added.Id, again.Id)
	}

	retrieved, err := lectureRepo.GetLecture(ctx, added.Id)
	if err != nil {
		t.Fatalf("Failed to get lecture: %v", err)
	}
	if retrieved.Title != "Introduction to Cell Biology" {
		t.Fatalf("Unexpected title %q", retrieved.Title)
	}

	_, err = lectureRepo.GetLecture(ctx, 424242)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestLectureStateTransitions(t *testing.T) {
	lectureRepo, conceptRepo, tripleRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { tripleRepo.Close(); conceptRepo.Close(); lectureRepo.Close(); backend.Close() }()

	ctx := context.Background()

	lecture, err := lectureRepo.AddLecture(ctx, &core.Lecture{Title: "Genetics", Language: "en"})
	if err != nil {
		t.Fatalf("Failed to add lecture: %v", err)
	}

	// Walk the full linear progression
	progression := []core.LectureState{
		core.StateSegmented,
		core.StateMentionsExtracted,
		core.StateAligned,
		core.StateEnriched,
		core.StateAssembled,
		core.StateExported,
	}
	for _, state := range progression {
		if err := lectureRepo.SetLectureState(ctx, lecture.Id, state, ""); err != nil {
			t.Fatalf("Failed to transition to %s: %v", state, err)
		}
	}

	// Skipping ahead is rejected
	err = lectureRepo.SetLectureState(ctx, lecture.Id, core.StateAssembled, "")
	if !errors.Is(err, core.ErrInvalidTransition) {
		t.Fatalf("Expected ErrInvalidTransition, got %v", err)
	}

	// Re-ingestion from EXPORTED restarts the run and clears warnings
	if err := lectureRepo.AppendWarning(ctx, lecture.Id, "spotter degraded on segment 3"); err != nil {
		t.Fatalf("Failed to append warning: %v", err)
	}
	if err := lectureRepo.SetLectureState(ctx, lecture.Id, core.StateIngested, ""); err != nil {
		t.Fatalf("Failed to re-ingest: %v", err)
	}
	reloaded, err := lectureRepo.GetLecture(ctx, lecture.Id)
	if err != nil {
		t.Fatalf("Failed to reload lecture: %v", err)
	}
	if len(reloaded.Warnings) != 0 {
		t.Fatalf("Expected warnings cleared on re-ingestion, got %v", reloaded.Warnings)
	}

	// Cancellation is absorbing
	if err := lectureRepo.SetLectureState(ctx, lecture.Id, core.StateCancelled, "operator abort"); err != nil {
		t.Fatalf("Failed to cancel: %v", err)
	}
	err = lectureRepo.SetLectureState(ctx, lecture.Id, core.StateSegmented, "")
	if !errors.Is(err, core.ErrInvalidTransition) {
		t.Fatalf("Expected ErrInvalidTransition out of CANCELLED, got %v", err)
	}

	reloaded, err = lectureRepo.GetLecture(ctx, lecture.Id)
	if err != nil {
		t.Fatalf("Failed to reload lecture: %v", err)
	}
	if reloaded.StateReason != "operator abort" {
		t.Fatalf("Expected state reason to persist, got %q", reloaded.StateReason)
	}
}

func TestAddSegments(t *testing.T) {
	lectureRepo, conceptRepo, tripleRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { tripleRepo.Close(); conceptRepo.Close(); lectureRepo.Close(); backend.Close() }()

	ctx := context.Background()

	lecture, err := lectureRepo.AddLecture(ctx, &core.Lecture{Title: "Photosynthesis", Language: "en"})
	if err != nil {
		t.Fatalf("Failed to add lecture: %v", err)
	}

	// Insert out of start order; retrieval must come back ordered
	segments := []*core.Segment{
		{LectureId: lecture.Id, Modality: core.ModalityText, Start: 60, End: 120, PayloadRef: "transcript/2"},
		{LectureId: lecture.Id, Modality: core.ModalityText, Start: 0, End: 60, PayloadRef: "transcript/1"},
		{LectureId: lecture.Id, Modality: core.ModalityImage, Start: 30, End: 30, PayloadRef: "slides/4"},
	}
	added, err := lectureRepo.AddSegments(ctx, segments...)
	if err != nil {
		t.Fatalf("Failed to add segments: %v", err)
	}
	for _, segment := range added {
		if segment.Id == 0 {
			t.Fatal("Expected non-zero segment ID")
		}
	}

	ordered, err := lectureRepo.GetSegmentsByLecture(ctx, lecture.Id)
	if err != nil {
		t.Fatalf("Failed to get segments: %v", err)
	}
	if len(ordered) != 3 {
		t.Fatalf("Expected 3 segments, got %d", len(ordered))
	}
	for i := 1; i < len(ordered); i++ {
		if ordered[i-1].Start > ordered[i].Start {
			t.Fatalf("Expected segments ordered by start, got %f before %f", ordered[i-1].Start, ordered[i].Start)
		}
	}

	// Segment IDs recorded on the lecture
	reloaded, err := lectureRepo.GetLecture(ctx, lecture.Id)
	if err != nil {
		t.Fatalf("Failed to reload lecture: %v", err)
	}
	if len(reloaded.SegmentIds) != 3 {
		t.Fatalf("Expected 3 segment IDs on lecture, got %d", len(reloaded.SegmentIds))
	}

	// Re-adding the same segment is a no-op
	_, err = lectureRepo.AddSegments(ctx, &core.Segment{
		LectureId: lecture.Id, Modality: core.ModalityText, Start: 0, End: 60, PayloadRef: "transcript/1",
	})
	if err != nil {
		t.Fatalf("Failed to re-add segment: %v", err)
	}
	reloaded, err = lectureRepo.GetLecture(ctx, lecture.Id)
	if err != nil {
		t.Fatalf("Failed to reload lecture: %v", err)
	}
	if len(reloaded.SegmentIds) != 3 {
		t.Fatalf("Expected re-add to be a no-op, got %d segment IDs", len(reloaded.SegmentIds))
	}
}

func TestListLectures(t *testing.T) {
	lectureRepo, conceptRepo, tripleRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { tripleRepo.Close(); conceptRepo.Close(); lectureRepo.Close(); backend.Close() }()

	ctx := context.Background()

	titles := []string{"Alpha", "Beta", "Gamma"}
	for _, title := range titles {
		if _, err := lectureRepo.AddLecture(ctx, &core.Lecture{Title: title, Language: "en"}); err != nil {
			t.Fatalf("Failed to add lecture %q: %v", title, err)
		}
	}

	all, err := lectureRepo.ListLectures(ctx)
	if err != nil {
		t.Fatalf("Failed to list lectures: %v", err)
	}
	if len(all) != len(titles) {
		t.Fatalf("Expected %d lectures, got %d", len(titles), len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Id >= all[i].Id {
			t.Fatalf("Expected lectures ordered by ID, got %d before %d", all[i-1].Id, all[i].Id)
		}
	}
}
