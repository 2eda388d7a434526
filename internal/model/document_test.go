package model

import (
	"errors"
	"testing"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to ProcessingStatus
		want     bool
	}{
		{StatusPending, StatusProcessing, true},
		{StatusProcessing, StatusOCRInProgress, true},
		{StatusOCRInProgress, StatusCompleted, true},
		{StatusPending, StatusFailed, true},
		{StatusProcessing, StatusFailed, true},
		{StatusOCRInProgress, StatusFailed, true},
		{StatusPending, StatusCompleted, false},
		{StatusCompleted, StatusFailed, false},
		{StatusFailed, StatusProcessing, false},
		{StatusCompleted, StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestDocument_Transition(t *testing.T) {
	doc := &Document{ProcessingStatus: StatusPending}

	if err := doc.Transition(StatusCompleted, testNow); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Transition(Completed) from Pending error = %v, want ErrInvalidTransition", err)
	}
	for _, st := range []ProcessingStatus{StatusProcessing, StatusOCRInProgress, StatusCompleted} {
		if err := doc.Transition(st, testNow); err != nil {
			t.Fatalf("Transition(%s) error = %v", st, err)
		}
	}
	if !doc.UpdatedAt.Equal(testNow) {
		t.Errorf("UpdatedAt = %v, want %v", doc.UpdatedAt, testNow)
	}

	doc.Segments = []*Segment{NewSegment("s", "x", 0)}
	if err := doc.ResetForReprocessing(testNow); err != nil {
		t.Fatalf("ResetForReprocessing() error = %v", err)
	}
	if doc.ProcessingStatus != StatusPending || len(doc.Segments) != 0 {
		t.Errorf("after reset: status %s, %d segments", doc.ProcessingStatus, len(doc.Segments))
	}
	if err := doc.ResetForReprocessing(testNow); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("ResetForReprocessing() on Pending error = %v, want ErrInvalidTransition", err)
	}
}

func TestDocument_SortedSegments(t *testing.T) {
	doc := &Document{Segments: []*Segment{
		NewSegment("c", "third", 2),
		NewSegment("a", "first", 0),
		NewSegment("b", "second", 1),
	}}

	// Mutations do not reorder.
	text := "deuxième"
	doc.Segment("b").UpdateTargetText(&text)
	doc.Segment("c").AddAnnotation("a-1", "note", 0, 1, "u1", testNow)

	got := doc.SortedSegments()
	want := []string{"a", "b", "c"}
	for i, s := range got {
		if s.ID != want[i] {
			t.Errorf("SortedSegments()[%d] = %s, want %s", i, s.ID, want[i])
		}
	}
	if doc.Segments[0].ID != "c" {
		t.Error("SortedSegments() modified the document's slice")
	}
}

func TestDocument_Segment(t *testing.T) {
	doc := &Document{}
	doc.SetSegments([]*Segment{NewSegment("a", "x", 9), NewSegment("b", "y", 9)})

	if doc.Segment("b").Position != 1 {
		t.Errorf("Position = %d, want 1", doc.Segment("b").Position)
	}
	if doc.Segment("missing") != nil {
		t.Error("Segment(missing) != nil")
	}
}

func TestNotFoundError(t *testing.T) {
	err := NewNotFound("document", "d1")
	if !errors.Is(err, ErrNotFound) {
		t.Error("NotFoundError does not unwrap to ErrNotFound")
	}
	if err.Error() != "document not found: d1" {
		t.Errorf("Error() = %q", err.Error())
	}

	verr := NewValidation("source_language", "must be 2-10 characters, got %d", 1)
	if !errors.Is(verr, ErrValidation) {
		t.Error("ValidationError does not unwrap to ErrValidation")
	}
}
