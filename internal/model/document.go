package model

import (
	"fmt"
	"sort"
	"time"
)

// ProcessingStatus is the extraction state of a document.
type ProcessingStatus string

const (
	StatusPending       ProcessingStatus = "Pending"
	StatusProcessing    ProcessingStatus = "Processing"
	StatusOCRInProgress ProcessingStatus = "OCRInProgress"
	StatusCompleted     ProcessingStatus = "Completed"
	StatusFailed        ProcessingStatus = "Failed"
)

// transitions lists the forward moves of the state machine. Failed is
// reachable from every non-terminal state and is handled separately.
var transitions = map[ProcessingStatus][]ProcessingStatus{
	StatusPending:       {StatusProcessing},
	StatusProcessing:    {StatusOCRInProgress},
	StatusOCRInProgress: {StatusCompleted},
}

// ParseProcessingStatus converts a stored string back to a status.
func ParseProcessingStatus(s string) (ProcessingStatus, error) {
	switch st := ProcessingStatus(s); st {
	case StatusPending, StatusProcessing, StatusOCRInProgress, StatusCompleted, StatusFailed:
		return st, nil
	}
	return "", fmt.Errorf("unknown processing status: %q", s)
}

// Terminal reports whether no automatic transition leaves this status.
func (s ProcessingStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CanTransition reports whether from -> to is a legal move.
func CanTransition(from, to ProcessingStatus) bool {
	if to == StatusFailed {
		return !from.Terminal()
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Document is a user's source file split into ordered segments.
type Document struct {
	ID               string
	UserID           string
	Name             string
	OriginalFileName string
	FileType         string
	SourceLanguage   string
	TargetLanguage   string
	FileSize         int64
	FileID           string // content address of the stored original, empty if none
	CreatedAt        time.Time
	UpdatedAt        time.Time
	ProcessingStatus ProcessingStatus
	Segments         []*Segment
	Metadata         map[string]string

	// Version is bumped by the store on every successful update and must
	// match the stored value for an update to be accepted.
	Version int64
}

// Touch refreshes UpdatedAt.
func (d *Document) Touch(now time.Time) {
	d.UpdatedAt = now.UTC()
}

// Transition moves the document to a new processing status.
func (d *Document) Transition(to ProcessingStatus, now time.Time) error {
	if !CanTransition(d.ProcessingStatus, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, d.ProcessingStatus, to)
	}
	d.ProcessingStatus = to
	d.Touch(now)
	return nil
}

// ResetForReprocessing puts a terminal document back to Pending and drops
// its segments. Only an explicit request does this; nothing retries on its own.
func (d *Document) ResetForReprocessing(now time.Time) error {
	if !d.ProcessingStatus.Terminal() {
		return fmt.Errorf("%w: document is %s", ErrInvalidTransition, d.ProcessingStatus)
	}
	d.ProcessingStatus = StatusPending
	d.Segments = nil
	d.Touch(now)
	return nil
}

// Segment returns the segment with the given id, or nil.
func (d *Document) Segment(id string) *Segment {
	for _, s := range d.Segments {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// SortedSegments returns the segments ordered by Position. Equal positions
// keep their stored order.
func (d *Document) SortedSegments() []*Segment {
	out := make([]*Segment, len(d.Segments))
	copy(out, d.Segments)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Position < out[j].Position
	})
	return out
}

// SetSegments replaces the segments, assigning positions 0..n-1 in order.
func (d *Document) SetSegments(segments []*Segment) {
	for i, s := range segments {
		s.Position = i
	}
	d.Segments = segments
}
