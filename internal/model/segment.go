package model

import (
	"strings"
	"time"
)

// Segment is one ordered unit of a document. SourceText never changes after
// creation; TargetText is the only field callers edit freely.
type Segment struct {
	ID          string
	SourceText  string
	TargetText  *string
	Position    int
	Annotations map[string]*Annotation
	Redactions  map[string]*Redaction
}

// NewSegment creates a segment with empty span maps.
func NewSegment(id, sourceText string, position int) *Segment {
	return &Segment{
		ID:          id,
		SourceText:  sourceText,
		Position:    position,
		Annotations: make(map[string]*Annotation),
		Redactions:  make(map[string]*Redaction),
	}
}

// UpdateTargetText replaces the target text. A nil text clears it.
// The owning document's UpdatedAt must be refreshed by the caller.
func (s *Segment) UpdateTargetText(text *string) {
	if text == nil {
		s.TargetText = nil
		return
	}
	t := *text
	s.TargetText = &t
}

// AddAnnotation validates the span and text and attaches a new annotation.
func (s *Segment) AddAnnotation(id, text string, start, end int, author string, now time.Time) (*Annotation, error) {
	if err := ValidateSpan(start, end, TextLength(s.SourceText)); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyAnnotationText
	}

	a := &Annotation{
		Span: Span{
			ID:         id,
			StartIndex: start,
			EndIndex:   end,
			CreatedAt:  now.UTC(),
			CreatedBy:  author,
		},
		Text: text,
	}
	if s.Annotations == nil {
		s.Annotations = make(map[string]*Annotation)
	}
	s.Annotations[id] = a
	return a, nil
}

// AddRedaction validates the span and attaches a new redaction.
// reason may be nil.
func (s *Segment) AddRedaction(id string, start, end int, reason *string, author string, now time.Time) (*Redaction, error) {
	if err := ValidateSpan(start, end, TextLength(s.SourceText)); err != nil {
		return nil, err
	}

	r := &Redaction{
		Span: Span{
			ID:         id,
			StartIndex: start,
			EndIndex:   end,
			CreatedAt:  now.UTC(),
			CreatedBy:  author,
		},
		Reason: reason,
	}
	if s.Redactions == nil {
		s.Redactions = make(map[string]*Redaction)
	}
	s.Redactions[id] = r
	return r, nil
}

// RemoveAnnotation deletes the annotation if present. Removing an unknown id
// is a no-op; the return value reports whether anything was removed.
func (s *Segment) RemoveAnnotation(id string) bool {
	if _, ok := s.Annotations[id]; !ok {
		return false
	}
	delete(s.Annotations, id)
	return true
}

// RemoveRedaction deletes the redaction if present. See RemoveAnnotation.
func (s *Segment) RemoveRedaction(id string) bool {
	if _, ok := s.Redactions[id]; !ok {
		return false
	}
	delete(s.Redactions, id)
	return true
}

// Annotation returns the annotation with the given id, or nil.
func (s *Segment) Annotation(id string) *Annotation {
	return s.Annotations[id]
}

// Redaction returns the redaction with the given id, or nil.
func (s *Segment) Redaction(id string) *Redaction {
	return s.Redactions[id]
}

// HasTarget reports whether the segment carries non-blank target text.
func (s *Segment) HasTarget() bool {
	return s.TargetText != nil && strings.TrimSpace(*s.TargetText) != ""
}
