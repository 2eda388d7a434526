package sbs

import (
	"context"
	"fmt"

	"sbs-go/internal/model"
)

// ListSegments returns the segments of an owned document in position order.
func (s *Service) ListSegments(ctx context.Context, userID, documentID string) ([]*model.Segment, error) {
	doc, err := s.ownedDocument(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}
	return doc.SortedSegments(), nil
}

// GetSegment returns one segment of an owned document.
func (s *Service) GetSegment(ctx context.Context, userID, documentID, segmentID string) (*model.Segment, error) {
	doc, err := s.ownedDocument(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}
	return findSegment(doc, segmentID)
}

// UpdateSegmentTarget sets the translation of a segment. A nil text clears it.
func (s *Service) UpdateSegmentTarget(ctx context.Context, userID, documentID, segmentID string, text *string) (*model.Segment, error) {
	var seg *model.Segment
	_, err := s.mutateDocument(ctx, userID, documentID, func(doc *model.Document) error {
		var err error
		if seg, err = findSegment(doc, segmentID); err != nil {
			return err
		}
		seg.UpdateTargetText(text)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return seg, nil
}

// AddAnnotation attaches a comment to [start, end) of a segment's source text.
func (s *Service) AddAnnotation(ctx context.Context, userID, documentID, segmentID, text string, start, end int) (*model.Annotation, error) {
	var ann *model.Annotation
	_, err := s.mutateDocument(ctx, userID, documentID, func(doc *model.Document) error {
		seg, err := findSegment(doc, segmentID)
		if err != nil {
			return err
		}
		ann, err = seg.AddAnnotation(s.idgen.New(), text, start, end, userID, s.clock.Now())
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("annotation added", "document_id", documentID, "segment_id", segmentID, "annotation_id", ann.ID)
	return ann, nil
}

// AddRedaction suppresses [start, end) of a segment's source text. reason may be nil.
func (s *Service) AddRedaction(ctx context.Context, userID, documentID, segmentID string, start, end int, reason *string) (*model.Redaction, error) {
	var red *model.Redaction
	_, err := s.mutateDocument(ctx, userID, documentID, func(doc *model.Document) error {
		seg, err := findSegment(doc, segmentID)
		if err != nil {
			return err
		}
		red, err = seg.AddRedaction(s.idgen.New(), start, end, reason, userID, s.clock.Now())
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("redaction added", "document_id", documentID, "segment_id", segmentID, "redaction_id", red.ID)
	return red, nil
}

// RemoveAnnotation deletes an annotation. Removing one that does not exist
// succeeds and reports false; the document is left untouched.
func (s *Service) RemoveAnnotation(ctx context.Context, userID, documentID, segmentID, annotationID string) (bool, error) {
	return s.removeSpan(ctx, userID, documentID, segmentID, func(seg *model.Segment) bool {
		return seg.RemoveAnnotation(annotationID)
	})
}

// RemoveRedaction deletes a redaction. See RemoveAnnotation.
func (s *Service) RemoveRedaction(ctx context.Context, userID, documentID, segmentID, redactionID string) (bool, error) {
	return s.removeSpan(ctx, userID, documentID, segmentID, func(seg *model.Segment) bool {
		return seg.RemoveRedaction(redactionID)
	})
}

func (s *Service) removeSpan(ctx context.Context, userID, documentID, segmentID string, remove func(*model.Segment) bool) (bool, error) {
	doc, err := s.ownedDocument(ctx, userID, documentID)
	if err != nil {
		return false, err
	}
	seg, err := findSegment(doc, segmentID)
	if err != nil {
		return false, err
	}
	if !remove(seg) {
		return false, nil
	}
	doc.Touch(s.clock.Now())
	if err := s.documents.Update(ctx, doc); err != nil {
		return false, fmt.Errorf("saving document: %w", err)
	}
	return true, nil
}
