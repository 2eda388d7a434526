// Package sbs is the side-by-side translation service: documents split into
// segments, span annotations and redactions, and a per-user translation
// memory.
package sbs

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"sbs-go/internal/extract"
	"sbs-go/internal/model"
)

// Service coordinates the stores, the file store and the processor to
// perform the operations the CLI needs. Every operation acts on behalf of a
// user and checks ownership before touching anything.
type Service struct {
	documents  DocumentStore
	memory     TMStore
	files      FileStore
	dispatcher Dispatcher
	words      *extract.WordCounter
	logger     Logger
	clock      Clock
	idgen      IDGenerator

	minConfidence float64
}

// NewService creates a Service with the provided dependencies. dispatcher
// may be nil, in which case imported documents stay Pending until
// ProcessDocument is called directly.
func NewService(documents DocumentStore, memory TMStore, files FileStore, dispatcher Dispatcher, logger Logger, clock Clock, idgen IDGenerator) *Service {
	return &Service{
		documents:     documents,
		memory:        memory,
		files:         files,
		dispatcher:    dispatcher,
		words:         extract.NewWordCounter(),
		logger:        logger,
		clock:         clock,
		idgen:         idgen,
		minConfidence: defaultMinConfidence,
	}
}

// SetMinConfidence changes the search threshold used when a query sets none.
func (s *Service) SetMinConfidence(v float64) {
	s.minConfidence = v
}

// ownedDocument loads a document and checks that userID owns it.
func (s *Service) ownedDocument(ctx context.Context, userID, id string) (*model.Document, error) {
	doc, err := s.documents.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading document: %w", err)
	}
	if doc == nil {
		return nil, model.NewNotFound("document", id)
	}
	if doc.UserID != userID {
		return nil, fmt.Errorf("%w: document %s belongs to another user", model.ErrForbidden, id)
	}
	return doc, nil
}

// mutateDocument applies fn to an owned document, refreshes UpdatedAt and
// saves it. A concurrent change between load and save fails with
// model.ErrConflict and nothing is written.
func (s *Service) mutateDocument(ctx context.Context, userID, id string, fn func(doc *model.Document) error) (*model.Document, error) {
	doc, err := s.ownedDocument(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := fn(doc); err != nil {
		return nil, err
	}
	doc.Touch(s.clock.Now())
	if err := s.documents.Update(ctx, doc); err != nil {
		return nil, fmt.Errorf("saving document: %w", err)
	}
	return doc, nil
}

func findSegment(doc *model.Document, segmentID string) (*model.Segment, error) {
	seg := doc.Segment(segmentID)
	if seg == nil {
		return nil, model.NewNotFound("segment", segmentID)
	}
	return seg, nil
}

func validateLanguage(field, lang string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(lang))
	if n < 2 || n > 10 {
		return model.NewValidation(field, "must be 2 to 10 characters, got %q", lang)
	}
	return nil
}

func validateName(name string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n < 1 || n > 100 {
		return model.NewValidation("name", "must be 1 to 100 characters")
	}
	return nil
}

func validateConfidence(c float64) error {
	if c < 0 || c > 1 {
		return model.NewValidation("confidence", "must be between 0 and 1, got %v", c)
	}
	return nil
}

func validateLanguages(source, target string) error {
	if err := validateLanguage("source_language", source); err != nil {
		return err
	}
	return validateLanguage("target_language", target)
}
