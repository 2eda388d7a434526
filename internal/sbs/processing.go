package sbs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"sbs-go/internal/extract"
	"sbs-go/internal/model"
)

// Metadata keys written by processing.
const (
	MetadataWordCount = "word_count"
	MetadataTitle     = "title"
	MetadataError     = "error"
)

// ErrNoText is recorded when extraction finds nothing to translate.
var ErrNoText = errors.New("no translatable text found")

// ProcessDocument extracts and segments a Pending document, moving it
// through Processing and OCRInProgress to Completed. On any failure the
// document ends Failed with the reason in its metadata, and the error is
// returned for the caller to log.
func (s *Service) ProcessDocument(ctx context.Context, documentID string) error {
	doc, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("loading document: %w", err)
	}
	if doc == nil {
		return model.NewNotFound("document", documentID)
	}

	if err := s.advance(ctx, doc, model.StatusProcessing); err != nil {
		// A document that is not Pending belongs to another job or is done.
		if !errors.Is(err, model.ErrInvalidTransition) {
			s.markFailed(ctx, documentID, err)
		}
		return err
	}

	if err := s.extractSegments(ctx, doc); err != nil {
		s.markFailed(ctx, documentID, err)
		return err
	}

	// Segments and the final status are saved together.
	if err := doc.Transition(model.StatusCompleted, s.clock.Now()); err != nil {
		s.markFailed(ctx, documentID, err)
		return err
	}
	if err := s.documents.Update(ctx, doc); err != nil {
		s.markFailed(ctx, documentID, err)
		return fmt.Errorf("saving processed document: %w", err)
	}

	s.logger.Info("document processed", "document_id", doc.ID, "segments", len(doc.Segments),
		MetadataWordCount, doc.Metadata[MetadataWordCount])
	return nil
}

// advance moves the document to status and saves it.
func (s *Service) advance(ctx context.Context, doc *model.Document, status model.ProcessingStatus) error {
	if err := doc.Transition(status, s.clock.Now()); err != nil {
		return err
	}
	if err := s.documents.Update(ctx, doc); err != nil {
		return fmt.Errorf("saving document status: %w", err)
	}
	return nil
}

func (s *Service) extractSegments(ctx context.Context, doc *model.Document) error {
	extractor, err := extract.ForFileType(doc.FileType)
	if err != nil {
		return err
	}
	if doc.FileID == "" {
		return fmt.Errorf("document %s has no original file", doc.ID)
	}

	if err := s.advance(ctx, doc, model.StatusOCRInProgress); err != nil {
		return err
	}

	var original bytes.Buffer
	if err := s.files.Get(ctx, doc.FileID, &original); err != nil {
		return fmt.Errorf("reading original file: %w", err)
	}

	result, err := extractor.Extract(ctx, &original)
	if err != nil {
		return fmt.Errorf("extracting text: %w", err)
	}
	if len(result.Units) == 0 {
		return ErrNoText
	}

	segments := make([]*model.Segment, len(result.Units))
	for i, u := range result.Units {
		seg := model.NewSegment(s.idgen.New(), u.Source, i)
		seg.UpdateTargetText(u.Target)
		segments[i] = seg
	}
	doc.SetSegments(segments)

	if doc.Metadata == nil {
		doc.Metadata = map[string]string{}
	}
	if title := strings.TrimSpace(result.Title); title != "" {
		doc.Metadata[MetadataTitle] = title
	}
	return s.countWords(doc)
}

// countWords stores the source word count of doc in its metadata.
func (s *Service) countWords(doc *model.Document) error {
	total := 0
	for _, seg := range doc.Segments {
		n, err := s.words.Count(doc.SourceLanguage, seg.SourceText)
		if err != nil {
			return err
		}
		total += n
	}
	if doc.Metadata == nil {
		doc.Metadata = map[string]string{}
	}
	doc.Metadata[MetadataWordCount] = strconv.Itoa(total)
	return nil
}

// FailDocument moves a document that could not be processed to Failed,
// recording cause. Terminal documents are left as they are.
func (s *Service) FailDocument(ctx context.Context, documentID string, cause error) {
	s.markFailed(ctx, documentID, cause)
}

// markFailed reloads the document and moves it to Failed. It runs even when
// ctx is already cancelled, so a timed-out job still leaves a final status.
func (s *Service) markFailed(ctx context.Context, documentID string, cause error) {
	ctx = context.WithoutCancel(ctx)

	doc, err := s.documents.GetByID(ctx, documentID)
	if err != nil || doc == nil {
		s.logger.Error("loading document to mark failed", "document_id", documentID, "error", err)
		return
	}
	if doc.ProcessingStatus.Terminal() {
		return
	}
	if err := doc.Transition(model.StatusFailed, s.clock.Now()); err != nil {
		s.logger.Error("marking document failed", "document_id", documentID, "error", err)
		return
	}
	if doc.Metadata == nil {
		doc.Metadata = map[string]string{}
	}
	doc.Metadata[MetadataError] = cause.Error()
	if err := s.documents.Update(ctx, doc); err != nil {
		s.logger.Error("saving failed document", "document_id", documentID, "error", err)
		return
	}
	s.logger.Warn("document processing failed", "document_id", documentID, "error", cause)
}
