package sbs

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"sbs-go/internal/extract"
	"sbs-go/internal/model"
)

// ImportRequest describes an uploaded file to translate.
type ImportRequest struct {
	Name           string // defaults to the file name without its extension
	FileName       string
	SourceLanguage string
	TargetLanguage string
	Content        io.Reader
	Metadata       map[string]string
}

// SegmentInput is one pre-extracted segment of a CreateRequest.
type SegmentInput struct {
	SourceText string
	TargetText *string
}

// CreateRequest describes a document whose segments the caller already has.
type CreateRequest struct {
	Name           string
	FileType       string
	SourceLanguage string
	TargetLanguage string
	Segments       []SegmentInput
	Metadata       map[string]string
}

// UpdateDocumentRequest changes document properties. Nil fields are left
// as they are; a non-nil Metadata replaces the whole map.
type UpdateDocumentRequest struct {
	Name           *string
	SourceLanguage *string
	TargetLanguage *string
	Metadata       map[string]string
}

// ImportDocument stores the original file, creates a Pending document and
// hands it to the dispatcher. Processing happens in the background; the
// returned document is still Pending.
func (s *Service) ImportDocument(ctx context.Context, userID string, req ImportRequest) (*model.Document, error) {
	if strings.TrimSpace(req.FileName) == "" {
		return nil, model.NewValidation("file_name", "is required")
	}
	name := req.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(req.FileName), filepath.Ext(req.FileName))
	}
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validateLanguages(req.SourceLanguage, req.TargetLanguage); err != nil {
		return nil, err
	}
	if req.Content == nil {
		return nil, model.NewValidation("content", "is required")
	}

	fileID, size, err := s.files.Put(ctx, req.Content)
	if err != nil {
		return nil, fmt.Errorf("storing original file: %w", err)
	}

	now := s.clock.Now()
	doc := &model.Document{
		ID:               s.idgen.New(),
		UserID:           userID,
		Name:             strings.TrimSpace(name),
		OriginalFileName: filepath.Base(req.FileName),
		FileType:         extract.NormalizeFileType(filepath.Ext(req.FileName)),
		SourceLanguage:   strings.TrimSpace(req.SourceLanguage),
		TargetLanguage:   strings.TrimSpace(req.TargetLanguage),
		FileSize:         size,
		FileID:           fileID,
		CreatedAt:        now,
		UpdatedAt:        now,
		ProcessingStatus: model.StatusPending,
		Metadata:         copyMetadata(req.Metadata),
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		s.releaseFile(ctx, fileID)
		return nil, fmt.Errorf("creating document: %w", err)
	}

	s.logger.Info("document imported", "document_id", doc.ID, "user_id", userID,
		"file", doc.OriginalFileName, "size", size)
	s.dispatch(doc.ID)
	return doc, nil
}

// CreateDocument stores a document from segments the caller extracted
// itself. Nothing needs processing, so it starts Completed.
func (s *Service) CreateDocument(ctx context.Context, userID string, req CreateRequest) (*model.Document, error) {
	if err := validateName(req.Name); err != nil {
		return nil, err
	}
	if err := validateLanguages(req.SourceLanguage, req.TargetLanguage); err != nil {
		return nil, err
	}

	segments := make([]*model.Segment, 0, len(req.Segments))
	for i, in := range req.Segments {
		if strings.TrimSpace(in.SourceText) == "" {
			return nil, model.NewValidation("segments", "segment %d has no source text", i)
		}
		seg := model.NewSegment(s.idgen.New(), in.SourceText, i)
		seg.UpdateTargetText(in.TargetText)
		segments = append(segments, seg)
	}

	now := s.clock.Now()
	doc := &model.Document{
		ID:               s.idgen.New(),
		UserID:           userID,
		Name:             strings.TrimSpace(req.Name),
		FileType:         extract.NormalizeFileType(req.FileType),
		SourceLanguage:   strings.TrimSpace(req.SourceLanguage),
		TargetLanguage:   strings.TrimSpace(req.TargetLanguage),
		CreatedAt:        now,
		UpdatedAt:        now,
		ProcessingStatus: model.StatusCompleted,
		Metadata:         copyMetadata(req.Metadata),
	}
	doc.SetSegments(segments)
	if err := s.countWords(doc); err != nil {
		s.logger.Warn("counting words failed", "document_id", doc.ID, "error", err)
	}

	if err := s.documents.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("creating document: %w", err)
	}
	s.logger.Info("document created", "document_id", doc.ID, "user_id", userID, "segments", len(segments))
	return doc, nil
}

// GetDocument returns an owned document with its segments.
func (s *Service) GetDocument(ctx context.Context, userID, id string) (*model.Document, error) {
	return s.ownedDocument(ctx, userID, id)
}

// ListDocuments returns the user's documents, oldest first.
func (s *Service) ListDocuments(ctx context.Context, userID string) ([]*model.Document, error) {
	docs, err := s.documents.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	return docs, nil
}

// UpdateDocument changes the name, languages or metadata of a document.
func (s *Service) UpdateDocument(ctx context.Context, userID, id string, req UpdateDocumentRequest) (*model.Document, error) {
	if req.Name != nil {
		if err := validateName(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.SourceLanguage != nil {
		if err := validateLanguage("source_language", *req.SourceLanguage); err != nil {
			return nil, err
		}
	}
	if req.TargetLanguage != nil {
		if err := validateLanguage("target_language", *req.TargetLanguage); err != nil {
			return nil, err
		}
	}

	return s.mutateDocument(ctx, userID, id, func(doc *model.Document) error {
		if req.Name != nil {
			doc.Name = strings.TrimSpace(*req.Name)
		}
		if req.SourceLanguage != nil {
			doc.SourceLanguage = strings.TrimSpace(*req.SourceLanguage)
		}
		if req.TargetLanguage != nil {
			doc.TargetLanguage = strings.TrimSpace(*req.TargetLanguage)
		}
		if req.Metadata != nil {
			doc.Metadata = copyMetadata(req.Metadata)
		}
		return nil
	})
}

// DeleteDocument removes a document with its segments and spans, and its
// original file once no other document references the same content.
func (s *Service) DeleteDocument(ctx context.Context, userID, id string) error {
	doc, err := s.ownedDocument(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.documents.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	if doc.FileID != "" {
		s.releaseFile(ctx, doc.FileID)
	}
	s.logger.Info("document deleted", "document_id", id, "user_id", userID)
	return nil
}

// Reprocess resets a Completed or Failed document to Pending, dropping its
// segments, and dispatches it again.
func (s *Service) Reprocess(ctx context.Context, userID, id string) (*model.Document, error) {
	doc, err := s.mutateDocument(ctx, userID, id, func(doc *model.Document) error {
		if doc.FileID == "" {
			return model.NewValidation("document", "has no original file to process")
		}
		if err := doc.ResetForReprocessing(s.clock.Now()); err != nil {
			return err
		}
		delete(doc.Metadata, MetadataError)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("document queued for reprocessing", "document_id", id, "user_id", userID)
	s.dispatch(doc.ID)
	return doc, nil
}

// OriginalFile writes the stored original of an owned document to w.
func (s *Service) OriginalFile(ctx context.Context, userID, id string, w io.Writer) (*model.Document, error) {
	doc, err := s.ownedDocument(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if doc.FileID == "" {
		return nil, model.NewNotFound("original file", id)
	}
	if err := s.files.Get(ctx, doc.FileID, w); err != nil {
		return nil, fmt.Errorf("reading original file: %w", err)
	}
	return doc, nil
}

func (s *Service) dispatch(documentID string) {
	if s.dispatcher == nil {
		s.logger.Warn("no processor configured; document stays pending", "document_id", documentID)
		return
	}
	s.dispatcher.ProcessDocument(documentID)
}

// releaseFile deletes stored content that no document references any more.
// Failures only leave an orphaned blob behind, so they are logged. An import
// of the same content running concurrently in another process can lose its
// blob here.
func (s *Service) releaseFile(ctx context.Context, fileID string) {
	n, err := s.documents.CountByFileID(ctx, fileID)
	if err != nil {
		s.logger.Warn("checking original file references failed", "file_id", fileID, "error", err)
		return
	}
	if n > 0 {
		return
	}
	if err := s.files.Delete(ctx, fileID); err != nil {
		s.logger.Warn("deleting original file failed", "file_id", fileID, "error", err)
	}
}

func copyMetadata(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
