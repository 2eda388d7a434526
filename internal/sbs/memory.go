package sbs

import (
	"context"
	"fmt"
	"io"
	"strings"

	"sbs-go/internal/model"
	"sbs-go/internal/tm"
)

const (
	defaultMinConfidence = tm.DefaultMinConfidence

	// DefaultEntryConfidence applies when a new entry does not state one.
	DefaultEntryConfidence = 1.0
)

// EntryRequest describes a new translation-memory entry.
type EntryRequest struct {
	SourceLanguage string
	TargetLanguage string
	SourceText     string
	TargetText     string
	Confidence     *float64 // nil means DefaultEntryConfidence
	DocumentID     *string
	Context        *string
	Tags           []string
}

// EntryUpdate changes an entry. Nil fields are left as they are; a non-nil
// Tags replaces the list.
type EntryUpdate struct {
	SourceText *string
	TargetText *string
	Confidence *float64
	Context    *string
	IsVerified *bool
	Tags       []string
}

// CreateEntry adds a TM entry for the user. Confidence defaults to 1.0.
func (s *Service) CreateEntry(ctx context.Context, userID string, req EntryRequest) (*model.TMEntry, error) {
	if err := validateLanguages(req.SourceLanguage, req.TargetLanguage); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.SourceText) == "" {
		return nil, model.NewValidation("source_text", "is required")
	}
	if strings.TrimSpace(req.TargetText) == "" {
		return nil, model.NewValidation("target_text", "is required")
	}
	confidence := DefaultEntryConfidence
	if req.Confidence != nil {
		confidence = *req.Confidence
	}
	if err := validateConfidence(confidence); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	entry := &model.TMEntry{
		ID:             s.idgen.New(),
		UserID:         userID,
		SourceLanguage: strings.TrimSpace(req.SourceLanguage),
		TargetLanguage: strings.TrimSpace(req.TargetLanguage),
		SourceText:     req.SourceText,
		TargetText:     req.TargetText,
		Confidence:     confidence,
		DocumentID:     req.DocumentID,
		Context:        req.Context,
		Tags:           req.Tags,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.memory.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("creating tm entry: %w", err)
	}
	return entry, nil
}

// UpdateEntry applies the set fields of req to an owned entry.
func (s *Service) UpdateEntry(ctx context.Context, userID, id string, req EntryUpdate) (*model.TMEntry, error) {
	entry, err := s.ownedEntry(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.SourceText != nil {
		if strings.TrimSpace(*req.SourceText) == "" {
			return nil, model.NewValidation("source_text", "is required")
		}
		entry.SourceText = *req.SourceText
	}
	if req.TargetText != nil {
		if strings.TrimSpace(*req.TargetText) == "" {
			return nil, model.NewValidation("target_text", "is required")
		}
		entry.TargetText = *req.TargetText
	}
	if req.Confidence != nil {
		if err := validateConfidence(*req.Confidence); err != nil {
			return nil, err
		}
		entry.Confidence = *req.Confidence
	}
	if req.Context != nil {
		entry.Context = req.Context
	}
	if req.IsVerified != nil {
		entry.IsVerified = *req.IsVerified
	}
	if req.Tags != nil {
		entry.Tags = req.Tags
	}
	entry.UpdatedAt = s.clock.Now()

	if err := s.memory.Update(ctx, entry); err != nil {
		return nil, fmt.Errorf("updating tm entry: %w", err)
	}
	return entry, nil
}

// DeleteEntry removes an owned entry.
func (s *Service) DeleteEntry(ctx context.Context, userID, id string) error {
	if _, err := s.ownedEntry(ctx, userID, id); err != nil {
		return err
	}
	if err := s.memory.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting tm entry: %w", err)
	}
	return nil
}

// GetEntry returns an owned entry.
func (s *Service) GetEntry(ctx context.Context, userID, id string) (*model.TMEntry, error) {
	return s.ownedEntry(ctx, userID, id)
}

// ListEntries returns the user's entries in insertion order.
func (s *Service) ListEntries(ctx context.Context, userID string) ([]*model.TMEntry, error) {
	entries, err := s.memory.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing tm entries: %w", err)
	}
	return entries, nil
}

// PromoteSegment turns a translated segment into a TM entry in the
// document's language pair.
func (s *Service) PromoteSegment(ctx context.Context, userID, documentID, segmentID string, confidence *float64) (*model.TMEntry, error) {
	doc, err := s.ownedDocument(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}
	seg, err := findSegment(doc, segmentID)
	if err != nil {
		return nil, err
	}
	if !seg.HasTarget() {
		return nil, model.NewValidation("target_text", "segment %s has no translation to promote", segmentID)
	}

	docID := doc.ID
	return s.CreateEntry(ctx, userID, EntryRequest{
		SourceLanguage: doc.SourceLanguage,
		TargetLanguage: doc.TargetLanguage,
		SourceText:     seg.SourceText,
		TargetText:     *seg.TargetText,
		Confidence:     confidence,
		DocumentID:     &docID,
	})
}

// ImportTMX creates an entry for every translation unit of a TMX file that
// has both languages. A unit's own x-confidence property wins over
// confidence. It returns the number of entries created.
func (s *Service) ImportTMX(ctx context.Context, userID string, r io.Reader, sourceLang, targetLang string, confidence *float64) (int, error) {
	if err := validateLanguages(sourceLang, targetLang); err != nil {
		return 0, err
	}
	if confidence != nil {
		if err := validateConfidence(*confidence); err != nil {
			return 0, err
		}
	}

	pairs, err := tm.ParseTMX(r, sourceLang, targetLang)
	if err != nil {
		return 0, model.NewValidation("tmx", "%v", err)
	}

	created := 0
	for _, p := range pairs {
		req := EntryRequest{
			SourceLanguage: sourceLang,
			TargetLanguage: targetLang,
			SourceText:     p.SourceText,
			TargetText:     p.TargetText,
			Confidence:     confidence,
			Tags:           []string{"tmx"},
		}
		if p.Confidence != nil {
			req.Confidence = p.Confidence
		}
		if p.Context != "" {
			note := p.Context
			req.Context = &note
		}
		if _, err := s.CreateEntry(ctx, userID, req); err != nil {
			return created, fmt.Errorf("importing unit %d: %w", created+1, err)
		}
		created++
	}
	s.logger.Info("tmx imported", "user_id", userID, "entries", created)
	return created, nil
}

// Search returns the user's entries whose source text contains the query
// text or is contained in it, best confidence first. The caller's user ID
// always overrides q.UserID.
func (s *Service) Search(ctx context.Context, userID string, q tm.Query) ([]*model.TMEntry, error) {
	entries, err := s.memory.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading tm entries: %w", err)
	}
	q.UserID = userID
	if q.MinConfidence == nil {
		threshold := s.minConfidence
		q.MinConfidence = &threshold
	}
	return tm.Match(entries, q), nil
}

// Suggest finds the best TM entry for a segment in the document's language
// pair and counts the use. It returns nil when nothing matches.
func (s *Service) Suggest(ctx context.Context, userID, documentID, segmentID string) (*model.TMEntry, error) {
	doc, err := s.ownedDocument(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}
	seg, err := findSegment(doc, segmentID)
	if err != nil {
		return nil, err
	}

	matches, err := s.Search(ctx, userID, tm.Query{
		SourceLanguage: doc.SourceLanguage,
		TargetLanguage: doc.TargetLanguage,
		Text:           seg.SourceText,
	})
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}

	best := matches[0]
	best.UseCount++
	best.UpdatedAt = s.clock.Now()
	if err := s.memory.Update(ctx, best); err != nil {
		return nil, fmt.Errorf("recording tm use: %w", err)
	}
	return best, nil
}

func (s *Service) ownedEntry(ctx context.Context, userID, id string) (*model.TMEntry, error) {
	entry, err := s.memory.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading tm entry: %w", err)
	}
	if entry == nil {
		return nil, model.NewNotFound("tm entry", id)
	}
	if entry.UserID != userID {
		return nil, fmt.Errorf("%w: tm entry %s belongs to another user", model.ErrForbidden, id)
	}
	return entry, nil
}
