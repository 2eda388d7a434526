package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"sbs-go/internal/model"
)

// DocumentStore persists documents with their segments, annotations and
// redactions. A document is always read and written as a whole.
type DocumentStore struct {
	db *sql.DB
}

const documentColumns = `id, user_id, name, original_file_name, file_type, source_language,
	target_language, file_size, file_id, processing_status, metadata, version, created_at, updated_at`

func (s *DocumentStore) GetByID(ctx context.Context, id string) (*model.Document, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding document: %w", err)
	}
	if err := s.loadSegments(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *DocumentStore) GetByUserID(ctx context.Context, userID string) ([]*model.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE user_id = ? ORDER BY created_at, rowid`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var docs []*model.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("listing documents: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	// Segments are loaded after the cursor is closed; an in-memory
	// database has a single connection.
	rows.Close()

	for _, doc := range docs {
		if err := s.loadSegments(ctx, doc); err != nil {
			return nil, err
		}
	}
	return docs, nil
}

func (s *DocumentStore) Create(ctx context.Context, doc *model.Document) error {
	metadata, err := encodeMetadata(doc.Metadata)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO documents (`+documentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		doc.ID, doc.UserID, doc.Name, doc.OriginalFileName, doc.FileType, doc.SourceLanguage,
		doc.TargetLanguage, doc.FileSize, doc.FileID, string(doc.ProcessingStatus), metadata,
		formatTime(doc.CreatedAt), formatTime(doc.UpdatedAt))
	if err != nil {
		return fmt.Errorf("inserting document: %w", err)
	}
	if err := insertSegments(ctx, tx, doc); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	doc.Version = 1
	return nil
}

func (s *DocumentStore) Update(ctx context.Context, doc *model.Document) error {
	metadata, err := encodeMetadata(doc.Metadata)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE documents SET
		name = ?, original_file_name = ?, file_type = ?, source_language = ?, target_language = ?,
		file_size = ?, file_id = ?, processing_status = ?, metadata = ?, updated_at = ?,
		version = version + 1
		WHERE id = ? AND version = ?`,
		doc.Name, doc.OriginalFileName, doc.FileType, doc.SourceLanguage, doc.TargetLanguage,
		doc.FileSize, doc.FileID, string(doc.ProcessingStatus), metadata, formatTime(doc.UpdatedAt),
		doc.ID, doc.Version)
	if err != nil {
		return fmt.Errorf("updating document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating document: %w", err)
	}
	if n == 0 {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM documents WHERE id = ?`, doc.ID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return model.NewNotFound("document", doc.ID)
		}
		if err != nil {
			return fmt.Errorf("updating document: %w", err)
		}
		return fmt.Errorf("%w: document %s changed since version %d", model.ErrConflict, doc.ID, doc.Version)
	}

	if err := deleteSegments(ctx, tx, doc.ID); err != nil {
		return err
	}
	if err := insertSegments(ctx, tx, doc); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	doc.Version++
	return nil
}

func (s *DocumentStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if err := deleteSegments(ctx, tx, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM processing_jobs WHERE document_id = ?`, id); err != nil {
		return fmt.Errorf("deleting processing jobs: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *DocumentStore) CountByFileID(ctx context.Context, fileID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents WHERE file_id = ?`, fileID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting documents by file: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*model.Document, error) {
	var (
		doc                  model.Document
		status, metadata     string
		createdAt, updatedAt string
	)
	err := row.Scan(&doc.ID, &doc.UserID, &doc.Name, &doc.OriginalFileName, &doc.FileType,
		&doc.SourceLanguage, &doc.TargetLanguage, &doc.FileSize, &doc.FileID, &status, &metadata,
		&doc.Version, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if doc.ProcessingStatus, err = model.ParseProcessingStatus(status); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(metadata), &doc.Metadata); err != nil {
		return nil, fmt.Errorf("decoding metadata of document %s: %w", doc.ID, err)
	}
	if doc.Metadata == nil {
		doc.Metadata = map[string]string{}
	}
	if doc.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if doc.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &doc, nil
}

func encodeMetadata(m map[string]string) (string, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encoding metadata: %w", err)
	}
	return string(b), nil
}

// loadSegments reads the segments of doc in position order, then attaches
// their spans.
func (s *DocumentStore) loadSegments(ctx context.Context, doc *model.Document) error {
	rows, err := s.db.QueryContext(ctx, `SELECT id, position, source_text, target_text
		FROM segments WHERE document_id = ? ORDER BY position, rowid`, doc.ID)
	if err != nil {
		return fmt.Errorf("loading segments: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]*model.Segment)
	doc.Segments = nil
	for rows.Next() {
		var (
			id, source string
			position   int
			target     sql.NullString
		)
		if err := rows.Scan(&id, &position, &source, &target); err != nil {
			return fmt.Errorf("loading segments: %w", err)
		}
		seg := model.NewSegment(id, source, position)
		seg.TargetText = stringPtr(target)
		doc.Segments = append(doc.Segments, seg)
		byID[id] = seg
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("loading segments: %w", err)
	}
	rows.Close()

	if len(byID) == 0 {
		return nil
	}
	if err := s.loadAnnotations(ctx, doc.ID, byID); err != nil {
		return err
	}
	return s.loadRedactions(ctx, doc.ID, byID)
}

func (s *DocumentStore) loadAnnotations(ctx context.Context, documentID string, segments map[string]*model.Segment) error {
	rows, err := s.db.QueryContext(ctx, `SELECT segment_id, id, text, start_index, end_index, created_at, created_by
		FROM annotations WHERE document_id = ?`, documentID)
	if err != nil {
		return fmt.Errorf("loading annotations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			segmentID, createdAt string
			a                    model.Annotation
		)
		if err := rows.Scan(&segmentID, &a.ID, &a.Text, &a.StartIndex, &a.EndIndex, &createdAt, &a.CreatedBy); err != nil {
			return fmt.Errorf("loading annotations: %w", err)
		}
		if a.CreatedAt, err = parseTime(createdAt); err != nil {
			return err
		}
		if seg := segments[segmentID]; seg != nil {
			seg.Annotations[a.ID] = &a
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("loading annotations: %w", err)
	}
	return nil
}

func (s *DocumentStore) loadRedactions(ctx context.Context, documentID string, segments map[string]*model.Segment) error {
	rows, err := s.db.QueryContext(ctx, `SELECT segment_id, id, reason, start_index, end_index, created_at, created_by
		FROM redactions WHERE document_id = ?`, documentID)
	if err != nil {
		return fmt.Errorf("loading redactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			segmentID, createdAt string
			reason               sql.NullString
			r                    model.Redaction
		)
		if err := rows.Scan(&segmentID, &r.ID, &reason, &r.StartIndex, &r.EndIndex, &createdAt, &r.CreatedBy); err != nil {
			return fmt.Errorf("loading redactions: %w", err)
		}
		if r.CreatedAt, err = parseTime(createdAt); err != nil {
			return err
		}
		r.Reason = stringPtr(reason)
		if seg := segments[segmentID]; seg != nil {
			seg.Redactions[r.ID] = &r
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("loading redactions: %w", err)
	}
	return nil
}

// Children go first so the delete does not depend on cascade settings.
func deleteSegments(ctx context.Context, tx *sql.Tx, documentID string) error {
	for _, table := range []string{"annotations", "redactions", "segments"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE document_id = ?`, documentID); err != nil {
			return fmt.Errorf("deleting %s: %w", table, err)
		}
	}
	return nil
}

func insertSegments(ctx context.Context, tx *sql.Tx, doc *model.Document) error {
	for _, seg := range doc.Segments {
		_, err := tx.ExecContext(ctx, `INSERT INTO segments (document_id, id, position, source_text, target_text)
			VALUES (?, ?, ?, ?, ?)`, doc.ID, seg.ID, seg.Position, seg.SourceText, nullString(seg.TargetText))
		if err != nil {
			return fmt.Errorf("inserting segment %s: %w", seg.ID, err)
		}

		for _, a := range seg.Annotations {
			_, err := tx.ExecContext(ctx, `INSERT INTO annotations
				(document_id, segment_id, id, text, start_index, end_index, created_at, created_by)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				doc.ID, seg.ID, a.ID, a.Text, a.StartIndex, a.EndIndex, formatTime(a.CreatedAt), a.CreatedBy)
			if err != nil {
				return fmt.Errorf("inserting annotation %s: %w", a.ID, err)
			}
		}
		for _, r := range seg.Redactions {
			_, err := tx.ExecContext(ctx, `INSERT INTO redactions
				(document_id, segment_id, id, reason, start_index, end_index, created_at, created_by)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				doc.ID, seg.ID, r.ID, nullString(r.Reason), r.StartIndex, r.EndIndex, formatTime(r.CreatedAt), r.CreatedBy)
			if err != nil {
				return fmt.Errorf("inserting redaction %s: %w", r.ID, err)
			}
		}
	}
	return nil
}
