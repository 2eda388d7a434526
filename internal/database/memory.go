package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"sbs-go/internal/model"
)

// TMStore persists translation-memory entries. Listing keeps insertion
// order, which search relies on to break confidence ties.
type TMStore struct {
	db *sql.DB
}

const tmColumns = `id, user_id, source_language, target_language, source_text, target_text,
	confidence, document_id, context, tags, use_count, is_verified, created_at, updated_at`

func (s *TMStore) GetByID(ctx context.Context, id string) (*model.TMEntry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+tmColumns+` FROM tm_entries WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("finding tm entry: %w", err)
	}
	return entry, nil
}

func (s *TMStore) GetByUserID(ctx context.Context, userID string) ([]*model.TMEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+tmColumns+` FROM tm_entries WHERE user_id = ? ORDER BY rowid`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing tm entries: %w", err)
	}
	defer rows.Close()

	var entries []*model.TMEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("listing tm entries: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing tm entries: %w", err)
	}
	return entries, nil
}

func (s *TMStore) Create(ctx context.Context, entry *model.TMEntry) error {
	tags, err := encodeTags(entry.Tags)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO tm_entries (`+tmColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.UserID, entry.SourceLanguage, entry.TargetLanguage, entry.SourceText,
		entry.TargetText, entry.Confidence, nullString(entry.DocumentID), nullString(entry.Context),
		tags, entry.UseCount, entry.IsVerified, formatTime(entry.CreatedAt), formatTime(entry.UpdatedAt))
	if err != nil {
		return fmt.Errorf("inserting tm entry: %w", err)
	}
	return nil
}

func (s *TMStore) Update(ctx context.Context, entry *model.TMEntry) error {
	tags, err := encodeTags(entry.Tags)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE tm_entries SET
		source_language = ?, target_language = ?, source_text = ?, target_text = ?, confidence = ?,
		document_id = ?, context = ?, tags = ?, use_count = ?, is_verified = ?, updated_at = ?
		WHERE id = ?`,
		entry.SourceLanguage, entry.TargetLanguage, entry.SourceText, entry.TargetText,
		entry.Confidence, nullString(entry.DocumentID), nullString(entry.Context), tags,
		entry.UseCount, entry.IsVerified, formatTime(entry.UpdatedAt), entry.ID)
	if err != nil {
		return fmt.Errorf("updating tm entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating tm entry: %w", err)
	}
	if n == 0 {
		return model.NewNotFound("tm entry", entry.ID)
	}
	return nil
}

func (s *TMStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tm_entries WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting tm entry: %w", err)
	}
	return nil
}

func scanEntry(row scanner) (*model.TMEntry, error) {
	var (
		e                    model.TMEntry
		documentID, ctxNote sql.NullString
		tags                 string
		createdAt, updatedAt string
	)
	err := row.Scan(&e.ID, &e.UserID, &e.SourceLanguage, &e.TargetLanguage, &e.SourceText,
		&e.TargetText, &e.Confidence, &documentID, &ctxNote, &tags, &e.UseCount, &e.IsVerified,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	e.DocumentID = stringPtr(documentID)
	e.Context = stringPtr(ctxNote)
	if err := json.Unmarshal([]byte(tags), &e.Tags); err != nil {
		return nil, fmt.Errorf("decoding tags of tm entry %s: %w", e.ID, err)
	}
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if e.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

func encodeTags(tags []string) (string, error) {
	if len(tags) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encoding tags: %w", err)
	}
	return string(b), nil
}
