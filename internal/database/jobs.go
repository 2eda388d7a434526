package database

import (
	"context"
	"database/sql"
	"fmt"

	"sbs-go/internal/model"
)

// JobStore records processing jobs.
type JobStore struct {
	db *sql.DB
}

func (s *JobStore) CreateJob(ctx context.Context, job *model.ProcessingJob) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO processing_jobs (id, document_id, status, error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		job.ID, job.DocumentID, string(job.Status), job.Error, formatTime(job.CreatedAt), formatTime(job.UpdatedAt))
	if err != nil {
		return fmt.Errorf("inserting processing job: %w", err)
	}
	return nil
}

func (s *JobStore) UpdateJob(ctx context.Context, job *model.ProcessingJob) error {
	res, err := s.db.ExecContext(ctx, `UPDATE processing_jobs SET status = ?, error = ?, updated_at = ? WHERE id = ?`,
		string(job.Status), job.Error, formatTime(job.UpdatedAt), job.ID)
	if err != nil {
		return fmt.Errorf("updating processing job: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating processing job: %w", err)
	}
	if n == 0 {
		return model.NewNotFound("processing job", job.ID)
	}
	return nil
}

func (s *JobStore) ListJobs(ctx context.Context, documentID string) ([]*model.ProcessingJob, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, document_id, status, error, created_at, updated_at
		FROM processing_jobs WHERE document_id = ? ORDER BY created_at, rowid`, documentID)
	if err != nil {
		return nil, fmt.Errorf("listing processing jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*model.ProcessingJob
	for rows.Next() {
		var (
			job                  model.ProcessingJob
			status               string
			createdAt, updatedAt string
		)
		if err := rows.Scan(&job.ID, &job.DocumentID, &status, &job.Error, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("listing processing jobs: %w", err)
		}
		job.Status = model.JobStatus(status)
		if job.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if job.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}
		jobs = append(jobs, &job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing processing jobs: %w", err)
	}
	return jobs, nil
}
