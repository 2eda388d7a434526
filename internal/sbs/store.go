package sbs

import (
	"context"
	"io"

	"sbs-go/internal/model"
)

// DocumentStore persists whole documents, segments and spans included.
// Lookups return (nil, nil) when nothing matches.
type DocumentStore interface {
	GetByID(ctx context.Context, id string) (*model.Document, error)

	// GetByUserID returns the user's documents, oldest first.
	GetByUserID(ctx context.Context, userID string) ([]*model.Document, error)

	// Create inserts a new document and sets its Version to 1.
	Create(ctx context.Context, doc *model.Document) error

	// Update replaces the stored document if its version still equals
	// doc.Version, then increments doc.Version. A stale version fails with
	// model.ErrConflict; a missing document with model.ErrNotFound.
	Update(ctx context.Context, doc *model.Document) error

	// Delete removes the document and everything it owns. Deleting a
	// missing document is not an error.
	Delete(ctx context.Context, id string) error

	// CountByFileID reports how many documents, of any user, reference a
	// stored original.
	CountByFileID(ctx context.Context, fileID string) (int, error)
}

// TMStore persists translation-memory entries.
type TMStore interface {
	GetByID(ctx context.Context, id string) (*model.TMEntry, error)

	// GetByUserID returns the user's entries in insertion order.
	GetByUserID(ctx context.Context, userID string) ([]*model.TMEntry, error)

	Create(ctx context.Context, entry *model.TMEntry) error

	// Update fails with model.ErrNotFound when the entry does not exist.
	Update(ctx context.Context, entry *model.TMEntry) error

	Delete(ctx context.Context, id string) error
}

// JobStore records document processing jobs.
type JobStore interface {
	CreateJob(ctx context.Context, job *model.ProcessingJob) error
	UpdateJob(ctx context.Context, job *model.ProcessingJob) error

	// ListJobs returns the jobs of a document, oldest first.
	ListJobs(ctx context.Context, documentID string) ([]*model.ProcessingJob, error)
}

// FileStore keeps the original uploaded files, addressed by content.
type FileStore interface {
	// Put stores the content read from r and returns its content address.
	// Storing identical content twice is safe.
	Put(ctx context.Context, r io.Reader) (fileID string, size int64, err error)

	// Get writes the content stored under fileID to w.
	Get(ctx context.Context, fileID string, w io.Writer) error

	// Delete removes the content. Deleting missing content is not an error.
	Delete(ctx context.Context, fileID string) error
}

// Dispatcher runs document processing outside the calling request.
// ProcessDocument does not wait for processing; outcomes show up in the
// document's ProcessingStatus and in the logs, never in the caller.
type Dispatcher interface {
	ProcessDocument(documentID string)
}
