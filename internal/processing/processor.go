// Package processing runs document extraction in the background on a fixed
// pool of workers. Every request is recorded as a job so its outcome can be
// inspected after the fact.
package processing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"sbs-go/internal/config"
	"sbs-go/internal/model"
	"sbs-go/internal/sbs"
)

// ErrPoolClosed is returned when work is submitted after Close.
var ErrPoolClosed = errors.New("processor closed")

// Handler processes one document. The context carries the job timeout.
type Handler func(ctx context.Context, documentID string) error

// FailureHandler is told about every document whose job did not succeed,
// including jobs that never reached a worker.
type FailureHandler func(ctx context.Context, documentID string, cause error)

type task struct {
	job *model.ProcessingJob
}

// Processor queues documents for a Handler and runs them on a fixed number
// of workers, each job bounded by a timeout and, optionally, a start rate.
type Processor struct {
	jobs    sbs.JobStore
	logger  sbs.Logger
	clock   sbs.Clock
	idgen   sbs.IDGenerator
	workers int
	timeout time.Duration
	limiter *rate.Limiter // nil when unlimited

	queue   chan task
	done    chan struct{}
	wg      sync.WaitGroup
	senders sync.WaitGroup
	handler Handler
	failed  FailureHandler

	closeMu sync.Mutex
	started bool
	closed  bool
}

var _ sbs.Dispatcher = (*Processor)(nil)

// NewProcessor creates a Processor from cfg. Call Start before dispatching.
func NewProcessor(jobs sbs.JobStore, cfg config.ProcessingConfig, logger sbs.Logger, clock sbs.Clock, idgen sbs.IDGenerator) (*Processor, error) {
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}
	if cfg.RatePerSecond < 0 {
		return nil, fmt.Errorf("invalid processing rate %v: must not be negative", cfg.RatePerSecond)
	}

	p := &Processor{
		jobs:    jobs,
		logger:  logger,
		clock:   clock,
		idgen:   idgen,
		workers: cfg.WorkerCount(),
		timeout: timeout,
		queue:   make(chan task, cfg.QueueSize()),
		done:    make(chan struct{}),
	}
	if cfg.RatePerSecond > 0 {
		p.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)
	}
	return p, nil
}

// Start launches the workers. They run until Close is called or ctx is
// done. failed may be nil. Start may only be called once.
func (p *Processor) Start(ctx context.Context, handler Handler, failed FailureHandler) {
	p.closeMu.Lock()
	defer p.closeMu.Unlock()
	if p.started || p.closed {
		return
	}
	p.started = true
	p.handler = handler
	p.failed = failed

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case t, ok := <-p.queue:
					if !ok {
						return
					}
					p.run(ctx, t)
				}
			}
		}()
	}
}

// ProcessDocument records a queued job for documentID and hands it to the
// workers. It returns once the job is queued, blocking while the queue is
// full. A document that cannot be queued is passed to the FailureHandler.
func (p *Processor) ProcessDocument(documentID string) {
	ctx := context.Background()
	if _, err := p.Submit(ctx, documentID); err != nil {
		p.logger.Error("dispatching document", "document_id", documentID, "error", err)
		p.fail(ctx, documentID, err)
	}
}

// Submit is ProcessDocument with the created job and errors returned.
func (p *Processor) Submit(ctx context.Context, documentID string) (*model.ProcessingJob, error) {
	p.closeMu.Lock()
	if p.closed {
		p.closeMu.Unlock()
		return nil, ErrPoolClosed
	}
	p.senders.Add(1)
	p.closeMu.Unlock()
	defer p.senders.Done()

	now := p.clock.Now()
	job := &model.ProcessingJob{
		ID:         p.idgen.New(),
		DocumentID: documentID,
		Status:     model.JobQueued,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := p.jobs.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("recording job: %w", err)
	}

	select {
	case p.queue <- task{job: job}:
		p.logger.Debug("job queued", "job_id", job.ID, "document_id", documentID)
		return job, nil
	case <-p.done:
		p.finish(ctx, job, ErrPoolClosed)
		return nil, ErrPoolClosed
	case <-ctx.Done():
		p.finish(ctx, job, ctx.Err())
		return nil, ctx.Err()
	}
}

// Close stops accepting work, lets the workers finish what is queued and
// waits for them.
func (p *Processor) Close() {
	p.closeMu.Lock()
	if p.closed {
		p.closeMu.Unlock()
		return
	}
	p.closed = true
	close(p.done)
	p.closeMu.Unlock()

	p.senders.Wait()
	close(p.queue)
	p.wg.Wait()
}

func (p *Processor) run(ctx context.Context, t task) {
	job := t.job
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			p.finish(ctx, job, err)
			p.fail(ctx, job.DocumentID, err)
			return
		}
	}

	job.Status = model.JobRunning
	job.UpdatedAt = p.clock.Now()
	if err := p.jobs.UpdateJob(context.WithoutCancel(ctx), job); err != nil {
		p.logger.Error("updating job", "job_id", job.ID, "error", err)
	}

	jobCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	started := p.clock.Now()
	err := p.call(jobCtx, job.DocumentID)
	p.finish(ctx, job, err)
	if err != nil {
		p.logger.Warn("job failed", "job_id", job.ID, "document_id", job.DocumentID, "error", err)
		p.fail(ctx, job.DocumentID, err)
		return
	}
	p.logger.Info("job succeeded", "job_id", job.ID, "document_id", job.DocumentID,
		"elapsed", p.clock.Now().Sub(started))
}

// call runs the handler, turning a panic into an error so one bad document
// cannot take a worker down.
func (p *Processor) call(ctx context.Context, documentID string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic processing document %s: %v", documentID, r)
		}
	}()
	return p.handler(ctx, documentID)
}

// fail reports a document whose job did not succeed.
func (p *Processor) fail(ctx context.Context, documentID string, cause error) {
	p.closeMu.Lock()
	failed := p.failed
	p.closeMu.Unlock()
	if failed != nil {
		failed(context.WithoutCancel(ctx), documentID, cause)
	}
}

// finish records the final job status.
func (p *Processor) finish(ctx context.Context, job *model.ProcessingJob, err error) {
	job.Status = model.JobSucceeded
	job.Error = ""
	if err != nil {
		job.Status = model.JobFailed
		job.Error = err.Error()
	}
	job.UpdatedAt = p.clock.Now()
	if uerr := p.jobs.UpdateJob(context.WithoutCancel(ctx), job); uerr != nil {
		p.logger.Error("updating job", "job_id", job.ID, "error", uerr)
	}
}
