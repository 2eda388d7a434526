package app

import (
	"fmt"
	"time"
)

// Operation tracks one CLI command. Its ID tags every log line the command
// writes, so the lines of concurrent invocations can be told apart.
type Operation struct {
	ID         string
	Name       string
	Status     string // "success" or "error"
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// NewOperation creates a successful operation started at now.
func NewOperation(name string, now time.Time) *Operation {
	now = now.UTC()
	return &Operation{
		ID:        fmt.Sprintf("%s-%s", now.Format("20060102T150405Z"), name),
		Name:      name,
		Status:    "success",
		StartedAt: now,
	}
}

// Fail records err as the outcome. A nil err leaves the operation unchanged.
func (op *Operation) Fail(err error) {
	if err == nil {
		return
	}
	op.Status = "error"
	op.Error = err.Error()
}

func (op *Operation) Finish(now time.Time) {
	op.FinishedAt = now.UTC()
}

// Elapsed is the run time of a finished operation, or zero.
func (op *Operation) Elapsed() time.Duration {
	if op.FinishedAt.IsZero() {
		return 0
	}
	return op.FinishedAt.Sub(op.StartedAt)
}
