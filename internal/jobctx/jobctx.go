package jobctx

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
)

type key int

const jobKey key = 0

// JobContext identifies one running scrape job.
type JobContext struct {
	JobID     int64
	RunID     string
	URL       string
	StartTime time.Time
}

// WithJob attaches a new JobContext for jobID to ctx. Every call gets a fresh RunID.
func WithJob(ctx context.Context, jobID int64, url string) context.Context {
	return context.WithValue(ctx, jobKey, &JobContext{
		JobID:     jobID,
		RunID:     uuid.NewString(),
		URL:       url,
		StartTime: time.Now(),
	})
}

// FromContext returns the JobContext in ctx, or a placeholder when there is none.
func FromContext(ctx context.Context) *JobContext {
	if jc, ok := ctx.Value(jobKey).(*JobContext); ok {
		return jc
	}
	return &JobContext{
		RunID:     "unknown",
		StartTime: time.Now(),
	}
}

// JobError wraps an error with the id of the job that produced it
type JobError struct {
	JobID int64
	Err   error
}

// Error implements the error interface
func (e *JobError) Error() string {
	return fmt.Sprintf("[job %s] %v", strconv.FormatInt(e.JobID, 10), e.Err)
}

// Unwrap returns the underlying error
func (e *JobError) Unwrap() error {
	return e.Err
}

// NewJobError wraps err with the job id found in ctx. nil stays nil.
func NewJobError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	return &JobError{
		JobID: FromContext(ctx).JobID,
		Err:   err,
	}
}
