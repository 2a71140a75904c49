package store

import (
	"context"
	"errors"

	"jobtrack/pkg/models"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("resource not found")
var ErrInvalidInput = errors.New("invalid input")

// PageSize is the fixed number of jobs per list page.
const PageSize = 20

// Sort orderings accepted by ListJobs. Sorting always applies to job
// attributes (created_at or name), never to the derived status.
const (
	SortNewest   = "newest"
	SortOldest   = "oldest"
	SortNameAsc  = "name_asc"
	SortNameDesc = "name_desc"
)

// SortOrders lists every valid sort value.
var SortOrders = []string{SortNewest, SortOldest, SortNameAsc, SortNameDesc}

// ValidSort reports whether s is a recognized sort ordering.
func ValidSort(s string) bool {
	switch s {
	case SortNewest, SortOldest, SortNameAsc, SortNameDesc:
		return true
	}
	return false
}

// JobFilter narrows and orders a ListJobs query. Status filters on the
// derived current status; an empty Status matches all jobs. Page is 1-based.
type JobFilter struct {
	Status string
	Sort   string
	Page   int
}

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	// CreateJob persists a job and its initial PENDING status entry in one
	// transaction. Fails with ErrInvalidInput when name is empty after trimming.
	CreateJob(ctx context.Context, name string) (*models.Job, error)

	// ListJobs returns one page of jobs with their derived current status,
	// plus the total count of jobs matching the filter.
	ListJobs(ctx context.Context, filter JobFilter) ([]*models.Job, int, error)

	// AppendStatus inserts a new status entry for the job and returns the job
	// with its newly derived current status. Prior entries are never touched.
	AppendStatus(ctx context.Context, id uuid.UUID, statusType string) (*models.Job, error)

	// DeleteJob removes the job and its entire status history atomically.
	DeleteJob(ctx context.Context, id uuid.UUID) error

	// GetHistory returns the job's status entries oldest-first.
	GetHistory(ctx context.Context, id uuid.UUID) ([]*models.JobStatus, error)
}
