package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending   = "PENDING"
	StatusRunning   = "RUNNING"
	StatusCompleted = "COMPLETED"
	StatusFailed    = "FAILED"
)

// StatusTypes lists every valid status value, in lifecycle order.
var StatusTypes = []string{StatusPending, StatusRunning, StatusCompleted, StatusFailed}

// ValidStatus reports whether s is one of the four defined status values.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusRunning, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Job is a tracked unit of work. It deliberately carries no status column:
// status lives in the job_statuses log and CurrentStatus is derived from the
// most recent entry whenever a job is read.
type Job struct {
	ID            uuid.UUID `db:"id"             json:"id"`
	Name          string    `db:"name"           json:"name"`
	CreatedAt     time.Time `db:"created_at"     json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"     json:"updated_at"`
	CurrentStatus string    `db:"current_status" json:"current_status"`
}

// JobStatus is one immutable entry in a job's status history. Rows are only
// ever inserted; they disappear solely when the owning job is deleted.
// The bigserial ID doubles as the tie-breaker when two entries share a
// timestamp: the later insert wins.
type JobStatus struct {
	ID         int64     `db:"id"          json:"id"`
	JobID      uuid.UUID `db:"job_id"      json:"job"`
	StatusType string    `db:"status_type" json:"status_type"`
	Timestamp  time.Time `db:"timestamp"   json:"timestamp"`
}
