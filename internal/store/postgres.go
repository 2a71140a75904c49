package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"jobtrack/pkg/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// jobColumns selects a job together with its derived current status. The
// LATERAL subquery picks the newest status entry per job (insertion order
// breaks timestamp ties), so status never has to be denormalized onto jobs
// and a whole page resolves in a single query.
const jobColumns = `
	SELECT j.id, j.name, j.created_at, j.updated_at, s.status_type
	FROM jobs j
	JOIN LATERAL (
		SELECT status_type FROM job_statuses
		WHERE job_id = j.id
		ORDER BY "timestamp" DESC, id DESC
		LIMIT 1
	) s ON true`

func (s *PostgresStore) CreateJob(ctx context.Context, name string) (*models.Job, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name must not be empty", ErrInvalidInput)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin create job: %w", err)
	}
	defer tx.Rollback(ctx)

	job := &models.Job{
		ID:            uuid.New(),
		Name:          name,
		CreatedAt:     time.Now().UTC(),
		CurrentStatus: models.StatusPending,
	}
	job.UpdatedAt = job.CreatedAt

	_, err = tx.Exec(ctx,
		`INSERT INTO jobs (id, name, created_at, updated_at) VALUES ($1, $2, $3, $4)`,
		job.ID, job.Name, job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}

	// Every job starts with exactly one PENDING entry, committed together
	// with the job row.
	_, err = tx.Exec(ctx,
		`INSERT INTO job_statuses (job_id, status_type, "timestamp") VALUES ($1, $2, $3)`,
		job.ID, models.StatusPending, job.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert initial status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit create job: %w", err)
	}
	return job, nil
}

func (s *PostgresStore) ListJobs(ctx context.Context, filter JobFilter) ([]*models.Job, int, error) {
	if filter.Status != "" && !models.ValidStatus(filter.Status) {
		return nil, 0, fmt.Errorf("%w: status must be one of %s",
			ErrInvalidInput, strings.Join(models.StatusTypes, ", "))
	}

	var where string
	var args []any
	if filter.Status != "" {
		where = " WHERE s.status_type = $1"
		args = append(args, filter.Status)
	}

	// Count reflects the filtered set, so the filter has to be applied to the
	// derived status here too.
	var total int
	countQuery := `SELECT COUNT(*) FROM jobs j
	JOIN LATERAL (
		SELECT status_type FROM job_statuses
		WHERE job_id = j.id
		ORDER BY "timestamp" DESC, id DESC
		LIMIT 1
	) s ON true` + where
	if err := s.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count jobs: %w", err)
	}

	orderMap := map[string]string{
		SortNewest:   "j.created_at DESC",
		SortOldest:   "j.created_at ASC",
		SortNameAsc:  "j.name ASC",
		SortNameDesc: "j.name DESC",
	}
	orderBy, ok := orderMap[filter.Sort]
	if !ok {
		orderBy = orderMap[SortNewest]
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * PageSize

	dataQuery := fmt.Sprintf("%s%s ORDER BY %s LIMIT $%d OFFSET $%d",
		jobColumns, where, orderBy, len(args)+1, len(args)+2)
	args = append(args, PageSize, offset)

	rows, err := s.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	jobs := []*models.Job{}
	for rows.Next() {
		var j models.Job
		if err := rows.Scan(&j.ID, &j.Name, &j.CreatedAt, &j.UpdatedAt, &j.CurrentStatus); err != nil {
			return nil, 0, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, &j)
	}
	return jobs, total, rows.Err()
}

func (s *PostgresStore) AppendStatus(ctx context.Context, id uuid.UUID, statusType string) (*models.Job, error) {
	if !models.ValidStatus(statusType) {
		return nil, fmt.Errorf("%w: status_type must be one of %s",
			ErrInvalidInput, strings.Join(models.StatusTypes, ", "))
	}

	_, err := s.pool.Exec(ctx,
		`INSERT INTO job_statuses (job_id, status_type, "timestamp") VALUES ($1, $2, $3)`,
		id, statusType, time.Now().UTC())
	if err != nil {
		if isForeignKeyError(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("append status: %w", err)
	}

	return s.getJob(ctx, id)
}

func (s *PostgresStore) DeleteJob(ctx context.Context, id uuid.UUID) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete job: %w", err)
	}
	defer tx.Rollback(ctx)

	// Statuses first, then the job, in one transaction: either both are gone
	// or neither is.
	if _, err := tx.Exec(ctx, `DELETE FROM job_statuses WHERE job_id = $1`, id); err != nil {
		return fmt.Errorf("delete job statuses: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit delete job: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetHistory(ctx context.Context, id uuid.UUID) ([]*models.JobStatus, error) {
	// Chronological timeline: the inverse ordering from current-status
	// derivation. Joining against jobs makes existence and fetch one atomic
	// read; every job carries at least its initial PENDING entry, so an empty
	// result can only mean the job is gone.
	rows, err := s.pool.Query(ctx,
		`SELECT st.id, st.job_id, st.status_type, st."timestamp"
		 FROM job_statuses st
		 JOIN jobs j ON j.id = st.job_id
		 WHERE j.id = $1 ORDER BY st."timestamp" ASC, st.id ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("get history: %w", err)
	}
	defer rows.Close()

	history := []*models.JobStatus{}
	for rows.Next() {
		var st models.JobStatus
		if err := rows.Scan(&st.ID, &st.JobID, &st.StatusType, &st.Timestamp); err != nil {
			return nil, fmt.Errorf("scan status: %w", err)
		}
		history = append(history, &st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, ErrNotFound
	}
	return history, nil
}

// getJob fetches a single job with its derived current status.
func (s *PostgresStore) getJob(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	var j models.Job
	err := s.pool.QueryRow(ctx, jobColumns+` WHERE j.id = $1`, id).
		Scan(&j.ID, &j.Name, &j.CreatedAt, &j.UpdatedAt, &j.CurrentStatus)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &j, nil
}

// isForeignKeyError checks if a pgx error is a foreign key violation.
func isForeignKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503" // foreign_key_violation
	}
	return false
}
