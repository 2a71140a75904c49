// Package handler contains the stateless HTTP handlers for the jobs API.
// Handlers parse and validate request input, call the store, and translate
// store errors into response status codes.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"jobtrack/internal/api/response"
	"jobtrack/internal/cache"
	"jobtrack/internal/store"
	"jobtrack/pkg/models"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// statusCacheTTL bounds staleness of the per-job current-status hot key.
// The database stays the source of truth; an expired or missing key just
// falls through to a store read.
const statusCacheTTL = time.Hour

// NewListJobsHandler returns an http.HandlerFunc for GET /api/jobs.
//
// Query params: status (optional filter on derived current status),
// sort (newest|oldest|name_asc|name_desc, default newest), page (default 1).
func NewListJobsHandler(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		status := q.Get("status")
		if status != "" && !models.ValidStatus(status) {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR",
				"status must be one of "+strings.Join(models.StatusTypes, ", "), nil)
			return
		}

		sort := q.Get("sort")
		if sort == "" {
			sort = store.SortNewest
		}
		if !store.ValidSort(sort) {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR",
				"sort must be one of "+strings.Join(store.SortOrders, ", "), nil)
			return
		}

		page := 1
		if p := q.Get("page"); p != "" {
			n, err := strconv.Atoi(p)
			if err != nil || n < 1 {
				response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR",
					"page must be a positive integer", nil)
				return
			}
			page = n
		}

		jobs, total, err := s.ListJobs(r.Context(), store.JobFilter{
			Status: status,
			Sort:   sort,
			Page:   page,
		})
		if err != nil {
			serverError(w, "list jobs", err)
			return
		}

		response.JSON(w, response.NewPage(jobs, total, page, store.PageSize))
	}
}

// NewCreateJobHandler returns an http.HandlerFunc for POST /api/jobs.
// The created job always starts with a PENDING status entry.
func NewCreateJobHandler(s store.Store, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid JSON body", nil)
			return
		}

		if strings.TrimSpace(req.Name) == "" {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "name is required", nil)
			return
		}

		job, err := s.CreateJob(r.Context(), req.Name)
		if err != nil {
			if errors.Is(err, store.ErrInvalidInput) {
				response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
				return
			}
			serverError(w, "create job", err)
			return
		}

		cacheStatus(r, c, job.ID, job.CurrentStatus)
		response.Created(w, job)
	}
}

// NewUpdateJobStatusHandler returns an http.HandlerFunc for PATCH /api/jobs/{jobID}.
// The update is an append to the status log; nothing on the job row changes.
func NewUpdateJobStatusHandler(s store.Store, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := jobIDParam(w, r)
		if !ok {
			return
		}

		var req struct {
			StatusType string `json:"status_type"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid JSON body", nil)
			return
		}

		if req.StatusType == "" {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "status_type is required", nil)
			return
		}
		if !models.ValidStatus(req.StatusType) {
			response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR",
				"status_type must be one of "+strings.Join(models.StatusTypes, ", "), nil)
			return
		}

		job, err := s.AppendStatus(r.Context(), id, req.StatusType)
		if err != nil {
			switch {
			case errors.Is(err, store.ErrNotFound):
				jobNotFound(w)
			case errors.Is(err, store.ErrInvalidInput):
				response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
			default:
				serverError(w, "append status", err)
			}
			return
		}

		cacheStatus(r, c, job.ID, job.CurrentStatus)
		response.JSON(w, job)
	}
}

// NewDeleteJobHandler returns an http.HandlerFunc for DELETE /api/jobs/{jobID}.
func NewDeleteJobHandler(s store.Store, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := jobIDParam(w, r)
		if !ok {
			return
		}

		if err := s.DeleteJob(r.Context(), id); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				jobNotFound(w)
				return
			}
			serverError(w, "delete job", err)
			return
		}

		if err := c.DeleteJobStatus(r.Context(), id); err != nil {
			slog.Warn("invalidate job status cache", "job_id", id, "error", err)
		}
		response.NoContent(w)
	}
}

// NewJobHistoryHandler returns an http.HandlerFunc for GET /api/jobs/{jobID}/history.
// Entries come back oldest-first so clients can render a timeline directly.
func NewJobHistoryHandler(s store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := jobIDParam(w, r)
		if !ok {
			return
		}

		history, err := s.GetHistory(r.Context(), id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				jobNotFound(w)
				return
			}
			serverError(w, "get history", err)
			return
		}

		response.JSON(w, history)
	}
}

// jobIDParam parses the {jobID} path parameter. A malformed id cannot refer
// to any job, so it is reported as not found rather than a validation error.
func jobIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "jobID"))
	if err != nil {
		jobNotFound(w)
		return uuid.Nil, false
	}
	return id, true
}

func jobNotFound(w http.ResponseWriter) {
	response.Error(w, http.StatusNotFound, "JOB_NOT_FOUND", "Job not found", nil)
}

// cacheStatus refreshes the per-job current-status hot key. Failures are
// logged and swallowed: the write already committed and the cache is only
// an accelerator.
func cacheStatus(r *http.Request, c cache.Cache, id uuid.UUID, status string) {
	if err := c.SetJobStatus(r.Context(), id, status, statusCacheTTL); err != nil {
		slog.Warn("cache job status", "job_id", id, "error", err)
	}
}

func serverError(w http.ResponseWriter, op string, err error) {
	slog.Error(op+" failed", "error", err)
	response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
		"An unexpected error occurred", nil)
}
