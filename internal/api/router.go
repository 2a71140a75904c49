package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "jobtrack/internal/api/middleware"
	"jobtrack/internal/api/response"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	RateLimit *mw.RateLimit

	HealthHandler   http.HandlerFunc
	ListJobs        http.HandlerFunc
	CreateJob       http.HandlerFunc
	UpdateJobStatus http.HandlerFunc
	DeleteJob       http.HandlerFunc
	JobHistory      http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// Liveness probe is exempt from rate limiting
	r.Get("/health", orNotImplemented(deps.HealthHandler))

	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimit.Limit)

		r.Route("/api/jobs", func(r chi.Router) {
			r.Get("/", orNotImplemented(deps.ListJobs))
			r.Post("/", orNotImplemented(deps.CreateJob))
			r.Patch("/{jobID}", orNotImplemented(deps.UpdateJobStatus))
			r.Delete("/{jobID}", orNotImplemented(deps.DeleteJob))
			r.Get("/{jobID}/history", orNotImplemented(deps.JobHistory))
		})
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
