// Package health serves liveness and readiness endpoints for the sidecar HTTP
// server that runs alongside stream-mode analysis.
//
//   - /healthz reports liveness; a process that can still serve HTTP answers
//     200 OK.
//   - /readyz reports readiness; it answers 200 only while every registered
//     [Checker] passes, e.g. while the analysis pipeline has a usable
//     detector strategy.
//
// Responses are JSON objects with a top-level "status" field ("ok" or "fail")
// and a "checks" map naming each checker's outcome.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// checkTimeout bounds a single readiness check. A checker that inspects the
// pipeline under a mutex should finish far below this.
const checkTimeout = 5 * time.Second

// Checker is a named readiness check. Check returns nil while the dependency
// is usable and an error describing what is wrong otherwise.
type Checker struct {
	// Name keys the check in the JSON response, e.g. "pipeline" for the
	// analysis strategy or "llm" for the classifier backend.
	Name string

	// Check inspects the dependency. It must respect context cancellation.
	Check func(ctx context.Context) error
}

// result is the JSON response body for both endpoints.
type result struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Handler serves /healthz and /readyz. It is safe for concurrent use; the
// checker list is fixed at construction time.
type Handler struct {
	checkers []Checker
}

// New creates a [Handler] that evaluates the given checkers, in order, on each
// /readyz request.
func New(checkers ...Checker) *Handler {
	c := make([]Checker, len(checkers))
	copy(c, checkers)
	return &Handler{checkers: c}
}

// Healthz always answers 200 OK.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, result{Status: "ok"})
}

// Readyz evaluates every registered [Checker] and answers 200 only when all
// pass. Each check runs with a [checkTimeout] deadline derived from the
// request context, so a wedged checker cannot hang the endpoint.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	res := result{
		Status: "ok",
		Checks: make(map[string]string, len(h.checkers)),
	}
	status := http.StatusOK

	for _, c := range h.checkers {
		ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
		err := c.Check(ctx)
		cancel()

		if err != nil {
			res.Checks[c.Name] = "fail: " + err.Error()
			res.Status = "fail"
			status = http.StatusServiceUnavailable
			continue
		}
		res.Checks[c.Name] = "ok"
	}

	writeJSON(w, status, res)
}

// Register adds the /healthz and /readyz routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
}

// writeJSON encodes v with the given status code, falling back to a
// plain-text 500 on encoding failure.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"status":"error"}`, http.StatusInternalServerError)
	}
}
