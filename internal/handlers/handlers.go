package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"securestream/internal/queue"
)

// Handlers exposes the ingestion queue over HTTP for operators and the
// upload frontend.
type Handlers struct {
	queue   *queue.Queue
	started time.Time
}

// New creates the ingest API handlers.
func New(q *queue.Queue) *Handlers {
	return &Handlers{queue: q, started: time.Now()}
}

// Register mounts all ingest API routes on the router.
func (h *Handlers) Register(r *mux.Router) {
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/api/version", h.Version).Methods(http.MethodGet)
	r.HandleFunc("/api/jobs", h.SubmitJobs).Methods(http.MethodPost)
	r.HandleFunc("/api/jobs", h.ListJobs).Methods(http.MethodGet)
	r.HandleFunc("/api/jobs/{id}", h.GetJob).Methods(http.MethodGet)
	r.HandleFunc("/api/jobs/{id}", h.RemoveJob).Methods(http.MethodDelete)
	r.HandleFunc("/api/jobs/{id}/retry", h.RetryJob).Methods(http.MethodPost)
}

// submitPayload is the request body for SubmitJobs.
type submitPayload struct {
	Files []struct {
		SourcePath    string   `json:"sourcePath"`
		Title         string   `json:"title"`
		Renditions    []string `json:"renditions"`
		ThumbnailPath string   `json:"thumbnailPath"`
		PlaylistID    string   `json:"playlistId"`
	} `json:"files"`
}

// SubmitJobs enqueues one job per submitted file.
func (h *Handlers) SubmitJobs(w http.ResponseWriter, r *http.Request) {
	var payload submitPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if len(payload.Files) == 0 {
		writeJSONError(w, "no files submitted", http.StatusBadRequest)
		return
	}

	reqs := make([]queue.SubmitRequest, 0, len(payload.Files))
	for _, f := range payload.Files {
		reqs = append(reqs, queue.SubmitRequest{
			SourcePath:    f.SourcePath,
			Title:         f.Title,
			Renditions:    f.Renditions,
			ThumbnailPath: f.ThumbnailPath,
			PlaylistID:    f.PlaylistID,
		})
	}

	ids, err := h.queue.Enqueue(r.Context(), reqs)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, map[string]interface{}{"ids": ids})
}

// ListJobs returns every job in queue order.
func (h *Handlers) ListJobs(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, map[string]interface{}{"jobs": h.queue.Jobs()})
}

// GetJob returns one job by id.
func (h *Handlers) GetJob(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	j, err := h.queue.Job(id)
	if err != nil {
		writeJSONError(w, "job not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, j)
}

// RetryJob returns a failed job to the queue.
func (h *Handlers) RetryJob(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	err := h.queue.Retry(r.Context(), id)
	switch {
	case errors.Is(err, queue.ErrJobNotFound):
		writeJSONError(w, "job not found", http.StatusNotFound)
	case errors.Is(err, queue.ErrNotRetryable):
		writeJSONError(w, err.Error(), http.StatusConflict)
	case err != nil:
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusAccepted)
		writeJSONStatus(w, "queued")
	}
}

// RemoveJob deletes a job that is not currently active.
func (h *Handlers) RemoveJob(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	err := h.queue.Remove(r.Context(), id)
	switch {
	case errors.Is(err, queue.ErrJobNotFound):
		writeJSONError(w, "job not found", http.StatusNotFound)
	case errors.Is(err, queue.ErrJobActive):
		writeJSONError(w, err.Error(), http.StatusConflict)
	case err != nil:
		writeJSONError(w, err.Error(), http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}
