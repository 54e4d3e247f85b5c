package handlers

import (
	"net/http"
	"runtime"
	"time"

	"securestream/internal/startup"
)

// HealthResponse contains the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`

	// Queue summary
	Queued     int `json:"queued"`
	Processing int `json:"processing"`
	Uploading  int `json:"uploading"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck returns the health status of the ingest service
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	stats := h.queue.GetStats()

	response := HealthResponse{
		Status:       "healthy",
		Version:      startup.Version,
		Uptime:       time.Since(h.started).Round(time.Second).String(),
		Queued:       stats.Queued,
		Processing:   stats.Processing,
		Uploading:    stats.Uploading,
		Completed:    stats.Completed,
		Failed:       stats.Failed,
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
	}

	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, response)
}

// Version returns build information
func (h *Handlers) Version(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	writeJSON(w, startup.GetBuildInfo())
}
