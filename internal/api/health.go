package api

import (
	"net/http"
	"os"
	"runtime"
	"time"

	"ecoscan/internal/pyparse"
	"ecoscan/internal/storage"
	"ecoscan/internal/version"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Uptime    string    `json:"uptime"`
}

// ReadyResponse represents the readiness check response
type ReadyResponse struct {
	Status    string              `json:"status"`
	Timestamp time.Time           `json:"timestamp"`
	Checks    map[string]bool     `json:"checks"`
	Details   map[string]string   `json:"details,omitempty"`
	Memory    *MemoryInfo         `json:"memory,omitempty"`
	Cache     *storage.CacheStats `json:"cache,omitempty"`
}

// MemoryInfo contains memory usage information
type MemoryInfo struct {
	AllocMB      float64 `json:"allocMb"`
	SysMB        float64 `json:"sysMb"`
	NumGC        uint32  `json:"numGc"`
	NumGoroutine int     `json:"numGoroutine"`
}

// handleHealth responds to health check requests (simple liveness check)
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowed(w, http.MethodGet)
		return
	}

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   version.Version,
		Uptime:    time.Since(s.startedAt).Round(time.Second).String(),
	}

	WriteJSON(w, response, http.StatusOK)
}

// handleReady reports whether the parser is compiled in and the working
// directories exist.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowed(w, http.MethodGet)
		return
	}

	checks := map[string]bool{
		"parser":       pyparse.IsAvailable(),
		"uploadDir":    dirExists(s.config.UploadDir),
		"optimizedDir": dirExists(s.config.OptimizedDir),
	}
	details := map[string]string{}
	if !checks["parser"] {
		details["parser"] = "built without cgo; analysis unavailable"
	}
	if !s.engine.HistoryEnabled() {
		details["history"] = "disabled"
	}

	ready := true
	for _, ok := range checks {
		if !ok {
			ready = false
			break
		}
	}

	status := "ready"
	statusCode := http.StatusOK
	if !ready {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	cache, err := s.engine.CacheStats(r.Context())
	if err != nil {
		details["cache"] = err.Error()
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	response := ReadyResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Checks:    checks,
		Details:   details,
		Memory: &MemoryInfo{
			AllocMB:      float64(memStats.Alloc) / 1024 / 1024,
			SysMB:        float64(memStats.Sys) / 1024 / 1024,
			NumGC:        memStats.NumGC,
			NumGoroutine: runtime.NumGoroutine(),
		},
		Cache: cache,
	}

	WriteJSON(w, response, statusCode)
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
