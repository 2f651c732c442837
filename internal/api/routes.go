package api

import (
	"net/http"

	"ecoscan/internal/version"
)

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	// Health and readiness checks
	s.router.HandleFunc("/health", s.handleHealth)
	s.router.HandleFunc("/ready", s.handleReady)

	// Analysis
	s.router.HandleFunc("/analyze", s.handleAnalyze)    // POST multipart file or code_input
	s.router.HandleFunc("/download/", s.handleDownload) // GET /download/:name

	// Run history
	s.router.HandleFunc("/runs", s.handleListRuns) // GET ?limit=
	s.router.HandleFunc("/runs/", s.handleGetRun)  // GET /runs/:id

	s.router.HandleFunc("/", s.handleRoot)
}

// handleRoot handles requests to the root path
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	if r.Method != http.MethodGet {
		MethodNotAllowed(w, http.MethodGet)
		return
	}

	response := map[string]interface{}{
		"name":    "ecoscan HTTP API",
		"version": version.Version,
		"endpoints": []string{
			"GET /health - Health check",
			"GET /ready - Readiness check",
			"POST /analyze - Analyze an uploaded .py file (field 'file') or pasted code (field 'code_input')",
			"GET /download/:name - Download an optimized file",
			"GET /runs?limit=n - List recorded runs",
			"GET /runs/:id - Get a recorded run",
		},
	}

	WriteJSON(w, response, http.StatusOK)
}
