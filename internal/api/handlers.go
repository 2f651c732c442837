package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	ecoerrors "ecoscan/internal/errors"
	"ecoscan/internal/paths"
	"ecoscan/internal/report"
	"ecoscan/internal/smells"
)

// pastedName is the file name used for code submitted as text.
const pastedName = "input_code.py"

// AnalyzeRequest is the JSON body accepted by POST /analyze
type AnalyzeRequest struct {
	CodeInput *string `json:"code_input"`
}

// AnalyzeResponse is the response for POST /analyze
type AnalyzeResponse struct {
	SourceName         string            `json:"sourceName"`
	Issues             []smells.Issue    `json:"issues"`
	OptimizedCode      string            `json:"optimizedCode"`
	OriginalEmissions  float64           `json:"originalEmissions"`
	OptimizedEmissions float64           `json:"optimizedEmissions"`
	Reduction          float64           `json:"reduction"`
	DownloadURL        string            `json:"downloadUrl"`
	RunID              string            `json:"runId,omitempty"`
	Diff               string            `json:"diff,omitempty"`
	DiffStats          *report.DiffStats `json:"diffStats,omitempty"`
}

// submission is one piece of source received by /analyze.
type submission struct {
	name   string
	source string
}

// handleAnalyze handles POST /analyze
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowed(w, http.MethodPost)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)
	sub, err := s.readSubmission(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, ecoerrors.NewEcoError(ecoerrors.InvalidInput,
				fmt.Sprintf("upload exceeds %d bytes", s.config.MaxUploadBytes), nil),
				http.StatusRequestEntityTooLarge)
			return
		}
		WriteEcoError(w, err)
		return
	}

	uploadPath := filepath.Join(s.config.UploadDir, sub.name)
	if err := os.WriteFile(uploadPath, []byte(sub.source), 0644); err != nil {
		InternalError(w, "Failed to save upload", err)
		return
	}

	outcome, err := s.engine.Analyze(r.Context(), sub.name, sub.source, true)
	if err != nil {
		s.logger.Warn("Analysis failed",
			"name", sub.name,
			"error", err.Error(),
			"requestID", GetRequestID(r.Context()),
		)
		WriteEcoError(w, err)
		return
	}

	optimizedName := "optimized_" + sub.name
	if err := os.WriteFile(filepath.Join(s.config.OptimizedDir, optimizedName), []byte(outcome.Optimized), 0644); err != nil {
		InternalError(w, "Failed to save optimized code", err)
		return
	}

	resp := AnalyzeResponse{
		SourceName:         sub.name,
		Issues:             outcome.Issues,
		OptimizedCode:      outcome.Optimized,
		OriginalEmissions:  outcome.Emissions.Original.Emissions,
		OptimizedEmissions: outcome.Emissions.Optimized.Emissions,
		Reduction:          outcome.Emissions.Reduction,
		DownloadURL:        "/download/" + optimizedName,
		RunID:              outcome.RunID,
	}
	if diff, _ := strconv.ParseBool(r.URL.Query().Get("diff")); diff {
		resp.Diff = report.Diff(sub.name, sub.source, outcome.Optimized)
		stats := report.Stats(sub.source, outcome.Optimized)
		resp.DiffStats = &stats
	}

	WriteJSON(w, resp, http.StatusOK)
}

// readSubmission extracts the uploaded file or pasted code from r. An
// uploaded file takes precedence over code_input.
func (s *Server) readSubmission(r *http.Request) (*submission, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "application/json":
		var req AnalyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return nil, err
			}
			return nil, ecoerrors.NewEcoError(ecoerrors.InvalidInput, "invalid JSON body", err)
		}
		if req.CodeInput == nil {
			return nil, ecoerrors.NewEcoError(ecoerrors.InvalidInput, "no file or code_input provided", nil)
		}
		return &submission{name: pastedName, source: *req.CodeInput}, nil

	case "multipart/form-data":
		if err := r.ParseMultipartForm(s.config.MaxUploadBytes); err != nil {
			return nil, wrapFormError(err)
		}
		file, header, err := r.FormFile("file")
		if err == nil {
			defer func() { _ = file.Close() }()
			return readUpload(file, header.Filename)
		}
		if !errors.Is(err, http.ErrMissingFile) {
			return nil, ecoerrors.NewEcoError(ecoerrors.InvalidInput, "invalid file field", err)
		}

	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, wrapFormError(err)
		}

	default:
		return nil, ecoerrors.NewEcoError(ecoerrors.InvalidInput,
			"expected multipart/form-data, a form or JSON body", nil)
	}

	if values, ok := r.PostForm["code_input"]; ok && len(values) > 0 {
		return &submission{name: pastedName, source: values[0]}, nil
	}
	return nil, ecoerrors.NewEcoError(ecoerrors.InvalidInput, "no file or code_input provided", nil)
}

func wrapFormError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	return ecoerrors.NewEcoError(ecoerrors.InvalidInput, "invalid form body", err)
}

// readUpload validates an uploaded file name and reads its content.
func readUpload(file io.Reader, filename string) (*submission, error) {
	name := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	if !paths.SafeFileName(name) {
		return nil, ecoerrors.NewEcoError(ecoerrors.InvalidInput, "invalid file name", nil).
			WithDetails(map[string]string{"filename": filename})
	}
	if !strings.HasSuffix(name, ".py") {
		return nil, ecoerrors.NewEcoError(ecoerrors.UnsupportedFile, "only .py files can be analyzed", nil).
			WithDetails(map[string]string{"filename": name})
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, ecoerrors.NewEcoError(ecoerrors.InvalidInput, "failed to read upload", err)
	}
	return &submission{name: name, source: string(data)}, nil
}

// handleDownload handles GET /download/:name
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowed(w, http.MethodGet)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/download/")
	if !paths.SafeFileName(name) {
		BadRequest(w, "invalid file name")
		return
	}

	full := filepath.Join(s.config.OptimizedDir, name)
	if !paths.IsWithin(full, s.config.OptimizedDir) {
		BadRequest(w, "invalid file name")
		return
	}
	info, err := os.Stat(full)
	if err != nil || !info.Mode().IsRegular() {
		NotFound(w, fmt.Sprintf("no optimized file named %s", name))
		return
	}

	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Type", "text/x-python; charset=utf-8")
	http.ServeFile(w, r, full)
}

// handleListRuns handles GET /runs
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowed(w, http.MethodGet)
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			BadRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	runs, err := s.engine.History(r.Context(), limit)
	if err != nil {
		WriteEcoError(w, err)
		return
	}
	WriteJSON(w, map[string]interface{}{"runs": runs, "count": len(runs)}, http.StatusOK)
}

// handleGetRun handles GET /runs/:id
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		MethodNotAllowed(w, http.MethodGet)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/runs/")
	if id == "" || strings.Contains(id, "/") {
		BadRequest(w, "run id required")
		return
	}

	detail, err := s.engine.GetRun(r.Context(), id)
	if err != nil {
		WriteEcoError(w, err)
		return
	}
	WriteJSON(w, detail, http.StatusOK)
}
