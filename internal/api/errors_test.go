package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	ecoerrors "ecoscan/internal/errors"
)

func TestMapEcoErrorToStatus(t *testing.T) {
	tests := []struct {
		code ecoerrors.ErrorCode
		want int
	}{
		{ecoerrors.ParseError, http.StatusUnprocessableEntity},
		{ecoerrors.InvalidInput, http.StatusBadRequest},
		{ecoerrors.UnsupportedFile, http.StatusBadRequest},
		{ecoerrors.FileNotFound, http.StatusNotFound},
		{ecoerrors.FetchFailed, http.StatusBadGateway},
		{ecoerrors.StorageError, http.StatusServiceUnavailable},
		{ecoerrors.ConfigInvalid, http.StatusInternalServerError},
		{ecoerrors.InternalError, http.StatusInternalServerError},
		{"UNKNOWN_CODE", http.StatusInternalServerError}, // default case
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			got := MapEcoErrorToStatus(tt.code)
			if got != tt.want {
				t.Errorf("MapEcoErrorToStatus(%q) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}

func TestWriteError(t *testing.T) {
	t.Run("writes basic error", func(t *testing.T) {
		w := httptest.NewRecorder()
		WriteError(w, fmt.Errorf("something went wrong"), http.StatusInternalServerError)

		if w.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
		}
		if ct := w.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", ct)
		}

		var resp ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		if resp.Error != "something went wrong" {
			t.Errorf("resp.Error = %q, want 'something went wrong'", resp.Error)
		}
		if resp.Code != "INTERNAL_ERROR" {
			t.Errorf("resp.Code = %q, want INTERNAL_ERROR", resp.Code)
		}
	})

	t.Run("includes error code and fixes", func(t *testing.T) {
		w := httptest.NewRecorder()
		err := ecoerrors.NewEcoError(ecoerrors.ParseError, "failed to parse source", nil).
			WithDetails(map[string]int{"line": 3})

		WriteError(w, err, http.StatusUnprocessableEntity)

		var resp ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		if resp.Code != "PARSE_ERROR" {
			t.Errorf("resp.Code = %q, want PARSE_ERROR", resp.Code)
		}
		if resp.Details == nil {
			t.Error("expected details")
		}
		if len(resp.SuggestedFixes) == 0 {
			t.Error("expected suggested fixes for a parse error")
		}
	})

	t.Run("finds wrapped errors", func(t *testing.T) {
		w := httptest.NewRecorder()
		inner := ecoerrors.NewEcoError(ecoerrors.StorageError, "db locked", nil)
		WriteEcoError(w, fmt.Errorf("recording run: %w", inner))

		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
		}
	})
}

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSON(w, map[string]string{"status": "ok"}, http.StatusCreated)

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", w.Code, http.StatusCreated)
	}
	var got map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if got["status"] != "ok" {
		t.Errorf("body = %v", got)
	}
}

func TestHelperStatuses(t *testing.T) {
	tests := []struct {
		name  string
		write func(http.ResponseWriter)
		want  int
		code  string
	}{
		{"BadRequest", func(w http.ResponseWriter) { BadRequest(w, "bad") }, http.StatusBadRequest, "INVALID_INPUT"},
		{"NotFound", func(w http.ResponseWriter) { NotFound(w, "gone") }, http.StatusNotFound, "FILE_NOT_FOUND"},
		{"InternalError", func(w http.ResponseWriter) { InternalError(w, "boom", nil) }, http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
			var resp ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to parse response: %v", err)
			}
			if resp.Code != tt.code {
				t.Errorf("code = %q, want %q", resp.Code, tt.code)
			}
		})
	}
}
