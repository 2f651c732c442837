package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents stable error codes for all failure modes
type ErrorCode string

const (
	// ParseError indicates the Python source could not be parsed
	ParseError ErrorCode = "PARSE_ERROR"
	// InvalidInput indicates a request carried no usable source
	InvalidInput ErrorCode = "INVALID_INPUT"
	// FileNotFound indicates a requested file does not exist
	FileNotFound ErrorCode = "FILE_NOT_FOUND"
	// UnsupportedFile indicates an upload that is not a .py file
	UnsupportedFile ErrorCode = "UNSUPPORTED_FILE"
	// StorageError indicates the run history database failed
	StorageError ErrorCode = "STORAGE_ERROR"
	// FetchFailed indicates the code host rejected or failed a request
	FetchFailed ErrorCode = "FETCH_FAILED"
	// ConfigInvalid indicates configuration failed validation
	ConfigInvalid ErrorCode = "CONFIG_INVALID"
	// InternalError indicates unexpected error
	InternalError ErrorCode = "INTERNAL_ERROR"
)

// FixActionType represents the type of fix action
type FixActionType string

const (
	// RunCommand suggests running a command
	RunCommand FixActionType = "run-command"
	// OpenDocs suggests opening documentation
	OpenDocs FixActionType = "open-docs"
)

// FixAction represents a suggested fix for an error
type FixAction struct {
	Type        FixActionType `json:"type"`
	Command     string        `json:"command,omitempty"`
	Safe        bool          `json:"safe,omitempty"`
	Description string        `json:"description,omitempty"`
	URL         string        `json:"url,omitempty"`
}

// EcoError represents an ecoscan error with code, message, and suggestions
type EcoError struct {
	Code           ErrorCode   `json:"code"`
	Message        string      `json:"message"`
	Details        interface{} `json:"details,omitempty"`
	SuggestedFixes []FixAction `json:"suggestedFixes,omitempty"`
	cause          error
}

// NewEcoError creates a new EcoError with the default fixes for its code
func NewEcoError(code ErrorCode, message string, cause error) *EcoError {
	return &EcoError{
		Code:           code,
		Message:        message,
		SuggestedFixes: GetSuggestedFixes(code),
		cause:          cause,
	}
}

// Error implements the error interface
func (e *EcoError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *EcoError) Unwrap() error {
	return e.cause
}

// WithDetails adds details to the error
func (e *EcoError) WithDetails(details interface{}) *EcoError {
	e.Details = details
	return e
}

// CodeOf returns the code of the first EcoError in err's chain, or
// InternalError when there is none.
func CodeOf(err error) ErrorCode {
	var eco *EcoError
	if errors.As(err, &eco) {
		return eco.Code
	}
	return InternalError
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code ErrorCode) bool {
	var eco *EcoError
	return errors.As(err, &eco) && eco.Code == code
}

// ErrorActions maps error codes to suggested fix actions
var ErrorActions = map[ErrorCode][]FixAction{
	ParseError: {
		{
			Type:        RunCommand,
			Command:     "python -m py_compile ${file}",
			Safe:        true,
			Description: "Locate the syntax error reported by the Python compiler",
		},
	},
	StorageError: {
		{
			Type:        RunCommand,
			Command:     "ecoscan analyze --no-save ${file}",
			Safe:        true,
			Description: "Analyze without recording the run",
		},
	},
	ConfigInvalid: {
		{
			Type:        RunCommand,
			Command:     "ecoscan config show",
			Safe:        true,
			Description: "Inspect the effective configuration",
		},
	},
	FetchFailed: {
		{
			Type:        OpenDocs,
			URL:         "https://docs.github.com/en/rest/search/search#search-repositories",
			Description: "Check the token and rate limits for the search API",
		},
	},
}

// GetSuggestedFixes returns suggested fixes for an error code
func GetSuggestedFixes(code ErrorCode) []FixAction {
	if fixes, ok := ErrorActions[code]; ok {
		return fixes
	}
	return nil
}
