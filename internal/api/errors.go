package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrPasteTooLarge is returned when a request body exceeds max_paste_size.
	ErrPasteTooLarge = errors.New("paste too large")

	// ErrNotUTF8 is returned when a browser asks for HTML of binary content.
	ErrNotUTF8 = errors.New("paste is not valid UTF-8")
)

// ResponseError is the JSON error body of the admin endpoints.
type ResponseError struct {
	Message string `json:"message"`
	Err     string `json:"error"`
	Code    int    `json:"code,omitempty"`
}

// Error implements the error interface.
func (e *ResponseError) Error() string {
	return fmt.Sprintf("code: %d, message: %s, error: %s", e.Code, e.Message, e.Err)
}

// Write writes the error as JSON with its status code.
func (e *ResponseError) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Code)
	_ = json.NewEncoder(w).Encode(e)
}

// ComposeError builds a ResponseError.
func ComposeError(code int, message string, err error) *ResponseError {
	return &ResponseError{
		Code:    code,
		Message: message,
		Err:     err.Error(),
	}
}

// plainError writes the status text as a plain-text body. Paste endpoints
// answer curl users, so they do not get JSON.
func plainError(w http.ResponseWriter, code int) {
	http.Error(w, http.StatusText(code), code)
}
