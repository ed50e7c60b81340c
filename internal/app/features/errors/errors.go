// Package errors centralizes the JSON error surface. Every handler funnels
// failures through these helpers so clients always get the same shape:
// {"error": "..."}.
package errors

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
}

// JSON writes a JSON error body with the given status.
func JSON(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: msg})
}

// BadRequest writes a 400 with the given message.
func BadRequest(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusBadRequest, msg)
}

// Unauthorized writes a 401.
func Unauthorized(w http.ResponseWriter) {
	JSON(w, http.StatusUnauthorized, "sign in required")
}

// Forbidden writes a 403 with the given message.
func Forbidden(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusForbidden, msg)
}

// NotFound writes a 404 with the given message.
func NotFound(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusNotFound, msg)
}

// Conflict writes a 409 with the given message.
func Conflict(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusConflict, msg)
}

// ErrorLogger pairs server-side logging with a sanitized client response,
// so internal details land in the log and never in the body.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

// LogServerError logs the internal error with request context and sends the
// user-facing message as a 500.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg string) {
	e.log.Error(logMsg,
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path))
	JSON(w, http.StatusInternalServerError, userMsg)
}
