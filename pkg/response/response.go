// Package response writes the JSON envelopes every endpoint answers with:
//
//	{"error": false, "message": "...", ...payload}
//	{"error": true,  "message": "...", "code": 404}
package response

import (
	"encoding/json"
	"net/http"

	"github.com/shashiranjanraj/brewhouse/pkg/apperr"
	"github.com/shashiranjanraj/brewhouse/pkg/logger"
)

// Payload is merged into a success envelope next to "error" and "message".
type Payload map[string]any

type errorEnvelope struct {
	Error   bool              `json:"error"`
	Message string            `json:"message"`
	Code    int               `json:"code"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

// Success writes a success envelope. Payload keys "error" and "message"
// are reserved and overwritten.
func Success(w http.ResponseWriter, status int, message string, payload Payload) {
	body := make(map[string]any, len(payload)+2)
	for k, v := range payload {
		body[k] = v
	}
	body["error"] = false
	body["message"] = message
	JSON(w, status, body)
}

// OK sends a 200 success envelope.
func OK(w http.ResponseWriter, message string, payload Payload) {
	Success(w, http.StatusOK, message, payload)
}

// Created sends a 201 success envelope.
func Created(w http.ResponseWriter, message string, payload Payload) {
	Success(w, http.StatusCreated, message, payload)
}

// Error sends an error envelope.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, errorEnvelope{Error: true, Message: message, Code: status})
}

// ValidationError sends a 400 with a field-level error map.
func ValidationError(w http.ResponseWriter, message string, errs map[string]string) {
	if message == "" {
		message = "Validation failed"
	}
	JSON(w, http.StatusBadRequest, errorEnvelope{
		Error:   true,
		Message: message,
		Code:    http.StatusBadRequest,
		Errors:  errs,
	})
}

func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, message)
}

func Forbidden(w http.ResponseWriter, message string) {
	Error(w, http.StatusForbidden, message)
}

func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}

// FromError maps err to its envelope. Infrastructure failures are logged
// with the request logger and answered with a generic message.
func FromError(w http.ResponseWriter, r *http.Request, err error) {
	e := apperr.As(err)
	if e.Kind == apperr.KindInfrastructure {
		logger.WithCtx(r.Context()).Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if e.Kind == apperr.KindValidation && len(e.Fields) > 0 {
		ValidationError(w, e.Message, e.Fields)
		return
	}
	Error(w, e.Kind.Status(), e.Message)
}
