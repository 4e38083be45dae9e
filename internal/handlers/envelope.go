package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/repositories"
)

// Kind classifies a request failure and fixes its HTTP status.
type Kind string

const (
	KindInvalidArgument Kind = "invalid_argument"
	KindUnauthorized    Kind = "unauthorized"
	KindForbidden       Kind = "forbidden"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindInternal        Kind = "internal"
)

func (k Kind) status() int {
	switch k {
	case KindInvalidArgument:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is the single failure type handlers raise. The kind tag survives
// every propagation layer so the outermost conversion never has to guess a
// status from a message.
type Error struct {
	Kind    Kind
	Message string
	Details []string
	// Err carries the underlying cause for logging; it is never serialized.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func invalidArgument(message string, details ...string) *Error {
	return &Error{Kind: KindInvalidArgument, Message: message, Details: details}
}

func unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

func notFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func internalError(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// successEnvelope is the uniform success response shape.
type successEnvelope struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Data       any    `json:"data"`
}

// failureEnvelope is the uniform failure response shape.
type failureEnvelope struct {
	Success    bool     `json:"success"`
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Errors     []string `json:"errors"`
}

// handlerFunc is the shape every endpoint implements: produce data or raise
// an error, never write a raw response body.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// handle adapts a handlerFunc into http.HandlerFunc, converting any raised
// error into the failure envelope. This is the only place errors become
// responses.
func handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := fn(w, r)
		if err == nil {
			return
		}
		writeError(w, r, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logging.FromContext(r.Context())

	apiErr := &Error{}
	switch {
	case errors.As(err, &apiErr):
	case errors.Is(err, repositories.ErrNotFound):
		apiErr = notFound("resource not found")
	case errors.Is(err, repositories.ErrConflict):
		apiErr = conflict("resource already exists")
	default:
		apiErr = internalError("something went wrong, please try again later", err)
	}

	status := apiErr.Kind.status()
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "kind", string(apiErr.Kind), "error", err)
	} else {
		logger.Warn("request rejected", "kind", string(apiErr.Kind), "status", status, "message", apiErr.Message)
	}

	details := apiErr.Details
	if details == nil {
		details = []string{}
	}

	writeJSON(w, r, status, failureEnvelope{
		Success:    false,
		StatusCode: status,
		Message:    apiErr.Message,
		Errors:     details,
	})
}

// respond writes the success envelope.
func respond(w http.ResponseWriter, r *http.Request, status int, message string, data any) error {
	writeJSON(w, r, status, successEnvelope{
		Success:    true,
		StatusCode: status,
		Message:    message,
		Data:       data,
	})
	return nil
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.FromContext(r.Context()).Error("encode response body", "status", status, "error", err)
	}
}

// decodeBody parses a JSON request body into dst.
func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return invalidArgument("invalid request body")
	}
	return nil
}
