package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/qrkiosk/internal/model"
	"github.com/mcoot/qrkiosk/internal/services/registry"
)

// ErrorResponse is the failure envelope shared by every endpoint
type ErrorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes
const (
	CodeInvalidRequest      = "INVALID_REQUEST"
	CodeInvalidRegistration = "INVALID_REGISTRATION"
	CodeInvalidRoomUpdate   = "INVALID_ROOM_UPDATE"
	CodeDuplicateGroupName  = "DUPLICATE_GROUP_NAME"
	CodeRoomNotFound        = "ROOM_NOT_FOUND"
	CodeRoomsFull           = "ROOMS_FULL"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeInternalError       = "INTERNAL_ERROR"
)

// DuplicateGroupMessage carries the dupCheck marker older kiosks match on
const DuplicateGroupMessage = "dupCheck: a group with this name is already registered"

// httpError combines an HTTP status code with a code and message
type httpError struct {
	status  int
	code    string
	message string
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	write(w, he.status, he)
}

// WriteRefusal writes client errors as 200 responses with success false, the form kiosks
// read refusals in. Server errors are written as by WriteError.
func WriteRefusal(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	status := he.status
	if status < http.StatusInternalServerError {
		status = http.StatusOK
	}
	write(w, status, he)
}

func write(w http.ResponseWriter, status int, he *httpError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Success: false, Code: he.code, Message: he.message})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrDuplicateGroupName):
		return &httpError{http.StatusConflict, CodeDuplicateGroupName, DuplicateGroupMessage}
	case errors.Is(err, model.ErrInvalidRegistration):
		return &httpError{http.StatusBadRequest, CodeInvalidRegistration, err.Error()}
	case errors.Is(err, model.ErrInvalidRoomUpdate):
		return &httpError{http.StatusBadRequest, CodeInvalidRoomUpdate, err.Error()}
	case errors.Is(err, model.ErrRoomNotFound):
		return &httpError{http.StatusNotFound, CodeRoomNotFound, "Room not found"}
	case errors.Is(err, registry.ErrRoomCodesExhausted):
		return &httpError{http.StatusServiceUnavailable, CodeRoomsFull, "No rooms are available"}

	default:
		return &httpError{http.StatusInternalServerError, CodeInternalError, "Internal server error"}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, CodeInvalidRequest, message}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, CodeUnauthorized, "Admin key required"}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, CodeInternalError, "Internal server error"}
}
