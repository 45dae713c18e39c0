package handler

import (
	"net/http"

	"github.com/mcoot/qrkiosk/internal/api/apierr"
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// WriteRefusal writes a client error as a 200 failure envelope
func WriteRefusal(w http.ResponseWriter, err error) {
	apierr.WriteRefusal(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}
