package handler

import (
	"net/http"

	"github.com/mcoot/galapa/internal/api/apierr"
)

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// NewUpstreamError creates a bad gateway error
func NewUpstreamError(message string) error {
	return apierr.NewUpstreamError(message)
}
