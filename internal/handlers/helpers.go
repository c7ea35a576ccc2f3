package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ternarybob/analyst/internal/common"
	"github.com/ternarybob/analyst/internal/models"
)

// MaxBodyBytes caps every JSON request body
const MaxBodyBytes = 1 << 20

// WriteJSON writes a JSON response with the specified status code and data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(data)
}

// WriteError writes the standard {"detail": ...} error body.
func WriteError(w http.ResponseWriter, statusCode int, message string) error {
	return WriteJSON(w, statusCode, models.ErrorResponse{Detail: message})
}

// WriteServiceError maps a service error onto its status code.
func WriteServiceError(w http.ResponseWriter, err error) error {
	return WriteError(w, common.HTTPStatus(err), err.Error())
}

// DecodeJSON reads a size-limited JSON body into v and validates it.
// Returns false after writing a 400 or 413 response.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			WriteError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("Request body exceeds %d bytes", MaxBodyBytes))
		case errors.Is(err, io.EOF):
			WriteError(w, http.StatusBadRequest, "Request body is required")
		default:
			WriteError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		}
		return false
	}
	if err := ValidateRequest(v); err != nil {
		WriteServiceError(w, err)
		return false
	}
	return true
}
