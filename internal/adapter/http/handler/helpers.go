package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/iho/goticket/internal/adapter/http/dto"
	"github.com/iho/goticket/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// writeDomainError writes err with its mapped status and error kind.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	writeJSON(w, mapDomainError(err), dto.ErrorFromDomain(message, err))
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrMissingUserID):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrUnknownEvent):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAccountExists):
		return http.StatusConflict
	}

	switch domain.KindOf(err) {
	case domain.KindValidation:
		if errors.Is(err, domain.ErrInsufficientFunds) ||
			errors.Is(err, domain.ErrInsufficientInventory) ||
			errors.Is(err, domain.ErrInsufficientHolding) {
			return http.StatusUnprocessableEntity
		}
		return http.StatusBadRequest
	case domain.KindRaceCompensated:
		return http.StatusConflict
	case domain.KindStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// userID returns the caller identity placed on the context by the identity
// middleware, writing a 401 if there is none.
func userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := domain.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing identity", "")
		return "", false
	}
	return id, true
}

// decode reads a JSON body, writing a 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}
	return true
}
