package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wonny/srm-sim/internal/contracts"
	"github.com/wonny/srm-sim/internal/sessions"
)

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, sessions.ErrNotFound),
		errors.Is(err, contracts.ErrInvalidSupplier),
		errors.Is(err, contracts.ErrInvoiceNotFound):
		return http.StatusNotFound
	case errors.Is(err, contracts.ErrSupplierBlocked),
		errors.Is(err, contracts.ErrAlreadyPaid),
		errors.Is(err, contracts.ErrSessionOver):
		return http.StatusConflict
	case errors.Is(err, contracts.ErrBelowMinimumOrder):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func respondDomainError(w http.ResponseWriter, err error) {
	respondError(w, statusFor(err), err.Error())
}
