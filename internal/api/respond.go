package api

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/julianstephens/habitual/internal/errors"
	"github.com/julianstephens/habitual/internal/logger"
)

type errorResponse struct {
	Error            string `json:"error"`
	NextEligibleDate string `json:"next_eligible_date,omitempty"`
}

// respondWithJSON formats and sends a JSON response
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to encode response", "error", err)
		code = http.StatusInternalServerError
		response = []byte(`{"error":"internal error"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// respondWithError maps domain errors onto HTTP status codes
func respondWithError(w http.ResponseWriter, r *http.Request, err error) {
	if cv, ok := apperrors.AsCadenceViolation(err); ok {
		respondWithJSON(w, http.StatusConflict, errorResponse{
			Error:            cv.Error(),
			NextEligibleDate: cv.NextEligibleDate(),
		})
		return
	}

	switch {
	case apperrors.Is(err, apperrors.ErrUnauthenticated):
		respondWithJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	case apperrors.Is(err, apperrors.ErrNotFound):
		respondWithJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case apperrors.Is(err, apperrors.ErrInvalidInput):
		respondWithJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		respondWithJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// decodeJSON reads a JSON request body into dst, rejecting unknown fields
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return apperrors.Invalidf("invalid request payload: %v", err)
	}
	return nil
}
