package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nao1215/agencydash/internal/database"
	"github.com/nao1215/agencydash/internal/dataset"
)

// Error codes returned in ErrorResponse.Code.
const (
	ErrCodeLoadFailed   = "load_failed"
	ErrCodeInvalidData  = "invalid_dataset"
	ErrCodeInvalidQuery = "invalid_query"
	ErrCodeNoData       = "no_data"
	ErrCodeInternal     = "internal_server_error"
)

// ErrorResponse is the JSON body of a failed API request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// pageStatus maps a render error to the status of the HTML page.
// The page shows every load problem as a server error.
func pageStatus(err error) int {
	if errors.Is(err, database.ErrUnknownSortColumn) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// apiStatus maps a render error to a JSON status and error code.
func apiStatus(err error) (int, string) {
	switch {
	case errors.Is(err, database.ErrUnknownSortColumn):
		return http.StatusBadRequest, ErrCodeInvalidQuery
	case errors.Is(err, dataset.ErrSchemaMismatch), errors.Is(err, dataset.ErrMalformedRow):
		return http.StatusUnprocessableEntity, ErrCodeInvalidData
	case errors.Is(err, dataset.ErrFileNotFound):
		return http.StatusInternalServerError, ErrCodeLoadFailed
	default:
		return http.StatusInternalServerError, ErrCodeInternal
	}
}

// respondJSON encodes payload before the status is written, so an
// encoding failure still reaches the client as a 500.
func (s *Server) respondJSON(w http.ResponseWriter, status int, payload any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", "status", status, "error", err)
		buf.Reset()
		_ = json.NewEncoder(&buf).Encode(ErrorResponse{
			Code:    ErrCodeInternal,
			Message: "failed to encode response",
		})
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.logger.Warn("failed to write response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := apiStatus(err)
	s.logger.Error("render failed",
		"request_id", requestID(r.Context()),
		"path", r.URL.Path,
		"status", status,
		"error", err,
	)
	s.respondJSON(w, status, ErrorResponse{Code: code, Message: err.Error()})
}
