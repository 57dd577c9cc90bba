package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rshaham/job-hunt-buddy/internal/domain"
)

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// sentinelStatus maps domain sentinels to HTTP semantics.
var sentinelStatus = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrProfileUnavailable, http.StatusUnprocessableEntity, "profile_unavailable"},
	{domain.ErrJobNotFound, http.StatusNotFound, "job_not_found"},
	{domain.ErrEntityNotFound, http.StatusNotFound, "not_found"},
	{domain.ErrPipelineNotReady, http.StatusServiceUnavailable, "pipeline_not_ready"},
	{domain.ErrPipelineClosed, http.StatusServiceUnavailable, "pipeline_closed"},
	{domain.ErrEmbeddingProviderError, http.StatusBadGateway, "embedding_provider_error"},
	{domain.ErrInvalidEntityType, http.StatusBadRequest, "invalid_entity_type"},
	{domain.ErrVectorDimMismatch, http.StatusBadRequest, "vector_dim_mismatch"},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage keeps internal error details out of responses.
func safeDomainMessage(err error) string {
	for _, s := range sentinelStatus {
		if errors.Is(err, s.err) {
			return s.err.Error()
		}
	}
	return "internal error"
}
