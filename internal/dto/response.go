package dto

import (
	"encoding/json"
	"time"

	"formcraft/internal/domain"
)

// SubmitResponseRequest is the body of POST /api/responses.
// @Description Answers keyed by question id
type SubmitResponseRequest struct {
	FormID    string                     `json:"formId"`
	Responses map[string]json.RawMessage `json:"responses" swaggertype:"object"`
}

// ResponseResponse represents a submitted response in the API response
type ResponseResponse struct {
	ID          string                   `json:"id"`
	LegacyID    string                   `json:"_id"`
	FormID      string                   `json:"formId"`
	Responses   map[string]domain.Answer `json:"responses" swaggertype:"object"`
	SubmittedAt time.Time                `json:"submittedAt"`
}

func NewResponseResponse(r *domain.Response) ResponseResponse {
	answers := r.Answers
	if answers == nil {
		answers = map[string]domain.Answer{}
	}
	return ResponseResponse{
		ID:          r.ID,
		LegacyID:    r.ID,
		FormID:      r.FormID,
		Responses:   answers,
		SubmittedAt: r.SubmittedAt,
	}
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
	Cache   string `json:"cache,omitempty"`
}
