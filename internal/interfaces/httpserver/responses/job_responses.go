package responses

import "github.com/janhq/genai-proxy/internal/domain/job"

// SubmitResponse is returned by POST /api/{job_type}.
type SubmitResponse struct {
	PredictionID string `json:"prediction_id"`
}

// PredictionResponse is returned by GET /api/prediction/{id}.
type PredictionResponse struct {
	Status string      `json:"status"`
	Output *job.Output `json:"output,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// WireStatus renders a canonical status in the vocabulary clients poll for.
func WireStatus(s job.Status) string {
	switch s {
	case job.StatusQueued:
		return "starting"
	case job.StatusRunning:
		return "processing"
	default:
		return s.String()
	}
}

// NewPredictionResponse builds the poll body for j.
func NewPredictionResponse(j *job.Job) PredictionResponse {
	return PredictionResponse{
		Status: WireStatus(j.Status),
		Output: j.Output,
		Error:  j.Error,
	}
}
