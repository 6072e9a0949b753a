package api

import "time"

// APIError is the structured error body every failed request returns
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes
const (
	ErrCodeBadRequest    = "bad_request"
	ErrCodeValidation    = "validation_error"
	ErrCodeParse         = "parse_error"
	ErrCodeBatchTooLarge = "batch_too_large"
	ErrCodeInternalError = "internal_error"
)

// HealthResponse is returned by the health check endpoint
type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp"`
}

// NewHealthResponse builds the standard health body
func NewHealthResponse() HealthResponse {
	return HealthResponse{
		Status:    "ok",
		Service:   "reconciliation-engine",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// ManualMatchRequest is the body of a manual-match confirmation. The
// confidence override replaces whatever the scorer computed for the pair.
type ManualMatchRequest struct {
	TransactionID string  `json:"transaction_id"`
	InvoiceID     string  `json:"invoice_id"`
	Confidence    float64 `json:"confidence_override"`
	MatchedBy     string  `json:"matched_by"`
}
