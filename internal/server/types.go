package server

import "github.com/Goldziher/kreuzberg-go/internal/types"

// ExtractResponse wraps the ordered results of a POST /extract call, one
// per uploaded file, in submission order.
type ExtractResponse []*types.ExtractionResult

// HealthResponse is GET /health's body.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// InfoResponse is GET /info's body.
type InfoResponse struct {
	Version   string `json:"version"`
	GoBackend bool   `json:"go_backend"`
}

// CacheClearResponse is DELETE /cache/clear's body.
type CacheClearResponse struct {
	Directory    string  `json:"directory"`
	RemovedFiles int     `json:"removed_files"`
	FreedMB      float64 `json:"freed_mb"`
}

// ErrorResponse is the standard error body for 400/500 responses.
type ErrorResponse struct {
	ErrorType  string `json:"error_type"`
	Message    string `json:"message"`
	Traceback  string `json:"traceback,omitempty"`
	StatusCode int    `json:"status_code"`
}
