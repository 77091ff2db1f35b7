package dto

import "math"

type ErrorResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

// Round2 rounds a derived ratio to two decimals for display.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
