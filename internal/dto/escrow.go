package dto

import "net/http"

// EscrowErrorEnvelope is the fixed body returned when the escrow relay fails.
type EscrowErrorEnvelope struct {
	Success bool              `json:"success"`
	Error   EscrowErrorDetail `json:"error"`
}

type EscrowErrorDetail struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
}

func NewEscrowErrorEnvelope(err error) EscrowErrorEnvelope {
	return EscrowErrorEnvelope{
		Success: false,
		Error: EscrowErrorDetail{
			Code:    http.StatusInternalServerError,
			Message: "Failed to create escrow",
			Details: err.Error(),
		},
	}
}
