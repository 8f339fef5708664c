package api

import "github.com/danielgtaylor/huma/v2"

// EnvelopeVersion is the version of the response envelope. Clients check "v" before parsing.
const EnvelopeVersion = 1

// APIEnvelope wraps every successful response and every simple error.
type APIEnvelope struct { //nolint:revive // API prefix is intentional for clarity
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// APIErrorEnvelope is the envelope for errors carrying a machine-readable code.
type APIErrorEnvelope struct { //nolint:revive // API prefix is intentional for clarity
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer is a huma transformer that wraps response bodies in the envelope.
// Coded API errors keep their code and details; other errors collapse to a message.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	if err, ok := v.(error); ok {
		apiErr := toAPIError(err)
		if apiErr == nil || apiErr.Code == "" {
			return APIEnvelope{
				Version: EnvelopeVersion,
				Success: false,
				Error:   err.Error(),
			}, nil
		}
		return APIErrorEnvelope{
			Version: EnvelopeVersion,
			Success: false,
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Details: apiErr.Details,
		}, nil
	}

	return APIEnvelope{
		Version: EnvelopeVersion,
		Success: len(status) == 0 || status[0] == '2' || status[0] == '3',
		Data:    v,
	}, nil
}
