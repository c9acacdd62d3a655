package utils

import (
	"encoding/json"
	"errors"
	"net/http"

	"connwatch/pkg/apperror"

	"github.com/rs/zerolog/log"
)

// SuccessResponse is the envelope of every 2xx JSON body.
type SuccessResponse[T any] struct {
	Success   bool   `json:"success"`
	RequestID string `json:"request_id"`
	Message   string `json:"message"`
	Data      T      `json:"data,omitempty"`
}

type Error struct {
	// Kind is the machine-readable code, not the HTTP status.
	Kind    apperror.Kind `json:"kind"`
	Message string        `json:"message,omitempty"`
}

type ErrorResponse struct {
	Success   bool   `json:"success"`
	RequestID string `json:"request_id"`
	Error     Error  `json:"error"`
}

func WriteJSON[T any](w http.ResponseWriter, status int, reqID string, message string, data T) {
	writeBody(w, status, SuccessResponse[T]{
		Success:   true,
		RequestID: reqID,
		Message:   message,
		Data:      data,
	})
}

func WriteError(w http.ResponseWriter, httpStatusCode int, reqID string, code apperror.Kind, message string) {
	writeBody(w, httpStatusCode, ErrorResponse{
		RequestID: reqID,
		Error: Error{
			Kind:    code,
			Message: message,
		},
	})
}

// FromAppError writes err with the status its kind maps to. Errors that are
// not *apperror.Error are reported as internal without their text.
func FromAppError(w http.ResponseWriter, reqID string, err error) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		appErr = &apperror.Error{
			Kind:    apperror.Internal,
			Message: "internal server error",
		}
	}

	WriteError(w, apperror.GetHTTPStatus(appErr.Kind), reqID, appErr.Kind, appErr.Message)
}

func writeBody(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Int("status", status).Msg("failed to encode response body")
	}
}
