package response

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"go-commerce-service/internal/apperror"
)

// envelope is the contract every endpoint answers with:
// success mirrors statusCode < 400.
type envelope struct {
	StatusCode int         `json:"statusCode"`
	Data       interface{} `json:"data,omitempty"`
	Message    string      `json:"message"`
	Success    bool        `json:"success"`
}

func JSON(w http.ResponseWriter, status int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{
		StatusCode: status,
		Data:       data,
		Message:    message,
		Success:    status < http.StatusBadRequest,
	})
}

func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, message, nil)
}

// FromError maps any error onto the envelope. Unexpected errors are logged
// with their cause and surfaced as a bare 500; stack detail never leaves the
// process.
func FromError(w http.ResponseWriter, r *http.Request, err error) {
	e := apperror.From(err)
	if e.Status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "request failed",
			"path", r.URL.Path,
			"method", r.Method,
			"error", err.Error(),
		)
	}
	Error(w, e.Status, e.Message)
}
