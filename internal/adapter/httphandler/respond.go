package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/pvolkov/shoply/internal/core/domain"
)

type envelope struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Data    any      `json:"data,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

func respondData(
	w http.ResponseWriter, status int, message string, data any,
) {
	respondJSON(w, status, envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// respondError maps the error's kind onto an HTTP status. The switch is
// exhaustive over the kind enumeration; anything unrecognized is an
// internal failure and its details stay out of the response body.
func respondError(w http.ResponseWriter, err error) {
	var details []string
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		for _, fe := range vErrs {
			details = append(details, fieldErrorMessage(fe))
		}
		respondJSON(w, http.StatusBadRequest, envelope{
			Message: "validation failed",
			Errors:  details,
		})
		return
	}

	var status int
	message := errMessage(err)

	switch domain.KindOf(err) {
	case domain.KindInvalidInput, domain.KindInsufficientStock:
		status = http.StatusBadRequest
	case domain.KindUnauthorized:
		status = http.StatusUnauthorized
	case domain.KindForbidden:
		status = http.StatusForbidden
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindConflict:
		status = http.StatusConflict
	default:
		status = http.StatusInternalServerError
		message = "internal server error"
		slog.Error("request failed", "err", err)
	}

	respondJSON(w, status, envelope{Message: message})
}

func respondJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to write response body", "err", err)
	}
}

func errMessage(err error) string {
	var e *domain.Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

func fieldErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "max":
		return fe.Field() + " cannot exceed " + fe.Param() + " characters"
	case "alphanum":
		return fe.Field() + " must contain only letters and numbers"
	case "password":
		return fe.Field() +
			" must contain an uppercase letter, a lowercase letter and a digit"
	case "uuid4":
		return fe.Field() + " must be a valid id"
	case "gt":
		return fe.Field() + " must be greater than " + fe.Param()
	default:
		return fe.Field() + " is invalid"
	}
}
