package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"recruit/tracker/app/internal/domain"
)

// apiError is the wire form of a failed request.
type apiError struct {
	HTTP   int
	Code   string
	Detail string
	Fields map[string]string
}

func writeError(w http.ResponseWriter, ae apiError) {
	body := map[string]any{
		"code":    ae.Code,
		"message": ae.Detail,
	}
	if len(ae.Fields) > 0 {
		body["fields"] = ae.Fields
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(ae.HTTP)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": body})
}

// mapError translates an error kind into its HTTP status and code.
// Messages of domain errors are safe to show; anything else is internal.
func mapError(err error) apiError {
	var de *domain.Error
	var msg string
	if errors.As(err, &de) {
		msg = de.Error()
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return apiError{HTTP: http.StatusNotFound, Code: "NOT_FOUND", Detail: orDefault(msg, "resource not found")}
	case errors.Is(err, domain.ErrValidation):
		return apiError{HTTP: http.StatusBadRequest, Code: "VALIDATION", Detail: orDefault(msg, "invalid request"), Fields: domain.FieldsOf(err)}
	case errors.Is(err, domain.ErrForbidden):
		return apiError{HTTP: http.StatusForbidden, Code: "FORBIDDEN", Detail: orDefault(msg, "forbidden")}
	case errors.Is(err, domain.ErrConflict):
		return apiError{HTTP: http.StatusConflict, Code: "CONFLICT", Detail: orDefault(msg, "conflict")}
	case errors.Is(err, domain.ErrInvalidTransition):
		return apiError{HTTP: http.StatusConflict, Code: "INVALID_TRANSITION", Detail: orDefault(msg, "transition not allowed")}
	}
	return apiError{HTTP: http.StatusInternalServerError, Code: "INTERNAL", Detail: "internal error"}
}

func orDefault(msg, def string) string {
	if msg == "" {
		return def
	}
	return msg
}

// BadRequest 400.
func BadRequest(w http.ResponseWriter, msg string) {
	writeError(w, apiError{HTTP: http.StatusBadRequest, Code: "BAD_REQUEST", Detail: msg})
}

// Unauthorized 401.
func Unauthorized(w http.ResponseWriter, msg string) {
	writeError(w, apiError{HTTP: http.StatusUnauthorized, Code: "UNAUTHORIZED", Detail: msg})
}

// Forbidden 403.
func Forbidden(w http.ResponseWriter, msg string) {
	writeError(w, apiError{HTTP: http.StatusForbidden, Code: "FORBIDDEN", Detail: msg})
}
