package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/mcdev12/survivor/go/internal/apperrors"
	"github.com/rs/zerolog/log"
)

const maxBodyBytes = 1 << 20

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

// WriteJSON writes v with status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write response")
	}
}

// OK answers 200 with {"success":true,"data":...}.
func OK(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, envelope{Success: true, Data: data})
}

// Created answers 201 with {"success":true,"data":...}.
func Created(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, envelope{Success: true, Data: data})
}

// Error maps err to a status code and a user-safe message. Server-side
// failures are logged with the full chain.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	code := apperrors.CodeOf(err)
	status := code.HTTPStatus()
	if status >= http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Msg("request failed")
	}
	WriteJSON(w, status, envelope{Success: false, Message: apperrors.MessageOf(err), Code: string(code)})
}

// Decode reads a JSON body into dst.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.Validation("Request body is required")
		}
		return apperrors.Wrap(apperrors.CodeValidation, "Invalid request body", err)
	}
	return nil
}
