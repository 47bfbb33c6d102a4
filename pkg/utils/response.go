package utils

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/aditya/bakshish/internal/errors"
)

// JSON sends a JSON response
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Success sends a 200 response
func Success(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, data)
}

// Created sends a 201 response
func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, data)
}

// Error sends an error in the backend's shape: field errors as a map of
// field to messages, everything else as {"detail": ..., "error": ...}.
func Error(w http.ResponseWriter, err *apperrors.APIError) {
	if len(err.Fields) > 0 {
		JSON(w, err.StatusCode, err.Fields)
		return
	}
	JSON(w, err.StatusCode, map[string]string{
		"error":  err.Code,
		"detail": err.Message,
	})
}

// BadRequest sends a 400 error
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, apperrors.BadRequest(message))
}

// NotFound sends a 404 error
func NotFound(w http.ResponseWriter, resource string) {
	Error(w, apperrors.NotFound(resource))
}

// Forbidden sends a 403 error
func Forbidden(w http.ResponseWriter, message string) {
	Error(w, apperrors.Forbidden(message))
}

// InternalError sends a 500 error
func InternalError(w http.ResponseWriter, message string) {
	Error(w, apperrors.InternalError(message))
}
