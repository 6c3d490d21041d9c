package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/kozaktomas/face-verifier/internal/constants"
	"github.com/kozaktomas/face-verifier/internal/facematch"
	"go.uber.org/zap"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// Client-facing messages for the flow errors.
const (
	msgNoFace          = "No face detected in the image"
	msgNoFaceIn        = "No face detected in the "
	msgNotFound        = "Candidate not found"
	msgDuplicateEmail  = "Candidate with this email is already registered"
	msgInvalidImage    = "Invalid image format"
	msgInternalError   = "Internal server error"
	msgRegistered      = "Candidate registered successfully"
	msgVerified        = "Candidate verified"
	msgRequestTooLarge = "request body too large"
)

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// decodeJSON reads a size-limited JSON body into dst and answers 400/413 itself on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxUploadSize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, msgRequestTooLarge)
			return false
		}
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return false
	}
	return true
}

// statusForError maps a flow error to its HTTP status and client message.
func statusForError(err error) (int, string) {
	var imageErr *facematch.ImageError
	hasImage := errors.As(err, &imageErr)

	switch {
	case errors.Is(err, facematch.ErrInvalidImage):
		if hasImage {
			return http.StatusBadRequest, withReason(msgInvalidImage+" ("+imageErr.Image+" image)", err)
		}
		return http.StatusBadRequest, withReason(msgInvalidImage, err)
	case errors.Is(err, facematch.ErrNoFaceDetected):
		if hasImage {
			return http.StatusBadRequest, msgNoFaceIn + imageErr.Image + " image"
		}
		return http.StatusBadRequest, msgNoFace
	case errors.Is(err, facematch.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, facematch.ErrNotFound):
		return http.StatusNotFound, msgNotFound
	case errors.Is(err, facematch.ErrDuplicateEmail):
		return http.StatusConflict, msgDuplicateEmail
	default:
		return http.StatusInternalServerError, msgInternalError
	}
}

// withReason appends the decoder's reason, found after the fixed invalid image prefix.
func withReason(message string, err error) string {
	if _, reason, ok := strings.Cut(err.Error(), facematch.ErrInvalidImage.Error()+": "); ok && reason != "" {
		return message + ": " + reason
	}
	return message
}

// respondFlowError logs unexpected failures and writes the mapped error response.
func respondFlowError(w http.ResponseWriter, logger *zap.Logger, flow string, err error) {
	status, message := statusForError(err)
	if status == http.StatusInternalServerError {
		logger.Error("flow failed", zap.String("flow", flow), zap.Error(err))
	} else {
		logger.Debug("flow rejected", zap.String("flow", flow), zap.Int("status", status), zap.String("reason", sanitizeForLog(err.Error())))
	}
	respondError(w, status, message)
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
