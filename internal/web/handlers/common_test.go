package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kozaktomas/face-verifier/internal/constants"
	"github.com/kozaktomas/face-verifier/internal/facematch"
)

func TestRespondJSON_SetsContentTypeAndStatus(t *testing.T) {
	recorder := httptest.NewRecorder()

	respondJSON(recorder, http.StatusCreated, map[string]string{"status": "ok"})

	assertStatusCode(t, recorder, http.StatusCreated)
	assertContentType(t, recorder, "application/json")
	if recorder.Body.String() != "{\"status\":\"ok\"}\n" {
		t.Errorf("unexpected body %q", recorder.Body.String())
	}
}

func TestRespondJSON_NilData(t *testing.T) {
	recorder := httptest.NewRecorder()

	respondJSON(recorder, http.StatusOK, nil)

	if recorder.Body.Len() != 0 {
		t.Errorf("expected empty body for nil data, got '%s'", recorder.Body.String())
	}
}

func TestRespondError_ContainsErrorKey(t *testing.T) {
	recorder := httptest.NewRecorder()

	respondError(recorder, http.StatusBadRequest, "something went wrong")

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, "something went wrong")
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"invalid image", fmt.Errorf("%w: cannot decode", facematch.ErrInvalidImage), http.StatusBadRequest, "Invalid image format: cannot decode"},
		{"invalid image wrapped", fmt.Errorf("decode upload: %w", fmt.Errorf("%w: bad base64", facematch.ErrInvalidImage)), http.StatusBadRequest, "Invalid image format: bad base64"},
		{"invalid probe image", &facematch.ImageError{Image: facematch.ImageProbe, Err: fmt.Errorf("%w: bad base64", facematch.ErrInvalidImage)}, http.StatusBadRequest, "Invalid image format (probe image): bad base64"},
		{"bare invalid image", facematch.ErrInvalidImage, http.StatusBadRequest, "Invalid image format"},
		{"no face", facematch.ErrNoFaceDetected, http.StatusBadRequest, "No face detected in the image"},
		{"no face in reference", &facematch.ImageError{Image: facematch.ImageReference, Err: facematch.ErrNoFaceDetected}, http.StatusBadRequest, "No face detected in the reference image"},
		{"no face in probe", fmt.Errorf("compare: %w", &facematch.ImageError{Image: facematch.ImageProbe, Err: facematch.ErrNoFaceDetected}), http.StatusBadRequest, "No face detected in the probe image"},
		{"invalid input", fmt.Errorf("%w: name is required", facematch.ErrInvalidInput), http.StatusBadRequest, "invalid input: name is required"},
		{"not found", facematch.ErrNotFound, http.StatusNotFound, "Candidate not found"},
		{"duplicate", facematch.ErrDuplicateEmail, http.StatusConflict, "Candidate with this email is already registered"},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, message := statusForError(tc.err)
			if status != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, status)
			}
			if message != tc.message {
				t.Errorf("expected message %q, got %q", tc.message, message)
			}
		})
	}
}

func TestDecodeJSON_InvalidBody(t *testing.T) {
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/verify", strings.NewReader("{not json"))

	var dst VerifyRequest
	if decodeJSON(recorder, req, &dst) {
		t.Fatal("expected decodeJSON to fail")
	}

	assertStatusCode(t, recorder, http.StatusBadRequest)
	assertJSONError(t, recorder, errInvalidRequestBody)
}

func TestDecodeJSON_TooLarge(t *testing.T) {
	body := `{"image":"` + strings.Repeat("A", constants.MaxUploadSize) + `"}`
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/verify", bytes.NewReader([]byte(body)))

	var dst VerifyRequest
	if decodeJSON(recorder, req, &dst) {
		t.Fatal("expected decodeJSON to fail")
	}

	assertStatusCode(t, recorder, http.StatusRequestEntityTooLarge)
}

func TestHealthCheck(t *testing.T) {
	req := httptest.NewRequest("GET", "/health", nil)
	recorder := httptest.NewRecorder()

	HealthCheck(recorder, req)

	assertStatusCode(t, recorder, http.StatusOK)
	assertContentType(t, recorder, "application/json")

	var result map[string]string
	parseJSONResponse(t, recorder, &result)
	if result["status"] != "healthy" {
		t.Errorf("expected status 'healthy', got '%s'", result["status"])
	}
}

func TestSanitizeForLog(t *testing.T) {
	if got := sanitizeForLog("line1\nline2\r"); got != "line1line2" {
		t.Errorf("sanitizeForLog = %q", got)
	}
}
