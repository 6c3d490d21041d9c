package handlers

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kozaktomas/face-verifier/internal/database/mock"
	"github.com/kozaktomas/face-verifier/internal/facematch"
	oraclemock "github.com/kozaktomas/face-verifier/internal/oracle/mock"
)

var (
	aliceKey = color.RGBA{R: 255, A: 255}
	bobKey   = color.RGBA{G: 255, A: 255}
	blankKey = color.RGBA{B: 255, A: 255}
)

// testService wires a scripted oracle and an in-memory store
func testService(t *testing.T) (*facematch.Service, *mock.MockCandidateStore) {
	t.Helper()
	o := oraclemock.NewMockOracle()
	o.AddFaces(aliceKey, []float64{0, 0, 0})
	o.AddFaces(bobKey, []float64{1, 1, 1})
	store := mock.NewMockCandidateStore()
	return facematch.NewService(o, store), store
}

// faceBase64 returns a PNG data URL that the mock oracle recognizes by its top-left pixel
func faceBase64(t *testing.T, key color.RGBA) string {
	t.Helper()
	return "data:image/png;base64," + encodePNG(t, oraclemock.FaceImage(key))
}

func encodePNG(t *testing.T, img image.Image) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode PNG: %v", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// jsonRequest creates a request with a JSON-encoded body
func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// parseJSONResponse parses a JSON response body into the target type
func parseJSONResponse(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	if err := json.Unmarshal(recorder.Body.Bytes(), target); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nBody: %s", err, recorder.Body.String())
	}
}

// assertStatusCode checks if the response has the expected status code
func assertStatusCode(t *testing.T, recorder *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if recorder.Code != expected {
		t.Errorf("expected status %d, got %d\nBody: %s", expected, recorder.Code, recorder.Body.String())
	}
}

// assertContentType checks if the response has the expected content type
func assertContentType(t *testing.T, recorder *httptest.ResponseRecorder, expected string) {
	t.Helper()
	ct := recorder.Header().Get("Content-Type")
	if ct != expected {
		t.Errorf("expected Content-Type '%s', got '%s'", expected, ct)
	}
}

// assertJSONError checks if the response is a JSON error with the expected message
func assertJSONError(t *testing.T, recorder *httptest.ResponseRecorder, expectedMessage string) {
	t.Helper()
	var result map[string]string
	if err := json.Unmarshal(recorder.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse error response: %v\nBody: %s", err, recorder.Body.String())
	}
	if result["error"] != expectedMessage {
		t.Errorf("expected error '%s', got '%s'", expectedMessage, result["error"])
	}
}
