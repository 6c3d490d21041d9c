// Package client talks to a running face-verifier server over its JSON API.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kozaktomas/face-verifier/internal/facematch"
)

// Client is a face-verifier API client.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// New creates a client for the server at baseURL (e.g. http://localhost:8080).
func New(baseURL string) (*Client, error) {
	parsed, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid server URL %q: scheme must be http or https", baseURL)
	}
	return &Client{
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}, nil
}

// resolveURL joins an API path onto the base URL.
func (c *Client) resolveURL(endpoint string) string {
	return c.baseURL.JoinPath(endpoint).String()
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Message)
}

// Unwrap maps the status back to the flow error the server reported,
// so errors.Is works the same for remote and in-process calls.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return facematch.ErrNotFound
	case http.StatusConflict:
		return facematch.ErrDuplicateEmail
	case http.StatusBadRequest:
		var err error
		switch {
		case strings.HasPrefix(e.Message, "No face detected"):
			err = facematch.ErrNoFaceDetected
		case strings.HasPrefix(e.Message, "Invalid image format"):
			err = facematch.ErrInvalidImage
		default:
			return facematch.ErrInvalidInput
		}
		if role := imageRole(e.Message); role != "" {
			return &facematch.ImageError{Image: role, Err: err}
		}
		return err
	}
	return nil
}

// imageRole finds which comparison image a 400 message refers to.
func imageRole(message string) string {
	for _, role := range []string{facematch.ImageReference, facematch.ImageProbe} {
		if strings.Contains(message, role+" image") {
			return role
		}
	}
	return ""
}

// IsNotFoundError returns true if the error indicates a 404 Not Found response.
func IsNotFoundError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

type registerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Image string `json:"image"`
}

type imageRequest struct {
	Image string `json:"image"`
}

type compareRequest struct {
	Reference string `json:"reference"`
	Probe     string `json:"probe"`
}

// MessageResponse is returned by registration.
type MessageResponse struct {
	Message string `json:"message"`
}

// VerifyResponse identifies the matched candidate.
type VerifyResponse struct {
	Message string `json:"message"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}

// CompareResponse is the outcome of a one-to-one comparison.
type CompareResponse struct {
	Match    bool    `json:"match"`
	Distance float64 `json:"distance"`
}

// StatsResponse summarizes the server's store.
type StatsResponse struct {
	Candidates int     `json:"candidates"`
	Oracle     string  `json:"oracle"`
	Metric     string  `json:"metric"`
	Tolerance  float64 `json:"tolerance"`
}

// Health checks that the server is up.
func (c *Client) Health(ctx context.Context) error {
	resp, err := doGetJSON[map[string]string](ctx, c, "health")
	if err != nil {
		return err
	}
	if (*resp)["status"] != "healthy" {
		return fmt.Errorf("server reported status %q", (*resp)["status"])
	}
	return nil
}

// Register sends a base64 image (raw or data URL) for registration.
func (c *Client) Register(ctx context.Context, name, email, image string) (*MessageResponse, error) {
	return doPostJSON[MessageResponse](ctx, c, "api/register", registerRequest{Name: name, Email: email, Image: image})
}

// Verify sends a base64 image for verification.
func (c *Client) Verify(ctx context.Context, image string) (*VerifyResponse, error) {
	return doPostJSON[VerifyResponse](ctx, c, "api/verify", imageRequest{Image: image})
}

// Compare sends two base64 images for a one-to-one comparison.
func (c *Client) Compare(ctx context.Context, reference, probe string) (*CompareResponse, error) {
	return doPostJSON[CompareResponse](ctx, c, "api/compare", compareRequest{Reference: reference, Probe: probe})
}

// Stats fetches the candidate count and oracle info.
func (c *Client) Stats(ctx context.Context) (*StatsResponse, error) {
	return doGetJSON[StatsResponse](ctx, c, "api/stats")
}
