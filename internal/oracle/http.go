package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/kozaktomas/face-verifier/internal/imaging"
)

const (
	defaultOracleURL = "http://localhost:8000"
	embedFacePath    = "/embed/face"
	oracleTimeout    = 60 * time.Second
	maxErrorBody     = 1 << 10
)

// HTTPClient talks to an InsightFace embedding server exposing POST /embed/face.
// Its 512-d embeddings are compared by cosine distance.
type HTTPClient struct {
	Predicate
	endpoint string
	http     *http.Client
}

var _ Oracle = (*HTTPClient)(nil)

// NewHTTPClient creates a new oracle client.
func NewHTTPClient(baseURL string) *HTTPClient {
	if baseURL == "" {
		baseURL = defaultOracleURL
	}
	return &HTTPClient{
		Predicate: Cosine,
		endpoint:  strings.TrimSuffix(baseURL, "/") + embedFacePath,
		http:      &http.Client{Timeout: oracleTimeout},
	}
}

// FaceDetection is one face reported by the embedding server.
type FaceDetection struct {
	FaceIndex int       `json:"face_index"`
	Dim       int       `json:"dim"`
	Embedding []float64 `json:"embedding"`
	BBox      []float64 `json:"bbox"` // [x1, y1, x2, y2]
	DetScore  float64   `json:"det_score"`
}

// FaceResponse is the body of a successful /embed/face call.
type FaceResponse struct {
	FacesCount int             `json:"faces_count"`
	Faces      []FaceDetection `json:"faces"`
	Model      string          `json:"model"`
}

// imageForm wraps JPEG bytes in a multipart body with a single "file" part.
func imageForm(jpegData []byte) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="face.jpg"`)
	header.Set("Content-Type", "image/jpeg")

	part, err := form.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("creating form part: %w", err)
	}
	if _, err := part.Write(jpegData); err != nil {
		return nil, "", fmt.Errorf("writing image part: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, "", fmt.Errorf("closing form: %w", err)
	}
	return body, form.FormDataContentType(), nil
}

// Embed uploads a JPEG and returns the server's detections as-is.
func (c *HTTPClient) Embed(ctx context.Context, jpegData []byte) (*FaceResponse, error) {
	body, contentType, err := imageForm(jpegData)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("building oracle request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling oracle: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("oracle returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out FaceResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding oracle response: %w", err)
	}
	return &out, nil
}

// DetectEmbeddings implements Oracle. Faces come back in the server's detection order.
func (c *HTTPClient) DetectEmbeddings(ctx context.Context, img image.Image) ([][]float64, error) {
	if img == nil {
		return nil, errors.New("nil image")
	}
	data, err := imaging.EncodeJPEG(imaging.FitWithin(img, imaging.MaxImageSize))
	if err != nil {
		return nil, err
	}

	resp, err := c.Embed(ctx, data)
	if err != nil {
		return nil, err
	}

	embeddings := make([][]float64, 0, len(resp.Faces))
	for _, face := range resp.Faces {
		if len(face.Embedding) == 0 {
			return nil, fmt.Errorf("oracle returned an empty embedding for face %d", face.FaceIndex)
		}
		embeddings = append(embeddings, face.Embedding)
	}
	return embeddings, nil
}
