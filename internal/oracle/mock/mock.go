// Package mock provides a scripted oracle for testing.
package mock

import (
	"context"
	"image"
	"image/color"
	"sync"

	"github.com/kozaktomas/face-verifier/internal/oracle"
)

// MockOracle returns embeddings keyed by the colour of an image's top-left pixel,
// so tests can create "faces" by painting a pixel. Embeddings are compared with the
// embedded Predicate, Euclidean unless a test swaps it.
type MockOracle struct {
	oracle.Predicate

	mu    sync.RWMutex
	faces map[color.RGBA][][]float64
	calls int

	// Error injection
	DetectError error
}

var _ oracle.Oracle = (*MockOracle)(nil)

// NewMockOracle creates an oracle that detects no faces until some are added.
func NewMockOracle() *MockOracle {
	return NewMockOracleWith(oracle.Euclidean)
}

// NewMockOracleWith creates a mock oracle that matches with the given predicate.
func NewMockOracleWith(p oracle.Predicate) *MockOracle {
	return &MockOracle{Predicate: p, faces: make(map[color.RGBA][][]float64)}
}

// AddFaces registers the embeddings returned for images whose top-left pixel is key.
func (m *MockOracle) AddFaces(key color.RGBA, embeddings ...[]float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.faces[key] = embeddings
}

// DetectEmbeddings implements oracle.Oracle.
func (m *MockOracle) DetectEmbeddings(ctx context.Context, img image.Image) ([][]float64, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.DetectError != nil {
		return nil, m.DetectError
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b := img.Bounds()
	if b.Empty() {
		return nil, nil
	}
	key := color.RGBAModel.Convert(img.At(b.Min.X, b.Min.Y)).(color.RGBA)

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.faces[key], nil
}

// Calls returns how many times DetectEmbeddings was invoked.
func (m *MockOracle) Calls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}

// FaceImage returns a small image whose top-left pixel is key.
func FaceImage(key color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.SetRGBA(0, 0, key)
	return img
}
