//go:build !dlib

package dlib

import (
	"context"
	"errors"
	"image"

	"github.com/kozaktomas/face-verifier/internal/oracle"
)

// ErrNotBuilt is returned when the binary was built without -tags dlib.
var ErrNotBuilt = errors.New("dlib oracle not available: rebuild with -tags dlib")

// Oracle is a placeholder so callers compile without dlib installed.
type Oracle struct {
	oracle.Predicate
}

// New always fails in builds without dlib.
func New(modelsDir string) (*Oracle, error) {
	return nil, ErrNotBuilt
}

// DetectEmbeddings implements oracle.Oracle.
func (o *Oracle) DetectEmbeddings(ctx context.Context, img image.Image) ([][]float64, error) {
	return nil, ErrNotBuilt
}

// Close is a no-op.
func (o *Oracle) Close() {}
