// Package facematch implements the registration, verification and comparison flows
// shared between the CLI and the web handlers.
package facematch

import (
	"errors"

	"github.com/kozaktomas/face-verifier/internal/database"
	"github.com/kozaktomas/face-verifier/internal/imaging"
)

var (
	// ErrNoFaceDetected is returned when the oracle finds no face in an image.
	ErrNoFaceDetected = errors.New("no face detected in the image")
	// ErrNotFound is returned when no registered candidate matches.
	ErrNotFound = errors.New("candidate not found")
	// ErrInvalidInput is returned for missing or malformed registration fields.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidImage is re-exported so callers only need this package.
	ErrInvalidImage = imaging.ErrInvalidImage
	// ErrDuplicateEmail is re-exported so callers only need this package.
	ErrDuplicateEmail = database.ErrDuplicateEmail
)

// Image roles in a comparison.
const (
	ImageReference = "reference"
	ImageProbe     = "probe"
)

// ImageError ties a comparison failure to the image it concerns.
type ImageError struct {
	Image string
	Err   error
}

func (e *ImageError) Error() string {
	return e.Image + " image: " + e.Err.Error()
}

func (e *ImageError) Unwrap() error {
	return e.Err
}
