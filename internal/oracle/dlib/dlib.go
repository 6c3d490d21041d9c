//go:build dlib

// Package dlib runs face detection and embedding in process with dlib via go-face.
// It needs the dlib models (shape_predictor_5_face_landmarks.dat,
// dlib_face_recognition_resnet_model_v1.dat, mmod_human_face_detector.dat)
// and is only built with -tags dlib.
package dlib

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/Kagami/go-face"
	"github.com/kozaktomas/face-verifier/internal/imaging"
	"github.com/kozaktomas/face-verifier/internal/oracle"
)

// Oracle wraps a go-face recognizer.
type Oracle struct {
	oracle.Predicate

	mu  sync.Mutex
	rec *face.Recognizer
}

// New loads the dlib models from modelsDir.
func New(modelsDir string) (*Oracle, error) {
	rec, err := face.NewRecognizer(modelsDir)
	if err != nil {
		return nil, fmt.Errorf("loading dlib models from %s: %w", modelsDir, err)
	}
	return &Oracle{Predicate: predicate, rec: rec}, nil
}

// DetectEmbeddings implements oracle.Oracle.
func (o *Oracle) DetectEmbeddings(ctx context.Context, img image.Image) ([][]float64, error) {
	data, err := imaging.EncodeJPEG(imaging.FitWithin(img, imaging.MaxImageSize))
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// the recognizer is not safe for concurrent use
	o.mu.Lock()
	faces, err := o.rec.Recognize(data)
	o.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("recognizing faces: %w", err)
	}

	embeddings := make([][]float64, len(faces))
	for i, f := range faces {
		vec := make([]float64, len(f.Descriptor))
		for j, v := range f.Descriptor {
			vec[j] = float64(v)
		}
		embeddings[i] = vec
	}
	return embeddings, nil
}

// Close frees the native recognizer.
func (o *Oracle) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.rec.Close()
}
