// Package oracle defines the face detection and embedding capability the flows depend on.
// Each oracle carries the match predicate for the embeddings it produces, since the
// distance metric and threshold depend on the model.
package oracle

import (
	"context"
	"image"
	"math"
)

// Fixed match thresholds. They are properties of the models and are not configurable.
const (
	// EuclideanTolerance is the dlib/face_recognition cutoff for 128-d descriptors.
	EuclideanTolerance = 0.6
	// CosineTolerance is the cutoff for unit-length InsightFace (buffalo_l) vectors.
	CosineTolerance = 0.5
)

// Metric names reported by Predicate.Metric.
const (
	MetricEuclidean = "euclidean"
	MetricCosine    = "cosine"
)

// Matcher decides whether two embeddings belong to the same person.
type Matcher interface {
	Distance(known, query []float64) float64
	Match(known, query []float64) bool
	Tolerance() float64
	Metric() string
}

// Oracle detects faces in an image and returns one embedding per face, in detection order,
// together with the predicate that compares those embeddings.
type Oracle interface {
	DetectEmbeddings(ctx context.Context, img image.Image) ([][]float64, error)
	Matcher
}

// Predicate is a distance function with a fixed threshold. Oracles embed it to satisfy Matcher.
type Predicate struct {
	metric    string
	distance  func(a, b []float64) float64
	tolerance float64
}

var (
	// Euclidean matches dlib descriptors.
	Euclidean = Predicate{metric: MetricEuclidean, distance: EuclideanDistance, tolerance: EuclideanTolerance}
	// Cosine matches InsightFace embeddings.
	Cosine = Predicate{metric: MetricCosine, distance: CosineDistance, tolerance: CosineTolerance}
)

// Distance returns the predicate's distance between two embeddings.
func (p Predicate) Distance(known, query []float64) float64 {
	return p.distance(known, query)
}

// Match reports whether query is the same face as known. Embeddings of different
// length never match.
func (p Predicate) Match(known, query []float64) bool {
	if len(known) != len(query) || len(known) == 0 {
		return false
	}
	return p.distance(known, query) <= p.tolerance
}

// Tolerance returns the maximum distance considered a match.
func (p Predicate) Tolerance() float64 {
	return p.tolerance
}

// Metric names the distance function.
func (p Predicate) Metric() string {
	return p.metric
}

// EuclideanDistance returns the Euclidean distance between two embeddings.
// Embeddings of different length are infinitely far apart.
func EuclideanDistance(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1)
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// CosineDistance returns 1 - cosine similarity, between 0 (identical) and 2 (opposite).
// Invalid input (length mismatch, empty or zero vectors) gets the maximum distance.
func CosineDistance(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 2.0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 2.0
	}

	similarity := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// clamp floating point drift
	similarity = max(-1, min(1, similarity))
	return 1 - similarity
}
