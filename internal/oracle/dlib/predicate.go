package dlib

import "github.com/kozaktomas/face-verifier/internal/oracle"

// predicate compares dlib's 128-d descriptors.
var predicate = oracle.Euclidean

var _ oracle.Oracle = (*Oracle)(nil)
