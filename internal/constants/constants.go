// Package constants provides shared constants used across the codebase.
package constants

import "time"

// File upload constants
const (
	// MaxUploadSize is the maximum request body size in bytes (100MB)
	MaxUploadSize = 100 << 20
)

// Processing constants
const (
	// DefaultConcurrency is the default number of parallel registrations during import
	DefaultConcurrency = 4

	// MaxImageSize is the maximum dimension (width or height) sent to the oracle
	MaxImageSize = 1920
)

// Server constants
const (
	// RequestTimeout bounds a single API request, oracle call included
	RequestTimeout = 2 * time.Minute

	// ShutdownTimeout is how long serve waits for in-flight requests on SIGINT/SIGTERM
	ShutdownTimeout = 30 * time.Second
)
