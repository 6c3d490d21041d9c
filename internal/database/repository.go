package database

import (
	"context"
)

// CandidateReader provides read-only access to registered candidates
type CandidateReader interface {
	// ListCandidates returns every candidate in insertion (id) order
	ListCandidates(ctx context.Context) ([]Candidate, error)
	// GetCandidateByEmail returns the candidate with the given email, or nil if none exists
	GetCandidateByEmail(ctx context.Context, email string) (*Candidate, error)
	// CountCandidates returns the number of stored candidates
	CountCandidates(ctx context.Context) (int, error)
}

// CandidateWriter provides write access to candidates
type CandidateWriter interface {
	CandidateReader

	// CreateCandidate stores a new candidate and returns it with its assigned id.
	// Returns ErrDuplicateEmail if the email is already registered.
	CreateCandidate(ctx context.Context, name, email string, embedding []float64) (*Candidate, error)

	// DeleteCandidate removes the candidate with the given email.
	// Reports whether a candidate was removed.
	DeleteCandidate(ctx context.Context, email string) (bool, error)
}

// CandidateStore is a CandidateWriter that owns its connection pool.
type CandidateStore interface {
	CandidateWriter
	Close() error
}
