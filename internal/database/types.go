package database

import "errors"

// ErrDuplicateEmail is returned when a candidate with the same email is already stored.
var ErrDuplicateEmail = errors.New("candidate with this email already exists")

// Candidate is a registered identity.
type Candidate struct {
	ID        int64
	Name      string
	Email     string
	Embedding []float64
}

// Dim returns the dimensionality of the stored embedding.
func (c *Candidate) Dim() int {
	return len(c.Embedding)
}
