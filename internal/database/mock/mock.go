// Package mock provides an in-memory CandidateStore for testing.
package mock

import (
	"context"
	"slices"
	"sync"

	"github.com/kozaktomas/face-verifier/internal/database"
)

// MockCandidateStore is a mock implementation of database.CandidateStore
type MockCandidateStore struct {
	mu         sync.RWMutex
	candidates []database.Candidate
	nextID     int64
	closed     bool

	// Error injection
	ListError   error
	GetError    error
	CountError  error
	CreateError error
	DeleteError error
}

var _ database.CandidateStore = (*MockCandidateStore)(nil)

// NewMockCandidateStore creates an empty mock store
func NewMockCandidateStore() *MockCandidateStore {
	return &MockCandidateStore{nextID: 1}
}

// AddCandidate stores a candidate without duplicate checks, assigning an id when zero
func (m *MockCandidateStore) AddCandidate(c database.Candidate) database.Candidate {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == 0 {
		c.ID = m.nextID
	}
	if c.ID >= m.nextID {
		m.nextID = c.ID + 1
	}
	c.Embedding = slices.Clone(c.Embedding)
	m.candidates = append(m.candidates, c)
	return c
}

// ListCandidates returns every candidate in insertion order
func (m *MockCandidateStore) ListCandidates(ctx context.Context) ([]database.Candidate, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]database.Candidate, len(m.candidates))
	for i, c := range m.candidates {
		c.Embedding = slices.Clone(c.Embedding)
		out[i] = c
	}
	return out, nil
}

// GetCandidateByEmail returns nil when no candidate has the email
func (m *MockCandidateStore) GetCandidateByEmail(ctx context.Context, email string) (*database.Candidate, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, c := range m.candidates {
		if c.Email == email {
			c.Embedding = slices.Clone(c.Embedding)
			return &c, nil
		}
	}
	return nil, nil
}

// CountCandidates returns the number of stored candidates
func (m *MockCandidateStore) CountCandidates(ctx context.Context) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.candidates), nil
}

// CreateCandidate stores a candidate, rejecting a repeated email
func (m *MockCandidateStore) CreateCandidate(ctx context.Context, name, email string, embedding []float64) (*database.Candidate, error) {
	if m.CreateError != nil {
		return nil, m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.candidates {
		if c.Email == email {
			return nil, database.ErrDuplicateEmail
		}
	}
	c := database.Candidate{ID: m.nextID, Name: name, Email: email, Embedding: slices.Clone(embedding)}
	m.nextID++
	m.candidates = append(m.candidates, c)
	return &database.Candidate{ID: c.ID, Name: name, Email: email, Embedding: embedding}, nil
}

// DeleteCandidate removes the candidate with the given email
func (m *MockCandidateStore) DeleteCandidate(ctx context.Context, email string) (bool, error) {
	if m.DeleteError != nil {
		return false, m.DeleteError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.candidates {
		if c.Email == email {
			m.candidates = slices.Delete(m.candidates, i, i+1)
			return true, nil
		}
	}
	return false, nil
}

// Close marks the store closed
func (m *MockCandidateStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called
func (m *MockCandidateStore) Closed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.closed
}
