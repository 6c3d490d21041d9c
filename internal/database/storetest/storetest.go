// Package storetest holds behavioural tests shared by every CandidateStore implementation.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/kozaktomas/face-verifier/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty store; it is called once per subtest.
type Factory func(t *testing.T) database.CandidateStore

func embedding(seed float64, dim int) []float64 {
	v := make([]float64, dim)
	for i := range v {
		v[i] = seed + float64(i)/1000
	}
	return v
}

// Run exercises the CandidateStore contract.
func Run(t *testing.T, newStore Factory) {
	t.Run("EmptyStore", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		candidates, err := store.ListCandidates(ctx)
		require.NoError(t, err)
		assert.Empty(t, candidates)

		count, err := store.CountCandidates(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, count)

		got, err := store.GetCandidateByEmail(ctx, "nobody@example.com")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("CreateAndGet", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		emb := embedding(0.25, 128)

		created, err := store.CreateCandidate(ctx, "Alice", "alice@x.com", emb)
		require.NoError(t, err)
		assert.Positive(t, created.ID)
		assert.Equal(t, "Alice", created.Name)

		got, err := store.GetCandidateByEmail(ctx, "alice@x.com")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, "Alice", got.Name)
		assert.Equal(t, "alice@x.com", got.Email)
		assert.Equal(t, emb, got.Embedding, "embedding must round-trip exactly")
		assert.Equal(t, 128, got.Dim())
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		_, err := store.CreateCandidate(ctx, "Alice", "alice@x.com", embedding(0.1, 8))
		require.NoError(t, err)

		_, err = store.CreateCandidate(ctx, "Alice Again", "alice@x.com", embedding(0.9, 8))
		require.Error(t, err)
		assert.True(t, errors.Is(err, database.ErrDuplicateEmail), "expected ErrDuplicateEmail, got %v", err)

		count, err := store.CountCandidates(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		got, err := store.GetCandidateByEmail(ctx, "alice@x.com")
		require.NoError(t, err)
		assert.Equal(t, "Alice", got.Name, "the first registration wins")
	})

	t.Run("ListInInsertionOrder", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		emails := []string{"c@x.com", "a@x.com", "b@x.com"}
		for i, email := range emails {
			_, err := store.CreateCandidate(ctx, email, email, embedding(float64(i), 4))
			require.NoError(t, err)
		}

		candidates, err := store.ListCandidates(ctx)
		require.NoError(t, err)
		require.Len(t, candidates, 3)
		for i, c := range candidates {
			assert.Equal(t, emails[i], c.Email)
			if i > 0 {
				assert.Greater(t, c.ID, candidates[i-1].ID)
			}
		}
	})

	t.Run("SameFaceDifferentEmails", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		emb := embedding(0.5, 16)

		_, err := store.CreateCandidate(ctx, "Twin A", "a@x.com", emb)
		require.NoError(t, err)
		_, err = store.CreateCandidate(ctx, "Twin B", "b@x.com", emb)
		require.NoError(t, err)

		count, err := store.CountCandidates(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("Delete", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		_, err := store.CreateCandidate(ctx, "Alice", "alice@x.com", embedding(0.1, 4))
		require.NoError(t, err)

		deleted, err := store.DeleteCandidate(ctx, "alice@x.com")
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = store.DeleteCandidate(ctx, "alice@x.com")
		require.NoError(t, err)
		assert.False(t, deleted)

		got, err := store.GetCandidateByEmail(ctx, "alice@x.com")
		require.NoError(t, err)
		assert.Nil(t, got)

		// email is free again
		_, err = store.CreateCandidate(ctx, "Alice", "alice@x.com", embedding(0.2, 4))
		require.NoError(t, err)
	})

	t.Run("ConcurrentDuplicateRegistration", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()

		const workers = 8
		var wg sync.WaitGroup
		errs := make([]error, workers)
		for i := range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, errs[i] = store.CreateCandidate(ctx, "Racer", "race@x.com", embedding(float64(i), 4))
			}()
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			assert.True(t, errors.Is(err, database.ErrDuplicateEmail), "unexpected error %v", err)
		}
		assert.Equal(t, 1, succeeded)

		count, err := store.CountCandidates(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}
