package database

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeEmbedding_Length(t *testing.T) {
	embedding := make([]float64, 128)
	assert.Len(t, EncodeEmbedding(embedding), 128*8)
	assert.Empty(t, EncodeEmbedding(nil))
}

func TestEmbeddingRoundTrip(t *testing.T) {
	embedding := []float64{0, -0.125, 1e-300, math.MaxFloat64, -3.5, math.SmallestNonzeroFloat64}

	decoded, err := DecodeEmbedding(EncodeEmbedding(embedding))
	require.NoError(t, err)
	assert.Equal(t, embedding, decoded)
}

func TestDecodeEmbedding_Corrupt(t *testing.T) {
	_, err := DecodeEmbedding(make([]byte, 13))
	assert.Error(t, err)
}

func TestDecodeEmbedding_Empty(t *testing.T) {
	decoded, err := DecodeEmbedding(nil)
	require.NoError(t, err)
	assert.Empty(t, decoded)
}
