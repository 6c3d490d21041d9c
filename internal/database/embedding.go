package database

import (
	"encoding/binary"
	"fmt"
	"math"
)

// embeddingValueSize is the byte width of one float64 component.
const embeddingValueSize = 8

// EncodeEmbedding serializes an embedding as raw float64 values in native byte order.
func EncodeEmbedding(embedding []float64) []byte {
	buf := make([]byte, len(embedding)*embeddingValueSize)
	for i, v := range embedding {
		binary.NativeEndian.PutUint64(buf[i*embeddingValueSize:], math.Float64bits(v))
	}
	return buf
}

// DecodeEmbedding is the inverse of EncodeEmbedding.
func DecodeEmbedding(data []byte) ([]float64, error) {
	if len(data)%embeddingValueSize != 0 {
		return nil, fmt.Errorf("corrupt embedding: %d bytes is not a multiple of %d", len(data), embeddingValueSize)
	}
	embedding := make([]float64, len(data)/embeddingValueSize)
	for i := range embedding {
		embedding[i] = math.Float64frombits(binary.NativeEndian.Uint64(data[i*embeddingValueSize:]))
	}
	return embedding, nil
}
