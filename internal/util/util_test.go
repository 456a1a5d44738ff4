package util

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity(t *testing.T) {
	s, err := CosineSimilarity([]float32{1, 0}, []float32{1, 0})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, s, 1e-9)

	s, err = CosineSimilarity([]float32{1, 0}, []float32{0, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, s, 1e-9)

	s, err = CosineSimilarity([]float32{1, 1}, []float32{1, 0})
	require.NoError(t, err)
	assert.InDelta(t, 1/math.Sqrt2, s, 1e-6)

	s, err = CosineSimilarity([]float32{0, 0}, []float32{1, 0})
	require.NoError(t, err)
	assert.Zero(t, s)

	_, err = CosineSimilarity(nil, []float32{1})
	assert.Error(t, err)
	_, err = CosineSimilarity([]float32{1, 2}, []float32{1})
	assert.Error(t, err)
}

func TestTopKBySimilarity(t *testing.T) {
	query := []float32{1, 0}
	candidates := [][]float32{{0, 1}, {1, 0.1}, {1, 1}, {1, 0}}

	idx, err := TopKBySimilarity(query, candidates, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1}, idx)

	idx, err = TopKBySimilarity(query, candidates, 10)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1, 2, 0}, idx)

	_, err = TopKBySimilarity(query, [][]float32{{1, 2, 3}}, 1)
	assert.Error(t, err)
}

func TestNewULID(t *testing.T) {
	a, b := NewULID(), NewULID()
	assert.Len(t, a, 26)
	assert.NotEqual(t, a, b)
	assert.True(t, IsValidULID(a))
	assert.False(t, IsValidULID("not-a-ulid"))
	assert.False(t, IsValidULID(""))
}
