package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 2.0, Mean([]float64{1, 2, 3}))
}

func TestVarianceAndStdDev(t *testing.T) {
	assert.Equal(t, 0.0, Variance(nil))
	assert.Equal(t, 0.0, Variance([]float64{4, 4, 4}))
	assert.InDelta(t, 1.0, Variance([]float64{1, 3}), 1e-9)
	assert.InDelta(t, 1.0, StdDev([]float64{1, 3}), 1e-9)
}

func TestConfidenceInterval95(t *testing.T) {
	lo, hi := ConfidenceInterval95([]float64{5})
	assert.Equal(t, 5.0, lo)
	assert.Equal(t, 5.0, hi)

	lo, hi = ConfidenceInterval95([]float64{1, 2, 3, 4, 5})
	assert.Less(t, lo, 3.0)
	assert.Greater(t, hi, 3.0)
}

func TestIsFlaky(t *testing.T) {
	assert.False(t, IsFlaky(0))
	assert.False(t, IsFlaky(1))
	assert.True(t, IsFlaky(0.5))
}
