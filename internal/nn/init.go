package nn

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Uniform creates a rows×cols matrix with values drawn uniformly from [low, high).
//
// Draws come from rng in row-major order, so a seeded rng gives identical
// matrices across runs. A nil rng uses the package-level math/rand source.
func Uniform(rows, cols int, low, high float64, rng *rand.Rand) *mat.Dense {
	next := rand.Float64 //nolint:gosec // weight initialization is not security-critical
	if rng != nil {
		next = rng.Float64
	}

	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = low + next()*(high-low)
	}
	return mat.NewDense(rows, cols, data)
}

// Zeros creates a rows×cols matrix filled with zeros.
func Zeros(rows, cols int) *mat.Dense {
	return mat.NewDense(rows, cols, nil)
}

// Identity creates an n×n identity matrix.
func Identity(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}
