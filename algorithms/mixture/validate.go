package mixture

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
)

const (
	symmetryTolerance = 1e-9
	weightTolerance   = 1e-6
)

func copyVector(v []float64) []float64 {
	c := make([]float64, len(v))
	copy(c, v)
	return c
}

// symmetricFromRows copies a d×d row-major matrix into a SymDense.
// The upper triangle is kept once the lower triangle is checked against it.
func symmetricFromRows(rows [][]float64, d int) (*mat.SymDense, error) {
	if len(rows) != d {
		return nil, fmt.Errorf("%w: covariance has %d rows, want %d", ErrShapeMismatch, len(rows), d)
	}
	for r, row := range rows {
		if len(row) != d {
			return nil, fmt.Errorf("%w: covariance row %d has %d columns, want %d", ErrShapeMismatch, r, len(row), d)
		}
	}

	sym := mat.NewSymDense(d, nil)
	for r := 0; r < d; r++ {
		for c := r; c < d; c++ {
			upper, lower := rows[r][c], rows[c][r]
			if !scalar.EqualWithinAbsOrRel(upper, lower, symmetryTolerance, symmetryTolerance) {
				return nil, fmt.Errorf("%w: entries (%d,%d)=%v and (%d,%d)=%v", ErrAsymmetricCovariance, r, c, upper, c, r, lower)
			}
			sym.SetSym(r, c, upper)
		}
	}
	return sym, nil
}

func rowsFromSymmetric(s mat.Symmetric) [][]float64 {
	d := s.SymmetricDim()
	rows := make([][]float64, d)
	for r := 0; r < d; r++ {
		rows[r] = make([]float64, d)
		for c := 0; c < d; c++ {
			rows[r][c] = s.At(r, c)
		}
	}
	return rows
}

func validateWeights(weights []float64) error {
	for j, w := range weights {
		if w < 0 || w > 1 || math.IsNaN(w) {
			return fmt.Errorf("%w: weight %d is %v", ErrInvalidWeights, j, w)
		}
	}
	if sum := floats.Sum(weights); !scalar.EqualWithinAbs(sum, 1, weightTolerance) {
		return fmt.Errorf("%w: weights sum to %v", ErrInvalidWeights, sum)
	}
	return nil
}

func validateConfig(config Config) error {
	if !(config.Epsilon > 0) {
		return fmt.Errorf("%w: got %v", ErrInvalidEpsilon, config.Epsilon)
	}
	if config.MaxIterations < 0 {
		return fmt.Errorf("mixture: max iterations cannot be negative, got %d", config.MaxIterations)
	}
	switch config.Distance {
	case DeterminantScaled, Mahalanobis:
	default:
		return fmt.Errorf("mixture: unsupported distance metric %d", int(config.Distance))
	}
	return nil
}

// featureVectors checks that every row has dimension d and wraps the rows
// without copying. The vectors are only read.
func featureVectors(features [][]float64, d int) ([]*mat.VecDense, error) {
	if len(features) == 0 {
		return nil, ErrEmptySet
	}
	x := make([]*mat.VecDense, len(features))
	for i, row := range features {
		if len(row) != d {
			return nil, fmt.Errorf("%w: feature %d has %d values, want %d", ErrShapeMismatch, i, len(row), d)
		}
		x[i] = mat.NewVecDense(d, row)
	}
	return x, nil
}
