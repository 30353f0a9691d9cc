package common

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// Feature matrices are row-major: one row per observation, one column per feature.

var (
	ErrEmptyFeatures  = errors.New("common: empty feature matrix")
	ErrRaggedFeatures = errors.New("common: feature rows have different lengths")
)

// Dims returns the number of rows and columns of a feature matrix
func Dims(features [][]float64) (n, d int, err error) {
	if len(features) == 0 || len(features[0]) == 0 {
		return 0, 0, ErrEmptyFeatures
	}

	d = len(features[0])
	for i, row := range features {
		if len(row) != d {
			return 0, 0, fmt.Errorf("%w: row %d has %d values, want %d", ErrRaggedFeatures, i, len(row), d)
		}
	}
	return len(features), d, nil
}

// Column copies column j of features into a new slice
func Column(features [][]float64, j int) []float64 {
	col := make([]float64, len(features))
	for i, row := range features {
		col[i] = row[j]
	}
	return col
}

// Standardize returns a copy of features with every column shifted to zero
// mean and scaled to unit sample standard deviation. Constant columns are
// only centered.
func Standardize(features [][]float64) ([][]float64, error) {
	n, d, err := Dims(features)
	if err != nil {
		return nil, err
	}

	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, d)
	}

	for j := 0; j < d; j++ {
		mean, std := stat.MeanStdDev(Column(features, j), nil)
		if std < 1e-10 || n < 2 {
			std = 1
		}
		for i, row := range features {
			out[i][j] = (row[j] - mean) / std
		}
	}

	return out, nil
}
