package mixture

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// gaussian is a single component prepared for repeated evaluation.
// It holds scratch vectors and must not be shared between goroutines.
type gaussian struct {
	mean *mat.VecDense
	chol mat.Cholesky
	det  float64
	norm float64

	diff   *mat.VecDense
	solved *mat.VecDense
}

// newGaussian factorizes cov once. The density normalizer is
// sqrt(det(Σ)·(2π)^exponent).
func newGaussian(mean *mat.VecDense, cov mat.Symmetric, exponent int) (*gaussian, error) {
	g := &gaussian{mean: mean}
	if ok := g.chol.Factorize(cov); !ok {
		return nil, ErrSingularCovariance
	}

	g.det = g.chol.Det()
	if g.det <= 0 || math.IsNaN(g.det) || math.IsInf(g.det, 0) {
		return nil, fmt.Errorf("%w: determinant %v", ErrSingularCovariance, g.det)
	}
	g.norm = math.Sqrt(g.det * math.Pow(2*math.Pi, float64(exponent)))

	d := mean.Len()
	g.diff = mat.NewVecDense(d, nil)
	g.solved = mat.NewVecDense(d, nil)
	return g, nil
}

// mahalanobis returns (x-mean)ᵀ·Σ⁻¹·(x-mean)
func (g *gaussian) mahalanobis(x mat.Vector) (float64, error) {
	g.diff.SubVec(x, g.mean)
	if err := g.chol.SolveVecTo(g.solved, g.diff); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSingularCovariance, err)
	}
	return mat.Dot(g.diff, g.solved), nil
}

func (g *gaussian) pdf(x mat.Vector) (float64, error) {
	q, err := g.mahalanobis(x)
	if err != nil {
		return 0, err
	}
	return math.Exp(-0.5*q) / g.norm, nil
}

// Density returns the multivariate normal density of x under (mean, covariance).
// The normalizer raises 2π to the power components, the component count of
// the enclosing mixture, not to the dimension of x.
func Density(x, mean []float64, covariance [][]float64, components int) (float64, error) {
	if components < 1 {
		return 0, ErrEmptyModel
	}
	d := len(mean)
	if d == 0 || len(x) != d {
		return 0, fmt.Errorf("%w: feature has %d values, mean has %d", ErrShapeMismatch, len(x), d)
	}

	cov, err := symmetricFromRows(covariance, d)
	if err != nil {
		return 0, err
	}

	g, err := newGaussian(mat.NewVecDense(d, copyVector(mean)), cov, components)
	if err != nil {
		return 0, err
	}
	return g.pdf(mat.NewVecDense(d, copyVector(x)))
}
