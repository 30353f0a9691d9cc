package mixture

import (
	"fmt"
	"math"

	"github.com/RyanBlaney/sonido-mixture/logging"
	"gonum.org/v1/gonum/mat"
)

// Cluster assigns every feature to the component with the smallest distance
// under the configured metric. Ties go to the lowest component index.
// The parameters are not modified; features may differ from those given to Fit.
func (e *Estimator) Cluster(features [][]float64) ([]int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	x, err := featureVectors(features, e.dim)
	if err != nil {
		return nil, err
	}

	distance, err := e.distanceFunc()
	if err != nil {
		return nil, err
	}

	partition := make([]int, len(x))
	for i, xi := range x {
		best, bestDistance := 0, math.Inf(1)
		for j := range e.means {
			d, err := distance(j, xi)
			if err != nil {
				return nil, fmt.Errorf("feature %d, component %d: %w", i, j, err)
			}
			if math.IsNaN(d) || math.IsInf(d, 0) {
				return nil, fmt.Errorf("feature %d, component %d: %w: distance %v", i, j, ErrNumerical, d)
			}
			if d < bestDistance {
				best, bestDistance = j, d
			}
		}
		partition[i] = best
	}

	e.logger.Debug("Clustered features", logging.Fields{
		"function": "Cluster",
		"features": len(x),
		"distance": e.config.Distance.String(),
	})

	return partition, nil
}

func (e *Estimator) distanceFunc() (func(j int, x mat.Vector) (float64, error), error) {
	switch e.config.Distance {
	case Mahalanobis:
		components, err := e.gaussians()
		if err != nil {
			return nil, err
		}
		return func(j int, x mat.Vector) (float64, error) {
			return components[j].mahalanobis(x)
		}, nil

	default:
		dets := make([]float64, len(e.covariances))
		for j, c := range e.covariances {
			det := mat.Det(c)
			if !(det > 0) {
				return nil, fmt.Errorf("component %d: %w: determinant %v", j, ErrSingularCovariance, det)
			}
			dets[j] = det
		}
		diff := mat.NewVecDense(e.dim, nil)
		return func(j int, x mat.Vector) (float64, error) {
			diff.SubVec(x, e.means[j])
			return dets[j] * mat.Dot(diff, diff), nil
		}, nil
	}
}
