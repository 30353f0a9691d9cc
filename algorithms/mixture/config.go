package mixture

// DistanceMetric selects how Cluster scores a feature against a component
type DistanceMetric int

const (
	// DeterminantScaled scores (x-mean)ᵀ·det(Σ)·(x-mean). det(Σ) is a scalar,
	// so this is a squared Euclidean distance scaled per component.
	DeterminantScaled DistanceMetric = iota
	// Mahalanobis scores (x-mean)ᵀ·Σ⁻¹·(x-mean)
	Mahalanobis
)

func (m DistanceMetric) String() string {
	switch m {
	case DeterminantScaled:
		return "determinant_scaled"
	case Mahalanobis:
		return "mahalanobis"
	default:
		return "unknown"
	}
}

// Config contains the estimator settings that are fixed at construction
type Config struct {
	// Convergence threshold on the absolute change in log-likelihood
	Epsilon float64 `json:"epsilon"`

	// Upper bound on EM iterations. Zero means no bound.
	MaxIterations int `json:"max_iterations"`

	Distance DistanceMetric `json:"distance"`

	// Use the feature dimension instead of the component count as the
	// exponent of 2π in the density normalizer
	NormalizeByDimension bool `json:"normalize_by_dimension"`
}

// DefaultConfig returns the settings NewEstimator uses
func DefaultConfig() Config {
	return Config{
		Epsilon:              1e-6,
		MaxIterations:        0,
		Distance:             DeterminantScaled,
		NormalizeByDimension: false,
	}
}
