package mixture

import "errors"

var (
	ErrEmptyModel           = errors.New("mixture: model has no components")
	ErrEmptySet             = errors.New("mixture: empty feature set")
	ErrShapeMismatch        = errors.New("mixture: shape mismatch")
	ErrInvalidWeights       = errors.New("mixture: mixing weights must be non-negative and sum to 1")
	ErrAsymmetricCovariance = errors.New("mixture: covariance matrix is not symmetric")
	ErrInvalidEpsilon       = errors.New("mixture: epsilon must be positive")
	ErrSingularCovariance   = errors.New("mixture: covariance matrix is singular or not positive definite")
	ErrZeroDensity          = errors.New("mixture: feature has zero density under every component")
	ErrCollapsedComponent   = errors.New("mixture: component has zero effective count")
	ErrNumerical            = errors.New("mixture: non-finite value")
	ErrNotConverged         = errors.New("mixture: iteration limit reached before convergence")
)
