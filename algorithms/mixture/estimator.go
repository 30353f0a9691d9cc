package mixture

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/RyanBlaney/sonido-mixture/logging"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Estimator fits a Gaussian mixture with Expectation-Maximization and
// assigns features to components.
//
// The estimator owns deep copies of the initial parameters it was built
// from. Fit refines them in place and later calls resume from the current
// state. Fit takes the write lock; Cluster and the accessors take the read lock.
//
// Reference: Bishop, C. M. (2006). "Pattern Recognition and Machine Learning", ch. 9
type Estimator struct {
	config Config
	logger logging.Logger
	dim    int

	mu          sync.RWMutex
	means       []*mat.VecDense
	covariances []*mat.SymDense
	weights     []float64

	iterations    int
	logLikelihood float64
	converged     bool
}

// NewEstimator creates an estimator from initial parameters with DefaultConfig
func NewEstimator(means [][]float64, covariances [][][]float64, weights []float64) (*Estimator, error) {
	return NewEstimatorWithConfig(means, covariances, weights, DefaultConfig())
}

// NewEstimatorWithConfig creates an estimator from initial parameters.
// means, covariances and weights must all have K entries; every mean has D
// values and every covariance is a symmetric D×D matrix.
func NewEstimatorWithConfig(means [][]float64, covariances [][][]float64, weights []float64, config Config) (*Estimator, error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	k := len(covariances)
	if k == 0 {
		return nil, ErrEmptyModel
	}
	if len(means) != k || len(weights) != k {
		return nil, fmt.Errorf("%w: %d means, %d covariances, %d weights", ErrShapeMismatch, len(means), k, len(weights))
	}

	d := len(means[0])
	if d == 0 {
		return nil, fmt.Errorf("%w: means have zero dimension", ErrShapeMismatch)
	}

	e := &Estimator{
		config:        config,
		dim:           d,
		means:         make([]*mat.VecDense, k),
		covariances:   make([]*mat.SymDense, k),
		weights:       copyVector(weights),
		logLikelihood: math.NaN(),
		logger: logging.WithFields(logging.Fields{
			"component":  "gmm_estimator",
			"components": k,
			"dimension":  d,
		}),
	}

	for j := 0; j < k; j++ {
		if len(means[j]) != d {
			return nil, fmt.Errorf("%w: mean %d has %d values, want %d", ErrShapeMismatch, j, len(means[j]), d)
		}
		e.means[j] = mat.NewVecDense(d, copyVector(means[j]))

		cov, err := symmetricFromRows(covariances[j], d)
		if err != nil {
			return nil, fmt.Errorf("covariance %d: %w", j, err)
		}
		e.covariances[j] = cov
	}

	if err := validateWeights(e.weights); err != nil {
		return nil, err
	}

	return e, nil
}

// SetLogger replaces the logger. A nil logger disables logging.
func (e *Estimator) SetLogger(logger logging.Logger) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if logger == nil {
		logger = &logging.NoOpLogger{}
	}
	e.logger = logger
}

// Fit runs EM on features until the log-likelihood changes by less than
// epsilon between iterations. It blocks until convergence, a numerical
// failure, or the configured iteration limit.
func (e *Estimator) Fit(features [][]float64) error {
	return e.FitContext(context.Background(), features)
}

// FitContext is Fit with cancellation checked before every iteration
func (e *Estimator) FitContext(ctx context.Context, features [][]float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	logger := e.logger.WithContext(ctx).WithFields(logging.Fields{
		"function": "Fit",
	})

	x, err := featureVectors(features, e.dim)
	if err != nil {
		return err
	}

	n, k := len(x), len(e.means)
	densities := mat.NewDense(n, k, nil)
	responsibilities := mat.NewDense(n, k, nil)
	mix := make([]float64, n)
	next := newUpdate(k, n, e.dim)

	e.iterations = 0
	e.converged = false
	e.logLikelihood = math.NaN()

	// Starts at zero rather than -Inf, so a log-likelihood within epsilon of
	// zero stops on the first check.
	previous := 0.0

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		logLikelihood, err := e.evaluate(x, densities, mix)
		if err != nil {
			logger.Error(err, "Density evaluation failed", logging.Fields{"iteration": e.iterations})
			return err
		}
		e.logLikelihood = logLikelihood

		delta := math.Abs(logLikelihood - previous)
		logger.Debug("EM iteration", logging.Fields{
			"iteration":      e.iterations,
			"log_likelihood": logLikelihood,
			"delta":          delta,
		})

		if delta < e.config.Epsilon {
			e.converged = true
			logger.Info("EM converged", logging.Fields{
				"iterations":     e.iterations,
				"log_likelihood": logLikelihood,
				"features":       n,
			})
			return nil
		}

		if e.config.MaxIterations > 0 && e.iterations >= e.config.MaxIterations {
			logger.Warn("EM stopped at iteration limit", logging.Fields{
				"iterations":     e.iterations,
				"log_likelihood": logLikelihood,
				"delta":          delta,
			})
			return fmt.Errorf("%w: %d iterations, last delta %v", ErrNotConverged, e.iterations, delta)
		}

		e.expectation(densities, mix, responsibilities)

		if err := e.maximization(x, responsibilities, next); err != nil {
			logger.Error(err, "M-step failed", logging.Fields{"iteration": e.iterations})
			return err
		}

		previous = logLikelihood
		e.iterations++
	}
}

// evaluate fills densities[i][j] and mix[i] = Σ_j w_j·densities[i][j] and
// returns Σ_i log(mix[i]).
func (e *Estimator) evaluate(x []*mat.VecDense, densities *mat.Dense, mix []float64) (float64, error) {
	components, err := e.gaussians()
	if err != nil {
		return 0, err
	}

	logLikelihood := 0.0
	for i, xi := range x {
		row := densities.RawRowView(i)
		for j, g := range components {
			p, err := g.pdf(xi)
			if err != nil {
				return 0, fmt.Errorf("component %d: %w", j, err)
			}
			row[j] = p
		}

		mix[i] = floats.Dot(e.weights, row)
		if mix[i] == 0 {
			return 0, fmt.Errorf("feature %d: %w", i, ErrZeroDensity)
		}
		logLikelihood += math.Log(mix[i])
	}

	if math.IsNaN(logLikelihood) || math.IsInf(logLikelihood, 0) {
		return 0, fmt.Errorf("%w: log-likelihood %v", ErrNumerical, logLikelihood)
	}
	return logLikelihood, nil
}

// expectation sets responsibilities[i][j] = w_j·densities[i][j] / mix[i]
func (e *Estimator) expectation(densities *mat.Dense, mix []float64, responsibilities *mat.Dense) {
	n, _ := densities.Dims()
	for i := 0; i < n; i++ {
		row := responsibilities.RawRowView(i)
		floats.MulTo(row, e.weights, densities.RawRowView(i))
		for j := range row {
			row[j] /= mix[i]
		}
	}
}

// update holds the next parameters until every component has been
// re-estimated, so a failed M-step leaves the estimator untouched.
type update struct {
	means       []*mat.VecDense
	covariances []*mat.SymDense
	weights     []float64

	column []float64
	diff   *mat.VecDense
}

func newUpdate(k, n, d int) *update {
	u := &update{
		means:       make([]*mat.VecDense, k),
		covariances: make([]*mat.SymDense, k),
		weights:     make([]float64, k),
		column:      make([]float64, n),
		diff:        mat.NewVecDense(d, nil),
	}
	for j := 0; j < k; j++ {
		u.means[j] = mat.NewVecDense(d, nil)
		u.covariances[j] = mat.NewSymDense(d, nil)
	}
	return u
}

// maximization re-estimates each component in order. For component j the
// mean is computed first and the covariance is taken around that new mean.
func (e *Estimator) maximization(x []*mat.VecDense, responsibilities *mat.Dense, u *update) error {
	n := float64(len(x))

	for j := range e.means {
		r := mat.Col(u.column, j, responsibilities)

		nj := floats.Sum(r)
		if nj == 0 {
			return fmt.Errorf("component %d: %w", j, ErrCollapsedComponent)
		}
		if math.IsNaN(nj) || math.IsInf(nj, 0) {
			return fmt.Errorf("component %d: %w: effective count %v", j, ErrNumerical, nj)
		}

		mean := u.means[j]
		mean.Zero()
		for i, xi := range x {
			mean.AddScaledVec(mean, r[i], xi)
		}
		mean.ScaleVec(1/nj, mean)

		cov := u.covariances[j]
		cov.Zero()
		for i, xi := range x {
			u.diff.SubVec(xi, mean)
			cov.SymRankOne(cov, r[i], u.diff)
		}
		cov.ScaleSym(1/nj, cov)

		u.weights[j] = nj / n
	}

	for j := range e.means {
		e.means[j].CopyVec(u.means[j])
		e.covariances[j].CopySym(u.covariances[j])
	}
	copy(e.weights, u.weights)
	return nil
}

// gaussians factorizes every covariance for the current parameters
func (e *Estimator) gaussians() ([]*gaussian, error) {
	exponent := len(e.means)
	if e.config.NormalizeByDimension {
		exponent = e.dim
	}

	components := make([]*gaussian, len(e.means))
	for j := range e.means {
		g, err := newGaussian(e.means[j], e.covariances[j], exponent)
		if err != nil {
			return nil, fmt.Errorf("component %d: %w", j, err)
		}
		components[j] = g
	}
	return components, nil
}

// Components returns K
func (e *Estimator) Components() int {
	return len(e.means)
}

// Dimension returns D
func (e *Estimator) Dimension() int {
	return e.dim
}

// Config returns the settings the estimator was built with
func (e *Estimator) Config() Config {
	return e.config
}

// Means returns a copy of the component means
func (e *Estimator) Means() [][]float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	means := make([][]float64, len(e.means))
	for j, m := range e.means {
		means[j] = copyVector(m.RawVector().Data)
	}
	return means
}

// Covariances returns a copy of the component covariance matrices
func (e *Estimator) Covariances() [][][]float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	covariances := make([][][]float64, len(e.covariances))
	for j, c := range e.covariances {
		covariances[j] = rowsFromSymmetric(c)
	}
	return covariances
}

// Weights returns a copy of the mixing weights
func (e *Estimator) Weights() []float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return copyVector(e.weights)
}

// LogLikelihood returns the log-likelihood from the last density pass of the
// most recent Fit. It is NaN before any Fit and when that Fit failed before
// completing a density pass.
func (e *Estimator) LogLikelihood() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.logLikelihood
}

// Iterations returns the number of parameter updates the last Fit applied
func (e *Estimator) Iterations() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.iterations
}

// Converged reports whether the last Fit met the epsilon criterion
func (e *Estimator) Converged() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.converged
}
