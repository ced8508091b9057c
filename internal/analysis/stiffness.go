package analysis

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/san-kum/odelab/internal/dynamo"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"
)

// DefaultStiffRatio is the eigenvalue spread above which a system is
// reported as stiff.
const DefaultStiffRatio = 1e3

var ErrEigenFailed = errors.New("analysis: eigen decomposition did not converge")

// Spectrum describes the local linearisation of f at one state.
type Spectrum struct {
	Time        float64
	Eigenvalues []complex128

	// Ratio is max|Re λ| / min|Re λ| over decaying modes; 1 when fewer than
	// two modes decay.
	Ratio float64

	// EulerLimit is the largest step for which forward Euler stays stable,
	// +Inf when no mode decays.
	EulerLimit float64
}

// Jacobian estimates df/dy at (y, t) with central differences.
func Jacobian(f dynamo.Func, y dynamo.State, t float64, p dynamo.Params) (*mat.Dense, error) {
	n := len(y)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty state", dynamo.ErrDimensionMismatch)
	}

	var evalErr error
	jac := mat.NewDense(n, n, nil)
	fd.Jacobian(jac, func(dst, x []float64) {
		if evalErr != nil {
			return
		}
		dy, err := f(dynamo.State(x), t, p)
		if err != nil {
			evalErr = err
			return
		}
		if len(dy) != n {
			evalErr = fmt.Errorf("%w: derivative has %d entries, state has %d", dynamo.ErrDimensionMismatch, len(dy), n)
			return
		}
		copy(dst, dy)
	}, y, &fd.JacobianSettings{Formula: fd.Central})
	if evalErr != nil {
		return nil, evalErr
	}
	return jac, nil
}

// Analyze linearises f at (y, t) and classifies its eigenvalues.
// Non-finite states or Jacobians are rejected with dynamo.ErrInvalidState.
func Analyze(f dynamo.Func, y dynamo.State, t float64, p dynamo.Params) (*Spectrum, error) {
	if !y.IsValid() {
		return nil, fmt.Errorf("%w at t=%v", dynamo.ErrInvalidState, t)
	}
	jac, err := Jacobian(f, y, t, p)
	if err != nil {
		return nil, err
	}
	// Balancing a NaN matrix never terminates.
	for _, v := range jac.RawMatrix().Data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: jacobian at t=%v", dynamo.ErrInvalidState, t)
		}
	}

	var eig mat.Eigen
	if ok := eig.Factorize(jac, mat.EigenNone); !ok {
		return nil, ErrEigenFailed
	}
	values := eig.Values(nil)

	// Modes this close to zero come from conserved quantities.
	scale := 0.0
	for _, lam := range values {
		scale = math.Max(scale, cmplx.Abs(lam))
	}
	tol := 1e-10 * scale

	s := &Spectrum{Time: t, Eigenvalues: values, Ratio: 1, EulerLimit: math.Inf(1)}
	minRe, maxRe := math.Inf(1), 0.0
	decaying := 0
	for _, lam := range values {
		re := real(lam)
		if re >= -tol {
			continue
		}
		decaying++
		minRe = math.Min(minRe, -re)
		maxRe = math.Max(maxRe, -re)
		// |1 + hλ| <= 1  <=>  h <= -2 Re(λ) / |λ|^2
		mod := cmplx.Abs(lam)
		s.EulerLimit = math.Min(s.EulerLimit, -2*re/(mod*mod))
	}
	if decaying >= 2 && minRe > 0 {
		s.Ratio = maxRe / minRe
	}
	return s, nil
}

type Assessment struct {
	Samples int

	// Worst is the sample with the largest stiffness ratio.
	Worst *Spectrum

	// EulerLimit is the smallest stable forward Euler step seen anywhere.
	EulerLimit  float64
	MaxGridStep float64
	Stiff       bool

	// EulerUnstable reports a grid spacing larger than EulerLimit.
	EulerUnstable bool
}

// Assess samples up to maxSamples rows of traj (evenly spaced, always
// including the first and last) and reports stiffness with respect to
// threshold. A threshold <= 0 selects DefaultStiffRatio. Rows holding NaN or
// Inf are skipped; a trajectory without a finite sample is an error.
func Assess(f dynamo.Func, traj *dynamo.Trajectory, p dynamo.Params, maxSamples int, threshold float64) (*Assessment, error) {
	if traj.Len() == 0 {
		return nil, dynamo.ErrEmptyGrid
	}
	if threshold <= 0 {
		threshold = DefaultStiffRatio
	}
	if maxSamples < 1 || maxSamples > traj.Len() {
		maxSamples = traj.Len()
	}

	a := &Assessment{EulerLimit: math.Inf(1), MaxGridStep: dynamo.MaxStep(traj.Times)}
	stride := 1.0
	if maxSamples > 1 {
		stride = float64(traj.Len()-1) / float64(maxSamples-1)
	}

	last := -1
	for k := 0; k < maxSamples; k++ {
		i := int(math.Round(float64(k) * stride))
		if i == last || i >= traj.Len() {
			continue
		}
		last = i

		t, y := traj.At(i)
		if !y.IsValid() {
			continue
		}
		s, err := Analyze(f, y, t, p)
		if errors.Is(err, dynamo.ErrInvalidState) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("sample at t=%v: %w", t, err)
		}
		a.Samples++
		if a.Worst == nil || s.Ratio > a.Worst.Ratio {
			a.Worst = s
		}
		a.EulerLimit = math.Min(a.EulerLimit, s.EulerLimit)
	}

	if a.Worst == nil {
		return nil, fmt.Errorf("%w: no finite row among %d samples", dynamo.ErrInvalidState, maxSamples)
	}

	a.Stiff = a.Worst.Ratio >= threshold
	a.EulerUnstable = a.MaxGridStep > a.EulerLimit
	return a, nil
}
