package integrators

import (
	"fmt"
	"math"

	"github.com/san-kum/odelab/internal/dynamo"
)

// Dormand-Prince coefficients (RK45)
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

const (
	DefaultRTol     = 1e-6
	DefaultATol     = 1e-9
	DefaultMaxSteps = 100000
	DefaultMinStep  = 1e-14
)

// DormandPrince is an adaptive embedded 5(4) Runge-Kutta solver. It takes
// as many internal steps as the tolerances demand but always lands exactly
// on every requested grid time.
type DormandPrince struct {
	RTol        float64
	ATol        float64
	InitialStep float64 // 0 selects a step from the problem scale
	MinStep     float64
	MaxStep     float64 // 0 means unbounded
	MaxSteps    int

	safety   float64
	minScale float64
	maxScale float64
}

func NewDormandPrince(rtol, atol float64) *DormandPrince {
	if rtol <= 0 {
		rtol = DefaultRTol
	}
	if atol <= 0 {
		atol = DefaultATol
	}
	return &DormandPrince{
		RTol:     rtol,
		ATol:     atol,
		MinStep:  DefaultMinStep,
		MaxSteps: DefaultMaxSteps,
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

func (d *DormandPrince) Name() string { return "dopri5" }

// trial performs one Dormand-Prince step of size dt from (t, x) with k1 =
// f(x, t). It returns the fifth-order solution, f at that solution (the
// FSAL stage) and the scaled RMS error estimate.
func (d *DormandPrince) trial(f dynamo.Func, x, k1 dynamo.State, t, dt float64, p dynamo.Params) (dynamo.State, dynamo.State, float64, error) {
	n := len(x)
	eval := func(y dynamo.State, tt float64) (dynamo.State, error) {
		k, err := f(y, tt, p)
		if err != nil {
			return nil, err
		}
		if len(k) != n {
			return nil, fmt.Errorf("%w: derivative has %d entries, state has %d", dynamo.ErrDimensionMismatch, len(k), n)
		}
		return k, nil
	}

	x2 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x2[i] = x[i] + dt*b21*k1[i]
	}
	k2, err := eval(x2, t+a2*dt)
	if err != nil {
		return nil, nil, 0, err
	}

	x3 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x3[i] = x[i] + dt*(b31*k1[i]+b32*k2[i])
	}
	k3, err := eval(x3, t+a3*dt)
	if err != nil {
		return nil, nil, 0, err
	}

	x4 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x4[i] = x[i] + dt*(b41*k1[i]+b42*k2[i]+b43*k3[i])
	}
	k4, err := eval(x4, t+a4*dt)
	if err != nil {
		return nil, nil, 0, err
	}

	x5 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x5[i] = x[i] + dt*(b51*k1[i]+b52*k2[i]+b53*k3[i]+b54*k4[i])
	}
	k5, err := eval(x5, t+a5*dt)
	if err != nil {
		return nil, nil, 0, err
	}

	x6 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x6[i] = x[i] + dt*(b61*k1[i]+b62*k2[i]+b63*k3[i]+b64*k4[i]+b65*k5[i])
	}
	k6, err := eval(x6, t+dt)
	if err != nil {
		return nil, nil, 0, err
	}

	xNew := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		xNew[i] = x[i] + dt*(c1*k1[i]+c3*k3[i]+c4*k4[i]+c5*k5[i]+c6*k6[i])
	}

	k7, err := eval(xNew, t+dt)
	if err != nil {
		return nil, nil, 0, err
	}

	sum := 0.0
	for i := 0; i < n; i++ {
		errEst := dt * (dc1*k1[i] + dc3*k3[i] + dc4*k4[i] + dc5*k5[i] + dc6*k6[i] + dc7*k7[i])
		scale := d.ATol + d.RTol*math.Max(math.Abs(x[i]), math.Abs(xNew[i]))
		sum += (errEst / scale) * (errEst / scale)
	}
	errNorm := 0.0
	if n > 0 {
		errNorm = math.Sqrt(sum / float64(n))
	}

	return xNew, k7, errNorm, nil
}

func (d *DormandPrince) rms(v dynamo.State, ref dynamo.State) float64 {
	if len(v) == 0 {
		return 0
	}
	sum := 0.0
	for i := range v {
		s := d.ATol + d.RTol*math.Abs(ref[i])
		sum += (v[i] / s) * (v[i] / s)
	}
	return math.Sqrt(sum / float64(len(v)))
}

// initialStep picks a first step from the size of y and f(y) and one
// explicit Euler trial step.
func (d *DormandPrince) initialStep(f dynamo.Func, x, k1 dynamo.State, t, span float64, p dynamo.Params) (float64, error) {
	d0 := d.rms(x, x)
	d1 := d.rms(k1, x)

	h0 := 1e-6
	if d0 >= 1e-5 && d1 >= 1e-5 {
		h0 = 0.01 * d0 / d1
	}
	h0 = math.Min(h0, span)

	trial := make(dynamo.State, len(x))
	for i := range x {
		trial[i] = x[i] + h0*k1[i]
	}
	k, err := f(trial, t+h0, p)
	if err != nil {
		return 0, err
	}
	if len(k) != len(x) {
		return 0, fmt.Errorf("%w: derivative has %d entries, state has %d", dynamo.ErrDimensionMismatch, len(k), len(x))
	}
	d2 := d.rms(k.Sub(k1), x) / h0

	var h1 float64
	if dmax := math.Max(d1, d2); dmax <= 1e-15 {
		h1 = math.Max(1e-6, h0*1e-3)
	} else {
		h1 = math.Pow(0.01/dmax, 1.0/5.0)
	}

	return math.Min(math.Min(100*h0, h1), span), nil
}

func (d *DormandPrince) factor(errNorm float64) float64 {
	switch {
	case math.IsNaN(errNorm) || math.IsInf(errNorm, 0):
		return d.minScale
	case errNorm == 0:
		return d.maxScale
	}
	s := d.safety * math.Pow(errNorm, -0.2)
	return math.Max(d.minScale, math.Min(d.maxScale, s))
}

// Integrate reports y0 verbatim at ts[0] and the adaptively integrated state
// at every later grid time. Derivative failures come back wrapped in a
// StepError.
func (d *DormandPrince) Integrate(f dynamo.Func, y0 dynamo.State, ts []float64, p dynamo.Params) (*dynamo.Trajectory, error) {
	traj := dynamo.NewTrajectory(len(ts))
	if len(ts) == 0 {
		return traj, nil
	}

	y := y0.Clone()
	traj.Append(ts[0], y)
	if len(ts) == 1 {
		return traj, nil
	}

	t := ts[0]
	k1, err := f(y, t, p)
	if err != nil {
		return nil, &dynamo.StepError{Step: 0, Time: t, State: y, Wrapped: err}
	}
	if len(k1) != len(y) {
		return nil, fmt.Errorf("%w: derivative has %d entries, state has %d", dynamo.ErrDimensionMismatch, len(k1), len(y))
	}
	traj.Stats.Evaluations++

	span := ts[len(ts)-1] - ts[0]
	h := d.InitialStep
	if h <= 0 {
		h, err = d.initialStep(f, y, k1, t, span, p)
		if err != nil {
			return nil, &dynamo.StepError{Step: 0, Time: t, State: y, Wrapped: err}
		}
		traj.Stats.Evaluations++
	}

	for i := 1; i < len(ts); i++ {
		target := ts[i]
		for t < target {
			if target-t <= 1e-13*math.Max(1, math.Abs(target)) {
				t = target
				break
			}
			if traj.Stats.Steps+traj.Stats.Rejected >= d.MaxSteps {
				return nil, &dynamo.StepError{Step: traj.Stats.Steps, Time: t, State: y, Wrapped: dynamo.ErrMaxSteps}
			}
			if d.MaxStep > 0 {
				h = math.Min(h, d.MaxStep)
			}

			hUsed := h
			clipped := false
			if t+hUsed >= target {
				hUsed = target - t
				clipped = true
			}
			if !clipped && hUsed < d.MinStep {
				return nil, &dynamo.StepError{Step: traj.Stats.Steps, Time: t, State: y, Wrapped: dynamo.ErrStepTooSmall}
			}

			yNew, k7, errNorm, err := d.trial(f, y, k1, t, hUsed, p)
			if err != nil {
				return nil, &dynamo.StepError{Step: traj.Stats.Steps, Time: t, State: y, Wrapped: err}
			}
			traj.Stats.Evaluations += 6

			if errNorm <= 1 && yNew.IsValid() {
				if clipped {
					t = target
				} else {
					t += hUsed
				}
				y, k1 = yNew, k7
				traj.Stats.Steps++
				next := hUsed * d.factor(errNorm)
				if clipped {
					next = math.Max(next, h)
				}
				h = next
				continue
			}

			traj.Stats.Rejected++
			scale := math.Min(1, d.factor(errNorm))
			if !yNew.IsValid() {
				scale = d.minScale
			}
			h = hUsed * scale
			if h < d.MinStep {
				wrapped := dynamo.ErrStepTooSmall
				if !yNew.IsValid() {
					wrapped = dynamo.ErrInvalidState
				}
				return nil, &dynamo.StepError{Step: traj.Stats.Steps, Time: t, State: y, Wrapped: wrapped}
			}
		}
		traj.Append(ts[i], y)
	}

	return traj, nil
}
