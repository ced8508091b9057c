package integrators

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/odelab/internal/dynamo"
)

func decay(y dynamo.State, t float64, p dynamo.Params) (dynamo.State, error) {
	return dynamo.State{-p[0] * y[0]}, nil
}

func nobr(y dynamo.State, t float64, p dynamo.Params) (dynamo.State, error) {
	kf, kb := p[0], p[1]
	rf := kf * y[0] * y[0] * y[1]
	rb := kb * y[2] * y[2]
	return dynamo.State{2 * (rb - rf), rb - rf, 2 * (rf - rb)}, nil
}

type countingFunc struct {
	f     dynamo.Func
	calls int
}

func (c *countingFunc) Derive(y dynamo.State, t float64, p dynamo.Params) (dynamo.State, error) {
	c.calls++
	return c.f(y, t, p)
}

func eulerDecayError(t *testing.T, n int) float64 {
	t.Helper()
	traj, err := NewEuler().Integrate(decay, dynamo.State{3}, dynamo.Linspace(0, 1, n), dynamo.Params{2})
	if err != nil {
		t.Fatalf("integrate failed: %v", err)
	}
	return math.Abs(traj.Final()[0] - 3*math.Exp(-2))
}

func TestEulerSinglePoint(t *testing.T) {
	cf := &countingFunc{f: decay}
	y0 := dynamo.State{3}

	traj, err := NewEuler().Integrate(cf.Derive, y0, []float64{0.25}, dynamo.Params{2})
	if err != nil {
		t.Fatalf("integrate failed: %v", err)
	}

	if traj.Len() != 1 {
		t.Fatalf("expected 1 state, got %d", traj.Len())
	}
	if traj.States[0][0] != 3 || traj.Times[0] != 0.25 {
		t.Errorf("expected (0.25, [3]), got (%v, %v)", traj.Times[0], traj.States[0])
	}
	if cf.calls != 0 {
		t.Errorf("expected no derivative evaluations, got %d", cf.calls)
	}

	traj.States[0][0] = 99
	if y0[0] != 3 {
		t.Error("trajectory aliases the caller's initial state")
	}
}

func TestEulerEmptyGrid(t *testing.T) {
	traj, err := NewEuler().Integrate(decay, dynamo.State{3}, nil, dynamo.Params{2})
	if err != nil {
		t.Fatalf("integrate failed: %v", err)
	}
	if traj.Len() != 0 {
		t.Errorf("expected empty trajectory, got %d states", traj.Len())
	}
}

func TestEulerDecayConverges(t *testing.T) {
	prev := math.Inf(1)
	for _, n := range []int{11, 101, 1001} {
		e := eulerDecayError(t, n)
		if e >= prev {
			t.Errorf("error did not shrink at n=%d: %e >= %e", n, e, prev)
		}
		prev = e
	}
	if prev > 2e-3 {
		t.Errorf("error with 1000 steps too large: %e", prev)
	}
}

func TestEulerFirstOrder(t *testing.T) {
	coarse := eulerDecayError(t, 101)
	fine := eulerDecayError(t, 201)

	ratio := coarse / fine
	if ratio < 1.8 || ratio > 2.2 {
		t.Errorf("expected error ratio near 2 when halving h, got %.4f", ratio)
	}
}

func TestEulerNOBrScenario(t *testing.T) {
	ts := dynamo.Linspace(0, 10, 50)
	y0 := dynamo.State{1, 1, 0}

	traj, err := NewEuler().Integrate(nobr, y0, ts, dynamo.Params{0.42, 0.17})
	if err != nil {
		t.Fatalf("integrate failed: %v", err)
	}

	if traj.Len() != 50 || traj.Dim() != 3 {
		t.Fatalf("expected shape (50,3), got (%d,%d)", traj.Len(), traj.Dim())
	}
	first := traj.States[0]
	if first[0] != 1 || first[1] != 1 || first[2] != 0 {
		t.Errorf("first row must equal the initial state, got %v", first)
	}

	for i, s := range traj.States {
		for j, v := range s {
			if v < 0 || v > 2 {
				t.Errorf("state[%d][%d] = %f outside [0, 2]", i, j, v)
			}
		}
	}
}

func TestEulerNOBrConservation(t *testing.T) {
	for _, n := range []int{20, 200} {
		traj, err := NewEuler().Integrate(nobr, dynamo.State{1, 1, 0}, dynamo.Linspace(0, 10, n), dynamo.Params{0.42, 0.17})
		if err != nil {
			t.Fatalf("integrate failed: %v", err)
		}
		for i, s := range traj.States {
			if d := math.Abs(s[0] + s[2] - 1); d > 1e-12 {
				t.Errorf("n=%d row %d: NO+NOBr drifted by %e", n, i, d)
			}
			if d := math.Abs(s[1] + s[2]/2 - 1); d > 1e-12 {
				t.Errorf("n=%d row %d: Br2+NOBr/2 drifted by %e", n, i, d)
			}
		}
	}
}

func TestEulerNonUniformGrid(t *testing.T) {
	ramp := func(y dynamo.State, t float64, p dynamo.Params) (dynamo.State, error) {
		return dynamo.State{t}, nil
	}

	traj, err := NewEuler().Integrate(ramp, dynamo.State{0}, []float64{0, 1, 3, 3.5}, nil)
	if err != nil {
		t.Fatalf("integrate failed: %v", err)
	}

	// y_{k+1} = y_k + t_k * (t_{k+1} - t_k)
	want := []float64{0, 0, 2, 3.5}
	for i, w := range want {
		if got := traj.States[i][0]; math.Abs(got-w) > 1e-12 {
			t.Errorf("state %d: expected %v, got %v", i, w, got)
		}
	}
}

func TestEulerPropagatesError(t *testing.T) {
	errBoom := errors.New("boom")
	calls := 0
	failing := func(y dynamo.State, t float64, p dynamo.Params) (dynamo.State, error) {
		calls++
		if calls == 3 {
			return nil, errBoom
		}
		return dynamo.State{-y[0]}, nil
	}

	traj, err := NewEuler().Integrate(failing, dynamo.State{1}, dynamo.Linspace(0, 1, 10), nil)
	if err != errBoom {
		t.Fatalf("expected the derivative error unchanged, got %v", err)
	}
	if traj != nil {
		t.Error("expected no partial trajectory")
	}
	if calls != 3 {
		t.Errorf("expected integration to stop at the failing call, got %d calls", calls)
	}
}

func TestEulerDoesNotMutateInputs(t *testing.T) {
	y0 := dynamo.State{1, 1, 0}
	ts := []float64{0, 0.5, 1}
	p := dynamo.Params{0.42, 0.17}

	cf := &countingFunc{f: nobr}
	if _, err := NewEuler().Integrate(cf.Derive, y0, ts, p); err != nil {
		t.Fatalf("integrate failed: %v", err)
	}

	if y0[0] != 1 || y0[1] != 1 || y0[2] != 0 {
		t.Errorf("initial state mutated: %v", y0)
	}
	if ts[0] != 0 || ts[1] != 0.5 || ts[2] != 1 {
		t.Errorf("grid mutated: %v", ts)
	}
	if p[0] != 0.42 || p[1] != 0.17 {
		t.Errorf("params mutated: %v", p)
	}
	if cf.calls != len(ts)-1 {
		t.Errorf("expected %d evaluations, got %d", len(ts)-1, cf.calls)
	}
}

func TestEulerDimensionMismatch(t *testing.T) {
	short := func(y dynamo.State, t float64, p dynamo.Params) (dynamo.State, error) {
		return dynamo.State{1}, nil
	}

	_, err := NewEuler().Integrate(short, dynamo.State{1, 2}, []float64{0, 1}, nil)
	if !errors.Is(err, dynamo.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestEulerDivergesSilently(t *testing.T) {
	traj, err := NewEuler().Integrate(decay, dynamo.State{1}, dynamo.Linspace(0, 5, 51), dynamo.Params{100})
	if err != nil {
		t.Fatalf("expected no error for an unstable step, got %v", err)
	}
	if math.Abs(traj.Final()[0]) <= 1 {
		t.Errorf("expected the oscillating blow-up of an unstable step, got %v", traj.Final())
	}
}
