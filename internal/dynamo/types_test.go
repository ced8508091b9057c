package dynamo

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestState_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		state State
		valid bool
	}{
		{"empty", State{}, true},
		{"normal", State{1.0, 2.0, 3.0}, true},
		{"zeros", State{0.0, 0.0}, true},
		{"with NaN", State{1.0, math.NaN()}, false},
		{"with +Inf", State{1.0, math.Inf(1)}, false},
		{"with -Inf", State{1.0, math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.state.IsValid())
		})
	}
}

func TestState_Norm(t *testing.T) {
	tests := []struct {
		state    State
		expected float64
	}{
		{State{3, 4}, 5.0},
		{State{1, 0}, 1.0},
		{State{0, 0}, 0.0},
		{State{1, 1, 1, 1}, 2.0},
		{State{}, 0.0},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.expected, tt.state.Norm(), 1e-12, "Norm(%v)", tt.state)
	}
}

func TestState_Arithmetic(t *testing.T) {
	a := State{1, 2, 3}
	b := State{4, 5, 6}

	assert.Equal(t, State{5, 7, 9}, a.Add(b))
	assert.Equal(t, State{3, 3, 3}, b.Sub(a))
	assert.Equal(t, State{2, 4, 6}, a.Scale(2))
	assert.Equal(t, State{1, 2, 3}, a, "operands must not be modified")
}

func TestState_Clone(t *testing.T) {
	src := State{1, 2, 3}
	c := src.Clone()
	c[0] = 99
	assert.Equal(t, 1.0, src[0])
}

func TestTrajectory(t *testing.T) {
	tr := NewTrajectory(3)
	assert.Nil(t, tr.Final())
	assert.Equal(t, 0, tr.Dim())

	tr.Append(0, State{1, 10})
	tr.Append(0.5, State{2, 20})
	tr.Append(1, State{3, 30})

	assert.Equal(t, 3, tr.Len())
	assert.Equal(t, 2, tr.Dim())
	assert.Equal(t, State{3, 30}, tr.Final())
	assert.Equal(t, []float64{10, 20, 30}, tr.Column(1))

	ti, yi := tr.At(1)
	assert.Equal(t, 0.5, ti)
	assert.Equal(t, State{2, 20}, yi)

	m := tr.Matrix()
	require.Len(t, m, 3)
	assert.Equal(t, []float64{1, 10}, m[0])
}

func TestLinspace(t *testing.T) {
	assert.Empty(t, Linspace(0, 1, 0))
	assert.Equal(t, []float64{2}, Linspace(2, 5, 1))

	ts := Linspace(0, 10, 50)
	require.Len(t, ts, 50)
	assert.Equal(t, 0.0, ts[0])
	assert.Equal(t, 10.0, ts[49])
	assert.InDelta(t, 10.0/49.0, ts[1]-ts[0], 1e-12)
}

func TestValidateGrid(t *testing.T) {
	assert.ErrorIs(t, ValidateGrid(nil), ErrEmptyGrid)
	assert.ErrorIs(t, ValidateGrid([]float64{0, 1, 1}), ErrGridNotIncreasing)
	assert.ErrorIs(t, ValidateGrid([]float64{0, 2, 1}), ErrGridNotIncreasing)
	assert.ErrorIs(t, ValidateGrid([]float64{0, math.NaN()}), ErrGridNotIncreasing)
	assert.NoError(t, ValidateGrid([]float64{0}))
	assert.NoError(t, ValidateGrid([]float64{0, 0.1, 0.5, 2}))
}

func TestMaxStep(t *testing.T) {
	assert.Equal(t, 0.0, MaxStep([]float64{1}))
	assert.InDelta(t, 1.5, MaxStep([]float64{0, 0.1, 0.5, 2}), 1e-12)
}

func TestStepError(t *testing.T) {
	cause := errors.New("boom")
	err := &StepError{Step: 150, Time: 1.5, Wrapped: cause}

	assert.Equal(t, "step 150 (t=1.5): boom", err.Error())
	assert.ErrorIs(t, err, cause)

	var se *StepError
	assert.True(t, errors.As(error(err), &se))
}
