package integrators

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/odelab/internal/dynamo"
)

var _ = Describe("DormandPrince", func() {
	var solver *DormandPrince

	BeforeEach(func() {
		solver = NewDormandPrince(1e-8, 1e-10)
	})

	It("falls back to default tolerances", func() {
		d := NewDormandPrince(0, -1)
		Expect(d.RTol).To(Equal(DefaultRTol))
		Expect(d.ATol).To(Equal(DefaultATol))
		Expect(d.Name()).To(Equal("dopri5"))
	})

	It("returns the initial state alone for a single-point grid", func() {
		cf := &countingFunc{f: decay}
		traj, err := solver.Integrate(cf.Derive, dynamo.State{3}, []float64{0}, dynamo.Params{2})

		Expect(err).NotTo(HaveOccurred())
		Expect(traj.Len()).To(Equal(1))
		Expect(traj.States[0]).To(Equal(dynamo.State{3}))
		Expect(cf.calls).To(BeZero())
	})

	It("matches the analytic decay solution at every grid point", func() {
		ts := dynamo.Linspace(0, 1, 11)
		traj, err := solver.Integrate(decay, dynamo.State{3}, ts, dynamo.Params{2})

		Expect(err).NotTo(HaveOccurred())
		Expect(traj.Times).To(Equal(ts))
		for i, t := range ts {
			Expect(traj.States[i][0]).To(BeNumerically("~", 3*math.Exp(-2*t), 1e-7))
		}
	})

	It("keeps the first row verbatim on the NOBr scenario", func() {
		y0 := dynamo.State{1, 1, 0}
		traj, err := solver.Integrate(nobr, y0, dynamo.Linspace(0, 10, 50), dynamo.Params{0.42, 0.17})

		Expect(err).NotTo(HaveOccurred())
		Expect(traj.Len()).To(Equal(50))
		Expect(traj.States[0]).To(Equal(y0))
		for _, s := range traj.States {
			Expect(s[0] + s[2]).To(BeNumerically("~", 1.0, 1e-9))
		}
	})

	It("tracks the harmonic oscillator over several periods", func() {
		traj, err := solver.Integrate(oscillator, dynamo.State{1, 0}, []float64{0, 10}, nil)

		Expect(err).NotTo(HaveOccurred())
		Expect(traj.Final()[0]).To(BeNumerically("~", math.Cos(10), 1e-6))
		Expect(traj.Final()[1]).To(BeNumerically("~", -math.Sin(10), 1e-6))
		Expect(traj.Stats.Steps).To(BeNumerically(">", 1))
	})

	It("takes fewer evaluations than fixed RK4 for comparable accuracy", func() {
		ts := dynamo.Linspace(0, 10, 11)
		adaptive, err := NewDormandPrince(1e-6, 1e-9).Integrate(oscillator, dynamo.State{1, 0}, ts, nil)
		Expect(err).NotTo(HaveOccurred())

		fixed, err := NewRK4().Integrate(oscillator, dynamo.State{1, 0}, dynamo.Linspace(0, 10, 2001), nil)
		Expect(err).NotTo(HaveOccurred())

		Expect(adaptive.Stats.Evaluations).To(BeNumerically("<", fixed.Stats.Evaluations))
	})

	It("wraps derivative failures in a StepError", func() {
		errBoom := errors.New("boom")
		failing := func(y dynamo.State, t float64, p dynamo.Params) (dynamo.State, error) {
			if t > 0.5 {
				return nil, errBoom
			}
			return dynamo.State{-y[0]}, nil
		}

		traj, err := solver.Integrate(failing, dynamo.State{1}, dynamo.Linspace(0, 1, 5), nil)
		Expect(traj).To(BeNil())
		Expect(err).To(MatchError(errBoom))

		var se *dynamo.StepError
		Expect(errors.As(err, &se)).To(BeTrue())
	})

	It("gives up when the step budget is exhausted", func() {
		solver.MaxSteps = 3
		_, err := solver.Integrate(oscillator, dynamo.State{1, 0}, []float64{0, 100}, nil)
		Expect(err).To(MatchError(dynamo.ErrMaxSteps))
	})

	It("fails instead of stepping through a finite-time blow-up", func() {
		blowup := func(y dynamo.State, t float64, p dynamo.Params) (dynamo.State, error) {
			return dynamo.State{y[0] * y[0]}, nil
		}
		solver.MaxSteps = 10000

		_, err := solver.Integrate(blowup, dynamo.State{1}, []float64{0, 2}, nil)
		Expect(err).To(HaveOccurred())
		Expect(errors.Is(err, dynamo.ErrStepTooSmall) ||
			errors.Is(err, dynamo.ErrMaxSteps) ||
			errors.Is(err, dynamo.ErrInvalidState)).To(BeTrue())
	})

	It("rejects derivatives of the wrong length", func() {
		short := func(y dynamo.State, t float64, p dynamo.Params) (dynamo.State, error) {
			return dynamo.State{1}, nil
		}
		_, err := solver.Integrate(short, dynamo.State{1, 2}, []float64{0, 1}, nil)
		Expect(err).To(MatchError(dynamo.ErrDimensionMismatch))
	})
})
