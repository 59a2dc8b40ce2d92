package compare_test

import (
	"context"
	"errors"
	"io"
	"iter"
	"math/big"
	"slices"
	"testing"

	"github.com/charmbracelet/log"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/compare"
	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/precision"
	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/pursuit"
	"github.com/jakolsz11/hunter-rabbit-simulation-IMO2017-problem-3/internal/sim"
)

var quiet = log.New(io.Discard)

func nativeRun(cfg sim.Config) *sim.Run[float64] {
	s, err := sim.New[float64](precision.Native{}, cfg, sim.WithLogger(quiet))
	Expect(err).NotTo(HaveOccurred())
	return s.Run(context.Background())
}

// fixedSource replays canned distances and then reports err.
type fixedSource struct {
	ds  []float64
	err error
}

func (f *fixedSource) All() iter.Seq[sim.State[float64]] {
	return func(yield func(sim.State[float64]) bool) {
		for i, d := range f.ds {
			if !yield(sim.State[float64]{Step: int64(i), D: d}) {
				return
			}
		}
	}
}

func (f *fixedSource) Err() error { return f.err }

var _ = Describe("Comparison", func() {
	var cfg sim.Config

	BeforeEach(func() {
		cfg = sim.Config{
			A:         1.01,
			D0:        1,
			Steps:     5,
			Precision: precision.StandardMode(),
			Rounding:  pursuit.Continuous,
		}
	})

	Context("continuous against quantized", func() {
		It("never lets the quantized separation fall behind", func() {
			q := cfg
			q.Rounding = pursuit.Quantized

			c := compare.New[float64, float64](precision.Native{}, nativeRun(q), precision.Native{}, nativeRun(cfg), compare.WithLogger(quiet))
			recs := slices.Collect(c.Records())

			Expect(recs).To(HaveLen(6))
			Expect(c.Warning()).To(BeNil())
			Expect(c.Err()).NotTo(HaveOccurred())
			for i, r := range recs {
				Expect(r.Step).To(Equal(int64(i)))
				Expect(r.DA).To(BeNumerically(">=", r.DB))
				if i > 0 {
					Expect(r.AbsErr).To(BeNumerically(">", 0))
				}
			}
			Expect(recs[1].DB).To(BeNumerically("~", 1.00864, 1e-4))
			Expect(recs[1].DA).To(BeNumerically("~", 1.2393137, 1e-6))
		})

		It("reports the relative error against side B", func() {
			q := cfg
			q.Rounding = pursuit.Quantized

			c := compare.New[float64, float64](precision.Native{}, nativeRun(q), precision.Native{}, nativeRun(cfg), compare.WithLogger(quiet))
			for r := range c.Records() {
				Expect(r.RelErr).To(BeNumerically("~", r.AbsErr/r.DB, 1e-15))
			}
		})
	})

	Context("identical runs", func() {
		It("has zero error everywhere including headings", func() {
			cfg.Angles = true
			cfg.Steps = 50

			c := compare.New[float64, float64](precision.Native{}, nativeRun(cfg), precision.Native{}, nativeRun(cfg), compare.WithLogger(quiet))
			stats := compare.Summarize(c.Records())

			Expect(stats.Count).To(Equal(int64(51)))
			Expect(stats.MaxAbs).To(BeZero())
			Expect(stats.MaxAngle).To(BeZero())
			Expect(stats.Final.HasAngle).To(BeTrue())
			Expect(stats.Final.Step).To(Equal(int64(50)))
		})
	})

	Context("when one side ends early", func() {
		It("truncates at the shorter side and names it", func() {
			boom := errors.New("boom")
			short := &fixedSource{ds: []float64{1, 2, 3}, err: boom}
			long := &fixedSource{ds: []float64{1, 2, 3, 4, 5}}

			c := compare.New[float64, float64](precision.Native{}, short, precision.Native{}, long, compare.WithLogger(quiet))
			recs := slices.Collect(c.Records())

			Expect(recs).To(HaveLen(3))
			Expect(c.Err()).NotTo(HaveOccurred())
			w := c.Warning()
			Expect(w).NotTo(BeNil())
			Expect(w.Side).To(Equal(compare.SideA))
			Expect(w.Index).To(Equal(int64(3)))
			Expect(errors.Is(w, boom)).To(BeTrue())
		})

		It("remembers the last aligned state on each side", func() {
			short := &fixedSource{ds: []float64{1, 2, 3}}
			long := &fixedSource{ds: []float64{1, 2.5, 3.5, 4.5, 5.5}}

			c := compare.New[float64, float64](precision.Native{}, short, precision.Native{}, long, compare.WithLogger(quiet))
			Expect(slices.Collect(c.Records())).To(HaveLen(3))

			Expect(c.Aligned()).To(Equal(int64(3)))
			Expect(c.LastA()).To(Equal(sim.State[float64]{Step: 2, D: 3}))
			Expect(c.LastB()).To(Equal(sim.State[float64]{Step: 2, D: 3.5}))
			endA, endB := c.Ended()
			Expect(endA).To(BeTrue())
			Expect(endB).To(BeFalse())
		})

		It("blames side B when B is shorter", func() {
			c := compare.New[float64, float64](
				precision.Native{}, &fixedSource{ds: []float64{1, 2, 3}},
				precision.Native{}, &fixedSource{ds: []float64{1}},
				compare.WithLogger(quiet),
			)
			Expect(slices.Collect(c.Records())).To(HaveLen(1))
			Expect(c.Warning().Side).To(Equal(compare.SideB))
			Expect(c.Warning().Cause).To(BeNil())
		})

		It("blames both sides when both failed", func() {
			errA, errB := errors.New("a"), errors.New("b")
			c := compare.New[float64, float64](
				precision.Native{}, &fixedSource{ds: []float64{1, 2}, err: errA},
				precision.Native{}, &fixedSource{ds: []float64{1, 2}, err: errB},
				compare.WithLogger(quiet),
			)
			Expect(slices.Collect(c.Records())).To(HaveLen(2))
			Expect(c.Warning().Side).To(Equal(compare.SideBoth))
		})

		It("carries the step error of a failed run", func() {
			cause := &pursuit.StepError{Step: 2, Wrapped: pursuit.ErrDegenerateStep}
			c := compare.New[float64, float64](
				precision.Native{}, &fixedSource{ds: []float64{1, 1.5}, err: cause},
				precision.Native{}, &fixedSource{ds: []float64{1, 1.5, 2}},
				compare.WithLogger(quiet),
			)
			Expect(slices.Collect(c.Records())).To(HaveLen(2))
			Expect(errors.Is(c.Warning(), pursuit.ErrDegenerateStep)).To(BeTrue())
			Expect(c.Warning().Index).To(Equal(cause.Step))
		})
	})

	Context("standard against high precision", func() {
		It("keeps the float run within tolerance", func() {
			if testing.Short() {
				Skip("long high precision run")
			}
			cfg.A = 1.5
			cfg.Steps = 20000

			hp, err := precision.NewBig(60)
			Expect(err).NotTo(HaveOccurred())
			hcfg := cfg
			hcfg.Precision = precision.HighMode(60)
			hs, err := sim.New[*big.Float](hp, hcfg, sim.WithLogger(quiet))
			Expect(err).NotTo(HaveOccurred())

			c := compare.New[float64, *big.Float](precision.Native{}, nativeRun(cfg), hp, hs.Run(context.Background()), compare.WithLogger(quiet))
			stats := compare.Summarize(c.Records())

			Expect(c.Warning()).To(BeNil())
			Expect(stats.Count).To(Equal(int64(20001)))
			Expect(stats.MaxRel).To(BeNumerically("<", 1e-9))
			Expect(stats.Final.DB).To(BeNumerically("~", 81.662008722, 1e-6))
		})
	})
})

var _ = Describe("Stats", func() {
	It("tracks running means and maxima", func() {
		var s compare.Stats
		s.Observe(compare.Record{Step: 0, AbsErr: 0, RelErr: 0})
		s.Observe(compare.Record{Step: 1, AbsErr: 2, RelErr: 0.5})
		s.Observe(compare.Record{Step: 2, AbsErr: 1, RelErr: 0.25, HasAngle: true, AngleErr: 0.1})

		Expect(s.Count).To(Equal(int64(3)))
		Expect(s.MaxAbs).To(Equal(2.0))
		Expect(s.MaxRel).To(Equal(0.5))
		Expect(s.MaxRelStep).To(Equal(int64(1)))
		Expect(s.MeanAbs).To(BeNumerically("~", 1.0, 1e-12))
		Expect(s.MeanRel).To(BeNumerically("~", 0.25, 1e-12))
		Expect(s.MaxAngle).To(Equal(0.1))
		Expect(s.Final.Step).To(Equal(int64(2)))
	})
})
