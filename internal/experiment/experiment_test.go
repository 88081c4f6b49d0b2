package experiment_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/springsim/internal/config"
	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/experiment"
	"github.com/san-kum/springsim/internal/logging"
	"github.com/san-kum/springsim/internal/physics"
)

type recorder struct {
	calls  int
	params dynamo.Params
	series dynamo.TimeSeries
}

func (r *recorder) Render(p dynamo.Params, ts dynamo.TimeSeries, m map[string]float64) {
	r.calls++
	r.params = p
	r.series = ts
}

var _ = Describe("Experiment", func() {
	var (
		rec *recorder
		exp *experiment.Experiment
	)

	BeforeEach(func() {
		rec = &recorder{}
		var err error
		exp, err = experiment.New(config.DefaultParams(), experiment.WithRenderer(rec))
		Expect(err).NotTo(HaveOccurred())
	})

	It("renders the initial run", func() {
		Expect(rec.calls).To(Equal(1))
		Expect(rec.series.Len()).To(Equal(500))
		Expect(exp.Series().Elongations[0]).To(Equal(0.0))
		Expect(exp.Metrics()).To(HaveKey("max_elongation"))
	})

	It("matches a direct engine call", func() {
		Expect(exp.Series()).To(Equal(physics.Simulate(config.DefaultParams())))
	})

	Context("when a parameter changes", func() {
		It("recomputes and re-renders", func() {
			Expect(exp.SetParam(dynamo.ParamDuration, 10)).To(Succeed())
			Expect(rec.calls).To(Equal(2))
			Expect(rec.params.Duration).To(Equal(10.0))
			Expect(rec.series.Len()).To(Equal(100))
			Expect(exp.Params().Duration).To(Equal(10.0))
		})

		It("changes the curve when stiffness changes", func() {
			before := exp.Series().Clone()
			Expect(exp.SetParam(dynamo.ParamStiffness, 2)).To(Succeed())
			Expect(exp.Series().Len()).To(Equal(before.Len()))
			Expect(exp.Series().Elongations).NotTo(Equal(before.Elongations))
		})

		It("rejects an invalid value and keeps the previous state", func() {
			before := exp.Params()
			err := exp.SetParam(dynamo.ParamMass, 0)
			Expect(err).To(MatchError(dynamo.ErrInvalidParameter))
			Expect(exp.Params()).To(Equal(before))
			Expect(rec.calls).To(Equal(1))
		})

		It("rejects an unknown parameter", func() {
			Expect(exp.SetParam("gravity", 9.81)).To(MatchError(dynamo.ErrUnknownParameter))
		})

		It("rejects runs over the step budget", func() {
			small, err := experiment.New(config.DefaultParams(), experiment.WithMaxSteps(1000))
			Expect(err).NotTo(HaveOccurred())
			Expect(small.SetParam(dynamo.ParamDt, 0.01)).To(MatchError(dynamo.ErrTooManySteps))
			Expect(small.Params().Dt).To(Equal(0.1))
		})
	})

	It("resets to the initial parameters", func() {
		Expect(exp.SetParam(dynamo.ParamDamping, 0.9)).To(Succeed())
		Expect(exp.Reset()).To(Succeed())
		Expect(exp.Params()).To(Equal(config.DefaultParams()))
		Expect(rec.calls).To(Equal(3))
	})

	It("hands out series the caller may modify", func() {
		ts := exp.Series()
		first := ts.Elongations[1]
		ts.Elongations[1] = 42
		Expect(exp.Series().Elongations[1]).To(Equal(first))
	})

	It("recomputes identical results", func() {
		before := exp.Series().Clone()
		Expect(exp.Recompute()).To(Succeed())
		Expect(exp.Series()).To(Equal(before))
	})

	It("refuses to start from invalid parameters", func() {
		p := config.DefaultParams()
		p.Dt = 0
		_, err := experiment.New(p)
		Expect(err).To(MatchError(dynamo.ErrInvalidParameter))
	})
})

var _ = Describe("Registry", func() {
	It("lists metrics in sorted order", func() {
		names := experiment.NewRegistry().ListMetrics()
		Expect(names).To(Equal([]string{
			"final_elongation", "max_elongation", "rms_elongation", "settling_time", "stability",
		}))
	})

	It("returns fresh instances", func() {
		r := experiment.NewRegistry()
		a, err := r.GetMetric("max_elongation")
		Expect(err).NotTo(HaveOccurred())
		b, _ := r.GetMetric("max_elongation")
		a.Observe(0, 3)
		Expect(b.Value()).To(Equal(0.0))
	})

	It("fails on unknown metrics", func() {
		_, err := experiment.NewRegistry().GetMetrics("max_elongation", "jerk")
		Expect(err).To(MatchError(experiment.ErrUnknownMetric))
	})
})

var _ = Describe("ParameterSweep", func() {
	var sweep *experiment.ParameterSweep

	BeforeEach(func() {
		sweep = &experiment.ParameterSweep{
			Base:     config.DefaultParams(),
			Param:    dynamo.ParamDamping,
			Min:      0.1,
			Max:      1.0,
			NumSteps: 4,
			Metrics:  []string{"max_elongation", "rms_elongation"},
			Workers:  2,
		}
	})

	It("spaces values evenly and includes both ends", func() {
		Expect(sweep.Values()).To(HaveLen(4))
		Expect(sweep.Values()[0]).To(Equal(0.1))
		Expect(sweep.Values()[1]).To(BeNumerically("~", 0.4, 1e-12))
		Expect(sweep.Values()[3]).To(Equal(1.0))

		sweep.NumSteps = 1
		Expect(sweep.Values()).To(Equal([]float64{0.1}))
		sweep.NumSteps = 0
		Expect(sweep.Values()).To(BeEmpty())
	})

	It("runs points in order with per-run metrics", func() {
		results, err := experiment.RunSweep(context.Background(), sweep, experiment.NewRegistry(), logging.Discard())
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(HaveLen(4))

		for i, r := range results {
			Expect(r.ParamValue).To(Equal(sweep.Values()[i]))
			Expect(r.Params.Damping).To(Equal(r.ParamValue))
			Expect(r.Samples).To(Equal(500))
			Expect(r.Metrics).To(HaveLen(2))

			direct := physics.Simulate(r.Params)
			Expect(r.Metrics["max_elongation"]).To(BeNumerically(">", 0))
			Expect(direct.Len()).To(Equal(r.Samples))
		}
		Expect(results[3].Metrics["rms_elongation"]).To(BeNumerically("<", results[0].Metrics["rms_elongation"]))
	})

	It("fails when a point is invalid", func() {
		sweep.Param = dynamo.ParamMass
		sweep.Min = -1
		sweep.Max = 1
		_, err := experiment.RunSweep(context.Background(), sweep, experiment.NewRegistry(), logging.Discard())
		Expect(err).To(MatchError(dynamo.ErrInvalidParameter))
	})

	It("fails on an unknown parameter", func() {
		sweep.Param = "gravity"
		_, err := experiment.RunSweep(context.Background(), sweep, experiment.NewRegistry(), logging.Discard())
		Expect(err).To(MatchError(dynamo.ErrUnknownParameter))
	})

	It("stops when the context is canceled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := experiment.RunSweep(ctx, sweep, experiment.NewRegistry(), logging.Discard())
		Expect(err).To(MatchError(context.Canceled))
	})
})
