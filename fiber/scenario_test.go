package fiber

import (
	"bytes"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/meenmo/fibermodes/internal/logging"
	"github.com/meenmo/fibermodes/internal/metrics"
	"github.com/meenmo/fibermodes/mode"
	"github.com/meenmo/fibermodes/rootfind"
)

var _ = Describe("Fiber", func() {
	var (
		f     *Fiber
		rec   *metrics.Recorder
		trace *rootfind.Trace
	)

	Context("with a standard single mode fiber", func() {
		BeforeEach(func() {
			var err error
			rec, err = metrics.NewRecorder(prometheus.NewRegistry())
			Expect(err).NotTo(HaveOccurred())
			trace = &rootfind.Trace{Limit: 64}
			f, err = NewStepIndex([]float64{4.5e-6}, []float64{1.448918, 1.444418},
				WithLogger(logging.NewTestLogger()), WithRecorder(rec), WithTrace(trace))
			Expect(err).NotTo(HaveOccurred())
		})

		It("should guide only the fundamental mode at 1550 nm", func() {
			modes, err := f.FindVModes(wl1550, Unlimited, Unlimited)
			Expect(err).NotTo(HaveOccurred())
			Expect(modes).To(ConsistOf(mode.Fundamental))
		})

		It("should give HE(1,1) and LP(0,1) nearly the same index", func() {
			he, err := f.Neff(mode.Fundamental, wl1550, 0)
			Expect(err).NotTo(HaveOccurred())
			lp, err := f.Neff(mode.Mode{Family: mode.LP, Nu: 0, M: 1}, wl1550, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(he).To(BeNumerically("~", lp, 5e-6))
			Expect(he).To(BeNumerically(">", f.NCladding(wl1550)))
			Expect(he).To(BeNumerically("<", f.NMax(wl1550)))
		})

		It("should report TE(0,1) as not guided without failing", func() {
			n, err := f.Neff(mode.Mode{Family: mode.TE, Nu: 0, M: 1}, wl1550, 0)
			Expect(err).To(MatchError(ErrNotGuided))
			Expect(IsUnsupported(err)).To(BeTrue())
			Expect(math.IsNaN(n)).To(BeTrue())
		})

		It("should record root finder activity", func() {
			_, err := f.Neff(mode.Fundamental, wl800, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(trace.Count(rootfind.EventRoot)).To(BeNumerically(">=", 1))

			var buf bytes.Buffer
			Expect(rec.WriteText(&buf)).To(Succeed())
			Expect(buf.String()).To(ContainSubstring(`fibermodes_solves_total{kind="neff",result="found"} 1`))
		})
	})

	Context("with a three-layer fiber", func() {
		BeforeEach(func() {
			var err error
			f, err = NewStepIndex([]float64{4e-6, 10e-6}, []float64{1.4474, 1.4489, 1.4444})
			Expect(err).NotTo(HaveOccurred())
		})

		It("should order the LP neffs like their cutoffs", func() {
			modes, err := f.FindLPModes(wl1550, Unlimited, Unlimited)
			Expect(err).NotTo(HaveOccurred())
			Expect(f.SortByCutoff(modes)).To(Succeed())

			prev := math.Inf(1)
			for _, m := range modes {
				n, err := f.Neff(m, wl1550, 1e-5)
				Expect(err).NotTo(HaveOccurred(), m.String())
				Expect(n).To(BeNumerically("<", prev), m.String())
				prev = n
			}
		})

		It("should find the same neffs with a coarser step", func() {
			fine, err := f.Neff(mode.Mode{Family: mode.LP, Nu: 1, M: 1}, wl1550, 1e-5)
			Expect(err).NotTo(HaveOccurred())
			coarse, err := f.Neff(mode.Mode{Family: mode.LP, Nu: 1, M: 1}, wl1550, 1e-4)
			Expect(err).NotTo(HaveOccurred())
			Expect(coarse).To(BeNumerically("~", fine, 1e-10))
		})

		It("should bound each cutoff by the previous radial order", func() {
			for m := 2; m <= 3; m++ {
				lo, err := f.Cutoff(mode.Mode{Family: mode.TM, Nu: 0, M: m - 1})
				Expect(err).NotTo(HaveOccurred())
				hi, err := f.Cutoff(mode.Mode{Family: mode.TM, Nu: 0, M: m})
				Expect(err).NotTo(HaveOccurred())
				Expect(hi).To(BeNumerically(">", lo))
			}
		})
	})
})
