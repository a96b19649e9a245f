package occupancy_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/eventweave/occupancy"
	"github.com/sarchlab/eventweave/weave"
)

func width(lower, upper float64) float64 {
	return upper - lower
}

func analyze(events ...weave.Event[float64]) occupancy.Report {
	segments, err := weave.Interweave(events)
	Expect(err).NotTo(HaveOccurred())

	return occupancy.Analyze(segments, width)
}

var _ = Describe("Analyze", func() {
	It("should track busy time, one event", func() {
		r := analyze(weave.Bounded[float64]("1", 1, 2))

		Expect(r.BusyTime).To(Equal(1.0))
		Expect(r.Combinations).To(HaveLen(1))
		Expect(r.Combinations[0].Total).To(Equal(1.0))
	})

	It("should track busy time, two events apart", func() {
		r := analyze(
			weave.Bounded[float64]("1", 1, 2),
			weave.Bounded[float64]("2", 3, 4),
		)

		Expect(r.BusyTime).To(Equal(2.0))
		Expect(r.IdleTime).To(Equal(1.0))
	})

	It("should track busy time, two events adjacent", func() {
		r := analyze(
			weave.Bounded[float64]("1", 1, 2),
			weave.Bounded[float64]("2", 2, 3),
		)

		Expect(r.BusyTime).To(Equal(2.0))
		Expect(r.Combinations).To(HaveLen(3))
		Expect(r.Combinations[1].Active.String()).To(Equal("{1, 2}"))
		Expect(r.Combinations[1].Instants).To(Equal(1))
		Expect(r.Combinations[1].Total).To(Equal(0.0))
	})

	It("should track busy time, two events overlap", func() {
		r := analyze(
			weave.Bounded[float64]("1", 1, 2),
			weave.Bounded[float64]("2", 1.5, 2.5),
		)

		Expect(r.BusyTime).To(Equal(1.5))

		longest, ok := r.Longest()
		Expect(ok).To(BeTrue())
		Expect(longest.Active.String()).To(Equal("{1}"))
	})

	It("should track busy time, four events", func() {
		r := analyze(
			weave.Bounded[float64]("1", 1, 2),
			weave.Bounded[float64]("2", 1.1, 1.2),
			weave.Bounded[float64]("3", 1.9, 2.1),
			weave.Bounded[float64]("4", 3.1, 3.2),
		)

		Expect(r.BusyTime).To(BeNumerically("~", 1.2, 1e-9))
	})

	It("should sum a combination that appears more than once", func() {
		r := analyze(
			weave.Bounded[float64]("A", 0, 10),
			weave.Bounded[float64]("B", 2, 3),
			weave.Bounded[float64]("C", 5, 6),
		)

		Expect(r.Combinations[0].Active.String()).To(Equal("{A}"))
		Expect(r.Combinations[0].Intervals).To(Equal(3))
		Expect(r.Combinations[0].Total).To(BeNumerically("~", 8, 1e-9))
	})

	It("should leave unbounded segments out of the totals", func() {
		r := analyze(
			weave.OpenStart[float64]("A", 2),
			weave.Bounded[float64]("B", 1, 3),
		)

		Expect(r.Combinations[0].Unbounded).To(BeTrue())
		Expect(r.Combinations[0].Total).To(Equal(0.0))
		Expect(r.BusyTime).To(Equal(2.0))
	})

	It("should find no longest combination on an empty timeline", func() {
		_, ok := occupancy.Analyze[float64](nil, width).Longest()
		Expect(ok).To(BeFalse())
	})

	It("should keep sets apart even if they print alike", func() {
		r := analyze(
			weave.Bounded[float64]("a, b", 0, 10),
			weave.Bounded[float64]("a", 20, 30),
			weave.Bounded[float64]("b", 25, 40),
		)

		var printedAlike []occupancy.Combination
		for _, c := range r.Combinations {
			if c.Active.String() == "{a, b}" {
				printedAlike = append(printedAlike, c)
			}
		}

		Expect(printedAlike).To(HaveLen(2))
		Expect(printedAlike[0].Active.IDs()).To(Equal([]weave.EventID{"a, b"}))
		Expect(printedAlike[0].Total).To(Equal(10.0))
		Expect(printedAlike[1].Active.IDs()).To(Equal([]weave.EventID{"a", "b"}))
		Expect(printedAlike[1].Total).To(Equal(5.0))
	})
})
