package compute

import (
	"github.com/simmtest/simm-analyse/internal/record"
)

// DefaultTestedBits is the size of the tester's 4096-byte test region in bits.
const DefaultTestedBits = 4096 * 8

// FlipRates is the average bit flip rate per delay. All slices are parallel
// and ordered by ascending delay.
type FlipRates struct {
	Delays []uint64
	Rates  []float64

	// Runs is the number of records at each delay.
	Runs []uint64
	// Flipped is the summed bit flip count at each delay.
	Flipped []uint64
	// Tested is Runs times the tested bits per run.
	Tested []uint64
}

// FlipRate groups recs by delay and divides the flipped bits by the tested
// bits of each group. A testedBits of 0 selects DefaultTestedBits.
func FlipRate(recs []record.Record, testedBits uint64) FlipRates {
	if testedBits == 0 {
		testedBits = DefaultTestedBits
	}

	type acc struct{ runs, flipped uint64 }
	groups := make(map[uint64]*acc)
	delaySet := make(map[uint64]struct{})
	for _, r := range recs {
		g, ok := groups[r.Delay()]
		if !ok {
			g = &acc{}
			groups[r.Delay()] = g
			delaySet[r.Delay()] = struct{}{}
		}
		g.runs++
		g.flipped += r.BitFlips()
	}

	delays := sortedKeys(delaySet)
	out := FlipRates{
		Delays:  delays,
		Rates:   make([]float64, len(delays)),
		Runs:    make([]uint64, len(delays)),
		Flipped: make([]uint64, len(delays)),
		Tested:  make([]uint64, len(delays)),
	}
	for i, d := range delays {
		g := groups[d]
		tested := g.runs * testedBits
		out.Runs[i] = g.runs
		out.Flipped[i] = g.flipped
		out.Tested[i] = tested
		out.Rates[i] = float64(g.flipped) / float64(tested)
	}
	return out
}
