package compute

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simmtest/simm-analyse/internal/record"
)

// almostEqual returns true if a and b are within epsilon of each other.
func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestFlipRate_Example(t *testing.T) {
	// Two runs at delay 5 with 3 and 5 flips over 8 tested bits each:
	// (3+5)/(2*8) = 0.5. Truncated lists let flips exceed the locations.
	recs := []record.Record{
		recLimit(t, 1, 5, 3, "A"),
		recLimit(t, 1, 5, 5, "B"),
	}
	fr := FlipRate(recs, 8)

	require.Equal(t, []uint64{5}, fr.Delays)
	if !almostEqual(fr.Rates[0], 0.5, 1e-12) {
		t.Errorf("rate = %v, want 0.5", fr.Rates[0])
	}
	assert.Equal(t, []uint64{8}, fr.Flipped)
	assert.Equal(t, []uint64{16}, fr.Tested)
	assert.Equal(t, []uint64{2}, fr.Runs)
}

func TestFlipRate_GroupsAndOrdersByDelay(t *testing.T) {
	recs := []record.Record{
		rec(t, 300, 2, "A", "B"),
		rec(t, 10, 0),
		rec(t, 300, 0),
		rec(t, 100, 1, "A"),
		rec(t, 10, 1, "C"),
		rec(t, 300, 1, "C"),
	}
	fr := FlipRate(recs, DefaultTestedBits)

	assert.Equal(t, []uint64{10, 100, 300}, fr.Delays)
	assert.Equal(t, []uint64{2, 1, 3}, fr.Runs)
	assert.Equal(t, []uint64{1, 1, 3}, fr.Flipped)

	tests := []struct {
		i    int
		want float64
	}{
		{0, 1.0 / (2 * 32768)},
		{1, 1.0 / 32768},
		{2, 3.0 / (3 * 32768)},
	}
	for _, tc := range tests {
		if !almostEqual(fr.Rates[tc.i], tc.want, 1e-15) {
			t.Errorf("Rates[%d] = %g, want %g", tc.i, fr.Rates[tc.i], tc.want)
		}
	}
}

func TestFlipRate_DenominatorIsRunsTimesTestedBits(t *testing.T) {
	var recs []record.Record
	for i := 0; i < 7; i++ {
		recs = append(recs, rec(t, 42, 1, "A"))
	}
	recs = append(recs, rec(t, 43, 0))

	fr := FlipRate(recs, 1000)
	assert.Equal(t, []uint64{7000, 1000}, fr.Tested)
	assert.Equal(t, []float64{0.001, 0}, fr.Rates)
}

func TestFlipRate_ZeroTestedBitsUsesDefault(t *testing.T) {
	fr := FlipRate([]record.Record{rec(t, 1, 1, "A")}, 0)
	assert.Equal(t, []uint64{DefaultTestedBits}, fr.Tested)
}

func TestFlipRate_IncludesDelaysWithoutCorruption(t *testing.T) {
	// Unlike the corruptability table, every delay gets a flip rate.
	recs := []record.Record{rec(t, 1, 0), rec(t, 2, 1, "A")}
	fr := FlipRate(recs, 8)
	assert.Equal(t, []uint64{1, 2}, fr.Delays)
	assert.Equal(t, 0.0, fr.Rates[0])
}

func TestFlipRate_Empty(t *testing.T) {
	fr := FlipRate(nil, 8)
	assert.Empty(t, fr.Delays)
	assert.Empty(t, fr.Rates)
}
