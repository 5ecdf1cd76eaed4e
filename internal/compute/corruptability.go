package compute

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/simmtest/simm-analyse/internal/record"
)

// ErrInsufficientData is returned when a table cell has no eligible
// observations, so its fraction is undefined.
var ErrInsufficientData = errors.New("compute: insufficient data")

// undefinedTieKey sorts cells without eligible observations after every
// defined fraction (whose keys fall in 0..100).
const undefinedTieKey = 101

// Cell holds the counts behind one (delay, location) fraction.
type Cell struct {
	// Numerator is the number of runs at this delay that recorded the
	// location as corrupted.
	Numerator uint64

	// Denominator is the number of runs at this delay for which the state
	// of the location is known (it is at or below the run's ceiling).
	Denominator uint64
}

// Defined reports whether the cell has at least one eligible observation.
func (c Cell) Defined() bool { return c.Denominator > 0 }

// Fraction returns Numerator/Denominator. ok is false when the denominator
// is zero.
func (c Cell) Fraction() (f float64, ok bool) {
	if c.Denominator == 0 {
		return 0, false
	}
	return float64(c.Numerator) / float64(c.Denominator), true
}

// tieKey is 100 minus the integer-truncated corruption percentage, so more
// corruptable cells get smaller keys. Integer arithmetic keeps ordering
// independent of floating point rounding.
func (c Cell) tieKey() int64 {
	if c.Denominator == 0 {
		return undefinedTieKey
	}
	return 100 - int64(c.Numerator*100/c.Denominator)
}

// CellRef names one table cell.
type CellRef struct {
	Delay    uint64
	Location string
}

// Table is the corruptability table: one row per location, one column per
// delay.
type Table struct {
	// Delays are the column headers, ascending.
	Delays []uint64

	// Locations are the row headers in report order: earliest delay at which
	// the location was seen corrupted first, more corruptable locations
	// first within a delay, then by name.
	Locations []string

	cells map[CellRef]Cell
}

// Cell returns the counts for (delay, location). Unknown pairs return the
// zero Cell.
func (t *Table) Cell(delay uint64, location string) Cell {
	return t.cells[CellRef{Delay: delay, Location: location}]
}

// Undefined lists the cells with a zero denominator in row-major report
// order.
func (t *Table) Undefined() []CellRef {
	var out []CellRef
	for _, loc := range t.Locations {
		for _, d := range t.Delays {
			ref := CellRef{Delay: d, Location: loc}
			if !t.cells[ref].Defined() {
				out = append(out, ref)
			}
		}
	}
	return out
}

// RequireDefined returns an error wrapping ErrInsufficientData if any cell
// has a zero denominator.
func (t *Table) RequireDefined() error {
	undef := t.Undefined()
	if len(undef) == 0 {
		return nil
	}
	first := undef[0]
	return fmt.Errorf("%w: %d cell(s) have no eligible observations, first at delay %d location %q",
		ErrInsufficientData, len(undef), first.Delay, first.Location)
}

// Corruptability builds the corruptability table for recs.
//
// Every (delay, location) pair is seeded before counting: locations are all
// locations seen in any run, delays are the delays of runs that saw at least
// one corrupted location. A run adds to the numerator of each location it
// recorded, and to the denominator of each location at or below its ceiling
// (see record.Record.Ceiling), since for a truncated run locations past the
// largest recorded one are unknown.
func Corruptability(recs []record.Record) *Table {
	locSet := make(map[string]struct{})
	delaySet := make(map[uint64]struct{})
	for _, r := range recs {
		if r.NumLocations() == 0 {
			continue
		}
		delaySet[r.Delay()] = struct{}{}
		for _, loc := range r.Locations() {
			locSet[loc] = struct{}{}
		}
	}

	sortedLocs := sortedKeys(locSet)
	t := &Table{
		Delays: sortedKeys(delaySet),
		cells:  make(map[CellRef]Cell, len(locSet)*len(delaySet)),
	}
	for _, d := range t.Delays {
		for _, loc := range sortedLocs {
			t.cells[CellRef{Delay: d, Location: loc}] = Cell{}
		}
	}

	for _, r := range recs {
		if _, ok := delaySet[r.Delay()]; !ok {
			continue
		}
		for _, loc := range r.Locations() {
			ref := CellRef{Delay: r.Delay(), Location: loc}
			c := t.cells[ref]
			c.Numerator++
			t.cells[ref] = c
		}
		// sortedLocs is ascending, so stop at the first location past the
		// ceiling.
		for _, loc := range sortedLocs {
			if !r.Covers(loc) {
				break
			}
			ref := CellRef{Delay: r.Delay(), Location: loc}
			c := t.cells[ref]
			c.Denominator++
			t.cells[ref] = c
		}
	}

	t.Locations = t.rowOrder(recs, sortedLocs)
	return t
}

// rowOrder sorts locations by (first delay seen corrupted, tie key at that
// delay, name).
func (t *Table) rowOrder(recs []record.Record, locs []string) []string {
	firstSeen := make(map[string]uint64, len(locs))
	for _, r := range recs {
		for _, loc := range r.Locations() {
			if d, ok := firstSeen[loc]; !ok || r.Delay() < d {
				firstSeen[loc] = r.Delay()
			}
		}
	}

	type row struct {
		loc   string
		delay uint64
		key   int64
	}
	rows := make([]row, 0, len(locs))
	for _, loc := range locs {
		d := firstSeen[loc]
		rows = append(rows, row{loc: loc, delay: d, key: t.Cell(d, loc).tieKey()})
	}
	slices.SortFunc(rows, func(a, b row) int {
		return cmp.Or(
			cmp.Compare(a.delay, b.delay),
			cmp.Compare(a.key, b.key),
			cmp.Compare(a.loc, b.loc),
		)
	})

	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.loc
	}
	return out
}

func sortedKeys[K cmp.Ordered](m map[K]struct{}) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
