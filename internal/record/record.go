package record

import (
	"fmt"
	"slices"
	"strings"
)

// Defaults describing the upstream tester's log format.
const (
	// DefaultSeparator is the line that divides two blocks: 32 hyphens.
	DefaultSeparator = "--------------------------------"

	// DefaultTruncationLimit is the maximum number of corrupted locations
	// the tester records for one run.
	DefaultTruncationLimit = 31
)

// Limits holds the format parameters used while parsing.
// The zero value means "use the defaults".
type Limits struct {
	// Separator divides blocks. It is matched as a whole line.
	Separator string

	// TruncationLimit is the location count at which the tester stops
	// recording; see Record.Truncated.
	TruncationLimit int
}

// DefaultLimits returns the limits of the stock tester firmware.
func DefaultLimits() Limits {
	return Limits{Separator: DefaultSeparator, TruncationLimit: DefaultTruncationLimit}
}

func (l Limits) withDefaults() Limits {
	if l.Separator == "" {
		l.Separator = DefaultSeparator
	}
	if l.TruncationLimit <= 0 {
		l.TruncationLimit = DefaultTruncationLimit
	}
	return l
}

// Record is one parsed test observation. It is immutable: the location list
// is copied on the way in and on the way out.
type Record struct {
	delay     uint64
	locations []string
	bitFlips  uint64
	truncated bool
	ceiling   string
}

// New validates and builds a Record.
//
// locations must not contain duplicates. Unless len(locations) equals the
// truncation limit, bitFlips must equal len(locations); at the limit the
// tester stopped recording and bitFlips may be larger.
func New(delay uint64, locations []string, bitFlips uint64, limits Limits) (Record, error) {
	limits = limits.withDefaults()

	seen := make(map[string]struct{}, len(locations))
	for _, loc := range locations {
		if _, dup := seen[loc]; dup {
			return Record{}, &FormatError{
				Block:  -1,
				Line:   lineLocations,
				Field:  "locations",
				Reason: fmt.Sprintf("duplicate location %q", loc),
			}
		}
		seen[loc] = struct{}{}
	}

	truncated := len(locations) == limits.TruncationLimit
	if !truncated && bitFlips != uint64(len(locations)) {
		return Record{}, &FormatError{
			Block: -1,
			Line:  lineDiffs,
			Field: "diffs",
			Reason: fmt.Sprintf("%d locations recorded but %d bit flips reported (only %d-entry lists may be truncated)",
				len(locations), bitFlips, limits.TruncationLimit),
		}
	}

	rec := Record{
		delay:     delay,
		locations: slices.Clone(locations),
		bitFlips:  bitFlips,
		truncated: truncated,
	}
	if truncated && len(locations) > 0 {
		rec.ceiling = slices.Max(locations)
	}
	return rec, nil
}

// Delay is the retention delay the run was read back at.
func (r Record) Delay() uint64 { return r.delay }

// BitFlips is the total number of differing bits found by the run.
func (r Record) BitFlips() uint64 { return r.bitFlips }

// Locations returns a copy of the corrupted locations in the order the
// tester emitted them.
func (r Record) Locations() []string { return slices.Clone(r.locations) }

// NumLocations returns the number of recorded locations.
func (r Record) NumLocations() int { return len(r.locations) }

// Truncated reports whether the location list hit the truncation limit, in
// which case locations past the last recorded one are unknown.
func (r Record) Truncated() bool { return r.truncated }

// Ceiling returns the largest location whose state is known for this run:
// the maximum recorded location, whatever order the list came in. ok is
// false when the list was not truncated, meaning every location is known.
func (r Record) Ceiling() (loc string, ok bool) {
	if !r.truncated || len(r.locations) == 0 {
		return "", false
	}
	return r.ceiling, true
}

// Covers reports whether loc is at or below the run's ceiling.
func (r Record) Covers(loc string) bool {
	ceiling, ok := r.Ceiling()
	return !ok || strings.Compare(loc, ceiling) <= 0
}
