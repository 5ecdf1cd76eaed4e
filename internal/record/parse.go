package record

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	headerRe = regexp.MustCompile(`^Delay: ([0-9]+), Pattern: ([0-9]+)$`)
	diffsRe  = regexp.MustCompile(`^Diffs: ([0-9]+)$`)
)

// Parse converts one block into a Record.
//
// A block is three lines:
//
//	Delay: <n>, Pattern: <m>
//	<loc>,<loc>,...,
//	Diffs: <k>
//
// A fourth, empty line is tolerated so the last block of a file may end in a
// newline. The pattern number is checked but not kept.
func Parse(block string, limits Limits) (Record, error) {
	lines := strings.Split(block, "\n")
	if len(lines) != 3 && !(len(lines) == 4 && lines[3] == "") {
		return Record{}, &FormatError{
			Block:  -1,
			Field:  "block",
			Reason: fmt.Sprintf("expected 3 lines, got %d", len(lines)),
		}
	}

	delay, err := parseHeader(lines[0])
	if err != nil {
		return Record{}, err
	}

	locations, err := parseLocations(lines[1])
	if err != nil {
		return Record{}, err
	}

	bitFlips, err := parseDiffs(lines[2])
	if err != nil {
		return Record{}, err
	}

	return New(delay, locations, bitFlips, limits)
}

func parseHeader(line string) (uint64, error) {
	m := headerRe.FindStringSubmatch(line)
	if m == nil {
		return 0, headerErr(line, `want "Delay: <n>, Pattern: <m>"`)
	}
	delay, err := strconv.ParseUint(m[1], 10, 64)
	if err != nil {
		return 0, headerErr(line, fmt.Sprintf("delay: %v", err))
	}
	if _, err := strconv.ParseUint(m[2], 10, 64); err != nil {
		return 0, headerErr(line, fmt.Sprintf("pattern: %v", err))
	}
	return delay, nil
}

func headerErr(line, reason string) error {
	return &FormatError{Block: -1, Line: lineHeader, Field: "header", Text: line, Reason: reason}
}

// parseLocations splits a comma-terminated list. Every entry, the last one
// included, is followed by a comma, so the final segment must be empty.
func parseLocations(line string) ([]string, error) {
	segs := strings.Split(line, ",")
	last := segs[len(segs)-1]
	if last != "" {
		return nil, &FormatError{
			Block:  -1,
			Line:   lineLocations,
			Field:  "locations",
			Text:   line,
			Reason: "list is not comma-terminated",
		}
	}
	return segs[:len(segs)-1], nil
}

func parseDiffs(line string) (uint64, error) {
	m := diffsRe.FindStringSubmatch(line)
	if m == nil {
		return 0, &FormatError{Block: -1, Line: lineDiffs, Field: "diffs", Text: line, Reason: `want "Diffs: <k>"`}
	}
	n, err := strconv.ParseUint(m[1], 10, 64)
	if err != nil {
		return 0, &FormatError{Block: -1, Line: lineDiffs, Field: "diffs", Text: line, Reason: err.Error()}
	}
	return n, nil
}
