package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/simmtest/simm-analyse/internal/compute"
)

// DefaultUndefinedMarker is printed for cells without eligible observations
// when Options.UndefinedMarker is empty.
const DefaultUndefinedMarker = "undefined"

// Options controls rendering.
type Options struct {
	// UndefinedMarker replaces the fraction of zero-denominator cells in the
	// text report.
	UndefinedMarker string

	// MetricPrefix is prepended to metric family names in the prometheus
	// report.
	MetricPrefix string
}

// WriteText renders the corruptability table, a blank line, then the flip
// rate table. Output is assembled in memory and written with a single call
// so a failure never leaves half a report behind.
func WriteText(w io.Writer, tbl *compute.Table, fr compute.FlipRates, opts Options) error {
	var b strings.Builder
	writeCorruptability(&b, tbl, opts)
	b.WriteByte('\n')
	writeFlipRates(&b, fr)
	_, err := io.WriteString(w, b.String())
	return err
}

// writeCorruptability writes a header of ", "-joined delays after an empty
// first cell, then one line per location with its fractions.
func writeCorruptability(b *strings.Builder, tbl *compute.Table, opts Options) {
	marker := opts.UndefinedMarker
	if marker == "" {
		marker = DefaultUndefinedMarker
	}

	for _, d := range tbl.Delays {
		b.WriteString(", ")
		b.WriteString(strconv.FormatUint(d, 10))
	}
	b.WriteByte('\n')

	for _, loc := range tbl.Locations {
		b.WriteString(loc)
		for _, d := range tbl.Delays {
			b.WriteString(", ")
			if f, ok := tbl.Cell(d, loc).Fraction(); ok {
				b.WriteString(formatFloat(f))
			} else {
				b.WriteString(marker)
			}
		}
		b.WriteByte('\n')
	}
}

// writeFlipRates writes the delays and then the rates, each ","-joined.
func writeFlipRates(b *strings.Builder, fr compute.FlipRates) {
	delays := make([]string, len(fr.Delays))
	for i, d := range fr.Delays {
		delays[i] = strconv.FormatUint(d, 10)
	}
	rates := make([]string, len(fr.Rates))
	for i, r := range fr.Rates {
		rates[i] = formatFloat(r)
	}
	b.WriteString(strings.Join(delays, ","))
	b.WriteByte('\n')
	b.WriteString(strings.Join(rates, ","))
	b.WriteByte('\n')
}

// formatFloat prints the shortest decimal that round-trips, never in
// exponent form.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
