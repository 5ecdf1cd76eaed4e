package record

import (
	"errors"
	"fmt"
	"strings"
)

// ErrFormat is matched (via errors.Is) by every FormatError.
var ErrFormat = errors.New("invalid input format")

// Line numbers within a block, 1-based.
const (
	lineHeader    = 1
	lineLocations = 2
	lineDiffs     = 3
)

// FormatError describes a block that does not match the log grammar or
// violates a record invariant.
type FormatError struct {
	// Block is the 0-based index of the block within the batch, or -1 when
	// the block was parsed on its own.
	Block int

	// Line is the 1-based line within the block, or 0 when the block as a
	// whole is malformed.
	Line int

	// Field names the part of the grammar that failed: block, header,
	// locations or diffs.
	Field string

	// Text is the offending line, when there is one.
	Text string

	Reason string
}

func (e *FormatError) Error() string {
	var b strings.Builder
	b.WriteString("record: ")
	if e.Block >= 0 {
		fmt.Fprintf(&b, "block %d: ", e.Block)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, "line %d: ", e.Line)
	}
	fmt.Fprintf(&b, "%s: %s", e.Field, e.Reason)
	if e.Text != "" {
		fmt.Fprintf(&b, " (got %q)", e.Text)
	}
	return b.String()
}

func (e *FormatError) Unwrap() error { return ErrFormat }

// IOError reports that the input could not be read.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("record: read %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
