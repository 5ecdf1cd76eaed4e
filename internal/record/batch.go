package record

import (
	"errors"
	"os"
	"strings"
)

// ParseBatch splits text into blocks on the separator line and parses each
// one. Records are returned in input order. The first bad block aborts the
// batch; its index is recorded in the returned FormatError.
func ParseBatch(text string, limits Limits) ([]Record, error) {
	limits = limits.withDefaults()
	blocks := strings.Split(text, "\n"+limits.Separator+"\n")

	recs := make([]Record, 0, len(blocks))
	for i, block := range blocks {
		rec, err := Parse(block, limits)
		if err != nil {
			var fe *FormatError
			if errors.As(err, &fe) {
				fe.Block = i
			}
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// ReadFile loads and parses the log at path. A missing or unreadable file is
// reported as an *IOError.
func ReadFile(path string, limits Limits) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Path: path, Err: err}
	}
	return ParseBatch(string(data), limits)
}
