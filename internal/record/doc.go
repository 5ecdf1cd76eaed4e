// Package record parses SIMM retention test logs into Records.
//
// A log is a sequence of three-line blocks separated by a line of 32 hyphens.
// Parse handles one block, ParseBatch a whole log held in memory, ReadFile a
// log on disk. Every grammar or invariant failure is a *FormatError matching
// ErrFormat; read failures are an *IOError.
package record
