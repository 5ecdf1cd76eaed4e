// Package compute derives retention statistics from parsed test records.
//
// corruptability.go builds the per-(delay, location) corruption table.
// Denominators exclude locations past a truncated run's ceiling, since the
// tester only logs the first 31 corrupted locations and anything above the
// largest logged one is unknown. Cells whose denominator ends up zero are
// reported through Cell.Defined and Table.Undefined rather than divided.
//
// fliprate.go averages the bit flip count per delay over the tested bits of
// every run at that delay.
//
// Both functions are pure: they read an immutable []record.Record and keep
// their working maps local.
package compute
