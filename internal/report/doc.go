// Package report renders the corruptability table and flip rates.
//
// text.go writes the delimited text report: the table with a ", "-joined
// header of delays and one row per location, a blank line, then the delays
// and rates each on a ","-joined line.
//
// prometheus.go writes the same numbers as gauge families in the Prometheus
// text exposition format, labelled by delay and location.
package report
