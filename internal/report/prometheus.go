package report

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"

	"github.com/simmtest/simm-analyse/internal/compute"
)

// DefaultMetricPrefix is used when Options.MetricPrefix is empty.
const DefaultMetricPrefix = "simm"

// Metric family name suffixes.
const (
	metricCorrupted      = "corrupted_observations"
	metricEligible       = "eligible_observations"
	metricCorruptability = "corruptability"
	metricFlipped        = "flipped_bits"
	metricTested         = "tested_bits"
	metricFlipRate       = "flip_rate"
)

// Label names.
const (
	labelDelay    = "delay"
	labelLocation = "location"
)

// WritePrometheus renders both reports in the Prometheus text exposition
// format. Samples follow the report ordering. Zero-denominator cells get
// their counts but no corruptability sample.
func WritePrometheus(w io.Writer, tbl *compute.Table, fr compute.FlipRates, opts Options) error {
	var buf bytes.Buffer
	for _, mf := range Families(tbl, fr, opts) {
		if len(mf.GetMetric()) == 0 {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(&buf, mf); err != nil {
			return fmt.Errorf("report: encode %s: %w", mf.GetName(), err)
		}
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// Families builds the metric families for both reports. Families may be
// empty when the input has no corruption at all.
func Families(tbl *compute.Table, fr compute.FlipRates, opts Options) []*dto.MetricFamily {
	prefix := opts.MetricPrefix
	if prefix == "" {
		prefix = DefaultMetricPrefix
	}
	name := func(suffix string) string { return prefix + "_" + suffix }

	corrupted := gaugeFamily(name(metricCorrupted), "Runs at this delay that recorded the location as corrupted.")
	eligible := gaugeFamily(name(metricEligible), "Runs at this delay for which the state of the location is known.")
	fraction := gaugeFamily(name(metricCorruptability), "Fraction of eligible runs at this delay that recorded the location as corrupted.")
	for _, loc := range tbl.Locations {
		for _, d := range tbl.Delays {
			c := tbl.Cell(d, loc)
			labels := cellLabels(d, loc)
			corrupted.Metric = append(corrupted.Metric, gauge(labels, float64(c.Numerator)))
			eligible.Metric = append(eligible.Metric, gauge(labels, float64(c.Denominator)))
			if f, ok := c.Fraction(); ok {
				fraction.Metric = append(fraction.Metric, gauge(labels, f))
			}
		}
	}

	flipped := gaugeFamily(name(metricFlipped), "Bit flips summed over all runs at this delay.")
	tested := gaugeFamily(name(metricTested), "Bits tested over all runs at this delay.")
	rate := gaugeFamily(name(metricFlipRate), "Average fraction of tested bits that flipped at this delay.")
	for i, d := range fr.Delays {
		labels := []*dto.LabelPair{labelPair(labelDelay, strconv.FormatUint(d, 10))}
		flipped.Metric = append(flipped.Metric, gauge(labels, float64(fr.Flipped[i])))
		tested.Metric = append(tested.Metric, gauge(labels, float64(fr.Tested[i])))
		rate.Metric = append(rate.Metric, gauge(labels, fr.Rates[i]))
	}

	return []*dto.MetricFamily{corrupted, eligible, fraction, flipped, tested, rate}
}

func gaugeFamily(name, help string) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name: proto.String(name),
		Help: proto.String(help),
		Type: dto.MetricType_GAUGE.Enum(),
	}
}

func gauge(labels []*dto.LabelPair, v float64) *dto.Metric {
	return &dto.Metric{
		Label: labels,
		Gauge: &dto.Gauge{Value: proto.Float64(v)},
	}
}

func cellLabels(delay uint64, location string) []*dto.LabelPair {
	return []*dto.LabelPair{
		labelPair(labelDelay, strconv.FormatUint(delay, 10)),
		labelPair(labelLocation, location),
	}
}

func labelPair(name, value string) *dto.LabelPair {
	return &dto.LabelPair{Name: proto.String(name), Value: proto.String(value)}
}
