// Package metrics records run metrics behind a small interface so that the
// pipeline does not depend on a particular metrics backend.
//
//	m := metrics.NewPrometheusMetrics()
//	m.RegisterWithLabels("amlsynth_table_rows", "Gauge", "Rows written per table", []string{"table"})
//	m.RecordWithLabels("amlsynth_table_rows", 4000, "accounts")
//	err := m.WriteToTextfile("amlsynth.prom")
package metrics

type Metrics interface {
	Register(name, metricType, help string)
	Record(name string, value float64)
	RegisterWithLabels(name, metricType, help string, labels []string)
	RecordWithLabels(name string, value float64, labelValues ...string)
}

// Names of the metrics a run records.
const (
	TableRows     = "amlsynth_table_rows"
	PatternRows   = "amlsynth_pattern_rows"
	StageDuration = "amlsynth_stage_duration_seconds"
	StageFailures = "amlsynth_stage_failures_total"
)

// stageBuckets span a sub-second export up to a multi-minute database load.
var stageBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300}

// RegisterRunMetrics registers every metric a run records.
func RegisterRunMetrics(m Metrics) {
	if p, ok := m.(*PrometheusMetrics); ok {
		p.SetCustomBuckets(StageDuration, stageBuckets)
	}
	m.RegisterWithLabels(TableRows, "Gauge", "Rows generated per output table", []string{"table"})
	m.RegisterWithLabels(PatternRows, "Gauge", "Transactions per pattern label", []string{"pattern"})
	m.RegisterWithLabels(StageDuration, "Histogram", "Duration of pipeline stages", []string{"stage"})
	m.RegisterWithLabels(StageFailures, "Counter", "Failed pipeline stages", []string{"stage"})
}
