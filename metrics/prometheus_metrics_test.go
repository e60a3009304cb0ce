package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterWithLabels(t *testing.T) {
	m := NewPrometheusMetrics()
	m.RegisterWithLabels("test_metric1", "Counter", "Test metric with labels", []string{"label1", "label2"})

	_, ok := m.counterVecs["test_metric1"]
	assert.True(t, ok)
}

func TestRecordWithLabels(t *testing.T) {
	m := NewPrometheusMetrics()
	m.RegisterWithLabels("test_metric2", "Gauge", "Test metric with labels", []string{"label1"})

	m.RecordWithLabels("test_metric2", 3, "a")
	m.RecordWithLabels("test_metric2", 5, "a")
	m.RecordWithLabels("unknown_metric", 1, "a")

	assert.Equal(t, 5.0, testutil.ToFloat64(m.gaugeVecs["test_metric2"].WithLabelValues("a")))
}

func TestRecord(t *testing.T) {
	m := NewPrometheusMetrics()
	m.Register("test_counter", "Counter", "Test counter")
	m.Register("test_gauge", "Gauge", "Test gauge")

	m.Record("test_counter", 2)
	m.Record("test_counter", 1)
	m.Record("test_gauge", 7)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.counters["test_counter"]))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.gauges["test_gauge"]))
}

func TestRegister_UnknownType(t *testing.T) {
	m := NewPrometheusMetrics()
	assert.Panics(t, func() { m.Register("test_summary", "Summary", "Unsupported") })
}

func TestRegistriesAreIndependent(t *testing.T) {
	// Each instance owns its registry, so the same names can be registered twice.
	RegisterRunMetrics(NewPrometheusMetrics())
	assert.NotPanics(t, func() { RegisterRunMetrics(NewPrometheusMetrics()) })
}

func TestWriteToTextfile(t *testing.T) {
	m := NewPrometheusMetrics()
	RegisterRunMetrics(m)
	m.RecordWithLabels(TableRows, 800, "customers")
	m.RecordWithLabels(PatternRows, 512, "round_trip")
	m.RecordWithLabels(StageDuration, 0.3, "generate")

	path := filepath.Join(t.TempDir(), "amlsynth.prom")
	require.NoError(t, m.WriteToTextfile(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `amlsynth_table_rows{table="customers"} 800`)
	assert.Contains(t, string(content), `amlsynth_pattern_rows{pattern="round_trip"} 512`)
	assert.Contains(t, string(content), `amlsynth_stage_duration_seconds_bucket{stage="generate",le="0.5"} 1`)
}
