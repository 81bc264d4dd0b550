package engine

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Snapshot(t *testing.T) {
	m := NewMetrics()
	m.total.Add(3)
	m.successful.Add(2)
	m.failed.Add(1)
	m.autoRetries.Add(1)

	assert.Equal(t, MetricsSnapshot{TotalQueries: 3, SuccessfulQueries: 2, FailedQueries: 1, AutoRetries: 1}, m.Snapshot())
}

func TestMetrics_Register(t *testing.T) {
	m := NewMetrics()
	reg := prometheus.NewRegistry()
	require.NoError(t, m.Register(reg))

	m.total.Add(2)
	m.autoRetries.Add(1)

	expected := `
# HELP nlsql_auto_retries_total Sanitized retries after a failed execution.
# TYPE nlsql_auto_retries_total counter
nlsql_auto_retries_total 1
# HELP nlsql_queries_total Questions received.
# TYPE nlsql_queries_total counter
nlsql_queries_total 2
`
	err := promtest.GatherAndCompare(reg, strings.NewReader(expected), "nlsql_queries_total", "nlsql_auto_retries_total")
	assert.NoError(t, err)

	assert.Error(t, m.Register(reg), "registering twice is rejected")
}
