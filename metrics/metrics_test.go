package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.RecordAssigned("miner", 2)
		c.RecordUnitError("invalid job")
		c.RecordComponent("spawn", ResultRan)
		c.RecordTick(0.01, 5000)
		c.RecordFlagsRemoved(1)
		c.SetSquads(3)
	})
}

func TestCountersAccumulate(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.RecordAssigned("miner", 2)
	c.RecordAssigned("miner", 1)
	c.RecordAssigned("worker", 0)
	c.RecordComponent("spawn", ResultSkipped)
	c.RecordComponent("spawn", ResultSkipped)
	c.RecordUnitError("null data")
	c.RecordTick(0.02, 7345)

	body := scrape(t, c)
	assert.Contains(t, body, `tundra_jobs_assigned_total{role="miner"} 3`)
	assert.NotContains(t, body, `role="worker"`)
	assert.Contains(t, body, `tundra_component_runs_total{component="spawn",result="skipped"} 2`)
	assert.Contains(t, body, `tundra_unit_errors_total{kind="null data"} 1`)
	assert.Contains(t, body, `tundra_cpu_bucket 7345`)
}

func TestHandlerServesMetrics(t *testing.T) {
	c := NewCollector(nil)
	c.RecordComponent("creeps", ResultRan)

	assert.Contains(t, scrape(t, c), `tundra_component_runs_total{component="creeps",result="ran"} 1`)
}

func scrape(t *testing.T, c *Collector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	return rec.Body.String()
}
