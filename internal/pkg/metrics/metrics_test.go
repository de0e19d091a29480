package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountersRecord(t *testing.T) {
	m := New("test")

	m.OrderPlaced()
	m.OrderPlaced()
	m.Transition("cancelled")
	m.Reserved(3)
	m.Released(2)
	m.ReleaseFailed()
	m.StockRejected()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.OrdersPlaced))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OrderTransitions.WithLabelValues("cancelled")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.StockUnitsReserved))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.StockUnitsReleased))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.StockReleaseFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.InsufficientStock))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.OrderPlaced()
		m.Transition("other")
		m.ReleaseFailed()
		m.CacheResult("hit")
		m.ObserveHTTP("GET", "/health", "200", 0.01)
	})
	assert.Nil(t, m.Registry())
}

func TestSeparateRegistries(t *testing.T) {
	// Two instances must not collide on registration.
	assert.NotPanics(t, func() {
		New("a")
		New("a")
	})
}
