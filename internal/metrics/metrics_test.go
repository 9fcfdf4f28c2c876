package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestLedgerCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Applied("Swap", 12, 100, time.Millisecond)
	m.Applied("Swap", 12, 101, time.Millisecond)
	m.Dropped("Swap", "pool_not_found")
	m.Skipped("Donate")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.EventsApplied.WithLabelValues("Swap")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsDropped.WithLabelValues("Swap", "pool_not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsSkipped.WithLabelValues("Donate")))
	assert.Equal(t, 101.0, testutil.ToFloat64(m.LastBlock))
}

func TestNilLedgerIsNoop(t *testing.T) {
	var m *Ledger
	m.Applied("Swap", 1, 1, time.Second)
	m.Dropped("Swap", "x")
	m.Skipped("Swap")
	m.TokenLookup("cache")
}
