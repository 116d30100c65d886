package observability

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsCountConcurrently(t *testing.T) {
	m := NewMetrics()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RecordRequest("/tickets", "POST", 201, time.Millisecond)
			m.RecordTransition("ticket_created")
		}()
	}
	wg.Wait()
	m.RecordError("/tickets", "POST", "INVALID_TITLE")

	snap := m.Snapshot()
	assert.Equal(t, int64(50), snap.Requests["/tickets|POST|201"])
	assert.Equal(t, int64(50), snap.Transitions["ticket_created"])
	assert.Equal(t, int64(1), snap.Errors["/tickets|POST|INVALID_TITLE"])
	assert.Equal(t, 50*time.Millisecond, snap.RequestTime["/tickets|POST|201"])

	// Snapshots are copies.
	snap.Transitions["ticket_created"] = 0
	assert.Equal(t, int64(50), m.Snapshot().Transitions["ticket_created"])
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, 0)
	m.RecordTransition("ticket_claimed")
	assert.Empty(t, m.Snapshot().Requests)
}
