package metrics_test

import (
	"sync"
	"testing"
	"time"

	"github.com/raphaelgruber/soractl/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorAggregates(t *testing.T) {
	c := metrics.NewCollector()
	c.RecordTiming(metrics.OpGetVideo, 10*time.Millisecond, false)
	c.RecordTiming(metrics.OpGetVideo, 30*time.Millisecond, true)
	c.RecordTiming(metrics.OpCreateVideo, 5*time.Millisecond, false)
	c.RecordTiming(metrics.OpDownloadVideo, 20*time.Millisecond, false)
	c.RecordBytes(metrics.OpDownloadVideo, 2048)

	snap := c.Snapshot()
	require.Len(t, snap.Operations, 3)
	assert.Equal(t, int64(2048), snap.Operations[1].Bytes)

	// Sorted by name.
	assert.Equal(t, metrics.OpCreateVideo, snap.Operations[0].Name)
	assert.Equal(t, metrics.OpDownloadVideo, snap.Operations[1].Name)
	assert.Equal(t, metrics.OpGetVideo, snap.Operations[2].Name)

	get := snap.Operations[2]
	assert.Equal(t, int64(2), get.Count)
	assert.Equal(t, int64(1), get.Errors)
	assert.Equal(t, int64(40), get.TotalTimeMs)
	assert.Equal(t, 20.0, get.AvgTimeMs)
	assert.Equal(t, int64(10), get.MinTimeMs)
	assert.Equal(t, int64(30), get.MaxTimeMs)
}

func TestCollectorSkipsBytesOnlyOperations(t *testing.T) {
	c := metrics.NewCollector()
	c.RecordBytes(metrics.OpDownloadVideo, 10)
	snap := c.Snapshot()
	for _, op := range snap.Operations {
		assert.NotZero(t, op.Count, "operations without calls are omitted")
	}
}

func TestNilCollectorIgnoresRecords(t *testing.T) {
	var c *metrics.Collector
	assert.NotPanics(t, func() {
		c.RecordTiming(metrics.OpGetVideo, time.Millisecond, false)
		c.RecordBytes(metrics.OpGetVideo, 1)
	})
}

func TestCollectorConcurrentRecords(t *testing.T) {
	c := metrics.NewCollector()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.RecordTiming(metrics.OpListVideos, time.Millisecond, false)
		}()
	}
	wg.Wait()

	snap := c.Snapshot()
	require.Len(t, snap.Operations, 1)
	assert.Equal(t, int64(50), snap.Operations[0].Count)
}
