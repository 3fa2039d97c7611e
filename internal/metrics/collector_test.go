package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorAggregatesPerLabel(t *testing.T) {
	c := NewCollector()
	c.RecordTiming("classify", 100*time.Millisecond, false)
	c.RecordTiming("classify", 300*time.Millisecond, true)
	c.RecordTiming("question", 50*time.Millisecond, false)

	snap := c.Snapshot()
	require.Len(t, snap.Operations, 2)

	classify := snap.Operations[0]
	assert.Equal(t, "classify", classify.Label)
	assert.Equal(t, int64(2), classify.Count)
	assert.Equal(t, int64(1), classify.Failures)
	assert.Equal(t, 200*time.Millisecond, classify.AvgTime)
	assert.Equal(t, 100*time.Millisecond, classify.MinTime)
	assert.Equal(t, 300*time.Millisecond, classify.MaxTime)

	assert.Equal(t, "question", snap.Operations[1].Label)

	count, total := snap.Total()
	assert.Equal(t, int64(3), count)
	assert.Equal(t, 450*time.Millisecond, total)
}

func TestCollectorEmptySnapshot(t *testing.T) {
	snap := NewCollector().Snapshot()
	assert.Empty(t, snap.Operations)
	count, total := snap.Total()
	assert.Zero(t, count)
	assert.Zero(t, total)
}
