package profiler_test

import (
	"bytes"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Carmen-Shannon/oxy-slice/engine/profiler"
)

func Test_Profiler_Logs_CacheDeltas_When_IntervalElapsed(t *testing.T) {
	t.Parallel()

	now := time.Unix(0, 0)
	var buf bytes.Buffer
	p := profiler.NewProfiler()
	p.SetLogger(log.New(&buf, "", 0))
	p.SetClock(func() time.Time { return now })

	now = now.Add(500 * time.Millisecond)
	assert.False(t, p.Tick(profiler.CacheStats{Uploads: 3}))
	assert.Empty(t, buf.String())

	now = now.Add(500 * time.Millisecond)
	assert.True(t, p.Tick(profiler.CacheStats{Uploads: 4, Conversions: 4, Skips: 10}))
	assert.Contains(t, buf.String(), "FPS: 2.00")
	assert.Contains(t, buf.String(), "Uploads: 4 (4 conversions, 10 fresh)")

	buf.Reset()
	now = now.Add(time.Second)
	assert.True(t, p.Tick(profiler.CacheStats{Uploads: 5, Conversions: 5, Skips: 70, Rebuilds: 1, Replays: 59}))
	assert.Contains(t, buf.String(), "Uploads: 1 (1 conversions, 60 fresh)")
	assert.Contains(t, buf.String(), "Glyphs: 1 rebuilds, 59 replays")
}
