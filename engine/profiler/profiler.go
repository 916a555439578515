package profiler

import (
	"log"
	"runtime"
	"time"
)

// CacheStats is a snapshot of cumulative slice cache counters, summed over all views.
type CacheStats struct {
	// Conversions counts slice-to-buffer conversions.
	Conversions int
	// Uploads counts texture uploads.
	Uploads int
	// Skips counts texture updates that found the cache fresh.
	Skips int
	// Rebuilds counts vector glyph batch rebuilds.
	Rebuilds int
	// Replays counts vector glyph batch replays.
	Replays int
}

func (c CacheStats) sub(o CacheStats) CacheStats {
	return CacheStats{
		Conversions: c.Conversions - o.Conversions,
		Uploads:     c.Uploads - o.Uploads,
		Skips:       c.Skips - o.Skips,
		Rebuilds:    c.Rebuilds - o.Rebuilds,
		Replays:     c.Replays - o.Replays,
	}
}

// Profiler tracks frame rate, memory and cache statistics for performance monitoring.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	lastCache      CacheStats

	now    func() time.Time
	logger *log.Logger
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		now:            time.Now,
		logger:         log.Default(),
	}
	p.lastTime = p.now()
	return p
}

// SetInterval changes how often stats are logged.
func (p *Profiler) SetInterval(d time.Duration) {
	if d > 0 {
		p.updateInterval = d
	}
}

// SetLogger redirects profiler output.
func (p *Profiler) SetLogger(logger *log.Logger) {
	if logger != nil {
		p.logger = logger
	}
}

// SetClock replaces the time source. Meant for tests.
func (p *Profiler) SetClock(now func() time.Time) {
	p.now = now
	p.lastTime = now()
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
// Statistics include FPS, heap usage, GC activity and per-second cache work
// (conversions, uploads, fresh skips, glyph rebuilds and replays).
//
// Parameters:
//   - cache: the cumulative cache counters as of this frame
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick(cache CacheStats) bool {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)

	if elapsed < p.updateInterval {
		return false
	}

	secs := elapsed.Seconds()
	fps := float64(p.frameCount) / secs

	runtime.ReadMemStats(&p.memStats)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / secs

	gcCount := p.memStats.NumGC
	var lastPauseUs uint64
	if gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 GC pauses.
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
	}

	d := cache.sub(p.lastCache)
	p.logger.Printf("[Profiler] FPS: %.2f | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs) | Uploads: %d (%d conversions, %d fresh) | Glyphs: %d rebuilds, %d replays",
		fps, allocMB, allocRateMB, gcCount, lastPauseUs, d.Uploads, d.Conversions, d.Skips, d.Rebuilds, d.Replays)

	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	p.lastCache = cache
	return true
}
