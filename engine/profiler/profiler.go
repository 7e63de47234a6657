package profiler

import (
	"log"
	"runtime"
	"sort"
	"time"
)

// Profiler tracks frame rate, memory statistics, and named preparation phase
// timings. Outputs stats to the log at a configurable interval.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	phaseTotals map[string]time.Duration
	phaseCounts map[string]int
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	return &Profiler{
		lastTime:       time.Now(),
		updateInterval: time.Second,
		phaseTotals:    make(map[string]time.Duration),
		phaseCounts:    make(map[string]int),
	}
}

// SetUpdateInterval changes how often Tick logs statistics.
//
// Parameters:
//   - interval: the new logging interval
func (p *Profiler) SetUpdateInterval(interval time.Duration) {
	p.updateInterval = interval
}

// TimePhase starts timing a named phase and returns the function that stops
// it. Call sites typically defer the returned stop function.
//
// Parameters:
//   - name: the phase name stats are accumulated under
//
// Returns:
//   - func(): the stop function recording the elapsed time
func (p *Profiler) TimePhase(name string) func() {
	start := time.Now()
	return func() {
		p.RecordPhase(name, time.Since(start))
	}
}

// RecordPhase accumulates one timed run of a named phase. Averages are logged
// and reset on the next interval tick.
//
// Parameters:
//   - name: the phase name
//   - d: the elapsed time to record
func (p *Profiler) RecordPhase(name string, d time.Duration) {
	p.phaseTotals[name] += d
	p.phaseCounts[name]++
}

// PhaseAverage returns the mean recorded duration of a phase in the current
// interval, zero when the phase has not run.
//
// Parameters:
//   - name: the phase name
//
// Returns:
//   - time.Duration: the mean duration
func (p *Profiler) PhaseAverage(name string) time.Duration {
	count := p.phaseCounts[name]
	if count == 0 {
		return 0
	}
	return p.phaseTotals[name] / time.Duration(count)
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
// Statistics include: FPS, heap usage, allocation rate, GC count/pause times,
// total memory, and per-phase preparation averages.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)

	if elapsed < p.updateInterval {
		return false
	}

	fps := float64(p.frameCount) / elapsed.Seconds()

	runtime.ReadMemStats(&p.memStats)
	// Alloc: live heap bytes. TotalAlloc: cumulative heap bytes (tracks
	// churn). Sys: bytes obtained from the OS.
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024

	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 GC pauses.
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			pause := p.memStats.PauseNs[i%256] / 1000
			if pause > maxPauseUs {
				maxPauseUs = pause
			}
		}
	}

	log.Printf("[Profiler] FPS: %.2f | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs, max: %d µs) | Sys: %.2f MB",
		fps, allocMB, allocRateMB, gcCount, lastPauseUs, maxPauseUs, sysMB)
	p.logPhases()

	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// logPhases logs the interval's per-phase averages in name order and resets
// the accumulators.
func (p *Profiler) logPhases() {
	if len(p.phaseCounts) == 0 {
		return
	}
	names := make([]string, 0, len(p.phaseCounts))
	for name := range p.phaseCounts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		log.Printf("[Profiler]   %s: avg %v over %d run(s)", name, p.PhaseAverage(name), p.phaseCounts[name])
	}
	p.phaseTotals = make(map[string]time.Duration)
	p.phaseCounts = make(map[string]int)
}
