package retriever

import (
	"sync"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/rotblauer/orthod/geo"
	"github.com/rotblauer/orthod/tiles"
)

// Outcome labels for one level attempt.
const (
	OutcomeComposed   = "composed"
	OutcomeTooLarge   = "too_large"
	OutcomeIncomplete = "incomplete"
)

// LevelAttempt records what happened at one candidate zoom level.
type LevelAttempt struct {
	Zoom    tiles.Zoom    `json:"zoom"`
	Outcome string        `json:"outcome"`
	Tiles   int           `json:"tiles"`
	Elapsed time.Duration `json:"elapsed"`
}

// Report is the full account of one retrieval: what was asked, which
// levels were tried, tile traffic, fetch latency, and how it ended.
type Report struct {
	Box     geo.BoundingBox `json:"box"`
	Time    time.Time       `json:"time"`
	Elapsed time.Duration   `json:"elapsed"`

	Success bool       `json:"success"`
	Zoom    tiles.Zoom `json:"zoom,omitempty"`
	Width   int        `json:"width,omitempty"`
	Height  int        `json:"height,omitempty"`
	Error   string     `json:"error,omitempty"`

	Attempts  []LevelAttempt `json:"attempts"`
	TileCount int            `json:"tile_count"`
	TileBytes int64          `json:"tile_bytes"`

	// Per-tile fetch latency, milliseconds.
	FetchMeanMS   float64 `json:"fetch_mean_ms"`
	FetchMedianMS float64 `json:"fetch_median_ms"`
	FetchP95MS    float64 `json:"fetch_p95_ms"`

	mu         sync.Mutex
	durations  []float64
	levelTiles int
}

func newReport(box geo.BoundingBox) *Report {
	return &Report{Box: box, Time: time.Now(), Attempts: []LevelAttempt{}}
}

// tile records one fetch attempt's traffic. size is 0 for transport failures.
func (r *Report) tile(size int, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.TileCount++
	r.levelTiles++
	r.TileBytes += int64(size)
	r.durations = append(r.durations, float64(elapsed.Milliseconds()))
}

// attempt closes out one level's record.
func (r *Report) attempt(z tiles.Zoom, outcome string, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Attempts = append(r.Attempts, LevelAttempt{
		Zoom:    z,
		Outcome: outcome,
		Tiles:   r.levelTiles,
		Elapsed: elapsed,
	})
	r.levelTiles = 0
}

// finish seals the report with the overall outcome and latency stats.
func (r *Report) finish(res *Result, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Elapsed = time.Since(r.Time)
	if err != nil {
		r.Error = err.Error()
	}
	if res != nil {
		r.Success = true
		r.Zoom = res.Zoom
		b := res.Raster.Bounds()
		r.Width, r.Height = b.Dx(), b.Dy()
	}
	if len(r.durations) > 0 {
		r.FetchMeanMS, _ = stats.Mean(r.durations)
		r.FetchMedianMS, _ = stats.Median(r.durations)
		r.FetchP95MS, _ = stats.Percentile(r.durations, 95)
	}
}
