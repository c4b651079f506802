// Package retriever finds the finest zoom level that yields a complete,
// size-bounded composite of a bounding box, stitches the tiles, and crops
// the result to the box's exact pixel extent.
//
// The scan runs finest to coarsest. A level either composes fully or is
// abandoned at its first missing tile, and abandonment recovers by trying
// the next coarser level. Only a degenerate box or total exhaustion reach
// the caller as errors.
package retriever

import (
	"context"
	"image"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/rotblauer/orthod/fetch"
	"github.com/rotblauer/orthod/geo"
	"github.com/rotblauer/orthod/params"
	"github.com/rotblauer/orthod/raster"
	"github.com/rotblauer/orthod/tiles"
)

// Result is a successful retrieval: the cropped composite and the zoom
// level it was composed at.
type Result struct {
	Raster *raster.Raster
	Zoom   tiles.Zoom
}

// TileEvent describes one tile decision during a retrieval.
type TileEvent struct {
	Time      time.Time     `json:"time"`
	QuadKey   tiles.QuadKey `json:"quadkey"`
	Zoom      tiles.Zoom    `json:"zoom"`
	Valid     bool          `json:"valid"`
	Error     string        `json:"error,omitempty"`
	ElapsedMS int64         `json:"elapsed_ms"`
}

// Retriever drives retrievals against one tile source.
type Retriever struct {
	Config *params.RetrieverConfig
	Source fetch.Source

	// OnTile observes every tile decision, when set.
	// With Config.Workers > 1 it is called from multiple goroutines.
	OnTile func(TileEvent)

	logger *slog.Logger
}

func New(source fetch.Source, config *params.RetrieverConfig) *Retriever {
	if config == nil {
		config = params.DefaultRetrieverConfig()
	}
	return &Retriever{
		Config: config,
		Source: source,
		logger: slog.With("d", "retriever"),
	}
}

// A retrieval is a state machine over candidate levels; tryLevel reports
// one of these and Retrieve transitions on it.
type levelOutcome int

const (
	// levelComposed: every tile fetched and valid; the retrieval succeeds here.
	levelComposed levelOutcome = iota
	// levelTooLarge: pixel area over the cap; skipped without fetching.
	levelTooLarge
	// levelIncomplete: a missing or placeholder tile; the level is abandoned.
	levelIncomplete
)

func (o levelOutcome) String() string {
	switch o {
	case levelComposed:
		return OutcomeComposed
	case levelTooLarge:
		return OutcomeTooLarge
	case levelIncomplete:
		return OutcomeIncomplete
	}
	return "unknown"
}

// grid is the pixel and tile extent of a box at one level,
// pixel corners normalized min/max.
type grid struct {
	zoom               tiles.Zoom
	px1, py1, px2, py2 int
	tx1, ty1, tx2, ty2 int
}

func gridAt(box geo.BoundingBox, z tiles.Zoom) grid {
	p1 := tiles.LatLonToPixel(box.Lat1, box.Lon1, z)
	p2 := tiles.LatLonToPixel(box.Lat2, box.Lon2, z)
	g := grid{zoom: z}
	g.px1, g.px2 = min(p1.X, p2.X), max(p1.X, p2.X)
	g.py1, g.py2 = min(p1.Y, p2.Y), max(p1.Y, p2.Y)
	t1 := tiles.PixelToTile(tiles.Pixel{X: g.px1, Y: g.py1})
	t2 := tiles.PixelToTile(tiles.Pixel{X: g.px2, Y: g.py2})
	g.tx1, g.ty1 = t1.X, t1.Y
	g.tx2, g.ty2 = t2.X, t2.Y
	return g
}

func (g grid) width() int  { return g.px2 - g.px1 }
func (g grid) height() int { return g.py2 - g.py1 }

// degenerate means the box collapses to a line or point at this level.
func (g grid) degenerate() bool { return g.width() <= 1 || g.height() <= 1 }

func (g grid) area() int64 { return int64(g.width()) * int64(g.height()) }
func (g grid) cols() int   { return g.tx2 - g.tx1 + 1 }
func (g grid) rows() int   { return g.ty2 - g.ty1 + 1 }

// Retrieve returns the finest complete raster for the box, cropped to its
// exact pixel extent, with the zoom level used. The Report is always
// non-nil, failure included.
func (r *Retriever) Retrieve(ctx context.Context, box geo.BoundingBox) (*Result, *Report, error) {
	report := newReport(box)
	meter := newTileMeter(params.MetricsLogInterval)
	defer meter.stop()

	maxZ, minZ := r.Config.MaxZoom, r.Config.MinZoom
	if maxZ > tiles.MaxZoom {
		maxZ = tiles.MaxZoom
	}
	if minZ < tiles.MinZoom {
		minZ = tiles.MinZoom
	}
	r.logger.Info("Retrieving imagery", "box", box.String(), "maxzoom", maxZ, "minzoom", minZ)

	for level := maxZ; level >= minZ; level-- {
		g := gridAt(box, level)
		if g.degenerate() {
			// Coarser levels only collapse the box further; no point scanning them.
			report.finish(nil, ErrDegenerateBoundingBox)
			return nil, report, ErrDegenerateBoundingBox
		}

		start := time.Now()
		outcome, composite, err := r.tryLevel(ctx, g, meter, report)
		if err != nil {
			report.finish(nil, err)
			return nil, report, err
		}
		report.attempt(level, outcome.String(), time.Since(start))

		switch outcome {
		case levelTooLarge:
			r.logger.Debug("Level too large", "level", level, "area", g.area(), "max", r.Config.MaxPixels)
		case levelIncomplete:
			r.logger.Debug("Level incomplete", "level", level, "grid", g.cols()*g.rows())
		case levelComposed:
			cropped := composite.Crop(cropRect(g))
			res := &Result{Raster: cropped, Zoom: level}
			report.finish(res, nil)
			r.logger.Info("Retrieved imagery", "level", level,
				"width", report.Width, "height", report.Height,
				"tiles", report.TileCount, "elapsed", report.Elapsed.Round(time.Millisecond))
			return res, report, nil
		}
	}

	report.finish(nil, ErrNoAvailableImagery)
	r.logger.Warn("Retrieval exhausted all levels", "box", box.String())
	return nil, report, ErrNoAvailableImagery
}

// tryLevel attempts one complete composite. A non-nil error is fatal to the
// whole retrieval (context cancellation, null tile unavailable); everything
// recoverable is an outcome.
func (r *Retriever) tryLevel(ctx context.Context, g grid, meter *tileMeter, report *Report) (levelOutcome, *raster.Raster, error) {
	if g.area() > r.Config.MaxPixels {
		return levelTooLarge, nil, nil
	}

	// The placeholder reference decides validity for every fetch below.
	null, err := r.Source.Null(ctx)
	if err != nil {
		return levelIncomplete, nil, err
	}

	composite := raster.New(g.cols()*tiles.TileDim, g.rows()*tiles.TileDim)
	for ty := g.ty1; ty <= g.ty2; ty++ {
		complete, err := r.fetchRow(ctx, g, ty, null, composite, meter, report)
		if err != nil {
			return levelIncomplete, nil, err
		}
		if !complete {
			// Remaining rows are pointless; the level is already lost.
			return levelIncomplete, nil, nil
		}
	}
	return levelComposed, composite, nil
}

// fetchRow fills one tile row of the composite. It reports false as soon
// as any tile in the row turns out missing or invalid.
func (r *Retriever) fetchRow(ctx context.Context, g grid, ty int, null []byte, composite *raster.Raster, meter *tileMeter, report *Report) (bool, error) {
	if r.Config.Workers > 1 {
		return r.fetchRowConcurrent(ctx, g, ty, null, composite, meter, report)
	}
	y := (ty - g.ty1) * tiles.TileDim
	for tx := g.tx1; tx <= g.tx2; tx++ {
		img, ok, err := r.fetchTile(ctx, g.zoom, tiles.Tile{X: tx, Y: ty}, null, meter, report)
		if err != nil {
			return false, err
		}
		if !ok {
			// Short-circuit the rest of the row.
			return false, nil
		}
		composite.Paste(img, (tx-g.tx1)*tiles.TileDim, y)
	}
	return true, nil
}

// fetchRowConcurrent is fetchRow with up to Config.Workers fetches in
// flight. Tiles land in a per-row slice and paste after the join, so the
// composite only ever takes whole, valid rows.
func (r *Retriever) fetchRowConcurrent(ctx context.Context, g grid, ty int, null []byte, composite *raster.Raster, meter *tileMeter, report *Report) (bool, error) {
	y := (ty - g.ty1) * tiles.TileDim
	n := g.cols()
	imgs := make([]image.Image, n)
	bad := atomic.Bool{}
	sem := semaphore.NewWeighted(int64(r.Config.Workers))

	grp, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		i := i
		grp.Go(func() error {
			defer sem.Release(1)
			if bad.Load() {
				// The row is already lost; let in-flight work drain.
				return nil
			}
			img, ok, err := r.fetchTile(gctx, g.zoom, tiles.Tile{X: g.tx1 + i, Y: ty}, null, meter, report)
			if err != nil {
				return err
			}
			if !ok {
				bad.Store(true)
				return nil
			}
			imgs[i] = img
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if bad.Load() {
		return false, nil
	}
	for i, img := range imgs {
		composite.Paste(img, i*tiles.TileDim, y)
	}
	return true, nil
}

// fetchTile returns the decoded tile and whether it is usable. A transport
// failure and a served placeholder read identically: not usable. A non-nil
// error means the context is done.
func (r *Retriever) fetchTile(ctx context.Context, z tiles.Zoom, t tiles.Tile, null []byte, meter *tileMeter, report *Report) (image.Image, bool, error) {
	qk := tiles.TileToQuadKey(t, z)
	start := time.Now()
	b, err := r.Source.Fetch(ctx, qk)
	elapsed := time.Since(start)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, false, ctxErr
		}
		report.tile(0, elapsed)
		r.logger.Warn("Tile fetch failed", "quadkey", qk, "error", err)
		r.emit(TileEvent{Time: time.Now(), QuadKey: qk, Zoom: z, Error: err.Error(), ElapsedMS: elapsed.Milliseconds()})
		return nil, false, nil
	}
	meter.mark(qk, len(b))
	report.tile(len(b), elapsed)

	if raster.Equal(b, null) {
		r.logger.Debug("Tile is placeholder", "quadkey", qk)
		r.emit(TileEvent{Time: time.Now(), QuadKey: qk, Zoom: z, ElapsedMS: elapsed.Milliseconds()})
		return nil, false, nil
	}
	img, err := raster.Decode(b)
	if err != nil {
		r.logger.Warn("Tile decode failed", "quadkey", qk, "error", err)
		r.emit(TileEvent{Time: time.Now(), QuadKey: qk, Zoom: z, Error: err.Error(), ElapsedMS: elapsed.Milliseconds()})
		return nil, false, nil
	}
	r.emit(TileEvent{Time: time.Now(), QuadKey: qk, Zoom: z, Valid: true, ElapsedMS: elapsed.Milliseconds()})
	return img, true, nil
}

// cropRect maps the box's pixel rectangle into composite coordinates.
// Max is exclusive, so the crop is exactly width() x height().
func cropRect(g grid) image.Rectangle {
	origin := tiles.TileToPixel(tiles.Tile{X: g.tx1, Y: g.ty1})
	return image.Rect(g.px1-origin.X, g.py1-origin.Y, g.px2-origin.X, g.py2-origin.Y)
}

func (r *Retriever) emit(ev TileEvent) {
	if r.OnTile != nil {
		r.OnTile(ev)
	}
}
