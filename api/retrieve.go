package api

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/rotblauer/orthod/cache"
	"github.com/rotblauer/orthod/events"
	"github.com/rotblauer/orthod/flat"
	"github.com/rotblauer/orthod/geo"
	"github.com/rotblauer/orthod/metrics/influxdb"
	"github.com/rotblauer/orthod/names"
	"github.com/rotblauer/orthod/params"
	"github.com/rotblauer/orthod/retriever"
	"github.com/rotblauer/orthod/state"
	"github.com/rotblauer/orthod/tiles"
)

// Retrieval is the outcome of one imagery request.
type Retrieval struct {
	Record *state.Record
	JPEG   []byte
}

// Retrieve finds the best available imagery for box, persists it,
// and remembers it. Identical concurrent requests are coalesced,
// and identical repeats inside the TTL window are answered from
// the stored image instead of re-running the level scan.
func (o *Ortho) Retrieve(ctx context.Context, box geo.BoundingBox) (*Retrieval, error) {
	return o.RetrieveZoom(ctx, box, o.Conf.Retriever.MaxZoom, o.Conf.Retriever.MinZoom)
}

// RetrieveZoom bounds the level scan for this request only.
func (o *Ortho) RetrieveZoom(ctx context.Context, box geo.BoundingBox, maxZoom, minZoom tiles.Zoom) (*Retrieval, error) {
	rc := *o.Conf.Retriever
	rc.MaxZoom, rc.MinZoom = maxZoom, minZoom

	id, err := state.RequestID(o.Conf.Source.ID, box, maxZoom, minZoom)
	if err != nil {
		o.logger.Warn("Failed to hash request", "error", err)
	}
	if id == "" {
		return o.retrieve(ctx, id, box, &rc)
	}
	if hit := cache.GetLastRetrieved(id); hit != nil {
		if ret, rerr := replay(hit); rerr == nil {
			o.logger.Debug("Answering retrieval from cache", "id", id, "name", hit.Name)
			return ret, nil
		}
		// The stored image went away underneath us. Retrieve fresh.
	}
	v, err, shared := o.flight.Do(id, func() (interface{}, error) {
		return o.retrieve(ctx, id, box, &rc)
	})
	if shared {
		o.logger.Debug("Coalesced concurrent retrieval", "id", id)
	}
	if err != nil {
		return nil, err
	}
	return v.(*Retrieval), nil
}

// replay re-reads a cached record's stored image, refetching from S3
// when the local copy has been pruned.
func replay(rec *state.Record) (*Retrieval, error) {
	b, err := os.ReadFile(rec.Path)
	if err == nil {
		return &Retrieval{Record: rec, JPEG: b}, nil
	}
	if rec.S3Key == "" || params.AWS_BUCKETNAME == "" {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(rec.Path), 0770); err != nil {
		return nil, err
	}
	f, err := os.Create(rec.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if err := state.DownloadImageS3(f, params.AWS_BUCKETNAME, rec.S3Key); err != nil {
		return nil, err
	}
	if err := f.Sync(); err != nil {
		return nil, err
	}
	b, err = os.ReadFile(rec.Path)
	if err != nil {
		return nil, err
	}
	return &Retrieval{Record: rec, JPEG: b}, nil
}

func (o *Ortho) retrieve(ctx context.Context, id string, box geo.BoundingBox, rc *params.RetrieverConfig) (*Retrieval, error) {
	if _, err := o.WithState(false); err != nil {
		return nil, err
	}
	src, err := o.Source(ctx)
	if err != nil {
		return nil, err
	}

	r := retriever.New(src, rc)
	r.OnTile = func(ev retriever.TileEvent) {
		events.TileFeed.Send(ev)
	}

	res, report, retrieveErr := r.Retrieve(ctx, box)

	rec := &state.Record{
		ID:     id,
		Source: o.Conf.Source.ID,
		Report: report,
		Name:   o.Namer().ForBox(box),
	}

	var jpeg []byte
	var persistErr error
	if retrieveErr == nil {
		jpeg, persistErr = o.persistImage(res, rec)
		if persistErr != nil {
			o.logger.Error("Failed to persist imagery", "error", persistErr)
		}
	}

	// The record lands regardless of outcome, then the feed fires.
	if werr := o.State.WriteRecord(rec); werr != nil {
		o.logger.Error("Failed to write retrieval record", "error", werr)
	}
	events.RetrievalFeed.Send(report)
	if influxdb.Enabled() {
		go func() {
			if xerr := influxdb.ExportRetrievals([]*state.Record{rec}); xerr != nil {
				o.logger.Warn("Failed to export retrieval", "error", xerr)
			}
		}()
	}

	if retrieveErr != nil {
		return nil, retrieveErr
	}
	if persistErr != nil {
		return nil, persistErr
	}
	if id != "" {
		cache.SetLastRetrieved(id, rec)
	}
	return &Retrieval{Record: rec, JPEG: jpeg}, nil
}

// persistImage encodes the composite and writes it under
// <datadir>/imagery, plus S3 when a bucket is configured.
func (o *Ortho) persistImage(res *retriever.Result, rec *state.Record) ([]byte, error) {
	buf := bytes.NewBuffer([]byte{})
	if err := res.Raster.EncodeJPEG(buf); err != nil {
		return nil, err
	}
	// Joins mutates its receiver, so branch off a fresh Flat
	// rather than bending the store's root.
	dir := flat.NewFlatWithRoot(o.State.Flat.Path()).Joins(params.ImageryDirName)
	if err := dir.MkdirAll(); err != nil {
		return nil, err
	}
	filename := names.ImageFilename(res.Zoom, rec.Name)
	path, err := dir.WriteFile(filename, buf.Bytes())
	if err != nil {
		return nil, err
	}
	rec.Path = path
	o.logger.Info("Stored imagery", "path", path,
		"size", humanize.Bytes(uint64(buf.Len())))

	if params.AWS_BUCKETNAME != "" {
		key := state.S3KeyForImage(filename)
		if err := state.UploadImageS3(key, buf.Bytes()); err != nil {
			o.logger.Warn("Failed to upload imagery to S3", "error", err)
		} else {
			rec.S3Key = key
		}
	}
	return buf.Bytes(), nil
}
