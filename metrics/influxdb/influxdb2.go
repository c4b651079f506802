package influxdb

import (
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/rotblauer/orthod/params"
	"github.com/rotblauer/orthod/state"
)

// Enabled reports whether an InfluxDB target is configured.
// Configure with INFLUXDB_URL, INFLUXDB_TOKEN, INFLUXDB_ORG, INFLUXDB_BUCKET.
func Enabled() bool {
	return params.INFLUXDB_URL != ""
}

// ExportRetrievals posts retrieval records to an InfluxDB Write API.
// Because it accepts a slice, use batches. The Write API will buffer and flush.
// The last error encountered is returned.
func ExportRetrievals(records []*state.Record) error {
	if !Enabled() {
		return nil
	}
	opts := influxdb2.DefaultOptions()
	opts.SetPrecision(time.Second)
	client := influxdb2.NewClientWithOptions(params.INFLUXDB_URL, params.INFLUXDB_TOKEN, opts)
	writeAPI := client.WriteAPI(params.INFLUXDB_ORG, params.INFLUXDB_BUCKET)

	// Errors returns a channel for reading errors which occurs during async writes.
	// Must be called before performing any writes for errors to be collected.
	// The chan is unbuffered and must be drained or the writer will block.
	// https://github.com/influxdata/influxdb-client-go?tab=readme-ov-file#reading-async-errors
	errorsCh := writeAPI.Errors()
	var err error
	wait := sync.WaitGroup{}
	wait.Add(1)
	go func() {
		defer wait.Done()
		for e := range errorsCh {
			if e != nil {
				err = e
			}
		}
	}()

	for _, record := range records {
		if record == nil || record.Report == nil {
			continue
		}
		report := record.Report
		p := influxdb2.NewPointWithMeasurement("retrieval").
			SetTime(report.Time).
			AddTag("source", string(record.Source)).
			AddTag("name", record.Name).
			AddField("success", report.Success).
			AddField("zoom", int(report.Zoom)).
			AddField("width", report.Width).
			AddField("height", report.Height).
			AddField("levels_tried", len(report.Attempts)).
			AddField("tile_count", report.TileCount).
			AddField("tile_bytes", report.TileBytes).
			AddField("elapsed_ms", report.Elapsed.Milliseconds()).
			AddField("fetch_mean_ms", report.FetchMeanMS).
			AddField("fetch_median_ms", report.FetchMedianMS).
			AddField("fetch_p95_ms", report.FetchP95MS)

		lat, lon := report.Box.Center()
		p.AddField("lat", lat)
		p.AddField("lon", lon)

		if report.Error != "" {
			p.AddTag("error", report.Error)
		}
		if record.S3Key != "" {
			p.AddField("s3", 1)
		}
		writeAPI.WritePoint(p)
	}
	writeAPI.Flush()
	client.Close()
	wait.Wait()
	return err
}
