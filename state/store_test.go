package state

import (
	"testing"
	"time"

	"github.com/rotblauer/orthod/geo"
	"github.com/rotblauer/orthod/params"
	"github.com/rotblauer/orthod/retriever"
	"github.com/rotblauer/orthod/tiles"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), false)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

func testRecord(id string, at time.Time, success bool) *Record {
	return &Record{
		ID:     id,
		Source: "ve-aerial",
		Report: &retriever.Report{
			Box:     geo.NewBoundingBox(46.88, -114.00, 46.87, -113.99),
			Time:    at,
			Success: success,
			Zoom:    10,
		},
	}
}

func TestStoreRecords(t *testing.T) {
	s := testStore(t)

	base := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"aaa", "bbb", "ccc"} {
		rec := testRecord(id, base.Add(time.Duration(i)*time.Second), i%2 == 0)
		if err := s.WriteRecord(rec); err != nil {
			t.Fatal(err)
		}
	}

	records, err := s.ReadRecords(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("read %d records, want 3", len(records))
	}
	// Newest first.
	for i, want := range []string{"ccc", "bbb", "aaa"} {
		if records[i].ID != want {
			t.Fatalf("record %d is %q, want %q", i, records[i].ID, want)
		}
	}

	limited, err := s.ReadRecords(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 || limited[0].ID != "ccc" {
		t.Fatalf("unexpected limited read: %+v", limited)
	}

	rec, err := s.ReadRecord("bbb")
	if err != nil {
		t.Fatal(err)
	}
	if rec == nil || rec.ID != "bbb" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	missing, err := s.ReadRecord("zzz")
	if err != nil {
		t.Fatal(err)
	}
	if missing != nil {
		t.Fatalf("unexpected record: %+v", missing)
	}

	// Every write also landed in the NDJSON log.
	r, err := s.Flat.NamedGZReader(params.RetrievalsLogGZFileName)
	if err != nil {
		t.Fatal(err)
	}
	defer r.MaybeClose()
	n, err := r.LineCount()
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Fatalf("log has %d lines, want 3", n)
	}
}

func TestTileCache(t *testing.T) {
	s := testStore(t)

	got, err := s.ReadTile(10, "0213")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Fatalf("unexpected hit: %v", got)
	}

	if err := s.WriteTile(10, "0213021302", []byte("ten")); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteTile(10, "0213021303", []byte("ten2")); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteTile(9, "021302130", []byte("nine")); err != nil {
		t.Fatal(err)
	}

	got, err = s.ReadTile(10, "0213021302")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "ten" {
		t.Fatalf("unexpected tile: %s", got)
	}

	stats, err := s.TileCacheStats()
	if err != nil {
		t.Fatal(err)
	}
	if stats["10"] != 2 || stats["9"] != 1 {
		t.Fatalf("unexpected stats: %v", stats)
	}
}

func TestKV(t *testing.T) {
	s := testStore(t)
	if err := s.WriteKV([]byte("template"), []byte("http://example.com/{q}")); err != nil {
		t.Fatal(err)
	}
	got, err := s.ReadKV([]byte("template"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "http://example.com/{q}" {
		t.Fatalf("unexpected value: %s", got)
	}

	empty, err := s.ReadKV([]byte("nope"))
	if err != nil {
		t.Fatal(err)
	}
	if len(empty) != 0 {
		t.Fatalf("unexpected value: %s", empty)
	}
}

func TestRequestID(t *testing.T) {
	box := geo.NewBoundingBox(46.88, -114.00, 46.87, -113.99)
	a, err := RequestID("ve-aerial", box, tiles.MaxZoom, tiles.MinZoom)
	if err != nil {
		t.Fatal(err)
	}
	b, err := RequestID("ve-aerial", box, tiles.MaxZoom, tiles.MinZoom)
	if err != nil {
		t.Fatal(err)
	}
	if a == "" || a != b {
		t.Fatalf("ids not stable: %q vs %q", a, b)
	}

	shifted, err := RequestID("ve-aerial", geo.NewBoundingBox(46.89, -114.00, 46.87, -113.99), tiles.MaxZoom, tiles.MinZoom)
	if err != nil {
		t.Fatal(err)
	}
	if shifted == a {
		t.Fatal("different boxes, same id")
	}

	capped, err := RequestID("ve-aerial", box, 12, tiles.MinZoom)
	if err != nil {
		t.Fatal(err)
	}
	if capped == a {
		t.Fatal("different zoom bounds, same id")
	}
}
