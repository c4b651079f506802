// Package state owns the datadir: a bbolt database for retrieval records,
// the persistent tile cache, and misc KV, plus the flat-file side
// (imagery, the gzipped NDJSON retrieval log).
package state

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"github.com/rotblauer/orthod/flat"
	"github.com/rotblauer/orthod/params"
	"github.com/rotblauer/orthod/tiles"
	"go.etcd.io/bbolt"
)

type Store struct {
	DB   *bbolt.DB
	Flat *flat.Flat

	rOnly bool
}

// NewStore opens (creating if needed) the datadir and its database.
// Opening a writable DB conn will block all other writers and readers
// with essentially a file lock/flock.
func NewStore(datadir string, readOnly bool) (*Store, error) {
	f := flat.NewFlatWithRoot(datadir)
	if err := f.MkdirAll(); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(filepath.Join(f.Path(), params.StateDBName),
		0600, &bbolt.Options{
			ReadOnly: readOnly,
			// Bail rather than block forever on another process's flock.
			Timeout: 3 * time.Second,
		})
	if err != nil {
		return nil, err
	}
	return &Store{DB: db, Flat: f, rOnly: readOnly}, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

func (s *Store) storeKV(bucket, key, data []byte) error {
	if key == nil {
		return fmt.Errorf("storeKV: nil key")
	}
	if data == nil {
		return fmt.Errorf("storeKV: nil data")
	}
	return s.DB.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucket)
		if err != nil {
			return err
		}
		return b.Put(key, data)
	})
}

func (s *Store) readKV(bucket, key []byte) ([]byte, error) {
	buf := bytes.NewBuffer([]byte{})
	err := s.DB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		// Gotcha! The value returned by Get is only valid in the scope of the transaction.
		got := b.Get(key)
		if got == nil {
			return nil
		}
		_, err := buf.Write(got)
		return err
	})
	return buf.Bytes(), err
}

func (s *Store) WriteKV(key, value []byte) error {
	return s.storeKV(params.MetaBucket, key, value)
}

func (s *Store) ReadKV(key []byte) ([]byte, error) {
	return s.readKV(params.MetaBucket, key)
}

// recordKeyLayout is RFC3339 with a fixed-width fraction, so keys sort
// chronologically as bytes.
const recordKeyLayout = "2006-01-02T15:04:05.000000000Z0700"

// recordKey orders records chronologically in the bucket, with the
// request hash breaking same-instant ties.
func recordKey(rec *Record) []byte {
	return []byte(rec.Report.Time.UTC().Format(recordKeyLayout) + "_" + rec.ID)
}

// WriteRecord persists a retrieval record to the database and appends it
// to the NDJSON log.
func (s *Store) WriteRecord(rec *Record) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := s.storeKV(params.RetrievalsBucket, recordKey(rec), b); err != nil {
		return err
	}
	if err := s.appendLog(b); err != nil {
		slog.Error("Failed to append retrieval log", "error", err)
		return err
	}
	slog.Debug("Stored retrieval record", "id", rec.ID, "success", rec.Report.Success)
	return nil
}

func (s *Store) appendLog(line []byte) error {
	w, err := s.Flat.NewGZFileWriter(params.RetrievalsLogGZFileName, nil)
	if err != nil {
		return err
	}
	defer w.MaybeClose()
	if _, err := w.Write(append(line, '\n')); err != nil {
		return err
	}
	return w.Close()
}

// ReadRecords returns up to limit records, newest first.
// limit <= 0 means all of them.
func (s *Store) ReadRecords(limit int) ([]*Record, error) {
	records := []*Record{}
	err := s.DB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(params.RetrievalsBucket)
		if b == nil {
			return nil
		}
		c := b.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			rec := &Record{}
			if err := json.Unmarshal(v, rec); err != nil {
				return fmt.Errorf("record %q: %w", k, err)
			}
			records = append(records, rec)
			if limit > 0 && len(records) >= limit {
				break
			}
		}
		return nil
	})
	return records, err
}

// ReadRecord returns the most recent record with the given request id,
// nil if none exists.
func (s *Store) ReadRecord(id string) (*Record, error) {
	var rec *Record
	err := s.DB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(params.RetrievalsBucket)
		if b == nil {
			return nil
		}
		c := b.Cursor()
		suffix := []byte("_" + id)
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if !bytes.HasSuffix(k, suffix) {
				continue
			}
			rec = &Record{}
			return json.Unmarshal(v, rec)
		}
		return nil
	})
	return rec, err
}

func zoomBucket(z tiles.Zoom) []byte {
	return []byte(strconv.Itoa(int(z)))
}

// WriteTile caches raw tile bytes under tilecache/<zoom>/<quadkey>.
func (s *Store) WriteTile(z tiles.Zoom, qk tiles.QuadKey, b []byte) error {
	return s.DB.Update(func(tx *bbolt.Tx) error {
		root, err := tx.CreateBucketIfNotExists(params.TileCacheBucketRoot)
		if err != nil {
			return err
		}
		bucket, err := root.CreateBucketIfNotExists(zoomBucket(z))
		if err != nil {
			return err
		}
		return bucket.Put([]byte(qk), b)
	})
}

// ReadTile returns cached tile bytes, nil on a miss.
func (s *Store) ReadTile(z tiles.Zoom, qk tiles.QuadKey) ([]byte, error) {
	var out []byte
	err := s.DB.View(func(tx *bbolt.Tx) error {
		root := tx.Bucket(params.TileCacheBucketRoot)
		if root == nil {
			return nil
		}
		bucket := root.Bucket(zoomBucket(z))
		if bucket == nil {
			return nil
		}
		got := bucket.Get([]byte(qk))
		if got == nil {
			return nil
		}
		out = make([]byte, len(got))
		copy(out, got)
		return nil
	})
	return out, err
}

// TileCacheStats counts cached tiles per zoom level.
func (s *Store) TileCacheStats() (map[string]int, error) {
	stats := map[string]int{}
	err := s.DB.View(func(tx *bbolt.Tx) error {
		root := tx.Bucket(params.TileCacheBucketRoot)
		if root == nil {
			return nil
		}
		return root.ForEachBucket(func(k []byte) error {
			stats[string(k)] = root.Bucket(k).Stats().KeyN
			return nil
		})
	})
	return stats, err
}
