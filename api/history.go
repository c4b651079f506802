package api

import (
	"context"

	"github.com/rotblauer/orthod/flat"
	"github.com/rotblauer/orthod/params"
	"github.com/rotblauer/orthod/state"
	"github.com/rotblauer/orthod/stream"
)

// History returns stored retrieval records, newest first.
// limit <= 0 means all. onlySuccess drops failed attempts.
func (o *Ortho) History(ctx context.Context, limit int, onlySuccess bool) ([]*state.Record, error) {
	if o.State == nil && !datadirHasDB(o.Conf.DataDir) {
		return []*state.Record{}, nil
	}
	s, err := o.WithState(true)
	if err != nil {
		return nil, err
	}
	records, err := s.ReadRecords(limit)
	if err != nil {
		return nil, err
	}
	if !onlySuccess {
		return records, nil
	}
	return stream.Collect(ctx, stream.Filter(ctx, func(r *state.Record) bool {
		return r.Report != nil && r.Report.Success
	}, stream.Slice(ctx, records))), nil
}

// LastRetrieved returns the most recent retrieval record in datadir, if any.
func LastRetrieved(datadir string) (*state.Record, error) {
	if !datadirHasDB(datadir) {
		return nil, nil
	}
	s, err := state.NewStore(datadir, true)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	records, err := s.ReadRecords(1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

// A read-only bbolt open demands an existing file.
func datadirHasDB(datadir string) bool {
	return flat.NewFlatWithRoot(datadir).Joins(params.StateDBName).Exists()
}
