package api

import (
	"context"
	"log/slog"
	"sync"

	"github.com/rotblauer/orthod/fetch"
	"github.com/rotblauer/orthod/names"
	"github.com/rotblauer/orthod/params"
	"github.com/rotblauer/orthod/rgeo"
	"github.com/rotblauer/orthod/state"
	"golang.org/x/sync/singleflight"
)

// Ortho is the API representation of one aerial imagery source.
// It does not hold imagery. It CAN hold state about the source,
// where source data can come from some context, like a CLI flag,
// a URL parameter, or even an environment value. It wires the
// fetch chain, the retriever, and the datadir together behind
// the operations the CLI and the web daemon expose.
type Ortho struct {
	Conf *params.OrthoConfig

	// State is the datadir handle. Opened lazily via WithState.
	State *state.Store

	logger *slog.Logger

	sourceOnce sync.Once
	source     fetch.Source
	sourceErr  error
	mem        *fetch.MemCache

	namerOnce sync.Once
	namer     *names.Namer

	// flight coalesces concurrent identical retrieval requests.
	flight singleflight.Group
}

func NewOrtho(conf *params.OrthoConfig) *Ortho {
	if conf == nil {
		conf = params.DefaultOrthoConfig()
	}
	return &Ortho{
		Conf:   conf,
		logger: slog.With("d", "api", "source", conf.Source.ID),
	}
}

// WithState opens the datadir state. Stateful. Blocking. Locking.
// A writable conn holds the file lock until Close. The first open
// wins; a later call with a different mode gets the existing handle.
func (o *Ortho) WithState(readOnly bool) (*state.Store, error) {
	if o.State != nil {
		return o.State, nil
	}
	s, err := state.NewStore(o.Conf.DataDir, readOnly)
	if err != nil {
		return nil, err
	}
	o.State = s
	return s, nil
}

// Namer freezes the geocoder in use at first naming. Initialize
// rgeo before the first retrieval to get place-flavored names.
func (o *Ortho) Namer() *names.Namer {
	o.namerOnce.Do(func() {
		o.namer = names.NewNamer(rgeo.R())
	})
	return o.namer
}

// Source assembles the fetch chain on first use:
// HTTP under the rate limiter, wrapped by the persistent tile cache
// when enabled, wrapped by the in-memory TTL cache when enabled.
func (o *Ortho) Source(ctx context.Context) (fetch.Source, error) {
	o.sourceOnce.Do(func() {
		if derr := fetch.Discover(ctx, o.Conf.Source, nil); derr != nil {
			o.logger.Warn("Source metadata discovery failed, using configured template", "error", derr)
		}
		var src fetch.Source = fetch.NewHTTPSource(o.Conf.Source, o.Conf.Fetch)
		if o.Conf.Cache.Persistent {
			s, err := o.WithState(false)
			if err != nil {
				o.sourceErr = err
				return
			}
			src = fetch.NewDBCache(src, s)
		}
		if o.Conf.Cache.MemTTL > 0 {
			mem := fetch.NewMemCache(src, o.Conf.Cache.MemTTL)
			o.mem = mem
			src = mem
		}
		o.source = src
	})
	return o.source, o.sourceErr
}

func (o *Ortho) Close() {
	if o.mem != nil {
		o.mem.Stop()
	}
	if o.State != nil {
		if err := o.State.Close(); err != nil {
			o.logger.Error("Failed to close state", "error", err)
		}
	}
}
