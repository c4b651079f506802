package api

import (
	"context"
	"errors"

	"github.com/rotblauer/orthod/raster"
	"github.com/rotblauer/orthod/tiles"
)

// ErrTileUnavailable marks a tile the source answered with its
// placeholder instead of imagery.
var ErrTileUnavailable = errors.New("tile unavailable")

// Tile fetches one raw tile through the configured source chain.
// Placeholder answers surface as ErrTileUnavailable.
func (o *Ortho) Tile(ctx context.Context, qk tiles.QuadKey) ([]byte, error) {
	if _, _, err := tiles.QuadKeyToTile(qk); err != nil {
		return nil, err
	}
	src, err := o.Source(ctx)
	if err != nil {
		return nil, err
	}
	b, err := src.Fetch(ctx, qk)
	if err != nil {
		return nil, err
	}
	null, err := src.Null(ctx)
	if err != nil {
		return nil, err
	}
	if raster.Equal(b, null) {
		return nil, ErrTileUnavailable
	}
	return b, nil
}
