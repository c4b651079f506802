package fetch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rotblauer/orthod/tiles"
)

// Null returns the canonical placeholder tile, fetching it at most once
// per source. Concurrent callers share a single flight, and the result is
// held for the life of the process. The null quadkey addresses a location
// and depth the service is known not to cover, so the response is what the
// service hands back for anything it doesn't have.
func (s *HTTPSource) Null(ctx context.Context) ([]byte, error) {
	if b := s.null.Load(); b != nil {
		return *b, nil
	}
	v, err, _ := s.flight.Do("null", func() (interface{}, error) {
		qk := tiles.QuadKey(s.cfg.NullKey)
		slog.Info("Fetching null tile", "quadkey", qk)
		b, err := s.Fetch(ctx, qk)
		if err != nil {
			return nil, fmt.Errorf("null tile: %w", err)
		}
		s.null.Store(&b)
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}
