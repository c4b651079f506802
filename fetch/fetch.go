// Package fetch gets raw tile bytes out of a quadkey-addressed imagery service.
//
// The service does not 404 missing tiles. It serves a placeholder image with
// status 200, so absence is decided by comparing fetched bytes against the
// canonical placeholder (the null tile, see Null). Transport failures are
// returned as errors and read the same as absence to callers that only care
// whether a usable tile came back.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/rotblauer/orthod/params"
	"github.com/rotblauer/orthod/tiles"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// Source fetches raw encoded tiles by quadkey.
type Source interface {
	// Fetch returns the raw encoded tile for qk. A served placeholder
	// comes back like any other tile. Errors are transport level.
	Fetch(ctx context.Context, qk tiles.QuadKey) ([]byte, error)

	// Null returns the canonical placeholder tile.
	Null(ctx context.Context) ([]byte, error)
}

// HTTPSource fetches tiles over HTTP from a templated URL,
// rotating subdomains round robin.
type HTTPSource struct {
	cfg     *params.TileSourceConfig
	client  *http.Client
	limiter *rate.Limiter
	sub     atomic.Uint32

	flight singleflight.Group
	null   atomic.Pointer[[]byte]
}

func NewHTTPSource(cfg *params.TileSourceConfig, fc *params.FetchConfig) *HTTPSource {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if fc.RPS > 0 {
		burst := fc.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(fc.RPS), burst)
	}
	return &HTTPSource{
		cfg:     cfg,
		client:  &http.Client{Timeout: fc.Timeout},
		limiter: limiter,
	}
}

// URL builds the request URL for a quadkey, substituting {q} with the
// quadkey and {s} with the next subdomain in rotation.
func (s *HTTPSource) URL(qk tiles.QuadKey) string {
	u := strings.Replace(s.cfg.URLTemplate, "{q}", qk.String(), 1)
	if len(s.cfg.Subdomains) > 0 {
		n := s.sub.Add(1)
		u = strings.Replace(u, "{s}", s.cfg.Subdomains[int(n)%len(s.cfg.Subdomains)], 1)
	}
	return u
}

func (s *HTTPSource) Fetch(ctx context.Context, qk tiles.QuadKey) ([]byte, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	url := s.URL(qk)
	slog.Debug("Fetching tile", "quadkey", qk, "url", url)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", qk, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", qk, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", qk, err)
	}
	return body, nil
}
