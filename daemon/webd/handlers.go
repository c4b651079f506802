package webd

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rotblauer/orthod/api"
	"github.com/rotblauer/orthod/cache"
	"github.com/rotblauer/orthod/geo"
	"github.com/rotblauer/orthod/params"
	"github.com/rotblauer/orthod/retriever"
	"github.com/rotblauer/orthod/state"
	"github.com/rotblauer/orthod/stream"
	"github.com/rotblauer/orthod/tiles"
)

func pingPong(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("pong"))
}

type webDaemonStatus struct {
	StartedAt time.Time               `json:"started_at"`
	Uptime    string                  `json:"uptime"`
	Config    *params.WebDaemonConfig `json:"config"`
	WSOpen    bool                    `json:"ws_open"`
	WSConns   int                     `json:"ws_conns"`
	Recent    []*retriever.Report     `json:"recent"`
	TileCache map[string]int          `json:"tile_cache,omitempty"`
}

func (s *WebDaemon) statusReport(w http.ResponseWriter, r *http.Request) {
	st := webDaemonStatus{
		StartedAt: s.started,
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		Config:    s.Config,
		Recent:    s.recent.Get(),
	}
	if s.melodyInstance != nil {
		st.WSOpen = !s.melodyInstance.IsClosed()
		st.WSConns = s.melodyInstance.Len()
	}
	if s.Ortho.State != nil {
		stats, err := s.Ortho.State.TileCacheStats()
		if err != nil {
			s.logger.Warn("Failed to read tile cache stats", "error", err)
		} else {
			st.TileCache = stats
		}
	}
	j, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		s.logger.Error("Failed to marshal status", "error", err)
		http.Error(w, "Failed to marshal status", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(j)
	if err != nil {
		s.logger.Error("Failed to write response", "error", err)
		http.Error(w, "Failed to write response", http.StatusInternalServerError)
	}
}

// boxFromRequest accepts either bbox=lat1,lon1,lat2,lon2 or
// center=lat,lon with width and height in meters.
func boxFromRequest(r *http.Request) (geo.BoundingBox, error) {
	q := r.URL.Query()
	if bbox := q.Get("bbox"); bbox != "" {
		return geo.ParseBBox(bbox)
	}
	if center := q.Get("center"); center != "" {
		parts := strings.Split(center, ",")
		if len(parts) != 2 {
			return geo.BoundingBox{}, fmt.Errorf("center wants lat,lon, got %q", center)
		}
		return geo.ParseCenter([]string{
			strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]),
			q.Get("width"), q.Get("height"),
		})
	}
	return geo.BoundingBox{}, errors.New("missing bbox or center")
}

func zoomFromRequest(r *http.Request, def *params.RetrieverConfig) (maxZ, minZ tiles.Zoom, err error) {
	maxZ, minZ = def.MaxZoom, def.MinZoom
	if v := r.URL.Query().Get("maxzoom"); v != "" {
		n, perr := strconv.Atoi(v)
		if perr != nil {
			return 0, 0, perr
		}
		maxZ = tiles.Zoom(n)
	}
	if v := r.URL.Query().Get("minzoom"); v != "" {
		n, perr := strconv.Atoi(v)
		if perr != nil {
			return 0, 0, perr
		}
		minZ = tiles.Zoom(n)
	}
	if !maxZ.Valid() || !minZ.Valid() || maxZ < minZ {
		return 0, 0, fmt.Errorf("bad zoom bounds %d..%d", minZ, maxZ)
	}
	return maxZ, minZ, nil
}

// handleRetrieve answers with the finest available composite for the
// requested area as image/jpeg. The chosen level rides along in the
// X-Zoom-Level header.
func (s *WebDaemon) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	box, err := boxFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	maxZ, minZ, err := zoomFromRequest(r, s.Config.Retriever)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ret, err := s.Ortho.RetrieveZoom(r.Context(), box, maxZ, minZ)
	if err != nil {
		switch {
		case errors.Is(err, retriever.ErrDegenerateBoundingBox):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, retriever.ErrNoAvailableImagery):
			http.Error(w, err.Error(), http.StatusNotFound)
		case r.Context().Err() != nil:
			s.logger.Debug("Retrieval canceled by client", "error", err)
		default:
			s.logger.Error("Retrieval failed", "error", err)
			http.Error(w, "Retrieval failed", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("X-Zoom-Level", strconv.Itoa(int(ret.Record.Report.Zoom)))
	w.Header().Set("X-Image-Name", ret.Record.Name)
	if _, err := w.Write(ret.JPEG); err != nil {
		s.logger.Warn("Failed to write response", "error", err)
	}
}

// handleTile proxies one raw tile by quadkey, LRU cached.
func (s *WebDaemon) handleTile(w http.ResponseWriter, r *http.Request) {
	qk := tiles.QuadKey(mux.Vars(r)["quadkey"])
	if _, _, err := tiles.QuadKeyToTile(qk); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	b, ok := cache.GetTile(qk.String())
	if !ok {
		var err error
		b, err = s.Ortho.Tile(r.Context(), qk)
		if err != nil {
			if errors.Is(err, api.ErrTileUnavailable) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			s.logger.Warn("Tile fetch failed", "quadkey", qk, "error", err)
			http.Error(w, "Tile fetch failed", http.StatusBadGateway)
			return
		}
		cache.SetTile(qk.String(), b)
	}
	w.Header().Set("Content-Type", "image/jpeg")
	if _, err := w.Write(b); err != nil {
		s.logger.Warn("Failed to write response", "error", err)
	}
}

func (s *WebDaemon) handleLastRetrieved(w http.ResponseWriter, r *http.Request) {
	records, err := s.Ortho.History(r.Context(), 1, false)
	if err != nil {
		s.logger.Warn("Failed to read history", "error", err)
		http.Error(w, "Failed to read history", http.StatusInternalServerError)
		return
	}
	if len(records) == 0 {
		http.Error(w, "No retrievals yet", http.StatusNotFound)
		return
	}
	if err := json.NewEncoder(w).Encode(records[0]); err != nil {
		s.logger.Warn("Failed to write response", "error", err)
	}
}

func setContentTypeJSONStream(w http.ResponseWriter) {
	/*
		https://github.com/ipfs/kubo/issues/3737
		https://stackoverflow.com/questions/57301886/what-is-the-suitable-http-content-type-for-consuming-an-asynchronous-stream-of-d
		w.Header().Set("Content-Type", "application/stream+json")
	*/
	w.Header().Set("Content-Type", "application/x-ndjson")
}

type briefRecord struct {
	ID      string     `json:"id"`
	Time    time.Time  `json:"time"`
	Name    string     `json:"name"`
	Success bool       `json:"success"`
	Zoom    tiles.Zoom `json:"zoom,omitempty"`
	Error   string     `json:"error,omitempty"`
}

// handleRetrievals streams stored retrieval records as NDJSON, newest
// first. ?limit=n caps the count, ?success=true drops failures,
// ?brief=true trims records to a line per retrieval.
func (s *WebDaemon) handleRetrievals(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		limit = n
	}
	records, err := s.Ortho.History(r.Context(), limit, r.URL.Query().Get("success") == "true")
	if err != nil {
		s.logger.Warn("Failed to read history", "error", err)
		http.Error(w, "Failed to read history", http.StatusInternalServerError)
		return
	}

	setContentTypeJSONStream(w)
	enc := json.NewEncoder(w)

	if r.URL.Query().Get("brief") == "true" {
		ctx := r.Context()
		briefs := stream.Collect(ctx, stream.Transform(ctx, func(rec *state.Record) briefRecord {
			b := briefRecord{ID: rec.ID, Name: rec.Name}
			if rec.Report != nil {
				b.Time = rec.Report.Time
				b.Success = rec.Report.Success
				b.Zoom = rec.Report.Zoom
				b.Error = rec.Report.Error
			}
			return b
		}, stream.Slice(ctx, records)))
		for _, b := range briefs {
			if err := enc.Encode(b); err != nil {
				s.logger.Warn("Failed to write response", "error", err)
				return
			}
		}
		return
	}

	for _, rec := range records {
		if err := enc.Encode(rec); err != nil {
			s.logger.Warn("Failed to write response", "error", err)
			return
		}
	}
}
