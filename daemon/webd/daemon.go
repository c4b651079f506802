// Package webd is the HTTP face of orthod: imagery retrieval over GET,
// a raw tile proxy, retrieval history, and a websocket feed of progress
// events.
package webd

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/olahol/melody"
	"github.com/rotblauer/orthod/api"
	"github.com/rotblauer/orthod/params"
	"github.com/rotblauer/orthod/retriever"
	"github.com/rotblauer/orthod/stream"
)

type WebDaemon struct {
	Config *params.WebDaemonConfig
	Ortho  *api.Ortho

	logger         *slog.Logger
	melodyInstance *melody.Melody
	started        time.Time
	server         *http.Server

	// recent holds the last few retrieval reports for /status and
	// for replay to fresh websocket connections.
	recent *stream.RingBuffer[*retriever.Report]
}

func NewWebDaemon(config *params.WebDaemonConfig) *WebDaemon {
	if config == nil {
		config = params.DefaultWebDaemonConfig()
	}
	return &WebDaemon{
		Config:  config,
		Ortho:   api.NewOrtho(config.OrthoConfig),
		logger:  slog.With("d", "web"),
		started: time.Now(),
		recent:  stream.NewRingBuffer[*retriever.Report](params.WebStatusRingSize),
	}
}

// Run starts the HTTP server and waits for it,
// returning any server error.
func (s *WebDaemon) Run() error {
	// Claim the datadir writable up front. Retrievals record history
	// whether or not the tile cache persists, and a daemon that cannot
	// take the lock should say so before it starts answering requests.
	if _, err := s.Ortho.WithState(false); err != nil {
		return err
	}
	router := s.NewRouter()
	s.server = &http.Server{Handler: router}
	lis, err := net.Listen(s.Config.Network, s.Config.Address)
	if err != nil {
		return err
	}
	s.logger.Info("Starting web daemon",
		"network", s.Config.Network, "address", s.Config.Address,
		"source", s.Config.Source.ID)
	err = s.server.Serve(lis)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop shuts the server down gracefully and releases the datadir.
func (s *WebDaemon) Stop(ctx context.Context) error {
	if s.melodyInstance != nil {
		if err := s.melodyInstance.Close(); err != nil {
			s.logger.Warn("Failed to close websocket", "error", err)
		}
	}
	var err error
	if s.server != nil {
		err = s.server.Shutdown(ctx)
	}
	s.Ortho.Close()
	return err
}

func (s *WebDaemon) NewRouter() *mux.Router {

	// Handle websocket.
	s.initMelody()

	router := mux.NewRouter().StrictSlash(false)
	router.Use(loggingMiddleware)

	router.Path("/events").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = s.melodyInstance.HandleRequest(w, r)
	})

	// All API routes use permissive CORS settings.
	apiRoutes := router.NewRoute().Subrouter()
	apiRoutes.Use(permissiveCorsMiddleware)

	// /ping is a simple server healthcheck endpoint
	apiRoutes.Path("/ping").HandlerFunc(pingPong)

	// Imagery endpoints answer with image/jpeg, so they sit outside
	// the JSON subrouter.
	apiRoutes.Path("/tiles/{quadkey}").HandlerFunc(s.handleTile).Methods(http.MethodGet)

	apiJSONRoutes := apiRoutes.NewRoute().Subrouter()
	jsonMiddleware := contentTypeMiddlewareFunc("application/json")
	apiJSONRoutes.Use(jsonMiddleware)

	apiJSONRoutes.Path("/status").HandlerFunc(s.statusReport).Methods(http.MethodGet)
	apiJSONRoutes.Path("/last").HandlerFunc(s.handleLastRetrieved).Methods(http.MethodGet)
	apiJSONRoutes.Path("/retrievals").HandlerFunc(s.handleRetrievals).Methods(http.MethodGet)

	// /retrieve requires the token, when one is set.
	authenticatedAPIRoutes := apiRoutes.NewRoute().Subrouter()
	authenticatedAPIRoutes.Use(tokenAuthenticationMiddleware)
	authenticatedAPIRoutes.Path("/retrieve").HandlerFunc(s.handleRetrieve).Methods(http.MethodGet)

	return router
}
