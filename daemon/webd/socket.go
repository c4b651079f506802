package webd

import (
	"encoding/json"
	"log"
	"log/slog"

	"github.com/olahol/melody"
	"github.com/rotblauer/orthod/events"
	"github.com/rotblauer/orthod/retriever"
)

type websocketAction string

var websocketActionRetrieval websocketAction = "retrieval"
var websocketActionTile websocketAction = "tile"

type broadcast struct {
	Action websocketAction      `json:"action"`
	Report *retriever.Report    `json:"report,omitempty"`
	Tile   *retriever.TileEvent `json:"tile,omitempty"`
}

// initMelody sets up the websocket handler.
func (s *WebDaemon) initMelody() {
	s.melodyInstance = melody.New()

	s.melodyInstance.HandleConnect(func(sess *melody.Session) {
		log.Println("[websocket] connected", sess.Request.RemoteAddr)
		// Replay the recent retrieval reports to the new connection.
		for _, report := range s.recent.Get() {
			bc := broadcast{
				Action: websocketActionRetrieval,
				Report: report,
			}
			b, _ := json.Marshal(bc)
			sess.Write(b)
		}
	})

	// Right now don't care about incoming messages from clients. Log and drop.
	s.melodyInstance.HandleMessage(loggingHandler)

	s.melodyInstance.HandleDisconnect(func(sess *melody.Session) {
		log.Println("[websocket] disconnected", sess.Request.RemoteAddr)
	})

	s.melodyInstance.HandleError(func(sess *melody.Session, e error) {
		log.Println("[websocket] error", e, sess.Request.RemoteAddr)
	})

	// Broadcast retrieval reports and per-tile events - as they happen -
	// to all connected clients. Tile events can be chatty at deep zooms;
	// clients that only care about outcomes should filter on action.
	reports := make(chan *retriever.Report)
	reportSub := events.RetrievalFeed.Subscribe(reports)
	tileEvents := make(chan retriever.TileEvent)
	tileSub := events.TileFeed.Subscribe(tileEvents)
	go func() {
		for {
			select {
			case report := <-reports:
				s.recent.Add(report)
				bc := broadcast{
					Action: websocketActionRetrieval,
					Report: report,
				}
				b, err := json.Marshal(bc)
				if err != nil {
					slog.Error("Failed to marshal retrieval event", "error", err)
					continue
				}
				if err := s.melodyInstance.Broadcast(b); err != nil {
					slog.Warn("Failed to broadcast retrieval event", "error", err)
				}
			case ev := <-tileEvents:
				bc := broadcast{
					Action: websocketActionTile,
					Tile:   &ev,
				}
				b, err := json.Marshal(bc)
				if err != nil {
					slog.Error("Failed to marshal tile event", "error", err)
					continue
				}
				if err := s.melodyInstance.Broadcast(b); err != nil {
					slog.Warn("Failed to broadcast tile event", "error", err)
				}
			case err := <-reportSub.Err():
				slog.Error("Failed to subscribe to RetrievalFeed", "error", err)
				return
			case err := <-tileSub.Err():
				slog.Error("Failed to subscribe to TileFeed", "error", err)
				return
			}
		}
	}()
}

// on request
func loggingHandler(sess *melody.Session, msg []byte) {
	log.Println("[websocket] message", string(msg))
}
