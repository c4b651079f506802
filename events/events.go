package events

import (
	"github.com/ethereum/go-ethereum/event"
	"github.com/rotblauer/orthod/retriever"
)

// RetrievalFeed is emitted for every completed retrieval attempt,
// success and failure both, after its record has been persisted.
var RetrievalFeed = event.FeedOf[*retriever.Report]{}

// TileFeed is a feed of per-tile decisions as a retrieval progresses.
// Payloads arrive in fetch order when the retriever runs serially; with
// workers enabled, order within a row is not guaranteed.
var TileFeed = event.FeedOf[retriever.TileEvent]{}
