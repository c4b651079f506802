package retriever

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/rotblauer/orthod/common"
	"github.com/rotblauer/orthod/tiles"
)

// tileMeter rates and logs tile fetch throughput for the duration of one
// retrieval. Safe for concurrent marks.
type tileMeter struct {
	label      atomic.Value // tiles.QuadKey, the last marked key
	interval   time.Duration
	started    time.Time
	ticker     *time.Ticker
	reg        metrics.Registry
	count      metrics.Counter
	size       metrics.Counter
	countMeter metrics.Meter
	sizeMeter  metrics.Meter
}

func newTileMeter(interval time.Duration) *tileMeter {
	reg := metrics.NewRegistry()
	m := &tileMeter{
		reg:        reg,
		interval:   interval,
		started:    time.Now(),
		ticker:     time.NewTicker(interval),
		count:      metrics.NewCounter(),
		size:       metrics.NewCounter(),
		countMeter: metrics.NewMeter(),
		sizeMeter:  metrics.NewMeter(),
	}

	if err := reg.Register("tiles.count", m.count); err != nil {
		panic(err)
	}
	if err := reg.Register("tiles.size", m.size); err != nil {
		panic(err)
	}
	if err := reg.Register("tiles.meter", m.countMeter); err != nil {
		panic(err)
	}
	if err := reg.Register("size.meter", m.sizeMeter); err != nil {
		panic(err)
	}
	go m.run()
	return m
}

func (m *tileMeter) mark(qk tiles.QuadKey, size int) {
	m.label.Store(qk)
	m.count.Inc(1)
	m.size.Inc(int64(size))
	m.countMeter.Mark(1)
	m.sizeMeter.Mark(int64(size))
}

func (m *tileMeter) run() {
	for range m.ticker.C {
		m.log()
	}
}

func (m *tileMeter) log() {
	countSnap := m.countMeter.Snapshot()
	sizeSnap := m.sizeMeter.Snapshot()

	last, _ := m.label.Load().(tiles.QuadKey)
	slog.Info("Fetched tiles", "n", humanize.Comma(countSnap.Count()),
		"last", last,
		"tps", common.DecimalToFixed(countSnap.Rate1(), 0),
		"bps", humanize.Bytes(uint64(sizeSnap.Rate1())),
		"total.bytes", humanize.Bytes(uint64(sizeSnap.Count())),
		"running", time.Since(m.started).Round(time.Second))
}

func (m *tileMeter) stop() {
	if m == nil || m.ticker == nil {
		return
	}
	m.ticker.Stop()
	m.countMeter.Stop()
	m.sizeMeter.Stop()
}
