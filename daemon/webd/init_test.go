package webd

import (
	"os"

	"github.com/rotblauer/orthod/params"
	"github.com/rotblauer/orthod/testing/testsource"
)

// newTestWebDaemon creates a new WebDaemon for testing purposes,
// pointed at the fixture tile server. If datadir is empty, one will
// be provided for you.
func newTestWebDaemon(datadir string, srv *testsource.Server) (daemon *WebDaemon, teardown func() error) {
	config := params.DefaultTestWebDaemonConfig()
	if datadir != "" {
		config.DataDir = datadir
	} else {
		tmpd, err := os.MkdirTemp(os.TempDir(), "orthod-webd-test")
		if err != nil {
			panic(err)
		}
		config.DataDir = tmpd
	}
	config.Source = srv.SourceConfig()
	config.Cache = &params.CacheConfig{MemTTL: 0, Persistent: false}
	config.Retriever = &params.RetrieverConfig{
		MaxZoom: 10, MinZoom: 9,
		MaxPixels: params.ImageMaxPixels, Workers: 1,
	}
	daemon = NewWebDaemon(config)
	teardown = func() error {
		daemon.Ortho.Close()
		return os.RemoveAll(config.DataDir)
	}
	return daemon, teardown
}
