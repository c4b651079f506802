package params

import (
	"compress/gzip"
	"os"
	"path/filepath"
	"time"

	"github.com/ethereum/go-ethereum/metrics"
	homedir "github.com/mitchellh/go-homedir"
)

func init() {
	// Meters are no-ops without this.
	metrics.Enabled = true
}

const (
	// ImageryDirName is the datadir subdirectory for retrieved composites.
	ImageryDirName = "imagery"

	// RetrievalsLogGZFileName is the append-only NDJSON log of retrieval records.
	RetrievalsLogGZFileName = "retrievals.ndjson.gz"

	// StateDBName is the bbolt database file under the datadir root.
	StateDBName = "orthod.db"
)

var (
	RetrievalsBucket     = []byte("retrievals")
	MetaBucket           = []byte("meta")
	TileCacheBucketRoot  = []byte("tilecache")
)

var DefaultGZipCompressionLevel = gzip.BestCompression

// DefaultDatadirRoot is where orthod keeps its state and imagery
// unless a datadir is configured explicitly.
var DefaultDatadirRoot = func() string {
	home, err := homedir.Dir()
	if err != nil {
		panic(err)
	}
	return filepath.Join(home, ".orthod")
}()

var (
	AWS_BUCKETNAME = os.Getenv("AWS_BUCKETNAME")

	INFLUXDB_URL    = os.Getenv("INFLUXDB_URL")
	INFLUXDB_TOKEN  = os.Getenv("INFLUXDB_TOKEN")
	INFLUXDB_ORG    = os.Getenv("INFLUXDB_ORG")
	INFLUXDB_BUCKET = os.Getenv("INFLUXDB_BUCKET")
)

// MetricsLogInterval is how often the retrieval meters get logged.
var MetricsLogInterval = 30 * time.Second

// WebStatusRingSize is how many recent retrieval reports the web daemon
// keeps around for /status.
var WebStatusRingSize = 10
