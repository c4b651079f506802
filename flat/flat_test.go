package flat

import (
	"os"
	"testing"

	orthotesting "github.com/rotblauer/orthod/testing"
)

func TestFlat(t *testing.T) {
	f := NewFlatWithRoot(orthotesting.DefaultTestDir())
	logw, err := f.Joins("history").NewGZFileWriter("retrievals.ndjson.gz", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(logw.Path())
	if _, err := logw.Write([]byte(`{"id":"deadbeef","name":"59.44,24.75"}` + "\n")); err != nil {
		t.Fatal(err)
	}
	if err := logw.Close(); err != nil {
		t.Fatal(err)
	}
	if !f.Exists() {
		t.Error("flat dir should exist after write")
	}
}
