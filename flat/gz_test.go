package flat

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestGZFileWriter_Write(t *testing.T) {
	target := filepath.Join(t.TempDir(), "retrievals.ndjson.gz")

	// Two writers on the same log, concurrently. The flock serializes them:
	// the second blocks in Write until the first closes.
	w1, err := NewGZFileWriter(target, DefaultGZFileWriterConfig())
	if err != nil {
		t.Fatal(err)
	}
	w2, err := NewGZFileWriter(target, DefaultGZFileWriterConfig())
	if err != nil {
		t.Fatal(err)
	}

	wait := sync.WaitGroup{}
	writeRecords := func(w *GZFileWriter, name string, delay time.Duration) {
		defer wait.Done()
		defer func() {
			if err := w.Close(); err != nil {
				t.Error(err)
			}
		}()
		for i := 0; i < 5; i++ {
			if _, err := w.Write([]byte(fmt.Sprintf(`{"writer":%q,"n":%d}`+"\n", name, i))); err != nil {
				t.Error(err)
			}
			time.Sleep(delay)
		}
	}

	wait.Add(2)
	go writeRecords(w1, "w1", 20*time.Millisecond)
	time.Sleep(10 * time.Millisecond) // wait for w1 to lock the file.
	writeRecords(w2, "w2", 5*time.Millisecond)
	wait.Wait()

	r, err := NewGZFileReader(target)
	if err != nil {
		t.Fatal(err)
	}
	scanner := bufio.NewScanner(r.Reader())
	first, last, n := "", "", 0
	for scanner.Scan() {
		if first == "" {
			first = scanner.Text()
		}
		last = scanner.Text()
		n++
	}
	if err := scanner.Err(); err != nil {
		t.Fatal(err)
	}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
	if n != 10 {
		t.Fatalf("unexpected line count: %d", n)
	}
	if first != `{"writer":"w1","n":0}` {
		t.Fatalf("unexpected first: %s", first)
	}
	if last != `{"writer":"w2","n":4}` {
		t.Fatalf("unexpected last: %s", last)
	}
}

func TestGZFileReader_LineCount(t *testing.T) {
	target := filepath.Join(t.TempDir(), "retrievals.ndjson.gz")
	w, err := NewGZFileWriter(target, DefaultGZFileWriterConfig())
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 7; i++ {
		if _, err := w.Write([]byte(fmt.Sprintf(`{"n":%d}`+"\n", i))); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	r, err := NewGZFileReader(target)
	if err != nil {
		t.Fatal(err)
	}
	defer r.MaybeClose()
	count, err := r.LineCount()
	if err != nil {
		t.Fatal(err)
	}
	if count != 7 {
		t.Fatalf("unexpected line count: %d", count)
	}
}

func TestFlatWriteFile(t *testing.T) {
	root := t.TempDir()
	f := NewFlatWithRoot(root).Joins("imagery")
	if f.Exists() {
		t.Fatal("imagery dir should not exist yet")
	}
	data := []byte{0xff, 0xd8, 0xff, 0xe0} // jpeg magic, close enough
	path, err := f.WriteFile("aerialImage_16.jpeg", data)
	if err != nil {
		t.Fatal(err)
	}
	if !f.Exists() {
		t.Fatal("imagery dir should exist")
	}
	if filepath.Dir(path) != f.Path() {
		t.Fatalf("unexpected path: %s", path)
	}
	read, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(read) != string(data) {
		t.Fatal("unexpected file content")
	}
}
