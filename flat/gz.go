package flat

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/rotblauer/orthod/params"
)

// GZFileWriterConfig controls how the append log is opened and compressed.
type GZFileWriterConfig struct {
	CompressionLevel int
	Flag             int
	FilePerm         os.FileMode
	DirPerm          os.FileMode
}

func DefaultGZFileWriterConfig() *GZFileWriterConfig {
	return &GZFileWriterConfig{
		CompressionLevel: params.DefaultGZipCompressionLevel,
		Flag:             os.O_WRONLY | os.O_APPEND | os.O_CREATE,
		FilePerm:         0660,
		DirPerm:          0770,
	}
}

// GZFileWriter appends one gzip member to a shared log file. An exclusive
// flock is taken at the first Write and held through Close, so concurrent
// appenders queue rather than interleave. Appended members concatenate
// into a single valid gzip stream.
type GZFileWriter struct {
	file   *os.File
	gz     *gzip.Writer
	held   bool
	closed bool
}

// NewGZFileWriter opens path for appending, creating parent directories
// as needed. A nil config gets defaults. The flock is not taken here;
// opening a writer never blocks on another holder.
func NewGZFileWriter(path string, config *GZFileWriterConfig) (*GZFileWriter, error) {
	if config == nil {
		config = DefaultGZFileWriterConfig()
	}
	if err := os.MkdirAll(filepath.Dir(path), config.DirPerm); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, config.Flag, config.FilePerm)
	if err != nil {
		return nil, err
	}
	gz, err := gzip.NewWriterLevel(f, config.CompressionLevel)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &GZFileWriter{file: f, gz: gz}, nil
}

// Write compresses p into the log, blocking until the file lock is held.
func (g *GZFileWriter) Write(p []byte) (int, error) {
	if err := g.acquire(); err != nil {
		return 0, err
	}
	return g.gz.Write(p)
}

// Writer exposes the underlying gzip writer.
func (g *GZFileWriter) Writer() *gzip.Writer {
	return g.gz
}

// acquire takes the exclusive flock once per writer lifetime.
func (g *GZFileWriter) acquire() error {
	if g.held || g.closed {
		return nil
	}
	if err := syscall.Flock(int(g.file.Fd()), syscall.LOCK_EX); err != nil {
		return fmt.Errorf("lock %s: %w", g.file.Name(), err)
	}
	g.held = true
	return nil
}

func (g *GZFileWriter) release() {
	if !g.held {
		return
	}
	_ = syscall.Flock(int(g.file.Fd()), syscall.LOCK_UN)
	g.held = false
}

// Close flushes and closes the gzip member, syncs the file, and releases
// the lock. Close is idempotent; the writer is unusable afterwards.
func (g *GZFileWriter) Close() error {
	if g.closed {
		return nil
	}
	g.closed = true
	defer g.release()
	if err := g.gz.Close(); err != nil {
		_ = g.file.Close()
		return err
	}
	if err := g.file.Sync(); err != nil {
		_ = g.file.Close()
		return err
	}
	return g.file.Close()
}

// MaybeClose closes without error reporting, for deferred cleanup paths.
func (g *GZFileWriter) MaybeClose() {
	if g.closed {
		return
	}
	_ = g.Close()
}

func (g *GZFileWriter) Path() string {
	return g.file.Name()
}

// GZFileReader streams a possibly multi-member gzip log. Reads take no
// lock; racing an in-flight append just means EOF at the last complete
// member.
type GZFileReader struct {
	file   *os.File
	gz     *gzip.Reader
	closed bool
}

func NewGZFileReader(path string) (*GZFileReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("open gz log %s: %w", path, err)
	}
	return &GZFileReader{file: f, gz: gz}, nil
}

// Read satisfies the io.Reader interface.
func (g *GZFileReader) Read(p []byte) (int, error) {
	return g.gz.Read(p)
}

// Reader exposes the underlying gzip reader.
func (g *GZFileReader) Reader() *gzip.Reader {
	return g.gz
}

func (g *GZFileReader) Path() string {
	return g.file.Name()
}

// LineCount consumes the rest of the stream and counts newline-delimited
// records.
func (g *GZFileReader) LineCount() (int, error) {
	n := 0
	sc := bufio.NewScanner(g.gz)
	for sc.Scan() {
		n++
	}
	return n, sc.Err()
}

func (g *GZFileReader) Close() error {
	if g.closed {
		return nil
	}
	g.closed = true
	return errors.Join(g.gz.Close(), g.file.Close())
}

// MaybeClose closes without error reporting, for deferred cleanup paths.
func (g *GZFileReader) MaybeClose() {
	if g.closed {
		return
	}
	_ = g.Close()
}
