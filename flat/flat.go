// Package flat is flat-file storage for the datadir:
// retrieved composites and the gzipped NDJSON retrieval log.
package flat

import (
	"os"
	"path/filepath"
)

type Flat struct {
	// path is the subdirectory for flat file storage.
	// It includes the root directory.
	path string
}

func NewFlatWithRoot(root string) *Flat {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return &Flat{path: root}
}

// Joins appends path elements to the directory, mutating the receiver.
// Branch with NewFlatWithRoot(f.Path()) to keep the original.
func (f *Flat) Joins(paths ...string) *Flat {
	f.path = filepath.Join(append([]string{f.path}, paths...)...)
	return f
}

// Exists reports whether the directory exists.
func (f *Flat) Exists() bool {
	_, err := os.Stat(f.path)
	return err == nil
}

func (f *Flat) MkdirAll() error {
	return os.MkdirAll(f.path, 0770)
}

func (f *Flat) Path() string {
	return f.path
}

// WriteFile writes data to a file under the flat directory,
// creating the directory if needed. It returns the full path written.
func (f *Flat) WriteFile(name string, data []byte) (string, error) {
	if err := f.MkdirAll(); err != nil {
		return "", err
	}
	target := filepath.Join(f.path, name)
	if err := os.WriteFile(target, data, 0660); err != nil {
		return "", err
	}
	return target, nil
}

func (f *Flat) NewGZFileWriter(name string, config *GZFileWriterConfig) (*GZFileWriter, error) {
	return NewGZFileWriter(filepath.Join(f.path, name), config)
}

func (f *Flat) NamedGZReader(name string) (*GZFileReader, error) {
	return NewGZFileReader(filepath.Join(f.path, name))
}
