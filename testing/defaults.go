package testing

import (
	"os"
	"path/filepath"
)

const DefaultTestDirRoot = "orthod-test"

func DefaultTestDir() string {
	return filepath.Join(os.TempDir(), DefaultTestDirRoot)
}
