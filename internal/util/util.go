package util

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// CheckError prints the error to stderr and exits non-zero. Reserved for
// initialization failures that happen before the command tree can produce a
// proper error response.
func CheckError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}

// InitDir initializes the parent directory of path with the given mode
func InitDir(path string, mode fs.FileMode) error {
	expandedDir := os.ExpandEnv(path)
	fullPath := filepath.Dir(expandedDir)
	return os.MkdirAll(fullPath, mode)
}
