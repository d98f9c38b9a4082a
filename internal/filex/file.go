// Package filex contains small filesystem helpers used by the client.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MaxVideoSize caps what the client will read into memory for one upload.
const MaxVideoSize = 100 << 20 // 100 MiB

// ReadVideoFile reads a recorded clip from disk for upload. Only .mp4 files
// are accepted and files over MaxVideoSize are rejected before reading.
func ReadVideoFile(path string) ([]byte, error) {
	if !strings.EqualFold(filepath.Ext(path), ".mp4") {
		return nil, fmt.Errorf("unsupported file type %q, expected .mp4", filepath.Ext(path))
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Size() > MaxVideoSize {
		return nil, fmt.Errorf("file too large: %d bytes", info.Size())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// EnsureSubDir creates (if needed) and returns a subdirectory of the current
// working directory.
func EnsureSubDir(dirName string) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getwd: %w", err)
	}

	dir := filepath.Join(cwd, dirName)

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}
