// Package storage writes downloaded videos to the local file system.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Downloads writes artifacts into a single user-visible directory.
// It never prunes what it wrote.
type Downloads struct {
	dir string
	now func() time.Time
}

// DefaultDir returns ~/Downloads, or the working directory when no home is known.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, "Downloads")
}

// NewDownloads initializes a writer rooted at dir. An empty dir uses DefaultDir.
func NewDownloads(dir string) *Downloads {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = DefaultDir()
	}
	return &Downloads{dir: dir, now: time.Now}
}

// Dir returns the target directory.
func (d *Downloads) Dir() string {
	return d.dir
}

// FileName is sora-<id>-<unix millis>.mp4.
func (d *Downloads) FileName(videoID string) string {
	return fmt.Sprintf("sora-%s-%d.mp4", safeID(videoID), d.now().UnixMilli())
}

// Save writes data under a generated name and returns the full path.
func (d *Downloads) Save(ctx context.Context, videoID string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(videoID) == "" {
		return "", errors.New("storage: video id is required")
	}
	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return "", fmt.Errorf("storage: ensure directory: %w", err)
	}
	path := filepath.Join(d.dir, d.FileName(videoID))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write file: %w", err)
	}
	return path, nil
}

// safeID keeps ids from introducing path separators into the file name.
func safeID(id string) string {
	return strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == os.PathSeparator {
			return '_'
		}
		return r
	}, id)
}
