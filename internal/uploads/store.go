// Package uploads stores evidence files and hands back retrievable URLs.
// The workflow layer only ever sees the URL string.
package uploads

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Store accepts an evidence file and returns a URL it can later be fetched
// from.
type Store interface {
	Save(taskID, filename string, r io.Reader) (string, error)
}

// DiskStore writes files under a local directory served at /uploads.
type DiskStore struct {
	Dir string
}

// NewDiskStore creates the upload directory if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskStore{Dir: dir}, nil
}

// Save writes the file with a unique name and returns its URL path.
func (s *DiskStore) Save(taskID, filename string, r io.Reader) (string, error) {
	name := fmt.Sprintf("evidence_%s_%d%s", taskID, time.Now().UnixNano(), filepath.Ext(filename))
	path := filepath.Join(s.Dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		os.Remove(path)
		return "", err
	}
	return "/uploads/" + name, nil
}
