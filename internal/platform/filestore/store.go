package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

var ErrNotFound = errors.New("filestore: object not found")

// Object describes a stored blob. Location is what the backend resolves the
// key to (an absolute path on disk or a gs:// URI).
type Object struct {
	Key      string
	Location string
	Size     int64
	Updated  time.Time
}

// Store is the durable home of uploaded dataset files.
type Store interface {
	Save(ctx context.Context, key string, r io.Reader) (Object, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) ([]Object, error)
}

// CleanKey validates a slash separated object key. Keys may not be absolute
// or climb out of the store root.
func CleanKey(key string) (string, error) {
	k := strings.TrimSpace(key)
	if k == "" {
		return "", fmt.Errorf("filestore: empty key")
	}
	if strings.HasPrefix(k, "/") || strings.Contains(k, `\`) {
		return "", fmt.Errorf("filestore: invalid key %q", key)
	}
	cleaned := path.Clean(k)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("filestore: invalid key %q", key)
	}
	return cleaned, nil
}
