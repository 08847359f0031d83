package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Local is a directory-backed object store. Buckets are subdirectories of
// the root; keys are slash-separated paths beneath a bucket. Writes create
// missing directories.
type Local struct {
	root string
}

// NewLocal returns a store rooted at dir. The directory does not have to
// exist yet; Put creates it on demand.
func NewLocal(dir string) (*Local, error) {
	if dir == "" {
		return nil, fmt.Errorf("local store: empty root")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("local store: %w", err)
	}
	return &Local{root: abs}, nil
}

func (l *Local) path(bucket, key string) (string, error) {
	if bucket == "" || key == "" {
		return "", fmt.Errorf("local store: bucket and key are required")
	}
	p := filepath.Join(l.root, bucket, filepath.FromSlash(key))
	// Keys with ".." could walk out of the root.
	if !strings.HasPrefix(p, l.root+string(filepath.Separator)) {
		return "", fmt.Errorf("local store: key %q escapes store root", key)
	}
	return p, nil
}

// Get reads a whole object.
func (l *Local) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, err := l.path(bucket, key)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("local store: get %s/%s: %w", bucket, key, err)
	}
	return b, nil
}

// Put writes a whole object, replacing any existing one.
func (l *Local) Put(ctx context.Context, bucket, key string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := l.path(bucket, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("local store: %w", err)
	}
	if err := os.WriteFile(p, body, 0o644); err != nil {
		return fmt.Errorf("local store: put %s/%s: %w", bucket, key, err)
	}
	return nil
}
