// Package source abstracts the object store raw files arrive in and cleaned
// files are written back to. The pipeline only ever needs whole-object reads
// and writes keyed by bucket and key.
package source

import "context"

// Reader fetches a whole object.
type Reader interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
}

// Writer stores a whole object, replacing any existing one.
type Writer interface {
	Put(ctx context.Context, bucket, key string, body []byte) error
}

// Store is a read-write object store.
type Store interface {
	Reader
	Writer
}
