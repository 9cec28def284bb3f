package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/goliatone/go-relations/pkg/record"
)

const defaultBoltBucket = "relations_meta"

// BoltOption configures a Bolt store.
type BoltOption func(*boltConfig)

type boltConfig struct {
	bucket  string
	timeout time.Duration
}

// WithBucket overrides the root bucket name.
func WithBucket(name string) BoltOption {
	return func(cfg *boltConfig) {
		if name != "" {
			cfg.bucket = name
		}
	}
}

// WithOpenTimeout bounds how long Open waits for the file lock.
func WithOpenTimeout(timeout time.Duration) BoltOption {
	return func(cfg *boltConfig) {
		cfg.timeout = timeout
	}
}

// Bolt keeps one nested bucket per record inside a root bucket.
type Bolt struct {
	db     *bolt.DB
	bucket []byte
}

var (
	_ MetaStore = (*Bolt)(nil)
	_ Mutator   = (*Bolt)(nil)
)

// OpenBolt opens (creating if needed) the database file at path.
func OpenBolt(path string, opts ...BoltOption) (*Bolt, error) {
	cfg := boltConfig{bucket: defaultBoltBucket, timeout: time.Second}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: cfg.timeout})
	if err != nil {
		return nil, fmt.Errorf("store: open bolt %s: %w", path, err)
	}

	bucket := []byte(cfg.bucket)
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: init bolt bucket: %w", err)
	}

	return &Bolt{db: db, bucket: bucket}, nil
}

// Close releases the database file.
func (b *Bolt) Close() error {
	return b.db.Close()
}

func (b *Bolt) Get(_ context.Context, id record.ID, key string) ([]byte, bool, error) {
	var (
		out   []byte
		found bool
	)
	err := b.db.View(func(tx *bolt.Tx) error {
		root := tx.Bucket(b.bucket)
		if root == nil {
			return errors.New("store: bolt root bucket missing")
		}
		rec := root.Bucket([]byte(id.String()))
		if rec == nil {
			return nil
		}
		if value := rec.Get([]byte(key)); value != nil {
			// values are only valid for the life of the transaction
			out = append([]byte(nil), value...)
			found = true
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return out, found, nil
}

func (b *Bolt) Set(_ context.Context, id record.ID, key string, value []byte) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return b.put(tx, id, key, value)
	})
}

// Mutate runs the read-modify-write inside one update transaction; bbolt
// serializes writers.
func (b *Bolt) Mutate(_ context.Context, id record.ID, key string, fn MutateFunc) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		var current []byte
		if root := tx.Bucket(b.bucket); root != nil {
			if rec := root.Bucket([]byte(id.String())); rec != nil {
				if value := rec.Get([]byte(key)); value != nil {
					current = append([]byte(nil), value...)
				}
			}
		}
		next, err := fn(current)
		if err != nil {
			return err
		}
		return b.put(tx, id, key, next)
	})
}

func (b *Bolt) put(tx *bolt.Tx, id record.ID, key string, value []byte) error {
	root := tx.Bucket(b.bucket)
	if root == nil {
		return errors.New("store: bolt root bucket missing")
	}
	rec, err := root.CreateBucketIfNotExists([]byte(id.String()))
	if err != nil {
		return err
	}
	return rec.Put([]byte(key), value)
}
