package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"
)

var responseBucket = []byte("responses")

// ResponseCache stores JSON results keyed by a hash of the inputs.
type ResponseCache interface {
	Get(ctx context.Context, key string, target any) (bool, error)
	Put(ctx context.Context, key string, value any) error
	Close() error
}

type cachedEntry struct {
	Value     json.RawMessage `json:"value"`
	CreatedAt time.Time       `json:"createdAt"`
}

type boltCache struct {
	db *bolt.DB
}

// NewResponseCache opens a bbolt file at path. An empty path disables caching.
func NewResponseCache(path string) (ResponseCache, error) {
	if strings.TrimSpace(path) == "" {
		return nopCache{}, nil
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(responseBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create cache bucket: %w", err)
	}

	return &boltCache{db: db}, nil
}

func (b *boltCache) Get(_ context.Context, key string, target any) (bool, error) {
	var raw []byte
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(responseBucket)
		if bucket == nil {
			return nil
		}
		if v := bucket.Get([]byte(key)); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to read cache: %w", err)
	}
	if raw == nil {
		return false, nil
	}

	var entry cachedEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache entry: %w", err)
	}
	if err := json.Unmarshal(entry.Value, target); err != nil {
		return false, fmt.Errorf("failed to unmarshal cached value: %w", err)
	}

	return true, nil
}

func (b *boltCache) Put(_ context.Context, key string, value any) error {
	v, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	entry, err := json.Marshal(cachedEntry{Value: v, CreatedAt: time.Now()})
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(responseBucket)
		if bucket == nil {
			return fmt.Errorf("cache bucket missing")
		}
		return bucket.Put([]byte(key), entry)
	})
}

func (b *boltCache) Close() error {
	return b.db.Close()
}

type nopCache struct{}

func (nopCache) Get(context.Context, string, any) (bool, error) { return false, nil }
func (nopCache) Put(context.Context, string, any) error         { return nil }
func (nopCache) Close() error                                   { return nil }

// CacheKey hashes the operation name, the model and the inputs.
func CacheKey(operation, model string, inputs ...string) string {
	h := sha256.New()
	h.Write([]byte(operation))
	h.Write([]byte{0})
	h.Write([]byte(model))
	for _, in := range inputs {
		h.Write([]byte{0})
		h.Write([]byte(in))
	}
	return hex.EncodeToString(h.Sum(nil))
}
