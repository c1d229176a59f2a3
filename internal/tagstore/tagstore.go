// Package tagstore is a supplemental durable registry of which tags have
// ever been synced: a small bbolt database, bucketed per provider, mapping
// a tag's canonical string to its last-sync Unix timestamp. Nothing in
// the core sync engine reads from it — it exists so a caller (or the
// "tags" CLI command) can answer "what's indexed" without re-deriving the
// answer by walking index/tags/ on disk.
package tagstore

import (
	"encoding/binary"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Store is a durable tag registry backed by a single bbolt file.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if necessary) the bbolt database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o644, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open tag registry %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func providerBucket(tx *bolt.Tx, provider string, create bool) (*bolt.Bucket, error) {
	if create {
		return tx.CreateBucketIfNotExists([]byte(provider))
	}
	return tx.Bucket([]byte(provider)), nil
}

// Record marks tagStr as synced under provider at lastSync (a Unix
// second count), creating the provider's bucket on first use.
func (s *Store) Record(provider, tagStr string, lastSync int64) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := providerBucket(tx, provider, true)
		if err != nil {
			return fmt.Errorf("create bucket for provider %s: %w", provider, err)
		}
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], uint64(lastSync))
		return b.Put([]byte(tagStr), buf[:])
	})
}

// LastSync returns the recorded last-sync timestamp for tagStr under
// provider, and whether an entry exists at all.
func (s *Store) LastSync(provider, tagStr string) (timestamp int64, found bool, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		b, bucketErr := providerBucket(tx, provider, false)
		if bucketErr != nil {
			return bucketErr
		}
		if b == nil {
			return nil
		}
		v := b.Get([]byte(tagStr))
		if v == nil {
			return nil
		}
		timestamp = int64(binary.BigEndian.Uint64(v))
		found = true
		return nil
	})
	if err != nil {
		return 0, false, fmt.Errorf("read last sync for %s/%s: %w", provider, tagStr, err)
	}
	return timestamp, found, nil
}

// List returns every tracked tag string and its last-sync timestamp for
// provider. An unknown provider yields an empty map, not an error.
func (s *Store) List(provider string) (map[string]int64, error) {
	out := make(map[string]int64)
	err := s.db.View(func(tx *bolt.Tx) error {
		b, err := providerBucket(tx, provider, false)
		if err != nil {
			return err
		}
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			out[string(k)] = int64(binary.BigEndian.Uint64(v))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list tags for provider %s: %w", provider, err)
	}
	return out, nil
}

// Forget removes tagStr's entry from provider's bucket. A no-op if either
// the provider or the tag is unknown.
func (s *Store) Forget(provider, tagStr string) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		b, err := providerBucket(tx, provider, false)
		if err != nil {
			return err
		}
		if b == nil {
			return nil
		}
		return b.Delete([]byte(tagStr))
	})
	if err != nil {
		return fmt.Errorf("forget tag %s/%s: %w", provider, tagStr, err)
	}
	return nil
}
