// Package revtags implements the reverse-tag index: for every indexed
// content hash, the set of tags that currently hold it. Entries are
// sharded across flat JSON files keyed by the hash's first two hex
// characters, bounding shard size and keeping rewrites sublinear in the
// total number of indexed objects.
package revtags

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Store is a reverse-tag index rooted at one provider's rev_tags
// directory.
type Store struct {
	dir string
}

// Open ensures dir exists and returns a Store rooted there.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create rev_tags directory %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) shardPath(hashHex string) (string, error) {
	if len(hashHex) < 2 {
		return "", fmt.Errorf("hash %q too short to shard", hashHex)
	}
	return filepath.Join(s.dir, hashHex[:2]), nil
}

// shard is the on-disk shape of one shard file: hash hex -> ordered tag
// list. Missing shard is treated as an empty object.
type shard map[string][]string

func (s *Store) readShard(path string) (shard, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return shard{}, nil
		}
		return nil, fmt.Errorf("read shard %s: %w", path, err)
	}
	if len(data) == 0 {
		return shard{}, nil
	}
	var sh shard
	if err := json.Unmarshal(data, &sh); err != nil {
		return nil, fmt.Errorf("decode shard %s: %w", path, err)
	}
	if sh == nil {
		sh = shard{}
	}
	return sh, nil
}

func (s *Store) writeShard(path string, sh shard) error {
	data, err := json.Marshal(sh)
	if err != nil {
		return fmt.Errorf("encode shard %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write shard %s: %w", path, err)
	}
	return nil
}

// Get returns the tags currently holding hashHex, or nil if none.
func (s *Store) Get(hashHex string) ([]string, error) {
	path, err := s.shardPath(hashHex)
	if err != nil {
		return nil, err
	}
	sh, err := s.readShard(path)
	if err != nil {
		return nil, err
	}
	return sh[hashHex], nil
}

// Add appends tag to hashHex's holder list if not already present, and
// writes the shard back whole.
func (s *Store) Add(hashHex, tag string) error {
	path, err := s.shardPath(hashHex)
	if err != nil {
		return err
	}
	sh, err := s.readShard(path)
	if err != nil {
		return err
	}

	tags := sh[hashHex]
	for _, existing := range tags {
		if existing == tag {
			return nil
		}
	}
	sh[hashHex] = append(tags, tag)
	return s.writeShard(path, sh)
}

// RemoveGlobal drops hashHex's entire entry, regardless of holders.
func (s *Store) RemoveGlobal(hashHex string) error {
	path, err := s.shardPath(hashHex)
	if err != nil {
		return err
	}
	sh, err := s.readShard(path)
	if err != nil {
		return err
	}
	if _, ok := sh[hashHex]; !ok {
		return nil
	}
	delete(sh, hashHex)
	return s.writeShard(path, sh)
}

// RemoveLocal drops tag from hashHex's holder list, removing the entry
// entirely if no holders remain.
func (s *Store) RemoveLocal(hashHex, tag string) error {
	path, err := s.shardPath(hashHex)
	if err != nil {
		return err
	}
	sh, err := s.readShard(path)
	if err != nil {
		return err
	}

	tags, ok := sh[hashHex]
	if !ok {
		return nil
	}

	remaining := tags[:0]
	for _, existing := range tags {
		if existing != tag {
			remaining = append(remaining, existing)
		}
	}

	if len(remaining) == 0 {
		delete(sh, hashHex)
	} else {
		sh[hashHex] = remaining
	}
	return s.writeShard(path, sh)
}
