// Package diskset implements the append-only, fixed-width hash set used as
// the global and per-tag presence caches: a single file of consecutive
// 20-byte records, with swap-with-last deletion. An in-memory LRU index
// sits in front of the linear scan to keep hot lookups cheap without
// changing the on-disk format or any externally observed semantics.
package diskset

import (
	"fmt"
	"io"
	"os"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ItemSize is the fixed record width: one SHA-1 object hash.
const ItemSize = 20

// Item is one fixed-width set member.
type Item [ItemSize]byte

// defaultCacheSize bounds the in-memory offset index; it trades a small,
// constant amount of memory for O(1) hits on repeat lookups, which matters
// because a sync's classification step calls Contains once per touched
// blob and the file can grow to hundreds of thousands of records over a
// large workspace's lifetime.
const defaultCacheSize = 8192

// DiskSet is a set of Items backed by a single file, held open for the
// lifetime of a sync.
type DiskSet struct {
	mu   sync.Mutex
	path string
	f    *os.File
	size int64 // file size in bytes; always a multiple of ItemSize

	// index caches item -> offset for items confirmed present. A hit is
	// still verified against the file before being trusted, so a stale
	// entry can never cause an incorrect answer, only a missed fast path.
	index *lru.Cache[Item, int64]
}

// Open opens (creating if necessary) the DiskSet file at path.
func Open(path string) (*DiskSet, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open diskset %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat diskset %s: %w", path, err)
	}
	if info.Size()%ItemSize != 0 {
		f.Close()
		return nil, fmt.Errorf("diskset %s has invalid size %d (not a multiple of %d)", path, info.Size(), ItemSize)
	}

	cache, err := lru.New[Item, int64](defaultCacheSize)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create diskset index: %w", err)
	}

	return &DiskSet{path: path, f: f, size: info.Size(), index: cache}, nil
}

// Close releases the underlying file handle.
func (d *DiskSet) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.f.Close()
}

// Len reports the number of items currently in the set.
func (d *DiskSet) Len() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.size / ItemSize
}

// Contains reports whether item is in the set.
func (d *DiskSet) Contains(item Item) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, found, err := d.locate(item)
	return found, err
}

// Add appends item to the set if it is not already present.
func (d *DiskSet) Add(item Item) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, found, err := d.locate(item)
	if err != nil {
		return err
	}
	if found {
		return nil
	}

	offset := d.size
	if _, err := d.f.WriteAt(item[:], offset); err != nil {
		return fmt.Errorf("append to diskset %s: %w", d.path, err)
	}
	if err := d.f.Sync(); err != nil {
		return fmt.Errorf("flush diskset %s: %w", d.path, err)
	}
	d.size += ItemSize
	d.index.Add(item, offset)
	return nil
}

// Remove removes item from the set, swapping the file's last record into
// its slot and truncating by one record. A no-op if item is absent.
func (d *DiskSet) Remove(item Item) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	offset, found, err := d.locate(item)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	lastOffset := d.size - ItemSize
	if offset != lastOffset {
		var last Item
		if _, err := d.f.ReadAt(last[:], lastOffset); err != nil {
			return fmt.Errorf("read last record of diskset %s: %w", d.path, err)
		}
		if _, err := d.f.WriteAt(last[:], offset); err != nil {
			return fmt.Errorf("write swapped record into diskset %s: %w", d.path, err)
		}
		if d.index.Contains(last) {
			d.index.Add(last, offset)
		}
	}

	if err := d.f.Truncate(lastOffset); err != nil {
		return fmt.Errorf("truncate diskset %s: %w", d.path, err)
	}
	d.size = lastOffset
	d.index.Remove(item)
	return nil
}

// locate finds item's current offset, trying the index first and falling
// back to a linear scan. A cache hit is verified by reading the file
// before being trusted, so staleness can only cost a fallback scan, never
// an incorrect result.
func (d *DiskSet) locate(item Item) (offset int64, found bool, err error) {
	if off, ok := d.index.Get(item); ok {
		var buf Item
		if _, err := d.f.ReadAt(buf[:], off); err == nil && buf == item {
			return off, true, nil
		}
		d.index.Remove(item)
	}

	off, found, err := d.scan(item)
	if err != nil {
		return 0, false, err
	}
	if found {
		d.index.Add(item, off)
	}
	return off, found, nil
}

// scan performs the linear, fixed-width-window scan from offset 0.
func (d *DiskSet) scan(item Item) (offset int64, found bool, err error) {
	var buf Item
	for off := int64(0); off < d.size; off += ItemSize {
		n, err := d.f.ReadAt(buf[:], off)
		if err != nil && err != io.EOF {
			return 0, false, fmt.Errorf("scan diskset %s: %w", d.path, err)
		}
		if n < ItemSize {
			return 0, false, fmt.Errorf("scan diskset %s: short read at offset %d", d.path, off)
		}
		if buf == item {
			return off, true, nil
		}
	}
	return 0, false, nil
}
