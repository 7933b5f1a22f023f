// Package hashcache memoizes file content hashes behind an LRU, so repeated
// fingerprint computations within a process do not rehash unchanged files.
// Eviction or staleness is harmless: a miss only costs a rehash.
package hashcache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"sync"
)

// Cache is a bounded LRU of path -> content hash, validated by (size, mtime).
// Safe for concurrent use by scheduler workers.
type Cache struct {
	mu         sync.Mutex
	maxEntries int
	// order is the LRU list of *entry (front = most recent).
	order *list.List
	// elements maps path -> *list.Element for O(1) lookup.
	elements map[string]*list.Element
}

type entry struct {
	path  string
	size  int64
	mtime int64 // UnixNano
	sum   string
}

// DefaultMaxEntries bounds the default cache; hook input sets are small.
const DefaultMaxEntries = 4096

// New returns a Cache retaining at most maxEntries hashes. Non-positive
// maxEntries falls back to DefaultMaxEntries.
func New(maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Cache{
		maxEntries: maxEntries,
		order:      list.New(),
		elements:   make(map[string]*list.Element),
	}
}

// SumFile returns the sha256 hex digest of the file's contents, served from
// the cache when the file's size and mtime are unchanged since last hashed.
func (c *Cache) SumFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	size, mtime := info.Size(), info.ModTime().UnixNano()

	c.mu.Lock()
	if elem, ok := c.elements[path]; ok {
		e := elem.Value.(*entry)
		if e.size == size && e.mtime == mtime {
			c.order.MoveToFront(elem)
			sum := e.sum
			c.mu.Unlock()
			return sum, nil
		}
	}
	c.mu.Unlock()

	// Hash outside the lock; concurrent duplicate hashing of the same path
	// is wasted work, not a correctness problem.
	sum, err := sumFile(path)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.elements[path]; ok {
		e := elem.Value.(*entry)
		e.size, e.mtime, e.sum = size, mtime, sum
		c.order.MoveToFront(elem)
		return sum, nil
	}

	c.elements[path] = c.order.PushFront(&entry{path: path, size: size, mtime: mtime, sum: sum})
	for c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.order.Remove(oldest)
		delete(c.elements, oldest.Value.(*entry).path)
	}
	return sum, nil
}

// Len returns the number of cached hashes.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func sumFile(path string) (string, error) {
	f, err := os.Open(path) //nolint:gosec // G304: path comes from the host's changed-file list
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
