package docs

import (
	"strings"
	"sync"
)

// DefaultQueryCacheCapacity is how many search batches are remembered.
const DefaultQueryCacheCapacity = 3

// QueryCache remembers the most recent search batches so that a page read can
// be attributed to the search that surfaced it.
//
// Batches are kept newest first. It is safe for concurrent use.
type QueryCache struct {
	mu       sync.RWMutex
	capacity int
	batches  [][]SearchResult
}

// NewQueryCache returns an empty cache holding at most capacity batches.
// A non-positive capacity falls back to DefaultQueryCacheCapacity.
func NewQueryCache(capacity int) *QueryCache {
	if capacity <= 0 {
		capacity = DefaultQueryCacheCapacity
	}
	return &QueryCache{
		capacity: capacity,
		batches:  make([][]SearchResult, 0, capacity+1),
	}
}

// Insert stores batch as the most recent one, evicting the oldest batch when full.
func (c *QueryCache) Insert(batch []SearchResult) {
	stored := make([]SearchResult, len(batch))
	copy(stored, batch)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.batches = append(c.batches, nil)
	copy(c.batches[1:], c.batches)
	c.batches[0] = stored
	if len(c.batches) > c.capacity {
		c.batches[len(c.batches)-1] = nil
		c.batches = c.batches[:c.capacity]
	}
}

// Lookup returns the percent-encoded query id of the most recent search that
// returned url. The comparison is exact.
func (c *QueryCache) Lookup(url string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, batch := range c.batches {
		for _, result := range batch {
			if result.URL == url {
				return PercentEncode(result.QueryID), true
			}
		}
	}
	return "", false
}

// Len returns the number of stored batches.
func (c *QueryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.batches)
}

const upperHex = "0123456789ABCDEF"

// PercentEncode escapes s for a URL query value. Unreserved characters and '/'
// are kept, every other byte becomes %XX.
func PercentEncode(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		b := s[i]
		if isUnreserved(b) {
			sb.WriteByte(b)
			continue
		}
		sb.WriteByte('%')
		sb.WriteByte(upperHex[b>>4])
		sb.WriteByte(upperHex[b&0x0f])
	}
	return sb.String()
}

func isUnreserved(b byte) bool {
	switch {
	case 'a' <= b && b <= 'z', 'A' <= b && b <= 'Z', '0' <= b && b <= '9':
		return true
	}
	switch b {
	case '-', '.', '_', '~', '/':
		return true
	}
	return false
}
