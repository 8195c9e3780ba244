package retrieval

import (
	"crypto/sha1"
	"encoding/hex"
	"sync"

	contractx "github.com/thanakit-dev/leadpilot/engine/contract"
	statex "github.com/thanakit-dev/leadpilot/engine/state"
)

// queryCache memoizes ranked results per domain. Entries are last-writer-wins
// and may be read stale; correctness rests on the document store, which
// invalidates the domain synchronously on every write.
type queryCache struct {
	mu      sync.RWMutex
	entries map[contractx.Domain]map[string]*contractx.RankedResult
}

func newQueryCache() *queryCache {
	return &queryCache{
		entries: make(map[contractx.Domain]map[string]*contractx.RankedResult),
	}
}

// key derives the cache key from the enriched query plus the context fields
// that influence ranking.
func (c *queryCache) key(enrichedQuery string, conv *statex.ConversationContext) string {
	h := sha1.New()
	h.Write([]byte(enrichedQuery))
	h.Write([]byte{0})
	if conv != nil {
		h.Write([]byte(conv.EntityType))
		h.Write([]byte{0})
		h.Write([]byte(conv.Stage))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (c *queryCache) get(domain contractx.Domain, key string) (*contractx.RankedResult, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	partition, ok := c.entries[domain]
	if !ok {
		return nil, false
	}
	result, ok := partition[key]
	return result, ok
}

func (c *queryCache) put(domain contractx.Domain, key string, result *contractx.RankedResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	partition, ok := c.entries[domain]
	if !ok {
		partition = make(map[string]*contractx.RankedResult)
		c.entries[domain] = partition
	}
	partition[key] = result
}

func (c *queryCache) invalidateDomain(domain contractx.Domain) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, domain)
}
