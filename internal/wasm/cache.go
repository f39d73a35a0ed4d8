package wasm

import (
	"container/list"
	"regexp"
	"sync"
)

const (
	// DefaultRegexCacheSize is the default maximum number of cached regex
	// patterns.
	DefaultRegexCacheSize = 100

	// MaxPatternLength is the maximum length of a regex pattern (ReDoS
	// protection).
	MaxPatternLength = 512
)

// regexCache is an LRU cache for regular expressions compiled on behalf of
// plugins. Plugins tend to reuse a handful of patterns across many lines,
// so caching avoids recompiling per host call. Safe for concurrent use.
type regexCache struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List // front = most recently used
	maxSize int
}

type cacheEntry struct {
	pattern string
	re      *regexp.Regexp
}

func newRegexCache(maxSize int) *regexCache {
	return &regexCache{
		entries: make(map[string]*list.Element),
		order:   list.New(),
		maxSize: maxSize,
	}
}

// Get returns the compiled regex for pattern, compiling and caching it on
// first use. Patterns over MaxPatternLength are rejected.
func (c *regexCache) Get(pattern string) (*regexp.Regexp, error) {
	if len(pattern) > MaxPatternLength {
		return nil, &ABIError{
			Function: "regex_match",
			Reason:   "pattern exceeds maximum length",
		}
	}

	c.mu.Lock()
	if elem, ok := c.entries[pattern]; ok {
		c.order.MoveToFront(elem)
		re := elem.Value.(*cacheEntry).re
		c.mu.Unlock()
		return re, nil
	}
	c.mu.Unlock()

	// Compile outside the lock; regex compilation can be slow.
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another call may have compiled the same pattern meanwhile.
	if elem, ok := c.entries[pattern]; ok {
		c.order.MoveToFront(elem)
		return elem.Value.(*cacheEntry).re, nil
	}

	if c.order.Len() >= c.maxSize {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.entries, oldest.Value.(*cacheEntry).pattern)
		}
	}

	c.entries[pattern] = c.order.PushFront(&cacheEntry{pattern: pattern, re: re})
	return re, nil
}

// Len returns the current number of cached patterns.
func (c *regexCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
