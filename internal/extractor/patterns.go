package extractor

import (
	"sync"
	"time"

	"github.com/dlclark/regexp2"
)

// DefaultPatternTimeout bounds a single noise-filter substitution.
const DefaultPatternTimeout = 250 * time.Millisecond

type compiledPattern struct {
	re  *regexp2.Regexp
	err error
}

// PatternCache compiles noise filters once and shares them across checks.
// Compilation failures are cached as well.
type PatternCache struct {
	mu      sync.RWMutex
	timeout time.Duration
	entries map[string]compiledPattern
}

// NewPatternCache creates a cache whose patterns abort after timeout
func NewPatternCache(timeout time.Duration) *PatternCache {
	if timeout <= 0 {
		timeout = DefaultPatternTimeout
	}
	return &PatternCache{
		timeout: timeout,
		entries: make(map[string]compiledPattern),
	}
}

// Get returns the compiled pattern or its compile error.
func (c *PatternCache) Get(pattern string) (*regexp2.Regexp, error) {
	c.mu.RLock()
	entry, ok := c.entries[pattern]
	c.mu.RUnlock()
	if ok {
		return entry.re, entry.err
	}

	re, err := regexp2.Compile(pattern, regexp2.None)
	if err == nil {
		re.MatchTimeout = c.timeout
	}
	entry = compiledPattern{re: re, err: err}

	c.mu.Lock()
	c.entries[pattern] = entry
	c.mu.Unlock()
	return re, err
}

// Len reports how many distinct patterns have been compiled.
func (c *PatternCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
