package ocr

import (
	"fmt"
	"strings"
	"sync"
)

// Cache memoizes engine construction per normalized language tuple. Engine
// startup can involve loading hundreds of megabytes of language data, and the
// key space is small and bounded, so entries are never evicted.
type Cache struct {
	factory Factory

	mu      sync.Mutex
	engines map[string]Engine
}

// NewCache creates an engine cache around the given factory.
func NewCache(factory Factory) *Cache {
	return &Cache{
		factory: factory,
		engines: make(map[string]Engine),
	}
}

// Get returns the engine for the language tuple, constructing it on first use.
func (c *Cache) Get(langs []string) (Engine, error) {
	key := strings.Join(langs, "+")

	c.mu.Lock()
	defer c.mu.Unlock()

	if eng, ok := c.engines[key]; ok {
		return eng, nil
	}
	eng, err := c.factory(langs)
	if err != nil {
		return nil, fmt.Errorf("construct ocr engine for %q: %w", key, err)
	}
	c.engines[key] = eng
	return eng, nil
}

// Len reports the number of cached engines.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.engines)
}
