package services

import "sync"

// CapabilityCache memoizes one schema capability probe for the whole process.
// It is injected into the resolver instead of living in a package variable so
// tests can Reset it between cases.
type CapabilityCache struct {
	mu        sync.RWMutex
	known     bool
	supported bool
}

func NewCapabilityCache() *CapabilityCache {
	return &CapabilityCache{}
}

// Get returns the memoized value and whether one has been recorded yet.
func (c *CapabilityCache) Get() (supported bool, known bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.supported, c.known
}

func (c *CapabilityCache) Set(supported bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.supported = supported
	c.known = true
}

// Reset clears the memo, forcing the next probe to hit the store again. Used
// after a schema migration may have changed the table underneath us.
func (c *CapabilityCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.known = false
	c.supported = false
}
