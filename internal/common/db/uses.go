package db

import "sync"

// connUseCounter retires connections after a fixed number of uses so that
// long-lived sessions do not accumulate server-side state.
type connUseCounter[K comparable] struct {
	mu   sync.Mutex
	max  int64
	uses map[K]int64
}

func newConnUseCounter[K comparable](max int64) *connUseCounter[K] {
	return &connUseCounter[K]{
		max:  max,
		uses: make(map[K]int64),
	}
}

// release records one use and reports whether the connection may go back
// to the pool.
func (c *connUseCounter[K]) release(conn K) bool {
	if c.max <= 0 {
		return true
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.uses[conn]++
	if c.uses[conn] >= c.max {
		delete(c.uses, conn)
		return false
	}
	return true
}

func (c *connUseCounter[K]) prune(closed func(K) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for conn := range c.uses {
		if closed(conn) {
			delete(c.uses, conn)
		}
	}
}

func (c *connUseCounter[K]) tracked() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.uses)
}
