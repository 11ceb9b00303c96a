package store

import "sync"

type inflightCall struct {
	wg  sync.WaitGroup
	val any
	err error
}

// inflightGroup coalesces concurrent identical actions into a single
// execution, keyed by action+entity id. A second caller arriving while the
// first is still pending waits for its result instead of issuing a
// duplicate remote request, and receives the same value and error.
type inflightGroup struct {
	mu    sync.Mutex
	calls map[string]*inflightCall
}

// Do runs fn under key, or joins an execution already in flight for the
// same key. The bool reports whether the result was shared.
func (g *inflightGroup) Do(key string, fn func() (any, error)) (any, error, bool) {
	g.mu.Lock()
	if g.calls == nil {
		g.calls = make(map[string]*inflightCall)
	}
	if c, ok := g.calls[key]; ok {
		g.mu.Unlock()
		c.wg.Wait()
		return c.val, c.err, true
	}
	c := &inflightCall{}
	c.wg.Add(1)
	g.calls[key] = c
	g.mu.Unlock()

	c.val, c.err = fn()
	c.wg.Done()

	g.mu.Lock()
	delete(g.calls, key)
	g.mu.Unlock()

	return c.val, c.err, false
}
