package output

import "sync"

// Clearer is anything that can be reset for reuse.
type Clearer interface {
	Clear()
}

// Pool recycles builders. Get always returns a cleared builder.
type Pool[B Clearer] struct {
	pool sync.Pool
}

// NewPool returns a pool that allocates with newFn.
func NewPool[B Clearer](newFn func() B) *Pool[B] {
	p := &Pool[B]{}
	p.pool.New = func() any { return newFn() }
	return p
}

// Get returns a cleared builder.
func (p *Pool[B]) Get() B {
	b := p.pool.Get().(B)
	b.Clear()
	return b
}

// Put clears b and returns it to the pool.
func (p *Pool[B]) Put(b B) {
	b.Clear()
	p.pool.Put(b)
}
