package lavalink

import (
	"slices"
	"sync"
	"sync/atomic"
)

// Pool is a round-robin set of nodes. Acquire hands out nodes in insertion
// order so new players spread evenly across the cluster.
type Pool struct {
	mu     sync.RWMutex
	nodes  []Node
	cursor atomic.Uint32
}

// NewPool returns a pool over the given nodes.
func NewPool(nodes ...Node) *Pool {
	return &Pool{nodes: nodes}
}

// Add appends a node to the rotation.
func (p *Pool) Add(node Node) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nodes = append(p.nodes, node)
}

// Acquire returns the next node in the rotation, or ErrNoNodes when the pool
// is empty.
func (p *Pool) Acquire() (Node, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if len(p.nodes) == 0 {
		return nil, ErrNoNodes
	}

	idx := p.cursor.Add(1) - 1
	if p.cursor.Load() >= uint32(len(p.nodes)) {
		p.cursor.Store(0)
	}
	return p.nodes[int(idx)%len(p.nodes)], nil
}

// Remove drops the node from the rotation, matching by identity first and
// node equality second. It reports whether anything was removed.
func (p *Pool) Remove(node Node) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, n := range p.nodes {
		if n == node || Equal(n, node) {
			p.nodes = append(p.nodes[:i], p.nodes[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of pooled nodes.
func (p *Pool) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.nodes)
}

// Nodes returns a snapshot of the rotation.
func (p *Pool) Nodes() []Node {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.nodes)
}
