package tree

import (
	"sync"
)

// Keys is a child collection driven by a list of keys. Each key maps to the
// nodes its factory creates; SetKeys reconciles the collection against a new
// list, keeping the nodes of unchanged keys, creating nodes for new keys and
// destroying the nodes of keys that disappeared.
type Keys[K comparable] struct {
	create func(K) []Node

	// Hooks, all optional. onActivate runs when the collection is first
	// asked for its nodes and onDeactivate when Deactivate is called. Both
	// run without the collection's lock held and may call SetKeys, but
	// onActivate must not call Nodes.
	onActivate   func()
	onDeactivate func()
	onDestroy    func(K, []Node)

	parent *Base

	// setMu serializes SetKeys; mu guards the fields below it.
	setMu  sync.Mutex
	mu     sync.Mutex
	keys   []K
	nodes  map[K][]Node
	active bool
	// activating is closed when the running onActivate returns.
	activating chan struct{}
}

// NewKeys returns an inactive, empty collection whose nodes come from create.
func NewKeys[K comparable](create func(K) []Node) *Keys[K] {
	return &Keys[K]{create: create, nodes: make(map[K][]Node)}
}

// OnActivate sets the hook run on activation. Set hooks before the
// collection is shared.
func (c *Keys[K]) OnActivate(fn func()) { c.onActivate = fn }

// OnDeactivate sets the hook run on deactivation.
func (c *Keys[K]) OnDeactivate(fn func()) { c.onDeactivate = fn }

// OnDestroy sets the hook run for every key whose nodes are dropped.
func (c *Keys[K]) OnDestroy(fn func(K, []Node)) { c.onDestroy = fn }

// SetParent makes the collection announce added and removed nodes through
// parent.
func (c *Keys[K]) SetParent(parent *Base) { c.parent = parent }

// IsLeaf reports false; a keyed collection may always gain children.
func (c *Keys[K]) IsLeaf() bool { return false }

// Active reports whether the collection has been activated.
func (c *Keys[K]) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Keys returns the current keys in order.
func (c *Keys[K]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]K, len(c.keys))
	copy(out, c.keys)
	return out
}

// Nodes activates the collection if needed and returns the nodes of every
// key, in key order. Callers arriving while activation runs wait for it.
func (c *Keys[K]) Nodes() []Node {
	c.mu.Lock()
	for c.activating != nil {
		wait := c.activating
		c.mu.Unlock()
		<-wait
		c.mu.Lock()
	}
	var done chan struct{}
	if !c.active && c.onActivate != nil {
		done = make(chan struct{})
		c.activating = done
	}
	c.active = true
	c.mu.Unlock()

	if done != nil {
		c.activate(done)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Node
	for _, k := range c.keys {
		out = append(out, c.nodes[k]...)
	}
	return out
}

func (c *Keys[K]) activate(done chan struct{}) {
	defer func() {
		c.mu.Lock()
		c.activating = nil
		c.mu.Unlock()
		close(done)
	}()
	c.onActivate()
}

// NodesFor returns the nodes created for key.
func (c *Keys[K]) NodesFor(key K) ([]Node, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	nodes, ok := c.nodes[key]
	return nodes, ok
}

// Deactivate runs the deactivation hook and marks the collection inactive.
// It is a no-op on an inactive collection.
func (c *Keys[K]) Deactivate() {
	c.mu.Lock()
	wasActive := c.active
	c.active = false
	c.mu.Unlock()

	if wasActive && c.onDeactivate != nil {
		c.onDeactivate()
	}
}

// SetKeys replaces the key list. Duplicate keys are collapsed onto their
// first occurrence. It returns the keys that were added and removed.
// Concurrent calls are applied one after the other.
func (c *Keys[K]) SetKeys(keys []K) (added, removed []K) {
	next := dedupe(keys)

	c.setMu.Lock()
	c.mu.Lock()
	added, removed = Diff(c.keys, next)

	dropped := make(map[K][]Node, len(removed))
	var droppedNodes []Node
	for _, k := range removed {
		dropped[k] = c.nodes[k]
		droppedNodes = append(droppedNodes, c.nodes[k]...)
		delete(c.nodes, k)
	}
	c.keys = next
	c.mu.Unlock()

	// Factories run unlocked so they may query the collection.
	created := make(map[K][]Node, len(added))
	var createdNodes []Node
	for _, k := range added {
		nodes := c.create(k)
		created[k] = nodes
		createdNodes = append(createdNodes, nodes...)
	}

	c.mu.Lock()
	for k, nodes := range created {
		c.nodes[k] = nodes
	}
	c.mu.Unlock()

	for _, k := range removed {
		if c.onDestroy != nil {
			c.onDestroy(k, dropped[k])
		}
		for _, n := range dropped[k] {
			if d, ok := n.(Destroyer); ok {
				d.Destroy()
			}
		}
	}

	c.setMu.Unlock()

	if c.parent != nil {
		if len(droppedNodes) > 0 {
			c.parent.Fire(Event{Kind: ChildrenRemoved, Children: droppedNodes})
		}
		if len(createdNodes) > 0 {
			c.parent.Fire(Event{Kind: ChildrenAdded, Children: createdNodes})
		}
	}
	return added, removed
}

// Diff returns the keys of next missing from prev and the keys of prev
// missing from next, each in the order of its source list.
func Diff[K comparable](prev, next []K) (added, removed []K) {
	inPrev := make(map[K]struct{}, len(prev))
	for _, k := range prev {
		inPrev[k] = struct{}{}
	}
	inNext := make(map[K]struct{}, len(next))
	for _, k := range next {
		inNext[k] = struct{}{}
		if _, ok := inPrev[k]; !ok {
			added = append(added, k)
		}
	}
	for _, k := range prev {
		if _, ok := inNext[k]; !ok {
			removed = append(removed, k)
		}
	}
	return added, removed
}

func dedupe[K comparable](keys []K) []K {
	seen := make(map[K]struct{}, len(keys))
	out := make([]K, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
