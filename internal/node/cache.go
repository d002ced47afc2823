package node

import (
	"sync"

	"github.com/agentx-labs/platformview/internal/listener"
	"github.com/agentx-labs/platformview/internal/platform"
)

// platformCache holds the node's resolved platform. The handle's attribute
// events reach the cache through a weak subscription, so the platform never
// keeps a discarded cache reachable.
type platformCache struct {
	node *PlatformNode

	mu     sync.Mutex
	handle platform.Platform
	sub    listener.Subscription
}

// resolve returns the cached platform, resolving it from the bound property
// on a miss. An unset property or unknown identifier is a miss that caches
// nothing.
func (c *platformCache) resolve() (platform.Platform, bool) {
	c.mu.Lock()
	if c.handle != nil {
		h := c.handle
		c.mu.Unlock()
		return h, true
	}

	n := c.node
	id, ok := n.props.Property(n.propName)
	if !ok {
		c.mu.Unlock()
		return nil, false
	}
	h, ok := n.ctx.Platforms().Platform(id)
	if !ok || h == nil {
		c.mu.Unlock()
		n.logger.Debug().Str("platform", id).Msg("platform not resolvable")
		return nil, false
	}

	c.handle = h
	c.sub = listener.SubscribeWeak[platformCache, platform.AttributeEvent](h, c, (*platformCache).attributeChange)
	c.mu.Unlock()

	n.logger.Debug().Str("platform", id).Msg("platform resolved")
	// The node may still be showing the broken icon.
	n.post(n.FireIconChange)
	return h, true
}

// cached returns the handle without resolving.
func (c *platformCache) cached() platform.Platform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handle
}

// invalidate drops the cached platform and its subscription.
func (c *platformCache) invalidate() {
	c.mu.Lock()
	sub := c.sub
	c.handle, c.sub = nil, nil
	c.mu.Unlock()

	if sub != nil {
		sub.Cancel()
	}
}

func (c *platformCache) attributeChange(e platform.AttributeEvent) {
	n := c.node
	switch e.Name {
	case platform.PropDisplayName:
		from, _ := e.Old.(string)
		to, _ := e.New.(string)
		n.post(func() {
			n.FireNameChange(from, to)
			n.FireDisplayNameChange(from, to)
		})
	case platform.PropClasspath:
		n.refresh()
	}
}
