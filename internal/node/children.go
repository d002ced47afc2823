package node

import (
	"sync/atomic"

	"github.com/agentx-labs/platformview/internal/fileobj"
	"github.com/agentx-labs/platformview/internal/platform"
	"github.com/agentx-labs/platformview/internal/tree"
)

// Key identifies one archive child. Equal classpath entries give equal keys,
// so recomputation keeps the existing child nodes.
type Key struct {
	Root  fileobj.ArchiveRoot
	Label string
}

// platformChildren keeps the node's archive children in step with the
// cached platform's embeddable EJB classpath.
type platformChildren struct {
	node *PlatformNode
	keys *tree.Keys[Key]
	// gen numbers key computations; only the newest one is applied.
	gen atomic.Uint64
}

func newPlatformChildren(n *PlatformNode) *platformChildren {
	c := &platformChildren{node: n}
	c.keys = tree.NewKeys(c.createNodes)
	c.keys.SetParent(&n.Base)
	c.keys.OnActivate(c.addNotify)
	c.keys.OnDeactivate(c.removeNotify)
	return c
}

// computeKeys derives one key per classpath entry that is an archive, in
// classpath order. Entries that do not resolve are skipped.
func (c *platformChildren) computeKeys() []Key {
	h, ok := c.node.cache.resolve()
	if !ok || !h.IsToolSupported(platform.ToolEmbeddableEJB) {
		return nil
	}

	files := c.node.opts.files
	var keys []Key
	for _, entry := range h.ToolClasspathEntries(platform.ToolEmbeddableEJB) {
		fo, ok := files.ToFileObject(entry)
		if !ok {
			continue
		}
		root, ok := files.ArchiveRoot(fo)
		if !ok {
			continue
		}
		keys = append(keys, Key{Root: root, Label: fo.NameExt()})
	}
	return keys
}

func (c *platformChildren) createNodes(k Key) []tree.Node {
	return []tree.Node{newPackageViewNode(k, c.node.cs, &c.node.opts)}
}

// addNotify computes the keys on the activating goroutine. A recomputation
// started meanwhile owns the result.
func (c *platformChildren) addNotify() {
	gen := c.gen.Add(1)
	keys := c.computeKeys()
	if c.gen.Load() != gen {
		c.node.logger.Debug().Uint64("generation", gen).Msg("discarding stale child keys")
		return
	}
	c.keys.SetKeys(keys)
}

func (c *platformChildren) removeNotify() {
	c.gen.Add(1)
	c.keys.SetKeys(nil)
}

// postAddNotify recomputes the keys on the background executor and applies
// them on the UI executor, unless a newer computation started meanwhile or
// the children are not shown.
func (c *platformChildren) postAddNotify() {
	gen := c.gen.Add(1)
	n := c.node
	n.ctx.Background().Post(func() {
		if n.destroyed.Load() {
			return
		}
		keys := c.computeKeys()
		n.post(func() {
			if c.gen.Load() != gen {
				n.logger.Debug().Uint64("generation", gen).Msg("discarding stale child keys")
				return
			}
			if !c.keys.Active() {
				return
			}
			c.keys.SetKeys(keys)
		})
	})
}
