package node

import (
	"strings"
	"sync/atomic"

	"github.com/agentx-labs/platformview/internal/config"
	"github.com/agentx-labs/platformview/internal/i18n"
	"github.com/agentx-labs/platformview/internal/icon"
	"github.com/agentx-labs/platformview/internal/listener"
	"github.com/agentx-labs/platformview/internal/log"
	"github.com/agentx-labs/platformview/internal/platform"
	"github.com/agentx-labs/platformview/internal/tree"
	"github.com/rs/zerolog"
)

// BrokenIcon is shown while no platform resolves: the server icon with the
// broken-project badge.
var BrokenIcon = icon.Merge(icon.MustLoad(icon.Server), icon.MustLoad(icon.BrokenBadge), 8, 0)

// PlatformNode shows the server platform bound to a project through a
// property, and the platform's embeddable EJB container archives as its
// children.
type PlatformNode struct {
	tree.Base

	ctx      Context
	props    PropertyStore
	propName string
	cs       ClassPathSupport
	opts     options
	logger   zerolog.Logger

	cache    *platformCache
	children *platformChildren

	subs      listener.Group
	destroyed atomic.Bool
	refreshes atomic.Int64
}

var _ tree.Node = (*PlatformNode)(nil)

// New returns the platform node for the platform named by propName in props.
// The node listens to props and to the context's module provider until
// Destroy is called.
func New(ctx Context, props PropertyStore, propName string, cs ClassPathSupport, opts ...Option) *PlatformNode {
	n := &PlatformNode{
		ctx:      ctx,
		props:    props,
		propName: propName,
		cs:       cs,
		opts:     defaultOptions(),
		logger:   log.WithComponent("node").With().Str("property", propName).Logger(),
	}
	for _, opt := range opts {
		opt(&n.opts)
	}
	n.Bind(n)
	n.cache = &platformCache{node: n}
	n.children = newPlatformChildren(n)

	n.subs.Add(listener.SubscribeWeak[PlatformNode, config.PropertyEvent](props, n, (*PlatformNode).propertyChange))
	n.subs.Add(listener.SubscribeWeak[PlatformNode, platform.InstanceEvent](ctx.ModuleProvider(), n, (*PlatformNode).instanceChange))
	return n
}

// Name equals DisplayName.
func (n *PlatformNode) Name() string { return n.DisplayName() }

// DisplayName is always empty; the node is labelled by HTMLDisplayName.
func (n *PlatformNode) DisplayName() string { return "" }

// HTMLDisplayName names the platform and its embeddable container, or
// reports the platform missing.
func (n *PlatformNode) HTMLDisplayName() string {
	if h, ok := n.cache.resolve(); ok {
		return h.DisplayName() + " (" + n.opts.text(i18n.EmbeddableContainer) + ")"
	}
	return n.opts.text(i18n.ServerMissing)
}

// Icon returns the platform's icon, or BrokenIcon when there is none.
func (n *PlatformNode) Icon(tree.IconType) *icon.Image {
	if h, ok := n.cache.resolve(); ok {
		if img := h.Icon(); img != nil {
			return img
		}
	}
	return BrokenIcon
}

// OpenedIcon equals Icon.
func (n *PlatformNode) OpenedIcon(t tree.IconType) *icon.Image { return n.Icon(t) }

func (n *PlatformNode) CanCopy() bool { return false }

func (n *PlatformNode) Actions(bool) []tree.Action { return []tree.Action{} }

func (n *PlatformNode) Children() tree.Children { return n.children.keys }

// Destroy detaches the node from its property store, module provider and
// platform and releases its children. Work already posted becomes a no-op.
func (n *PlatformNode) Destroy() {
	if !n.destroyed.CompareAndSwap(false, true) {
		return
	}
	n.subs.Cancel()
	n.cache.invalidate()
	n.children.keys.Deactivate()
}

// propertyChange refreshes when the bound property changes. Property names
// are case-insensitive.
func (n *PlatformNode) propertyChange(e config.PropertyEvent) {
	if strings.EqualFold(e.Key, n.propName) {
		n.refresh()
	}
}

// instanceChange refreshes when any instance is added or removed. A new
// default instance does not change which platform the node is bound to.
func (n *PlatformNode) instanceChange(e platform.InstanceEvent) {
	switch e.Kind {
	case platform.InstanceAdded, platform.InstanceRemoved:
		n.refresh()
	}
}

// refresh schedules doRefresh on the UI executor and returns at once.
func (n *PlatformNode) refresh() {
	n.post(n.doRefresh)
}

func (n *PlatformNode) doRefresh() {
	n.refreshes.Add(1)
	n.logger.Debug().Msg("refreshing platform node")
	n.cache.invalidate()
	n.FireNamesUnknown()
	n.FireIconChange()
	n.children.postAddNotify()
}

// post runs task on the UI executor unless the node has been destroyed by
// the time it runs.
func (n *PlatformNode) post(task func()) {
	if n.destroyed.Load() {
		return
	}
	n.ctx.UI().Post(func() {
		if n.destroyed.Load() {
			return
		}
		task()
	})
}
