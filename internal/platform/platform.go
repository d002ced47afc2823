package platform

import (
	"github.com/agentx-labs/platformview/internal/icon"
	"github.com/agentx-labs/platformview/internal/listener"
	"github.com/agentx-labs/platformview/internal/manifest"
)

// ToolEmbeddableEJB names the embeddable EJB container tool.
const ToolEmbeddableEJB = manifest.ToolEmbeddableEJB

// Attribute names carried by AttributeEvent.
const (
	PropDisplayName = "displayName"
	PropClasspath   = "classpath"
)

// Platform is a resolved server platform.
type Platform interface {
	// ID returns the instance identifier the platform was resolved from.
	ID() string
	DisplayName() string
	// Icon returns the platform icon, or nil when it has none.
	Icon() *icon.Image
	IsToolSupported(tool string) bool
	// ToolClasspathEntries returns the tool's classpath in declaration order.
	ToolClasspathEntries(tool string) []string
	// Subscribe registers fn for attribute changes.
	Subscribe(fn func(AttributeEvent)) listener.Subscription
}

// AttributeEvent reports a change to one platform attribute. For
// PropClasspath, Tool names the tool whose classpath changed and Old/New hold
// []string values; for PropDisplayName they hold strings.
type AttributeEvent struct {
	Platform Platform
	Name     string
	Tool     string
	Old      any
	New      any
}

// InstanceEventKind distinguishes instance notifications.
type InstanceEventKind int

const (
	InstanceAdded InstanceEventKind = iota
	InstanceRemoved
	DefaultInstanceChanged
)

func (k InstanceEventKind) String() string {
	switch k {
	case InstanceAdded:
		return "added"
	case InstanceRemoved:
		return "removed"
	case DefaultInstanceChanged:
		return "default-changed"
	default:
		return "unknown"
	}
}

// InstanceEvent reports a change in the set of installed platforms. For
// DefaultInstanceChanged, OldID is the previous default and ID the new one;
// either may be empty.
type InstanceEvent struct {
	Kind  InstanceEventKind
	ID    string
	OldID string
}
