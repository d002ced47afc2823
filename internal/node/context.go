package node

import (
	"github.com/agentx-labs/platformview/internal/config"
	"github.com/agentx-labs/platformview/internal/fileobj"
	"github.com/agentx-labs/platformview/internal/icon"
	"github.com/agentx-labs/platformview/internal/listener"
	"github.com/agentx-labs/platformview/internal/platform"
)

// PropertyStore holds the property naming the bound platform.
type PropertyStore interface {
	// Property returns the value of key; ok is false when it is unset.
	Property(key string) (value string, ok bool)
	Subscribe(fn func(config.PropertyEvent)) listener.Subscription
}

// Resolver looks platforms up by identifier.
type Resolver interface {
	Platform(id string) (platform.Platform, bool)
}

// ModuleProvider announces platform instances coming and going.
type ModuleProvider interface {
	Subscribe(fn func(platform.InstanceEvent)) listener.Subscription
}

// FileResolver turns classpath entries into browsable archive roots.
type FileResolver interface {
	ToFileObject(path string) (*fileobj.FileObject, bool)
	ArchiveRoot(f *fileobj.FileObject) (fileobj.ArchiveRoot, bool)
}

// Executor runs posted functions. Post must not block.
type Executor interface {
	Post(task func())
}

// Context is the project a node belongs to.
type Context interface {
	ModuleProvider() ModuleProvider
	Platforms() Resolver
	// UI runs node state changes and event delivery, one task at a time.
	UI() Executor
	// Background runs slow work such as archive probing.
	Background() Executor
}

// ClassPathSupport styles the archive children. The zero value uses the
// default icons.
type ClassPathSupport struct {
	ArchiveIcon *icon.Image
	PackageIcon *icon.Image
}

func (cs ClassPathSupport) archiveIcon() *icon.Image {
	if cs.ArchiveIcon != nil {
		return cs.ArchiveIcon
	}
	return icon.MustLoad(icon.Archive)
}

func (cs ClassPathSupport) packageIcon() *icon.Image {
	if cs.PackageIcon != nil {
		return cs.PackageIcon
	}
	return icon.MustLoad(icon.Package)
}
