package tree

import (
	"github.com/agentx-labs/platformview/internal/icon"
	"github.com/agentx-labs/platformview/internal/listener"
)

// IconType selects the icon variant a renderer asks for.
type IconType int

const (
	IconSmall IconType = iota // 16x16
	IconLarge                 // 32x32
)

// Action is something a node offers to do.
type Action struct {
	Name string
	Run  func() error
}

// Node is one entry of the logical view.
type Node interface {
	Name() string
	DisplayName() string
	// HTMLDisplayName may carry simple formatting markup; empty means the
	// display name is used as is.
	HTMLDisplayName() string
	Icon(t IconType) *icon.Image
	OpenedIcon(t IconType) *icon.Image
	CanCopy() bool
	Actions(context bool) []Action
	Children() Children
	// AddListener registers fn for this node's events.
	AddListener(fn func(Event)) listener.Subscription
}

// Children is a node's child collection.
type Children interface {
	// Nodes returns the current child nodes, activating the collection on
	// first use.
	Nodes() []Node
	IsLeaf() bool
}

// Destroyer is implemented by nodes that hold subscriptions; a child
// collection calls Destroy when it drops such a node.
type Destroyer interface {
	Destroy()
}

// Leaf is the child collection of nodes that have none.
var Leaf Children = leaf{}

type leaf struct{}

func (leaf) Nodes() []Node { return nil }
func (leaf) IsLeaf() bool  { return true }
