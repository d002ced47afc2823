package tree

import (
	"github.com/agentx-labs/platformview/internal/listener"
)

// EventKind identifies what changed on a node.
type EventKind int

const (
	NameChanged EventKind = iota
	DisplayNameChanged
	IconChanged
	OpenedIconChanged
	ChildrenAdded
	ChildrenRemoved
)

var kindNames = [...]string{
	NameChanged:        "name",
	DisplayNameChanged: "displayName",
	IconChanged:        "icon",
	OpenedIconChanged:  "openedIcon",
	ChildrenAdded:      "childrenAdded",
	ChildrenRemoved:    "childrenRemoved",
}

func (k EventKind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Event is a node notification. For name events Old and New hold strings
// unless Unknown is set, in which case listeners must re-query the node.
// Children events carry the affected nodes.
type Event struct {
	Kind     EventKind
	Node     Node
	Old      string
	New      string
	Unknown  bool
	Children []Node
}

// Base implements node event delivery. Embed it and call Bind with the
// embedding node before firing.
type Base struct {
	self      Node
	listeners listener.List[Event]
}

// Bind sets the node reported in fired events.
func (b *Base) Bind(self Node) { b.self = self }

// AddListener registers fn for node events.
func (b *Base) AddListener(fn func(Event)) listener.Subscription {
	return b.listeners.Subscribe(fn)
}

// Listeners returns the number of registered listeners.
func (b *Base) Listeners() int { return b.listeners.Len() }

// Fire delivers e, filling in the node.
func (b *Base) Fire(e Event) {
	e.Node = b.self
	b.listeners.Fire(e)
}

// FireNameChange announces a name change with known values.
func (b *Base) FireNameChange(from, to string) {
	b.Fire(Event{Kind: NameChanged, Old: from, New: to})
}

// FireDisplayNameChange announces a display name change with known values.
func (b *Base) FireDisplayNameChange(from, to string) {
	b.Fire(Event{Kind: DisplayNameChanged, Old: from, New: to})
}

// FireNamesUnknown announces that the name and display name may have
// changed without saying how.
func (b *Base) FireNamesUnknown() {
	b.Fire(Event{Kind: NameChanged, Unknown: true})
	b.Fire(Event{Kind: DisplayNameChanged, Unknown: true})
}

// FireIconChange announces that both icons may have changed.
func (b *Base) FireIconChange() {
	b.Fire(Event{Kind: IconChanged})
	b.Fire(Event{Kind: OpenedIconChanged})
}
