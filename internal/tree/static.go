package tree

import (
	"github.com/agentx-labs/platformview/internal/icon"
)

// Fixed is a child collection with a fixed node list.
type Fixed []Node

func (f Fixed) Nodes() []Node { return f }
func (f Fixed) IsLeaf() bool  { return len(f) == 0 }

// Static is a node whose presentation never changes.
type Static struct {
	Base
	name     string
	img      *icon.Image
	children Children
	copyable bool
}

// NewStatic returns a node named name showing img, with the given children.
func NewStatic(name string, img *icon.Image, children ...Node) *Static {
	s := &Static{name: name, img: img, children: Leaf}
	if len(children) > 0 {
		s.children = Fixed(children)
	}
	s.Bind(s)
	return s
}

// Copyable marks the node as copyable and returns it.
func (s *Static) Copyable() *Static {
	s.copyable = true
	return s
}

func (s *Static) Name() string                    { return s.name }
func (s *Static) DisplayName() string             { return s.name }
func (s *Static) HTMLDisplayName() string         { return "" }
func (s *Static) Icon(IconType) *icon.Image       { return s.img }
func (s *Static) OpenedIcon(IconType) *icon.Image { return s.img }
func (s *Static) CanCopy() bool                   { return s.copyable }
func (s *Static) Actions(bool) []Action           { return []Action{} }
func (s *Static) Children() Children              { return s.children }
