package tree

import (
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"
)

// formatting matches the markup allowed in HTML display names.
var formatting = regexp.MustCompile(`(?i)</?(b|i|u|s|font)(\s[^>]*)?>`)

// Label returns the text a renderer shows for n: the HTML display name with
// its formatting removed, or the display name, or the name.
func Label(n Node) string {
	if h := n.HTMLDisplayName(); h != "" {
		return html.UnescapeString(formatting.ReplaceAllString(h, ""))
	}
	if d := n.DisplayName(); d != "" {
		return d
	}
	return n.Name()
}

// PrintOptions control Print.
type PrintOptions struct {
	// Depth limits how many levels below the root are shown; zero or less
	// means unlimited.
	Depth int
	// Icons prefixes each line with the node's icon name.
	Icons bool
}

// Print writes n and its descendants as an indented text tree.
func Print(w io.Writer, n Node, opts PrintOptions) error {
	if _, err := fmt.Fprintln(w, line(n, opts)); err != nil {
		return err
	}
	return printChildren(w, n, "", 1, opts)
}

func printChildren(w io.Writer, n Node, prefix string, level int, opts PrintOptions) error {
	if opts.Depth > 0 && level > opts.Depth {
		return nil
	}
	children := n.Children()
	if children == nil || children.IsLeaf() {
		return nil
	}
	nodes := children.Nodes()
	for i, child := range nodes {
		branch, indent := "├── ", "│   "
		if i == len(nodes)-1 {
			branch, indent = "└── ", "    "
		}
		if _, err := fmt.Fprintln(w, prefix+branch+line(child, opts)); err != nil {
			return err
		}
		if err := printChildren(w, child, prefix+indent, level+1, opts); err != nil {
			return err
		}
	}
	return nil
}

func line(n Node, opts PrintOptions) string {
	label := Label(n)
	if !opts.Icons {
		return label
	}
	name := "-"
	if img := n.Icon(IconSmall); img != nil {
		name = img.Name()
	}
	return "[" + name + "] " + label
}

// Snapshot is a serializable copy of a node and its descendants.
type Snapshot struct {
	Name        string     `json:"name,omitempty"`
	DisplayName string     `json:"display_name,omitempty"`
	Label       string     `json:"label"`
	Icon        string     `json:"icon,omitempty"`
	CanCopy     bool       `json:"can_copy,omitempty"`
	Children    []Snapshot `json:"children,omitempty"`
}

// Capture builds a Snapshot of n down to depth levels (zero or less means
// unlimited).
func Capture(n Node, depth int) Snapshot {
	return capture(n, depth, 1)
}

func capture(n Node, depth, level int) Snapshot {
	s := Snapshot{
		Name:        n.Name(),
		DisplayName: n.DisplayName(),
		Label:       Label(n),
		CanCopy:     n.CanCopy(),
	}
	if img := n.Icon(IconSmall); img != nil {
		s.Icon = img.Name()
	}
	if depth > 0 && level > depth {
		return s
	}
	if c := n.Children(); c != nil && !c.IsLeaf() {
		for _, child := range c.Nodes() {
			s.Children = append(s.Children, capture(child, depth, level+1))
		}
	}
	return s
}

// String renders n with Print into a string.
func String(n Node, opts PrintOptions) string {
	var b strings.Builder
	_ = Print(&b, n, opts)
	return b.String()
}
