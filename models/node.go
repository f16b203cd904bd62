package models

// Line is one line of a cheat code.
type Line struct {
	Address uint32
	Value   uint32
}

// Payload is what a node carries. It is either Lines or Children, never
// both, so a node's kind and its data cannot disagree.
type Payload interface {
	kind() Kind
}

// Lines is the payload of a code.
type Lines []Line

func (Lines) kind() Kind { return Code }

// Children is the payload of a folder.
type Children []*Node

func (Children) kind() Kind { return Folder }

// Node is a code or folder in a game's tree.
type Node struct {
	Flag        Flag
	Count       uint16 // lines of a code, direct children of a folder
	Name        string
	Description string
	Payload     Payload
}

// NewCode creates a code node.
func NewCode(mods Modifier, lines []Line) *Node {
	return &Node{
		Flag:    Flag{Kind: Code, Modifiers: mods},
		Count:   uint16(len(lines)),
		Payload: Lines(lines),
	}
}

// NewFolder creates a folder node.
func NewFolder(mods Modifier, children []*Node) *Node {
	return &Node{
		Flag:    Flag{Kind: Folder, Modifiers: mods},
		Count:   uint16(len(children)),
		Payload: Children(children),
	}
}

// Kind is decided by the payload.
func (n *Node) Kind() Kind {
	if n.Payload == nil {
		return n.Flag.Kind
	}
	return n.Payload.kind()
}

// Lines returns the code lines, or nil for a folder.
func (n *Node) Lines() []Line {
	if l, ok := n.Payload.(Lines); ok {
		return l
	}
	return nil
}

// Children returns the folder contents, or nil for a code.
func (n *Node) Children() []*Node {
	if c, ok := n.Payload.(Children); ok {
		return c
	}
	return nil
}

// Walk visits nodes depth first, parents before children. This is the
// order names are stored in.
func Walk(nodes []*Node, fn func(n *Node, depth int)) {
	walk(nodes, 0, fn)
}

func walk(nodes []*Node, depth int, fn func(n *Node, depth int)) {
	for _, n := range nodes {
		fn(n, depth)
		if c := n.Children(); c != nil {
			walk(c, depth+1, fn)
		}
	}
}
