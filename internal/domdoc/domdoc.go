// Package domdoc holds the captured document model the accessibility tree is
// built from. A Document is produced either by parsing HTML (Parse) or by the
// browser harvester, and is treated as immutable once handed to the builder.
package domdoc

import "strings"

// NodeType discriminates element nodes from text runs.
type NodeType int

const (
	ElementNode NodeType = iota
	TextNode
)

// Box carries the layout facts the tree builder needs: whether the node is
// rendered, its computed cursor, and whether it can receive pointer input.
type Box struct {
	Visible               bool
	Cursor                string
	ReceivesPointerEvents bool
}

// Node is a single node of the captured document. Element nodes carry a tag
// and attributes; text nodes carry only Text. Pointer identity doubles as
// node identity unless BackendID is set (live captures), in which case the
// backend id survives re-harvesting the same page.
type Node struct {
	Type     NodeType
	Tag      string // lower case, element nodes only
	Text     string // text nodes only
	Attrs    map[string]string
	Parent   *Node
	Children []*Node

	// ShadowRoot is the container for an attached shadow subtree. Its
	// children are the shadow tree's top-level nodes.
	ShadowRoot *Node

	// Assigned lists the host children slotted into this node. Only set on
	// slot elements after AssignSlots.
	Assigned []*Node

	// Before and After carry generated-content text (::before/::after).
	Before, After string

	Box Box

	// BackendID is the browser-side node identifier for harvested documents,
	// zero for parsed fixtures.
	BackendID int64
}

// Document is a parsed or harvested page plus its id index.
type Document struct {
	Root *Node
	byID map[string]*Node
}

// NewDocument indexes the subtree under root and returns the document.
func NewDocument(root *Node) *Document {
	d := &Document{Root: root, byID: make(map[string]*Node)}
	d.index(root)
	return d
}

func (d *Document) index(n *Node) {
	if n == nil {
		return
	}
	if n.Type == ElementNode {
		if id := n.Attrs["id"]; id != "" {
			if _, taken := d.byID[id]; !taken {
				d.byID[id] = n
			}
		}
	}
	for _, c := range n.Children {
		d.index(c)
	}
	if n.ShadowRoot != nil {
		d.index(n.ShadowRoot)
	}
}

// ByID resolves an element id anywhere in the document, shadow trees
// included. Returns nil when absent.
func (d *Document) ByID(id string) *Node { return d.byID[id] }

// IsElement reports whether the node is an element node.
func (n *Node) IsElement() bool { return n != nil && n.Type == ElementNode }

// Attr returns the attribute value and whether it is present.
func (n *Node) Attr(name string) (string, bool) {
	if n == nil || n.Attrs == nil {
		return "", false
	}
	v, ok := n.Attrs[name]
	return v, ok
}

// AttrOr returns the attribute value or the fallback when absent.
func (n *Node) AttrOr(name, fallback string) string {
	if v, ok := n.Attr(name); ok {
		return v
	}
	return fallback
}

// HasAttr reports attribute presence regardless of value.
func (n *Node) HasAttr(name string) bool {
	_, ok := n.Attr(name)
	return ok
}

// Identity returns the stable identity key for this node: the backend id for
// harvested nodes, otherwise the pointer itself. Used for visited sets and
// the reference cache.
func (n *Node) Identity() any {
	if n.BackendID != 0 {
		return n.BackendID
	}
	return n
}

// AppendChild links c under n in document order.
func (n *Node) AppendChild(c *Node) {
	c.Parent = n
	n.Children = append(n.Children, c)
}

// AssignSlots walks the subtree and distributes each shadow host's light
// children onto the slot elements of its shadow tree: named slots take
// children with a matching slot attribute, the first unnamed slot takes the
// rest. Must run once after construction, before tree building.
func AssignSlots(n *Node) {
	if n == nil {
		return
	}
	if n.ShadowRoot != nil {
		assignHostSlots(n)
		AssignSlots(n.ShadowRoot)
	}
	for _, c := range n.Children {
		AssignSlots(c)
	}
}

func assignHostSlots(host *Node) {
	slots := collectSlots(host.ShadowRoot)
	if len(slots) == 0 {
		return
	}
	var defaultSlot *Node
	named := make(map[string]*Node)
	for _, s := range slots {
		name := s.Attrs["name"]
		if name == "" {
			if defaultSlot == nil {
				defaultSlot = s
			}
			continue
		}
		if _, taken := named[name]; !taken {
			named[name] = s
		}
	}
	for _, child := range host.Children {
		target := defaultSlot
		if child.Type == ElementNode {
			if slotName := child.Attrs["slot"]; slotName != "" {
				target = named[slotName]
			}
		}
		if target != nil {
			target.Assigned = append(target.Assigned, child)
		}
	}
}

func collectSlots(n *Node) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	if n.Type == ElementNode && n.Tag == "slot" {
		out = append(out, n)
	}
	for _, c := range n.Children {
		out = append(out, collectSlots(c)...)
	}
	return out
}

// IsSlot reports whether the node is a slot element with assigned content.
func (n *Node) IsSlot() bool {
	return n.IsElement() && n.Tag == "slot" && len(n.Assigned) > 0
}

// OwnedIDs returns the ids listed in aria-owns, in order.
func (n *Node) OwnedIDs() []string {
	v, ok := n.Attr("aria-owns")
	if !ok {
		return nil
	}
	return strings.Fields(v)
}
