package axtree

import "strings"

// Normalize applies the two post-build passes in order: generic collapse,
// then text coalescing. Both operate in place.
func Normalize(root *Node) {
	collapseGenerics(root)
	coalesceText(root)
}

// collapseGenerics removes non-informative wrapper layers: a generic node
// is replaced by its children once those children have themselves been
// normalized, provided it has at most one child and that child (if any) is
// itself pointer-reachable. Anything with two or more children is real
// grouping and stays.
func collapseGenerics(n *Node) {
	out := make([]Child, 0, len(n.Children))
	for _, c := range n.Children {
		child, ok := c.(*Node)
		if !ok {
			out = append(out, c)
			continue
		}
		collapseGenerics(child)
		if child.Role == RoleGeneric && genericCollapsible(child) {
			out = append(out, child.Children...)
			continue
		}
		out = append(out, child)
	}
	n.Children = out
}

func genericCollapsible(g *Node) bool {
	switch len(g.Children) {
	case 0:
		return true
	case 1:
		if child, ok := g.Children[0].(*Node); ok {
			return child.PointerReachable
		}
		// A lone text run hoists into the parent without losing meaning.
		return true
	default:
		return false
	}
}

// coalesceText concatenates runs of adjacent literal text children into a
// single whitespace-normalized run, and drops a sole text child that merely
// repeats the node's own computed name.
func coalesceText(n *Node) {
	out := make([]Child, 0, len(n.Children))
	var pending []string
	flush := func() {
		if len(pending) == 0 {
			return
		}
		text := normalizeWhitespace(strings.Join(pending, ""))
		pending = pending[:0]
		if text != "" {
			out = append(out, TextRun(text))
		}
	}
	for _, c := range n.Children {
		switch child := c.(type) {
		case TextRun:
			pending = append(pending, string(child))
		case *Node:
			flush()
			coalesceText(child)
			out = append(out, child)
		}
	}
	flush()

	if len(out) == 1 {
		if t, ok := out[0].(TextRun); ok && string(t) == n.Name {
			out = out[:0]
		}
	}
	n.Children = out
}
