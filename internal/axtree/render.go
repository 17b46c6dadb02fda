package axtree

import (
	"fmt"
	"strings"
)

// maxKeyNameLength is the textual key-length ceiling: names longer than this
// are omitted from rendered keys and the node falls back to its bare role.
const maxKeyNameLength = 900

// RenderOptions is shared by both projections.
type RenderOptions struct {
	// Refs controls whether [ref=...] / ref fields are emitted. Only
	// meaningful when the snapshot was built with reference minting.
	Refs bool
	// Pattern enables the best-guess pattern mode: volatile numeric
	// substrings are replaced with matching wildcard patterns so repeated
	// snapshots with only numeric drift compare as textually stable.
	Pattern bool
}

// nodeKey renders `role "name"`. The name is quoted unless it is a literal
// slash-delimited pattern, and omitted entirely when it exceeds the key
// ceiling.
func nodeKey(n *Node, opts RenderOptions) string {
	name := n.Name
	if opts.Pattern {
		if p := bestGuessPattern(name); p != "" {
			name = p
		}
	}
	if name == "" || len(name) > maxKeyNameLength {
		return n.Role
	}
	if isSlashPattern(name) {
		return n.Role + " " + name
	}
	return fmt.Sprintf("%s %q", n.Role, name)
}

func isSlashPattern(s string) bool {
	return len(s) >= 2 && strings.HasPrefix(s, "/") && strings.HasSuffix(s, "/")
}

// stateAnnotations renders the bracketed annotations in their fixed order:
// checked, clickable, disabled, expanded, level, pressed, selected, then
// ref and cursor.
func stateAnnotations(n *Node, opts RenderOptions) []string {
	var out []string
	switch n.Checked {
	case TriTrue:
		out = append(out, "[checked]")
	case TriMixed:
		out = append(out, "[checked=mixed]")
	}
	if n.Clickable {
		out = append(out, "[clickable]")
	}
	if n.Disabled {
		out = append(out, "[disabled]")
	}
	if n.Expanded != nil {
		if *n.Expanded {
			out = append(out, "[expanded]")
		} else {
			out = append(out, "[expanded=false]")
		}
	}
	if n.Level > 0 {
		out = append(out, fmt.Sprintf("[level=%d]", n.Level))
	}
	switch n.Pressed {
	case TriTrue:
		out = append(out, "[pressed]")
	case TriMixed:
		out = append(out, "[pressed=mixed]")
	}
	if n.Selected != nil && *n.Selected {
		out = append(out, "[selected]")
	}
	if opts.Refs && n.Ref != "" && n.PointerReachable {
		out = append(out, "[ref="+n.Ref+"]")
		if n.Cursor == "pointer" {
			out = append(out, "[cursor=pointer]")
		}
	}
	return out
}

// stateWords lists the node's current states as plain words, for the
// generated natural-language prompts ("checked and expanded").
func stateWords(n *Node) []string {
	var out []string
	if n.Checked == TriTrue {
		out = append(out, "checked")
	}
	if n.Checked == TriMixed {
		out = append(out, "partially checked")
	}
	if n.Disabled {
		out = append(out, "disabled")
	}
	if n.Expanded != nil && *n.Expanded {
		out = append(out, "expanded")
	}
	if n.Pressed == TriTrue {
		out = append(out, "pressed")
	}
	if n.Selected != nil && *n.Selected {
		out = append(out, "selected")
	}
	return out
}

func joinWords(words []string) string {
	switch len(words) {
	case 0:
		return ""
	case 1:
		return words[0]
	default:
		return strings.Join(words[:len(words)-1], ", ") + " and " + words[len(words)-1]
	}
}
