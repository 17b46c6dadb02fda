package axtree

import "regexp"

// ContainerMode is the matching discipline governing how a template's child
// list must align with a node's actual children.
type ContainerMode string

const (
	// ModeContain requires the template children to appear, in order, as a
	// not-necessarily-contiguous subsequence. Default mode.
	ModeContain ContainerMode = "contain"
	// ModeEqual requires both lists to have the same length and match
	// pairwise in order.
	ModeEqual ContainerMode = "equal"
	// ModeDeepEqual is equal, propagated strictly to all descendants
	// regardless of each child template's own mode.
	ModeDeepEqual ContainerMode = "deep-equal"
)

// TextMatch matches a string either exactly or against a pattern.
type TextMatch struct {
	Exact   string
	Pattern *regexp.Regexp
}

func (m *TextMatch) matches(s string) bool {
	if m == nil {
		return true
	}
	if m.Pattern != nil {
		return m.Pattern.MatchString(s)
	}
	return m.Exact == s
}

// TemplateKind discriminates text templates from role templates.
type TemplateKind string

const (
	KindText TemplateKind = "text"
	KindRole TemplateKind = "role"
)

// Template is one declarative query node. Text templates match literal text
// runs; role templates match accessible nodes, with optional state, name and
// url constraints plus nested child templates under a containment mode.
type Template struct {
	Kind TemplateKind

	// Text matcher.
	Text TextMatch

	// Role matcher.
	Role     string
	Name     *TextMatch
	Checked  *TriState
	Disabled *bool
	Expanded *bool
	Level    *int
	Pressed  *TriState
	Selected *bool
	URL      *TextMatch
	Mode     ContainerMode
	Children []*Template
}

// Match searches the whole tree for nodes matching the template. When all is
// false the search stops at the first match.
func Match(s *Snapshot, tmpl *Template, all bool) []*Node {
	var out []*Node
	var walk func(n *Node) bool
	walk = func(n *Node) bool {
		if matchNode(tmpl, n, false) {
			out = append(out, n)
			if !all {
				return true
			}
		}
		for _, c := range n.Children {
			if child, ok := c.(*Node); ok {
				if walk(child) && !all {
					return true
				}
			}
		}
		return false
	}
	walk(s.Root)
	return out
}

// matchChild matches one template against one child. deep forces strict
// equality onto every nested level, as required by deep-equal ancestors.
func matchChild(tmpl *Template, c Child, deep bool) bool {
	switch child := c.(type) {
	case TextRun:
		return tmpl.Kind == KindText && tmpl.Text.matches(string(child))
	case *Node:
		return matchNode(tmpl, child, deep)
	}
	return false
}

func matchNode(tmpl *Template, n *Node, deep bool) bool {
	if tmpl.Kind != KindRole {
		return false
	}
	if tmpl.Role != n.Role {
		return false
	}
	if !tmpl.Name.matches(n.Name) {
		return false
	}
	if tmpl.Checked != nil && *tmpl.Checked != n.Checked {
		return false
	}
	if tmpl.Disabled != nil && *tmpl.Disabled != n.Disabled {
		return false
	}
	if tmpl.Expanded != nil && (n.Expanded == nil || *tmpl.Expanded != *n.Expanded) {
		return false
	}
	if tmpl.Level != nil && *tmpl.Level != n.Level {
		return false
	}
	if tmpl.Pressed != nil && *tmpl.Pressed != n.Pressed {
		return false
	}
	if tmpl.Selected != nil && (n.Selected == nil || *tmpl.Selected != *n.Selected) {
		return false
	}
	if tmpl.URL != nil && !tmpl.URL.matches(n.Props["url"]) {
		return false
	}
	return matchChildren(tmpl, n, deep)
}

func matchChildren(tmpl *Template, n *Node, deep bool) bool {
	mode := tmpl.Mode
	if mode == "" {
		mode = ModeContain
	}
	if deep {
		mode = ModeDeepEqual
	}

	switch mode {
	case ModeEqual, ModeDeepEqual:
		if len(tmpl.Children) != len(n.Children) {
			return false
		}
		childDeep := mode == ModeDeepEqual
		for i, ct := range tmpl.Children {
			if !matchChild(ct, n.Children[i], childDeep) {
				return false
			}
		}
		return true
	default:
		// Subsequence containment: each template consumes children greedily
		// until a match or exhaustion.
		i := 0
		for _, ct := range tmpl.Children {
			matched := false
			for ; i < len(n.Children); i++ {
				if matchChild(ct, n.Children[i], false) {
					matched = true
					i++
					break
				}
			}
			if !matched {
				return false
			}
		}
		return true
	}
}
