// Package aria is a compact role/name/state oracle over captured documents.
// It covers the common HTML-to-ARIA mappings the engine needs; it does not
// aim for accessibility-spec-complete conformance, and live sessions may
// substitute browser-computed values instead.
package aria

import (
	"strconv"
	"strings"

	"github.com/kalyptra/ariadne/internal/axtree"
	"github.com/kalyptra/ariadne/internal/domdoc"
)

// tagRoles maps element tags to their implicit ARIA role. Tags absent from
// the table (and from the special cases in Role) map to the generic role.
var tagRoles = map[string]string{
	"article":  "article",
	"aside":    "complementary",
	"button":   "button",
	"datalist": "listbox",
	"dialog":   "dialog",
	"fieldset": "group",
	"figure":   "figure",
	"footer":   "contentinfo",
	"form":     "form",
	"header":   "banner",
	"h1":       "heading",
	"h2":       "heading",
	"h3":       "heading",
	"h4":       "heading",
	"h5":       "heading",
	"h6":       "heading",
	"hr":       "separator",
	"iframe":   "iframe",
	"img":      "img",
	"li":       "listitem",
	"main":     "main",
	"menu":     "list",
	"nav":      "navigation",
	"ol":       "list",
	"option":   "option",
	"output":   "status",
	"progress": "progressbar",
	"section":  "region",
	"select":   "combobox",
	"summary":  "button",
	"table":    "table",
	"tbody":    "rowgroup",
	"td":       "cell",
	"textarea": "textbox",
	"th":       "columnheader",
	"thead":    "rowgroup",
	"tr":       "row",
	"ul":       "list",
}

// inputTypeRoles maps input types to roles. The default input role is
// textbox.
var inputTypeRoles = map[string]string{
	"button":   "button",
	"checkbox": "checkbox",
	"image":    "button",
	"number":   "spinbutton",
	"radio":    "radio",
	"range":    "slider",
	"reset":    "button",
	"search":   "searchbox",
	"submit":   "button",
	"file":     "textbox",
	"hidden":   "",
}

// nameFromContentRoles compute their accessible name from their subtree
// text when no explicit label wins.
var nameFromContentRoles = map[string]bool{
	"button":       true,
	"cell":         true,
	"checkbox":     true,
	"columnheader": true,
	"heading":      true,
	"link":         true,
	"menuitem":     true,
	"option":       true,
	"radio":        true,
	"switch":       true,
	"tab":          true,
	"treeitem":     true,
}

// Oracle computes accessibility facts for one document. It indexes the
// document's labels once at construction.
type Oracle struct {
	doc       *domdoc.Document
	labelFor  map[string]*domdoc.Node
	nameCache map[*domdoc.Node]string
}

var _ axtree.Oracle = (*Oracle)(nil)

// New builds an oracle for the document.
func New(doc *domdoc.Document) *Oracle {
	o := &Oracle{
		doc:       doc,
		labelFor:  make(map[string]*domdoc.Node),
		nameCache: make(map[*domdoc.Node]string),
	}
	o.indexLabels(doc.Root)
	return o
}

func (o *Oracle) indexLabels(n *domdoc.Node) {
	if n == nil {
		return
	}
	if n.IsElement() && n.Tag == "label" {
		if target, ok := n.Attr("for"); ok && target != "" {
			if _, taken := o.labelFor[target]; !taken {
				o.labelFor[target] = n
			}
		}
	}
	for _, c := range n.Children {
		o.indexLabels(c)
	}
	if n.ShadowRoot != nil {
		o.indexLabels(n.ShadowRoot)
	}
}

// Role returns the accessible role per the explicit role attribute first,
// then the implicit tag mapping. "" means generic.
func (o *Oracle) Role(n *domdoc.Node) string {
	if !n.IsElement() {
		return ""
	}
	if explicit, ok := n.Attr("role"); ok {
		if fields := strings.Fields(explicit); len(fields) > 0 {
			return strings.ToLower(fields[0])
		}
	}
	switch n.Tag {
	case "a":
		if href := n.AttrOr("href", ""); href != "" {
			return "link"
		}
		return ""
	case "input":
		role, ok := inputTypeRoles[strings.ToLower(n.AttrOr("type", "text"))]
		if ok {
			return role
		}
		return "textbox"
	case "select":
		if n.HasAttr("multiple") {
			return "listbox"
		}
		if size, err := strconv.Atoi(n.AttrOr("size", "1")); err == nil && size > 1 {
			return "listbox"
		}
		return "combobox"
	case "img":
		if alt, ok := n.Attr("alt"); ok && alt == "" {
			return "presentation"
		}
		return "img"
	}
	return tagRoles[n.Tag]
}

// Name computes the accessible name: aria-label, then aria-labelledby, then
// an associated label element, then alt/title/value, then subtree text for
// name-from-content roles. Whitespace-normalized.
func (o *Oracle) Name(n *domdoc.Node) string {
	if !n.IsElement() {
		return ""
	}
	if cached, ok := o.nameCache[n]; ok {
		return cached
	}
	name := o.computeName(n)
	o.nameCache[n] = name
	return name
}

func (o *Oracle) computeName(n *domdoc.Node) string {
	if label, ok := n.Attr("aria-label"); ok && strings.TrimSpace(label) != "" {
		return collapse(label)
	}
	if ids, ok := n.Attr("aria-labelledby"); ok {
		var parts []string
		for _, id := range strings.Fields(ids) {
			if ref := o.doc.ByID(id); ref != nil && ref != n {
				parts = append(parts, subtreeText(ref))
			}
		}
		if name := collapse(strings.Join(parts, " ")); name != "" {
			return name
		}
	}
	if id := n.AttrOr("id", ""); id != "" {
		if label := o.labelFor[id]; label != nil {
			if name := collapse(subtreeText(label)); name != "" {
				return name
			}
		}
	}
	switch n.Tag {
	case "img":
		return collapse(n.AttrOr("alt", ""))
	case "input":
		switch strings.ToLower(n.AttrOr("type", "text")) {
		case "button", "submit", "reset":
			return collapse(n.AttrOr("value", ""))
		}
		if p := n.AttrOr("placeholder", ""); p != "" {
			return collapse(p)
		}
	}
	role := o.Role(n)
	if nameFromContentRoles[role] {
		if name := collapse(subtreeText(n)); name != "" {
			return name
		}
	}
	return collapse(n.AttrOr("title", ""))
}

// State reads the element's accessible state from attributes.
func (o *Oracle) State(n *domdoc.Node) axtree.State {
	var st axtree.State
	st.Checked = o.checked(n)
	st.Disabled = n.HasAttr("disabled") || strings.EqualFold(n.AttrOr("aria-disabled", ""), "true")
	st.Pressed = triFromAttr(n, "aria-pressed")
	if v, ok := n.Attr("aria-expanded"); ok {
		expanded := strings.EqualFold(v, "true")
		st.Expanded = &expanded
	} else if n.Tag == "details" || (n.Parent != nil && n.Parent.Tag == "details" && n.Tag == "summary") {
		open := n.HasAttr("open") || (n.Parent != nil && n.Parent.HasAttr("open"))
		st.Expanded = &open
	}
	if v, ok := n.Attr("aria-selected"); ok {
		selected := strings.EqualFold(v, "true")
		st.Selected = &selected
	} else if n.Tag == "option" && n.HasAttr("selected") {
		selected := true
		st.Selected = &selected
	}
	st.Level = o.level(n)
	return st
}

func (o *Oracle) checked(n *domdoc.Node) axtree.TriState {
	if v, ok := n.Attr("aria-checked"); ok {
		switch strings.ToLower(v) {
		case "true":
			return axtree.TriTrue
		case "mixed":
			return axtree.TriMixed
		default:
			return axtree.TriFalse
		}
	}
	if n.Tag == "input" {
		switch strings.ToLower(n.AttrOr("type", "")) {
		case "checkbox", "radio":
			if n.HasAttr("checked") {
				return axtree.TriTrue
			}
			return axtree.TriFalse
		}
	}
	return axtree.TriUnset
}

func (o *Oracle) level(n *domdoc.Node) int {
	if v, ok := n.Attr("aria-level"); ok {
		level := 0
		for _, r := range v {
			if r < '0' || r > '9' {
				return 0
			}
			level = level*10 + int(r-'0')
		}
		return level
	}
	switch n.Tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

// Value returns the current value of a text control.
func (o *Oracle) Value(n *domdoc.Node) string {
	switch n.Tag {
	case "input":
		return n.AttrOr("value", "")
	case "textarea":
		return strings.TrimSpace(subtreeText(n))
	}
	return ""
}

// HiddenForAria reports whether the node is hidden from assistive
// technology. Ancestors are not consulted; the builder prunes whole
// subtrees, so a self check suffices.
func (o *Oracle) HiddenForAria(n *domdoc.Node) bool {
	if strings.EqualFold(n.AttrOr("aria-hidden", ""), "true") {
		return true
	}
	return !n.Box.Visible
}

// ReceivesPointer reports whether the node can receive pointer input.
func (o *Oracle) ReceivesPointer(n *domdoc.Node) bool {
	return n.Box.Visible && n.Box.ReceivesPointerEvents
}

func triFromAttr(n *domdoc.Node, attr string) axtree.TriState {
	v, ok := n.Attr(attr)
	if !ok {
		return axtree.TriUnset
	}
	switch strings.ToLower(v) {
	case "true":
		return axtree.TriTrue
	case "mixed":
		return axtree.TriMixed
	default:
		return axtree.TriFalse
	}
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func subtreeText(n *domdoc.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == domdoc.TextNode {
		return n.Text
	}
	if strings.EqualFold(n.AttrOr("aria-hidden", ""), "true") {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(n.Before)
	for _, c := range n.Children {
		sb.WriteString(subtreeText(c))
	}
	sb.WriteString(n.After)
	return sb.String()
}
