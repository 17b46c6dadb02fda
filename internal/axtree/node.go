// Package axtree builds, normalizes and projects the accessibility tree of a
// captured document, and matches it against declarative templates. Role,
// name and state computation is delegated to an Oracle so the engine stays
// independent of any particular accessibility implementation.
package axtree

import (
	"strings"

	"github.com/kalyptra/ariadne/internal/domdoc"
)

// Pseudo-roles used by the engine itself. "fragment" is the synthetic root
// of every snapshot; it is never ref-able.
const (
	RoleFragment = "fragment"
	RoleIframe   = "iframe"
	RoleGeneric  = "generic"
)

// TriState models ARIA attributes that admit true, false and "mixed", with
// the zero value meaning "absent".
type TriState string

const (
	TriUnset TriState = ""
	TriFalse TriState = "false"
	TriTrue  TriState = "true"
	TriMixed TriState = "mixed"
)

// State is the oracle-computed accessible state of one element. Pointer
// fields distinguish "explicitly false" from "absent".
type State struct {
	Checked  TriState
	Disabled bool
	Expanded *bool
	Level    int // 0 means absent
	Pressed  TriState
	Selected *bool
}

// Oracle computes accessibility facts for document nodes. Implementations
// must conform to the accessibility tree computation rules; internal/aria
// ships a compact one and the browser harvester can substitute the real
// browser-computed values.
type Oracle interface {
	// Role returns the accessible role, or "" when the element maps to the
	// unclassified generic role.
	Role(n *domdoc.Node) string
	// Name returns the computed accessible name, whitespace-normalized.
	Name(n *domdoc.Node) string
	// State returns the element's accessible state flags.
	State(n *domdoc.Node) State
	// Value returns the current value of a text control.
	Value(n *domdoc.Node) string
	// HiddenForAria reports whether the subtree is hidden from assistive
	// technology (aria-hidden, display:none, visibility).
	HiddenForAria(n *domdoc.Node) bool
	// ReceivesPointer reports whether the element can receive pointer input.
	ReceivesPointer(n *domdoc.Node) bool
}

// Child is one ordered child of an accessible node: either a nested *Node
// or a literal TextRun. Insertion order is semantically meaningful.
type Child interface{ isChild() }

// TextRun is a literal run of text inside an accessible node.
type TextRun string

func (TextRun) isChild() {}
func (*Node) isChild()   {}

// Node is one node of the accessibility tree.
type Node struct {
	Role string
	Name string

	// Ref is the opaque stable reference, present only when reference
	// minting was requested and the node is pointer-reachable.
	Ref string

	// Props carries extra key/value properties, e.g. a link's target URL.
	Props map[string]string

	Children []Child

	Checked  TriState
	Disabled bool
	Expanded *bool
	Level    int
	Pressed  TriState
	Selected *bool

	// Clickable is derived from role and pointer reachability.
	Clickable bool

	// Cursor is the computed cursor style ("pointer" is the one callers
	// care about).
	Cursor string

	// PointerReachable mirrors the oracle's pointer-input predicate at
	// build time.
	PointerReachable bool

	src *domdoc.Node
}

// Source returns the document node this accessible node was built from, nil
// for the synthetic fragment root.
func (n *Node) Source() *domdoc.Node { return n.src }

// Snapshot is one complete, immutable build of the accessibility tree plus
// its reference map. A later build invalidates resolution for refs that were
// not re-minted to the same identity.
type Snapshot struct {
	Root *Node
	Refs map[string]*domdoc.Node
}

// Resolve looks up the live document node behind a reference. The second
// return is false for dangling references.
func (s *Snapshot) Resolve(ref string) (*domdoc.Node, bool) {
	n, ok := s.Refs[ref]
	return n, ok
}

// normalizeWhitespace collapses runs of whitespace into single spaces and
// trims the ends.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// checkedStateRoles lists the roles whose checked state is exposed.
var checkedStateRoles = map[string]bool{
	"checkbox":         true,
	"radio":            true,
	"switch":           true,
	"menuitemcheckbox": true,
	"menuitemradio":    true,
}

// pressedStateRoles lists the roles whose pressed state is exposed.
var pressedStateRoles = map[string]bool{
	"button": true,
}

// selectedStateRoles lists the roles whose selected state is exposed.
var selectedStateRoles = map[string]bool{
	"option":   true,
	"tab":      true,
	"row":      true,
	"gridcell": true,
	"treeitem": true,
}

// expandedStateRoles lists the roles whose expanded state is exposed.
var expandedStateRoles = map[string]bool{
	"button":   true,
	"combobox": true,
	"link":     true,
	"menuitem": true,
	"treeitem": true,
	"group":    true,
	"row":      true,
}

// levelStateRoles lists the roles that carry a hierarchy level.
var levelStateRoles = map[string]bool{
	"heading":  true,
	"listitem": true,
	"treeitem": true,
	"row":      true,
}

// applyStateForRole copies onto the accessible node exactly the state fields
// applicable to its role, per the role/state lookup tables.
func applyStateForRole(n *Node, role string, st State) {
	if checkedStateRoles[role] {
		n.Checked = st.Checked
	}
	if pressedStateRoles[role] && st.Pressed != TriUnset {
		n.Pressed = st.Pressed
	}
	if selectedStateRoles[role] {
		n.Selected = st.Selected
	}
	if expandedStateRoles[role] {
		n.Expanded = st.Expanded
	}
	if levelStateRoles[role] {
		n.Level = st.Level
	}
	n.Disabled = st.Disabled
}
