package axtree

import (
	"errors"

	"go.uber.org/zap"

	"github.com/kalyptra/ariadne/internal/domdoc"
)

// ErrInvalidRoot is returned when Build is called on something that is not
// an element node. Fatal, never retried.
var ErrInvalidRoot = errors.New("axtree: build root must be an element node")

// Options controls one build.
type Options struct {
	// ForAI enables reference minting and the "visually visible although
	// aria-hidden" allowance used when the tree is consumed by an agent.
	ForAI bool
}

// Builder turns document subtrees into snapshots. One builder serves one
// session; its reference assigner persists across builds so references stay
// stable for unchanged elements.
type Builder struct {
	oracle Oracle
	refs   *RefAssigner
	log    *zap.Logger
}

// NewBuilder wires a builder from its collaborators. The assigner may be nil
// when the session never requests references.
func NewBuilder(oracle Oracle, refs *RefAssigner, logger *zap.Logger) *Builder {
	return &Builder{
		oracle: oracle,
		refs:   refs,
		log:    logger.Named("axtree"),
	}
}

type buildState struct {
	doc     *domdoc.Document
	opts    Options
	visited map[any]struct{}
	refs    map[string]*domdoc.Node
}

// Build traverses the subtree under root depth-first and returns the
// normalized snapshot. The synthetic root always has the "fragment" role and
// is never ref-able.
func (b *Builder) Build(doc *domdoc.Document, root *domdoc.Node, opts Options) (*Snapshot, error) {
	if root == nil || !root.IsElement() {
		return nil, ErrInvalidRoot
	}
	st := &buildState{
		doc:     doc,
		opts:    opts,
		visited: make(map[any]struct{}),
		refs:    make(map[string]*domdoc.Node),
	}
	fragment := &Node{Role: RoleFragment}
	b.visit(st, fragment, root)
	Normalize(fragment)
	b.log.Debug("Built accessibility snapshot.",
		zap.Int("refs", len(st.refs)),
		zap.Bool("for_ai", opts.ForAI))
	return &Snapshot{Root: fragment, Refs: st.refs}, nil
}

// interactiveRoles are the roles whose nodes are considered clickable when
// they can receive pointer input.
var interactiveRoles = map[string]bool{
	"button":           true,
	"link":             true,
	"checkbox":         true,
	"radio":            true,
	"switch":           true,
	"menuitem":         true,
	"menuitemcheckbox": true,
	"menuitemradio":    true,
	"tab":              true,
	"option":           true,
	"combobox":         true,
	"slider":           true,
	"spinbutton":       true,
}

// blockTags are element types surrounded by a synthetic space run so block
// boundaries do not fuse adjacent inline text.
var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"div": true, "dl": true, "dd": true, "dt": true, "fieldset": true,
	"figure": true, "footer": true, "form": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "h5": true, "h6": true, "header": true,
	"hr": true, "li": true, "main": true, "nav": true, "ol": true,
	"p": true, "pre": true, "section": true, "table": true, "tr": true,
	"ul": true,
}

func (b *Builder) visit(st *buildState, parent *Node, n *domdoc.Node) {
	if n == nil {
		return
	}
	if n.Type == domdoc.TextNode {
		// Literal text is suppressed inside text controls; the control's
		// captured value represents it instead.
		if parent.Role == "textbox" || parent.Role == "searchbox" {
			return
		}
		if n.Text != "" {
			parent.Children = append(parent.Children, TextRun(n.Text))
		}
		return
	}

	// aria-owns can point anywhere, ancestors included. The visited set is
	// the cycle guard.
	key := n.Identity()
	if _, seen := st.visited[key]; seen {
		return
	}
	st.visited[key] = struct{}{}

	if n.Tag == "br" {
		parent.Children = append(parent.Children, TextRun(" "))
		return
	}

	if b.oracle.HiddenForAria(n) && !(st.opts.ForAI && n.Box.Visible) {
		return
	}

	role := b.oracle.Role(n)
	switch role {
	case "presentation", "none":
		// Never materialized; children are hoisted into the parent.
		b.visitChildren(st, parent, n)
		return
	case "":
		role = RoleGeneric
	}

	name := normalizeWhitespace(b.oracle.Name(n))
	node := &Node{Role: role, Name: name, src: n}
	applyStateForRole(node, role, b.oracle.State(n))
	node.PointerReachable = b.oracle.ReceivesPointer(n)
	node.Cursor = n.Box.Cursor
	node.Clickable = node.PointerReachable &&
		(interactiveRoles[role] || n.Box.Cursor == "pointer")

	if role == "link" {
		if href, ok := n.Attr("href"); ok && href != "" {
			node.Props = map[string]string{"url": href}
		}
	}

	if st.opts.ForAI && b.refs != nil && node.PointerReachable {
		ref := b.refs.RefFor(n, role, name)
		node.Ref = ref
		st.refs[ref] = n
	}

	if n.Before != "" {
		node.Children = append(node.Children, TextRun(n.Before))
	}
	if role == "textbox" || role == "searchbox" {
		if v := b.oracle.Value(n); v != "" {
			node.Children = append(node.Children, TextRun(v))
		}
	}
	if role != RoleIframe {
		b.visitChildren(st, node, n)
	}
	if n.After != "" {
		node.Children = append(node.Children, TextRun(n.After))
	}

	block := blockTags[n.Tag]
	if block {
		parent.Children = append(parent.Children, TextRun(" "))
	}
	parent.Children = append(parent.Children, node)
	if block {
		parent.Children = append(parent.Children, TextRun(" "))
	}
}

// visitChildren applies slot redirection, then explicit aria-owns edges.
// A shadow host renders its shadow tree; its light children appear only
// where a slot assigns them. Every path goes through visit, so the cycle
// guard covers all of them.
func (b *Builder) visitChildren(st *buildState, parent *Node, n *domdoc.Node) {
	switch {
	case n.IsSlot():
		for _, assigned := range n.Assigned {
			b.visit(st, parent, assigned)
		}
	case n.ShadowRoot != nil:
		for _, c := range n.ShadowRoot.Children {
			b.visit(st, parent, c)
		}
	default:
		for _, c := range n.Children {
			b.visit(st, parent, c)
		}
	}
	for _, id := range n.OwnedIDs() {
		owned := st.doc.ByID(id)
		if owned == nil {
			b.log.Debug("aria-owns target not found.", zap.String("id", id))
			continue
		}
		b.visit(st, parent, owned)
	}
}
