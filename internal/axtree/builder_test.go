package axtree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/kalyptra/ariadne/internal/aria"
	"github.com/kalyptra/ariadne/internal/axtree"
	"github.com/kalyptra/ariadne/internal/domdoc"
)

func buildHTML(t *testing.T, source string, opts axtree.Options) (*axtree.Snapshot, *axtree.RefAssigner, *domdoc.Document) {
	t.Helper()
	doc, err := domdoc.Parse(source)
	require.NoError(t, err)
	refs := axtree.NewRefAssigner("")
	b := axtree.NewBuilder(aria.New(doc), refs, zaptest.NewLogger(t))
	snap, err := b.Build(doc, doc.Root, opts)
	require.NoError(t, err)
	return snap, refs, doc
}

// findNode walks the snapshot depth first for the first node with the role
// and name.
func findNode(n *axtree.Node, role, name string) *axtree.Node {
	if n.Role == role && n.Name == name {
		return n
	}
	for _, c := range n.Children {
		if child, ok := c.(*axtree.Node); ok {
			if found := findNode(child, role, name); found != nil {
				return found
			}
		}
	}
	return nil
}

func TestBuild(t *testing.T) {
	t.Run("rejects a non-element root", func(t *testing.T) {
		b := axtree.NewBuilder(nil, nil, zaptest.NewLogger(t))
		_, err := b.Build(nil, nil, axtree.Options{})
		assert.ErrorIs(t, err, axtree.ErrInvalidRoot)

		textRoot := &domdoc.Node{Type: domdoc.TextNode, Text: "hi"}
		_, err = b.Build(domdoc.NewDocument(textRoot), textRoot, axtree.Options{})
		assert.ErrorIs(t, err, axtree.ErrInvalidRoot)
	})

	t.Run("computes roles, names and state", func(t *testing.T) {
		snap, _, _ := buildHTML(t, `
			<div>
				<h2>Account</h2>
				<a href="/settings">Settings</a>
				<button disabled>Save</button>
				<input type="checkbox" checked aria-label="Agree">
			</div>`, axtree.Options{})

		heading := findNode(snap.Root, "heading", "Account")
		require.NotNil(t, heading)
		assert.Equal(t, 2, heading.Level)

		link := findNode(snap.Root, "link", "Settings")
		require.NotNil(t, link)
		assert.True(t, link.Clickable)
		assert.Equal(t, "/settings", link.Props["url"])

		button := findNode(snap.Root, "button", "Save")
		require.NotNil(t, button)
		assert.True(t, button.Disabled)

		checkbox := findNode(snap.Root, "checkbox", "Agree")
		require.NotNil(t, checkbox)
		assert.Equal(t, axtree.TriTrue, checkbox.Checked)
	})

	t.Run("mints references only when asked", func(t *testing.T) {
		const page = `<div><button>Go</button></div>`

		snap, _, _ := buildHTML(t, page, axtree.Options{})
		assert.Empty(t, snap.Refs)
		assert.Empty(t, findNode(snap.Root, "button", "Go").Ref)

		snap, _, _ = buildHTML(t, page, axtree.Options{ForAI: true})
		assert.NotEmpty(t, snap.Refs)
		button := findNode(snap.Root, "button", "Go")
		require.NotEmpty(t, button.Ref)
		resolved, ok := snap.Resolve(button.Ref)
		assert.True(t, ok)
		assert.Equal(t, "button", resolved.Tag)
	})

	t.Run("references are stable across rebuilds of an unchanged page", func(t *testing.T) {
		doc, err := domdoc.Parse(`<div><button>Go</button><a href="/x">There</a></div>`)
		require.NoError(t, err)
		b := axtree.NewBuilder(aria.New(doc), axtree.NewRefAssigner(""), zaptest.NewLogger(t))

		first, err := b.Build(doc, doc.Root, axtree.Options{ForAI: true})
		require.NoError(t, err)
		second, err := b.Build(doc, doc.Root, axtree.Options{ForAI: true})
		require.NoError(t, err)

		assert.Equal(t, findNode(first.Root, "button", "Go").Ref,
			findNode(second.Root, "button", "Go").Ref)
		assert.Equal(t, findNode(first.Root, "link", "There").Ref,
			findNode(second.Root, "link", "There").Ref)
	})

	t.Run("a renamed element gets a fresh reference", func(t *testing.T) {
		doc, err := domdoc.Parse(`<div><button aria-label="Go">Go</button></div>`)
		require.NoError(t, err)
		refs := axtree.NewRefAssigner("")

		first, err := axtree.NewBuilder(aria.New(doc), refs, zaptest.NewLogger(t)).
			Build(doc, doc.Root, axtree.Options{ForAI: true})
		require.NoError(t, err)
		oldRef := findNode(first.Root, "button", "Go").Ref
		require.NotEmpty(t, oldRef)

		// Relabel in place; the node identity is unchanged. A fresh oracle
		// avoids the name cache.
		button, _ := first.Resolve(oldRef)
		button.Attrs["aria-label"] = "Stop"
		second, err := axtree.NewBuilder(aria.New(doc), refs, zaptest.NewLogger(t)).
			Build(doc, doc.Root, axtree.Options{ForAI: true})
		require.NoError(t, err)

		newRef := findNode(second.Root, "button", "Stop").Ref
		assert.NotEmpty(t, newRef)
		assert.NotEqual(t, oldRef, newRef)
	})

	t.Run("hidden subtrees are pruned", func(t *testing.T) {
		snap, _, _ := buildHTML(t, `
			<div>
				<button style="display:none">Ghost</button>
				<span aria-hidden="true">decoration</span>
				<button>Real</button>
			</div>`, axtree.Options{})

		assert.Nil(t, findNode(snap.Root, "button", "Ghost"))
		assert.NotNil(t, findNode(snap.Root, "button", "Real"))
	})

	t.Run("aria-hidden but visible elements survive agent builds", func(t *testing.T) {
		const page = `<div><button aria-hidden="true">Sneaky</button></div>`

		snap, _, _ := buildHTML(t, page, axtree.Options{})
		assert.Nil(t, findNode(snap.Root, "button", "Sneaky"))

		snap, _, _ = buildHTML(t, page, axtree.Options{ForAI: true})
		assert.NotNil(t, findNode(snap.Root, "button", "Sneaky"))
	})

	t.Run("presentation roles hoist their children", func(t *testing.T) {
		snap, _, _ := buildHTML(t, `
			<ul role="presentation">
				<li>alpha</li>
			</ul>`, axtree.Options{})

		assert.Nil(t, findNode(snap.Root, "list", ""))
		assert.NotNil(t, findNode(snap.Root, "listitem", ""))
	})

	t.Run("single-child generic wrappers collapse", func(t *testing.T) {
		snap, _, _ := buildHTML(t, `
			<div>
				<span><button>Inner</button></span>
				<div><p>kept</p><p>grouping</p></div>
			</div>`, axtree.Options{})

		// The span wrapper is gone; the button hangs off its grandparent.
		root := snap.Root.Children
		require.NotEmpty(t, root)
		outer, ok := root[0].(*axtree.Node)
		require.True(t, ok)
		_, directChild := outer.Children[0].(*axtree.Node)
		assert.True(t, directChild)
		assert.NotNil(t, findNode(snap.Root, "button", "Inner"))
	})

	t.Run("text controls surface their value, not their markup text", func(t *testing.T) {
		snap, _, _ := buildHTML(t, `
			<div>
				<input type="text" aria-label="Username" value="alice">
				<textarea aria-label="Bio">hello world</textarea>
			</div>`, axtree.Options{})

		username := findNode(snap.Root, "textbox", "Username")
		require.NotNil(t, username)
		require.Len(t, username.Children, 1)
		assert.Equal(t, axtree.TextRun("alice"), username.Children[0])

		bio := findNode(snap.Root, "textbox", "Bio")
		require.NotNil(t, bio)
		require.Len(t, bio.Children, 1)
		assert.Equal(t, axtree.TextRun("hello world"), bio.Children[0])
	})

	t.Run("aria-owns pulls the target under the owner once", func(t *testing.T) {
		snap, _, _ := buildHTML(t, `
			<div>
				<div role="listbox" aria-owns="opt-far"></div>
				<div role="option" id="opt-far">Remote option</div>
			</div>`, axtree.Options{})

		listbox := findNode(snap.Root, "listbox", "")
		require.NotNil(t, listbox)
		assert.NotNil(t, findNode(listbox, "option", "Remote option"))

		// The owned node appears exactly once in the whole tree.
		count := 0
		var walk func(n *axtree.Node)
		walk = func(n *axtree.Node) {
			if n.Role == "option" {
				count++
			}
			for _, c := range n.Children {
				if child, ok := c.(*axtree.Node); ok {
					walk(child)
				}
			}
		}
		walk(snap.Root)
		assert.Equal(t, 1, count)
	})

	t.Run("declarative shadow trees are flattened through their slots", func(t *testing.T) {
		snap, _, _ := buildHTML(t, `
			<div>
				<my-card>
					<template shadowrootmode="open">
						<div><slot name="title"></slot></div>
					</template>
					<h3 slot="title">Card title</h3>
				</my-card>
			</div>`, axtree.Options{})

		assert.NotNil(t, findNode(snap.Root, "heading", "Card title"))
	})

	t.Run("iframes are kept as leaves", func(t *testing.T) {
		snap, _, _ := buildHTML(t, `
			<div><iframe title="Embedded"><p>inside</p></iframe></div>`, axtree.Options{})

		frame := findNode(snap.Root, axtree.RoleIframe, "Embedded")
		require.NotNil(t, frame)
		assert.Empty(t, frame.Children)
	})
}
