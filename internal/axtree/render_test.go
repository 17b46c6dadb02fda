package axtree_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jsoniter "github.com/json-iterator/go"

	"github.com/kalyptra/ariadne/api/schemas"
	"github.com/kalyptra/ariadne/internal/axtree"
)

func boolPtr(b bool) *bool { return &b }

func TestRenderText(t *testing.T) {
	t.Run("renders the indented form with annotations in fixed order", func(t *testing.T) {
		snap, _, _ := buildHTML(t, `
			<div>
				<h1>Dashboard</h1>
				<a href="/settings">Settings</a>
				<button disabled>Save</button>
			</div>`, axtree.Options{ForAI: true})

		got := axtree.RenderText(snap, axtree.RenderOptions{Refs: true})
		want := strings.Join([]string{
			`- generic [ref=e1]:`,
			`  - heading "Dashboard" [level=1] [ref=e2]`,
			`  - link "Settings" [clickable] [ref=e3] [cursor=pointer]:`,
			`    - /url: /settings`,
			`  - button "Save" [clickable] [disabled] [ref=e4] [cursor=pointer]`,
			``,
		}, "\n")
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Rendered text mismatch. Diff:\n%s", diff)
		}
	})

	t.Run("a sole text child collapses onto the key line", func(t *testing.T) {
		snap, _, _ := buildHTML(t, `<div><p>Hello there</p></div>`, axtree.Options{})

		got := axtree.RenderText(snap, axtree.RenderOptions{})
		assert.Equal(t, "- generic: Hello there\n", got)
	})

	t.Run("refs are withheld without the option", func(t *testing.T) {
		snap, _, _ := buildHTML(t, `<div><button>Go</button></div>`, axtree.Options{ForAI: true})

		got := axtree.RenderText(snap, axtree.RenderOptions{})
		assert.NotContains(t, got, "[ref=")
	})

	t.Run("checked and expanded states render", func(t *testing.T) {
		expanded := true
		node := &axtree.Node{
			Role:     "button",
			Name:     "Menu",
			Checked:  axtree.TriMixed,
			Expanded: &expanded,
			Pressed:  axtree.TriTrue,
			Selected: boolPtr(true),
		}
		snap := &axtree.Snapshot{Root: &axtree.Node{
			Role:     axtree.RoleFragment,
			Children: []axtree.Child{node},
		}}

		got := axtree.RenderText(snap, axtree.RenderOptions{})
		assert.Equal(t, "- button \"Menu\" [checked=mixed] [expanded] [pressed] [selected]\n", got)
	})

	t.Run("oversized names fall back to the bare role", func(t *testing.T) {
		node := &axtree.Node{Role: "heading", Name: strings.Repeat("x", 901)}
		snap := &axtree.Snapshot{Root: &axtree.Node{
			Role:     axtree.RoleFragment,
			Children: []axtree.Child{node},
		}}

		got := axtree.RenderText(snap, axtree.RenderOptions{})
		assert.Equal(t, "- heading\n", got)
	})

	t.Run("pattern mode generalizes volatile numerics", func(t *testing.T) {
		node := &axtree.Node{
			Role:     "status",
			Name:     "Queue",
			Children: []axtree.Child{axtree.TextRun("5 jobs waiting")},
		}
		snap := &axtree.Snapshot{Root: &axtree.Node{
			Role:     axtree.RoleFragment,
			Children: []axtree.Child{node},
		}}

		got := axtree.RenderText(snap, axtree.RenderOptions{Pattern: true})
		assert.Equal(t, `- status "Queue": /[\d.,]+ jobs waiting/`+"\n", got)
	})

	t.Run("pattern mode drops runs that only repeat the name", func(t *testing.T) {
		node := &axtree.Node{
			Role:     "generic",
			Name:     "Save changes",
			Children: []axtree.Child{axtree.TextRun("Save changes")},
		}
		snap := &axtree.Snapshot{Root: &axtree.Node{
			Role:     axtree.RoleFragment,
			Children: []axtree.Child{node},
		}}

		got := axtree.RenderText(snap, axtree.RenderOptions{Pattern: true})
		assert.Equal(t, "- generic \"Save changes\"\n", got)
	})
}

func TestRenderGraph(t *testing.T) {
	t.Run("projects prompts, refs and inferred actions", func(t *testing.T) {
		snap, _, _ := buildHTML(t, `
			<div>
				<a href="/help">Help</a>
				<button disabled>Save</button>
			</div>`, axtree.Options{ForAI: true})

		graph := axtree.RenderGraph(snap, axtree.RenderOptions{Refs: true})
		require.Equal(t, axtree.RoleFragment, graph.Role)
		require.Len(t, graph.Children, 1)

		container := graph.Children[0]
		require.Len(t, container.Children, 2)

		link := container.Children[0]
		assert.Equal(t, `link "Help"`, link.Prompt)
		assert.Equal(t, `A link named "Help".`, link.DescriptivePrompt)
		assert.NotEmpty(t, link.Ref)
		assert.Equal(t, []schemas.ActionType{
			schemas.ActionClick, schemas.ActionHover, schemas.ActionDrag,
		}, link.SupportedActions)

		button := container.Children[1]
		assert.Equal(t, `A button named "Save", currently disabled.`, button.DescriptivePrompt)
		assert.Equal(t, []schemas.ActionType{schemas.ActionHover}, button.SupportedActions)
	})

	t.Run("nested names feed the child context", func(t *testing.T) {
		snap, _, _ := buildHTML(t, `
			<div>
				<nav aria-label="Main menu"><a href="/a">Alpha</a></nav>
			</div>`, axtree.Options{ForAI: true})

		graph := axtree.RenderGraph(snap, axtree.RenderOptions{Refs: true})
		var link *axtree.GraphNode
		var find func(g *axtree.GraphNode)
		find = func(g *axtree.GraphNode) {
			if g.Role == "link" {
				link = g
			}
			for _, c := range g.Children {
				find(c)
			}
		}
		find(graph)
		require.NotNil(t, link)
		assert.Equal(t, `A link named "Alpha", within the navigation "Main menu".`, link.DescriptivePrompt)
	})

	t.Run("text runs become text leaves", func(t *testing.T) {
		snap, _, _ := buildHTML(t, `<p>Plain words</p>`, axtree.Options{})

		graph := axtree.RenderGraph(snap, axtree.RenderOptions{})
		require.Len(t, graph.Children, 1)
		leaf := graph.Children[0]
		assert.Equal(t, "text", leaf.Role)
		assert.Equal(t, "Plain words", leaf.Name)
		assert.Equal(t, "text: Plain words", leaf.Prompt)
	})

	t.Run("marshals to JSON with camel-case fields", func(t *testing.T) {
		snap, _, _ := buildHTML(t, `<div><button>Go</button></div>`, axtree.Options{ForAI: true})

		raw, err := axtree.MarshalGraph(snap, axtree.RenderOptions{Refs: true})
		require.NoError(t, err)

		var decoded map[string]interface{}
		require.NoError(t, jsoniter.Unmarshal(raw, &decoded))
		assert.Equal(t, "fragment", decoded["role"])
		assert.Contains(t, string(raw), `"descriptivePrompt"`)
		assert.Contains(t, string(raw), `"supportedActions"`)
	})
}
