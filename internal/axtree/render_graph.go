package axtree

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/kalyptra/ariadne/api/schemas"
)

var graphJSON = jsoniter.ConfigCompatibleWithStandardLibrary

// GraphNode is the machine-oriented projection of one accessible node. Text
// runs become leaf GraphNodes with role "text" carrying the literal run in
// Name.
type GraphNode struct {
	Role              string               `json:"role"`
	Name              string               `json:"name,omitempty"`
	Props             map[string]string    `json:"props,omitempty"`
	Prompt            string               `json:"prompt"`
	DescriptivePrompt string               `json:"descriptivePrompt"`
	Checked           TriState             `json:"checked,omitempty"`
	Clickable         bool                 `json:"clickable,omitempty"`
	Disabled          bool                 `json:"disabled,omitempty"`
	Expanded          *bool                `json:"expanded,omitempty"`
	Level             int                  `json:"level,omitempty"`
	Pressed           TriState             `json:"pressed,omitempty"`
	Selected          *bool                `json:"selected,omitempty"`
	Ref               string               `json:"ref,omitempty"`
	Cursor            string               `json:"cursor,omitempty"`
	SupportedActions  []schemas.ActionType `json:"supportedActions,omitempty"`
	Children          []*GraphNode         `json:"children,omitempty"`
}

// RenderGraph projects the snapshot into the object-graph form. The returned
// root mirrors the synthetic fragment.
func RenderGraph(s *Snapshot, opts RenderOptions) *GraphNode {
	root := &GraphNode{
		Role:              RoleFragment,
		Prompt:            RoleFragment,
		DescriptivePrompt: "The document fragment at the root of this snapshot.",
	}
	for _, c := range s.Root.Children {
		if g := buildGraphChild(c, "", s.Root, opts); g != nil {
			root.Children = append(root.Children, g)
		}
	}
	return root
}

// MarshalGraph encodes the object-graph projection as JSON.
func MarshalGraph(s *Snapshot, opts RenderOptions) ([]byte, error) {
	return graphJSON.Marshal(RenderGraph(s, opts))
}

func buildGraphChild(c Child, context string, parent *Node, opts RenderOptions) *GraphNode {
	switch child := c.(type) {
	case TextRun:
		text, keep := renderRunText(string(child), parent, opts)
		if !keep {
			return nil
		}
		return &GraphNode{
			Role:              "text",
			Name:              text,
			Prompt:            fmt.Sprintf("text: %s", text),
			DescriptivePrompt: textPrompt(text, context),
		}
	case *Node:
		return buildGraphNode(child, context, opts)
	}
	return nil
}

func buildGraphNode(n *Node, context string, opts RenderOptions) *GraphNode {
	g := &GraphNode{
		Role:              n.Role,
		Name:              n.Name,
		Props:             n.Props,
		Prompt:            nodeKey(n, opts),
		DescriptivePrompt: describe(n, context),
		Checked:           n.Checked,
		Clickable:         n.Clickable,
		Disabled:          n.Disabled,
		Expanded:          n.Expanded,
		Level:             n.Level,
		Pressed:           n.Pressed,
		Selected:          n.Selected,
	}
	if opts.Refs && n.Ref != "" && n.PointerReachable {
		g.Ref = n.Ref
		if n.Cursor == "pointer" {
			g.Cursor = n.Cursor
		}
		g.SupportedActions = InferActions(n)
	}
	childContext := context
	if n.Name != "" {
		childContext = fmt.Sprintf("the %s %q", n.Role, n.Name)
	}
	for _, c := range n.Children {
		if child := buildGraphChild(c, childContext, n, opts); child != nil {
			g.Children = append(g.Children, child)
		}
	}
	return g
}

// describe generates the natural-language description used for semantic
// indexing: role, name, enclosing context and current state words.
func describe(n *Node, context string) string {
	desc := "A " + n.Role
	if n.Name != "" {
		desc += fmt.Sprintf(" named %q", n.Name)
	}
	if context != "" {
		desc += ", within " + context
	}
	if words := joinWords(stateWords(n)); words != "" {
		desc += ", currently " + words
	}
	return desc + "."
}

func textPrompt(text, context string) string {
	if context == "" {
		return fmt.Sprintf("The text %q.", text)
	}
	return fmt.Sprintf("The text %q, within %s.", text, context)
}
