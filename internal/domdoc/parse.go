package domdoc

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Parse builds a Document from an HTML fragment or full page. The root is
// the body's single element child when there is exactly one, otherwise the
// body itself. Declarative shadow roots (<template shadowrootmode>) become
// shadow subtrees of their host, and slot assignment is computed before
// returning.
func Parse(source string) (*Document, error) {
	parsed, err := html.Parse(strings.NewReader(source))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	body := findBody(parsed)
	if body == nil {
		return nil, fmt.Errorf("parse html: no body element")
	}
	root := convert(body, nil)
	if root == nil {
		return nil, fmt.Errorf("parse html: empty document")
	}
	if only := singleElementChild(root); only != nil {
		only.Parent = nil
		root = only
	}
	AssignSlots(root)
	return NewDocument(root), nil
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findBody(c); found != nil {
			return found
		}
	}
	return nil
}

func singleElementChild(root *Node) *Node {
	var only *Node
	for _, c := range root.Children {
		switch {
		case c.Type == ElementNode:
			if only != nil {
				return nil
			}
			only = c
		case strings.TrimSpace(c.Text) != "":
			return nil
		}
	}
	return only
}

func convert(src *html.Node, parent *Node) *Node {
	switch src.Type {
	case html.TextNode:
		return &Node{Type: TextNode, Text: src.Data, Parent: parent}
	case html.ElementNode:
		// handled below
	default:
		return nil
	}

	n := &Node{
		Type:  ElementNode,
		Tag:   strings.ToLower(src.Data),
		Attrs: make(map[string]string, len(src.Attr)),
	}
	for _, a := range src.Attr {
		n.Attrs[strings.ToLower(a.Key)] = a.Val
	}
	n.Parent = parent
	n.Box = boxFromAttrs(n)

	for c := src.FirstChild; c != nil; c = c.NextSibling {
		if isDeclarativeShadowRoot(c) {
			shadow := &Node{Type: ElementNode, Tag: "#shadow-root", Parent: n, Box: n.Box}
			for sc := c.FirstChild; sc != nil; sc = sc.NextSibling {
				if converted := convert(sc, shadow); converted != nil {
					shadow.Children = append(shadow.Children, converted)
				}
			}
			n.ShadowRoot = shadow
			continue
		}
		if converted := convert(c, n); converted != nil {
			n.Children = append(n.Children, converted)
		}
	}
	return n
}

func isDeclarativeShadowRoot(n *html.Node) bool {
	if n.Type != html.ElementNode || n.Data != "template" {
		return false
	}
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, "shadowrootmode") || strings.EqualFold(a.Key, "shadowroot") {
			return a.Val == "open" || a.Val == "closed"
		}
	}
	return false
}

// boxFromAttrs derives a best-effort layout box from static markup. Live
// captures overwrite this with computed values from the browser.
func boxFromAttrs(n *Node) Box {
	box := Box{Visible: true, ReceivesPointerEvents: true}
	if n.HasAttr("hidden") {
		box.Visible = false
	}
	style := styleMap(n.AttrOr("style", ""))
	switch {
	case style["display"] == "none", style["visibility"] == "hidden":
		box.Visible = false
	}
	if style["pointer-events"] == "none" {
		box.ReceivesPointerEvents = false
	}
	if c := style["cursor"]; c != "" {
		box.Cursor = c
	} else if clickableTag(n.Tag) {
		box.Cursor = "pointer"
	}
	// Stylesheets are not interpreted here; generated content arrives either
	// from the live harvester or through these capture attributes.
	n.Before = n.AttrOr("data-before", "")
	n.After = n.AttrOr("data-after", "")
	return box
}

func clickableTag(tag string) bool {
	switch tag {
	case "a", "button", "select", "summary":
		return true
	}
	return false
}

func styleMap(style string) map[string]string {
	out := make(map[string]string)
	for _, decl := range strings.Split(style, ";") {
		key, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		out[strings.TrimSpace(strings.ToLower(key))] = strings.Trim(strings.TrimSpace(value), `"'`)
	}
	return out
}
