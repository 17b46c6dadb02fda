package axtree

import (
	"fmt"
	"sort"
	"strings"
)

// RenderText projects the snapshot into its human-readable indented form:
// one `- role "name" [state]...` line per node, two-space indent per depth,
// properties as `- /name: value` lines before children. The synthetic
// fragment root is not itself rendered.
func RenderText(s *Snapshot, opts RenderOptions) string {
	var sb strings.Builder
	for _, c := range s.Root.Children {
		renderTextChild(&sb, c, 0, s.Root, opts)
	}
	return sb.String()
}

func renderTextChild(sb *strings.Builder, c Child, depth int, parent *Node, opts RenderOptions) {
	indent := strings.Repeat("  ", depth)
	switch child := c.(type) {
	case TextRun:
		text, keep := renderRunText(string(child), parent, opts)
		if !keep {
			return
		}
		fmt.Fprintf(sb, "%s- text: %s\n", indent, text)
	case *Node:
		renderTextNode(sb, child, depth, opts)
	}
}

func renderTextNode(sb *strings.Builder, n *Node, depth int, opts RenderOptions) {
	indent := strings.Repeat("  ", depth)
	line := "- " + nodeKey(n, opts)
	if ann := stateAnnotations(n, opts); len(ann) > 0 {
		line += " " + strings.Join(ann, " ")
	}

	// A node with exactly one text run and no properties collapses to
	// `key: value`.
	if len(n.Props) == 0 && len(n.Children) == 1 {
		if t, ok := n.Children[0].(TextRun); ok {
			text, keep := renderRunText(string(t), n, opts)
			if keep {
				fmt.Fprintf(sb, "%s%s: %s\n", indent, line, text)
			} else {
				fmt.Fprintf(sb, "%s%s\n", indent, line)
			}
			return
		}
	}

	if len(n.Props) == 0 && len(n.Children) == 0 {
		fmt.Fprintf(sb, "%s%s\n", indent, line)
		return
	}

	fmt.Fprintf(sb, "%s%s:\n", indent, line)
	childIndent := strings.Repeat("  ", depth+1)
	for _, key := range sortedPropKeys(n.Props) {
		fmt.Fprintf(sb, "%s- /%s: %s\n", childIndent, key, n.Props[key])
	}
	for _, c := range n.Children {
		renderTextChild(sb, c, depth+1, n, opts)
	}
}

// renderRunText applies pattern-mode rewriting to a literal run. The second
// return is false when the run is judged non-informative and dropped.
func renderRunText(text string, parent *Node, opts RenderOptions) (string, bool) {
	if !opts.Pattern {
		return text, true
	}
	if !informative(text, parent.Name) {
		return "", false
	}
	if p := bestGuessPattern(text); p != "" {
		return p, true
	}
	return text, true
}

func sortedPropKeys(props map[string]string) []string {
	if len(props) == 0 {
		return nil
	}
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
