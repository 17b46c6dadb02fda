// Package memory keeps the semantic store in step with the page. Each
// actionable element becomes one description record; synchronization diffs
// the current snapshot against what the store already holds and applies
// only the delta, so re-syncing an unchanged page is a no-op.
package memory

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kalyptra/ariadne/api/schemas"
	"github.com/kalyptra/ariadne/internal/axtree"
	"github.com/kalyptra/ariadne/internal/semstore"
)

// Flatten projects every actionable node of the snapshot into a store
// record. Content is the node's descriptive prompt followed by a metadata
// line carrying the element reference and its supported actions, so a
// search hit can be resolved back to a live element.
func Flatten(s *axtree.Snapshot) []semstore.Record {
	graph := axtree.RenderGraph(s, axtree.RenderOptions{Refs: true})
	var records []semstore.Record
	collect(graph, &records)
	return records
}

func collect(g *axtree.GraphNode, out *[]semstore.Record) {
	if g.Ref != "" {
		*out = append(*out, semstore.Record{
			Role:    g.Role,
			Content: g.DescriptivePrompt + "\n" + metaLine(g.Ref, g.SupportedActions),
		})
	}
	for _, c := range g.Children {
		collect(c, out)
	}
}

func metaLine(ref string, actions []schemas.ActionType) string {
	if len(actions) == 0 {
		return fmt.Sprintf("ref=%s", ref)
	}
	parts := make([]string, len(actions))
	for i, a := range actions {
		parts[i] = string(a)
	}
	return fmt.Sprintf("ref=%s actions=%s", ref, strings.Join(parts, "|"))
}

var metaPattern = regexp.MustCompile(`(?m)^ref=(\S+)(?: actions=(\S+))?$`)

// ParseMeta extracts the element reference and supported actions from a
// record's content. ok is false when the content carries no metadata line.
func ParseMeta(content string) (ref string, actions []schemas.ActionType, ok bool) {
	m := metaPattern.FindStringSubmatch(content)
	if m == nil {
		return "", nil, false
	}
	ref = m[1]
	if m[2] != "" {
		for _, a := range strings.Split(m[2], "|") {
			actions = append(actions, schemas.ActionType(a))
		}
	}
	return ref, actions, true
}

// Diff computes the store delta that turns previous into current. Records
// are equal iff role and content are byte-identical; duplicates count, so
// two identical buttons stay two records. Equal inputs yield an empty
// delta in both directions.
func Diff(current, previous []semstore.Record) (toAdd []semstore.Record, toDelete []string) {
	type slot struct {
		ids  []string
		want int
	}
	index := make(map[string]*slot)
	for _, r := range previous {
		k := r.Role + "\x00" + r.Content
		s := index[k]
		if s == nil {
			s = &slot{}
			index[k] = s
		}
		s.ids = append(s.ids, r.ID)
	}
	for _, r := range current {
		k := r.Role + "\x00" + r.Content
		s := index[k]
		if s == nil || s.want >= len(s.ids) {
			toAdd = append(toAdd, semstore.Record{Role: r.Role, Content: r.Content})
			continue
		}
		s.want++
	}
	for _, s := range index {
		for _, id := range s.ids[s.want:] {
			toDelete = append(toDelete, id)
		}
	}
	return toAdd, toDelete
}
