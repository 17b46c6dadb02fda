package axtree

import (
	"strconv"

	"github.com/kalyptra/ariadne/internal/domdoc"
)

// RefAssigner mints stable opaque references for document nodes. The counter
// is owned by the assigner (one per session) rather than being process
// global, so concurrent sessions cannot collide. A node keeps its reference
// across rebuilds for as long as its (role, name) identity is unchanged; any
// change to either mints a fresh reference.
type RefAssigner struct {
	prefix  string
	counter int
	cache   map[any]refEntry
}

type refEntry struct {
	role, name, ref string
}

// NewRefAssigner creates an assigner. The prefix is prepended verbatim to
// every minted reference and is empty unless configured otherwise.
func NewRefAssigner(prefix string) *RefAssigner {
	return &RefAssigner{
		prefix: prefix,
		cache:  make(map[any]refEntry),
	}
}

// RefFor returns the reference for the node, minting a new one when the node
// has never been seen or its accessible identity changed.
func (r *RefAssigner) RefFor(n *domdoc.Node, role, name string) string {
	key := n.Identity()
	if entry, ok := r.cache[key]; ok && entry.role == role && entry.name == name {
		return entry.ref
	}
	r.counter++
	ref := r.prefix + "e" + strconv.Itoa(r.counter)
	r.cache[key] = refEntry{role: role, name: name, ref: ref}
	return ref
}

// Reset clears the cache and the counter. Previously issued references are
// invalid afterwards; callers must rebuild before resolving anything.
func (r *RefAssigner) Reset() {
	r.counter = 0
	r.cache = make(map[any]refEntry)
}
