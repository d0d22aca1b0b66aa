package cache

// node is one slot in the cache's fixed arena. Nodes are linked into a
// doubly linked list ordered by recency (front = most recently used) via
// prev/next indices into the same arena rather than pointers, so eviction
// and move-to-front never allocate.
type node struct {
	key   string
	value []byte
	prev  int
	next  int
}

// sentinel index value meaning "no node", used for a node's prev/next at
// the list boundaries.
const nilIndex = -1
