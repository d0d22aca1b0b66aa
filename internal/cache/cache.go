// Package cache implements the bounded LRU value cache: a pure lookaside
// in front of the storage engine's reads. It is never the system of
// record: the index always knows where a key's record lives on disk, so
// the cache only ever shortcuts a read that would otherwise reopen and
// seek a data segment.
package cache

import (
	"sync"

	"github.com/ignitedb/ignite/pkg/errors"
)

// Cache is a fixed-capacity, move-to-front LRU keyed by string and valued by
// raw bytes. Unlike a naive implementation built on container/list, Cache
// preallocates its node arena once at construction and indexes into it by
// position: eviction and insertion reuse a slot instead of allocating and
// freeing a list node on every operation. The zero value is not usable;
// construct one with New.
type Cache struct {
	mu sync.Mutex

	nodes    []node
	keyIndex map[string]int

	head int // most recently used
	tail int // least recently used
	free int // head of the free-slot list, threaded through node.next

	size int
}

// New creates a Cache holding at most capacity entries. capacity must be
// greater than zero.
func New(capacity int) *Cache {
	if capacity <= 0 {
		panic("cache: capacity must be greater than zero")
	}

	nodes := make([]node, capacity)
	for i := range nodes {
		nodes[i].prev = nilIndex
		nodes[i].next = i + 1
	}
	nodes[capacity-1].next = nilIndex

	return &Cache{
		nodes:    nodes,
		keyIndex: make(map[string]int, capacity),
		head:     nilIndex,
		tail:     nilIndex,
		free:     0,
	}
}

// Get returns the cached value for key and moves it to the front. It
// returns a NotFound IndexError if key isn't cached; a cache miss is not a
// failure, just a signal to read through to the storage engine.
func (c *Cache) Get(key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx, ok := c.keyIndex[key]
	if !ok {
		return nil, errors.NewKeyNotFoundError(key)
	}

	c.moveToFront(idx)
	return c.nodes[idx].value, nil
}

// Set inserts or updates key's cached value and marks it most recently
// used. If the cache is at capacity and key is new, the least recently
// used entry is evicted to make room.
func (c *Cache) Set(key string, value []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if idx, ok := c.keyIndex[key]; ok {
		c.nodes[idx].value = value
		c.moveToFront(idx)
		return
	}

	var idx int
	if c.free != nilIndex {
		idx = c.free
		c.free = c.nodes[idx].next
	} else {
		idx = c.tail
		c.unlink(idx)
		delete(c.keyIndex, c.nodes[idx].key)
		c.size--
	}

	c.nodes[idx] = node{key: key, value: value}
	c.keyIndex[key] = idx
	c.pushFront(idx)
	c.size++
}

// Del removes key from the cache if present. It returns a NotFound
// IndexError if key wasn't cached.
func (c *Cache) Del(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx, ok := c.keyIndex[key]
	if !ok {
		return errors.NewKeyNotFoundError(key)
	}

	c.unlink(idx)
	delete(c.keyIndex, key)
	c.nodes[idx] = node{}
	c.nodes[idx].next = c.free
	c.nodes[idx].prev = nilIndex
	c.free = idx
	c.size--
	return nil
}

// Clear empties the cache, discarding every entry. The engine calls this
// after merge rewrites the store.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	capacity := len(c.nodes)
	for i := 0; i < capacity; i++ {
		c.nodes[i] = node{prev: nilIndex, next: i + 1}
	}
	c.nodes[capacity-1].next = nilIndex

	c.keyIndex = make(map[string]int, capacity)
	c.head = nilIndex
	c.tail = nilIndex
	c.free = 0
	c.size = 0
}

// Size returns the number of entries currently cached.
func (c *Cache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// moveToFront relinks idx to the head of the recency list without changing
// its contents. idx must already be linked into the list.
func (c *Cache) moveToFront(idx int) {
	if c.head == idx {
		return
	}
	c.unlink(idx)
	c.pushFront(idx)
}

// pushFront links the node at idx in at the head of the recency list. idx
// must not currently be linked into the list.
func (c *Cache) pushFront(idx int) {
	c.nodes[idx].prev = nilIndex
	c.nodes[idx].next = c.head

	if c.head != nilIndex {
		c.nodes[c.head].prev = idx
	}
	c.head = idx

	if c.tail == nilIndex {
		c.tail = idx
	}
}

// unlink removes the node at idx from the recency list, leaving its
// prev/next fields stale until the caller repurposes or relinks it.
func (c *Cache) unlink(idx int) {
	n := &c.nodes[idx]

	if n.prev != nilIndex {
		c.nodes[n.prev].next = n.next
	} else {
		c.head = n.next
	}

	if n.next != nilIndex {
		c.nodes[n.next].prev = n.prev
	} else {
		c.tail = n.prev
	}
}
