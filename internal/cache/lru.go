package cache

// lruNode is an element of the recency ring. It carries the key so eviction
// can drop the matching map entry.
type lruNode[K comparable, V any] struct {
	key        K
	value      V
	prev, next *lruNode[K, V]
}

// lruList is a circular doubly-linked list around a sentinel. root.next is
// the most recently used node and root.prev the least.
// Not thread-safe; Cache holds its mutex around every call.
type lruList[K comparable, V any] struct {
	root lruNode[K, V]
	len  int
}

func newLRUList[K comparable, V any]() *lruList[K, V] {
	l := &lruList[K, V]{}
	l.root.next = &l.root
	l.root.prev = &l.root
	return l
}

// Len returns the number of nodes.
func (l *lruList[K, V]) Len() int { return l.len }

// PushFront inserts a most recently used node.
func (l *lruList[K, V]) PushFront(key K, value V) *lruNode[K, V] {
	n := &lruNode[K, V]{key: key, value: value}
	l.insertFront(n)
	l.len++
	return n
}

// MoveToFront marks n most recently used.
func (l *lruList[K, V]) MoveToFront(n *lruNode[K, V]) {
	if l.root.next == n {
		return
	}
	l.detach(n)
	l.insertFront(n)
}

// Remove unlinks n.
func (l *lruList[K, V]) Remove(n *lruNode[K, V]) {
	l.detach(n)
	n.prev, n.next = nil, nil
	l.len--
}

// Back returns the least recently used node, or nil if the list is empty.
func (l *lruList[K, V]) Back() *lruNode[K, V] {
	if l.len == 0 {
		return nil
	}
	return l.root.prev
}

func (l *lruList[K, V]) insertFront(n *lruNode[K, V]) {
	n.prev = &l.root
	n.next = l.root.next
	l.root.next.prev = n
	l.root.next = n
}

func (l *lruList[K, V]) detach(n *lruNode[K, V]) {
	n.prev.next = n.next
	n.next.prev = n.prev
}
