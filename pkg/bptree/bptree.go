// Package bptree is an in-memory B+tree over any ordered key type. Leaves
// are linked, so an ascending walk visits every leaf once.
//
// The tree is not safe for concurrent mutation.
package bptree

import (
	"cmp"
	"slices"
	"sort"
)

// DefaultOrder is the fallback branching factor if a user-supplied order is too small.
const DefaultOrder = 32

// findChildIndex picks the child pointer to follow in an internal node:
// the first key strictly greater than searchKey.
func findChildIndex[K cmp.Ordered](keys []K, searchKey K) int {
	return sort.Search(len(keys), func(i int) bool {
		return cmp.Less(searchKey, keys[i])
	})
}

// BPlusTree maps ordered keys to values.
type BPlusTree[K cmp.Ordered, V any] struct {
	root   *node[K, V]
	order  int
	height int
	size   int
}

// node represents both internal and leaf nodes.
type node[K cmp.Ordered, V any] struct {
	isLeaf   bool
	keys     []K
	children []*node[K, V] // used if !isLeaf
	values   []V           // used if isLeaf
	parent   *node[K, V]
	next     *node[K, V] // leaf-link pointer, for ordered walks
}

// NewBPlusTree creates and returns a B+Tree with the given order.
// If the specified order < 3, we fall back to DefaultOrder.
func NewBPlusTree[K cmp.Ordered, V any](order int) *BPlusTree[K, V] {
	if order < 3 {
		order = DefaultOrder
	}
	return &BPlusTree[K, V]{
		root: &node[K, V]{
			isLeaf: true,
			keys:   make([]K, 0, order+1),
			values: make([]V, 0, order+1),
		},
		order:  order,
		height: 1,
	}
}

func (tree *BPlusTree[K, V]) Height() int {
	return tree.height
}

// Len returns the number of distinct keys.
func (tree *BPlusTree[K, V]) Len() int {
	return tree.size
}

func (tree *BPlusTree[K, V]) leafFor(key K) *node[K, V] {
	current := tree.root
	for !current.isLeaf {
		current = current.children[findChildIndex(current.keys, key)]
	}
	return current
}

// Search locates the value associated with key.
func (tree *BPlusTree[K, V]) Search(key K) (V, bool) {
	leaf := tree.leafFor(key)
	if idx, found := slices.BinarySearch(leaf.keys, key); found {
		return leaf.values[idx], true
	}
	var zero V
	return zero, false
}

// Insert stores value under key, replacing any existing value.
func (tree *BPlusTree[K, V]) Insert(key K, value V) {
	tree.Upsert(key, func(V, bool) V { return value })
}

// Upsert stores fn(old, exists) under key. old is the zero value when the
// key is new.
func (tree *BPlusTree[K, V]) Upsert(key K, fn func(old V, exists bool) V) {
	leaf := tree.leafFor(key)
	idx, found := slices.BinarySearch(leaf.keys, key)
	if found {
		leaf.values[idx] = fn(leaf.values[idx], true)
		return
	}

	var zero V
	leaf.keys = slices.Insert(leaf.keys, idx, key)
	leaf.values = slices.Insert(leaf.values, idx, fn(zero, false))
	tree.size++

	if len(leaf.keys) > tree.order {
		tree.splitLeaf(leaf)
	}
}

// Ascend calls fn for every key in ascending order until fn returns false.
func (tree *BPlusTree[K, V]) Ascend(fn func(key K, value V) bool) {
	leaf := tree.root
	for !leaf.isLeaf {
		leaf = leaf.children[0]
	}
	for ; leaf != nil; leaf = leaf.next {
		for i, k := range leaf.keys {
			if !fn(k, leaf.values[i]) {
				return
			}
		}
	}
}

// splitLeaf handles splitting a leaf node that has overflowed.
func (tree *BPlusTree[K, V]) splitLeaf(leaf *node[K, V]) {
	mid := len(leaf.keys) / 2

	newLeaf := &node[K, V]{
		isLeaf: true,
		keys:   append(make([]K, 0, tree.order+1), leaf.keys[mid:]...),
		values: append(make([]V, 0, tree.order+1), leaf.values[mid:]...),
		next:   leaf.next,
		parent: leaf.parent,
	}

	leaf.keys = leaf.keys[:mid]
	clear(leaf.values[mid:])
	leaf.values = leaf.values[:mid]
	leaf.next = newLeaf

	if leaf.parent == nil {
		tree.growRoot(leaf, newLeaf.keys[0], newLeaf)
		return
	}

	tree.insertKeyInParent(leaf.parent, newLeaf.keys[0], newLeaf)
}

// growRoot puts a new root above left and right.
func (tree *BPlusTree[K, V]) growRoot(left *node[K, V], key K, right *node[K, V]) {
	newRoot := &node[K, V]{
		keys:     []K{key},
		children: []*node[K, V]{left, right},
	}
	left.parent = newRoot
	right.parent = newRoot
	tree.root = newRoot
	tree.height++
}

// insertKeyInParent inserts key into parent and links rightChild after it.
func (tree *BPlusTree[K, V]) insertKeyInParent(parent *node[K, V], key K, rightChild *node[K, V]) {
	idx, _ := slices.BinarySearch(parent.keys, key)
	parent.keys = slices.Insert(parent.keys, idx, key)
	parent.children = slices.Insert(parent.children, idx+1, rightChild)
	rightChild.parent = parent

	if len(parent.keys) > tree.order {
		tree.splitInternalNode(parent)
	}
}

// splitInternalNode handles splitting an internal node that has overflowed.
func (tree *BPlusTree[K, V]) splitInternalNode(internal *node[K, V]) {
	mid := len(internal.keys) / 2
	splitKey := internal.keys[mid]

	newInternal := &node[K, V]{
		keys:     append([]K{}, internal.keys[mid+1:]...),
		children: append([]*node[K, V]{}, internal.children[mid+1:]...),
		parent:   internal.parent,
	}
	for _, child := range newInternal.children {
		child.parent = newInternal
	}

	internal.keys = internal.keys[:mid]
	internal.children = internal.children[:mid+1]

	if internal.parent == nil {
		tree.growRoot(internal, splitKey, newInternal)
		return
	}

	tree.insertKeyInParent(internal.parent, splitKey, newInternal)
}
