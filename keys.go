// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package jchunk

import (
	"fmt"
	"slices"
)

// A KeyStrategy selects how a schema matches object keys to its fields.
// Both strategies match exactly the same keys.
type KeyStrategy int

const (
	// KeyTrie matches keys with a byte trie over the field names. Matching
	// stops at the first byte that diverges from every field name, and never
	// allocates.
	KeyTrie KeyStrategy = iota

	// KeyTable matches keys by lookup in a hash table of field names.
	KeyTable
)

func (k KeyStrategy) String() string {
	switch k {
	case KeyTrie:
		return "trie"
	case KeyTable:
		return "table"
	}
	return fmt.Sprintf("KeyStrategy(%d)", int(k))
}

// A keyMatcher maps a decoded key to the index of a field, or -1.
// It is immutable once built.
type keyMatcher interface {
	match(key []byte) int
}

func newMatcher(k KeyStrategy, names []string) keyMatcher {
	if k == KeyTable {
		return newKeyTable(names)
	}
	return newKeyTrie(names)
}

type keyTable map[string]int

func newKeyTable(names []string) keyTable {
	t := make(keyTable, len(names))
	for i, name := range names {
		t[name] = i
	}
	return t
}

func (t keyTable) match(key []byte) int {
	if i, ok := t[string(key)]; ok {
		return i
	}
	return -1
}

// A keyTrie is stored as a flat slice of nodes. Node 0 is the root.
type keyTrie []trieNode

type trieNode struct {
	field int    // index of the field ending here, or -1
	next  []byte // edge labels, in increasing order
	child []int  // child node for each label
}

func newKeyTrie(names []string) keyTrie {
	t := keyTrie{{field: -1}}
	for i, name := range names {
		cur := 0
		for j := 0; j < len(name); j++ {
			b := name[j]
			k, ok := slices.BinarySearch(t[cur].next, b)
			if !ok {
				t = append(t, trieNode{field: -1})
				t[cur].next = slices.Insert(t[cur].next, k, b)
				t[cur].child = slices.Insert(t[cur].child, k, len(t)-1)
			}
			cur = t[cur].child[k]
		}
		t[cur].field = i
	}
	return t
}

func (t keyTrie) match(key []byte) int {
	cur := 0
	for _, b := range key {
		n := &t[cur]
		k := 0
		for k < len(n.next) && n.next[k] < b {
			k++
		}
		if k == len(n.next) || n.next[k] != b {
			return -1
		}
		cur = n.child[k]
	}
	return t[cur].field
}
