package keyspace

import (
	"math/rand"
	"time"
)

const (
	maxLevel    = 16
	probability = 0.5
)

// node holds one named value slot and its forward links.
type node struct {
	key   string
	value []byte
	next  []*node
}

func newNode(key string, value []byte, level int) *node {
	return &node{
		key:   key,
		value: value,
		next:  make([]*node, level),
	}
}

// skipList keeps the slots ordered by name so snapshots are written sorted.
type skipList struct {
	head  *node
	level int
	size  int
	rng   *rand.Rand
}

func newSkipList() *skipList {
	return &skipList{
		head:  newNode("", nil, maxLevel),
		level: 1,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (sl *skipList) randomLevel() int {
	level := 1
	for sl.rng.Float64() < probability && level < maxLevel {
		level++
	}
	return level
}

// findPath fills update with the rightmost node before key on every level
// and returns the candidate node at level 0.
func (sl *skipList) findPath(key string, update []*node) *node {
	current := sl.head
	for i := sl.level - 1; i >= 0; i-- {
		for current.next[i] != nil && current.next[i].key < key {
			current = current.next[i]
		}
		if update != nil {
			update[i] = current
		}
	}
	return current.next[0]
}

// put inserts key or replaces its value, returning the node that holds it.
func (sl *skipList) put(key string, value []byte) *node {
	update := make([]*node, maxLevel)
	current := sl.findPath(key, update)

	if current != nil && current.key == key {
		current.value = value
		return current
	}

	newLevel := sl.randomLevel()
	if newLevel > sl.level {
		for i := sl.level; i < newLevel; i++ {
			update[i] = sl.head
		}
		sl.level = newLevel
	}

	n := newNode(key, value, newLevel)
	for i := 0; i < newLevel; i++ {
		n.next[i] = update[i].next[i]
		update[i].next[i] = n
	}

	sl.size++
	return n
}

func (sl *skipList) get(key string) *node {
	current := sl.findPath(key, nil)
	if current != nil && current.key == key {
		return current
	}
	return nil
}

// remove unlinks key. It reports whether the key was present.
func (sl *skipList) remove(key string) bool {
	update := make([]*node, maxLevel)
	current := sl.findPath(key, update)

	if current == nil || current.key != key {
		return false
	}

	for i := range current.next {
		if update[i].next[i] != current {
			break
		}
		update[i].next[i] = current.next[i]
	}

	for sl.level > 1 && sl.head.next[sl.level-1] == nil {
		sl.level--
	}

	sl.size--
	return true
}

// ascend visits nodes in key order until fn returns false.
func (sl *skipList) ascend(fn func(n *node) bool) {
	for current := sl.head.next[0]; current != nil; current = current.next[0] {
		if !fn(current) {
			return
		}
	}
}

func (sl *skipList) clear() {
	sl.head = newNode("", nil, maxLevel)
	sl.level = 1
	sl.size = 0
}
