package vdom

import "strconv"

// ListNode is an ordered key→Node mapping rendered as consecutive siblings.
// Keys identify children across renders.
type ListNode struct {
	keys     []string
	children map[string]Node
}

// KeyedNode pairs a child with its list key.
type KeyedNode struct {
	Key  string
	Node Node
}

// Item creates a KeyedNode.
func Item(key string, node Node) KeyedNode {
	return KeyedNode{Key: key, Node: node}
}

// Keyed creates a list with explicit keys. A repeated key replaces the
// earlier child and keeps the earlier position. Nil nodes are skipped.
func Keyed(items ...KeyedNode) *ListNode {
	l := &ListNode{children: make(map[string]Node, len(items))}
	for _, it := range items {
		if it.Node == nil {
			continue
		}
		if _, exists := l.children[it.Key]; !exists {
			l.keys = append(l.keys, it.Key)
		}
		l.children[it.Key] = it.Node
	}
	return l
}

// List creates a list keyed by the position of each child at construction
// time. Nil children are skipped without consuming an index.
func List(children ...Node) *ListNode {
	items := make([]KeyedNode, 0, len(children))
	for _, c := range children {
		if c == nil {
			continue
		}
		items = append(items, Item(strconv.Itoa(len(items)), c))
	}
	return Keyed(items...)
}

// Len returns the number of children.
func (l *ListNode) Len() int { return len(l.keys) }

// Keys returns the keys in rendering order.
func (l *ListNode) Keys() []string { return append([]string(nil), l.keys...) }

// Get returns the child stored under key.
func (l *ListNode) Get(key string) (Node, bool) {
	n, ok := l.children[key]
	return n, ok
}

// Each calls fn for every child in rendering order.
func (l *ListNode) Each(fn func(key string, n Node)) {
	for _, k := range l.keys {
		fn(k, l.children[k])
	}
}

// Kind implements Node.
func (l *ListNode) Kind() Kind { return KindList }

// Handle returns the handle of the first attached child.
func (l *ListNode) Handle() Handle {
	for _, k := range l.keys {
		if h := l.children[k].Handle(); h != nil {
			return h
		}
	}
	return nil
}

// patch reconciles the list against prev by key.
//
// Children are visited last to first while tracking the handle of the
// already positioned successor, so every created child can be inserted
// directly before it. If the previous positions of the reused children are
// not increasing in the new order, a second backwards sweep moves every
// child whose rank among reused children changed (plus fresh and compound
// children) before its successor. This is a single linear pass rather than
// a minimal move sequence. Unmatched previous children are removed last.
func (l *ListNode) patch(p *pass, parent, next Handle, prev Node) {
	var old *ListNode
	if prev != nil {
		old = prev.(*ListNode)
	}

	oldPos := make(map[string]int)
	remaining := make(map[string]Node)
	if old != nil {
		for i, k := range old.keys {
			oldPos[k] = i
			remaining[k] = old.children[k]
		}
	}

	// fresh marks children whose target node was created in this pass,
	// either because the key is new or because the old child was replaced.
	fresh := make(map[string]bool)
	sibling := next
	for i := len(l.keys) - 1; i >= 0; i-- {
		k := l.keys[i]
		child := l.children[k]
		if pc, ok := remaining[k]; ok {
			delete(remaining, k)
			before := pc.Handle()
			patchNode(p, parent, sibling, child, pc)
			if child.Handle() != before {
				fresh[k] = true
			}
		} else {
			patchNode(p, parent, sibling, child, nil)
			fresh[k] = true
		}
		if h := child.Handle(); h != nil {
			sibling = h
		}
	}

	if old != nil && orderChanged(l.keys, oldPos) {
		newRank, oldRank := matchedRanks(l.keys, old.keys, oldPos)
		sibling = next
		for i := len(l.keys) - 1; i >= 0; i-- {
			k := l.keys[i]
			child := l.children[k]
			if fresh[k] || newRank[k] != oldRank[k] || compound(child) {
				move(p, parent, sibling, child)
			}
			if h := child.Handle(); h != nil {
				sibling = h
			}
		}
	}

	if old != nil {
		for _, k := range old.keys {
			if pc, ok := remaining[k]; ok {
				pc.remove(p, parent)
			}
		}
	}
}

// orderChanged reports whether the previous positions of reused keys, read
// in new order, fail to increase. Keys that did not exist before are
// ignored.
func orderChanged(keys []string, oldPos map[string]int) bool {
	last := -1
	for _, k := range keys {
		pos, ok := oldPos[k]
		if !ok {
			continue
		}
		if pos < last {
			return true
		}
		last = pos
	}
	return false
}

// matchedRanks numbers the keys present in both orders, once in new order
// and once in old order.
func matchedRanks(keys, oldKeys []string, oldPos map[string]int) (newRank, oldRank map[string]int) {
	newRank = make(map[string]int)
	inNew := make(map[string]bool, len(keys))
	for _, k := range keys {
		inNew[k] = true
		if _, ok := oldPos[k]; ok {
			newRank[k] = len(newRank)
		}
	}
	oldRank = make(map[string]int)
	for _, k := range oldKeys {
		if inNew[k] {
			oldRank[k] = len(oldRank)
		}
	}
	return newRank, oldRank
}

// compound reports whether n may span several target nodes, in which case
// its placement cannot be inferred from its rank alone.
func compound(n Node) bool {
	switch n.Kind() {
	case KindList, KindComponent:
		return true
	}
	return false
}

func (l *ListNode) refresh(p *pass, parent, next Handle) {
	sibling := next
	for i := len(l.keys) - 1; i >= 0; i-- {
		child := l.children[l.keys[i]]
		child.refresh(p, parent, sibling)
		if h := child.Handle(); h != nil {
			sibling = h
		}
	}
}

func (l *ListNode) remove(p *pass, parent Handle) {
	for _, k := range l.keys {
		l.children[k].remove(p, parent)
	}
}

func (l *ListNode) moveToEnd(p *pass, parent Handle) {
	for _, k := range l.keys {
		l.children[k].moveToEnd(p, parent)
	}
}

func (l *ListNode) moveBefore(p *pass, parent, sibling Handle) {
	for _, k := range l.keys {
		l.children[k].moveBefore(p, parent, sibling)
	}
}
