// This is free and unencumbered software released into the public domain.
//
// Anyone is free to copy, modify, publish, use, compile, sell, or
// distribute this software, either in source code form or as a compiled
// binary, for any purpose, commercial or non-commercial, and by any
// means.
//
// In jurisdictions that recognize copyright laws, the author or authors
// of this software dedicate any and all copyright interest in the
// software to the public domain. We make this dedication for the benefit
// of the public at large and to the detriment of our heirs and
// successors. We intend this dedication to be an overt act of
// relinquishment in perpetuity of all present and future rights to this
// software under copyright law.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
// EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
// MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
// IN NO EVENT SHALL THE AUTHORS BE LIABLE FOR ANY CLAIM, DAMAGES OR
// OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE,
// ARISING FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR
// OTHER DEALINGS IN THE SOFTWARE.
//
// For more information, please refer to <https://unlicense.org>

package prolly

import (
	"bytes"
	"errors"
)

// Tree is a prolly tree bound to a NodeStore and a frozen TreeConfig.
// A Tree value is not safe for concurrent mutation from
// multiple goroutines; concurrent reads of an already-committed root are
// safe, since committed nodes are never mutated in place.
type Tree struct {
	store *NodeStore
	cfg   *TreeConfig
	root  Hash
}

// NewTree opens or creates a tree over store. If the store already holds
// a persisted config, cfg must match it exactly; passing nil
// for cfg means "adopt whatever is persisted, or DefaultConfig() for a
// brand-new store".
func NewTree(store *NodeStore, cfg *TreeConfig) (*Tree, error) {
	existing, err := store.LoadConfig()
	freshStore := false
	switch {
	case err == nil:
		if cfg != nil && !existing.Equal(cfg) {
			return nil, ErrConfigMismatch
		}
		cfg = existing
	case errors.Is(err, ErrKeyNotFound):
		if cfg == nil {
			cfg = DefaultConfig()
		}
		freshStore = true
	default:
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if freshStore {
		if err := store.SaveConfig(cfg); err != nil {
			return nil, err
		}
	}

	root, err := store.LoadRoot()
	switch {
	case err == nil:
	case errors.Is(err, ErrKeyNotFound):
		root = ZeroHash
	default:
		return nil, err
	}
	return &Tree{store: store, cfg: cfg, root: root}, nil
}

// LoadTree opens the tree already persisted in store, adopting its
// stored config. It returns (nil, nil) when store holds no tree at all,
// so callers can distinguish "not initialized" from a real failure
// without creating anything as a side effect.
func LoadTree(store *NodeStore) (*Tree, error) {
	_, err := store.LoadConfig()
	if errors.Is(err, ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return NewTree(store, nil)
}

// Config returns the tree's frozen configuration.
func (t *Tree) Config() *TreeConfig { return t.cfg }

// RootHash returns the tree's current root digest. The zero Hash means
// the tree holds no entries.
func (t *Tree) RootHash() Hash { return t.root }

// IsEmpty reports whether the tree holds no entries.
func (t *Tree) IsEmpty() bool { return t.root.IsZero() }

// Store exposes the tree's NodeStore, for callers building proofs or
// diffs directly against the underlying content-addressed nodes.
func (t *Tree) Store() *NodeStore { return t.store }

// frame is one step of the path from root to leaf: the ancestor node and
// the index of the child followed from it.
type frame struct {
	node *Node
	idx  int
}

// location is the result of descending to where key belongs.
type location struct {
	stack   []frame
	leaf    *Node // nil only when the tree is empty
	idx     int
	present bool
}

func (t *Tree) locate(key []byte) (location, error) {
	if t.root.IsZero() {
		return location{idx: 0, present: false}, nil
	}
	cur, err := t.store.GetNode(t.root)
	if err != nil {
		return location{}, err
	}
	var stack []frame
	for !cur.IsLeaf {
		idx := cur.FindIndex(key)
		if idx >= cur.Len() {
			idx = cur.Len() - 1
		}
		stack = append(stack, frame{node: cur, idx: idx})
		child, err := t.store.GetNode(cur.Children[idx])
		if err != nil {
			return location{}, err
		}
		cur = child
	}
	idx := cur.FindIndex(key)
	present := idx < cur.Len() && bytes.Equal(cur.Keys[idx], key)
	return location{stack: stack, leaf: cur, idx: idx, present: present}, nil
}

// Find looks up key, returning its value and true if present.
func (t *Tree) Find(key []byte) ([]byte, bool, error) {
	loc, err := t.locate(key)
	if err != nil {
		return nil, false, err
	}
	if !loc.present {
		return nil, false, nil
	}
	return loc.leaf.Values[loc.idx], true, nil
}

// Insert adds key with value only if key is not already present.
// Returns true if the tree was changed.
func (t *Tree) Insert(key, value []byte) (bool, error) {
	loc, err := t.locate(key)
	if err != nil {
		return false, err
	}
	if loc.present {
		return false, nil
	}
	var keys, values [][]byte
	if loc.leaf == nil {
		keys, values = [][]byte{key}, [][]byte{value}
	} else {
		keys = insertAt(loc.leaf.Keys, loc.idx, key)
		values = insertAt(loc.leaf.Values, loc.idx, value)
	}
	entries := levelEntries{isLeaf: true, keys: keys, values: values}
	if err := t.commit(loc, entries); err != nil {
		return false, err
	}
	return true, nil
}

// Update replaces key's value if key is present, otherwise behaves like
// Insert. Returns true if key already existed.
func (t *Tree) Update(key, value []byte) (bool, error) {
	loc, err := t.locate(key)
	if err != nil {
		return false, err
	}
	var keys, values [][]byte
	switch {
	case loc.leaf == nil:
		keys, values = [][]byte{key}, [][]byte{value}
	case loc.present:
		keys = append([][]byte(nil), loc.leaf.Keys...)
		values = append([][]byte(nil), loc.leaf.Values...)
		values[loc.idx] = value
	default:
		keys = insertAt(loc.leaf.Keys, loc.idx, key)
		values = insertAt(loc.leaf.Values, loc.idx, value)
	}
	entries := levelEntries{isLeaf: true, keys: keys, values: values}
	if err := t.commit(loc, entries); err != nil {
		return false, err
	}
	return loc.present, nil
}

// Delete removes key if present. Returns true if a key was removed.
func (t *Tree) Delete(key []byte) (bool, error) {
	if t.root.IsZero() {
		return false, nil
	}
	loc, err := t.locate(key)
	if err != nil {
		return false, err
	}
	if !loc.present {
		return false, nil
	}
	keys := removeAt(loc.leaf.Keys, loc.idx)
	values := removeAt(loc.leaf.Values, loc.idx)
	entries := levelEntries{isLeaf: true, keys: keys, values: values}
	if err := t.commit(loc, entries); err != nil {
		return false, err
	}
	return true, nil
}

// InsertBatch inserts every (keys[i], values[i]) pair, in order, each under
// add-if-absent semantics. It is a convenience wrapper, not a bulk
// loader: each pair rebalances the tree independently.
func (t *Tree) InsertBatch(keys, values [][]byte) (int, error) {
	if len(keys) != len(values) {
		return 0, errors.New("prolly: InsertBatch keys and values must be the same length")
	}
	n := 0
	for i := range keys {
		ok, err := t.Insert(keys[i], values[i])
		if err != nil {
			return n, err
		}
		if ok {
			n++
		}
	}
	return n, nil
}

// DeleteBatch removes every key in keys that is present, in order.
func (t *Tree) DeleteBatch(keys [][]byte) (int, error) {
	n := 0
	for _, k := range keys {
		ok, err := t.Delete(k)
		if err != nil {
			return n, err
		}
		if ok {
			n++
		}
	}
	return n, nil
}

// commit rebalances the mutated leaf's new entries up through the path
// stored in loc, then installs the resulting root. The left spine is
// loc's descent path; the right spine starts as a copy of it and is
// advanced rightward as rebalancing absorbs neighboring nodes.
func (t *Tree) commit(loc location, entries levelEntries) error {
	rightSpine := append([]frame(nil), loc.stack...)
	return t.rebalanceLevel(loc.stack, rightSpine, entries)
}

// rebalanceLevel rechunks one level's modified run of entries and
// propagates the result upward. entries holds the full new content of a
// contiguous run of nodes at one level; the run's first node is the
// child leftSpine's deepest frame points at, its last node the one
// rightSpine's deepest frame points at.
//
// The run always begins at a surviving chunk cut, and cut decisions
// depend only on content since the previous cut (see chunkBoundaries),
// so rechunking the run makes exactly the decisions a scan of the whole
// level would — until the run ends. A cut forced by the run's end has
// no such standing: the level's content says the chunk should keep
// going. So while the trailing cut is not a natural one, the run is
// extended by absorbing the next node to its right — crossing parent
// boundaries when needed — and rechunked again. The loop stops at a
// natural trailing cut, which by construction lands on an existing
// edge, making every node to its right byte-identical to before; or at
// the true end of the level, where a forced cut (and an undersized
// trailing node) is the canonical layout. This resynchronization is
// what makes every mutation land the tree in the one layout determined
// by its final contents.
func (t *Tree) rebalanceLevel(leftSpine, rightSpine []frame, entries levelEntries) error {
	if len(leftSpine) == 0 {
		return t.buildUp(entries)
	}

	nodes, natural := entries.chunk(t.cfg)
	for !natural {
		next, ok, err := t.advanceRight(rightSpine)
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		entries = mergeLevelEntries(entries, nodeToLevelEntries(next))
		nodes, natural = entries.chunk(t.cfg)
	}

	newKeys, newHashes, err := t.storeNodes(nodes)
	if err != nil {
		return err
	}

	lp := leftSpine[len(leftSpine)-1]
	rp := rightSpine[len(rightSpine)-1]
	parentEntries := levelEntries{
		isLeaf:   false,
		level:    lp.node.Level,
		keys:     concatKeys(lp.node.Keys[:lp.idx], newKeys, rp.node.Keys[rp.idx+1:]),
		children: concatHashes(lp.node.Children[:lp.idx], newHashes, rp.node.Children[rp.idx+1:]),
	}
	return t.rebalanceLevel(leftSpine[:len(leftSpine)-1], rightSpine[:len(rightSpine)-1], parentEntries)
}

// advanceRight moves spine one node to the right at its deepest level
// and returns the node now pointed at. When the deepest frame is
// exhausted it climbs to the nearest ancestor with a right-hand child
// and re-descends along first children, so the walk continues across
// parent boundaries. Returns ok=false, with spine untouched, when the
// spine already points at the last node of its level.
func (t *Tree) advanceRight(spine []frame) (*Node, bool, error) {
	j := len(spine) - 1
	for j >= 0 && spine[j].idx+1 >= spine[j].node.Len() {
		j--
	}
	if j < 0 {
		return nil, false, nil
	}
	spine[j].idx++
	for k := j + 1; k < len(spine); k++ {
		child, err := t.store.GetNode(spine[k-1].node.Children[spine[k-1].idx])
		if err != nil {
			return nil, false, err
		}
		spine[k] = frame{node: child, idx: 0}
	}
	deepest := spine[len(spine)-1]
	n, err := t.store.GetNode(deepest.node.Children[deepest.idx])
	if err != nil {
		return nil, false, err
	}
	return n, true, nil
}

// buildUp installs entries as the complete top level of the tree,
// chunking it and stacking further levels on top until a single node
// remains. Zero entries means the tree is now empty; a single-node
// level becomes the root, collapsing any chain of single-child
// internals left behind by a deletion cascade.
func (t *Tree) buildUp(entries levelEntries) error {
	nodes, _ := entries.chunk(t.cfg)
	switch len(nodes) {
	case 0:
		t.root = ZeroHash
		return t.store.SaveRoot(ZeroHash)
	case 1:
		h, err := t.store.PutNode(nodes[0])
		if err != nil {
			return err
		}
		h, err = t.collapseSingleChildChain(h)
		if err != nil {
			return err
		}
		t.root = h
		return t.store.SaveRoot(h)
	default:
		keys, hashes, err := t.storeNodes(nodes)
		if err != nil {
			return err
		}
		return t.buildUp(levelEntries{
			isLeaf:   false,
			level:    nodes[0].Level + 1,
			keys:     keys,
			children: hashes,
		})
	}
}

// collapseSingleChildChain walks down through any internal node that has
// exactly one child, so the tree's height shrinks back down after deletes
// thin out an upper level.
func (t *Tree) collapseSingleChildChain(h Hash) (Hash, error) {
	for {
		n, err := t.store.GetNode(h)
		if err != nil {
			return Hash{}, err
		}
		if n.IsLeaf || n.Len() != 1 {
			return h, nil
		}
		h = n.Children[0]
	}
}

func (t *Tree) storeNodes(nodes []*Node) ([][]byte, []Hash, error) {
	keys := make([][]byte, len(nodes))
	hashes := make([]Hash, len(nodes))
	for i, n := range nodes {
		h, err := t.store.PutNode(n)
		if err != nil {
			return nil, nil, err
		}
		keys[i] = n.MaxKey()
		hashes[i] = h
	}
	return keys, hashes, nil
}

func insertAt(s [][]byte, idx int, v []byte) [][]byte {
	out := make([][]byte, 0, len(s)+1)
	out = append(out, s[:idx]...)
	out = append(out, v)
	out = append(out, s[idx:]...)
	return out
}

func removeAt(s [][]byte, idx int) [][]byte {
	out := make([][]byte, 0, len(s)-1)
	out = append(out, s[:idx]...)
	out = append(out, s[idx+1:]...)
	return out
}

func concatKeys(prefix, mid, suffix [][]byte) [][]byte {
	out := make([][]byte, 0, len(prefix)+len(mid)+len(suffix))
	out = append(out, prefix...)
	out = append(out, mid...)
	out = append(out, suffix...)
	return out
}

func concatHashes(prefix, mid, suffix []Hash) []Hash {
	out := make([]Hash, 0, len(prefix)+len(mid)+len(suffix))
	out = append(out, prefix...)
	out = append(out, mid...)
	out = append(out, suffix...)
	return out
}
