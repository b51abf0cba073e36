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
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DiffOp identifies the kind of change a DiffEntry reports.
type DiffOp int

const (
	DiffAdded DiffOp = iota
	DiffRemoved
	DiffModified
)

func (op DiffOp) String() string {
	switch op {
	case DiffAdded:
		return "added"
	case DiffRemoved:
		return "removed"
	case DiffModified:
		return "modified"
	default:
		return "unknown"
	}
}

// DiffEntry reports one key that differs between two roots.
type DiffEntry struct {
	Key      []byte
	Op       DiffOp
	OldValue []byte
	NewValue []byte
}

// Diff compares t against other, both read against their own NodeStore,
// and returns every key whose presence or value differs, in key
// order. Subtrees whose root hash is identical on both sides are
// pruned without being fetched, so the work done is proportional to
// the number of differing entries rather than to the size of either
// tree.
func (t *Tree) Diff(ctx context.Context, other *Tree) ([]DiffEntry, error) {
	entries, err := diffNodes(ctx, t.store, t.root, other.store, other.root)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return bytes.Compare(entries[i].Key, entries[j].Key) < 0 })
	return entries, nil
}

func diffNodes(ctx context.Context, storeA *NodeStore, a Hash, storeB *NodeStore, b Hash) ([]DiffEntry, error) {
	if a == b {
		return nil, nil
	}
	var nodeA, nodeB *Node
	var err error
	if !a.IsZero() {
		if nodeA, err = storeA.GetNode(a); err != nil {
			return nil, err
		}
	}
	if !b.IsZero() {
		if nodeB, err = storeB.GetNode(b); err != nil {
			return nil, err
		}
	}
	switch {
	case nodeA == nil && nodeB == nil:
		return nil, nil
	case nodeA == nil:
		return collectAll(storeB, nodeB, DiffAdded)
	case nodeB == nil:
		return collectAll(storeA, nodeA, DiffRemoved)
	}
	if nodeA.IsLeaf && nodeB.IsLeaf {
		return diffLeaves(nodeA, nodeB), nil
	}
	if !nodeA.IsLeaf && !nodeB.IsLeaf {
		return diffInternal(ctx, storeA, nodeA, storeB, nodeB)
	}
	// One side is a leaf and the other internal: their levels don't
	// line up (the two roots were built with different tree heights).
	// Flatten both to their full leaf streams and compare directly.
	flatA, err := flattenLeaves(storeA, nodeA)
	if err != nil {
		return nil, err
	}
	flatB, err := flattenLeaves(storeB, nodeB)
	if err != nil {
		return nil, err
	}
	return diffLeaves(flatA, flatB), nil
}

// diffInternal pairs up nodeA's and nodeB's children by matching maxKey
// boundaries: where a boundary coincides on both sides, the
// two children are diffed independently and concurrently; where chunk
// boundaries have drifted apart, the misaligned run of children on each
// side is flattened to leaves and compared once as a flat range, so no
// key is ever compared twice.
func diffInternal(ctx context.Context, storeA *NodeStore, nodeA *Node, storeB *NodeStore, nodeB *Node) ([]DiffEntry, error) {
	g, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex
	var out []DiffEntry
	add := func(entries []DiffEntry) {
		if len(entries) == 0 {
			return
		}
		mu.Lock()
		out = append(out, entries...)
		mu.Unlock()
	}

	i, j := 0, 0
	for i < nodeA.Len() && j < nodeB.Len() {
		if bytes.Equal(nodeA.Keys[i], nodeB.Keys[j]) {
			if nodeA.Children[i] != nodeB.Children[j] {
				ai, bj := nodeA.Children[i], nodeB.Children[j]
				g.Go(func() error {
					sub, err := diffNodes(gctx, storeA, ai, storeB, bj)
					if err != nil {
						return err
					}
					add(sub)
					return nil
				})
			}
			i++
			j++
			continue
		}
		startI, startJ := i, j
		for i < nodeA.Len() && j < nodeB.Len() && !bytes.Equal(nodeA.Keys[i], nodeB.Keys[j]) {
			if bytes.Compare(nodeA.Keys[i], nodeB.Keys[j]) < 0 {
				i++
			} else {
				j++
			}
		}
		// The run's two flattened ranges end just short of the
		// re-equalizing boundary, so their lower edges disagree with the
		// children that follow. If the re-equalizing pair differs it must
		// be absorbed into the run rather than recursed on its own:
		// recursing would compare subtrees whose lower bounds don't line
		// up and report a key once from each side. An identical pair is
		// safe to leave for the matched branch, since equal content rules
		// out any key straddling the drifted edge. If the run instead ran
		// off the end of one side, everything left on the other belongs
		// to it too.
		if i < nodeA.Len() && j < nodeB.Len() {
			if nodeA.Children[i] != nodeB.Children[j] {
				i++
				j++
			}
		} else {
			i, j = nodeA.Len(), nodeB.Len()
		}
		loA, hiA, loB, hiB := startI, i, startJ, j
		g.Go(func() error {
			flatA, err := flattenRangeLeaves(storeA, nodeA, loA, hiA)
			if err != nil {
				return err
			}
			flatB, err := flattenRangeLeaves(storeB, nodeB, loB, hiB)
			if err != nil {
				return err
			}
			add(diffLeaves(flatA, flatB))
			return nil
		})
	}
	tailA, tailB := i, j

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for ; tailA < nodeA.Len(); tailA++ {
		sub, err := diffNodes(ctx, storeA, nodeA.Children[tailA], storeB, ZeroHash)
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}
	for ; tailB < nodeB.Len(); tailB++ {
		sub, err := diffNodes(ctx, storeA, ZeroHash, storeB, nodeB.Children[tailB])
		if err != nil {
			return nil, err
		}
		out = append(out, sub...)
	}
	return out, nil
}

func diffLeaves(a, b *Node) []DiffEntry {
	var out []DiffEntry
	i, j := 0, 0
	for i < len(a.Keys) && j < len(b.Keys) {
		switch c := bytes.Compare(a.Keys[i], b.Keys[j]); {
		case c == 0:
			if !bytes.Equal(a.Values[i], b.Values[j]) {
				out = append(out, DiffEntry{Key: a.Keys[i], Op: DiffModified, OldValue: a.Values[i], NewValue: b.Values[j]})
			}
			i++
			j++
		case c < 0:
			out = append(out, DiffEntry{Key: a.Keys[i], Op: DiffRemoved, OldValue: a.Values[i]})
			i++
		default:
			out = append(out, DiffEntry{Key: b.Keys[j], Op: DiffAdded, NewValue: b.Values[j]})
			j++
		}
	}
	for ; i < len(a.Keys); i++ {
		out = append(out, DiffEntry{Key: a.Keys[i], Op: DiffRemoved, OldValue: a.Values[i]})
	}
	for ; j < len(b.Keys); j++ {
		out = append(out, DiffEntry{Key: b.Keys[j], Op: DiffAdded, NewValue: b.Values[j]})
	}
	return out
}

func collectAll(store *NodeStore, node *Node, op DiffOp) ([]DiffEntry, error) {
	flat, err := flattenLeaves(store, node)
	if err != nil {
		return nil, err
	}
	out := make([]DiffEntry, len(flat.Keys))
	for i, k := range flat.Keys {
		e := DiffEntry{Key: k, Op: op}
		if op == DiffAdded {
			e.NewValue = flat.Values[i]
		} else {
			e.OldValue = flat.Values[i]
		}
		out[i] = e
	}
	return out, nil
}

// flattenLeaves collapses node's entire subtree into one synthetic leaf
// node holding its full ordered (key, value) stream.
func flattenLeaves(store *NodeStore, node *Node) (*Node, error) {
	if node.IsLeaf {
		return node, nil
	}
	return flattenRangeLeaves(store, node, 0, node.Len())
}

// flattenRangeLeaves collapses the subtrees of node.Children[lo:hi] into
// one synthetic leaf node.
func flattenRangeLeaves(store *NodeStore, node *Node, lo, hi int) (*Node, error) {
	var keys, values [][]byte
	for k := lo; k < hi; k++ {
		child, err := store.GetNode(node.Children[k])
		if err != nil {
			return nil, err
		}
		flat, err := flattenLeaves(store, child)
		if err != nil {
			return nil, err
		}
		keys = append(keys, flat.Keys...)
		values = append(values, flat.Values...)
	}
	return &Node{IsLeaf: true, Keys: keys, Values: values}, nil
}
