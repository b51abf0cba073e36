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

import "bytes"

// Proof is a self-contained membership or non-membership proof for one
// key against one root hash. It carries the full content of every node
// on the path from root to leaf, so Verify can be checked against
// nothing but Root — no access to a NodeStore is required.
type Proof struct {
	Root  Hash
	Key   []byte
	Path  []*Node
	Found bool
	Value []byte
}

// GenerateProof builds a Proof that key is (or is not) present under the
// tree's current root.
func (t *Tree) GenerateProof(key []byte) (*Proof, error) {
	proof := &Proof{Root: t.root, Key: append([]byte(nil), key...)}
	if t.root.IsZero() {
		return proof, nil
	}
	cur, err := t.store.GetNode(t.root)
	if err != nil {
		return nil, err
	}
	proof.Path = append(proof.Path, cur)
	for !cur.IsLeaf {
		idx := cur.FindIndex(key)
		if idx >= cur.Len() {
			idx = cur.Len() - 1
		}
		child, err := t.store.GetNode(cur.Children[idx])
		if err != nil {
			return nil, err
		}
		proof.Path = append(proof.Path, child)
		cur = child
	}
	idx := cur.FindIndex(key)
	if idx < cur.Len() && bytes.Equal(cur.Keys[idx], key) {
		proof.Found = true
		proof.Value = cur.Values[idx]
	}
	return proof, nil
}

// Verify checks the proof's internal consistency: that its path hashes
// to Root, that each step's child matches the next step's own hash, and
// that the leaf's content agrees with Found/Value. It touches no
// storage, so it can be run by a party that holds only Root and the
// Proof itself.
func (p *Proof) Verify() bool {
	if len(p.Path) == 0 {
		return p.Root.IsZero() && !p.Found
	}
	if p.Path[0].Hash() != p.Root {
		return false
	}
	cur := p.Path[0]
	for i := 1; i < len(p.Path); i++ {
		if cur.IsLeaf {
			return false
		}
		idx := cur.FindIndex(p.Key)
		if idx >= cur.Len() {
			idx = cur.Len() - 1
		}
		if cur.Children[idx] != p.Path[i].Hash() {
			return false
		}
		cur = p.Path[i]
	}
	if !cur.IsLeaf {
		return false
	}
	idx := cur.FindIndex(p.Key)
	present := idx < cur.Len() && bytes.Equal(cur.Keys[idx], p.Key)
	if present != p.Found {
		return false
	}
	if present && !bytes.Equal(cur.Values[idx], p.Value) {
		return false
	}
	return true
}
