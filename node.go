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
	"encoding/binary"
	"fmt"
	"sort"
)

// Node is the in-memory record of one tree vertex. A Node is a value
// type: once its hash has been computed and the node handed to
// storage, it is treated as immutable — mutation always produces a new
// Node rather than editing one in place, which is what makes
// shared-by-hash reuse across roots safe.
type Node struct {
	Level  uint8
	IsLeaf bool

	// Keys is strictly increasing. Values is leaf-only and index
	// aligned with Keys; Children is internal-only and index aligned
	// with Keys, each entry the hash of the subtree whose maximum key
	// is Keys[i].
	Keys     [][]byte
	Values   [][]byte
	Children []Hash

	// Chunk parameters, echoed from the owning TreeConfig so a
	// serialized node is self-describing.
	Base            uint64
	Modulus         uint64
	MinChunkSize    int
	MaxChunkSize    int
	BoundaryPattern uint64
	HashAlgorithm   HashAlgorithm

	// Split and Merged are transient flags. Tree's mutation path never
	// sets them and CanonicalSerialize does not encode them, so any node
	// reachable from a committed root has both false.
	Split  bool
	Merged bool

	hashCache *Hash
}

func newNodeFromConfig(cfg *TreeConfig, level uint8, isLeaf bool) *Node {
	return &Node{
		Level:           level,
		IsLeaf:          isLeaf,
		Base:            cfg.Base,
		Modulus:         cfg.Modulus,
		MinChunkSize:    cfg.MinChunkSize,
		MaxChunkSize:    cfg.MaxChunkSize,
		BoundaryPattern: cfg.BoundaryPattern,
		HashAlgorithm:   cfg.HashAlgorithm,
	}
}

// Len returns the number of entries in the node.
func (n *Node) Len() int { return len(n.Keys) }

// MaxKey returns the greatest key in the node — its last, since Keys is
// strictly increasing.
func (n *Node) MaxKey() []byte {
	if len(n.Keys) == 0 {
		return nil
	}
	return n.Keys[len(n.Keys)-1]
}

// FindIndex returns the smallest i such that key <= Keys[i], or Len()
// if key exceeds every key in the node. Because duplicate keys are
// never permitted, ties are impossible; an exact match lands on that
// key's own index.
func (n *Node) FindIndex(key []byte) int {
	return sort.Search(len(n.Keys), func(i int) bool {
		return bytes.Compare(key, n.Keys[i]) <= 0
	})
}

func (n *Node) hasher() Hasher { return NewHasher(n.HashAlgorithm) }

// Hash returns the memoized content digest of the node's canonical
// serialization.
func (n *Node) Hash() Hash {
	if n.hashCache != nil {
		return *n.hashCache
	}
	h := n.hasher().Hash(n.CanonicalSerialize())
	n.hashCache = &h
	return h
}

// CanonicalSerialize encodes the node using the fixed little-endian
// layout: level, leaf flag, the echoed chunk parameters,
// n_entries, then per entry the length-prefixed key followed by either
// the length-prefixed value (leaves) or HashSize child-hash bytes
// (internal nodes). Two nodes with identical logical content always
// produce byte-identical output, independent of platform.
func (n *Node) CanonicalSerialize() []byte {
	buf := make([]byte, 0, 64+32*len(n.Keys))
	putU64 := func(v uint64) {
		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], v)
		buf = append(buf, tmp[:]...)
	}
	buf = append(buf, n.Level)
	if n.IsLeaf {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	putU64(n.Base)
	putU64(n.Modulus)
	putU64(uint64(n.MinChunkSize))
	putU64(uint64(n.MaxChunkSize))
	putU64(n.BoundaryPattern)
	buf = append(buf, byte(n.HashAlgorithm))
	putU64(uint64(len(n.Keys)))
	for i, k := range n.Keys {
		putU64(uint64(len(k)))
		buf = append(buf, k...)
		if n.IsLeaf {
			v := n.Values[i]
			putU64(uint64(len(v)))
			buf = append(buf, v...)
		} else {
			buf = append(buf, n.Children[i][:]...)
		}
	}
	return buf
}

// ParseNode decodes a Node from the bytes produced by
// CanonicalSerialize. A malformed or truncated buffer is reported as a
// corrupt-node error, never a panic, since the bytes may have been read
// from an untrusted or damaged storage backend.
func ParseNode(data []byte) (*Node, error) {
	r := &byteReader{buf: data}
	level, err := r.byte1()
	if err != nil {
		return nil, corruptNodeErr(Hash{}, err.Error())
	}
	leafFlag, err := r.byte1()
	if err != nil {
		return nil, corruptNodeErr(Hash{}, err.Error())
	}
	n := &Node{Level: level, IsLeaf: leafFlag == 1}
	if n.Base, err = r.u64(); err != nil {
		return nil, corruptNodeErr(Hash{}, err.Error())
	}
	if n.Modulus, err = r.u64(); err != nil {
		return nil, corruptNodeErr(Hash{}, err.Error())
	}
	minv, err := r.u64()
	if err != nil {
		return nil, corruptNodeErr(Hash{}, err.Error())
	}
	n.MinChunkSize = int(minv)
	maxv, err := r.u64()
	if err != nil {
		return nil, corruptNodeErr(Hash{}, err.Error())
	}
	n.MaxChunkSize = int(maxv)
	if n.BoundaryPattern, err = r.u64(); err != nil {
		return nil, corruptNodeErr(Hash{}, err.Error())
	}
	alg, err := r.byte1()
	if err != nil {
		return nil, corruptNodeErr(Hash{}, err.Error())
	}
	n.HashAlgorithm = HashAlgorithm(alg)
	nEntries, err := r.u64()
	if err != nil {
		return nil, corruptNodeErr(Hash{}, err.Error())
	}
	n.Keys = make([][]byte, nEntries)
	if n.IsLeaf {
		n.Values = make([][]byte, nEntries)
	} else {
		n.Children = make([]Hash, nEntries)
	}
	var prevKey []byte
	for i := uint64(0); i < nEntries; i++ {
		klen, err := r.u64()
		if err != nil {
			return nil, corruptNodeErr(Hash{}, err.Error())
		}
		key, err := r.bytes(klen)
		if err != nil {
			return nil, corruptNodeErr(Hash{}, err.Error())
		}
		if i > 0 && bytes.Compare(prevKey, key) >= 0 {
			return nil, corruptNodeErr(Hash{}, "keys not strictly increasing")
		}
		prevKey = key
		n.Keys[i] = key
		if n.IsLeaf {
			vlen, err := r.u64()
			if err != nil {
				return nil, corruptNodeErr(Hash{}, err.Error())
			}
			val, err := r.bytes(vlen)
			if err != nil {
				return nil, corruptNodeErr(Hash{}, err.Error())
			}
			n.Values[i] = val
		} else {
			h, err := r.hash()
			if err != nil {
				return nil, corruptNodeErr(Hash{}, err.Error())
			}
			n.Children[i] = h
		}
	}
	if r.remaining() != 0 {
		return nil, corruptNodeErr(Hash{}, "trailing bytes after last entry")
	}
	return n, nil
}

// SplitAt partitions the node's entries at the given boundary
// positions (each the exclusive end of one chunk) into two or more new
// nodes sharing this node's level and chunk parameters.
func (n *Node) SplitAt(positions []int) []*Node {
	out := make([]*Node, 0, len(positions))
	lo := 0
	for _, end := range positions {
		out = append(out, n.slice(lo, end))
		lo = end
	}
	if lo < len(n.Keys) {
		out = append(out, n.slice(lo, len(n.Keys)))
	}
	return out
}

func (n *Node) slice(lo, hi int) *Node {
	m := &Node{
		Level:           n.Level,
		IsLeaf:          n.IsLeaf,
		Keys:            append([][]byte(nil), n.Keys[lo:hi]...),
		Base:            n.Base,
		Modulus:         n.Modulus,
		MinChunkSize:    n.MinChunkSize,
		MaxChunkSize:    n.MaxChunkSize,
		BoundaryPattern: n.BoundaryPattern,
		HashAlgorithm:   n.HashAlgorithm,
	}
	if n.IsLeaf {
		m.Values = append([][]byte(nil), n.Values[lo:hi]...)
	} else {
		m.Children = append([]Hash(nil), n.Children[lo:hi]...)
	}
	return m
}

// MergeWith concatenates this node's entries with right's, producing a
// single new node. The caller must guarantee this node's MaxKey sorts
// before right's minimum key.
func (n *Node) MergeWith(right *Node) *Node {
	if n.IsLeaf != right.IsLeaf || n.Level != right.Level {
		panic("prolly: cannot merge nodes of different kind or level")
	}
	m := &Node{
		Level:           n.Level,
		IsLeaf:          n.IsLeaf,
		Keys:            append(append([][]byte(nil), n.Keys...), right.Keys...),
		Base:            n.Base,
		Modulus:         n.Modulus,
		MinChunkSize:    n.MinChunkSize,
		MaxChunkSize:    n.MaxChunkSize,
		BoundaryPattern: n.BoundaryPattern,
		HashAlgorithm:   n.HashAlgorithm,
	}
	if n.IsLeaf {
		m.Values = append(append([][]byte(nil), n.Values...), right.Values...)
	} else {
		m.Children = append(append([]Hash(nil), n.Children...), right.Children...)
	}
	return m
}

func (n *Node) String() string {
	kind := "internal"
	if n.IsLeaf {
		kind = "leaf"
	}
	return fmt.Sprintf("Node{%s level=%d entries=%d hash=%s}", kind, n.Level, len(n.Keys), n.Hash().Hex())
}
