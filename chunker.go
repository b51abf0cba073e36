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

// chunkBoundaries scans a level's ordered entry byte-representations
// (key||value for leaves, key||childHash for internal nodes) with the
// rolling hash and returns the exclusive-end position of every chunk,
// plus whether the final cut was natural — demanded by the boundary
// predicate or the max-size cap — rather than forced only by running
// out of entries.
//
// The cut decision at a position depends only on the entries of the
// chunk being cut: a position is eligible only once the chunk holds
// MinChunkSize entries, and the rolling window spans exactly
// MinChunkSize entries, so the window can never reach past the chunk's
// own start. That locality is what makes rechunking sound from ANY
// existing cut: a scan started there makes identical decisions to a
// scan of the whole level, which is the hinge of history
// independence. A forced final cut carries no such
// guarantee — it is only correct at the true end of a level — which is
// why the tree keeps absorbing right-hand nodes until the tail cut
// comes out natural (see Tree.rebalanceLevel).
func chunkBoundaries(entryBytes [][]byte, cfg *TreeConfig) ([]int, bool) {
	n := len(entryBytes)
	if n == 0 {
		return nil, false
	}
	minSize := cfg.MinChunkSize
	if minSize < 1 {
		minSize = 1
	}
	maxSize := cfg.MaxChunkSize
	if maxSize < minSize {
		maxSize = minSize
	}

	rh := cfg.rollingHash()
	window := rh.WindowSize()
	if n < window {
		return []int{n}, false
	}

	var positions []int
	chunkStart := 0
	h := rh.Initial(entryBytes[0:window])
	pos := window - 1
	natural := false
	for {
		chunkSize := pos - chunkStart + 1
		isLast := pos == n-1
		cut, cutNatural := false, false
		switch {
		case chunkSize >= minSize:
			if chunkSize >= maxSize || rh.IsBoundary(h, cfg.BoundaryPattern) {
				cut, cutNatural = true, true
			} else if isLast {
				cut = true
			}
		case isLast:
			cut = true
		}
		if cut {
			positions = append(positions, pos+1)
			chunkStart = pos + 1
			natural = cutNatural
		}
		if isLast {
			break
		}
		nextEnd := pos + 1
		outIdx := nextEnd - window
		h = rh.Roll(h, entryBytes[outIdx], entryBytes[nextEnd])
		pos = nextEnd
	}
	return positions, natural
}

// levelEntries is the full ordered entry set for one tree level that a
// mutation has touched — either a leaf's (key, value) pairs or an
// internal node's (maxKey, childHash) pairs — before it has been cut
// back into Nodes. Tree mutation threads one of these up through the
// path from leaf to root, merging and rechunking at each level; it is
// the generic seam shared by chunkLeafEntries and chunkInternalEntries.
type levelEntries struct {
	isLeaf   bool
	level    uint8
	keys     [][]byte
	values   [][]byte // leaf only
	children []Hash   // internal only
}

// chunk partitions e into Nodes, reporting whether the final cut was
// natural. A false result means the trailing node ends where the batch
// happened to end, not where the content says a chunk ends; the caller
// must either extend the batch rightward or be at the true end of the
// level, where the trailing chunk is exempt from the boundary
// predicate and the minimum size.
func (e levelEntries) chunk(cfg *TreeConfig) ([]*Node, bool) {
	if e.isLeaf {
		return chunkLeafEntries(e.keys, e.values, cfg)
	}
	return chunkInternalEntries(e.level, e.keys, e.children, cfg)
}

func nodeToLevelEntries(n *Node) levelEntries {
	return levelEntries{isLeaf: n.IsLeaf, level: n.Level, keys: n.Keys, values: n.Values, children: n.Children}
}

// mergeLevelEntries concatenates a (left) and b (right); a and b must be
// the same kind of level and a's keys must all precede b's.
func mergeLevelEntries(a, b levelEntries) levelEntries {
	out := levelEntries{isLeaf: a.isLeaf, level: a.level}
	out.keys = append(append([][]byte(nil), a.keys...), b.keys...)
	if a.isLeaf {
		out.values = append(append([][]byte(nil), a.values...), b.values...)
	} else {
		out.children = append(append([]Hash(nil), a.children...), b.children...)
	}
	return out
}

func leafEntryBytes(keys, values [][]byte) [][]byte {
	out := make([][]byte, len(keys))
	for i, k := range keys {
		out[i] = append(append([]byte(nil), k...), values[i]...)
	}
	return out
}

func internalEntryBytes(keys [][]byte, children []Hash) [][]byte {
	out := make([][]byte, len(keys))
	for i, k := range keys {
		out[i] = append(append([]byte(nil), k...), children[i][:]...)
	}
	return out
}

// chunkLeafEntries partitions an ordered (key, value) run into one or
// more leaf Nodes.
func chunkLeafEntries(keys, values [][]byte, cfg *TreeConfig) ([]*Node, bool) {
	positions, natural := chunkBoundaries(leafEntryBytes(keys, values), cfg)
	out := make([]*Node, 0, len(positions))
	lo := 0
	for _, end := range positions {
		n := newNodeFromConfig(cfg, 0, true)
		n.Keys = keys[lo:end]
		n.Values = values[lo:end]
		out = append(out, n)
		lo = end
	}
	return out, natural
}

// chunkInternalEntries partitions an ordered (maxKey, childHash) run
// into one or more internal Nodes.
func chunkInternalEntries(level uint8, keys [][]byte, children []Hash, cfg *TreeConfig) ([]*Node, bool) {
	positions, natural := chunkBoundaries(internalEntryBytes(keys, children), cfg)
	out := make([]*Node, 0, len(positions))
	lo := 0
	for _, end := range positions {
		n := newNodeFromConfig(cfg, level, false)
		n.Keys = keys[lo:end]
		n.Children = children[lo:end]
		out = append(out, n)
		lo = end
	}
	return out, natural
}
