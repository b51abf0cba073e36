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
	"testing"

	"github.com/stretchr/testify/require"
)

func makeLeaf(cfg *TreeConfig, keys ...string) *Node {
	n := newNodeFromConfig(cfg, 0, true)
	for _, k := range keys {
		n.Keys = append(n.Keys, []byte(k))
		n.Values = append(n.Values, []byte(k+"-value"))
	}
	return n
}

func TestNodeSerializeRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	n := makeLeaf(cfg, "a", "b", "c")

	data := n.CanonicalSerialize()
	got, err := ParseNode(data)
	require.NoError(t, err)
	require.Equal(t, n.Level, got.Level)
	require.Equal(t, n.IsLeaf, got.IsLeaf)
	require.Equal(t, n.Keys, got.Keys)
	require.Equal(t, n.Values, got.Values)
	require.Equal(t, n.Hash(), got.Hash())
}

func TestNodeSerializeDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	n1 := makeLeaf(cfg, "x", "y")
	n2 := makeLeaf(cfg, "x", "y")
	if !bytes.Equal(n1.CanonicalSerialize(), n2.CanonicalSerialize()) {
		t.Fatal("identical logical content produced different encodings")
	}
}

func TestParseNodeRejectsOutOfOrderKeys(t *testing.T) {
	cfg := DefaultConfig()
	n := makeLeaf(cfg, "b", "a")
	_, err := ParseNode(n.CanonicalSerialize())
	if err == nil {
		t.Fatal("expected an error for out-of-order keys")
	}
}

func TestParseNodeRejectsTruncatedBuffer(t *testing.T) {
	cfg := DefaultConfig()
	n := makeLeaf(cfg, "a", "b")
	data := n.CanonicalSerialize()
	_, err := ParseNode(data[:len(data)-3])
	if err == nil {
		t.Fatal("expected an error for a truncated buffer")
	}
}

func TestNodeFindIndex(t *testing.T) {
	cfg := DefaultConfig()
	n := makeLeaf(cfg, "b", "d", "f")
	cases := []struct {
		key  string
		want int
	}{
		{"a", 0},
		{"b", 0},
		{"c", 1},
		{"d", 1},
		{"g", 3},
	}
	for _, c := range cases {
		if got := n.FindIndex([]byte(c.key)); got != c.want {
			t.Errorf("FindIndex(%q) = %d, want %d", c.key, got, c.want)
		}
	}
}

func TestNodeSplitAtAndMergeWith(t *testing.T) {
	cfg := DefaultConfig()
	n := makeLeaf(cfg, "a", "b", "c", "d")
	parts := n.SplitAt([]int{2})
	require.Len(t, parts, 2)
	require.Equal(t, [][]byte{[]byte("a"), []byte("b")}, parts[0].Keys)
	require.Equal(t, [][]byte{[]byte("c"), []byte("d")}, parts[1].Keys)

	merged := parts[0].MergeWith(parts[1])
	require.Equal(t, n.Keys, merged.Keys)
	require.Equal(t, n.Values, merged.Values)
}
