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
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestTree(t *testing.T) *Tree {
	t.Helper()
	tree, err := NewTree(NewNodeStore(NewMemoryBackend()), DefaultConfig())
	require.NoError(t, err)
	return tree
}

func TestTreeInsertFindDelete(t *testing.T) {
	tree := newTestTree(t)

	ok, err := tree.Insert([]byte("a"), []byte("1"))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = tree.Insert([]byte("a"), []byte("2"))
	require.NoError(t, err)
	require.False(t, ok, "Insert must be add-if-absent")

	v, found, err := tree.Find([]byte("a"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("1"), v)

	found, err = tree.Delete([]byte("a"))
	require.NoError(t, err)
	require.True(t, found)
	require.True(t, tree.IsEmpty())

	found, err = tree.Delete([]byte("a"))
	require.NoError(t, err)
	require.False(t, found)
}

func TestTreeUpdateSemantics(t *testing.T) {
	tree := newTestTree(t)

	existed, err := tree.Update([]byte("a"), []byte("1"))
	require.NoError(t, err)
	require.False(t, existed, "Update on an absent key behaves like Insert")

	existed, err = tree.Update([]byte("a"), []byte("2"))
	require.NoError(t, err)
	require.True(t, existed)

	v, found, err := tree.Find([]byte("a"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("2"), v)
}

func TestTreeManyInsertsThenFindAll(t *testing.T) {
	tree := newTestTree(t)
	const n = 500
	for i := 0; i < n; i++ {
		k := []byte(fmt.Sprintf("key-%05d", i))
		v := []byte(fmt.Sprintf("val-%05d", i))
		ok, err := tree.Insert(k, v)
		require.NoError(t, err)
		require.True(t, ok)
	}
	for i := 0; i < n; i++ {
		k := []byte(fmt.Sprintf("key-%05d", i))
		want := []byte(fmt.Sprintf("val-%05d", i))
		got, found, err := tree.Find(k)
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, want, got)
	}
}

// levelSizeVisitor records every node's entry count, grouped by its
// depth from the root, so a test can check chunk-size bounds across an
// entire built tree rather than against chunkBoundaries in isolation.
type levelSizeVisitor struct {
	BaseVisitor
	sizes map[int][]int
}

func (v *levelSizeVisitor) PreVisit(n *Node, depth int) error {
	v.sizes[depth] = append(v.sizes[depth], n.Len())
	return nil
}

// TestTreeNodeSizesRespectChunkBounds walks a tree built from enough
// inserts to force repeated splitting at both leaf and internal levels
// and checks the size bounds against every node actually
// produced: every node is at most MaxChunkSize, and every non-terminal
// node is at least MinChunkSize. The rightmost node of each level is
// exempt from the minimum: it is the level's final chunk, cut wherever
// the level's content runs out.
func TestTreeNodeSizesRespectChunkBounds(t *testing.T) {
	tree := newTestTree(t)
	cfg := tree.Config()
	const n = 500
	for i := 0; i < n; i++ {
		k := []byte(fmt.Sprintf("key-%05d", i))
		v := []byte(fmt.Sprintf("val-%05d", i))
		_, err := tree.Insert(k, v)
		require.NoError(t, err)
	}

	v := &levelSizeVisitor{sizes: map[int][]int{}}
	require.NoError(t, tree.Walk(v))
	require.NotEmpty(t, v.sizes, "walk over a non-empty tree must visit at least the root")

	for depth, sizes := range v.sizes {
		for i, size := range sizes {
			require.LessOrEqual(t, size, cfg.MaxChunkSize, "depth %d: node exceeds MaxChunkSize (sizes=%v)", depth, sizes)
			if i < len(sizes)-1 {
				require.GreaterOrEqual(t, size, cfg.MinChunkSize, "depth %d: non-terminal node under MinChunkSize (sizes=%v)", depth, sizes)
			}
		}
	}
}

func TestTreeInsertThenDeleteAllShrinksToEmpty(t *testing.T) {
	tree := newTestTree(t)
	const n = 300
	keys := make([][]byte, n)
	for i := 0; i < n; i++ {
		keys[i] = []byte(fmt.Sprintf("key-%05d", i))
		_, err := tree.Insert(keys[i], []byte("v"))
		require.NoError(t, err)
	}

	rng := rand.New(rand.NewSource(7))
	order := rng.Perm(n)
	for _, i := range order {
		ok, err := tree.Delete(keys[i])
		require.NoError(t, err)
		require.True(t, ok)
	}
	require.True(t, tree.IsEmpty())
	require.Equal(t, ZeroHash, tree.RootHash())
}

func TestTreeBatchOperations(t *testing.T) {
	tree := newTestTree(t)
	keys := [][]byte{[]byte("a"), []byte("b"), []byte("c")}
	values := [][]byte{[]byte("1"), []byte("2"), []byte("3")}

	n, err := tree.InsertBatch(keys, values)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	n, err = tree.DeleteBatch([][]byte{[]byte("a"), []byte("z")})
	require.NoError(t, err)
	require.Equal(t, 1, n)

	_, found, err := tree.Find([]byte("a"))
	require.NoError(t, err)
	require.False(t, found)
}

func TestNewTreeRejectsConfigMismatch(t *testing.T) {
	backend := NewMemoryBackend()
	store := NewNodeStore(backend)
	_, err := NewTree(store, DefaultConfig())
	require.NoError(t, err)

	other := DefaultConfig()
	other.MaxChunkSize = other.MaxChunkSize * 2
	_, err = NewTree(store, other)
	require.ErrorIs(t, err, ErrConfigMismatch)
}

func TestLoadTree(t *testing.T) {
	backend := NewMemoryBackend()
	store := NewNodeStore(backend)

	tree, err := LoadTree(store)
	require.NoError(t, err)
	require.Nil(t, tree, "LoadTree on an uninitialized store returns no tree")

	created, err := NewTree(store, DefaultConfig())
	require.NoError(t, err)
	_, err = created.Insert([]byte("a"), []byte("1"))
	require.NoError(t, err)

	tree, err = LoadTree(store)
	require.NoError(t, err)
	require.NotNil(t, tree)
	require.Equal(t, created.RootHash(), tree.RootHash())
}

func TestTreeReopenPreservesRoot(t *testing.T) {
	backend := NewMemoryBackend()
	store := NewNodeStore(backend)
	tree, err := NewTree(store, DefaultConfig())
	require.NoError(t, err)
	_, err = tree.Insert([]byte("a"), []byte("1"))
	require.NoError(t, err)
	root := tree.RootHash()

	reopened, err := NewTree(store, DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, root, reopened.RootHash())

	v, found, err := reopened.Find([]byte("a"))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []byte("1"), v)
}
