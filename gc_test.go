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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGCKeepsOnlyReachableNodes(t *testing.T) {
	backend := NewMemoryBackend()
	store := NewNodeStore(backend)
	tree, err := NewTree(store, DefaultConfig())
	require.NoError(t, err)

	for i := 0; i < 200; i++ {
		_, err := tree.Insert([]byte(fmt.Sprintf("key-%05d", i)), []byte(fmt.Sprintf("val-%05d", i)))
		require.NoError(t, err)
	}
	liveRoot := tree.RootHash()

	// Deleting half the keys leaves the earlier nodes those deletes
	// produced as orphans in the backend, since PutNode never deletes
	// superseded content.
	for i := 0; i < 100; i++ {
		_, err := tree.Delete([]byte(fmt.Sprintf("key-%05d", i)))
		require.NoError(t, err)
	}
	finalRoot := tree.RootHash()

	before, err := store.ListHashes()
	require.NoError(t, err)

	collected, err := GC(store, []Hash{finalRoot})
	require.NoError(t, err)
	require.Greater(t, collected, 0)

	after, err := store.ListHashes()
	require.NoError(t, err)
	require.Less(t, len(after), len(before))

	// The live root's content must still be fully intact post-sweep.
	reopened, err := NewTree(store, DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, finalRoot, reopened.RootHash())
	for i := 100; i < 200; i++ {
		v, found, err := reopened.Find([]byte(fmt.Sprintf("key-%05d", i)))
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, []byte(fmt.Sprintf("val-%05d", i)), v)
	}

	require.NotEqual(t, liveRoot, finalRoot)
}

func TestGCOnEmptyLiveRootsCollectsEverything(t *testing.T) {
	backend := NewMemoryBackend()
	store := NewNodeStore(backend)
	tree, err := NewTree(store, DefaultConfig())
	require.NoError(t, err)
	_, err = tree.Insert([]byte("a"), []byte("1"))
	require.NoError(t, err)

	collected, err := GC(store, nil)
	require.NoError(t, err)
	require.Greater(t, collected, 0)

	remaining, err := store.ListHashes()
	require.NoError(t, err)
	require.Empty(t, remaining)
}
