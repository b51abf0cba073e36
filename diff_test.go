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
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiffIdenticalTreesIsEmpty(t *testing.T) {
	a := newTestTree(t)
	b := newTestTree(t)
	for i := 0; i < 100; i++ {
		k := []byte(fmt.Sprintf("key-%04d", i))
		v := []byte(fmt.Sprintf("val-%04d", i))
		_, err := a.Insert(k, v)
		require.NoError(t, err)
		_, err = b.Insert(k, v)
		require.NoError(t, err)
	}
	require.Equal(t, a.RootHash(), b.RootHash())

	entries, err := a.Diff(context.Background(), b)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestDiffDetectsAddedRemovedModified(t *testing.T) {
	a := newTestTree(t)
	b := newTestTree(t)
	for i := 0; i < 100; i++ {
		k := []byte(fmt.Sprintf("key-%04d", i))
		v := []byte(fmt.Sprintf("val-%04d", i))
		_, err := a.Insert(k, v)
		require.NoError(t, err)
		_, err = b.Insert(k, v)
		require.NoError(t, err)
	}

	// b loses a key, b gains one, and one shared key's value changes.
	_, err := b.Delete([]byte("key-0010"))
	require.NoError(t, err)
	_, err = b.Insert([]byte("key-9999"), []byte("new"))
	require.NoError(t, err)
	_, err = b.Update([]byte("key-0020"), []byte("changed"))
	require.NoError(t, err)

	entries, err := a.Diff(context.Background(), b)
	require.NoError(t, err)

	byKey := map[string]DiffEntry{}
	for _, e := range entries {
		byKey[string(e.Key)] = e
	}

	require.Equal(t, DiffRemoved, byKey["key-0010"].Op)
	require.Equal(t, DiffAdded, byKey["key-9999"].Op)
	require.Equal(t, DiffModified, byKey["key-0020"].Op)
	require.Equal(t, []byte("changed"), byKey["key-0020"].NewValue)
}

// TestDiffMatchesBruteForce builds two large trees whose shared key
// space is peppered with removals, modifications and interleaved
// additions — enough churn that chunk boundaries drift apart between
// the two — and checks Diff's output entry-for-entry, in order,
// against a naive map comparison.
func TestDiffMatchesBruteForce(t *testing.T) {
	a := newTestTree(t)
	b := newTestTree(t)

	ma := map[string]string{}
	mb := map[string]string{}
	const n = 400
	for i := 0; i < n; i++ {
		k := fmt.Sprintf("key-%05d", i)
		v := fmt.Sprintf("val-%05d", i)
		ma[k] = v
		switch {
		case i%37 == 0:
			// dropped from b
		case i%11 == 0:
			mb[k] = v + "-changed"
		default:
			mb[k] = v
		}
		if i%23 == 0 {
			mb[k+"-extra"] = "new"
		}
	}
	for k, v := range ma {
		_, err := a.Insert([]byte(k), []byte(v))
		require.NoError(t, err)
	}
	for k, v := range mb {
		_, err := b.Insert([]byte(k), []byte(v))
		require.NoError(t, err)
	}

	keySet := map[string]bool{}
	for k := range ma {
		keySet[k] = true
	}
	for k := range mb {
		keySet[k] = true
	}
	allKeys := make([]string, 0, len(keySet))
	for k := range keySet {
		allKeys = append(allKeys, k)
	}
	sort.Strings(allKeys)

	var want []DiffEntry
	for _, k := range allKeys {
		va, inA := ma[k]
		vb, inB := mb[k]
		switch {
		case inA && !inB:
			want = append(want, DiffEntry{Key: []byte(k), Op: DiffRemoved, OldValue: []byte(va)})
		case !inA && inB:
			want = append(want, DiffEntry{Key: []byte(k), Op: DiffAdded, NewValue: []byte(vb)})
		case va != vb:
			want = append(want, DiffEntry{Key: []byte(k), Op: DiffModified, OldValue: []byte(va), NewValue: []byte(vb)})
		}
	}

	got, err := a.Diff(context.Background(), b)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestDiffAgainstEmptyTree(t *testing.T) {
	a := newTestTree(t)
	b := newTestTree(t)
	for i := 0; i < 30; i++ {
		_, err := a.Insert([]byte(fmt.Sprintf("k%02d", i)), []byte("v"))
		require.NoError(t, err)
	}
	entries, err := a.Diff(context.Background(), b)
	require.NoError(t, err)
	require.Len(t, entries, 30)
	for _, e := range entries {
		require.Equal(t, DiffRemoved, e.Op)
	}
}
