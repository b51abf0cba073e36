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

import "errors"

// GC performs mark-and-sweep garbage collection over store, deleting
// any node not reachable from one of liveRoots. It is an optional
// maintenance operation, not something ordinary mutation ever calls: a
// node stays in the store, unreferenced, until a caller explicitly runs
// GC, since a backend may be shared by trees whose roots the caller
// hasn't told it about yet.
//
// If store's Backend cannot enumerate its keys (List returns
// ErrNotSupported), GC degrades to a no-op and reports zero collected,
// rather than failing the whole call.
func GC(store *NodeStore, liveRoots []Hash) (int, error) {
	marked := make(map[Hash]struct{})
	for _, root := range liveRoots {
		if root.IsZero() {
			continue
		}
		if err := markReachable(store, root, marked); err != nil {
			return 0, err
		}
	}

	all, err := store.ListHashes()
	if err != nil {
		if errors.Is(err, ErrNotSupported) {
			return 0, nil
		}
		return 0, err
	}

	collected := 0
	for _, h := range all {
		if _, live := marked[h]; live {
			continue
		}
		if err := store.DeleteNode(h); err != nil {
			return collected, err
		}
		collected++
	}
	return collected, nil
}

func markReachable(store *NodeStore, h Hash, marked map[Hash]struct{}) error {
	if _, ok := marked[h]; ok {
		return nil
	}
	marked[h] = struct{}{}
	n, err := store.GetNode(h)
	if err != nil {
		return err
	}
	if n.IsLeaf {
		return nil
	}
	for _, c := range n.Children {
		if err := markReachable(store, c, marked); err != nil {
			return err
		}
	}
	return nil
}
