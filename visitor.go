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
	"io"
	"strings"

	"github.com/davecgh/go-spew/spew"
)

// Visitor receives callbacks during an in-order Tree.Walk.
// PreVisit/PostVisit fire once per node, before and after its children
// (or, for a leaf, its entries) are visited; VisitEntry fires once per
// (key, value) pair. Embedding BaseVisitor gives every method a no-op
// default, so a Visitor only needs to implement the hooks it cares
// about.
type Visitor interface {
	PreVisit(node *Node, depth int) error
	PostVisit(node *Node, depth int) error
	VisitEntry(key, value []byte, depth int) error
}

// BaseVisitor implements Visitor with no-op methods, to be embedded by
// visitors that only care about one or two of the hooks.
type BaseVisitor struct{}

func (BaseVisitor) PreVisit(*Node, int) error                     { return nil }
func (BaseVisitor) PostVisit(*Node, int) error                    { return nil }
func (BaseVisitor) VisitEntry(key, value []byte, depth int) error { return nil }

// Walk traverses the tree in key order, depth-first, invoking v's hooks.
// An empty tree invokes no hooks at all.
func (t *Tree) Walk(v Visitor) error {
	if t.root.IsZero() {
		return nil
	}
	root, err := t.store.GetNode(t.root)
	if err != nil {
		return err
	}
	return t.walk(root, 0, v)
}

func (t *Tree) walk(n *Node, depth int, v Visitor) error {
	if err := v.PreVisit(n, depth); err != nil {
		return err
	}
	if n.IsLeaf {
		for i, k := range n.Keys {
			if err := v.VisitEntry(k, n.Values[i], depth); err != nil {
				return err
			}
		}
	} else {
		for _, childHash := range n.Children {
			child, err := t.store.GetNode(childHash)
			if err != nil {
				return err
			}
			if err := t.walk(child, depth+1, v); err != nil {
				return err
			}
		}
	}
	return v.PostVisit(n, depth)
}

// Collector is a Visitor that gathers every (key, value) pair in order.
type Collector struct {
	BaseVisitor
	Keys   [][]byte
	Values [][]byte
}

func (c *Collector) VisitEntry(key, value []byte, depth int) error {
	c.Keys = append(c.Keys, key)
	c.Values = append(c.Values, value)
	return nil
}

// DumpVisitor writes a human-readable, indented dump of every node to w,
// using go-spew for the node's field values. It exists for debugging a
// tree's physical shape, not for any programmatic consumption.
type DumpVisitor struct {
	BaseVisitor
	w io.Writer
}

// NewDumpVisitor returns a DumpVisitor writing to w.
func NewDumpVisitor(w io.Writer) *DumpVisitor { return &DumpVisitor{w: w} }

func (d *DumpVisitor) PreVisit(n *Node, depth int) error {
	fmt.Fprintf(d.w, "%s", strings.Repeat("  ", depth))
	spew.Fdump(d.w, n)
	return nil
}
