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

// Command fuzzinsertorder repeatedly inserts the same key set in
// freshly shuffled orders and checks that the resulting root hash never
// moves.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/prollytree/prollytree"
)

func main() {
	n := flag.Int("n", 500, "number of distinct keys per trial")
	trials := flag.Int("trials", 200, "number of random insertion orders to try")
	seed := flag.Int64("seed", 1, "PRNG seed")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))
	keys := make([][]byte, *n)
	values := make([][]byte, *n)
	for i := range keys {
		k := make([]byte, 8)
		binary.BigEndian.PutUint64(k, uint64(i))
		keys[i] = k
		v := make([]byte, 8)
		rng.Read(v)
		values[i] = v
	}

	var want prolly.Hash
	for trial := 0; trial < *trials; trial++ {
		order := rng.Perm(*n)
		tree, err := prolly.NewTree(prolly.NewNodeStore(prolly.NewMemoryBackend()), prolly.DefaultConfig())
		if err != nil {
			fmt.Fprintln(os.Stderr, "new tree:", err)
			os.Exit(1)
		}
		for _, i := range order {
			if _, err := tree.Insert(keys[i], values[i]); err != nil {
				fmt.Fprintln(os.Stderr, "insert:", err)
				os.Exit(1)
			}
		}
		got := tree.RootHash()
		if trial == 0 {
			want = got
			continue
		}
		if got != want {
			fmt.Fprintf(os.Stderr, "history independence violated at trial %d: got %s want %s\n", trial, got.Hex(), want.Hex())
			os.Exit(1)
		}
	}
	fmt.Printf("OK: %d trials, %d keys each, root %s\n", *trials, *n, want.Hex())
}
