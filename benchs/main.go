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

// Command benchs times Insert, Find and Diff throughput, optionally
// writing a CPU or memory profile.
package main

import (
	"context"
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"runtime/pprof"
	"time"

	"github.com/prollytree/prollytree"
)

func main() {
	n := flag.Int("n", 100_000, "number of keys to insert")
	cpuprofile := flag.String("cpuprofile", "", "write CPU profile to file")
	memprofile := flag.String("memprofile", "", "write heap profile to file")
	flag.Parse()

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal(err)
		}
		defer pprof.StopCPUProfile()
	}

	rng := rand.New(rand.NewSource(42))
	keys := make([][]byte, *n)
	values := make([][]byte, *n)
	for i := range keys {
		k := make([]byte, 8)
		binary.BigEndian.PutUint64(k, uint64(i))
		keys[i] = k
		v := make([]byte, 32)
		rng.Read(v)
		values[i] = v
	}

	tree, err := prolly.NewTree(prolly.NewNodeStore(prolly.NewMemoryBackend()), prolly.DefaultConfig())
	if err != nil {
		log.Fatal(err)
	}

	start := time.Now()
	for i := range keys {
		if _, err := tree.Insert(keys[i], values[i]); err != nil {
			log.Fatal(err)
		}
	}
	insertElapsed := time.Since(start)
	fmt.Printf("insert: %d keys in %s (%.0f ops/s)\n", *n, insertElapsed, float64(*n)/insertElapsed.Seconds())

	start = time.Now()
	for i := range keys {
		if _, found, err := tree.Find(keys[i]); err != nil || !found {
			log.Fatalf("find %d: found=%v err=%v", i, found, err)
		}
	}
	findElapsed := time.Since(start)
	fmt.Printf("find: %d keys in %s (%.0f ops/s)\n", *n, findElapsed, float64(*n)/findElapsed.Seconds())

	other, err := prolly.NewTree(prolly.NewNodeStore(prolly.NewMemoryBackend()), prolly.DefaultConfig())
	if err != nil {
		log.Fatal(err)
	}
	for i := 0; i < *n; i += 2 {
		if _, err := other.Insert(keys[i], values[i]); err != nil {
			log.Fatal(err)
		}
	}
	start = time.Now()
	diffs, err := tree.Diff(context.Background(), other)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("diff: %d differences in %s\n", len(diffs), time.Since(start))

	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Fatal(err)
		}
	}
}
