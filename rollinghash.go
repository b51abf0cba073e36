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

import "encoding/binary"

// DefaultBase and DefaultModulus are the rolling-hash constants ported
// from the original prollytree crate's rolling_hash.rs (BASE = 257,
// MOD = 1_000_000_007). They are exposed so a TreeConfig can keep using
// them as its zero-value defaults.
const (
	DefaultBase    uint64 = 257
	DefaultModulus uint64 = 1_000_000_007
)

// DefaultBoundaryPattern is the bit pattern a window's rolling hash must
// satisfy, via (h & pattern) == pattern, to mark a chunk boundary.
const DefaultBoundaryPattern uint64 = 0b101

// RollingHash is a windowed polynomial hash over a sequence of
// entries. Each entry contributes a single scalar — the entry's own
// digest, reduced mod modulus — to the window's polynomial accumulator,
// so the window can be rolled in O(1) regardless of how large the
// entries themselves are.
type RollingHash struct {
	base       uint64
	modulus    uint64
	windowSize int
	// highPow is base^(windowSize-1) mod modulus, precomputed so Roll
	// can remove the outgoing entry's contribution in O(1).
	highPow uint64
	hasher  Hasher
}

// NewRollingHash builds a RollingHash for the given config and window.
// windowSize must be >= 1.
func NewRollingHash(base, modulus uint64, windowSize int, hasher Hasher) *RollingHash {
	if windowSize < 1 {
		windowSize = 1
	}
	rh := &RollingHash{base: base, modulus: modulus, windowSize: windowSize, hasher: hasher}
	rh.highPow = 1
	for i := 0; i < windowSize-1; i++ {
		rh.highPow = mulMod(rh.highPow, base, modulus)
	}
	return rh
}

func mulMod(a, b, m uint64) uint64 {
	// m is bounded well under 2^32 (DefaultModulus ~ 1e9), so the
	// product fits in uint64 without overflow.
	return (a * b) % m
}

// entryScalar reduces one entry's bytes to a single scalar mod modulus,
// via the configured Hasher truncated to its low 8 bytes.
func (rh *RollingHash) entryScalar(entry []byte) uint64 {
	h := rh.hasher.Hash(entry)
	v := binary.LittleEndian.Uint64(h[:8])
	return v % rh.modulus
}

// Initial computes the polynomial hash of the first windowSize entries.
// entries must have length >= windowSize.
func (rh *RollingHash) Initial(entries [][]byte) uint64 {
	var h uint64
	for i := 0; i < rh.windowSize; i++ {
		h = (mulMod(h, rh.base, rh.modulus) + rh.entryScalar(entries[i])) % rh.modulus
	}
	return h
}

// Roll updates h in O(1), sliding the window forward by one entry:
// outEntry leaves at the head, inEntry arrives at the tail.
func (rh *RollingHash) Roll(h uint64, outEntry, inEntry []byte) uint64 {
	outScalar := rh.entryScalar(outEntry)
	// Remove the outgoing entry's contribution at the window head.
	lead := mulMod(outScalar, rh.highPow, rh.modulus)
	h = (h + rh.modulus - lead) % rh.modulus
	h = mulMod(h, rh.base, rh.modulus)
	h = (h + rh.entryScalar(inEntry)) % rh.modulus
	return h
}

// IsBoundary reports whether the rolling hash value h marks a chunk
// boundary under the configured bit pattern.
func (rh *RollingHash) IsBoundary(h uint64, pattern uint64) bool {
	return h&pattern == pattern
}

// WindowSize returns the configured window size.
func (rh *RollingHash) WindowSize() int { return rh.windowSize }
