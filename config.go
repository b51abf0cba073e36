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
	"encoding/binary"
	"fmt"
)

// reservedConfigKey and reservedRootKey are the well-known storage keys
// under which a tree's config and current root hash are persisted.
const (
	reservedConfigKey = "__tree_config__"
	reservedRootKey   = "__root__"
)

// TreeConfig is the frozen, per-tree set of chunking and hashing
// parameters. Every field but the root hash (which lives outside the config,
// under its own reserved key) is fixed at construction and must never
// change for the lifetime of a tree: changing any of them would
// invalidate the chunk-boundary invariant and break history
// independence.
type TreeConfig struct {
	Base            uint64
	Modulus         uint64
	MinChunkSize    int
	MaxChunkSize    int
	BoundaryPattern uint64
	HashAlgorithm   HashAlgorithm

	// KeyTypeHint and ValueTypeHint are opaque, advisory metadata:
	// they are passed through unchanged and never influence tree
	// behavior.
	KeyTypeHint   string
	ValueTypeHint string
}

// DefaultConfig returns the zero-config TreeConfig: SHA-256 hashing,
// the rolling-hash constants ported from the original prollytree crate,
// and chunk bounds small enough to exercise splitting/merging on
// ordinary test-sized inputs.
func DefaultConfig() *TreeConfig {
	return &TreeConfig{
		Base:            DefaultBase,
		Modulus:         DefaultModulus,
		MinChunkSize:    4,
		MaxChunkSize:    16,
		BoundaryPattern: DefaultBoundaryPattern,
		HashAlgorithm:   HashSHA256,
	}
}

// Validate rejects parameter combinations the tree cannot operate
// under. MinChunkSize must be at least 2 so every chunking pass
// strictly shrinks the level above it; without that, a level whose
// every position is a boundary would reproduce itself upward forever.
func (c *TreeConfig) Validate() error {
	switch {
	case c.MinChunkSize < 2:
		return fmt.Errorf("%w: MinChunkSize %d, need >= 2", ErrInvalidConfig, c.MinChunkSize)
	case c.MaxChunkSize < c.MinChunkSize:
		return fmt.Errorf("%w: MaxChunkSize %d < MinChunkSize %d", ErrInvalidConfig, c.MaxChunkSize, c.MinChunkSize)
	case c.Base == 0 || c.Modulus == 0:
		return fmt.Errorf("%w: base and modulus must be nonzero", ErrInvalidConfig)
	}
	return nil
}

func (c *TreeConfig) hasher() Hasher { return NewHasher(c.HashAlgorithm) }

func (c *TreeConfig) rollingHash() *RollingHash {
	window := c.MinChunkSize
	if window < 1 {
		window = 1
	}
	return NewRollingHash(c.Base, c.Modulus, window, c.hasher())
}

// Equal reports whether two configs are byte-for-byte equivalent. Used
// to detect config_mismatch when reopening a store.
func (c *TreeConfig) Equal(o *TreeConfig) bool {
	if c == nil || o == nil {
		return c == o
	}
	return c.Base == o.Base &&
		c.Modulus == o.Modulus &&
		c.MinChunkSize == o.MinChunkSize &&
		c.MaxChunkSize == o.MaxChunkSize &&
		c.BoundaryPattern == o.BoundaryPattern &&
		c.HashAlgorithm == o.HashAlgorithm &&
		c.KeyTypeHint == o.KeyTypeHint &&
		c.ValueTypeHint == o.ValueTypeHint
}

// serialize encodes the config using the same fixed-width little-endian
// discipline as node encoding, so that it, too, is bit
// reproducible across platforms.
func (c *TreeConfig) serialize() []byte {
	buf := make([]byte, 0, 64+len(c.KeyTypeHint)+len(c.ValueTypeHint))
	var tmp8 [8]byte

	putU64 := func(v uint64) {
		binary.LittleEndian.PutUint64(tmp8[:], v)
		buf = append(buf, tmp8[:]...)
	}
	putString := func(s string) {
		putU64(uint64(len(s)))
		buf = append(buf, s...)
	}

	putU64(c.Base)
	putU64(c.Modulus)
	putU64(uint64(c.MinChunkSize))
	putU64(uint64(c.MaxChunkSize))
	putU64(c.BoundaryPattern)
	buf = append(buf, byte(c.HashAlgorithm))
	putString(c.KeyTypeHint)
	putString(c.ValueTypeHint)
	return buf
}

func deserializeConfig(data []byte) (*TreeConfig, error) {
	r := &byteReader{buf: data}
	c := &TreeConfig{}
	var err error
	if c.Base, err = r.u64(); err != nil {
		return nil, err
	}
	if c.Modulus, err = r.u64(); err != nil {
		return nil, err
	}
	minv, err := r.u64()
	if err != nil {
		return nil, err
	}
	c.MinChunkSize = int(minv)
	maxv, err := r.u64()
	if err != nil {
		return nil, err
	}
	c.MaxChunkSize = int(maxv)
	if c.BoundaryPattern, err = r.u64(); err != nil {
		return nil, err
	}
	alg, err := r.byte1()
	if err != nil {
		return nil, err
	}
	c.HashAlgorithm = HashAlgorithm(alg)
	if c.KeyTypeHint, err = r.str(); err != nil {
		return nil, err
	}
	if c.ValueTypeHint, err = r.str(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *TreeConfig) String() string {
	return fmt.Sprintf("TreeConfig{base=%d modulus=%d min=%d max=%d pattern=%#b alg=%d}",
		c.Base, c.Modulus, c.MinChunkSize, c.MaxChunkSize, c.BoundaryPattern, c.HashAlgorithm)
}
