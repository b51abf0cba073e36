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
	"github.com/klauspost/compress/zstd"
)

// CompressingBackend decorates another Backend with zstd compression
// of stored values. Keys are left untouched, since they are content
// hashes of the uncompressed bytes and must stay addressable without
// decompressing anything first.
type CompressingBackend struct {
	next Backend
	enc  *zstd.Encoder
	dec  *zstd.Decoder
}

// NewCompressingBackend wraps next with zstd compression.
func NewCompressingBackend(next Backend) (*CompressingBackend, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, wrapStorageErr("new zstd encoder", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, wrapStorageErr("new zstd decoder", err)
	}
	return &CompressingBackend{next: next, enc: enc, dec: dec}, nil
}

func (c *CompressingBackend) Get(key []byte) ([]byte, error) {
	compressed, err := c.next.Get(key)
	if err != nil {
		return nil, err
	}
	out, err := c.dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, wrapStorageErr("zstd decode", err)
	}
	return out, nil
}

func (c *CompressingBackend) Put(key, value []byte) error {
	compressed := c.enc.EncodeAll(value, nil)
	return c.next.Put(key, compressed)
}

func (c *CompressingBackend) Has(key []byte) (bool, error) { return c.next.Has(key) }

func (c *CompressingBackend) Delete(key []byte) error { return c.next.Delete(key) }

func (c *CompressingBackend) List() ([][]byte, error) { return c.next.List() }

func (c *CompressingBackend) Close() error {
	c.enc.Close()
	c.dec.Close()
	return c.next.Close()
}
