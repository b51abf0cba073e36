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
	lru "github.com/hashicorp/golang-lru"
)

// CachingBackend decorates another Backend with a bounded in-process
// LRU cache. Since every key is a content hash, there is no
// invalidation problem: a cached value for a given key can never become
// stale, so Put and Has simply warm or consult the cache alongside the
// underlying backend.
type CachingBackend struct {
	next  Backend
	cache *lru.Cache
}

// NewCachingBackend wraps next with an LRU cache holding up to size
// entries.
func NewCachingBackend(next Backend, size int) (*CachingBackend, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, wrapStorageErr("new lru cache", err)
	}
	return &CachingBackend{next: next, cache: c}, nil
}

func (c *CachingBackend) Get(key []byte) ([]byte, error) {
	if v, ok := c.cache.Get(string(key)); ok {
		return v.([]byte), nil
	}
	v, err := c.next.Get(key)
	if err != nil {
		return nil, err
	}
	c.cache.Add(string(key), v)
	return v, nil
}

func (c *CachingBackend) Put(key, value []byte) error {
	if err := c.next.Put(key, value); err != nil {
		return err
	}
	c.cache.Add(string(key), value)
	return nil
}

func (c *CachingBackend) Has(key []byte) (bool, error) {
	if c.cache.Contains(string(key)) {
		return true, nil
	}
	return c.next.Has(key)
}

func (c *CachingBackend) Delete(key []byte) error {
	c.cache.Remove(string(key))
	return c.next.Delete(key)
}

func (c *CachingBackend) List() ([][]byte, error) { return c.next.List() }

func (c *CachingBackend) Close() error { return c.next.Close() }
